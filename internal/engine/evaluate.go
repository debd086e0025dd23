package engine

import (
	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/nnue"
)

var pieceValues = [6]Score{
	MakeScore(100, 120),  // pawn
	MakeScore(320, 300),  // knight
	MakeScore(330, 320),  // bishop
	MakeScore(500, 540),  // rook
	MakeScore(900, 950),  // queen
	MakeScore(0, 0),      // king
}

// pst holds small piece-square bonuses from White's perspective,
// generated at init from center proximity and pawn advancement.
var pst [6][64]Score

func init() {
	for sq := board.Square(0); sq < 64; sq++ {
		f, r := sq.File(), sq.Rank()
		center := 6 - (absInt(2*f-7)+absInt(2*r-7))/2

		pst[board.Pawn][sq] = MakeScore(2*r, 5*r)
		pst[board.Knight][sq] = MakeScore(4*center, 3*center)
		pst[board.Bishop][sq] = MakeScore(3*center, 2*center)
		pst[board.Rook][sq] = MakeScore(center, center)
		pst[board.Queen][sq] = MakeScore(center, 2*center)
		pst[board.King][sq] = MakeScore(-2*center, 4*center)
	}
}

// evaluate returns the static evaluation from the side to move's
// perspective, with contempt folded in. The raw value is cached per
// thread so repeated visits to a position inside one game are free;
// contempt stays outside the cache because its sign changes between
// searches.
func (t *Thread) evaluate(net *nnue.Network) int {
	v, ok := t.probeEval(t.board.Hash)
	if !ok {
		if net != nil {
			acc := t.acc.At(t.height)
			if !acc.Computed {
				net.Refresh(&t.board, acc)
			}
			v = net.Evaluate(acc, t.board.SideToMove)
		} else {
			v = t.classicalEval()
		}
		t.storeEval(t.board.Hash, v)
	}
	return v + t.contempt.MG()
}

// classicalEval is the material and structure fallback used when no
// network is loaded. White-minus-Black terms are accumulated packed,
// interpolated by game phase, then flipped to the side to move.
func (t *Thread) classicalEval() int {
	p := &t.board
	var s Score

	for c := board.White; c <= board.Black; c++ {
		var side Score
		for pt := board.Pawn; pt <= board.King; pt++ {
			for bb := p.Pieces[c][pt]; bb != 0; {
				sq := bb.PopLSB()
				if c == board.Black {
					sq ^= 56
				}
				side += pieceValues[pt] + pst[pt][sq]
			}
		}
		if c == board.White {
			s += side
		} else {
			s -= side
		}
	}

	s += t.pawnKingTerm()

	phase := gamePhase(p)
	v := (s.MG()*phase + s.EG()*(24-phase)) / 24
	if p.SideToMove == board.Black {
		v = -v
	}
	return v
}

// pawnKingTerm evaluates pawn structure and king shelter, cached by the
// pawn/king hash in this thread's table.
func (t *Thread) pawnKingTerm() Score {
	p := &t.board
	if mg, eg, ok := t.probePawnKing(p.PawnKey); ok {
		return MakeScore(mg, eg)
	}

	var s Score
	for c := board.White; c <= board.Black; c++ {
		var side Score
		pawns := p.Pieces[c][board.Pawn]

		for file := 0; file < 8; file++ {
			onFile := (pawns & fileBB(file)).PopCount()
			if onFile > 1 {
				side -= MakeScore(12, 18) * Score(onFile-1)
			}
			if onFile > 0 && pawns&adjacentFilesBB(file) == 0 {
				side -= MakeScore(10, 15) * Score(onFile)
			}
		}

		shelter := (board.KingAttacks(p.KingSquare[c]) & pawns).PopCount()
		side += MakeScore(8, 0) * Score(shelter)

		if c == board.White {
			s += side
		} else {
			s -= side
		}
	}

	t.storePawnKing(p.PawnKey, s.MG(), s.EG())
	return s
}

// gamePhase maps remaining material onto 0 (bare kings) to 24 (full
// opening armies).
func gamePhase(p *board.Position) int {
	phase := 0
	for c := board.White; c <= board.Black; c++ {
		phase += p.Pieces[c][board.Knight].PopCount()
		phase += p.Pieces[c][board.Bishop].PopCount()
		phase += 2 * p.Pieces[c][board.Rook].PopCount()
		phase += 4 * p.Pieces[c][board.Queen].PopCount()
	}
	if phase > 24 {
		phase = 24
	}
	return phase
}

func fileBB(file int) board.Bitboard {
	return board.Bitboard(0x0101010101010101) << file
}

func adjacentFilesBB(file int) board.Bitboard {
	var bb board.Bitboard
	if file > 0 {
		bb |= fileBB(file - 1)
	}
	if file < 7 {
		bb |= fileBB(file + 1)
	}
	return bb
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
