package board

import "strings"

// Position is a complete game state. It is a value type: assignment
// copies it, which is how each search worker gets a private snapshot.
type Position struct {
	// Piece sets, [Color][PieceType], with cached occupancy unions.
	Pieces      [2][6]Bitboard
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square // capture target square, NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int

	// Hash covers the full state; PawnKey only pawns and kings.
	Hash    uint64
	PawnKey uint64

	KingSquare [2]Square

	// Mailbox mirror of the piece sets for O(1) square lookup.
	squares [64]Piece
}

// Undo holds everything needed to revert one MakeMove.
type Undo struct {
	prev Position
}

// Copy returns an independent copy of the position.
func (p *Position) Copy() *Position {
	q := *p
	return &q
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	return p.squares[sq]
}

func (p *Position) setPiece(pc Piece, sq Square) {
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	p.squares[sq] = pc
	p.Hash ^= zobPiece[pc][sq]
	if pt == Pawn || pt == King {
		p.PawnKey ^= zobPiece[pc][sq]
	}
	if pt == King {
		p.KingSquare[c] = sq
	}
}

func (p *Position) removePiece(sq Square) Piece {
	pc := p.squares[sq]
	c, pt := pc.Color(), pc.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	p.squares[sq] = NoPiece
	p.Hash ^= zobPiece[pc][sq]
	if pt == Pawn || pt == King {
		p.PawnKey ^= zobPiece[pc][sq]
	}
	return pc
}

// IsAttacked reports whether sq is attacked by any piece of color by.
func (p *Position) IsAttacked(sq Square, by Color) bool {
	if pawnAttacks[by.Other()][sq]&p.Pieces[by][Pawn] != 0 {
		return true
	}
	if knightAttacks[sq]&p.Pieces[by][Knight] != 0 {
		return true
	}
	if kingAttacks[sq]&p.Pieces[by][King] != 0 {
		return true
	}
	diag := BishopAttacks(sq, p.AllOccupied)
	if diag&(p.Pieces[by][Bishop]|p.Pieces[by][Queen]) != 0 {
		return true
	}
	straight := RookAttacks(sq, p.AllOccupied)
	return straight&(p.Pieces[by][Rook]|p.Pieces[by][Queen]) != 0
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	return p.IsAttacked(p.KingSquare[p.SideToMove], p.SideToMove.Other())
}

// HasNonPawnMaterial reports whether the side to move has any piece
// beyond pawns and the king. Null-move pruning is unsound without it.
func (p *Position) HasNonPawnMaterial() bool {
	us := p.SideToMove
	return p.Occupied[us]&^(p.Pieces[us][Pawn]|p.Pieces[us][King]) != 0
}

// MakeMove applies m and reports whether it was legal. On an illegal
// move the position is already restored and the Undo must be discarded.
func (p *Position) MakeMove(m Move) (Undo, bool) {
	u := Undo{prev: *p}
	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()

	if p.EnPassant != NoSquare {
		p.Hash ^= zobEnPassant[p.EnPassant.File()]
		p.EnPassant = NoSquare
	}

	p.HalfMoveClock++
	moving := p.squares[from]

	switch {
	case m.IsEnPassant():
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.removePiece(capSq)
		p.removePiece(from)
		p.setPiece(moving, to)
		p.HalfMoveClock = 0

	case m.IsCastle():
		rookFrom, rookTo := rookCastleSquares(to)
		p.removePiece(from)
		p.setPiece(moving, to)
		rook := p.removePiece(rookFrom)
		p.setPiece(rook, rookTo)

	default:
		if p.squares[to] != NoPiece {
			p.removePiece(to)
			p.HalfMoveClock = 0
		}
		p.removePiece(from)
		if m.IsPromotion() {
			p.setPiece(NewPiece(us, m.Promotion()), to)
			p.HalfMoveClock = 0
		} else {
			p.setPiece(moving, to)
		}
		if moving.Type() == Pawn {
			p.HalfMoveClock = 0
			if to > from && to-from == 16 {
				p.EnPassant = from + 8
				p.Hash ^= zobEnPassant[p.EnPassant.File()]
			} else if from > to && from-to == 16 {
				p.EnPassant = from - 8
				p.Hash ^= zobEnPassant[p.EnPassant.File()]
			}
		}
	}

	p.Hash ^= zobCastling[p.Castling]
	p.Castling &= castleRightsMask[from] & castleRightsMask[to]
	p.Hash ^= zobCastling[p.Castling]

	p.Hash ^= zobTurn
	p.SideToMove = them
	if us == Black {
		p.FullMoveNumber++
	}

	if p.IsAttacked(p.KingSquare[us], them) {
		*p = u.prev
		return Undo{}, false
	}
	return u, true
}

// UnmakeMove restores the position saved in u.
func (p *Position) UnmakeMove(u Undo) {
	*p = u.prev
}

// rookCastleSquares maps the king's destination to the rook's hop.
func rookCastleSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default: // C8
		return A8, D8
	}
}

// String renders the board from White's point of view.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			sb.WriteByte(p.squares[NewSquare(file, rank)].Char())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(p.SideToMove.String())
	sb.WriteString(" to move\n")
	return sb.String()
}
