package engine

import "github.com/halcyonchess/halcyon/internal/board"

// Move ordering priorities.
const (
	ttMoveScore     = 1 << 22
	goodCaptureBase = 1 << 20
	killerScore1    = 1<<20 - 1024
	killerScore2    = 1<<20 - 2048
	counterScore    = 1<<20 - 3072
)

// historyMax bounds the history counters; updates saturate instead of
// wrapping.
const historyMax = 16384

// mvvLva orders captures by victim value then attacker cheapness.
var mvvLva = [6][6]int{
	/* P victim */ {105, 104, 103, 102, 101, 100},
	/* N victim */ {205, 204, 203, 202, 201, 200},
	/* B victim */ {305, 304, 303, 302, 301, 300},
	/* R victim */ {405, 404, 403, 402, 401, 400},
	/* Q victim */ {505, 504, 503, 502, 501, 500},
	/* K victim */ {0, 0, 0, 0, 0, 0},
}

// scoreMoves assigns ordering scores for all moves at the current
// height, reading only this thread's tables.
func (t *Thread) scoreMoves(moves *board.MoveList, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	prev := t.moveAt(t.height - 1)
	counter := board.NoMove
	if prev != board.NoMove {
		counter = t.counterMoves[t.pieceAt(t.height-1)][prev.To()]
	}

	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		switch {
		case m == ttMove:
			scores[i] = ttMoveScore
		case m.IsCapture(&t.board):
			scores[i] = t.scoreCapture(m)
		case m.IsPromotion():
			scores[i] = goodCaptureBase - 512 + int(m.Promotion())
		case m == t.killers[t.height][0]:
			scores[i] = killerScore1
		case m == t.killers[t.height][1]:
			scores[i] = killerScore2
		case m == counter:
			scores[i] = counterScore
		default:
			scores[i] = t.quietScore(m, prev)
		}
	}
	return scores
}

func (t *Thread) scoreCapture(m board.Move) int {
	attacker := t.board.PieceAt(m.From())
	victim := board.Pawn
	if !m.IsEnPassant() {
		if cap := t.board.PieceAt(m.To()); cap != board.NoPiece {
			victim = cap.Type()
		}
	}
	score := goodCaptureBase + mvvLva[victim][attacker.Type()]*32
	if victim < board.King {
		score += int(t.captureHist[attacker][m.To()][victim])
	}
	return score
}

func (t *Thread) quietScore(m board.Move, prev board.Move) int {
	us := t.board.SideToMove
	score := int(t.history[us][m.From()][m.To()])
	if prev != board.NoMove {
		if pc := t.board.PieceAt(m.From()); pc != board.NoPiece {
			score += int(t.contHist[t.pieceAt(t.height-1)][prev.To()][pc][m.To()])
		}
	}
	return score
}

// pickMove moves the best remaining move to index, sorting lazily as
// the search walks the list.
func pickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// updateQuietTables rewards a quiet move that caused a beta cutoff:
// killers, history, counter move and continuation history.
func (t *Thread) updateQuietTables(m board.Move, depth int) {
	if t.killers[t.height][0] != m {
		t.killers[t.height][1] = t.killers[t.height][0]
		t.killers[t.height][0] = m
	}

	bonus := int16(depth * depth)
	us := t.board.SideToMove
	saturateAdd(&t.history[us][m.From()][m.To()], bonus)

	prev := t.moveAt(t.height - 1)
	if prev == board.NoMove {
		return
	}
	prevPiece := t.pieceAt(t.height - 1)
	t.counterMoves[prevPiece][prev.To()] = m
	if pc := t.board.PieceAt(m.From()); pc != board.NoPiece {
		saturateAdd(&t.contHist[prevPiece][prev.To()][pc][m.To()], bonus)
	}
}

// updateCaptureTable rewards a winning capture.
func (t *Thread) updateCaptureTable(m board.Move, depth int) {
	attacker := t.board.PieceAt(m.From())
	victim := board.Pawn
	if !m.IsEnPassant() {
		if cap := t.board.PieceAt(m.To()); cap != board.NoPiece {
			victim = cap.Type()
		}
	}
	if attacker == board.NoPiece || victim >= board.King {
		return
	}
	saturateAdd(&t.captureHist[attacker][m.To()][victim], int16(depth*depth))
}

func saturateAdd(slot *int16, bonus int16) {
	v := int32(*slot) + int32(bonus)
	if v > historyMax {
		v = historyMax
	}
	if v < -historyMax {
		v = -historyMax
	}
	*slot = int16(v)
}
