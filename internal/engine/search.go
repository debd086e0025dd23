package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/nnue"
	"github.com/halcyonchess/halcyon/internal/tablebase"
)

const (
	infinity  = 32500
	MateScore = 32000
)

// shared is the read-mostly state every worker sees during one search.
// Workers never touch each other's Thread state; the transposition
// table is internally locked and everything else here is either
// immutable for the search or an atomic.
type shared struct {
	tt   *TranspositionTable
	net  *nnue.Network
	tb   tablebase.Prober
	stop *atomic.Bool

	mu     sync.Mutex // guards info updates by the main worker
	info   *SearchInfo
	onInfo func(SearchInfo)
}

// runSearch drives the pool through one search: every worker iterates
// independently (lazy SMP) and the main worker publishes results. The
// caller must have called Pool.NewSearch first; that broadcast is the
// happens-before edge for everything the workers read.
func runSearch(p *Pool, sh *shared, limits *Limits) {
	started := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < p.Threads(); i++ {
		wg.Add(1)
		go func(t *Thread) {
			defer wg.Done()
			iterate(t, sh)
		}(p.Thread(i))
	}

	// Watchdog: limits are enforced outside the workers so that no
	// worker ever needs to read a sibling's counters.
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if limits.MoveTime > 0 && time.Since(started) >= limits.MoveTime {
					sh.stop.Store(true)
				}
				if limits.Nodes > 0 && p.Nodes() >= limits.Nodes {
					sh.stop.Store(true)
				}
			}
		}
	}()

	wg.Wait()
	close(done)
	sh.stop.Store(true)

	sh.info.Nodes = p.Nodes()
	sh.info.Time = time.Since(started)
}

// iterate runs iterative deepening on one worker. Helper workers search
// slightly deeper on odd indexes, the usual lazy SMP skew.
func iterate(t *Thread, sh *shared) {
	maxDepth := MaxHeight - 1
	if t.limits.Depth > 0 && t.limits.Depth < maxDepth {
		maxDepth = t.limits.Depth
	}

	for depth := 1; depth <= maxDepth; depth++ {
		d := depth
		if t.index > 0 {
			d += t.index & 1
			if d > maxDepth {
				d = maxDepth
			}
		}

		score := alphabeta(t, sh, d, -infinity, infinity)
		if sh.stop.Load() {
			return
		}

		if t.index == 0 {
			sh.mu.Lock()
			sh.info.Depth = depth
			sh.info.Score = score
			sh.info.BestMove = t.rootMove
			sh.info.PV = pvFromTable(sh.tt, &t.board, depth)
			sh.info.Nodes = sumNodes(t.threads)
			snapshot := *sh.info
			sh.mu.Unlock()
			if sh.onInfo != nil {
				sh.onInfo(snapshot)
			}
		}

		if score > MateScore-int(MaxHeight) || score < -MateScore+int(MaxHeight) {
			return
		}
	}
}

// sumNodes is called only by the main worker between iterations, after
// the report is already approximate; exactness comes from the
// aggregator once the search ends.
func sumNodes(threads []Thread) uint64 {
	var n uint64
	for i := range threads {
		n += threads[i].nodes
	}
	return n
}

// alphabeta is a fail-soft negamax with transposition cutoffs,
// quiescence at the horizon and late move reduction for quiet moves.
func alphabeta(t *Thread, sh *shared, depth, alpha, beta int) int {
	if t.height >= MaxHeight-1 {
		return t.evaluate(sh.net)
	}
	if t.nodes&1023 == 0 && sh.stop.Load() {
		return 0
	}
	t.nodes++
	t.setKeyAt(t.height, t.board.Hash)

	root := t.height == 0
	if !root {
		if t.board.HalfMoveClock >= 100 || t.isRepetition() {
			return 0
		}
		if sh.tb != nil && t.board.AllOccupied.PopCount() <= sh.tb.MaxPieces() {
			if res := sh.tb.Probe(&t.board); res.Found {
				t.tbhits++
				return tablebase.WDLToScore(res.WDL, t.height)
			}
		}
	}

	ttMove := board.NoMove
	if entry, ok := sh.tt.Probe(t.board.Hash); ok {
		ttMove = entry.Move
		if !root && int(entry.Depth) >= depth {
			score := scoreFromTT(int(entry.Score), t.height)
			switch entry.Flag {
			case BoundExact:
				return score
			case BoundLower:
				if score >= beta {
					return score
				}
			case BoundUpper:
				if score <= alpha {
					return score
				}
			}
		}
	}

	if depth <= 0 {
		return quiescence(t, sh, alpha, beta)
	}

	inCheck := t.board.InCheck()
	staticEval := t.evaluate(sh.net)
	t.setEvalAt(t.height, staticEval)
	improving := t.height >= 2 && staticEval > t.evalAt(t.height-2)

	moves := t.board.GenerateLegalMoves()
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + t.height
		}
		return 0
	}

	scores := t.scoreMoves(moves, ttMove)

	bestScore := -infinity
	bestMove := board.NoMove
	flag := BoundUpper

	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		m := moves.Get(i)
		isQuiet := !m.IsCapture(&t.board) && !m.IsPromotion()
		movingPiece := t.board.PieceAt(m.From())

		undo, ok := t.board.MakeMove(m)
		if !ok {
			continue
		}

		t.setMoveAt(t.height, m)
		t.setPieceAt(t.height, movingPiece)
		t.height++
		t.acc.At(t.height).Computed = false

		newDepth := depth - 1
		if inCheck {
			newDepth++
		}

		var score int
		if i >= 4 && depth >= 3 && isQuiet && !inCheck {
			reduction := 1 + depth/8
			if !improving {
				reduction++
			}
			reduced := newDepth - reduction
			if reduced < 1 {
				reduced = 1
			}
			score = -alphabeta(t, sh, reduced, -alpha-1, -alpha)
			if score > alpha {
				score = -alphabeta(t, sh, newDepth, -beta, -alpha)
			}
		} else if i == 0 {
			score = -alphabeta(t, sh, newDepth, -beta, -alpha)
		} else {
			score = -alphabeta(t, sh, newDepth, -alpha-1, -alpha)
			if score > alpha && score < beta {
				score = -alphabeta(t, sh, newDepth, -beta, -alpha)
			}
		}

		t.height--
		t.board.UnmakeMove(undo)

		if sh.stop.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if root {
				t.rootMove = m
			}
			if score > alpha {
				alpha = score
				flag = BoundExact
			}
		}

		if score >= beta {
			if isQuiet {
				t.updateQuietTables(m, depth)
			} else if m.IsCapture(&t.board) {
				t.updateCaptureTable(m, depth)
			}
			sh.tt.Store(t.board.Hash, depth, scoreToTT(score, t.height), BoundLower, bestMove)
			return score
		}
	}

	sh.tt.Store(t.board.Hash, depth, scoreToTT(bestScore, t.height), flag, bestMove)
	return bestScore
}

// quiescence searches captures and promotions until the position goes
// quiet, bounding the horizon effect.
func quiescence(t *Thread, sh *shared, alpha, beta int) int {
	if t.nodes&1023 == 0 && sh.stop.Load() {
		return 0
	}
	t.nodes++

	standPat := t.evaluate(sh.net)
	if standPat >= beta {
		return standPat
	}
	if standPat > alpha {
		alpha = standPat
	}
	if t.height >= MaxHeight-1 {
		return standPat
	}

	moves := t.board.GenerateCaptures()
	scores := t.scoreMoves(moves, board.NoMove)

	best := standPat
	for i := 0; i < moves.Len(); i++ {
		pickMove(moves, scores, i)
		m := moves.Get(i)
		movingPiece := t.board.PieceAt(m.From())

		undo, ok := t.board.MakeMove(m)
		if !ok {
			continue
		}

		t.setMoveAt(t.height, m)
		t.setPieceAt(t.height, movingPiece)
		t.height++
		t.acc.At(t.height).Computed = false
		score := -quiescence(t, sh, -beta, -alpha)
		t.height--
		t.board.UnmakeMove(undo)

		if score > best {
			best = score
			if score > alpha {
				alpha = score
			}
		}
		if score >= beta {
			return score
		}
	}
	return best
}

// isRepetition reports whether the current position already occurred on
// this worker's search path or earlier in the game. The same 2-ply
// stride continues from the search stack into the game history, where
// ply -1 is the position just before the root.
func (t *Thread) isRepetition() bool {
	key := t.board.Hash
	h := t.height - 2
	for ; h >= 0; h -= 2 {
		if t.keyAt(h) == key {
			return true
		}
	}
	for i := len(t.gameHistory) + h; i >= 0; i -= 2 {
		if t.gameHistory[i] == key {
			return true
		}
	}
	return false
}

// Mate scores are stored relative to the probing node, so distances
// survive transposition between different heights.

func scoreToTT(score, height int) int {
	if score > MateScore-int(MaxHeight) {
		return score + height
	}
	if score < -MateScore+int(MaxHeight) {
		return score - height
	}
	return score
}

func scoreFromTT(score, height int) int {
	if score > MateScore-int(MaxHeight) {
		return score - height
	}
	if score < -MateScore+int(MaxHeight) {
		return score + height
	}
	return score
}

// pvFromTable walks transposition entries from the root to rebuild the
// principal variation for reporting.
func pvFromTable(tt *TranspositionTable, root *board.Position, depth int) []board.Move {
	pos := root.Copy()
	var pv []board.Move
	seen := make(map[uint64]bool)

	for len(pv) < depth {
		entry, ok := tt.Probe(pos.Hash)
		if !ok || entry.Move == board.NoMove || seen[pos.Hash] {
			break
		}
		seen[pos.Hash] = true
		if _, ok := pos.MakeMove(entry.Move); !ok {
			break
		}
		pv = append(pv, entry.Move)
	}
	return pv
}
