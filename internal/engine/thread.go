package engine

import (
	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/nnue"
)

// Search geometry. The stacks carry StackOffset slots of margin before
// the root so continuation lookups a few plies back never need a bounds
// check, matching the accumulator stack's layout.
const (
	MaxHeight   = 128
	StackOffset = 4
	StackSize   = MaxHeight + StackOffset
)

// Thread is one search worker's complete private state: stacks, move
// ordering tables, evaluation caches, counters and a board snapshot.
// During a search no other worker reads or writes any of it; the only
// shared fields are the limits/info references and the contempt score,
// all fixed by Pool.NewSearch before workers start.
type Thread struct {
	index    int
	nthreads int
	threads  []Thread // the pool's array; never freed through this reference

	// Per-height stacks, offset by StackOffset (see the accessors).
	evalStack  [StackSize]int
	moveStack  [StackSize]board.Move
	pieceStack [StackSize]board.Piece
	keyStack   [StackSize]uint64

	// Incremental evaluation records, in a 64-byte-aligned region owned
	// by the pool.
	acc *nnue.AccumulatorStack

	// Move ordering tables, zeroed on every new game.
	history      [2][64][64]int16
	killers      [MaxHeight + 1][2]board.Move
	counterMoves [12][64]board.Move
	captureHist  [12][64][6]int16
	contHist     [12][64][12][64]int16

	// Evaluation caches, also zeroed on every new game.
	evalCache [evalCacheSize]evalCacheEntry
	pkCache   [pkCacheSize]pawnKingEntry

	contempt Score

	// Hashes of the game positions before the root, oldest first, so
	// repetition checks can look back across the root.
	gameHistory []uint64

	height   int
	nodes    uint64
	tbhits   uint64
	rootMove board.Move

	board  board.Position
	limits *Limits
	info   *SearchInfo
}

// Index returns the worker's ordinal within the pool.
func (t *Thread) Index() int {
	return t.index
}

// Nodes returns this worker's node counter.
func (t *Thread) Nodes() uint64 {
	return t.nodes
}

// TBHits returns this worker's tablebase hit counter.
func (t *Thread) TBHits() uint64 {
	return t.tbhits
}

// Contempt returns the score broadcast by the last NewSearch.
func (t *Thread) Contempt() Score {
	return t.contempt
}

// Board returns the worker's private position snapshot.
func (t *Thread) Board() *board.Position {
	return &t.board
}

// Stack accessors. height ranges from -StackOffset to MaxHeight-1;
// slots before the root hold their zero sentinel.

func (t *Thread) evalAt(height int) int {
	return t.evalStack[StackOffset+height]
}

func (t *Thread) setEvalAt(height, v int) {
	t.evalStack[StackOffset+height] = v
}

func (t *Thread) moveAt(height int) board.Move {
	return t.moveStack[StackOffset+height]
}

func (t *Thread) setMoveAt(height int, m board.Move) {
	t.moveStack[StackOffset+height] = m
}

func (t *Thread) pieceAt(height int) board.Piece {
	return t.pieceStack[StackOffset+height]
}

func (t *Thread) setPieceAt(height int, pc board.Piece) {
	t.pieceStack[StackOffset+height] = pc
}

func (t *Thread) keyAt(height int) uint64 {
	return t.keyStack[StackOffset+height]
}

func (t *Thread) setKeyAt(height int, key uint64) {
	t.keyStack[StackOffset+height] = key
}

// resetTables zeroes every move ordering table and evaluation cache.
// Called for each worker by Pool.Reset on ucinewgame so that repeated
// games from identical input replay identically.
func (t *Thread) resetTables() {
	t.history = [2][64][64]int16{}
	t.killers = [MaxHeight + 1][2]board.Move{}
	t.counterMoves = [12][64]board.Move{}
	t.captureHist = [12][64][6]int16{}
	t.contHist = [12][64][12][64]int16{}
	t.evalCache = [evalCacheSize]evalCacheEntry{}
	t.pkCache = [pkCacheSize]pawnKingEntry{}
}

// clearStacks returns the per-height stacks to their zero sentinels,
// including the pre-root margin.
func (t *Thread) clearStacks() {
	t.evalStack = [StackSize]int{}
	t.moveStack = [StackSize]board.Move{}
	t.pieceStack = [StackSize]board.Piece{}
	t.keyStack = [StackSize]uint64{}
}
