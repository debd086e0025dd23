package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/nnue"
)

// ErrBadThreadCount reports a pool size below one.
var ErrBadThreadCount = errors.New("engine: thread pool needs at least one worker")

// Pool owns a fixed set of search workers and every aligned accumulator
// region behind them. The worker count never changes in place: a new
// thread count means Close followed by NewPool.
type Pool struct {
	threads []Thread
	closed  bool
}

// NewPool constructs nthreads workers. Construction is atomic: if any
// worker's accumulator region cannot be allocated, everything built so
// far is released and an error returned. A region that allocates but
// fails the 64-byte alignment check is a fatal environment fault: the
// process exits rather than risk corrupt vector arithmetic.
func NewPool(nthreads int) (*Pool, error) {
	if nthreads < 1 {
		return nil, ErrBadThreadCount
	}

	p := &Pool{threads: make([]Thread, nthreads)}
	for i := range p.threads {
		t := &p.threads[i]
		t.index = i
		t.nthreads = nthreads
		t.threads = p.threads

		acc, err := nnue.NewAccumulatorStack(StackSize, StackOffset)
		if err != nil {
			p.freeAccumulators(i)
			return nil, fmt.Errorf("engine: worker %d: %w", i, err)
		}
		if aerr := acc.VerifyAlignment(); aerr != nil {
			fmt.Println("info string unable to align accumulator stack on 64-byte boundary")
			log.Fatalf("engine: worker %d: %v", i, aerr)
		}
		t.acc = acc
	}
	return p, nil
}

// Threads returns the fixed worker count.
func (p *Pool) Threads() int {
	return len(p.threads)
}

// Thread returns worker i's state block.
func (p *Pool) Thread(i int) *Thread {
	return &p.threads[i]
}

// Reset zeroes every worker's move ordering tables and evaluation
// caches. Run on ucinewgame so repeated games replay deterministically.
// Counters, board snapshots and accumulator stacks are left alone;
// calling Reset twice is the same as calling it once.
func (p *Pool) Reset() {
	for i := range p.threads {
		p.threads[i].resetTables()
	}
}

// NewSearch is the single synchronization point before a parallel
// search: it broadcasts the limits, info and contempt score to every
// worker, zeroes the per-search counters, hands each worker a private
// copy of pos and of the game history leading to it, and invalidates
// every accumulator record so evaluation recomputes from the new root.
// After it returns the workers may run concurrently with no further
// coordination.
func (p *Pool) NewSearch(pos *board.Position, limits *Limits, info *SearchInfo, cfg ContemptConfig, history []uint64) {
	contempt := contemptFor(cfg, pos.SideToMove)

	for i := range p.threads {
		t := &p.threads[i]
		t.limits = limits
		t.info = info
		t.contempt = contempt
		t.gameHistory = append(t.gameHistory[:0], history...)

		t.height = 0
		t.nodes = 0
		t.tbhits = 0
		t.rootMove = board.NoMove

		t.board = *pos
		t.clearStacks()
		t.acc.Invalidate()
	}
}

// ClearEvalCaches drops every worker's cached static evaluations.
// Run whenever the evaluator changes mid game, since cached values
// from the old evaluator stay keyed by positions the new one would
// score differently. The pawn/king cache survives; its terms do not
// depend on the network.
func (p *Pool) ClearEvalCaches() {
	for i := range p.threads {
		p.threads[i].evalCache = [evalCacheSize]evalCacheEntry{}
	}
}

// Close releases every worker's accumulator region exactly once.
func (p *Pool) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	var first error
	for i := range p.threads {
		if err := p.threads[i].acc.Free(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (p *Pool) freeAccumulators(n int) {
	for i := 0; i < n; i++ {
		_ = p.threads[i].acc.Free()
	}
}

// Nodes sums every worker's node counter. Workers own their counters
// exclusively, so this is safe to call during a search; a torn read of
// a counter mid-update only blurs the report, never the search.
func (p *Pool) Nodes() uint64 {
	var nodes uint64
	for i := range p.threads {
		nodes += p.threads[i].nodes
	}
	return nodes
}

// TBHits sums every worker's tablebase hit counter, with the same
// single-writer semantics as Nodes.
func (p *Pool) TBHits() uint64 {
	var hits uint64
	for i := range p.threads {
		hits += p.threads[i].tbhits
	}
	return hits
}
