package engine

import (
	"sync/atomic"

	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/nnue"
	"github.com/halcyonchess/halcyon/internal/tablebase"
)

// Engine bundles the worker pool with the state shared across searches:
// the transposition table, the evaluation network, the tablebase prober
// and the contempt configuration.
type Engine struct {
	pool    *Pool
	tt      *TranspositionTable
	net     *nnue.Network
	prober  tablebase.Prober
	cfg     ContemptConfig
	history []uint64
	stop    atomic.Bool
	running atomic.Bool

	// OnInfo, when set, receives a snapshot after every completed
	// iteration of the main worker.
	OnInfo func(SearchInfo)
}

// NewEngine builds an engine with the given worker count and
// transposition table size in megabytes.
func NewEngine(threads, hashMB int) (*Engine, error) {
	pool, err := NewPool(threads)
	if err != nil {
		return nil, err
	}
	return &Engine{
		pool:   pool,
		tt:     NewTranspositionTable(hashMB),
		prober: tablebase.NoopProber{},
	}, nil
}

// SetThreads replaces the pool. The worker count is fixed per pool, so
// resizing means releasing every accumulator region and allocating
// fresh ones.
func (e *Engine) SetThreads(n int) error {
	pool, err := NewPool(n)
	if err != nil {
		return err
	}
	old := e.pool
	e.pool = pool
	return old.Close()
}

// SetHash replaces the transposition table with one of the given size
// in megabytes.
func (e *Engine) SetHash(mb int) {
	e.tt = NewTranspositionTable(mb)
}

// SetContempt updates the draw penalty and complexity bonus applied at
// the next NewSearch.
func (e *Engine) SetContempt(cfg ContemptConfig) {
	e.cfg = cfg
}

// Contempt returns the current contempt configuration.
func (e *Engine) Contempt() ContemptConfig {
	return e.cfg
}

// SetNetwork installs an evaluation network. A nil network selects the
// classical evaluation. Cached evaluations from the previous evaluator
// are dropped.
func (e *Engine) SetNetwork(net *nnue.Network) {
	e.net = net
	e.pool.ClearEvalCaches()
}

// LoadNetwork memory maps and decodes a weight file, then installs it.
func (e *Engine) LoadNetwork(path string) error {
	net, err := nnue.LoadFile(path)
	if err != nil {
		return err
	}
	e.SetNetwork(net)
	return nil
}

// SetPositionHistory records the hashes of the game positions played
// before the next search root, oldest first, so searches can detect
// repetitions that straddle the root.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.history = append(e.history[:0], hashes...)
}

// SetProber installs a tablebase prober shared by all workers.
func (e *Engine) SetProber(p tablebase.Prober) {
	if p == nil {
		p = tablebase.NoopProber{}
	}
	e.prober = p
}

// NewGame resets per-game state: every worker's ordering tables and
// caches, and the transposition table.
func (e *Engine) NewGame() {
	e.pool.Reset()
	e.tt.Clear()
}

// Search runs one full search from pos under limits and returns the
// final report. It blocks until every worker has stopped.
func (e *Engine) Search(pos *board.Position, limits *Limits) SearchInfo {
	var info SearchInfo
	e.stop.Store(false)
	e.running.Store(true)
	defer e.running.Store(false)

	e.pool.NewSearch(pos, limits, &info, e.cfg, e.history)

	sh := &shared{
		tt:   e.tt,
		net:  e.net,
		tb:   e.prober,
		stop: &e.stop,
		info: &info,
	}
	if e.OnInfo != nil {
		sh.onInfo = e.OnInfo
	}
	runSearch(e.pool, sh, limits)

	info.TBHits = e.pool.TBHits()
	return info
}

// Stop asks all workers to wind down; Search returns once they have.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

// Searching reports whether a search is in flight.
func (e *Engine) Searching() bool {
	return e.running.Load()
}

// Pool exposes the worker pool, mainly for counters.
func (e *Engine) Pool() *Pool {
	return e.pool
}

// Close releases the pool's accumulator regions.
func (e *Engine) Close() error {
	return e.pool.Close()
}
