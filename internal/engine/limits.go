package engine

import (
	"time"

	"github.com/halcyonchess/halcyon/internal/board"
)

// Limits bounds one search invocation. Zero values mean unbounded.
type Limits struct {
	Depth    int
	Nodes    uint64
	MoveTime time.Duration
	Infinite bool
}

// SearchInfo carries the best line found so far, updated by the main
// worker after each completed iteration and read by the UCI layer. The
// pool broadcasts one shared instance to every worker at search start.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	TBHits   uint64
	Time     time.Duration
	BestMove board.Move
	PV       []board.Move
}

// ContemptConfig is the process-wide contempt tuning, set through UCI
// options between searches and folded into a per-search score by
// Pool.NewSearch. Passing it explicitly keeps the contempt computation
// a pure function of configuration and side to move.
type ContemptConfig struct {
	DrawPenalty int
	Complexity  int
}

// contemptFor combines the configured terms into the packed score
// broadcast to every worker. The sign flips when Black is to move.
func contemptFor(cfg ContemptConfig, stm board.Color) Score {
	c := MakeScore(cfg.DrawPenalty+cfg.Complexity, cfg.DrawPenalty)
	if stm == board.Black {
		c = -c
	}
	return c
}
