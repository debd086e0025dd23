package tablebase

import (
	"github.com/halcyonchess/halcyon/internal/board"
)

// WDL is a win/draw/loss verdict from the side to move's perspective.
type WDL int8

const (
	Loss WDL = -1
	Draw WDL = 0
	Win  WDL = 1
)

func (w WDL) String() string {
	switch w {
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	case Win:
		return "win"
	}
	return "unknown"
}

// ProbeResult reports whether a position was resolved and its verdict.
type ProbeResult struct {
	Found bool
	WDL   WDL
}

// Prober resolves endgame positions to exact verdicts. Implementations
// must be safe for concurrent use; every search worker probes through
// the same instance.
type Prober interface {
	// Probe resolves pos if it is covered. Positions with castling
	// rights are never covered.
	Probe(pos *board.Position) ProbeResult

	// MaxPieces is the largest piece count this prober covers. Callers
	// skip the probe entirely above it.
	MaxPieces() int
}

// Probe verdict scores sit just below the mate range so the search
// prefers a real mate over a tablebase win, and prefers the shorter
// path when both lines are tablebase wins.
const wdlWinScore = 31000

// WDLToScore converts a verdict into a search score at the given
// height. Wins decay with distance from the root so nearer conversions
// order first.
func WDLToScore(wdl WDL, height int) int {
	switch wdl {
	case Win:
		return wdlWinScore - height
	case Loss:
		return -wdlWinScore + height
	}
	return 0
}

// NoopProber covers nothing. It is the pool's default until a real
// prober is configured.
type NoopProber struct{}

func (NoopProber) Probe(*board.Position) ProbeResult { return ProbeResult{} }
func (NoopProber) MaxPieces() int                    { return 0 }

// MaterialProber resolves the trivially drawn pawnless endings that
// need no table at all: two bare kings, and king plus a single minor
// piece against a bare king.
type MaterialProber struct{}

func (MaterialProber) MaxPieces() int { return 3 }

func (MaterialProber) Probe(pos *board.Position) ProbeResult {
	if pos.Castling != 0 {
		return ProbeResult{}
	}
	total := pos.AllOccupied.PopCount()
	if total > 3 {
		return ProbeResult{}
	}
	if total == 2 {
		return ProbeResult{Found: true, WDL: Draw}
	}

	for _, c := range []board.Color{board.White, board.Black} {
		if pos.Pieces[c][board.Pawn] != 0 ||
			pos.Pieces[c][board.Rook] != 0 ||
			pos.Pieces[c][board.Queen] != 0 {
			return ProbeResult{}
		}
	}
	// King and one minor against a bare king cannot force mate.
	return ProbeResult{Found: true, WDL: Draw}
}
