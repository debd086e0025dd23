package tablebase

import (
	"testing"

	"github.com/halcyonchess/halcyon/internal/board"
)

func mustParse(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func TestMaterialProber(t *testing.T) {
	p := MaterialProber{}

	tests := []struct {
		name  string
		fen   string
		found bool
		wdl   WDL
	}{
		{"bare kings", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", true, Draw},
		{"king and knight", "8/8/8/4k3/8/8/4N3/4K3 w - - 0 1", true, Draw},
		{"king and bishop", "8/8/8/4k3/8/8/4B3/4K3 b - - 0 1", true, Draw},
		{"king and pawn", "8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", false, Draw},
		{"king and rook", "8/8/8/4k3/8/8/4R3/4K3 w - - 0 1", false, Draw},
		{"king and queen", "8/8/8/4k3/8/8/4Q3/4K3 w - - 0 1", false, Draw},
		{"four pieces", "8/8/8/4k3/4n3/8/4N3/4K3 w - - 0 1", false, Draw},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustParse(t, tc.fen)
			res := p.Probe(pos)
			if res.Found != tc.found {
				t.Fatalf("Found = %v, want %v", res.Found, tc.found)
			}
			if res.Found && res.WDL != tc.wdl {
				t.Fatalf("WDL = %v, want %v", res.WDL, tc.wdl)
			}
		})
	}
}

func TestNoopProber(t *testing.T) {
	p := NoopProber{}
	if p.MaxPieces() != 0 {
		t.Fatalf("MaxPieces = %d, want 0", p.MaxPieces())
	}
	pos := mustParse(t, "8/8/8/4k3/8/8/8/4K3 w - - 0 1")
	if res := p.Probe(pos); res.Found {
		t.Fatal("NoopProber resolved a position")
	}
}

func TestWDLToScore(t *testing.T) {
	if s := WDLToScore(Win, 0); s <= 0 {
		t.Fatalf("win score = %d, want positive", s)
	}
	if WDLToScore(Win, 2) >= WDLToScore(Win, 1) {
		t.Fatal("deeper win should score lower")
	}
	if s := WDLToScore(Loss, 3); s != -WDLToScore(Win, 3) {
		t.Fatalf("loss should mirror win, got %d", s)
	}
	if s := WDLToScore(Draw, 7); s != 0 {
		t.Fatalf("draw score = %d, want 0", s)
	}
}

func TestCachedProber(t *testing.T) {
	cache, err := NewCachedProber(MaterialProber{}, t.TempDir())
	if err != nil {
		t.Fatalf("NewCachedProber: %v", err)
	}
	defer cache.Close()

	pos := mustParse(t, "8/8/8/4k3/8/8/4N3/4K3 w - - 0 1")

	res := cache.Probe(pos)
	if !res.Found || res.WDL != Draw {
		t.Fatalf("first probe = %+v, want found draw", res)
	}
	if cache.CacheMisses() != 1 || cache.CacheHits() != 0 {
		t.Fatalf("after first probe: hits=%d misses=%d", cache.CacheHits(), cache.CacheMisses())
	}

	res = cache.Probe(pos)
	if !res.Found || res.WDL != Draw {
		t.Fatalf("second probe = %+v, want found draw", res)
	}
	if cache.CacheHits() != 1 {
		t.Fatalf("second probe should hit the cache, hits=%d", cache.CacheHits())
	}

	// Uncovered positions are never cached.
	open := mustParse(t, board.StartFEN)
	cache.Probe(open)
	cache.Probe(open)
	if cache.CacheMisses() != 3 {
		t.Fatalf("uncovered probes should always miss, misses=%d", cache.CacheMisses())
	}
}

func TestCachedProberPersists(t *testing.T) {
	dir := t.TempDir()
	pos := mustParse(t, "8/8/8/4k3/8/8/8/4K3 w - - 0 1")

	cache, err := NewCachedProber(MaterialProber{}, dir)
	if err != nil {
		t.Fatalf("NewCachedProber: %v", err)
	}
	cache.Probe(pos)
	if err := cache.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen over NoopProber: the verdict must come from disk.
	reopened, err := NewCachedProber(NoopProber{}, dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	res := reopened.Probe(pos)
	if !res.Found || res.WDL != Draw {
		t.Fatalf("persisted probe = %+v, want found draw", res)
	}
	if reopened.CacheHits() != 1 {
		t.Fatalf("hits = %d, want 1", reopened.CacheHits())
	}
}
