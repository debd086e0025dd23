package engine

import (
	"math/bits"
	"sync"

	"github.com/halcyonchess/halcyon/internal/board"
)

// Bound classifies a transposition table score.
type Bound uint8

const (
	BoundExact Bound = iota
	BoundLower
	BoundUpper
)

// TTEntry is one transposition table slot. The full hash is kept for
// verification, trading a little space for zero index collisions.
type TTEntry struct {
	Key   uint64
	Move  board.Move
	Score int16
	Depth int8
	Flag  Bound
}

const ttShards = 256

// TranspositionTable is the only mutable structure shared by all
// workers during a search. Access is sharded so concurrent probes from
// different workers rarely contend on the same lock.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
	shards  [ttShards]sync.RWMutex
}

// NewTranspositionTable sizes the table to at most sizeMB megabytes,
// rounded down to a power of two entries.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const entrySize = 16
	n := uint64(sizeMB) * 1024 * 1024 / entrySize
	if n < 1024 {
		n = 1024
	}
	n = 1 << (63 - bits.LeadingZeros64(n))

	return &TranspositionTable{
		entries: make([]TTEntry, n),
		mask:    n - 1,
	}
}

func (tt *TranspositionTable) shard(idx uint64) *sync.RWMutex {
	return &tt.shards[idx&(ttShards-1)]
}

// Probe returns the entry for key, if one is stored.
func (tt *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	idx := key & tt.mask
	mu := tt.shard(idx)

	mu.RLock()
	e := tt.entries[idx]
	mu.RUnlock()

	return e, e.Key == key
}

// Store writes an entry, preferring deeper searches of the same
// position over shallower ones.
func (tt *TranspositionTable) Store(key uint64, depth, score int, flag Bound, move board.Move) {
	idx := key & tt.mask
	mu := tt.shard(idx)

	mu.Lock()
	e := &tt.entries[idx]
	if e.Key != key || int(e.Depth) <= depth {
		*e = TTEntry{Key: key, Move: move, Score: int16(score), Depth: int8(depth), Flag: flag}
	}
	mu.Unlock()
}

// Clear empties the table, for ucinewgame.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
}
