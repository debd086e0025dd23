package tablebase

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/halcyonchess/halcyon/internal/board"
)

// CachedProber wraps another prober with a persistent BadgerDB cache
// keyed by position hash, so verdicts survive process restarts. Cache
// hits still count as tablebase hits to the caller.
type CachedProber struct {
	inner Prober
	db    *badger.DB

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCachedProber opens (or creates) the cache database at dir.
func NewCachedProber(inner Prober, dir string) (*CachedProber, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &CachedProber{inner: inner, db: db}, nil
}

// MaxPieces defers to the wrapped prober.
func (c *CachedProber) MaxPieces() int {
	return c.inner.MaxPieces()
}

// Probe consults the cache first, then the wrapped prober. Only
// resolved verdicts are cached; an uncovered position is re-asked every
// time in case the underlying tables grow.
func (c *CachedProber) Probe(pos *board.Position) ProbeResult {
	key := cacheKey(pos.Hash)

	var cached ProbeResult
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != 1 {
				return badger.ErrKeyNotFound
			}
			cached = ProbeResult{Found: true, WDL: WDL(int8(val[0]))}
			return nil
		})
	})
	if err == nil {
		c.hits.Add(1)
		return cached
	}

	c.misses.Add(1)
	res := c.inner.Probe(pos)
	if res.Found {
		_ = c.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key, []byte{byte(res.WDL)})
		})
	}
	return res
}

// CacheHits returns how many probes were answered from the cache.
func (c *CachedProber) CacheHits() uint64 {
	return c.hits.Load()
}

// CacheMisses returns how many probes fell through to the wrapped
// prober.
func (c *CachedProber) CacheMisses() uint64 {
	return c.misses.Load()
}

// Close flushes and closes the cache database.
func (c *CachedProber) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func cacheKey(hash uint64) []byte {
	key := make([]byte, 9)
	key[0] = 'w' // WDL namespace
	binary.BigEndian.PutUint64(key[1:], hash)
	return key
}
