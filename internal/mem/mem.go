// Package mem provides cache-line-aligned buffer allocation for the
// per-worker accumulator stacks. Regions must be released through Free,
// which pairs with whichever allocation path produced them.
package mem

import (
	"errors"
	"sync/atomic"
	"unsafe"
)

// CacheLine is the required alignment for accumulator backing buffers.
// Vectorized evaluation code reads these buffers with 64-byte loads.
const CacheLine = 64

var (
	ErrFreed   = errors.New("mem: region already freed")
	ErrBadSize = errors.New("mem: region size must be positive")
)

// Region is an exclusively owned, 64-byte-aligned byte buffer.
type Region struct {
	data   []byte // aligned view handed to callers
	raw    []byte // backing slice passed to the release path
	mapped bool   // true when raw came from mmap
	freed  bool
}

// live counts regions allocated but not yet freed. Tests use it as the
// leak-detection baseline.
var live atomic.Int64

// Live returns the number of currently live regions.
func Live() int64 {
	return live.Load()
}

// Bytes returns the aligned view. Valid until Free.
func (r *Region) Bytes() []byte {
	return r.data
}

// Len returns the usable size of the region in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Free releases the region. Calling Free twice returns ErrFreed.
func (r *Region) Free() error {
	if r.freed {
		return ErrFreed
	}
	r.freed = true
	live.Add(-1)
	err := r.release()
	r.data = nil
	r.raw = nil
	return err
}

// Aligned reports whether p sits on a cache-line boundary.
func Aligned(p unsafe.Pointer) bool {
	return uintptr(p)%CacheLine == 0
}

// heapAlloc over-allocates on the Go heap and offsets to the next
// cache-line boundary. Used on platforms without an mmap path and as
// the fallback when mmap is refused.
func heapAlloc(size int) *Region {
	raw := make([]byte, size+CacheLine)
	off := 0
	if rem := uintptr(unsafe.Pointer(&raw[0])) % CacheLine; rem != 0 {
		off = int(CacheLine - rem)
	}
	return &Region{data: raw[off : off+size : off+size], raw: raw}
}
