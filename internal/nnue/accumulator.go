// Package nnue holds the incremental-evaluation accumulators and the
// network weights they feed. Accumulator stacks live in 64-byte-aligned
// regions because the hot evaluation loop reads them with full
// cache-line vector loads.
package nnue

import (
	"fmt"
	"unsafe"

	"github.com/halcyonchess/halcyon/internal/mem"
)

// HalfDims is the transformed feature width per perspective.
const HalfDims = 256

// Accumulator caches the feature transform of one position. Computed
// marks whether Values currently reflects the position at its stack
// slot; prepare-for-search clears it so the first evaluation of a new
// search refreshes from scratch.
//
// The struct is padded to a whole number of cache lines so that every
// record of a contiguous stack stays 64-byte aligned.
type Accumulator struct {
	Values   [2][HalfDims]int16
	Computed bool
	_        [63]byte
}

// AccumulatorStack is a fixed-capacity array of accumulators indexed by
// search height, with a positive offset so lookups a few plies before
// the search root stay inside the buffer.
type AccumulatorStack struct {
	region *mem.Region
	recs   []Accumulator
	offset int
}

// NewAccumulatorStack allocates an aligned stack of size records whose
// logical zero sits offset records in.
func NewAccumulatorStack(size, offset int) (*AccumulatorStack, error) {
	if size <= 0 || offset < 0 || offset >= size {
		return nil, fmt.Errorf("nnue: bad stack geometry size=%d offset=%d", size, offset)
	}

	region, err := mem.Alloc(size * int(unsafe.Sizeof(Accumulator{})))
	if err != nil {
		return nil, fmt.Errorf("nnue: accumulator stack: %w", err)
	}

	base := unsafe.Pointer(&region.Bytes()[0])
	s := &AccumulatorStack{
		region: region,
		recs:   unsafe.Slice((*Accumulator)(base), size),
		offset: offset,
	}
	for i := range s.recs {
		s.recs[i] = Accumulator{}
	}
	return s, nil
}

// VerifyAlignment checks that every record's value block sits on a
// cache-line boundary. A failure means the allocator's guarantee was
// not honored and continuing would corrupt vectorized arithmetic.
func (s *AccumulatorStack) VerifyAlignment() error {
	for i := range s.recs {
		if !mem.Aligned(unsafe.Pointer(&s.recs[i].Values[0][0])) {
			return fmt.Errorf("nnue: accumulator %d not on a 64-byte boundary", i)
		}
	}
	return nil
}

// At returns the record for a search height; height may be as low as
// -offset.
func (s *AccumulatorStack) At(height int) *Accumulator {
	return &s.recs[s.offset+height]
}

// Len returns the total record count, including the pre-root margin.
func (s *AccumulatorStack) Len() int {
	return len(s.recs)
}

// Record returns the record at a raw backing index, ignoring the
// offset. Used by alignment assertions and full resets.
func (s *AccumulatorStack) Record(i int) *Accumulator {
	return &s.recs[i]
}

// Invalidate clears every record's Computed flag so the next
// evaluations recompute from the new search's position.
func (s *AccumulatorStack) Invalidate() {
	for i := range s.recs {
		s.recs[i].Computed = false
	}
}

// Free releases the aligned backing region. The stack must not be used
// afterwards.
func (s *AccumulatorStack) Free() error {
	recs := s.recs
	s.recs = nil
	if recs == nil {
		return nil
	}
	return s.region.Free()
}
