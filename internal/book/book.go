package book

import (
	"encoding/binary"
	"fmt"
	"math/rand"
	"sort"

	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/mmapfile"
)

// Entry is one weighted book move for a position.
type Entry struct {
	Move   board.Move
	Weight uint16
}

// Book is an opening book mapping position hashes to weighted moves.
// Book files hold 16 byte records: 8 byte position hash, 2 byte move,
// 2 byte weight and 4 reserved bytes, all big-endian.
type Book struct {
	entries map[uint64][]Entry
}

const recordSize = 16

// New creates an empty book.
func New() *Book {
	return &Book{entries: make(map[uint64][]Entry)}
}

// Load memory maps a book file and decodes its records.
func Load(path string) (*Book, error) {
	f, err := mmapfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f.Bytes())
}

// Decode parses raw book records.
func Decode(data []byte) (*Book, error) {
	if len(data)%recordSize != 0 {
		return nil, fmt.Errorf("book: %d bytes is not a whole number of records", len(data))
	}

	b := New()
	for off := 0; off < len(data); off += recordSize {
		rec := data[off : off+recordSize]
		key := binary.BigEndian.Uint64(rec[0:8])
		move := board.Move(binary.BigEndian.Uint16(rec[8:10]))
		weight := binary.BigEndian.Uint16(rec[10:12])
		if move == board.NoMove {
			continue
		}
		b.entries[key] = append(b.entries[key], Entry{Move: move, Weight: weight})
	}
	return b, nil
}

// Probe returns a book move for pos by weighted random selection, or
// false when the position is out of book. Only legal moves are ever
// returned; a stale or corrupt record just misses.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}
	entries, ok := b.entries[pos.Hash]
	if !ok || len(entries) == 0 {
		return board.NoMove, false
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	var total uint32
	for _, e := range entries {
		total += uint32(e.Weight)
	}
	if total == 0 {
		if m := verify(pos, entries[0].Move); m != board.NoMove {
			return m, true
		}
		return board.NoMove, false
	}

	r := rand.Uint32() % total
	var cumulative uint32
	for _, e := range entries {
		cumulative += uint32(e.Weight)
		if r < cumulative {
			if m := verify(pos, e.Move); m != board.NoMove {
				return m, true
			}
			break
		}
	}

	// The drawn entry was illegal here; fall back to the heaviest
	// entry that is playable.
	for _, e := range entries {
		if m := verify(pos, e.Move); m != board.NoMove {
			return m, true
		}
	}
	return board.NoMove, false
}

// ProbeAll returns every book move for pos, heaviest first.
func (b *Book) ProbeAll(pos *board.Position) []Entry {
	if b == nil {
		return nil
	}
	entries, ok := b.entries[pos.Hash]
	if !ok {
		return nil
	}
	result := make([]Entry, len(entries))
	copy(result, entries)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})
	return result
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// verify matches a stored move against the legal moves of pos so the
// returned move carries correct kind flags.
func verify(pos *board.Position, move board.Move) board.Move {
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		lm := legal.Get(i)
		if lm.From() != move.From() || lm.To() != move.To() {
			continue
		}
		if lm.IsPromotion() != move.IsPromotion() {
			continue
		}
		if lm.IsPromotion() && lm.Promotion() != move.Promotion() {
			continue
		}
		return lm
	}
	return board.NoMove
}
