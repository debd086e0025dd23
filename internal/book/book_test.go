package book

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/halcyonchess/halcyon/internal/board"
)

func record(key uint64, move board.Move, weight uint16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, key)
	binary.Write(&buf, binary.BigEndian, uint16(move))
	binary.Write(&buf, binary.BigEndian, weight)
	binary.Write(&buf, binary.BigEndian, uint32(0))
	return buf.Bytes()
}

func TestDecodeAndProbe(t *testing.T) {
	pos := board.NewPosition()
	e2e4 := board.NewMove(board.E2, board.E4)

	b, err := Decode(record(pos.Hash, e2e4, 100))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if b.Size() != 1 {
		t.Fatalf("Size = %d, want 1", b.Size())
	}

	move, found := b.Probe(pos)
	if !found {
		t.Fatal("book miss on stored position")
	}
	if move != e2e4 {
		t.Fatalf("Probe = %s, want e2e4", move)
	}
}

func TestProbeMiss(t *testing.T) {
	b := New()
	pos := board.NewPosition()

	move, found := b.Probe(pos)
	if found || move != board.NoMove {
		t.Fatalf("Probe on empty book = %s, %v", move, found)
	}
}

func TestIllegalEntrySkipped(t *testing.T) {
	pos := board.NewPosition()
	illegal := board.NewMove(board.E2, board.E5) // no such pawn move
	good := board.NewMove(board.D2, board.D4)

	data := append(record(pos.Hash, illegal, 1000), record(pos.Hash, good, 1)...)
	b, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for i := 0; i < 20; i++ {
		move, found := b.Probe(pos)
		if !found {
			t.Fatal("book miss")
		}
		if move != good {
			t.Fatalf("Probe returned %s, want d2d4", move)
		}
	}
}

func TestProbeAllSortsByWeight(t *testing.T) {
	pos := board.NewPosition()
	light := board.NewMove(board.G1, board.F3)
	heavy := board.NewMove(board.E2, board.E4)

	data := append(record(pos.Hash, light, 10), record(pos.Hash, heavy, 90)...)
	b, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	all := b.ProbeAll(pos)
	if len(all) != 2 {
		t.Fatalf("ProbeAll returned %d entries, want 2", len(all))
	}
	if all[0].Move != heavy || all[1].Move != light {
		t.Fatalf("entries not sorted by weight: %s %s", all[0].Move, all[1].Move)
	}
}

func TestDecodeRejectsTornFile(t *testing.T) {
	if _, err := Decode(make([]byte, recordSize+3)); err == nil {
		t.Fatal("Decode accepted a torn file")
	}
}

func TestLoadFromFile(t *testing.T) {
	pos := board.NewPosition()
	e2e4 := board.NewMove(board.E2, board.E4)

	path := filepath.Join(t.TempDir(), "test.book")
	if err := os.WriteFile(path, record(pos.Hash, e2e4, 50), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	move, found := b.Probe(pos)
	if !found || move != e2e4 {
		t.Fatalf("Probe = %s, %v", move, found)
	}
}
