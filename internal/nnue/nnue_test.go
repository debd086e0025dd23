package nnue

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/mem"
)

func TestAccumulatorRecordSize(t *testing.T) {
	size := unsafe.Sizeof(Accumulator{})
	if size%mem.CacheLine != 0 {
		t.Fatalf("Accumulator size %d is not a multiple of %d; stacked records would lose alignment",
			size, mem.CacheLine)
	}
}

func TestStackAlignment(t *testing.T) {
	s, err := NewAccumulatorStack(132, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Free()

	if err := s.VerifyAlignment(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < s.Len(); i++ {
		if !mem.Aligned(unsafe.Pointer(s.Record(i))) {
			t.Errorf("record %d not aligned", i)
		}
	}
}

func TestStackOffsetAccess(t *testing.T) {
	s, err := NewAccumulatorStack(132, 4)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Free()

	// Heights -4..127 must all resolve without faulting, and a fresh
	// stack must read back as not computed everywhere.
	for h := -4; h < 128; h++ {
		if s.At(h).Computed {
			t.Fatalf("fresh record at height %d marked computed", h)
		}
	}

	s.At(-1).Computed = true
	if !s.Record(3).Computed {
		t.Error("height -1 did not map to backing record 3")
	}
}

func TestStackInvalidate(t *testing.T) {
	s, err := NewAccumulatorStack(16, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Free()

	for i := 0; i < s.Len(); i++ {
		s.Record(i).Computed = true
	}
	s.Invalidate()
	for i := 0; i < s.Len(); i++ {
		if s.Record(i).Computed {
			t.Fatalf("record %d still computed after Invalidate", i)
		}
	}
}

func TestStackGeometryErrors(t *testing.T) {
	cases := [][2]int{{0, 0}, {-1, 0}, {8, -1}, {8, 8}, {8, 9}}
	for _, c := range cases {
		if _, err := NewAccumulatorStack(c[0], c[1]); err == nil {
			t.Errorf("NewAccumulatorStack(%d, %d) succeeded, want error", c[0], c[1])
		}
	}
}

func testNetwork() *Network {
	n := &Network{}
	for i := range n.FeatureWeights {
		for j := range n.FeatureWeights[i] {
			n.FeatureWeights[i][j] = int16((i*7 + j*3) % 61)
		}
	}
	for j := range n.FeatureBias {
		n.FeatureBias[j] = int16(j % 13)
	}
	for j := range n.OutputWeights {
		n.OutputWeights[j] = int8(j%5 - 2)
	}
	n.OutputBias = 1234
	return n
}

func TestWeightFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halcyon.nnw")

	want := testNetwork()
	if err := want.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if *got != *want {
		t.Error("network differs after save/load round trip")
	}
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halcyon.nnw")
	if err := testNetwork().SaveFile(path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Flip one payload byte: digest check must catch it.
	data[headerSize()+100] ^= 0xff
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile accepted corrupted payload")
	}

	// Truncated header.
	if err := os.WriteFile(path, data[:10], 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile accepted truncated file")
	}
}

func TestRefreshAndEvaluate(t *testing.T) {
	n := testNetwork()
	s, err := NewAccumulatorStack(8, 2)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Free()

	pos := board.NewPosition()
	acc := s.At(0)
	n.Refresh(pos, acc)
	if !acc.Computed {
		t.Fatal("Refresh did not mark accumulator computed")
	}

	// The starting position is symmetric, so both perspectives see the
	// same feature transform.
	if acc.Values[board.White] != acc.Values[board.Black] {
		t.Error("symmetric position produced asymmetric accumulations")
	}

	white := n.Evaluate(acc, board.White)
	black := n.Evaluate(acc, board.Black)
	if white != black {
		t.Errorf("symmetric position evaluates to %d for White but %d for Black", white, black)
	}
}
