package nnue

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/cespare/xxhash/v2"

	"github.com/halcyonchess/halcyon/internal/board"
	"github.com/halcyonchess/halcyon/internal/mmapfile"
)

// Weight file format:
//   - Magic (4 bytes), Version (4 bytes), InputDims (4), HalfDims (4)
//   - Digest (8 bytes): xxhash64 of everything after the header
//   - FeatureWeights: InputDims * HalfDims * int16
//   - FeatureBias: HalfDims * int16
//   - OutputWeights: 2 * HalfDims * int8
//   - OutputBias: int32
// All little-endian.
const (
	MagicNumber = 0x484c4e57 // "HLNW"
	Version     = 1
)

// InputDims is the raw feature count: 12 piece kinds on 64 squares.
const InputDims = 12 * 64

// Network is the evaluation network. One instance is shared read-only
// by every search worker; the mutable state lives in the per-worker
// accumulator stacks.
type Network struct {
	FeatureWeights [InputDims][HalfDims]int16
	FeatureBias    [HalfDims]int16
	OutputWeights  [2 * HalfDims]int8
	OutputBias     int32
}

type fileHeader struct {
	Magic     uint32
	Version   uint32
	InputDims uint32
	HalfDims  uint32
	Digest    uint64
}

// LoadFile maps path read-only and decodes the network from the mapped
// byte range. The file data is never copied per worker: the mapping is
// released once decoding finishes because the decoded weights are the
// only thing the workers need.
func LoadFile(path string) (*Network, error) {
	f, err := mmapfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	n, err := decode(f.Bytes())
	if err != nil {
		return nil, fmt.Errorf("nnue: %s: %w", path, err)
	}
	log.Printf("nnue: loaded %s (%d bytes)", path, f.Size())
	return n, nil
}

func decode(data []byte) (*Network, error) {
	r := bytes.NewReader(data)

	var h fileHeader
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if h.Magic != MagicNumber {
		return nil, fmt.Errorf("bad magic: expected %08x, got %08x", uint32(MagicNumber), h.Magic)
	}
	if h.Version != Version {
		return nil, fmt.Errorf("unsupported version %d", h.Version)
	}
	if h.InputDims != InputDims || h.HalfDims != HalfDims {
		return nil, fmt.Errorf("architecture mismatch: file is %dx%d, build wants %dx%d",
			h.InputDims, h.HalfDims, InputDims, HalfDims)
	}

	payload := data[headerSize():]
	if digest := xxhash.Sum64(payload); digest != h.Digest {
		return nil, fmt.Errorf("digest mismatch: header %016x, content %016x", h.Digest, digest)
	}

	n := &Network{}
	for i := range n.FeatureWeights {
		if err := binary.Read(r, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return nil, fmt.Errorf("read feature weights row %d: %w", i, err)
		}
	}
	if err := binary.Read(r, binary.LittleEndian, &n.FeatureBias); err != nil {
		return nil, fmt.Errorf("read feature bias: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputWeights); err != nil {
		return nil, fmt.Errorf("read output weights: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &n.OutputBias); err != nil {
		return nil, fmt.Errorf("read output bias: %w", err)
	}
	return n, nil
}

func headerSize() int {
	return 4 + 4 + 4 + 4 + 8
}

// SaveFile writes the network in the weight file format, computing the
// content digest for the header.
func (n *Network) SaveFile(path string) error {
	var payload bytes.Buffer
	for i := range n.FeatureWeights {
		if err := binary.Write(&payload, binary.LittleEndian, &n.FeatureWeights[i]); err != nil {
			return fmt.Errorf("nnue: encode feature weights: %w", err)
		}
	}
	if err := binary.Write(&payload, binary.LittleEndian, &n.FeatureBias); err != nil {
		return fmt.Errorf("nnue: encode feature bias: %w", err)
	}
	if err := binary.Write(&payload, binary.LittleEndian, &n.OutputWeights); err != nil {
		return fmt.Errorf("nnue: encode output weights: %w", err)
	}
	if err := binary.Write(&payload, binary.LittleEndian, &n.OutputBias); err != nil {
		return fmt.Errorf("nnue: encode output bias: %w", err)
	}

	h := fileHeader{
		Magic:     MagicNumber,
		Version:   Version,
		InputDims: InputDims,
		HalfDims:  HalfDims,
		Digest:    xxhash.Sum64(payload.Bytes()),
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("nnue: create %s: %w", path, err)
	}
	defer f.Close()

	if err := binary.Write(f, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("nnue: write header: %w", err)
	}
	if _, err := io.Copy(f, &payload); err != nil {
		return fmt.Errorf("nnue: write payload: %w", err)
	}
	return nil
}

// featureIndex maps a piece on a square, seen from perspective, into
// the network's input space. Black's view mirrors the board vertically
// and swaps piece colors.
func featureIndex(perspective board.Color, pc board.Piece, sq board.Square) int {
	c := pc.Color()
	if perspective == board.Black {
		c = c.Other()
		sq ^= 56
	}
	return (int(c)*6+int(pc.Type()))*64 + int(sq)
}

// Refresh recomputes acc for pos from scratch and marks it computed.
func (n *Network) Refresh(pos *board.Position, acc *Accumulator) {
	for persp := board.White; persp <= board.Black; persp++ {
		vals := &acc.Values[persp]
		*vals = n.FeatureBias

		for c := board.White; c <= board.Black; c++ {
			for pt := board.Pawn; pt <= board.King; pt++ {
				for bb := pos.Pieces[c][pt]; bb != 0; {
					sq := bb.PopLSB()
					idx := featureIndex(persp, board.NewPiece(c, pt), sq)
					row := &n.FeatureWeights[idx]
					for i := range vals {
						vals[i] += row[i]
					}
				}
			}
		}
	}
	acc.Computed = true
}

// Evaluate runs the output layer over a computed accumulator, from the
// side to move's perspective, in centipawns.
func (n *Network) Evaluate(acc *Accumulator, stm board.Color) int {
	var sum int32
	for half, persp := 0, stm; half < 2; half, persp = half+1, persp.Other() {
		vals := &acc.Values[persp]
		weights := n.OutputWeights[half*HalfDims : (half+1)*HalfDims]
		for i, v := range vals {
			sum += int32(clippedReLU(v)) * int32(weights[i])
		}
	}
	return int((sum + n.OutputBias) / outputScale)
}

// outputScale brings the integer network output into centipawn range.
const outputScale = 64

func clippedReLU(v int16) int16 {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}
