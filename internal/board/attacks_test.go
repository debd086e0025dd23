package board

import (
	"math/rand"
	"testing"
)

// slowBishop and slowRook are independent references the magic tables
// must agree with on every occupancy.

func slowBishop(sq Square, occ Bitboard) Bitboard {
	return rayAttacks(sq, occ, [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}})
}

func slowRook(sq Square, occ Bitboard) Bitboard {
	return rayAttacks(sq, occ, [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}})
}

func TestSliderAttacksMatchRayWalk(t *testing.T) {
	rng := rand.New(rand.NewSource(0x5eed))

	for sq := Square(0); sq < 64; sq++ {
		if got, want := BishopAttacks(sq, 0), slowBishop(sq, 0); got != want {
			t.Fatalf("bishop %s empty board: got %v want %v", sq, got, want)
		}
		if got, want := RookAttacks(sq, 0), slowRook(sq, 0); got != want {
			t.Fatalf("rook %s empty board: got %v want %v", sq, got, want)
		}

		for trial := 0; trial < 128; trial++ {
			// Sparse random occupancies exercise varied blocker sets.
			occ := Bitboard(rng.Uint64() & rng.Uint64())
			if got, want := BishopAttacks(sq, occ), slowBishop(sq, occ); got != want {
				t.Fatalf("bishop %s occ %016x: got %v want %v", sq, uint64(occ), got, want)
			}
			if got, want := RookAttacks(sq, occ), slowRook(sq, occ); got != want {
				t.Fatalf("rook %s occ %016x: got %v want %v", sq, uint64(occ), got, want)
			}
			if got, want := QueenAttacks(sq, occ), slowBishop(sq, occ)|slowRook(sq, occ); got != want {
				t.Fatalf("queen %s occ %016x: got %v want %v", sq, uint64(occ), got, want)
			}
		}
	}
}

func TestSliderAttacksFullOccupancy(t *testing.T) {
	full := Bitboard(^uint64(0))
	for sq := Square(0); sq < 64; sq++ {
		if got, want := BishopAttacks(sq, full), slowBishop(sq, full); got != want {
			t.Fatalf("bishop %s full board: got %v want %v", sq, got, want)
		}
		if got, want := RookAttacks(sq, full), slowRook(sq, full); got != want {
			t.Fatalf("rook %s full board: got %v want %v", sq, got, want)
		}
	}
}
