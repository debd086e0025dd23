package board

// Precomputed attack sets for the leapers, filled at init.
var (
	pawnAttacks   [2][64]Bitboard
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
)

func init() {
	for sq := Square(0); sq < 64; sq++ {
		f, r := sq.File(), sq.Rank()

		for _, d := range [2]int{-1, 1} {
			if tf := f + d; tf >= 0 && tf < 8 {
				if r < 7 {
					pawnAttacks[White][sq] |= SquareBB(NewSquare(tf, r+1))
				}
				if r > 0 {
					pawnAttacks[Black][sq] |= SquareBB(NewSquare(tf, r-1))
				}
			}
		}

		knightSteps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
		for _, s := range knightSteps {
			if tf, tr := f+s[0], r+s[1]; tf >= 0 && tf < 8 && tr >= 0 && tr < 8 {
				knightAttacks[sq] |= SquareBB(NewSquare(tf, tr))
			}
		}

		for df := -1; df <= 1; df++ {
			for dr := -1; dr <= 1; dr++ {
				if df == 0 && dr == 0 {
					continue
				}
				if tf, tr := f+df, r+dr; tf >= 0 && tf < 8 && tr >= 0 && tr < 8 {
					kingAttacks[sq] |= SquareBB(NewSquare(tf, tr))
				}
			}
		}
	}

	initMagics()
}

// PawnAttacks returns the squares a pawn of color c on sq attacks.
func PawnAttacks(c Color, sq Square) Bitboard {
	return pawnAttacks[c][sq]
}

// KnightAttacks returns the knight attack set from sq.
func KnightAttacks(sq Square) Bitboard {
	return knightAttacks[sq]
}

// KingAttacks returns the king attack set from sq.
func KingAttacks(sq Square) Bitboard {
	return kingAttacks[sq]
}

// rayAttacks walks each (df,dr) direction from sq until a blocker in occ
// is reached, including the blocker square itself. Queries go through
// the magic tables; this walker only seeds them at init.
func rayAttacks(sq Square, occ Bitboard, dirs [4][2]int) Bitboard {
	var att Bitboard
	f, r := sq.File(), sq.Rank()
	for _, d := range dirs {
		tf, tr := f+d[0], r+d[1]
		for tf >= 0 && tf < 8 && tr >= 0 && tr < 8 {
			t := NewSquare(tf, tr)
			att |= SquareBB(t)
			if occ.IsSet(t) {
				break
			}
			tf += d[0]
			tr += d[1]
		}
	}
	return att
}

// BishopAttacks returns diagonal slider attacks from sq given occupancy.
func BishopAttacks(sq Square, occ Bitboard) Bitboard {
	return magicBishopAttacks(sq, occ)
}

// RookAttacks returns straight slider attacks from sq given occupancy.
func RookAttacks(sq Square, occ Bitboard) Bitboard {
	return magicRookAttacks(sq, occ)
}

// QueenAttacks returns the union of rook and bishop attacks.
func QueenAttacks(sq Square, occ Bitboard) Bitboard {
	return BishopAttacks(sq, occ) | RookAttacks(sq, occ)
}
