package board

// Fancy magic bitboards for the sliders. Each square's relevant
// occupancy is hashed by a fixed multiplier into a shared attack
// table, filled once at init from the ray walker.

type magicEntry struct {
	mask   Bitboard
	mul    uint64
	shift  uint8
	offset uint32
}

var (
	bishopMagics [64]magicEntry
	rookMagics   [64]magicEntry

	bishopAttackTable [5248]Bitboard
	rookAttackTable   [102400]Bitboard
)

// Known-good multipliers; the table geometry depends on their exact
// values.
var bishopMagicNumbers = [64]uint64{
	0x0002020202020200, 0x0002020202020000, 0x0004010202000000, 0x0004040080000000,
	0x0001104000000000, 0x0000821040000000, 0x0000410410400000, 0x0000104104104000,
	0x0000040404040400, 0x0000020202020200, 0x0000040102020000, 0x0000040400800000,
	0x0000011040000000, 0x0000008210400000, 0x0000004104104000, 0x0000002082082000,
	0x0004000808080800, 0x0002000404040400, 0x0001000202020200, 0x0000800802004000,
	0x0000800400A00000, 0x0000200100884000, 0x0000400082082000, 0x0000200041041000,
	0x0002080010101000, 0x0001040008080800, 0x0000208004010400, 0x0000404004010200,
	0x0000840000802000, 0x0000404002011000, 0x0000808001041000, 0x0000404000820800,
	0x0001041000202000, 0x0000820800101000, 0x0000104400080800, 0x0000020080080080,
	0x0000404040040100, 0x0000808100020100, 0x0001010100020800, 0x0000808080010400,
	0x0000820820004000, 0x0000410410002000, 0x0000082088001000, 0x0000002011000800,
	0x0000080100400400, 0x0001010101000200, 0x0002020202000400, 0x0001010101000200,
	0x0000410410400000, 0x0000208208200000, 0x0000002084100000, 0x0000000020880000,
	0x0000001002020000, 0x0000040408020000, 0x0004040404040000, 0x0002020202020000,
	0x0000104104104000, 0x0000002082082000, 0x0000000020841000, 0x0000000000208800,
	0x0000000010020200, 0x0000000404080200, 0x0000040404040400, 0x0002020202020200,
}

var rookMagicNumbers = [64]uint64{
	0x0080001020400080, 0x0040001000200040, 0x0080081000200080, 0x0080040800100080,
	0x0080020400080080, 0x0080010200040080, 0x0080008001000200, 0x0080002040800100,
	0x0000800020400080, 0x0000400020005000, 0x0000801000200080, 0x0000800800100080,
	0x0000800400080080, 0x0000800200040080, 0x0000800100020080, 0x0000800040800100,
	0x0000208000400080, 0x0000404000201000, 0x0000808010002000, 0x0000808008001000,
	0x0000808004000800, 0x0000808002000400, 0x0000010100020004, 0x0000020000408104,
	0x0000208080004000, 0x0000200040005000, 0x0000100080200080, 0x0000080080100080,
	0x0000040080080080, 0x0000020080040080, 0x0000010080800200, 0x0000800080004100,
	0x0000204000800080, 0x0000200040401000, 0x0000100080802000, 0x0000080080801000,
	0x0000040080800800, 0x0000020080800400, 0x0000020001010004, 0x0000800040800100,
	0x0000204000808000, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000010002008080, 0x0000004081020004,
	0x0000204000800080, 0x0000200040008080, 0x0000100020008080, 0x0000080010008080,
	0x0000040008008080, 0x0000020004008080, 0x0000800100020080, 0x0000800041000080,
	0x00FFFCDDFCED714A, 0x007FFCDDFCED714A, 0x003FFFCDFFD88096, 0x0000040810002101,
	0x0001000204080011, 0x0001000204000801, 0x0001000082000401, 0x0001FFFAABFAD1A2,
}

const (
	fileABB Bitboard = 0x0101010101010101
	fileHBB Bitboard = 0x8080808080808080
	rank1BB Bitboard = 0x00000000000000FF
	rank8BB Bitboard = 0xFF00000000000000
)

var (
	bishopDirs = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	rookDirs   = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
)

func initMagics() {
	fillMagics(bishopMagics[:], bishopMagicNumbers[:], bishopAttackTable[:], bishopDirs, bishopMask)
	fillMagics(rookMagics[:], rookMagicNumbers[:], rookAttackTable[:], rookDirs, rookMask)
}

// fillMagics enumerates every occupancy subset of each square's mask
// and records its ray attack set at the hashed table slot.
func fillMagics(magics []magicEntry, muls []uint64, table []Bitboard, dirs [4][2]int, maskOf func(Square) Bitboard) {
	var offset uint32
	for sq := Square(0); sq < 64; sq++ {
		mask := maskOf(sq)
		bits := mask.PopCount()

		magics[sq] = magicEntry{
			mask:   mask,
			mul:    muls[sq],
			shift:  uint8(64 - bits),
			offset: offset,
		}

		for i := 0; i < 1<<bits; i++ {
			occ := occupancyFor(i, mask)
			idx := (uint64(occ) * muls[sq]) >> (64 - bits)
			table[offset+uint32(idx)] = rayAttacks(sq, occ, dirs)
		}
		offset += uint32(1 << bits)
	}
}

// occupancyFor spreads the bits of index over the set squares of mask.
func occupancyFor(index int, mask Bitboard) Bitboard {
	var occ Bitboard
	for i := 0; mask != 0; i++ {
		sq := mask.PopLSB()
		if index&(1<<i) != 0 {
			occ |= SquareBB(sq)
		}
	}
	return occ
}

// bishopMask is the diagonal ray set minus the board edge; edge
// occupancy never changes a diagonal attack set.
func bishopMask(sq Square) Bitboard {
	return rayAttacks(sq, 0, bishopDirs) &^ (rank1BB | rank8BB | fileABB | fileHBB)
}

// rookMask keeps the interior of each rank and file ray; nothing lies
// beyond the far edge square for its occupancy to matter.
func rookMask(sq Square) Bitboard {
	f, r := sq.File(), sq.Rank()
	var m Bitboard
	for tf := 1; tf < 7; tf++ {
		if tf != f {
			m |= SquareBB(NewSquare(tf, r))
		}
	}
	for tr := 1; tr < 7; tr++ {
		if tr != r {
			m |= SquareBB(NewSquare(f, tr))
		}
	}
	return m
}

func magicBishopAttacks(sq Square, occ Bitboard) Bitboard {
	m := &bishopMagics[sq]
	idx := (uint64(occ&m.mask) * m.mul) >> m.shift
	return bishopAttackTable[m.offset+uint32(idx)]
}

func magicRookAttacks(sq Square, occ Bitboard) Bitboard {
	m := &rookMagics[sq]
	idx := (uint64(occ&m.mask) * m.mul) >> m.shift
	return rookAttackTable[m.offset+uint32(idx)]
}
