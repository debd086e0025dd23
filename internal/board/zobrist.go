package board

// Zobrist keys, generated from a fixed seed so hashes are reproducible
// across runs. PawnKey additionally covers the kings, since the pawn
// and king placement together key the pawn/king evaluation cache.
var (
	zobPiece     [12][64]uint64
	zobCastling  [16]uint64
	zobEnPassant [8]uint64
	zobTurn      uint64
)

// splitmix64, seeded once; stable stream for key generation.
type keyGen struct{ state uint64 }

func (g *keyGen) next() uint64 {
	g.state += 0x9e3779b97f4a7c15
	z := g.state
	z = (z ^ z>>30) * 0xbf58476d1ce4e5b9
	z = (z ^ z>>27) * 0x94d049bb133111eb
	return z ^ z>>31
}

func init() {
	g := &keyGen{state: 0x1a2b3c4d5e6f7081}
	for p := 0; p < 12; p++ {
		for sq := 0; sq < 64; sq++ {
			zobPiece[p][sq] = g.next()
		}
	}
	for i := range zobCastling {
		zobCastling[i] = g.next()
	}
	for i := range zobEnPassant {
		zobEnPassant[i] = g.next()
	}
	zobTurn = g.next()
}
