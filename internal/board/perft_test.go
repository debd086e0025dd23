package board

import "testing"

// perft counts leaf nodes of the legal move tree, the standard move
// generator correctness check.
func perft(p *Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}
	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		u, ok := p.MakeMove(moves.Get(i))
		if !ok {
			t := moves.Get(i)
			panic("legal move rejected by MakeMove: " + t.String())
		}
		nodes += perft(p, depth-1)
		p.UnmakeMove(u)
	}
	return nodes
}

func TestPerftStartPos(t *testing.T) {
	want := []uint64{1, 20, 400, 8902}

	pos := NewPosition()
	for depth, expect := range want {
		if got := perft(pos, depth); got != expect {
			t.Errorf("perft(%d) = %d, want %d", depth, got, expect)
		}
	}
}

func TestPerftKiwipete(t *testing.T) {
	// Position 2 from the CPW perft suite: castling, en passant,
	// promotions and pins all in play.
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}

	want := []uint64{1, 48, 2039}
	for depth, expect := range want {
		if got := perft(pos, depth); got != expect {
			t.Errorf("perft(%d) = %d, want %d", depth, got, expect)
		}
	}
}

func TestPerftEnPassantPin(t *testing.T) {
	// En passant capture here would expose the king along the rank.
	pos, err := ParseFEN("8/8/8/8/k2Pp2Q/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatal(err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if moves.Get(i).IsEnPassant() {
			t.Errorf("illegal en passant %s generated as legal", moves.Get(i))
		}
	}
}

func TestMakeUnmakeRestoresState(t *testing.T) {
	pos := NewPosition()
	before := *pos

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		u, ok := pos.MakeMove(moves.Get(i))
		if !ok {
			t.Fatalf("legal move %s rejected", moves.Get(i))
		}
		pos.UnmakeMove(u)
		if *pos != before {
			t.Fatalf("state not restored after %s", moves.Get(i))
		}
	}
}
