package board

// GeneratePseudoLegal appends every pseudo-legal move for the side to
// move. King safety is checked by MakeMove, not here, except for
// castling where the crossed squares are verified immediately.
func (p *Position) GeneratePseudoLegal(ml *MoveList) {
	us := p.SideToMove
	them := us.Other()
	own := p.Occupied[us]
	enemy := p.Occupied[them]

	p.genPawnMoves(ml, us, enemy)

	for knights := p.Pieces[us][Knight]; knights != 0; {
		from := knights.PopLSB()
		addTargets(ml, from, knightAttacks[from]&^own)
	}
	for bishops := p.Pieces[us][Bishop]; bishops != 0; {
		from := bishops.PopLSB()
		addTargets(ml, from, BishopAttacks(from, p.AllOccupied)&^own)
	}
	for rooks := p.Pieces[us][Rook]; rooks != 0; {
		from := rooks.PopLSB()
		addTargets(ml, from, RookAttacks(from, p.AllOccupied)&^own)
	}
	for queens := p.Pieces[us][Queen]; queens != 0; {
		from := queens.PopLSB()
		addTargets(ml, from, QueenAttacks(from, p.AllOccupied)&^own)
	}

	king := p.KingSquare[us]
	addTargets(ml, king, kingAttacks[king]&^own)
	p.genCastles(ml, us)
}

// GenerateLegalMoves returns the fully legal move list, filtering the
// pseudo-legal set through MakeMove.
func (p *Position) GenerateLegalMoves() *MoveList {
	var pseudo MoveList
	p.GeneratePseudoLegal(&pseudo)

	legal := &MoveList{}
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		if u, ok := p.MakeMove(m); ok {
			p.UnmakeMove(u)
			legal.Add(m)
		}
	}
	return legal
}

// GenerateCaptures returns the legal captures and promotions, for the
// quiescence search.
func (p *Position) GenerateCaptures() *MoveList {
	all := p.GenerateLegalMoves()
	caps := &MoveList{}
	for i := 0; i < all.Len(); i++ {
		m := all.Get(i)
		if m.IsCapture(p) || m.IsPromotion() {
			caps.Add(m)
		}
	}
	return caps
}

func addTargets(ml *MoveList, from Square, targets Bitboard) {
	for targets != 0 {
		ml.Add(NewMove(from, targets.PopLSB()))
	}
}

func (p *Position) genPawnMoves(ml *MoveList, us Color, enemy Bitboard) {
	up := 8
	startRank, promoRank := 1, 7
	if us == Black {
		up = -8
		startRank, promoRank = 6, 0
	}

	for pawns := p.Pieces[us][Pawn]; pawns != 0; {
		from := pawns.PopLSB()
		oneUp := Square(int(from) + up)

		if !p.AllOccupied.IsSet(oneUp) {
			addPawnMove(ml, from, oneUp, promoRank)
			if from.Rank() == startRank {
				twoUp := Square(int(oneUp) + up)
				if !p.AllOccupied.IsSet(twoUp) {
					ml.Add(NewMove(from, twoUp))
				}
			}
		}

		for caps := pawnAttacks[us][from] & enemy; caps != 0; {
			addPawnMove(ml, from, caps.PopLSB(), promoRank)
		}
		if p.EnPassant != NoSquare && pawnAttacks[us][from].IsSet(p.EnPassant) {
			ml.Add(NewEnPassant(from, p.EnPassant))
		}
	}
}

func addPawnMove(ml *MoveList, from, to Square, promoRank int) {
	if to.Rank() == promoRank {
		ml.Add(NewPromotion(from, to, Queen))
		ml.Add(NewPromotion(from, to, Rook))
		ml.Add(NewPromotion(from, to, Bishop))
		ml.Add(NewPromotion(from, to, Knight))
		return
	}
	ml.Add(NewMove(from, to))
}

func (p *Position) genCastles(ml *MoveList, us Color) {
	them := us.Other()
	king := p.KingSquare[us]
	if p.IsAttacked(king, them) {
		return
	}

	type castle struct {
		right    CastlingRights
		kingTo   Square
		empty    Bitboard
		safe     [2]Square // crossed squares that must not be attacked
	}
	var options [2]castle
	if us == White {
		options = [2]castle{
			{WhiteKingside, G1, SquareBB(F1) | SquareBB(G1), [2]Square{F1, G1}},
			{WhiteQueenside, C1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [2]Square{D1, C1}},
		}
	} else {
		options = [2]castle{
			{BlackKingside, G8, SquareBB(F8) | SquareBB(G8), [2]Square{F8, G8}},
			{BlackQueenside, C8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [2]Square{D8, C8}},
		}
	}

	for _, c := range options {
		if p.Castling&c.right == 0 || p.AllOccupied&c.empty != 0 {
			continue
		}
		if p.IsAttacked(c.safe[0], them) || p.IsAttacked(c.safe[1], them) {
			continue
		}
		ml.Add(NewCastle(king, c.kingTo))
	}
}
