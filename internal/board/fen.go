package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewPosition returns the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic("board: start FEN failed to parse: " + err.Error())
	}
	return pos
}

func emptyPosition() *Position {
	p := &Position{
		EnPassant:  NoSquare,
		KingSquare: [2]Square{NoSquare, NoSquare},
	}
	for i := range p.squares {
		p.squares[i] = NoPiece
	}
	return p
}

// ParseFEN parses a FEN string into a Position.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("board: FEN needs at least 4 fields, got %d", len(fields))
	}

	p := emptyPosition()

	rank, file := 7, 0
	for _, ch := range fields[0] {
		switch {
		case ch == '/':
			rank--
			file = 0
		case ch >= '1' && ch <= '8':
			file += int(ch - '0')
		default:
			pc, ok := pieceFromChar(byte(ch))
			if !ok {
				return nil, fmt.Errorf("board: bad piece char %q in FEN", ch)
			}
			if rank < 0 || file > 7 {
				return nil, fmt.Errorf("board: FEN board field overflows at %q", ch)
			}
			p.setPiece(pc, NewSquare(file, rank))
			file++
		}
	}

	switch fields[1] {
	case "w":
		p.SideToMove = White
	case "b":
		p.SideToMove = Black
		p.Hash ^= zobTurn
	default:
		return nil, fmt.Errorf("board: bad side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				p.Castling |= WhiteKingside
			case 'Q':
				p.Castling |= WhiteQueenside
			case 'k':
				p.Castling |= BlackKingside
			case 'q':
				p.Castling |= BlackQueenside
			default:
				return nil, fmt.Errorf("board: bad castling field %q", fields[2])
			}
		}
	}
	p.Hash ^= zobCastling[p.Castling]

	if fields[3] != "-" {
		if len(fields[3]) != 2 {
			return nil, fmt.Errorf("board: bad en passant square %q", fields[3])
		}
		f := int(fields[3][0] - 'a')
		r := int(fields[3][1] - '1')
		if f < 0 || f > 7 || r < 0 || r > 7 {
			return nil, fmt.Errorf("board: bad en passant square %q", fields[3])
		}
		p.EnPassant = NewSquare(f, r)
		p.Hash ^= zobEnPassant[f]
	}

	p.HalfMoveClock = 0
	p.FullMoveNumber = 1
	if len(fields) > 4 {
		if n, err := strconv.Atoi(fields[4]); err == nil {
			p.HalfMoveClock = n
		}
	}
	if len(fields) > 5 {
		if n, err := strconv.Atoi(fields[5]); err == nil {
			p.FullMoveNumber = n
		}
	}

	if p.KingSquare[White] == NoSquare || p.KingSquare[Black] == NoSquare {
		return nil, fmt.Errorf("board: FEN position is missing a king")
	}
	return p, nil
}

// FEN serializes the position back into FEN form.
func (p *Position) FEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.squares[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.Char())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.Castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	fmt.Fprintf(&sb, " %d %d", p.HalfMoveClock, p.FullMoveNumber)
	return sb.String()
}

func pieceFromChar(ch byte) (Piece, bool) {
	c := White
	if ch >= 'a' && ch <= 'z' {
		c = Black
		ch -= 'a' - 'A'
	}
	var pt PieceType
	switch ch {
	case 'P':
		pt = Pawn
	case 'N':
		pt = Knight
	case 'B':
		pt = Bishop
	case 'R':
		pt = Rook
	case 'Q':
		pt = Queen
	case 'K':
		pt = King
	default:
		return NoPiece, false
	}
	return NewPiece(c, pt), true
}
