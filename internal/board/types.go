package board

// Square indexes the board 0-63, A1=0, H1=7, A8=56, H8=63.
type Square uint8

const (
	A1, B1, C1, D1, E1, F1, G1, H1 Square = 0, 1, 2, 3, 4, 5, 6, 7
	A2, B2, C2, D2, E2, F2, G2, H2 Square = 8, 9, 10, 11, 12, 13, 14, 15
	A3, B3, C3, D3, E3, F3, G3, H3 Square = 16, 17, 18, 19, 20, 21, 22, 23
	A4, B4, C4, D4, E4, F4, G4, H4 Square = 24, 25, 26, 27, 28, 29, 30, 31
	A5, B5, C5, D5, E5, F5, G5, H5 Square = 32, 33, 34, 35, 36, 37, 38, 39
	A6, B6, C6, D6, E6, F6, G6, H6 Square = 40, 41, 42, 43, 44, 45, 46, 47
	A7, B7, C7, D7, E7, F7, G7, H7 Square = 48, 49, 50, 51, 52, 53, 54, 55
	A8, B8, C8, D8, E8, F8, G8, H8 Square = 56, 57, 58, 59, 60, 61, 62, 63

	NoSquare Square = 64
)

// NewSquare builds a square from file (0=a) and rank (0=first rank).
func NewSquare(file, rank int) Square {
	return Square(rank<<3 | file)
}

// File returns the square's file, 0-7.
func (sq Square) File() int {
	return int(sq) & 7
}

// Rank returns the square's rank, 0-7.
func (sq Square) Rank() int {
	return int(sq) >> 3
}

// String returns algebraic notation, e.g. "e4".
func (sq Square) String() string {
	if sq >= NoSquare {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// Color is a side, White moves first.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposite side.
func (c Color) Other() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == White {
		return "White"
	}
	return "Black"
}

// PieceType is the kind of a piece, color-independent.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

var pieceTypeChars = [7]byte{'p', 'n', 'b', 'r', 'q', 'k', ' '}

// Char returns the lowercase FEN character for the type.
func (pt PieceType) Char() byte {
	return pieceTypeChars[pt]
}

// Piece is a colored piece, encoded type + 6*color. NoPiece = 12, so
// [12] tables index cleanly by piece.
type Piece uint8

const (
	WhitePawn Piece = Piece(Pawn)
	BlackPawn Piece = Piece(Pawn) + 6
	NoPiece   Piece = 12
)

// NewPiece builds a piece from color and type.
func NewPiece(c Color, pt PieceType) Piece {
	return Piece(pt) + Piece(c)*6
}

// Type returns the piece's kind.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the piece's side. Undefined for NoPiece.
func (p Piece) Color() Color {
	return Color(p / 6)
}

// Char returns the FEN character, uppercase for White.
func (p Piece) Char() byte {
	if p >= NoPiece {
		return '.'
	}
	ch := p.Type().Char()
	if p.Color() == White {
		ch -= 'a' - 'A'
	}
	return ch
}

// CastlingRights is a bitmask of the four castle options.
type CastlingRights uint8

const (
	WhiteKingside CastlingRights = 1 << iota
	WhiteQueenside
	BlackKingside
	BlackQueenside

	NoCastling  CastlingRights = 0
	AllCastling CastlingRights = WhiteKingside | WhiteQueenside | BlackKingside | BlackQueenside
)

// castleRightsMask clears rights whenever a move touches a king or rook
// home square. Indexed by square, ANDed into the position's rights for
// both the from and to squares of every move.
var castleRightsMask = func() [64]CastlingRights {
	var m [64]CastlingRights
	for sq := range m {
		m[sq] = AllCastling
	}
	m[A1] &^= WhiteQueenside
	m[H1] &^= WhiteKingside
	m[E1] &^= WhiteKingside | WhiteQueenside
	m[A8] &^= BlackQueenside
	m[H8] &^= BlackKingside
	m[E8] &^= BlackKingside | BlackQueenside
	return m
}()

func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var b []byte
	if cr&WhiteKingside != 0 {
		b = append(b, 'K')
	}
	if cr&WhiteQueenside != 0 {
		b = append(b, 'Q')
	}
	if cr&BlackKingside != 0 {
		b = append(b, 'k')
	}
	if cr&BlackQueenside != 0 {
		b = append(b, 'q')
	}
	return string(b)
}
