package board

// Move packs a move into 16 bits:
// bits 0-5 from, 6-11 to, 12-13 promotion piece, 14-15 kind.
type Move uint16

const (
	kindNormal    Move = 0 << 14
	kindPromotion Move = 1 << 14
	kindEnPassant Move = 2 << 14
	kindCastle    Move = 3 << 14
)

// NoMove is the null move.
const NoMove Move = 0

// NewMove builds an ordinary move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion builds a promotion to promo (Knight..Queen).
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | kindPromotion
}

// NewEnPassant builds an en passant capture.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | kindEnPassant
}

// NewCastle builds a castling move, given as the king's hop.
func NewCastle(from, to Square) Move {
	return Move(from) | Move(to)<<6 | kindCastle
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3f)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m >> 6 & 0x3f)
}

// Promotion returns the promoted-to type. Valid only when IsPromotion.
func (m Move) Promotion() PieceType {
	return PieceType(m>>12&3) + Knight
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m&(3<<14) == kindPromotion
}

// IsEnPassant reports whether the move captures en passant.
func (m Move) IsEnPassant() bool {
	return m&(3<<14) == kindEnPassant
}

// IsCastle reports whether the move castles.
func (m Move) IsCastle() bool {
	return m&(3<<14) == kindCastle
}

// IsCapture reports whether the move removes an enemy piece on pos.
func (m Move) IsCapture(pos *Position) bool {
	return m.IsEnPassant() || pos.AllOccupied.IsSet(m.To())
}

// String returns the move in long algebraic form, e.g. "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// MoveList is a fixed-capacity move buffer; a full legal position never
// exceeds its capacity.
type MoveList struct {
	moves [256]Move
	n     int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.n] = m
	ml.n++
}

// Len returns the number of stored moves.
func (ml *MoveList) Len() int {
	return ml.n
}

// Get returns the i-th move.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set overwrites the i-th move.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap exchanges two moves, used by the lazy move picker.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}
