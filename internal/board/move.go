package board

// Move packs a move into 32 bits:
// bits 0-5   from square
// bits 6-11  to square
// bits 12-14 moving piece type
// bits 15-17 promotion piece type (6 = no promotion)
// bit 18     castling
// bit 19     en passant
// The all-zero value is the null move sentinel.
type Move uint32

// NoMove is the null move.
const NoMove Move = 0

// NewMove builds a packed move.
func NewMove(from, to Square, movingPt, promoPt PieceType, isCastling, isEP bool) Move {
	m := Move(from) & 0x3F
	m |= (Move(to) & 0x3F) << 6
	m |= (Move(movingPt) & 7) << 12
	m |= (Move(promoPt) & 7) << 15
	if isCastling {
		m |= 1 << 18
	}
	if isEP {
		m |= 1 << 19
	}
	return m
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// FromBB returns the origin square as a bitboard.
func (m Move) FromBB() Bitboard {
	return SquareBB(m.From())
}

// ToBB returns the destination square as a bitboard.
func (m Move) ToBB() Bitboard {
	return SquareBB(m.To())
}

// MovingType returns the type of the moving piece.
func (m Move) MovingType() PieceType {
	return PieceType((m >> 12) & 7)
}

// PromoType returns the promotion piece type, NoPieceType when not a promotion.
func (m Move) PromoType() PieceType {
	return PieceType((m >> 15) & 7)
}

// IsCastling reports whether the move is a castling king move.
func (m Move) IsCastling() bool {
	return m&(1<<18) != 0
}

// IsEnPassant reports whether the move is an en-passant capture.
func (m Move) IsEnPassant() bool {
	return m&(1<<19) != 0
}

// IsNull reports whether the move is the null move sentinel.
func (m Move) IsNull() bool {
	return m == NoMove
}

// String returns the move in long algebraic notation; the null move prints
// as "0000".
func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}

	from, to := m.From(), m.To()
	buf := make([]byte, 0, 5)
	buf = append(buf, byte('a'+from.File()), byte('1'+from.Rank()))
	buf = append(buf, byte('a'+to.File()), byte('1'+to.Rank()))

	if promo := m.PromoType(); promo != NoPieceType {
		promoChars := [6]byte{0, 'n', 'b', 'r', 'q', 0}
		buf = append(buf, promoChars[promo])
	}
	return string(buf)
}

// MaxMoves bounds the number of legal moves in any reachable position.
const MaxMoves = 256

// MoveList is a fixed-capacity move buffer. The generator also records on it
// whether the side to move is in check, which the search needs for mate and
// stalemate detection.
type MoveList struct {
	moves   [MaxMoves]Move
	count   int
	inCheck bool
}

// Clear empties the list.
func (ml *MoveList) Clear() {
	ml.count = 0
	ml.inCheck = false
}

// Add appends a move.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap exchanges two moves.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// InCheck reports whether the generator found the side to move in check.
func (ml *MoveList) InCheck() bool {
	return ml.inCheck
}

// setInCheck is recorded by the generator.
func (ml *MoveList) setInCheck(v bool) {
	ml.inCheck = v
}

// Slice returns the populated portion of the buffer.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Contains reports whether the list holds the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}
