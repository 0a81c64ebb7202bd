package board

// Castling rights bits.
const (
	WhiteKingSideCastle  uint8 = 1
	WhiteQueenSideCastle uint8 = 1 << 1
	BlackKingSideCastle  uint8 = 1 << 2
	BlackQueenSideCastle uint8 = 1 << 3
	AllCastling          uint8 = 0b1111
)

// MaxPly bounds the depth of the undo stack. Exceeding it is a usage error.
const MaxPly = 256

// undoInfo records what MakeMove cannot recompute when unwinding.
type undoInfo struct {
	move           Move
	epSquare       Bitboard
	hash           uint64
	rule50         int
	castlingRights uint8
	capturedType   PieceType
}

// Position is the single mutable entity during search. It is self-contained:
// cloning it by value copies the undo stack along, so a search worker can own
// its copy without external references.
type Position struct {
	// Pieces holds twelve bitboards indexed by color*6 + pieceType.
	Pieces [12]Bitboard

	// OccForColor caches the union of each side's six piece bitboards.
	OccForColor [2]Bitboard

	// EPSquare has at most one bit set: the square behind a pawn that just
	// double-pushed.
	EPSquare Bitboard

	// Hash is the zobrist summary, maintained incrementally and invariant
	// under MakeMove+UndoMove.
	Hash uint64

	Rule50         int
	CastlingRights uint8
	Us, Opp        Color

	ply       int
	undoStack [MaxPly]undoInfo
}

// NewPosition returns the standard initial chess position.
func NewPosition() *Position {
	p := &Position{
		CastlingRights: AllCastling,
		Us:             White,
		Opp:            Black,
	}
	p.Pieces[pieceIndex(White, Pawn)] = 0x000000000000FF00
	p.Pieces[pieceIndex(White, Knight)] = 0x0000000000000042
	p.Pieces[pieceIndex(White, Bishop)] = 0x0000000000000024
	p.Pieces[pieceIndex(White, Rook)] = 0x0000000000000081
	p.Pieces[pieceIndex(White, Queen)] = 0x0000000000000008
	p.Pieces[pieceIndex(White, King)] = 0x0000000000000010
	p.Pieces[pieceIndex(Black, Pawn)] = 0x00FF000000000000
	p.Pieces[pieceIndex(Black, Knight)] = 0x4200000000000000
	p.Pieces[pieceIndex(Black, Bishop)] = 0x2400000000000000
	p.Pieces[pieceIndex(Black, Rook)] = 0x8100000000000000
	p.Pieces[pieceIndex(Black, Queen)] = 0x0800000000000000
	p.Pieces[pieceIndex(Black, King)] = 0x1000000000000000

	p.updateOccupancy()
	p.Hash = p.ComputeHash()
	return p
}

// Copy returns an independent deep copy of the position.
func (p *Position) Copy() *Position {
	cp := *p
	return &cp
}

// ResetPly rewinds the undo stack base. A cloned search position always
// starts from ply 0 regardless of how the source position got here.
func (p *Position) ResetPly() {
	p.ply = 0
}

// Ply returns the current depth into the undo stack.
func (p *Position) Ply() int {
	return p.ply
}

// KingSquare returns the square of the given side's king.
func (p *Position) KingSquare(c Color) Square {
	return p.Pieces[pieceIndex(c, King)].LSB()
}

func (p *Position) updateOccupancy() {
	p.OccForColor[White] = Empty
	p.OccForColor[Black] = Empty
	for pt := Pawn; pt <= King; pt++ {
		p.OccForColor[White] |= p.Pieces[pieceIndex(White, pt)]
		p.OccForColor[Black] |= p.Pieces[pieceIndex(Black, pt)]
	}
}

// PieceTypeAt returns the type of the piece of the given color on a square,
// NoPieceType when empty.
func (p *Position) PieceTypeAt(c Color, sq Square) PieceType {
	bb := SquareBB(sq)
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[pieceIndex(c, pt)]&bb != 0 {
			return pt
		}
	}
	return NoPieceType
}

// ComputeHash recomputes the zobrist hash from scratch. The incremental hash
// must always equal this value.
func (p *Position) ComputeHash() uint64 {
	var hash uint64
	for idx := 0; idx < 12; idx++ {
		bb := p.Pieces[idx]
		for bb != 0 {
			sq := bb.PopLSB()
			hash ^= zobristPSQ[idx][sq]
		}
	}
	hash ^= zobristCastling[p.CastlingRights]
	if p.EPSquare != 0 {
		hash ^= zobristEPFile[p.EPSquare.LSB().File()]
	}
	if p.Us == Black {
		hash ^= zobristBlackToMove
	}
	return hash
}

// Equal compares the externally visible position state. The undo stack and
// ply are deliberately excluded.
func (p *Position) Equal(other *Position) bool {
	return p.Pieces == other.Pieces &&
		p.OccForColor == other.OccForColor &&
		p.EPSquare == other.EPSquare &&
		p.Rule50 == other.Rule50 &&
		p.CastlingRights == other.CastlingRights &&
		p.Us == other.Us &&
		p.Opp == other.Opp &&
		p.Hash == other.Hash
}

// Back-rank squares used by the castling mechanics: rook endpoints and the
// squares the king crosses or that must be empty.
const (
	bbA1 = Bitboard(1) << 0
	bbB1 = Bitboard(1) << 1
	bbC1 = Bitboard(1) << 2
	bbD1 = Bitboard(1) << 3
	bbF1 = Bitboard(1) << 5
	bbG1 = Bitboard(1) << 6
	bbH1 = Bitboard(1) << 7
	bbA8 = Bitboard(1) << 56
	bbB8 = Bitboard(1) << 57
	bbC8 = Bitboard(1) << 58
	bbD8 = Bitboard(1) << 59
	bbF8 = Bitboard(1) << 61
	bbG8 = Bitboard(1) << 62
	bbH8 = Bitboard(1) << 63
)

// MakeMove applies a legal move in place, maintaining the hash incrementally.
// Moves not produced by the generator are undefined behavior.
func (p *Position) MakeMove(m Move) {
	u := &p.undoStack[p.ply]
	p.ply++
	u.move = m
	u.castlingRights = p.CastlingRights
	u.epSquare = p.EPSquare
	u.rule50 = p.Rule50
	u.hash = p.Hash

	if p.EPSquare != 0 {
		p.Hash ^= zobristEPFile[p.EPSquare.LSB().File()]
	}
	// XOR the old rights out here and the new rights in below; when nothing
	// changes the two cancel, so idempotent right-clearing stays hash-safe.
	p.Hash ^= zobristCastling[p.CastlingRights]

	from := m.FromBB()
	to := m.ToBB()
	fromSq := m.From()
	toSq := m.To()
	movingPt := m.MovingType()
	promoPt := m.PromoType()

	capturedType := NoPieceType
	if m.IsEnPassant() {
		var capSquare Bitboard
		if p.Us == White {
			capSquare = to >> 8
		} else {
			capSquare = to << 8
		}
		capturedType = Pawn
		oppPawn := pieceIndex(p.Opp, Pawn)
		p.Pieces[oppPawn] ^= capSquare
		p.OccForColor[p.Opp] ^= capSquare
		p.Hash ^= zobristPSQ[oppPawn][capSquare.LSB()]
	} else if hit := to & p.OccForColor[p.Opp]; hit != 0 {
		for pt := Pawn; pt <= King; pt++ {
			idx := pieceIndex(p.Opp, pt)
			if p.Pieces[idx]&hit != 0 {
				capturedType = pt
				p.Pieces[idx] ^= hit
				p.OccForColor[p.Opp] ^= hit
				p.Hash ^= zobristPSQ[idx][toSq]
				break
			}
		}
	}
	u.capturedType = capturedType

	// Move the piece itself.
	base := pieceIndex(p.Us, movingPt)
	p.Pieces[base] ^= from | to
	p.OccForColor[p.Us] ^= from | to
	p.Hash ^= zobristPSQ[base][fromSq]

	if promoPt != NoPieceType {
		promoIdx := pieceIndex(p.Us, promoPt)
		p.Pieces[base] ^= to
		p.Pieces[promoIdx] ^= to
		p.Hash ^= zobristPSQ[promoIdx][toSq]
	} else {
		p.Hash ^= zobristPSQ[base][toSq]
	}

	if m.IsCastling() {
		rook := pieceIndex(p.Us, Rook)
		if p.Us == White {
			if to == bbG1 {
				p.Pieces[rook] ^= bbH1 | bbF1
				p.OccForColor[White] ^= bbH1 | bbF1
				p.Hash ^= zobristPSQ[rook][H1] ^ zobristPSQ[rook][F1]
			} else {
				p.Pieces[rook] ^= bbA1 | bbD1
				p.OccForColor[White] ^= bbA1 | bbD1
				p.Hash ^= zobristPSQ[rook][A1] ^ zobristPSQ[rook][D1]
			}
		} else {
			if to == bbG8 {
				p.Pieces[rook] ^= bbH8 | bbF8
				p.OccForColor[Black] ^= bbH8 | bbF8
				p.Hash ^= zobristPSQ[rook][H8] ^ zobristPSQ[rook][F8]
			} else {
				p.Pieces[rook] ^= bbA8 | bbD8
				p.OccForColor[Black] ^= bbA8 | bbD8
				p.Hash ^= zobristPSQ[rook][A8] ^ zobristPSQ[rook][D8]
			}
		}
	}

	// New en-passant square only after a double push.
	if movingPt == Pawn && from&Rank2 != 0 && to&Rank4 != 0 {
		p.EPSquare = to >> 8
	} else if movingPt == Pawn && from&Rank7 != 0 && to&Rank5 != 0 {
		p.EPSquare = to << 8
	} else {
		p.EPSquare = 0
	}
	if p.EPSquare != 0 {
		p.Hash ^= zobristEPFile[p.EPSquare.LSB().File()]
	}

	// Rights clear whenever a rook corner is touched, even when the right is
	// already gone; the surrounding hash XORs cancel in that case.
	if from == bbH1 || to == bbH1 {
		p.CastlingRights &^= WhiteKingSideCastle
	} else if from == bbA1 || to == bbA1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if from == bbH8 || to == bbH8 {
		p.CastlingRights &^= BlackKingSideCastle
	} else if from == bbA8 || to == bbA8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if movingPt == King {
		if p.Us == White {
			p.CastlingRights &= BlackKingSideCastle | BlackQueenSideCastle
		} else {
			p.CastlingRights &= WhiteKingSideCastle | WhiteQueenSideCastle
		}
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if movingPt == Pawn || capturedType != NoPieceType {
		p.Rule50 = 0
	} else {
		p.Rule50++
	}

	p.Us, p.Opp = p.Opp, p.Us
	p.Hash ^= zobristBlackToMove
}

// UndoMove exactly reverses the most recent MakeMove. Undoing past the base
// of the stack is a usage error.
func (p *Position) UndoMove() {
	p.ply--
	u := &p.undoStack[p.ply]
	p.EPSquare = u.epSquare
	p.Rule50 = u.rule50
	p.CastlingRights = u.castlingRights
	p.Hash = u.hash

	p.Us, p.Opp = p.Opp, p.Us

	m := u.move
	from := m.FromBB()
	to := m.ToBB()
	movingPt := m.MovingType()
	promoPt := m.PromoType()

	if m.IsCastling() {
		rook := pieceIndex(p.Us, Rook)
		if p.Us == White {
			if to == bbG1 {
				p.Pieces[rook] ^= bbF1 | bbH1
				p.OccForColor[White] ^= bbF1 | bbH1
			} else {
				p.Pieces[rook] ^= bbD1 | bbA1
				p.OccForColor[White] ^= bbD1 | bbA1
			}
		} else {
			if to == bbG8 {
				p.Pieces[rook] ^= bbF8 | bbH8
				p.OccForColor[Black] ^= bbF8 | bbH8
			} else {
				p.Pieces[rook] ^= bbD8 | bbA8
				p.OccForColor[Black] ^= bbD8 | bbA8
			}
		}
	}

	base := pieceIndex(p.Us, movingPt)
	if promoPt != NoPieceType {
		p.Pieces[pieceIndex(p.Us, promoPt)] ^= to
		p.Pieces[base] ^= from
		p.OccForColor[p.Us] ^= from | to
	} else {
		p.Pieces[base] ^= from | to
		p.OccForColor[p.Us] ^= from | to
	}

	if u.capturedType != NoPieceType {
		var capSquare Bitboard
		if m.IsEnPassant() {
			if p.Us == White {
				capSquare = to >> 8
			} else {
				capSquare = to << 8
			}
		} else {
			capSquare = to
		}
		p.Pieces[pieceIndex(p.Opp, u.capturedType)] ^= capSquare
		p.OccForColor[p.Opp] ^= capSquare
	}
}
