package board

// The generator produces fully legal moves in a single pass: it computes the
// opponent attack mask (with the friendly king lifted off the board so sliders
// see through it), the checker set, the check-evasion target set and the pin
// set up front, then emits only moves that respect all of them. There is no
// make/verify/undo filtering step.

// moveGen holds the per-invocation working state shared by the mask helpers.
type moveGen struct {
	pos    *Position
	usOcc  Bitboard
	oppOcc Bitboard
	occ    Bitboard
	oppRQ  Bitboard
	oppBQ  Bitboard
	kingSq Square
}

// LegalMoves fills ml with every legal move for the side to move and records
// whether that side is in check. With onlyCaptures set, quiet moves and
// castling are suppressed and destinations are restricted to enemy pieces.
func (p *Position) LegalMoves(ml *MoveList, onlyCaptures bool) {
	ml.Clear()

	us, opp := p.Us, p.Opp
	g := moveGen{
		pos:    p,
		usOcc:  p.OccForColor[us],
		oppOcc: p.OccForColor[opp],
		occ:    p.OccForColor[White] | p.OccForColor[Black],
		oppRQ:  p.Pieces[pieceIndex(opp, Rook)] | p.Pieces[pieceIndex(opp, Queen)],
		oppBQ:  p.Pieces[pieceIndex(opp, Bishop)] | p.Pieces[pieceIndex(opp, Queen)],
		kingSq: p.Pieces[pieceIndex(us, King)].LSB(),
	}

	attackMask := g.attackMask()
	checkerMask := g.checkerMask()
	checkCount := checkerMask.PopCount()
	isInCheck := checkCount != 0
	ml.setInCheck(isInCheck)
	isInDoubleCheck := checkCount > 1

	// If a single slider checks, the squares between it and the king may be
	// blocked; for contact checkers only the capture resolves it.
	sliderCheckers := checkerMask &^ (p.Pieces[pieceIndex(opp, Pawn)] | p.Pieces[pieceIndex(opp, Knight)])
	var checkBlockMask Bitboard
	if checkCount == 1 && sliderCheckers != 0 {
		checkBlockMask = Between(g.kingSq, sliderCheckers.LSB())
	}
	checkEvasionMask := Universe
	if isInCheck {
		checkEvasionMask = checkerMask | checkBlockMask
	}

	pinMask := g.pinMask()

	capturable := ^g.usOcc
	if onlyCaptures {
		capturable = g.oppOcc
	}

	if !isInDoubleCheck {
		g.emitPawnMoves(ml, onlyCaptures, isInCheck, checkEvasionMask, pinMask)

		// Knights. A pinned knight never stays on its pin ray, so the line
		// mask empties its move set.
		knights := p.Pieces[pieceIndex(us, Knight)]
		for knights != 0 {
			sq := knights.PopLSB()
			moves := KnightAttacks(sq) & capturable & checkEvasionMask
			if SquareBB(sq)&pinMask != 0 {
				moves &= Line(sq, g.kingSq)
			}
			addMoves(ml, sq, moves, Knight)
		}

		bishops := p.Pieces[pieceIndex(us, Bishop)]
		for bishops != 0 {
			sq := bishops.PopLSB()
			moves := BishopAttacks(sq, g.occ) & capturable & checkEvasionMask
			if SquareBB(sq)&pinMask != 0 {
				moves &= Line(sq, g.kingSq)
			}
			addMoves(ml, sq, moves, Bishop)
		}

		rooks := p.Pieces[pieceIndex(us, Rook)]
		for rooks != 0 {
			sq := rooks.PopLSB()
			moves := RookAttacks(sq, g.occ) & capturable & checkEvasionMask
			if SquareBB(sq)&pinMask != 0 {
				moves &= Line(sq, g.kingSq)
			}
			addMoves(ml, sq, moves, Rook)
		}

		queens := p.Pieces[pieceIndex(us, Queen)]
		for queens != 0 {
			sq := queens.PopLSB()
			moves := QueenAttacks(sq, g.occ) & capturable & checkEvasionMask
			if SquareBB(sq)&pinMask != 0 {
				moves &= Line(sq, g.kingSq)
			}
			addMoves(ml, sq, moves, Queen)
		}
	}

	// King moves. The attack mask was built with the king removed from the
	// occupancy, so stepping backwards along a checking ray is excluded.
	kingMoves := KingAttacks(g.kingSq) & capturable & ^attackMask
	addMoves(ml, g.kingSq, kingMoves, King)

	if !onlyCaptures && !isInCheck {
		g.emitCastlingMoves(ml, attackMask)
	}
}

// GenerateLegalMoves is a convenience wrapper returning a fresh list.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := &MoveList{}
	p.LegalMoves(ml, false)
	return ml
}

// InCheck reports whether the side to move is in check.
func (p *Position) InCheck() bool {
	us, opp := p.Us, p.Opp
	occ := p.OccForColor[White] | p.OccForColor[Black]
	kingSq := p.Pieces[pieceIndex(us, King)].LSB()

	if PawnAttacks(us, kingSq)&p.Pieces[pieceIndex(opp, Pawn)] != 0 {
		return true
	}
	if KnightAttacks(kingSq)&p.Pieces[pieceIndex(opp, Knight)] != 0 {
		return true
	}
	oppRQ := p.Pieces[pieceIndex(opp, Rook)] | p.Pieces[pieceIndex(opp, Queen)]
	if RookAttacks(kingSq, occ)&oppRQ != 0 {
		return true
	}
	oppBQ := p.Pieces[pieceIndex(opp, Bishop)] | p.Pieces[pieceIndex(opp, Queen)]
	return BishopAttacks(kingSq, occ)&oppBQ != 0
}

func addMoves(ml *MoveList, from Square, moves Bitboard, pt PieceType) {
	for moves != 0 {
		to := moves.PopLSB()
		ml.Add(NewMove(from, to, pt, NoPieceType, false, false))
	}
}

// attackMask is the union of all opponent attacks, computed against an
// occupancy with the friendly king removed so that sliders see through it.
func (g *moveGen) attackMask() Bitboard {
	p := g.pos
	us, opp := p.Us, p.Opp

	var mask Bitboard

	// Raw pawn capture shifts, independent of targets.
	oppPawns := p.Pieces[pieceIndex(opp, Pawn)]
	if us == White {
		mask |= ((oppPawns & ^FileA) >> 9) | ((oppPawns & ^FileH) >> 7)
	} else {
		mask |= ((oppPawns & ^FileH) << 9) | ((oppPawns & ^FileA) << 7)
	}

	occWithoutKing := g.occ & ^p.Pieces[pieceIndex(us, King)]

	rq := g.oppRQ
	for rq != 0 {
		mask |= RookAttacks(rq.PopLSB(), occWithoutKing)
	}
	bq := g.oppBQ
	for bq != 0 {
		mask |= BishopAttacks(bq.PopLSB(), occWithoutKing)
	}

	knights := p.Pieces[pieceIndex(opp, Knight)]
	for knights != 0 {
		mask |= KnightAttacks(knights.PopLSB())
	}

	mask |= KingAttacks(p.Pieces[pieceIndex(opp, King)].LSB())

	return mask
}

// checkerMask finds the opponent pieces currently attacking our king by
// pretending the king is each piece type in turn.
func (g *moveGen) checkerMask() Bitboard {
	p := g.pos
	opp := p.Opp

	// Our own capture pattern from the king square hits exactly the enemy
	// pawns that attack it.
	mask := PawnAttacks(p.Us, g.kingSq) & p.Pieces[pieceIndex(opp, Pawn)]
	mask |= RookAttacks(g.kingSq, g.occ) & g.oppRQ
	mask |= BishopAttacks(g.kingSq, g.occ) & g.oppBQ
	mask |= KnightAttacks(g.kingSq) & p.Pieces[pieceIndex(opp, Knight)]
	return mask
}

// pinMask marks friendly pieces that sit alone between the king and an enemy
// slider on the king's x-ray.
func (g *moveGen) pinMask() Bitboard {
	potentialPinners := (rookXRayMask[g.kingSq] & g.oppRQ) | (bishopXRayMask[g.kingSq] & g.oppBQ)

	var pinned Bitboard
	for potentialPinners != 0 {
		pinnerSq := potentialPinners.PopLSB()
		between := Between(pinnerSq, g.kingSq) & g.occ
		if between.Single() && between&g.usOcc != 0 {
			pinned |= between
		}
	}
	return pinned
}

func (g *moveGen) emitPawnMoves(ml *MoveList, onlyCaptures, isInCheck bool, checkEvasionMask, pinMask Bitboard) {
	p := g.pos
	us := p.Us
	free := ^g.occ

	pawns := p.Pieces[pieceIndex(us, Pawn)]
	for pawns != 0 {
		sq := pawns.PopLSB()
		pawn := SquareBB(sq)

		var singlePush, doublePush Bitboard
		if !onlyCaptures {
			singlePush = pawnSinglePushMask[us][sq] & free
			if us == White {
				doublePush = ((singlePush & Rank3) << 8) & free
			} else {
				doublePush = ((singlePush & Rank6) >> 8) & free
			}
		}

		leftCapture := pawnCaptureLeftMask[us][sq] & g.oppOcc
		rightCapture := pawnCaptureRightMask[us][sq] & g.oppOcc
		normalMoves := singlePush | doublePush | leftCapture | rightCapture

		var ep Bitboard
		if g.epLegal(pawn) {
			ep = (pawnCaptureLeftMask[us][sq] | pawnCaptureRightMask[us][sq]) & p.EPSquare
		}

		normalMoves &= checkEvasionMask
		if isInCheck {
			// En-passant resolves a check only by capturing the checking
			// pawn itself.
			var capturedSquare Bitboard
			if us == White {
				capturedSquare = ep >> 8
			} else {
				capturedSquare = ep << 8
			}
			if capturedSquare != checkEvasionMask {
				ep = 0
			}
		}

		if pawn&pinMask != 0 {
			normalMoves &= Line(sq, g.kingSq)
			ep &= Line(sq, g.kingSq)
		}

		if ep != 0 {
			ml.Add(NewMove(sq, ep.LSB(), Pawn, NoPieceType, false, true))
		}

		promoRank := Rank8
		if us == Black {
			promoRank = Rank1
		}
		for normalMoves != 0 {
			to := normalMoves.PopLSB()
			if SquareBB(to)&promoRank != 0 {
				ml.Add(NewMove(sq, to, Pawn, Knight, false, false))
				ml.Add(NewMove(sq, to, Pawn, Bishop, false, false))
				ml.Add(NewMove(sq, to, Pawn, Rook, false, false))
				ml.Add(NewMove(sq, to, Pawn, Queen, false, false))
			} else {
				ml.Add(NewMove(sq, to, Pawn, NoPieceType, false, false))
			}
		}
	}
}

// epLegal covers the one legality condition the pin mask cannot: capturing
// en passant removes two pawns from the king's rank at once, which may
// uncover a horizontal rook or queen check.
func (g *moveGen) epLegal(capturingPawn Bitboard) bool {
	p := g.pos
	if p.EPSquare == 0 {
		return false
	}

	var capturedPawn Bitboard
	if p.Us == White {
		capturedPawn = p.EPSquare >> 8
	} else {
		capturedPawn = p.EPSquare << 8
	}

	epRank := capturedPawn.LSB().Rank()
	if epRank != g.kingSq.Rank() {
		return true
	}

	occWithoutPawns := g.occ & ^capturingPawn & ^capturedPawn
	relevantAttackers := RankMask[epRank] & g.oppRQ
	for relevantAttackers != 0 {
		attackerSq := relevantAttackers.PopLSB()
		if occWithoutPawns&Between(g.kingSq, attackerSq) == 0 {
			return false
		}
	}
	return true
}

func (g *moveGen) emitCastlingMoves(ml *MoveList, attackMask Bitboard) {
	p := g.pos
	if p.Us == White {
		if p.CastlingRights&WhiteKingSideCastle != 0 {
			between := bbF1 | bbG1
			if g.occ&between == 0 && attackMask&between == 0 {
				ml.Add(NewMove(E1, G1, King, NoPieceType, true, false))
			}
		}
		if p.CastlingRights&WhiteQueenSideCastle != 0 {
			between := bbB1 | bbC1 | bbD1
			passSquares := bbC1 | bbD1
			if g.occ&between == 0 && attackMask&passSquares == 0 {
				ml.Add(NewMove(E1, C1, King, NoPieceType, true, false))
			}
		}
	} else {
		if p.CastlingRights&BlackKingSideCastle != 0 {
			between := bbF8 | bbG8
			if g.occ&between == 0 && attackMask&between == 0 {
				ml.Add(NewMove(E8, G8, King, NoPieceType, true, false))
			}
		}
		if p.CastlingRights&BlackQueenSideCastle != 0 {
			between := bbB8 | bbC8 | bbD8
			passSquares := bbC8 | bbD8
			if g.occ&between == 0 && attackMask&passSquares == 0 {
				ml.Add(NewMove(E8, C8, King, NoPieceType, true, false))
			}
		}
	}
}
