package board

import "testing"

func collectMoves(pos *Position) map[string]bool {
	set := make(map[string]bool)
	ml := pos.GenerateLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		set[ml.Get(i).String()] = true
	}
	return set
}

func TestStartingPositionMoves(t *testing.T) {
	ml := NewPosition().GenerateLegalMoves()
	if ml.Len() != 20 {
		t.Errorf("root moves = %d, want 20", ml.Len())
	}
}

func TestPinnedPieceMoves(t *testing.T) {
	// The e4 knight is pinned by the e8 rook and may not move at all; the
	// c3 bishop is pinned by the a5 bishop and may only slide on its ray.
	pos, err := ParseFEN("4r2k/8/8/b7/4N3/2B5/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := collectMoves(pos)
	if moves["e4d6"] || moves["e4c5"] || moves["e4g5"] {
		t.Errorf("pinned knight produced moves")
	}
	if !moves["c3b4"] || !moves["c3d2"] || !moves["c3a5"] {
		t.Errorf("pinned bishop should slide along its ray: got %v", moves)
	}
	if moves["c3d4"] || moves["c3b2"] {
		t.Errorf("pinned bishop left its ray")
	}
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// Rook on e8 and bishop on b4 both check the e1 king.
	pos, err := ParseFEN("4r2k/8/8/8/1b6/8/2Q5/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	ml := pos.GenerateLegalMoves()
	if !ml.InCheck() {
		t.Fatalf("double-check position not flagged as check")
	}
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i).MovingType() != King {
			t.Errorf("non-king move %s generated in double check", ml.Get(i))
		}
	}
}

func TestBlockingRookIsPinned(t *testing.T) {
	// The e2 rook stands between the e8 rook and the e1 king on the e-file.
	pos, err := ParseFEN("4r1k1/8/8/8/8/8/4R3/1Q2K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	// Not in check: the e2 rook blocks. Verify the generator agrees.
	if pos.InCheck() {
		t.Fatalf("e2 rook already blocks, not a check")
	}

	// The blocking rook is pinned to the e-file.
	moves := collectMoves(pos)
	if moves["e2d2"] || moves["e2f2"] {
		t.Errorf("pinned rook left the e-file")
	}
	if !moves["e2e8"] || !moves["e2e5"] {
		t.Errorf("pinned rook should move along the e-file: %v", moves)
	}
}

func TestCastlingLegality(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		wantMoves []string
		banMoves  []string
	}{
		{
			name:      "both sides available",
			fen:       "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			wantMoves: []string{"e1g1", "e1c1"},
		},
		{
			name:     "through attacked square",
			fen:      "r3k2r/8/8/8/8/5q2/8/R3K2R w KQkq - 0 1",
			banMoves: []string{"e1g1"},
		},
		{
			name:     "blocked queenside",
			fen:      "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1",
			banMoves: []string{"e1c1"},
			wantMoves: []string{"e1g1"},
		},
		{
			name:     "in check",
			fen:      "r3k2r/8/8/8/8/4q3/8/R3K2R w KQkq - 0 1",
			banMoves: []string{"e1g1", "e1c1"},
		},
		{
			name: "rook attacked is fine",
			// Only the king's path matters; an attacked rook square does
			// not forbid castling.
			fen:       "r3k2r/8/8/8/8/8/7Q/R3K2R b KQkq - 0 1",
			wantMoves: []string{"e8g8", "e8c8"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			moves := collectMoves(pos)
			for _, want := range tc.wantMoves {
				if !moves[want] {
					t.Errorf("missing move %s", want)
				}
			}
			for _, ban := range tc.banMoves {
				if moves[ban] {
					t.Errorf("illegal move %s generated", ban)
				}
			}
		})
	}
}

func TestCapturesOnlyMode(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var all, captures MoveList
	pos.LegalMoves(&all, false)
	pos.LegalMoves(&captures, true)

	if captures.Len() == 0 || captures.Len() >= all.Len() {
		t.Fatalf("captures = %d, all = %d", captures.Len(), all.Len())
	}

	occ := pos.OccForColor[Black]
	for i := 0; i < captures.Len(); i++ {
		m := captures.Get(i)
		if !m.IsEnPassant() && occ&m.ToBB() == 0 {
			t.Errorf("non-capture %s in captures-only output", m)
		}
		if !all.Contains(m) {
			t.Errorf("capture %s missing from full move list", m)
		}
	}
}

func TestPromotionGeneration(t *testing.T) {
	pos, err := ParseFEN("3n4/4P3/8/8/8/k7/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	moves := collectMoves(pos)
	for _, want := range []string{"e7e8q", "e7e8r", "e7e8b", "e7e8n", "e7d8q", "e7d8n"} {
		if !moves[want] {
			t.Errorf("missing promotion %s", want)
		}
	}
	if moves["e7e8"] {
		t.Errorf("bare pawn push to the last rank generated")
	}
}
