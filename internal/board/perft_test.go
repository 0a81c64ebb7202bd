package board

import "testing"

// Reference perft counts; any generation, legality or make/undo defect shows
// up as a wrong number.

func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
		{5, 4865609},
	}

	for _, tc := range tests {
		if got := Perft(pos, tc.depth); got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}

	if !testing.Short() {
		if got := Perft(pos, 6); got != 119060324 {
			t.Errorf("perft(6) = %d, want 119060324", got)
		}
	}
}

func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
		{4, 4085603},
	}

	for _, tc := range tests {
		if tc.depth >= 4 && testing.Short() {
			continue
		}
		if got := Perft(pos, tc.depth); got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}

func TestPerftPosition3(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
		{5, 674624},
	}

	for _, tc := range tests {
		if got := Perft(pos, tc.depth); got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}

	if !testing.Short() {
		if got := Perft(pos, 6); got != 11030083 {
			t.Errorf("perft(6) = %d, want 11030083", got)
		}
	}
}

// The capturing pawn and the double-pushed pawn share the king's rank here;
// taking en passant would expose the black king to the h4 rook.
func TestEnPassantHorizontalPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	ml := pos.GenerateLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i).IsEnPassant() {
			t.Errorf("en passant %s should be illegal (horizontal pin)", ml.Get(i))
		}
	}

	if got := Perft(pos, 1); got != 6 {
		t.Errorf("perft(1) = %d, want 6", got)
	}
}

func TestPerftDivideMatchesTotal(t *testing.T) {
	pos := NewPosition()
	entries, total := PerftDivide(pos, 3)

	if len(entries) != 20 {
		t.Fatalf("root moves = %d, want 20", len(entries))
	}

	var sum uint64
	for _, entry := range entries {
		sum += entry.Nodes
	}
	if sum != total || total != 8902 {
		t.Errorf("divide sum = %d, total = %d, want 8902", sum, total)
	}
}
