package engine

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/SafeMemoryZone/knight-rider/internal/board"
)

func searchPosition(t *testing.T, fen string, limits GoLimits) board.Move {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}

	var eng SearchEngine
	eng.log = zerolog.Nop()
	eng.Search(pos, limits, newTestTT(4))
	return eng.BestMove()
}

func TestSearchDepthOneReturnsLegalMove(t *testing.T) {
	pos := board.NewPosition()

	var eng SearchEngine
	eng.log = zerolog.Nop()
	eng.Search(pos, GoLimits{DepthLimit: 1}, newTestTT(4))

	best := eng.BestMove()
	if best.IsNull() {
		t.Fatalf("no best move from the starting position")
	}
	if !pos.GenerateLegalMoves().Contains(best) {
		t.Errorf("best move %s is not legal", best)
	}
}

func TestSearchFindsMateInOne(t *testing.T) {
	// Back-rank mate: Re1-e8#.
	best := searchPosition(t, "6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1", GoLimits{MateInN: 1})
	if best.String() != "e1e8" {
		t.Errorf("best move = %s, want e1e8", best)
	}

	// The same position under a plain depth limit.
	best = searchPosition(t, "6k1/5ppp/8/8/8/8/5PPP/4R1K1 w - - 0 1", GoLimits{DepthLimit: 3})
	if best.String() != "e1e8" {
		t.Errorf("depth-limited best move = %s, want e1e8", best)
	}
}

func TestSearchAvoidsMateInOne(t *testing.T) {
	// Black to move must not allow the back-rank mate: the king needs luft
	// or the rook must be dealt with. Any returned move is checked to not
	// lose immediately to Re8#.
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/4R1K1 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	var eng SearchEngine
	eng.log = zerolog.Nop()
	eng.Search(pos, GoLimits{DepthLimit: 4}, newTestTT(4))
	best := eng.BestMove()
	if best.IsNull() {
		t.Fatalf("no move returned")
	}

	pos.MakeMove(best)
	reply := pos.GenerateLegalMoves()
	for i := 0; i < reply.Len(); i++ {
		m := reply.Get(i)
		pos.MakeMove(m)
		mated := pos.GenerateLegalMoves().Len() == 0 && pos.InCheck()
		pos.UndoMove()
		if mated {
			t.Errorf("after %s, %s mates immediately", best, m)
		}
	}
}

func TestSearchTerminalPositions(t *testing.T) {
	// Checkmated: no move to return.
	if best := searchPosition(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", GoLimits{DepthLimit: 3}); !best.IsNull() {
		t.Errorf("checkmated position returned %s", best)
	}

	// Stalemate: also no move.
	if best := searchPosition(t, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", GoLimits{DepthLimit: 3}); !best.IsNull() {
		t.Errorf("stalemated position returned %s", best)
	}
}

func TestSearchNodeLimitDeterminism(t *testing.T) {
	fen := "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	limits := GoLimits{NodeLimit: 50_000}

	first := searchPosition(t, fen, limits)
	second := searchPosition(t, fen, limits)

	if first.IsNull() {
		t.Fatalf("node-limited search returned no move")
	}
	if first != second {
		t.Errorf("same position and limits produced %s then %s", first, second)
	}
}

func TestSearchMovesRestriction(t *testing.T) {
	pos := board.NewPosition()
	var restricted []board.Move
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		if s := legal.Get(i).String(); s == "a2a3" || s == "h2h4" {
			restricted = append(restricted, legal.Get(i))
		}
	}

	var eng SearchEngine
	eng.log = zerolog.Nop()
	eng.Search(pos, GoLimits{DepthLimit: 3, SearchMoves: restricted}, newTestTT(4))

	best := eng.BestMove()
	if best.String() != "a2a3" && best.String() != "h2h4" {
		t.Errorf("best move %s outside the searchmoves set", best)
	}
}

func TestSearchUsesTTMoveOrdering(t *testing.T) {
	pos := board.NewPosition()
	tt := newTestTT(4)

	var eng SearchEngine
	eng.log = zerolog.Nop()
	eng.Search(pos, GoLimits{DepthLimit: 4}, tt)

	// The root entry must be stored exact with the returned best move.
	entry, ok := tt.Probe(pos.Hash)
	if !ok {
		t.Fatalf("root position missing from the TT after a search")
	}
	if entry.Flag != TTExact {
		t.Errorf("root flag = %v, want exact", entry.Flag)
	}
	if entry.BestMove != eng.BestMove() {
		t.Errorf("root TT move %s != best move %s", entry.BestMove, eng.BestMove())
	}
}
