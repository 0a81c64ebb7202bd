package engine

import (
	"testing"

	"github.com/SafeMemoryZone/knight-rider/internal/board"
)

func TestEvalStartPositionIsTempoOnly(t *testing.T) {
	// The starting position is symmetric; only the tempo bonus remains.
	pos := board.NewPosition()
	if got := Eval(pos); got != 10 {
		t.Errorf("Eval(start) = %d, want 10", got)
	}
}

func TestEvalSideToMoveView(t *testing.T) {
	// White is a queen up. From white's view the score is large positive,
	// from black's view large negative, tempo aside.
	white, err := board.ParseFEN("4k3/8/8/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	black, err := board.ParseFEN("4k3/8/8/8/8/8/8/3QK3 b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	ws := Eval(white)
	bs := Eval(black)
	if ws <= 800 {
		t.Errorf("white-to-move eval = %d, want clearly positive", ws)
	}
	if bs >= -800 {
		t.Errorf("black-to-move eval = %d, want clearly negative", bs)
	}
	// Flipping only the side to move negates everything except the tempo
	// bonus applied to each side.
	if ws-10 != -(bs - 10) {
		t.Errorf("side-to-move negation broken: %d vs %d", ws, bs)
	}
}

func TestEvalMaterialCounts(t *testing.T) {
	// Two positions differing by exactly one knight on b1: the eval gap is
	// the knight's material value plus its piece-square term.
	with, err := board.ParseFEN("4k3/8/8/8/8/8/8/1N2K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	without, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	diff := Eval(with) - Eval(without)
	want := Score(320) + Score(pst[board.Knight][board.B1])
	if diff != want {
		t.Errorf("knight contribution = %d, want %d", diff, want)
	}
}
