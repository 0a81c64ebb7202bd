package engine

import "github.com/SafeMemoryZone/knight-rider/internal/board"

// Material values in centipawns.
const (
	pawnValue   Score = 100
	knightValue Score = 320
	bishopValue Score = 330
	rookValue   Score = 500
	queenValue  Score = 900
)

// Piece-square tables, white-indexed; black indexes the vertically mirrored
// square. Values are tuning parameters, not design.
var pst = [6][64]int16{
	// pawn
	{
		0, 0, 0, 0, 0, 0, 0, 0,
		5, 10, 10, -20, -20, 10, 10, 5,
		5, -5, -10, 0, 0, -10, -5, 5,
		0, 0, 0, 20, 20, 0, 0, 0,
		5, 5, 10, 25, 25, 10, 5, 5,
		10, 10, 20, 30, 30, 20, 10, 10,
		50, 50, 50, 50, 50, 50, 50, 50,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	// knight
	{
		-50, -40, -30, -30, -30, -30, -40, -50,
		-40, -20, 0, 5, 5, 0, -20, -40,
		-30, 5, 10, 15, 15, 10, 5, -30,
		-30, 0, 15, 20, 20, 15, 0, -30,
		-30, 5, 15, 20, 20, 15, 5, -30,
		-30, 0, 10, 15, 15, 10, 0, -30,
		-40, -20, 0, 0, 0, 0, -20, -40,
		-50, -40, -30, -30, -30, -30, -40, -50,
	},
	// bishop
	{
		-20, -10, -10, -10, -10, -10, -10, -20,
		-10, 5, 0, 0, 0, 0, 5, -10,
		-10, 10, 10, 10, 10, 10, 10, -10,
		-10, 0, 10, 10, 10, 10, 0, -10,
		-10, 5, 5, 10, 10, 5, 5, -10,
		-10, 0, 5, 10, 10, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -10, -10, -10, -10, -20,
	},
	// rook
	{
		0, 0, 0, 5, 5, 0, 0, 0,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		-5, 0, 0, 0, 0, 0, 0, -5,
		5, 10, 10, 10, 10, 10, 10, 5,
		0, 0, 0, 0, 0, 0, 0, 0,
	},
	// queen
	{
		-20, -10, -10, -5, -5, -10, -10, -20,
		-10, 0, 5, 0, 0, 0, 0, -10,
		-10, 5, 5, 5, 5, 5, 0, -10,
		0, 0, 5, 5, 5, 5, 0, -5,
		-5, 0, 5, 5, 5, 5, 0, -5,
		-10, 0, 5, 5, 5, 5, 0, -10,
		-10, 0, 0, 0, 0, 0, 0, -10,
		-20, -10, -10, -5, -5, -10, -10, -20,
	},
	// king (middlegame)
	{
		20, 30, 10, 0, 0, 10, 30, 20,
		20, 20, 0, 0, 0, 0, 20, 20,
		-10, -20, -20, -20, -20, -20, -20, -10,
		-20, -30, -30, -40, -40, -30, -30, -20,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
		-30, -40, -40, -50, -50, -40, -40, -30,
	},
}

var materialValue = [6]Score{pawnValue, knightValue, bishopValue, rookValue, queenValue, 0}

func materialScore(p *board.Position) Score {
	var w, b Score
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		w += Score(p.Pieces[int(pt)].PopCount()) * materialValue[pt]
		b += Score(p.Pieces[6+int(pt)].PopCount()) * materialValue[pt]
	}
	return w - b
}

func pstScore(p *board.Position) Score {
	var score Score
	for pt := 0; pt < 6; pt++ {
		table := &pst[pt]

		bbW := p.Pieces[pt]
		for bbW != 0 {
			score += Score(table[bbW.PopLSB()])
		}
		bbB := p.Pieces[6+pt]
		for bbB != 0 {
			score -= Score(table[bbB.PopLSB().Mirror()])
		}
	}
	return score
}

// Eval returns the static score of the position from the side to move's
// point of view: material plus piece-square terms, plus a small tempo bonus
// for having the move.
func Eval(p *board.Position) Score {
	score := materialScore(p) + pstScore(p)
	if p.Us == board.Black {
		score = -score
	}
	return score + 10
}
