package engine

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/SafeMemoryZone/knight-rider/internal/board"
)

// GoLimits carries the constraints of a single "go" command. Zero or negative
// values mean the limit is absent.
type GoLimits struct {
	TimeLeftMS  [2]int64 // remaining clock per color, ms
	IncMS       [2]int64 // increment per color, ms
	NodeLimit   int64
	MovesToGo   int
	DepthLimit  int
	MateInN     int
	MoveTimeMS  int64
	Infinite    bool
	Ponder      bool
	SearchMoves []board.Move
}

// SearchEngine runs a single-threaded iterative-deepening negamax search.
// Exactly one goroutine owns the embedded position for the duration of a
// search; the only cross-thread communication is the atomic stop flag.
type SearchEngine struct {
	pos board.Position
	tt  *TranspositionTable
	log zerolog.Logger

	bestMove       board.Move
	nodes          uint64
	nodesRemaining int64
	hasNodeLimit   bool

	requestedStop atomic.Bool
}

// BestMove returns the best move of the last completed search iteration.
func (e *SearchEngine) BestMove() board.Move {
	return e.bestMove
}

// Nodes returns the node count of the last search.
func (e *SearchEngine) Nodes() uint64 {
	return e.nodes
}

// Search runs iterative deepening on a copy of searchPosition until a limit
// is hit or the stop flag is raised. The best move of the last fully
// completed iteration survives cancellation.
func (e *SearchEngine) Search(searchPosition *board.Position, limits GoLimits, tt *TranspositionTable) {
	e.pos = *searchPosition
	e.pos.ResetPly() // the undo stack always starts at 0 for a new search
	e.bestMove = board.NoMove
	e.nodes = 0
	e.nodesRemaining = limits.NodeLimit
	e.hasNodeLimit = limits.NodeLimit > 0
	e.tt = tt
	tt.NewSearch()

	var legalMoves board.MoveList
	if len(limits.SearchMoves) > 0 {
		for _, m := range limits.SearchMoves {
			legalMoves.Add(m)
		}
	} else {
		e.pos.LegalMoves(&legalMoves, false)
	}
	if legalMoves.Len() == 0 {
		return
	}

	// Try the stored best move first.
	if entry, ok := tt.Probe(e.pos.Hash); ok && !entry.BestMove.IsNull() {
		moveToFront(&legalMoves, entry.BestMove)
	}

	depthLimit := MaxPly
	if limits.DepthLimit > 0 {
		depthLimit = clamp(limits.DepthLimit, 1, MaxPly)
	}
	if limits.MateInN > 0 && 2*limits.MateInN < depthLimit {
		depthLimit = 2 * limits.MateInN
	}

	type rootScore struct {
		move  board.Move
		score Score
	}
	start := time.Now()

	for depth := 1; depth <= depthLimit; depth++ {
		iterBestScore := -ScoreInf
		iterBestMove := board.NoMove

		rootScores := make([]rootScore, 0, legalMoves.Len())
		aborted := false

		for i := 0; i < legalMoves.Len(); i++ {
			if e.requestedStop.Load() {
				aborted = true
				break
			}
			move := legalMoves.Get(i)

			e.pos.MakeMove(move)
			childScore, childAborted := e.coreSearch(depth-1, -ScoreInf, ScoreInf)
			childScore = -childScore
			e.pos.UndoMove()

			if childAborted {
				aborted = true
				break
			}

			if childScore > iterBestScore {
				iterBestScore = childScore
				iterBestMove = move
			}
			rootScores = append(rootScores, rootScore{move, childScore})
		}

		// A cancelled iteration is discarded; the previous iteration's best
		// move stands.
		if aborted {
			break
		}

		if !iterBestMove.IsNull() {
			e.bestMove = iterBestMove
		}

		e.log.Debug().
			Int("depth", depth).
			Int32("score", iterBestScore).
			Uint64("nodes", e.nodes).
			Dur("elapsed", time.Since(start)).
			Str("best", e.bestMove.String()).
			Msg("iteration complete")

		if IsMateScore(iterBestScore) {
			break
		}

		// Re-sort root moves by this iteration's scores so the principal
		// variation leads the next one. The sort must be stable to keep
		// the previous ordering among equal scores.
		sort.SliceStable(rootScores, func(a, b int) bool {
			return rootScores[a].score > rootScores[b].score
		})
		for i, rs := range rootScores {
			legalMoves.Set(i, rs.move)
		}

		if !iterBestMove.IsNull() {
			tt.Store(e.pos.Hash, depth, scoreToTT(iterBestScore, e.pos.Ply()), TTExact, iterBestMove)
		}
	}
}

// coreSearch is the recursive negamax with alpha-beta pruning. The second
// return value reports cancellation (stop flag or exhausted node budget); it
// is not an error, and the score returned with it is discarded by callers.
func (e *SearchEngine) coreSearch(depth int, alpha, beta Score) (Score, bool) {
	if e.hasNodeLimit {
		e.nodesRemaining--
		if e.nodesRemaining < 0 {
			return alpha, true
		}
	}
	if e.requestedStop.Load() {
		return alpha, true
	}
	e.nodes++

	key := e.pos.Hash
	originalAlpha := alpha
	originalBeta := beta
	ply := e.pos.Ply()

	ttMove := board.NoMove
	if entry, ok := e.tt.Probe(key); ok {
		if !entry.BestMove.IsNull() {
			ttMove = entry.BestMove
		}
		ttScore := scoreFromTT(entry.Value, ply)
		if int(entry.Depth) >= depth {
			switch entry.Flag {
			case TTExact:
				return ttScore, false
			case TTLower:
				if ttScore > alpha {
					alpha = ttScore
				}
			case TTUpper:
				if ttScore < beta {
					beta = ttScore
				}
			}
			if alpha >= beta {
				return ttScore, false
			}
		}
	}

	var legalMoves board.MoveList
	e.pos.LegalMoves(&legalMoves, false)

	if legalMoves.Len() == 0 {
		terminal := Score(0)
		if legalMoves.InCheck() {
			terminal = MatedScore + Score(ply)
		}
		e.tt.Store(key, depth, scoreToTT(terminal, ply), TTExact, board.NoMove)
		return terminal, false
	}

	if depth == 0 {
		evalScore := Eval(&e.pos)
		e.tt.Store(key, depth, scoreToTT(evalScore, ply), TTExact, board.NoMove)
		return evalScore, false
	}

	if !ttMove.IsNull() {
		moveToFront(&legalMoves, ttMove)
	}

	bestScore := -ScoreInf
	bestMoveLocal := board.NoMove

	for i := 0; i < legalMoves.Len(); i++ {
		move := legalMoves.Get(i)

		e.pos.MakeMove(move)
		childScore, childCancelled := e.coreSearch(depth-1, -beta, -alpha)
		childScore = -childScore
		e.pos.UndoMove()

		if childCancelled {
			return alpha, true
		}

		if childScore > bestScore || bestMoveLocal.IsNull() {
			bestScore = childScore
			bestMoveLocal = move
		}
		if childScore > alpha {
			alpha = childScore
		}
		if alpha >= beta {
			break
		}
	}

	flag := TTExact
	if bestScore <= originalAlpha {
		flag = TTUpper
	} else if bestScore >= originalBeta {
		flag = TTLower
	}
	e.tt.Store(key, depth, scoreToTT(bestScore, ply), flag, bestMoveLocal)

	return bestScore, false
}

// moveToFront swaps the given move to index 0 when present.
func moveToFront(ml *board.MoveList, m board.Move) {
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i) == m {
			if i != 0 {
				ml.Swap(0, i)
			}
			return
		}
	}
}
