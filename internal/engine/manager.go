package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/SafeMemoryZone/knight-rider/internal/board"
)

// Time-control tuning. The budget formula spends a fixed fraction of the
// remaining clock plus part of the increment, capped and floored, then backs
// off by a safety reserve so the move always arrives before the flag falls.
const (
	incUseFraction    = 0.65 // fraction of the increment to spend per move
	maxBudgetFraction = 0.25 // cap per-move spend as fraction of remaining time
	minBudgetMS       = 200
	safetyReserve     = 80 * time.Millisecond
	stopSlack         = 10 * time.Millisecond
)

// SearchManager owns the goroutine pair of an active search: the worker that
// runs the search and the timer that enforces the deadline. Exactly one
// search runs at a time; starting a new one stops and joins the previous
// pair first.
type SearchManager struct {
	engine SearchEngine
	log    zerolog.Logger

	mu       sync.Mutex
	group    *errgroup.Group
	wake     chan struct{}
	wakeOnce *sync.Once
}

// NewSearchManager returns a manager logging through the given logger.
func NewSearchManager(log zerolog.Logger) *SearchManager {
	return &SearchManager{
		engine: SearchEngine{log: log},
		log:    log,
	}
}

// RunSearch clones the position, spawns the timer and the search worker, and
// returns immediately. When the worker finishes, onFinish is invoked on the
// worker goroutine with the best move of the last completed iteration.
func (m *SearchManager) RunSearch(pos *board.Position, limits GoLimits, commandReceived time.Time, onFinish func(board.Move), tt *TranspositionTable) {
	m.StopSearch()

	m.engine.requestedStop.Store(false)

	wake := make(chan struct{})
	wakeOnce := new(sync.Once)
	group := new(errgroup.Group)

	searchPos := pos.Copy()
	engineColor := pos.Us

	group.Go(func() error {
		m.timeControl(limits, commandReceived, engineColor, wake)
		return nil
	})
	group.Go(func() error {
		m.engine.Search(searchPos, limits, tt)
		// Release the timer; its deadline no longer matters.
		wakeOnce.Do(func() { close(wake) })
		onFinish(m.engine.BestMove())
		return nil
	})

	m.mu.Lock()
	m.group = group
	m.wake = wake
	m.wakeOnce = wakeOnce
	m.mu.Unlock()
}

// StopSearch wakes the timer, raises the stop flag and joins both goroutines.
// It is idempotent and safe to call with no search running.
func (m *SearchManager) StopSearch() {
	m.mu.Lock()
	group := m.group
	wake := m.wake
	wakeOnce := m.wakeOnce
	m.mu.Unlock()

	if group == nil {
		return
	}

	wakeOnce.Do(func() { close(wake) })
	m.engine.requestedStop.Store(true)
	_ = group.Wait()

	m.mu.Lock()
	if m.group == group {
		m.group = nil
		m.wake = nil
		m.wakeOnce = nil
	}
	m.mu.Unlock()
}

// BlockUntilDone waits for the running search to complete on its own, then
// cleans up the goroutine pair.
func (m *SearchManager) BlockUntilDone() {
	m.mu.Lock()
	group := m.group
	m.mu.Unlock()

	if group != nil {
		_ = group.Wait()
	}
	m.StopSearch()
}

// timeControl sleeps until the computed deadline or an explicit wake, then
// raises the stop flag. For searches without time controls, and for infinite,
// ponder and mate searches, it sets no deadline and only waits for the wake
// signal (an explicit stop or the worker finishing).
func (m *SearchManager) timeControl(limits GoLimits, commandReceived time.Time, engineColor board.Color, wake <-chan struct{}) {
	hasTimeControls := limits.MoveTimeMS > 0 ||
		limits.TimeLeftMS[board.White] > 0 || limits.TimeLeftMS[board.Black] > 0 ||
		limits.IncMS[board.White] > 0 || limits.IncMS[board.Black] > 0

	if !hasTimeControls || limits.Infinite || limits.Ponder || limits.MateInN > 0 {
		<-wake
		return
	}

	budgetMS := m.computeTimeBudgetMS(limits, engineColor)

	effective := time.Duration(max(int64(10), budgetMS))*time.Millisecond - safetyReserve
	if effective <= 10*time.Millisecond {
		effective = 10 * time.Millisecond
	}
	deadline := commandReceived.Add(effective - stopSlack)

	m.log.Debug().
		Int64("budget_ms", budgetMS).
		Time("deadline", deadline).
		Msg("time control armed")

	if wait := time.Until(deadline); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-wake:
		}
	}

	m.engine.requestedStop.Store(true)
}

func (m *SearchManager) computeTimeBudgetMS(limits GoLimits, engineColor board.Color) int64 {
	if limits.MoveTimeMS > 0 {
		return limits.MoveTimeMS
	}

	myTime := limits.TimeLeftMS[engineColor]
	myInc := limits.IncMS[engineColor]

	var budget int64
	if limits.MovesToGo > 0 {
		// Spread the remaining time across the remaining moves plus part
		// of the increment.
		budget = myTime/int64(limits.MovesToGo) + int64(incUseFraction*float64(myInc))
	} else {
		budget = int64(0.03*float64(myTime) + incUseFraction*float64(myInc))
	}

	budget = min(budget, int64(maxBudgetFraction*float64(myTime)))
	return max(budget, minBudgetMS)
}
