package engine

import (
	"time"

	"github.com/hailam/vatu/internal/board"
)

const (
	minThinkTime = 10 * time.Millisecond
	// DefaultMoveOverhead is reserved per move for transport latency.
	DefaultMoveOverhead = 30 * time.Millisecond
)

// timeManager turns the limits into a soft budget, after which no new
// iteration starts, and a hard deadline polled during the search.
type timeManager struct {
	start    time.Time
	optimum  time.Duration // zero means unbounded
	deadline time.Time     // zero means none
}

func newTimeManager(limits SearchLimits, us board.Color, gamePly int) timeManager {
	tm := timeManager{start: time.Now()}
	overhead := limits.MoveOverhead

	if limits.MoveTime > 0 {
		budget := max(limits.MoveTime-overhead, minThinkTime)
		tm.optimum = budget
		tm.deadline = tm.start.Add(budget)
		return tm
	}
	clock := limits.HasClock || limits.Time[board.White] > 0 || limits.Time[board.Black] > 0
	if limits.Infinite || !clock {
		return tm
	}

	left := limits.Time[us]
	if left <= 0 {
		tm.optimum = minThinkTime
		tm.deadline = tm.start.Add(minThinkTime)
		return tm
	}
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg <= 0 {
		mtg = clamp(50-gamePly/4, 10, 50)
	}

	optimum := left/time.Duration(mtg) + inc*9/10
	maximum := min(optimum*5, left*8/10)
	maximum = min(maximum-overhead, left*95/100-overhead)

	tm.optimum = clamp(optimum, minThinkTime, max(maximum, minThinkTime))
	tm.deadline = tm.start.Add(max(maximum, minThinkTime))
	return tm
}

func (tm *timeManager) elapsed() time.Duration {
	return time.Since(tm.start)
}

// pastOptimum reports whether starting another iteration would likely
// overrun the budget.
func (tm *timeManager) pastOptimum() bool {
	return tm.optimum > 0 && tm.elapsed() >= tm.optimum/2
}

func (tm *timeManager) expired() bool {
	return !tm.deadline.IsZero() && !time.Now().Before(tm.deadline)
}
