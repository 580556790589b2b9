package coordinator

import (
	"time"

	"github.com/corvidchess/corvid/internal/board"
)

// timeManager turns UCI-style time controls into a soft and a hard
// deadline: the soft deadline is checked only between completed iterations
// (never mid-search) and stops the next iteration from starting once
// passed; the hard deadline is polled continuously and cuts a search off
// mid-iteration no matter what. Grounded on the teacher's timeman.go
// stability-driven approach but reformulated to the plainer percentage
// budget this engine uses: soft = 2% of the remaining clock plus half the
// increment, hard = 10% of the remaining clock.
type timeManager struct {
	start time.Time
	soft  time.Duration
	hard  time.Duration
}

const (
	softFraction = 0.02
	hardFraction = 0.10
	minSoft      = 10 * time.Millisecond
	minHard      = 50 * time.Millisecond
)

func newTimeManager(limits Limits, us board.Color, start time.Time) *timeManager {
	tm := &timeManager{start: start}

	if limits.MoveTime > 0 {
		tm.soft = limits.MoveTime
		tm.hard = limits.MoveTime
		return tm
	}

	remaining, inc := limits.WTime, limits.WInc
	if us == board.Black {
		remaining, inc = limits.BTime, limits.BInc
	}
	if remaining <= 0 {
		return tm // no clock given: soft=hard=0 means "no time cutoff"
	}

	soft := time.Duration(float64(remaining)*softFraction) + inc/2
	hard := time.Duration(float64(remaining) * hardFraction)
	if soft > hard {
		soft = hard
	}
	if soft < minSoft {
		soft = minSoft
	}
	if hard < minHard {
		hard = minHard
	}
	tm.soft, tm.hard = soft, hard
	return tm
}

func (tm *timeManager) elapsed() time.Duration { return time.Since(tm.start) }

func (tm *timeManager) pastSoft() bool { return tm.soft > 0 && tm.elapsed() >= tm.soft }

func (tm *timeManager) pastHard() bool { return tm.hard > 0 && tm.elapsed() >= tm.hard }

// iterationLookahead is the factor the next iteration's wall time is
// predicted from the last completed one: iterative deepening's branching
// factor means each depth typically costs a few times the last, so 2.4x is
// a conservative estimate of the next iteration rather than its average.
const iterationLookahead = 2.4

// willExceedSoft predicts whether starting another iteration is worthwhile:
// given elapsed time so far and how long the last completed iteration took,
// it estimates the next iteration's wall time as iterationLookahead times
// lastIter and reports whether elapsed plus that estimate would blow through
// the soft budget. Called between iterations, never mid-search.
func (tm *timeManager) willExceedSoft(elapsed, lastIter time.Duration) bool {
	if tm.soft <= 0 || lastIter <= 0 {
		return false
	}
	predicted := elapsed + time.Duration(float64(lastIter)*iterationLookahead)
	return predicted >= tm.soft
}
