package app

import (
	"sort"
	"time"

	"hydrolog/internal/domain"
)

// StreakState is the accumulator threaded through day-by-day streak
// evaluation. The zero value means "never evaluated".
type StreakState struct {
	CurrentStreak int        `json:"currentStreak"`
	LastEvaluated domain.Day `json:"lastEvaluatedDay"`
}

// AdvanceStreak applies one finalized day to the streak state. A day that met
// the goal extends the streak when it directly follows the last evaluated day
// (or is the first evaluation ever); if days were skipped in between they
// count as failed, so the streak restarts at 1 rather than extending. A day
// below goal resets the streak to 0. LastEvaluated always advances.
//
// Callers must only pass days that are strictly before the current calendar
// day; the in-progress day is live display data, never streak input.
func AdvanceStreak(prev StreakState, day domain.Day, dailyTotal, dailyGoal float64) StreakState {
	next := StreakState{LastEvaluated: day}
	if dailyTotal < dailyGoal {
		return next
	}

	consecutive := prev.LastEvaluated.IsZero() || prev.LastEvaluated.Next().Equal(day)
	if consecutive {
		next.CurrentStreak = prev.CurrentStreak + 1
	} else {
		next.CurrentStreak = 1
	}
	return next
}

// RebuildStreak recomputes the streak from scratch over the full event
// history, evaluating each event day strictly before today in ascending
// order. Replaying the same history always reproduces the state incremental
// evaluation would have reached.
func (a *Aggregator) RebuildStreak(events []domain.IntakeEvent, dailyGoal float64, now time.Time) StreakState {
	today := domain.DayOf(now, a.loc)

	seen := make(map[string]domain.Day)
	for _, e := range events {
		d := domain.DayOf(e.Timestamp, a.loc)
		if d.Before(today) {
			seen[d.String()] = d
		}
	}

	days := make([]domain.Day, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	var state StreakState
	for _, d := range days {
		state = AdvanceStreak(state, d, a.DailyTotal(events, d), dailyGoal)
	}
	return state
}
