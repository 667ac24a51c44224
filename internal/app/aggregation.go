// Package app holds the application services and business logic.
package app

import (
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"hydrolog/internal/domain"
)

// Day-frame charts always show six 4-hour bars.
const dayBucketCount = 6

// Aggregator derives chart buckets, history summaries and daily totals from
// intake-event snapshots. All calendar math uses the injected location; the
// aggregator holds no other state and its methods are safe to call from any
// goroutine.
type Aggregator struct {
	loc *time.Location
	log *zap.Logger
}

// NewAggregator creates an Aggregator for the given location.
func NewAggregator(loc *time.Location, log *zap.Logger) *Aggregator {
	return &Aggregator{loc: loc, log: log}
}

// Location returns the calendar location the aggregator was built with.
func (a *Aggregator) Location() *time.Location { return a.loc }

// Bucket is a single bar in a chart series.
type Bucket struct {
	Index int     `json:"index"`
	Label string  `json:"label"`
	Total float64 `json:"totalMl"`
}

// HistoryItem is a per-day summary for list display.
type HistoryItem struct {
	Date        domain.Day `json:"date"`
	TotalAmount float64    `json:"totalMl"`
	DailyGoal   float64    `json:"dailyGoalMl"`
}

// RawRatio returns TotalAmount/DailyGoal without clamping, for consumers
// that want to show over-achievement.
func (h HistoryItem) RawRatio() float64 {
	return h.TotalAmount / h.DailyGoal
}

// ProgressPercent returns the goal progress rounded to a whole percent and
// clamped to [0, 100].
func (h HistoryItem) ProgressPercent() int {
	p := int(math.Round(h.RawRatio() * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// Bucketize turns an event snapshot into the fixed bucket series for the
// window containing ref: six 4-hour buckets for a day, seven weekday buckets
// for a week, one bucket per calendar day for a month. Buckets with no events
// have a zero total; none are ever omitted. Membership is half-open, so an
// event exactly on a boundary lands in the bucket starting there.
func (a *Aggregator) Bucketize(events []domain.IntakeEvent, ref time.Time, frame domain.TimeFrame) []Bucket {
	switch frame {
	case domain.TimeFrameWeek, domain.TimeFrameMonth:
		days := a.windowDays(ref, frame)
		buckets := make([]Bucket, len(days))
		for i, d := range days {
			label := d.Start().Weekday().String()[:3]
			if frame == domain.TimeFrameMonth {
				label = strconv.Itoa(d.Start().Day())
			}
			buckets[i] = Bucket{Index: i, Label: label, Total: a.DailyTotal(events, d)}
		}
		return buckets
	default:
		return a.bucketizeDay(events, ref)
	}
}

func (a *Aggregator) bucketizeDay(events []domain.IntakeEvent, ref time.Time) []Bucket {
	day := domain.DayOf(ref, a.loc)
	buckets := make([]Bucket, dayBucketCount)
	for i := range buckets {
		buckets[i] = Bucket{Index: i, Label: a.dayBucketLabel(i)}
	}
	for _, e := range events {
		if !day.Contains(e.Timestamp) {
			continue
		}
		idx := e.Timestamp.In(a.loc).Hour() / (24 / dayBucketCount)
		buckets[idx].Total += a.sanitizedAmount(e)
	}
	return buckets
}

func (a *Aggregator) dayBucketLabel(i int) string {
	h := i * (24 / dayBucketCount)
	if h < 10 {
		return "0" + strconv.Itoa(h) + ":00"
	}
	return strconv.Itoa(h) + ":00"
}

// HistoryItems returns one item per calendar day in the window that has at
// least one event, ascending by date. Empty days are deliberately omitted
// here while Bucketize emits them as zero buckets; list views and chart
// series disagree on purpose.
func (a *Aggregator) HistoryItems(events []domain.IntakeEvent, ref time.Time, frame domain.TimeFrame, dailyGoal float64) ([]HistoryItem, error) {
	if !(dailyGoal > 0) || math.IsInf(dailyGoal, 1) {
		return nil, domain.ErrInvalidGoal
	}

	items := make([]HistoryItem, 0)
	for _, d := range a.windowDays(ref, frame) {
		count := 0
		total := 0.0
		for _, e := range events {
			if d.Contains(e.Timestamp) {
				count++
				total += a.sanitizedAmount(e)
			}
		}
		if count == 0 {
			continue
		}
		items = append(items, HistoryItem{Date: d, TotalAmount: total, DailyGoal: dailyGoal})
	}
	return items, nil
}

// DailyTotal sums the amounts of all events on the given calendar day. It is
// the primitive both Bucketize and the streak logic build on.
func (a *Aggregator) DailyTotal(events []domain.IntakeEvent, day domain.Day) float64 {
	var total float64
	for _, e := range events {
		if day.Contains(e.Timestamp) {
			total += a.sanitizedAmount(e)
		}
	}
	return total
}

// windowDays lists the calendar days of the window containing ref, ascending.
// Day frames yield one day, week frames the Sunday-anchored week, month
// frames every day of the reference month.
func (a *Aggregator) windowDays(ref time.Time, frame domain.TimeFrame) []domain.Day {
	day := domain.DayOf(ref, a.loc)
	switch frame {
	case domain.TimeFrameWeek:
		start := day.Start().AddDate(0, 0, -int(day.Start().Weekday()))
		return daysFrom(domain.DayOf(start, a.loc), 7)
	case domain.TimeFrameMonth:
		lt := ref.In(a.loc)
		first := time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, a.loc)
		n := first.AddDate(0, 1, -1).Day()
		return daysFrom(domain.DayOf(first, a.loc), n)
	default:
		return []domain.Day{day}
	}
}

func daysFrom(start domain.Day, n int) []domain.Day {
	days := make([]domain.Day, n)
	d := start
	for i := 0; i < n; i++ {
		days[i] = d
		d = d.Next()
	}
	return days
}

// sanitizedAmount guards against events that slipped past insert validation.
// Amounts are rejected at the cache boundary, so anything negative or NaN
// here is a bug upstream; we log it and treat it as zero instead of letting
// it corrupt every derived series.
func (a *Aggregator) sanitizedAmount(e domain.IntakeEvent) float64 {
	if math.IsNaN(e.Amount) || e.Amount < 0 {
		a.log.Warn("clamping malformed intake amount",
			zap.String("id", e.ID),
			zap.Float64("amountMl", e.Amount))
		return 0
	}
	return e.Amount
}
