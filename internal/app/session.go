package app

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hydrolog/internal/domain"
)

const persistTimeout = 10 * time.Second

// DerivedView is the payload pushed to subscribers whenever the event set
// changes: the chart series and history for the active time frame, the
// current streak, and the live total for today.
type DerivedView struct {
	Buckets    []Bucket      `json:"buckets"`
	History    []HistoryItem `json:"history"`
	Streak     StreakState   `json:"streak"`
	TodayTotal float64       `json:"todayTotalMl"`
}

// PendingInsert is the handle returned by an optimistic insert. TempID
// identifies the locally-visible event until the store confirms it; Done
// yields the persistence outcome exactly once.
type PendingInsert struct {
	TempID string
	Done   <-chan error
}

// Session owns the authoritative in-memory intake-event set for one user
// session. Inserts become visible immediately and are persisted in the
// background; confirmations swap ids in place and failures roll the event
// back. All mutations are serialized behind one mutex, and every derived
// computation runs over a snapshot taken at a single instant.
type Session struct {
	log      *zap.Logger
	agg      *Aggregator
	store    domain.IntakeStore
	identity domain.Identity

	mu         sync.Mutex
	events     map[string]domain.IntakeEvent
	pending    map[string]struct{}
	generation uint64
	dailyGoal  float64
	maxAmount  float64
	frame      domain.TimeFrame
	subs       []func(DerivedView)

	now func() time.Time
}

// NewSession creates a Session around the given store and identity. dailyGoal
// and maxAmount are millilitres; the time frame starts at Day.
func NewSession(store domain.IntakeStore, identity domain.Identity, agg *Aggregator, dailyGoal, maxAmount float64, log *zap.Logger) *Session {
	return &Session{
		log:       log,
		agg:       agg,
		store:     store,
		identity:  identity,
		events:    make(map[string]domain.IntakeEvent),
		pending:   make(map[string]struct{}),
		dailyGoal: dailyGoal,
		maxAmount: maxAmount,
		frame:     domain.TimeFrameDay,
		now:       time.Now,
	}
}

// StaticIdentity returns an Identity fixed to one user id.
func StaticIdentity(userID int64) domain.Identity { return staticIdentity(userID) }

type staticIdentity int64

func (s staticIdentity) CurrentUserID() (int64, bool) { return int64(s), true }

// Subscribe registers a callback invoked after every successful insert,
// rollback, refresh, goal change or frame change. Callbacks run synchronously
// on the mutating goroutine and must not call back into the session.
func (s *Session) Subscribe(fn func(DerivedView)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Insert validates amount, makes the event visible immediately under a
// temporary id, and persists it in the background. The returned handle's
// Done channel reports the store outcome; on failure the optimistic event
// has already been rolled back by the time Done yields.
func (s *Session) Insert(ctx context.Context, amount float64) (*PendingInsert, error) {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		return nil, domain.ErrNoUser
	}
	if math.IsNaN(amount) || amount <= 0 || amount > s.maxAmount {
		return nil, fmt.Errorf("%w: %g ml (max %g)", domain.ErrInvalidAmount, amount, s.maxAmount)
	}

	ev := domain.IntakeEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Timestamp: s.now(),
	}

	s.mu.Lock()
	s.events[ev.ID] = ev
	s.pending[ev.ID] = struct{}{}
	gen := s.generation
	s.mu.Unlock()
	s.notify()

	done := make(chan error, 1)
	go s.persist(ev, gen, done)

	return &PendingInsert{TempID: ev.ID, Done: done}, nil
}

func (s *Session) persist(ev domain.IntakeEvent, gen uint64, done chan<- error) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	id, err := s.store.Create(ctx, ev.UserID, ev.Amount, ev.Timestamp)

	s.mu.Lock()
	delete(s.pending, ev.ID)
	changed := false

	switch {
	case err != nil:
		if _, ok := s.events[ev.ID]; ok {
			delete(s.events, ev.ID)
			changed = true
		}
		s.log.Warn("intake insert failed, rolled back",
			zap.String("tempId", ev.ID), zap.Error(err))
	default:
		_, confirmedAlready := s.events[id]
		if _, ok := s.events[ev.ID]; ok {
			delete(s.events, ev.ID)
			// If a refresh completed meanwhile and already carries the
			// confirmed event, the late ack is dropped instead of applied.
			if gen == s.generation || !confirmedAlready {
				ev.ID = id
				s.events[id] = ev
			}
			changed = true
		}
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	done <- err
}

// Refresh replaces the local event set with the store's authoritative view,
// re-merging any optimistic inserts still awaiting confirmation. On store
// failure the previous set is kept untouched; stale-but-valid beats empty.
func (s *Session) Refresh(ctx context.Context) error {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		return domain.ErrNoUser
	}

	remote, err := s.store.ListAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}

	s.mu.Lock()
	fresh := make(map[string]domain.IntakeEvent, len(remote)+len(s.pending))
	for _, e := range remote {
		fresh[e.ID] = e
	}
	for tempID := range s.pending {
		if e, ok := s.events[tempID]; ok {
			fresh[tempID] = e
		}
	}
	s.events = fresh
	s.generation++
	s.mu.Unlock()

	s.notify()
	return nil
}

// CurrentTotal returns the intake total for the given day over the local set,
// optimistic rows included.
func (s *Session) CurrentTotal(day domain.Day) float64 {
	return s.agg.DailyTotal(s.snapshot(), day)
}

// TodayTotal returns the live total for the in-progress day.
func (s *Session) TodayTotal() float64 {
	return s.CurrentTotal(domain.DayOf(s.now(), s.agg.Location()))
}

// Buckets returns the chart series for the window containing ref.
func (s *Session) Buckets(ref time.Time, frame domain.TimeFrame) []Bucket {
	return s.agg.Bucketize(s.snapshot(), ref, frame)
}

// History returns the per-day summaries for the window containing ref,
// using the session's daily goal.
func (s *Session) History(ref time.Time, frame domain.TimeFrame) ([]HistoryItem, error) {
	s.mu.Lock()
	goal := s.dailyGoal
	s.mu.Unlock()
	return s.agg.HistoryItems(s.snapshot(), ref, frame, goal)
}

// Streak recomputes the streak over all finalized days.
func (s *Session) Streak() StreakState {
	s.mu.Lock()
	goal := s.dailyGoal
	s.mu.Unlock()
	return s.agg.RebuildStreak(s.snapshot(), goal, s.now())
}

// DailyGoal returns the session's active daily goal in millilitres.
func (s *Session) DailyGoal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dailyGoal
}

// SetDailyGoal updates the goal used by history and streak computation.
func (s *Session) SetDailyGoal(goal float64) error {
	if !(goal > 0) {
		return domain.ErrInvalidGoal
	}
	s.mu.Lock()
	s.dailyGoal = goal
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetTimeFrame switches the frame used for the views pushed to subscribers.
func (s *Session) SetTimeFrame(frame domain.TimeFrame) {
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	s.notify()
}

// View computes the derived view for the session's active frame, anchored
// to the current instant.
func (s *Session) View() DerivedView {
	s.mu.Lock()
	goal := s.dailyGoal
	frame := s.frame
	events := s.snapshotLocked()
	s.mu.Unlock()

	now := s.now()
	history, err := s.agg.HistoryItems(events, now, frame, goal)
	if err != nil {
		// The setter guards the goal, so this only fires on a zero-value
		// session; an empty history is the sane degraded answer.
		history = nil
	}
	return DerivedView{
		Buckets:    s.agg.Bucketize(events, now, frame),
		History:    history,
		Streak:     s.agg.RebuildStreak(events, goal, now),
		TodayTotal: s.agg.DailyTotal(events, domain.DayOf(now, s.agg.Location())),
	}
}

// Publish recomputes the derived view and pushes it to subscribers without
// any state change. Used after day rollovers, when yesterday becomes
// finalized streak input purely by time passing.
func (s *Session) Publish() {
	s.notify()
}

func (s *Session) notify() {
	s.mu.Lock()
	subs := make([]func(DerivedView), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	if len(subs) == 0 {
		return
	}
	view := s.View()
	for _, fn := range subs {
		fn(view)
	}
}

func (s *Session) snapshot() []domain.IntakeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() []domain.IntakeEvent {
	out := make([]domain.IntakeEvent, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	return out
}
