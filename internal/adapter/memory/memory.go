// Package memory implements an in-memory intake store for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"hydrolog/internal/domain"
)

// Store implements an in-memory intake-event store.
type Store struct {
	mu     sync.Mutex
	events []domain.IntakeEvent

	failNextCreate error
	failNextList   error
	createDelay    time.Duration
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{}
}

// Ensure the port is met.
var _ domain.IntakeStore = (*Store)(nil)

// Create persists an intake event and returns its assigned id.
func (s *Store) Create(ctx context.Context, userID int64, amount float64, timestamp time.Time) (string, error) {
	if d := s.delay(); d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, ctx.Err())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNextCreate; err != nil {
		s.failNextCreate = nil
		return "", err
	}

	e := domain.IntakeEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Amount:    amount,
		Timestamp: timestamp.UTC(),
	}
	s.events = append(s.events, e)
	return e.ID, nil
}

// ListAll returns every event for the user, newest first.
func (s *Store) ListAll(ctx context.Context, userID int64) ([]domain.IntakeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.failNextList; err != nil {
		s.failNextList = nil
		return nil, err
	}

	result := make([]domain.IntakeEvent, 0, len(s.events))
	for _, e := range s.events {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

// FailNextCreate makes the next Create call return err.
func (s *Store) FailNextCreate(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextCreate = err
}

// FailNextList makes the next ListAll call return err.
func (s *Store) FailNextList(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNextList = err
}

// SetCreateDelay makes Create wait for d before applying, simulating a slow
// network round-trip.
func (s *Store) SetCreateDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createDelay = d
}

func (s *Store) delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createDelay
}
