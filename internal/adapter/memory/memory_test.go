package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrolog/internal/domain"
)

func TestCreateAndListAll(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2026, time.August, 26, 8, 0, 0, 0, time.UTC)

	id1, err := s.Create(ctx, 1, 250, base)
	require.NoError(t, err)
	id2, err := s.Create(ctx, 1, 500, base.Add(2*time.Hour))
	require.NoError(t, err)
	_, err = s.Create(ctx, 2, 999, base.Add(time.Hour))
	require.NoError(t, err)

	assert.NotEqual(t, id1, id2)

	events, err := s.ListAll(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first, scoped to the user.
	assert.Equal(t, id2, events[0].ID)
	assert.Equal(t, id1, events[1].ID)
	for _, e := range events {
		assert.EqualValues(t, 1, e.UserID)
	}
}

func TestListAll_EmptyUser(t *testing.T) {
	s := New()
	events, err := s.ListAll(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFailNextCreate(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.FailNextCreate(domain.ErrStoreUnavailable)

	_, err := s.Create(ctx, 1, 250, time.Now())
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))

	// One-shot: the next call succeeds.
	_, err = s.Create(ctx, 1, 250, time.Now())
	assert.NoError(t, err)
}

func TestFailNextList(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.FailNextList(domain.ErrStoreUnavailable)

	_, err := s.ListAll(ctx, 1)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))

	_, err = s.ListAll(ctx, 1)
	assert.NoError(t, err)
}

func TestCreateDelay_CancelledContext(t *testing.T) {
	s := New()
	s.SetCreateDelay(time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Create(ctx, 1, 250, time.Now())
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))

	events, listErr := s.ListAll(context.Background(), 1)
	require.NoError(t, listErr)
	assert.Empty(t, events, "cancelled create must not persist")
}
