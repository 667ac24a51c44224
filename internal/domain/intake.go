package domain

import (
	"context"
	"time"
)

// IntakeEvent represents a single recorded drink.
//
// ID is assigned by the store; an event that has not been persisted yet
// carries a locally generated temporary id. Amount is millilitres and is
// always positive for persisted events.
type IntakeEvent struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Amount    float64   `json:"amountMl"`
	Timestamp time.Time `json:"timestamp"`
}

// IntakeStore is the port for intake-event persistence.
type IntakeStore interface {
	Create(ctx context.Context, userID int64, amount float64, timestamp time.Time) (string, error)
	ListAll(ctx context.Context, userID int64) ([]IntakeEvent, error)
}

// Identity exposes the active session identity. Absence of a user means
// "no data available", not a failure.
type Identity interface {
	CurrentUserID() (int64, bool)
}
