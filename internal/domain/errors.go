package domain

import "errors"

var (
	// ErrInvalidAmount indicates an intake amount outside (0, max].
	ErrInvalidAmount = errors.New("invalid intake amount")
	// ErrInvalidGoal indicates a non-positive daily goal.
	ErrInvalidGoal = errors.New("daily goal must be positive")
	// ErrStoreUnavailable indicates the intake store could not be reached.
	ErrStoreUnavailable = errors.New("intake store unavailable")
	// ErrNoUser indicates no active session identity.
	ErrNoUser = errors.New("no active user")
)
