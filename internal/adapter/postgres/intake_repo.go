package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hydrolog/internal/domain"
)

// Ensure the port is met.
var _ domain.IntakeStore = (*DB)(nil)

// Create inserts a new intake event and returns its assigned id.
func (d *DB) Create(ctx context.Context, userID int64, amount float64, timestamp time.Time) (string, error) {
	id := uuid.NewString()
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO intake_events(id, user_id, amount_ml, created_at) VALUES($1, $2, $3, $4);",
		id, userID, amount, timestamp.UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return id, nil
}

// ListAll returns every intake event for a user, newest first.
func (d *DB) ListAll(ctx context.Context, userID int64) ([]domain.IntakeEvent, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT id, amount_ml, created_at FROM intake_events WHERE user_id=$1 ORDER BY created_at DESC;", userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.IntakeEvent, 0)
	for rows.Next() {
		var e domain.IntakeEvent
		if err := rows.Scan(&e.ID, &e.Amount, &e.Timestamp); err != nil {
			return nil, err
		}
		e.UserID = userID
		out = append(out, e)
	}
	return out, rows.Err()
}
