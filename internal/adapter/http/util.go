package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"hydrolog/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeDomainError maps the error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrInvalidGoal):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, domain.ErrNoUser):
		writeError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// frameQuery reads the time-frame query parameter, defaulting when absent.
func frameQuery(r *http.Request, fallback domain.TimeFrame) (domain.TimeFrame, error) {
	v := r.URL.Query().Get("frame")
	if v == "" {
		return fallback, nil
	}
	return domain.ParseTimeFrame(v)
}

// dateQuery reads a YYYY-MM-DD reference date in loc, defaulting to now.
func dateQuery(r *http.Request, loc *time.Location) (time.Time, error) {
	v := r.URL.Query().Get("date")
	if v == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return t, nil
}
