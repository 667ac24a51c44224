package adapthttp

import (
	"net/http"
	"time"

	"hydrolog/internal/domain"
)

type intakeEventRequest struct {
	AmountMl float64 `json:"amountMl" validate:"required,gt=0"`
}

func (s *Server) handleIntakeEvent(w http.ResponseWriter, r *http.Request) {
	var body intakeEventRequest
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.validate.Struct(body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := s.session(userFromContext(r))
	pending, err := sess.Insert(r.Context(), body.AmountMl)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	// The optimistic row is already visible; block on confirmation so the
	// client gets a definite outcome and can offer a retry on failure.
	if err := <-pending.Done; err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accepted":    true,
		"todayTotal":  sess.TodayTotal(),
		"dailyGoalMl": sess.DailyGoal(),
	})
}

func (s *Server) handleIntakeToday(w http.ResponseWriter, r *http.Request) {
	sess := s.session(userFromContext(r))
	loc := s.agg.Location()
	today := domain.DayOf(time.Now(), loc)

	writeJSON(w, http.StatusOK, map[string]any{
		"today":       today,
		"totalMl":     sess.CurrentTotal(today),
		"dailyGoalMl": sess.DailyGoal(),
	})
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	sess := s.session(userFromContext(r))
	writeJSON(w, http.StatusOK, sess.Streak())
}
