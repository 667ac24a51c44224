package adapthttp

import (
	"net/http"

	"hydrolog/internal/app"
	"hydrolog/internal/domain"
)

func (s *Server) handleChartBuckets(w http.ResponseWriter, r *http.Request) {
	frame, err := frameQuery(r, domain.TimeFrameDay)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ref, err := dateQuery(r, s.agg.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := s.session(userFromContext(r))
	writeJSON(w, http.StatusOK, map[string]any{
		"frame":   frame.String(),
		"date":    domain.DayOf(ref, s.agg.Location()),
		"buckets": sess.Buckets(ref, frame),
	})
}

// historyItemResponse mirrors app.HistoryItem with the derived progress
// fields flattened for clients.
type historyItemResponse struct {
	Date            domain.Day `json:"date"`
	TotalMl         float64    `json:"totalMl"`
	DailyGoalMl     float64    `json:"dailyGoalMl"`
	ProgressPercent int        `json:"progressPercent"`
	RawRatio        float64    `json:"rawRatio"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	frame, err := frameQuery(r, domain.TimeFrameWeek)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	ref, err := dateQuery(r, s.agg.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := s.session(userFromContext(r))
	items, err := sess.History(ref, frame)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]historyItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toHistoryItemResponse(it))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"frame": frame.String(),
		"items": out,
	})
}

func toHistoryItemResponse(it app.HistoryItem) historyItemResponse {
	return historyItemResponse{
		Date:            it.Date,
		TotalMl:         it.TotalAmount,
		DailyGoalMl:     it.DailyGoal,
		ProgressPercent: it.ProgressPercent(),
		RawRatio:        it.RawRatio(),
	}
}
