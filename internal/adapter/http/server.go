// Package adapthttp is the driving HTTP adapter exposing the hydration
// engine to rendering clients.
package adapthttp

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hydrolog/internal/app"
	"hydrolog/internal/domain"
)

// Server routes requests to per-user session state. Sessions are created
// lazily on first request and hydrated from the store.
type Server struct {
	log       *zap.Logger
	agg       *app.Aggregator
	store     domain.IntakeStore
	validate  *validator.Validate
	dailyGoal float64
	maxAmount float64

	mu       sync.Mutex
	sessions map[int64]*app.Session
}

// New creates a Server wired to the given store and aggregator.
func New(store domain.IntakeStore, agg *app.Aggregator, dailyGoal, maxAmount float64, log *zap.Logger) *Server {
	return &Server{
		log:       log,
		agg:       agg,
		store:     store,
		validate:  validator.New(),
		dailyGoal: dailyGoal,
		maxAmount: maxAmount,
		sessions:  make(map[int64]*app.Session),
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})

		r.Group(func(r chi.Router) {
			r.Use(s.identityMiddleware)

			r.Post("/intake/event", s.handleIntakeEvent)
			r.Get("/intake/today", s.handleIntakeToday)
			r.Get("/charts/buckets", s.handleChartBuckets)
			r.Get("/history", s.handleHistory)
			r.Get("/streak", s.handleStreak)
		})
	})

	return r
}

// PublishAll pushes a freshly computed view to every live session's
// subscribers. Wired to the day-rollover checker.
func (s *Server) PublishAll() {
	s.mu.Lock()
	sessions := make([]*app.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Publish()
	}
}

// session returns the cache session for userID, creating and hydrating it on
// first use. A failed initial refresh is logged and left to the next refresh;
// the session still serves optimistic local state.
func (s *Server) session(userID int64) *app.Session {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	if !ok {
		sess = app.NewSession(s.store, app.StaticIdentity(userID), s.agg, s.dailyGoal, s.maxAmount, s.log)
		s.sessions[userID] = sess
	}
	s.mu.Unlock()

	if !ok {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sess.Refresh(ctx); err != nil {
			s.log.Warn("initial session refresh failed", zap.Int64("userId", userID), zap.Error(err))
		}
	}
	return sess
}
