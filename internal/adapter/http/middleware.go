package adapthttp

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

type contextKey string

const userContextKey contextKey = "user"

// identityMiddleware resolves the session identity from the forward-auth
// header set by the fronting proxy. The authentication protocol itself lives
// upstream; this adapter only consumes the result.
func (s *Server) identityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteUser := r.Header.Get("Remote-User-Id")
		userID, err := strconv.ParseInt(remoteUser, 10, 64)
		if remoteUser == "" || err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFromContext(r *http.Request) int64 {
	id, _ := r.Context().Value(userContextKey).(int64)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("took", time.Since(start)))
	})
}
