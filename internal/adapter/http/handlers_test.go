package adapthttp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"hydrolog/internal/adapter/memory"
	"hydrolog/internal/app"
)

func newTestServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	agg := app.NewAggregator(time.UTC, zaptest.NewLogger(t))
	return New(store, agg, 2000, 3000, zaptest.NewLogger(t)), store
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, asUser string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if asUser != "" {
		r.Header.Set("Remote-User-Id", asUser)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(t, srv.Handler(), http.MethodGet, "/api/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIdentity_MissingHeader(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, path := range []string{"/api/intake/today", "/api/streak", "/api/history"} {
		w := doRequest(t, h, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := doRequest(t, h, http.MethodGet, "/api/intake/today", "", "not-a-number")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIntakeEvent_RecordAndReadBack(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w := doRequest(t, h, http.MethodPost, "/api/intake/event", `{"amountMl":250}`, "7")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, true, resp["accepted"])
	assert.InDelta(t, 250, resp["todayTotal"].(float64), 1e-9)

	w = doRequest(t, h, http.MethodGet, "/api/intake/today", "", "7")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.InDelta(t, 250, resp["totalMl"].(float64), 1e-9)
	assert.InDelta(t, 2000, resp["dailyGoalMl"].(float64), 1e-9)

	// Another user sees nothing.
	w = doRequest(t, h, http.MethodGet, "/api/intake/today", "", "8")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Zero(t, resp["totalMl"].(float64))
}

func TestIntakeEvent_Validation(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	for _, body := range []string{
		`{"amountMl":0}`,
		`{"amountMl":-50}`,
		`{}`,
		`{"amountMl":250,"extra":true}`,
		`not json`,
	} {
		w := doRequest(t, h, http.MethodPost, "/api/intake/event", body, "7")
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	// Over the configured maximum: passes body validation, rejected by the cache.
	w := doRequest(t, h, http.MethodPost, "/api/intake/event", `{"amountMl":9000}`, "7")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIntakeEvent_StoreFailure(t *testing.T) {
	srv, store := newTestServer(t)
	h := srv.Handler()

	// Hydrate the session first so the failure hits the insert, not the
	// initial refresh.
	doRequest(t, h, http.MethodGet, "/api/intake/today", "", "7")

	store.FailNextCreate(assertableErr{})
	w := doRequest(t, h, http.MethodPost, "/api/intake/event", `{"amountMl":250}`, "7")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The optimistic write was rolled back.
	w = doRequest(t, h, http.MethodGet, "/api/intake/today", "", "7")
	resp := decode(t, w)
	assert.Zero(t, resp["totalMl"].(float64))
}

type assertableErr struct{}

func (assertableErr) Error() string { return "store blew up" }

func TestChartBuckets(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	doRequest(t, h, http.MethodPost, "/api/intake/event", `{"amountMl":300}`, "7")

	w := doRequest(t, h, http.MethodGet, "/api/charts/buckets", "", "7")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "day", resp["frame"])
	assert.Len(t, resp["buckets"].([]any), 6)

	w = doRequest(t, h, http.MethodGet, "/api/charts/buckets?frame=week", "", "7")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Len(t, resp["buckets"].([]any), 7)

	w = doRequest(t, h, http.MethodGet, "/api/charts/buckets?frame=fortnight", "", "7")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, h, http.MethodGet, "/api/charts/buckets?date=yesterday-ish", "", "7")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	doRequest(t, h, http.MethodPost, "/api/intake/event", `{"amountMl":500}`, "7")

	w := doRequest(t, h, http.MethodGet, "/api/history?frame=week", "", "7")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	items := resp["items"].([]any)
	require.Len(t, items, 1)

	item := items[0].(map[string]any)
	assert.InDelta(t, 500, item["totalMl"].(float64), 1e-9)
	assert.InDelta(t, 25, item["progressPercent"].(float64), 1e-9)
	assert.InDelta(t, 0.25, item["rawRatio"].(float64), 1e-9)
}

func TestStreak_EmptyHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doRequest(t, srv.Handler(), http.MethodGet, "/api/streak", "", "7")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Zero(t, resp["currentStreak"].(float64))
	assert.Nil(t, resp["lastEvaluatedDay"])
}
