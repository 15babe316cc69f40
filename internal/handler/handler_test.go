package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/scheduler"
	"github.com/sysu-ecnc-dev/workshop-planner/backend/internal/status"
)

type fakeTracker struct {
	state  status.State
	result *status.FinalResult
	panics bool
}

func (f *fakeTracker) State() status.State {
	if f.panics {
		panic("broken tracker")
	}
	return f.state
}

func (f *fakeTracker) Result() (*status.FinalResult, bool) {
	return f.result, f.result != nil
}

func newTestHandler(tracker *fakeTracker, metrics http.Handler) *Handler {
	h := NewHandler(tracker, metrics)
	h.RegisterRoutes()
	return h
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) (Response[json.RawMessage], json.RawMessage) {
	t.Helper()
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp Response[json.RawMessage]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp, resp.Data
}

func TestGetStatus(t *testing.T) {
	h := newTestHandler(&fakeTracker{state: status.State{Progress: scheduler.Progress{Generation: 8, BestScore: -42}}}, nil)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp, data := decode(t, rec)
	assert.True(t, resp.Success)

	var state status.State
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, 8, state.Progress.Generation)
	assert.Equal(t, int64(-42), state.Progress.BestScore)
}

func TestGetResult(t *testing.T) {
	tracker := &fakeTracker{}
	h := newTestHandler(tracker, nil)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	resp, _ := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, codePlanRunning, resp.Code)
	assert.Equal(t, "排班尚未结束", resp.Message)

	tracker.result = &status.FinalResult{Score: -7, Blocks: domain.BlockTable{{1}, {}, {}, {}, {}, {}}}
	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/result", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	resp, data := decode(t, rec)
	assert.True(t, resp.Success)
	assert.Empty(t, resp.Code)

	var result status.FinalResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, int64(-7), result.Score)
	assert.Equal(t, tracker.result.Blocks, result.Blocks)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("workshop_planner_best_score 0\n"))
	})
	h := newTestHandler(&fakeTracker{}, metrics)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "workshop_planner_best_score")

	rec = httptest.NewRecorder()
	newTestHandler(&fakeTracker{}, nil).Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp, _ := decode(t, rec)
	assert.Equal(t, codeNotFound, resp.Code)
}

func TestUnknownRoutes(t *testing.T) {
	h := newTestHandler(&fakeTracker{}, nil)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/plans", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp, _ := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, codeNotFound, resp.Code)

	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	resp, _ = decode(t, rec)
	assert.Equal(t, codeMethodNotAllowed, resp.Code)
}

func TestRequestID(t *testing.T) {
	h := newTestHandler(&fakeTracker{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestStatusRecorder(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK}
	n, err := rec.Write([]byte("hello"))
	require.NoError(t, err)
	rec.WriteHeader(http.StatusTeapot)

	assert.Equal(t, 5, n)
	assert.Equal(t, 5, rec.bytes)
	assert.Equal(t, http.StatusOK, rec.status)
}

func TestRecoverer(t *testing.T) {
	h := newTestHandler(&fakeTracker{panics: true}, nil)

	rec := httptest.NewRecorder()
	h.Mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp, _ := decode(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, codeInternal, resp.Code)
	assert.Equal(t, "服务器内部错误", resp.Message)
}
