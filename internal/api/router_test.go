package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fan-control-backend/config"
	"fan-control-backend/internal/device"
	"fan-control-backend/internal/fan"
	"fan-control-backend/internal/model"
	"fan-control-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockDispatcher struct {
	mu     sync.Mutex
	levels []int
	err    error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = append(m.levels, level)
	return m.err
}

// mockStore is a mock implementation of the store.Store interface.
type mockStore struct {
	RecentDispatchesFunc func(ctx context.Context, limit int) ([]model.DispatchRecord, error)
}

func (m *mockStore) RecordDispatch(ctx context.Context, entry store.DispatchEntry) error {
	return nil
}

func (m *mockStore) RecentDispatches(ctx context.Context, limit int) ([]model.DispatchRecord, error) {
	return m.RecentDispatchesFunc(ctx, limit)
}

var testServerConfig = config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60}

func setupRouter(t *testing.T, dispatcher fan.Dispatcher, s store.Store) (*gin.Engine, *fan.Panel, *fan.ManualScheduler) {
	t.Helper()
	scheduler := &fan.ManualScheduler{}
	panel := fan.NewPanel(dispatcher, fan.Options{Scheduler: scheduler})
	t.Cleanup(panel.Close)
	return NewRouter(panel, s, testServerConfig), panel, scheduler
}

func doRequest(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) fan.Snapshot {
	t.Helper()
	var s fan.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &s))
	return s
}

func TestGetState(t *testing.T) {
	router, _, _ := setupRouter(t, &mockDispatcher{}, nil)

	w := doRequest(router, http.MethodGet, "/api/state", "")
	assert.Equal(t, http.StatusOK, w.Code)

	s := decodeSnapshot(t, w)
	assert.False(t, s.Power)
	assert.Equal(t, 0, s.Speed)
	assert.Equal(t, device.CommandOff, s.Command)
	assert.Equal(t, "ease-out", s.Transition.Easing)
}

func TestSetSpeedByPath(t *testing.T) {
	dispatcher := &mockDispatcher{}
	router, _, scheduler := setupRouter(t, dispatcher, nil)

	w := doRequest(router, http.MethodPut, "/api/speed/3", "")
	require.Equal(t, http.StatusOK, w.Code)

	s := decodeSnapshot(t, w)
	assert.True(t, s.Power)
	assert.Equal(t, 3, s.Speed)
	assert.Equal(t, device.CommandMedium, s.Command)
	assert.Equal(t, []int{3}, dispatcher.levels)

	scheduler.Step()
	w = doRequest(router, http.MethodGet, "/api/state", "")
	assert.Equal(t, 12, decodeSnapshot(t, w).Rotation)
}

func TestSetSpeedValidation(t *testing.T) {
	dispatcher := &mockDispatcher{}
	router, _, _ := setupRouter(t, dispatcher, nil)

	testCases := []struct {
		name string
		path string
		body string
		code int
	}{
		{name: "Out of range path", path: "/api/speed/9", code: http.StatusBadRequest},
		{name: "Zero path", path: "/api/speed/0", code: http.StatusBadRequest},
		{name: "Word path", path: "/api/speed/fast", code: http.StatusBadRequest},
		{name: "Missing body", path: "/api/speed", code: http.StatusBadRequest},
		{name: "Empty body", path: "/api/speed", body: `{}`, code: http.StatusBadRequest},
		{name: "Out of range body", path: "/api/speed", body: `{"level":7}`, code: http.StatusBadRequest},
		{name: "Valid body", path: "/api/speed", body: `{"level":2}`, code: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPut, tc.path, tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, []int{2}, dispatcher.levels)
}

func TestTogglePower_DeviceUnreachable(t *testing.T) {
	dispatcher := &mockDispatcher{err: &device.DeviceError{Address: "192.168.1.100", Command: device.CommandLow, Err: errors.New("connection refused")}}
	router, _, _ := setupRouter(t, dispatcher, nil)

	w := doRequest(router, http.MethodPost, "/api/power/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)

	s := decodeSnapshot(t, w)
	assert.True(t, s.Power)
	assert.Equal(t, 1, s.Speed)
	assert.Contains(t, s.ConnectionError, "192.168.1.100")
}

func TestTogglePower_ClosedPanel(t *testing.T) {
	router, panel, _ := setupRouter(t, &mockDispatcher{}, nil)
	panel.Close()

	w := doRequest(router, http.MethodPost, "/api/power/toggle", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestGetLevels(t *testing.T) {
	router, _, _ := setupRouter(t, &mockDispatcher{}, nil)

	w := doRequest(router, http.MethodGet, "/api/levels", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[
		{"level":0,"command":"OFF"},
		{"level":1,"command":"LOW"},
		{"level":2,"command":"LOW"},
		{"level":3,"command":"MEDIUM"},
		{"level":4,"command":"MEDIUM"},
		{"level":5,"command":"HIGH"}
	]`, w.Body.String())

	w = doRequest(router, http.MethodGet, "/api/levels", "")
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
}

func TestGetDispatches(t *testing.T) {
	now := time.Now().UTC()
	var gotLimit int
	s := &mockStore{
		RecentDispatchesFunc: func(ctx context.Context, limit int) ([]model.DispatchRecord, error) {
			gotLimit = limit
			return []model.DispatchRecord{{ID: 1, Level: 5, Command: "HIGH", Address: "192.168.1.100", OK: true, StatusCode: 200, SentAt: now}}, nil
		},
	}
	router, _, _ := setupRouter(t, &mockDispatcher{}, s)

	w := doRequest(router, http.MethodGet, "/api/dispatches?limit=5", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, gotLimit)

	var records []model.DispatchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "HIGH", records[0].Command)

	w = doRequest(router, http.MethodGet, "/api/dispatches", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, gotLimit)

	w = doRequest(router, http.MethodGet, "/api/dispatches?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDispatches_StoreError(t *testing.T) {
	s := &mockStore{
		RecentDispatchesFunc: func(ctx context.Context, limit int) ([]model.DispatchRecord, error) {
			return nil, errors.New("db down")
		},
	}
	router, _, _ := setupRouter(t, &mockDispatcher{}, s)

	w := doRequest(router, http.MethodGet, "/api/dispatches", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetDispatches_NoStore(t *testing.T) {
	router, _, _ := setupRouter(t, &mockDispatcher{}, nil)

	w := doRequest(router, http.MethodGet, "/api/dispatches", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStream(t *testing.T) {
	router, _, scheduler := setupRouter(t, &mockDispatcher{}, nil)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/api/stream"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var s fan.Snapshot
	require.NoError(t, conn.ReadJSON(&s))
	assert.False(t, s.Power)

	w := doRequest(router, http.MethodPut, "/api/speed/5", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, conn.ReadJSON(&s))
	assert.Equal(t, 5, s.Speed)

	scheduler.Step()
	require.NoError(t, conn.ReadJSON(&s))
	assert.Equal(t, 20, s.Rotation)
}
