package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/signals"
	"github.com/zjrosen/sigtrack/internal/testutil"
	"github.com/zjrosen/sigtrack/internal/tracing"
)

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

type fakeDispatcher struct {
	mu      sync.Mutex
	actions []string
	result  bool
}

func (d *fakeDispatcher) SendIntent(_ context.Context, action string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actions = append(d.actions, action)
	return d.result
}

func (d *fakeDispatcher) sent() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.actions...)
}

func newStore(t *testing.T) *signals.Service {
	t.Helper()
	db := testutil.NewTestDB(t)

	n := 0
	return testutil.NewTestService(db,
		signals.WithClock(testutil.FixedClock(fixedNow)),
		signals.WithGUIDs(func() string {
			n++
			return fmt.Sprintf("sig-%d", n)
		}),
	)
}

func newHandler(t *testing.T, d Dispatcher) (*Handler, *signals.Service) {
	t.Helper()
	store := newStore(t)
	h := NewHandler(HandlerConfig{
		Store:      store,
		Dispatcher: d,
		Broadcast:  config.Defaults().Broadcast,
		Now:        func() time.Time { return fixedNow },
	})
	return h, store
}

func do(t *testing.T, h *Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHandler_CreatePlain(t *testing.T) {
	h, store := newHandler(t, nil)

	w := do(t, h, http.MethodPost, "/signals", `{"text": "101,202"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode[SignalResponse](t, w)
	assert.Equal(t, "sig-1", resp.GUID)
	assert.Equal(t, "101,202", resp.Text)
	assert.Nil(t, resp.Antidelay)
	assert.True(t, resp.Timestamp.Equal(fixedNow))

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestHandler_CreateWithAntidelay(t *testing.T) {
	h, _ := newHandler(t, nil)

	w := do(t, h, http.MethodPost, "/signals", `{"text": "ring", "antidelay": 7}`)

	require.Equal(t, http.StatusCreated, w.Code)
	resp := decode[SignalResponse](t, w)
	require.NotNil(t, resp.Antidelay)
	assert.Equal(t, 7, *resp.Antidelay)
	assert.True(t, resp.CreatedAt.Equal(fixedNow))
	assert.True(t, resp.Timestamp.Equal(fixedNow.Add(-7*time.Second)))
}

func TestHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "invalid json", body: "not json", code: "invalid_json"},
		{name: "empty text", body: `{"text": "   "}`, code: "validation_error"},
		{name: "negative antidelay", body: `{"text": "x", "antidelay": -1}`, code: "validation_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newHandler(t, nil)

			w := do(t, h, http.MethodPost, "/signals", tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)

			count, err := store.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, count)
		})
	}
}

func TestHandler_ListNewestFirst(t *testing.T) {
	h, _ := newHandler(t, nil)
	for _, text := range []string{"a", "b", "c"} {
		require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/signals", `{"text": "`+text+`"}`).Code)
	}

	w := do(t, h, http.MethodGet, "/signals", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ListSignalsResponse](t, w)
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "c", resp.Signals[0].Text)
	assert.Equal(t, "a", resp.Signals[2].Text)

	w = do(t, h, http.MethodGet, "/signals?limit=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[ListSignalsResponse](t, w).Total)
}

func TestHandler_ListSeededData(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.NewBuilder(t, db).WithStandardTestData().Build()
	h := NewHandler(HandlerConfig{Store: testutil.NewTestService(db)})

	w := do(t, h, http.MethodGet, "/signals", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[ListSignalsResponse](t, w)
	require.Equal(t, 3, resp.Total)
	assert.Equal(t, "sig-multi", resp.Signals[0].GUID)
	delayed := resp.Signals[1]
	require.NotNil(t, delayed.Antidelay)
	assert.Equal(t, 12, *delayed.Antidelay)
	assert.True(t, delayed.Timestamp.Equal(delayed.CreatedAt.Add(-12*time.Second)))
}

func TestHandler_ListEmptyIsArray(t *testing.T) {
	h, _ := newHandler(t, nil)

	w := do(t, h, http.MethodGet, "/signals", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"signals":[]`)
}

func TestHandler_ListBadLimit(t *testing.T) {
	h, _ := newHandler(t, nil)

	for _, limit := range []string{"-1", "x"} {
		w := do(t, h, http.MethodGet, "/signals?limit="+limit, "")
		require.Equal(t, http.StatusBadRequest, w.Code, limit)
	}
}

func TestHandler_GetAndDelete(t *testing.T) {
	h, _ := newHandler(t, nil)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/signals", `{"text": "keep"}`).Code)

	w := do(t, h, http.MethodGet, "/signals/sig-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "keep", decode[SignalResponse](t, w).Text)

	w = do(t, h, http.MethodDelete, "/signals/sig-1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodGet, "/signals/sig-1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, w).Code)

	w = do(t, h, http.MethodDelete, "/signals/sig-1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_SendIntentByName(t *testing.T) {
	d := &fakeDispatcher{result: true}
	h, _ := newHandler(t, d)
	actions := config.DefaultActions()

	w := do(t, h, http.MethodPost, "/intents/"+url.PathEscape(actions[0].Name), "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[IntentResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, actions[0].Action, resp.Action)
	assert.Equal(t, []string{actions[0].Action}, d.sent())
}

func TestHandler_SendIntentRawActionFails(t *testing.T) {
	d := &fakeDispatcher{result: false}
	h, _ := newHandler(t, d)

	w := do(t, h, http.MethodPost, "/intents/com.example.CUSTOM", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[IntentResponse](t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, []string{"com.example.CUSTOM"}, d.sent())
}

func TestHandler_SendIntentWithoutDispatcher(t *testing.T) {
	h, _ := newHandler(t, nil)

	w := do(t, h, http.MethodPost, "/intents/anything", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestHandler_Time(t *testing.T) {
	h, _ := newHandler(t, nil)

	w := do(t, h, http.MethodGet, "/time", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-10-19T09:30:00Z", decode[TimeResponse](t, w).Time)
}

func TestHandler_UnknownRouteAndMethod(t *testing.T) {
	h, _ := newHandler(t, nil)

	w := do(t, h, http.MethodGet, "/nope", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[ErrorResponse](t, w).Code)

	w = do(t, h, http.MethodPut, "/signals", "")
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandler_RequestsAreTraced(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	h := NewHandler(HandlerConfig{
		Store:  newStore(t),
		Tracer: tp.Tracer("test"),
	})

	w := do(t, h, http.MethodGet, "/signals/missing", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	var names []string
	for _, s := range rec.Ended() {
		names = append(names, s.Name())
	}
	assert.Contains(t, names, tracing.SpanHTTPPrefix+"GET /signals/{guid}")
}

func TestServer_StartStop(t *testing.T) {
	srv, err := NewServer(ServerConfig{
		Addr:    "127.0.0.1:0",
		Handler: HandlerConfig{Store: newStore(t)},
	})
	require.NoError(t, err)
	require.NotZero(t, srv.Port())

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	resp, err := http.Get("http://" + srv.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, <-done)
}
