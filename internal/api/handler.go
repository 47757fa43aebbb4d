// Package api exposes saved signals and intent broadcasts over HTTP so that
// automation tools on the device can commit and fire without the TUI.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/signals"
	"github.com/zjrosen/sigtrack/internal/tracing"
)

// Store is the subset of signals.Service the handlers need.
type Store interface {
	Save(ctx context.Context, text string, delaySeconds *int) (*signals.SavedSignal, error)
	List(ctx context.Context, limit int) ([]signals.SavedSignal, error)
	Get(ctx context.Context, guid string) (*signals.SavedSignal, error)
	Delete(ctx context.Context, guid string) error
}

// Dispatcher fires an intent action.
type Dispatcher interface {
	SendIntent(ctx context.Context, action string) bool
}

// Handler serves the HTTP endpoints.
type Handler struct {
	store      Store
	dispatcher Dispatcher
	broadcast  config.BroadcastConfig
	tracer     trace.Tracer
	now        func() time.Time
}

// HandlerConfig configures the API handler.
type HandlerConfig struct {
	// Store holds saved signals (required).
	Store Store
	// Dispatcher sends intents. When nil, /intents answers 503.
	Dispatcher Dispatcher
	// Broadcast resolves configured action names to intent actions.
	Broadcast config.BroadcastConfig
	Tracer    trace.Tracer
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a handler from cfg.
func NewHandler(cfg HandlerConfig) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		store:      cfg.Store,
		dispatcher: cfg.Dispatcher,
		broadcast:  cfg.Broadcast,
		tracer:     tracing.OrNoop(cfg.Tracer),
		now:        now,
	}
}

// Routes returns the router with every endpoint registered.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.Use(h.traced)

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/time", h.Time).Methods(http.MethodGet)

	r.HandleFunc("/signals", h.List).Methods(http.MethodGet)
	r.HandleFunc("/signals", h.Create).Methods(http.MethodPost)
	r.HandleFunc("/signals/{guid}", h.Get).Methods(http.MethodGet)
	r.HandleFunc("/signals/{guid}", h.Delete).Methods(http.MethodDelete)

	r.HandleFunc("/intents/{action}", h.SendIntent).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "No such endpoint", "")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", "")
	})
	return r
}

// === Request/Response Types ===

// CreateSignalRequest is the body of POST /signals.
type CreateSignalRequest struct {
	Text string `json:"text"`
	// Antidelay backdates the signal by this many seconds. Omit for a plain save.
	Antidelay *int `json:"antidelay,omitempty"`
}

// SignalResponse is one saved signal.
type SignalResponse struct {
	GUID      string    `json:"guid"`
	Text      string    `json:"text"`
	Antidelay *int      `json:"antidelay,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ListSignalsResponse is the body of GET /signals.
type ListSignalsResponse struct {
	Signals []SignalResponse `json:"signals"`
	Total   int              `json:"total"`
}

// IntentResponse is the body of POST /intents/{action}.
type IntentResponse struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
}

// TimeResponse is the body of GET /time.
type TimeResponse struct {
	Time string `json:"time"`
}

// ErrorResponse is the body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// === Handlers ===

// Health reports liveness.
// GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Time returns the server clock in RFC3339, which clients use to compute
// an antidelay against the device's own time.
// GET /time
func (h *Handler) Time(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TimeResponse{Time: h.now().Format(time.RFC3339)})
}

// List returns saved signals, newest first.
// GET /signals?limit=N
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer", "")
			return
		}
		limit = n
	}

	list, err := h.store.List(r.Context(), limit)
	if err != nil {
		log.ErrorErr(log.CatAPI, "list signals failed", err)
		writeError(w, http.StatusInternalServerError, "list_failed", "Failed to list signals", err.Error())
		return
	}

	resp := ListSignalsResponse{Signals: make([]SignalResponse, 0, len(list)), Total: len(list)}
	for _, s := range list {
		resp.Signals = append(resp.Signals, toResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create commits a signal.
// POST /signals
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSignalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}

	sig, err := h.store.Save(r.Context(), req.Text, req.Antidelay)
	switch {
	case errors.Is(err, signals.ErrEmptySignal), errors.Is(err, signals.ErrNegativeAntidelay):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error(), "")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "save_failed", "Failed to save signal", err.Error())
		return
	}

	log.Info(log.CatAPI, "signal created", "guid", sig.GUID, "antidelay", sig.AntidelaySeconds())
	writeJSON(w, http.StatusCreated, toResponse(*sig))
}

// Get returns one signal.
// GET /signals/{guid}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	sig, err := h.store.Get(r.Context(), guid)
	if err != nil {
		if signals.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "Signal not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "get_failed", "Failed to get signal", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toResponse(*sig))
}

// Delete removes one signal.
// DELETE /signals/{guid}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	guid := mux.Vars(r)["guid"]

	if err := h.store.Delete(r.Context(), guid); err != nil {
		if signals.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "Signal not found", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "delete_failed", "Failed to delete signal", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendIntent fires an intent. The path segment may be a configured action
// name or a raw intent action. A failed send is still a 200 with
// success=false.
// POST /intents/{action}
func (h *Handler) SendIntent(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "Intent dispatch is not configured", "")
		return
	}

	action := mux.Vars(r)["action"]
	if a, ok := h.broadcast.Find(action); ok {
		action = a.Action
	}

	ok := h.dispatcher.SendIntent(r.Context(), action)
	log.Info(log.CatAPI, "intent requested", "action", action, "success", ok)
	writeJSON(w, http.StatusOK, IntentResponse{Action: action, Success: ok})
}

// traced wraps each request in a span named after its route template.
func (h *Handler) traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		ctx, span := tracing.Start(r.Context(), h.tracer, tracing.SpanHTTPPrefix+r.Method+" "+route,
			attribute.String(tracing.AttrHTTPRoute, route),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		log.Debug(log.CatAPI, "request", "method", r.Method, "route", route, "status", rec.status,
			"trace_id", tracing.TraceID(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func toResponse(s signals.SavedSignal) SignalResponse {
	return SignalResponse{
		GUID:      s.GUID,
		Text:      s.Text,
		Antidelay: s.Antidelay,
		CreatedAt: s.CreatedAt.UTC(),
		Timestamp: s.Timestamp.UTC(),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatAPI, "Failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
