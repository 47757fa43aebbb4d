package broadcast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/tracing"
)

// ErrNoRoute is reported when neither a command nor an opener is set.
var ErrNoRoute = errors.New("no broadcast command or opener configured")

// PlatformDispatcher sends intents with `am broadcast` and falls back to
// opening a URL.
type PlatformDispatcher struct {
	mu       sync.RWMutex
	cfg      config.BroadcastConfig
	runner   Runner
	tracer   trace.Tracer
	recorder Recorder
	now      func() time.Time
}

var _ Dispatcher = (*PlatformDispatcher)(nil)

// Option configures a PlatformDispatcher.
type Option func(*PlatformDispatcher)

// WithRunner replaces the exec-based runner.
func WithRunner(r Runner) Option {
	return func(d *PlatformDispatcher) { d.runner = r }
}

func WithTracer(t trace.Tracer) Option {
	return func(d *PlatformDispatcher) { d.tracer = t }
}

// WithRecorder persists every attempt that reached a route.
func WithRecorder(r Recorder) Option {
	return func(d *PlatformDispatcher) { d.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(d *PlatformDispatcher) { d.now = now }
}

// NewPlatformDispatcher builds a dispatcher from the broadcast config.
func NewPlatformDispatcher(cfg config.BroadcastConfig, opts ...Option) *PlatformDispatcher {
	d := &PlatformDispatcher{
		cfg:    cfg,
		runner: ExecRunner{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SetConfig swaps the broadcast config, e.g. after a config file reload.
// Sends already in flight keep the config they started with.
func (d *PlatformDispatcher) SetConfig(cfg config.BroadcastConfig) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cfg = cfg
}

func (d *PlatformDispatcher) config() config.BroadcastConfig {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cfg
}

// SendIntent implements Dispatcher.
func (d *PlatformDispatcher) SendIntent(ctx context.Context, action string) bool {
	return d.Send(ctx, action).Success
}

// Send resolves action (a configured name or a raw intent action) and
// tries the platform broadcast, then the fallback URL.
func (d *PlatformDispatcher) Send(ctx context.Context, action string) (a Attempt) {
	cfg := d.config()
	a = Attempt{Action: strings.TrimSpace(action), Path: PathNone, At: d.now()}

	if a.Action == "" {
		a.Err = errors.New("empty action")
		return a
	}

	fallbackURL := ""
	if entry, ok := cfg.Find(a.Action); ok {
		a.Action = entry.Action
		fallbackURL = entry.URL
	}
	if fallbackURL == "" {
		fallbackURL = FallbackURL(cfg.URLScheme, a.Action)
	}

	ctx, span := tracing.Start(ctx, d.tracer, tracing.SpanIntentSend,
		attribute.String(tracing.AttrIntentAction, a.Action),
	)
	defer func() {
		span.SetAttributes(attribute.String(tracing.AttrIntentPath, string(a.Path)))
		tracing.Finish(span, a.Err)
		d.record(ctx, a)
	}()
	// Runs before the span is finished so a panic is traced and recorded.
	defer func() {
		if r := recover(); r != nil {
			log.Error(log.CatBroadcast, "broadcast panicked", "action", a.Action, "panic", r)
			a.Success = false
			a.Path = PathNone
			a.URL = ""
			a.Err = fmt.Errorf("broadcast panicked: %v", r)
		}
	}()

	var platformErr error
	if cfg.Command != "" {
		platformErr = d.run(ctx, cfg.Timeout(), cfg.Command, "broadcast", "-a", a.Action, "-f", IncludeStoppedPackages)
		if platformErr == nil {
			a.Path = PathPlatform
			a.Success = true
			log.Info(log.CatBroadcast, "intent sent", "action", a.Action, "path", a.Path)
			return a
		}
		span.AddEvent(tracing.EventPlatformFailed)
		log.Warn(log.CatBroadcast, "platform broadcast failed", "action", a.Action, "error", platformErr)
	}

	if cfg.Opener == "" || fallbackURL == "" {
		a.Err = platformErr
		if a.Err == nil {
			a.Err = ErrNoRoute
		}
		return a
	}

	span.AddEvent(tracing.EventFallbackStarted, trace.WithAttributes(attribute.String(tracing.AttrIntentURL, fallbackURL)))
	a.URL = fallbackURL
	if err := d.run(ctx, cfg.Timeout(), cfg.Opener, fallbackURL); err != nil {
		a.Err = errors.Join(platformErr, err)
		log.Warn(log.CatBroadcast, "fallback failed", "action", a.Action, "url", fallbackURL, "error", err)
		return a
	}
	a.Path = PathFallback
	a.Success = true
	log.Info(log.CatBroadcast, "intent sent", "action", a.Action, "path", a.Path, "url", fallbackURL)
	return a
}

func (d *PlatformDispatcher) run(ctx context.Context, timeout time.Duration, name string, args ...string) error {
	if t := timeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	_, err := d.runner.Run(ctx, name, args...)
	return err
}

func (d *PlatformDispatcher) record(ctx context.Context, a Attempt) {
	if d.recorder == nil {
		return
	}
	if err := d.recorder.RecordIntent(context.WithoutCancel(ctx), a); err != nil {
		log.Warn(log.CatBroadcast, "recording intent failed", "action", a.Action, "error", err)
	}
}
