package signals

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/sigtrack/internal/antidelay"
	"github.com/zjrosen/sigtrack/internal/cachemanager"
	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/pubsub"
	"github.com/zjrosen/sigtrack/internal/tracing"
)

// DefaultListTTL bounds how long a cached saved list is served.
const DefaultListTTL = time.Minute

type listKey string

func listCacheKey(limit int) listKey {
	return listKey("list:" + strconv.Itoa(limit))
}

// Service commits and queries saved signals. It satisfies
// antidelay.Committer so the coordinator can drive it directly.
type Service struct {
	repo    Repository
	now     func() time.Time
	newGUID func() string
	tracer  trace.Tracer
	broker  *pubsub.Broker[SavedSignal]
	list    *cachemanager.ReadThroughCache[listKey, []SavedSignal, int]
	listTTL time.Duration
}

var _ antidelay.Committer = (*Service)(nil)

// Option configures a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithGUIDs overrides GUID generation.
func WithGUIDs(fn func() string) Option {
	return func(s *Service) { s.newGUID = fn }
}

// WithTracer sets the tracer used for commit and query spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// WithListTTL sets the saved-list cache TTL. Zero disables caching.
func WithListTTL(ttl time.Duration) Option {
	return func(s *Service) { s.listTTL = ttl }
}

// NewService builds a Service over repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:    repo,
		now:     time.Now,
		newGUID: func() string { return uuid.NewString() },
		broker:  pubsub.NewBroker[SavedSignal](),
		listTTL: DefaultListTTL,
	}
	for _, opt := range opts {
		opt(s)
	}

	cache := cachemanager.NewInMemoryCacheManager[listKey, []SavedSignal]("saved-signals", s.listTTL, cachemanager.DefaultCleanupInterval)
	s.list = cachemanager.NewReadThroughCache[listKey, []SavedSignal, int](cache, repo.List, s.listTTL <= 0)
	return s
}

// Broker publishes a CreatedEvent per commit and a DeletedEvent per delete.
func (s *Service) Broker() *pubsub.Broker[SavedSignal] {
	return s.broker
}

// Commit implements antidelay.Committer.
func (s *Service) Commit(ctx context.Context, text string, delaySeconds *int) error {
	_, err := s.Save(ctx, text, delaySeconds)
	return err
}

// Save stores a new snapshot of text. A nil delaySeconds is a plain save.
func (s *Service) Save(ctx context.Context, text string, delaySeconds *int) (sig *SavedSignal, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanSignalCommit,
		attribute.Int(tracing.AttrSignalLength, len(text)),
	)
	defer func() { tracing.Finish(span, err) }()

	if delaySeconds != nil {
		span.SetAttributes(attribute.Int(tracing.AttrSignalAntidelay, *delaySeconds))
	}

	sig, err = NewSavedSignal(s.newGUID(), text, delaySeconds, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sig); err != nil {
		log.ErrorErr(log.CatDB, "save signal failed", err, "guid", sig.GUID)
		return nil, fmt.Errorf("saving signal: %w", err)
	}
	span.AddEvent(tracing.EventSignalStored, trace.WithAttributes(attribute.String(tracing.AttrSignalGUID, sig.GUID)))

	s.invalidate(ctx)
	log.Info(log.CatDB, "signal saved",
		"guid", sig.GUID,
		"antidelay", sig.AntidelaySeconds(),
		"timestamp", sig.Timestamp.Format(time.RFC3339),
		"trace_id", tracing.TraceID(ctx))
	s.broker.Publish(pubsub.CreatedEvent, *sig)
	return sig, nil
}

// List returns up to limit signals, newest first.
func (s *Service) List(ctx context.Context, limit int) (_ []SavedSignal, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanSignalList)
	defer func() { tracing.Finish(span, err) }()

	if limit < 0 {
		limit = 0
	}
	out, err := s.list.Get(ctx, listCacheKey(limit), limit, s.listTTL)
	if err != nil {
		return nil, fmt.Errorf("listing signals: %w", err)
	}
	return append([]SavedSignal(nil), out...), nil
}

// Get returns the signal with guid.
func (s *Service) Get(ctx context.Context, guid string) (*SavedSignal, error) {
	return s.repo.FindByGUID(ctx, guid)
}

// Delete removes the signal with guid.
func (s *Service) Delete(ctx context.Context, guid string) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanSignalDelete,
		attribute.String(tracing.AttrSignalGUID, guid),
	)
	defer func() { tracing.Finish(span, err) }()

	if err := s.repo.Delete(ctx, guid); err != nil {
		return err
	}
	s.invalidate(ctx)
	log.Info(log.CatDB, "signal deleted", "guid", guid)
	s.broker.Publish(pubsub.DeletedEvent, SavedSignal{GUID: guid})
	return nil
}

// Count returns the number of saved signals.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.list.Invalidate(ctx); err != nil {
		log.Warn(log.CatCache, "saved list invalidate failed", "error", err)
	}
}
