package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sigtrack/internal/broadcast"
	"github.com/zjrosen/sigtrack/internal/infrastructure/sqlite"
	"github.com/zjrosen/sigtrack/internal/signals"
)

// Builder accumulates test data and inserts it in order.
type Builder struct {
	t       *testing.T
	db      *sqlite.DB
	signals []signalData
	intents []intentData
}

// NewBuilder creates a builder for the given test database.
func NewBuilder(t *testing.T, db *sqlite.DB) *Builder {
	t.Helper()
	return &Builder{t: t, db: db}
}

// WithSignal adds a saved signal with optional configuration.
func (b *Builder) WithSignal(guid string, opts ...SignalOption) *Builder {
	s := defaultSignal(guid)
	for _, opt := range opts {
		opt(&s)
	}
	b.signals = append(b.signals, s)
	return b
}

// WithIntent adds a successful platform broadcast of action unless opts
// say otherwise.
func (b *Builder) WithIntent(action string, opts ...IntentOption) *Builder {
	i := intentData{action: action, path: string(broadcast.PathPlatform), success: true}
	for _, opt := range opts {
		opt(&i)
	}
	if i.at.IsZero() {
		i.at = defaultSignal("").createdAt
	}
	b.intents = append(b.intents, i)
	return b
}

// Build inserts all accumulated data into the database.
func (b *Builder) Build() {
	b.t.Helper()
	ctx := context.Background()

	repo := b.db.SignalRepository()
	for _, s := range b.signals {
		sig, err := signals.NewSavedSignal(s.guid, s.text, s.antidelay, s.createdAt)
		require.NoError(b.t, err)
		require.NoError(b.t, repo.Save(ctx, sig))
	}

	log := b.db.IntentLog()
	for _, i := range b.intents {
		require.NoError(b.t, log.RecordIntent(ctx, broadcast.Attempt{
			Action:  i.action,
			Path:    broadcast.Path(i.path),
			Success: i.success,
			At:      i.at,
		}))
	}
}
