// Package testutil provides test utilities for database setup.
package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/sigtrack/internal/infrastructure/sqlite"
	"github.com/zjrosen/sigtrack/internal/signals"
)

// NewTestDB opens a migrated database in a temporary directory. It is
// closed when the test ends.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewDB(filepath.Join(t.TempDir(), "signals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewTestService returns a signals service over db with the list cache
// disabled, so every List reads the database.
func NewTestService(db *sqlite.DB, opts ...signals.Option) *signals.Service {
	opts = append([]signals.Option{signals.WithListTTL(0)}, opts...)
	return signals.NewService(db.SignalRepository(), opts...)
}

// FixedClock returns a clock function that always reports at.
func FixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
