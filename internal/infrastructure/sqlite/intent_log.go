package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/zjrosen/sigtrack/internal/broadcast"
)

// IntentLog stores broadcast attempts.
type IntentLog struct {
	db *sql.DB
}

var _ broadcast.Recorder = (*IntentLog)(nil)

// RecordIntent inserts a.
func (l *IntentLog) RecordIntent(ctx context.Context, a broadcast.Attempt) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO intent_log (action, path, success, sent_at) VALUES (?, ?, ?, ?)`,
		a.Action, string(a.Path), a.Success, a.At.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert intent: %w", err)
	}
	return nil
}

// Recent returns up to limit attempts, newest first. Err is not stored.
func (l *IntentLog) Recent(ctx context.Context, limit int) ([]broadcast.Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT action, path, success, sent_at FROM intent_log ORDER BY sent_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list intents: %w", err)
	}
	defer rows.Close()

	var out []broadcast.Attempt
	for rows.Next() {
		var (
			a      broadcast.Attempt
			path   string
			sentAt int64
		)
		if err := rows.Scan(&a.Action, &path, &a.Success, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to scan intent: %w", err)
		}
		a.Path = broadcast.Path(path)
		a.At = time.UnixMilli(sentAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
