package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zjrosen/sigtrack/internal/signals"
)

const signalColumns = `id, guid, text, antidelay_seconds, created_at, timestamp`

type signalRepository struct {
	db *sql.DB
}

func newSignalRepository(db *sql.DB) *signalRepository {
	return &signalRepository{db: db}
}

var _ signals.Repository = (*signalRepository)(nil)

func scanSignal(scanner interface{ Scan(...any) error }) (*SignalModel, error) {
	var m SignalModel
	err := scanner.Scan(&m.ID, &m.GUID, &m.Text, &m.AntidelaySeconds, &m.CreatedAt, &m.Timestamp)
	return &m, err
}

// Save inserts a new row and sets s.ID.
func (r *signalRepository) Save(ctx context.Context, s *signals.SavedSignal) error {
	m := toSignalModel(s)
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO signals (guid, text, antidelay_seconds, created_at, timestamp) VALUES (?, ?, ?, ?, ?)`,
		m.GUID, m.Text, m.AntidelaySeconds, m.CreatedAt, m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	s.ID = id
	return nil
}

func (r *signalRepository) FindByGUID(ctx context.Context, guid string) (*signals.SavedSignal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+signalColumns+` FROM signals WHERE guid = ?`, guid)
	m, err := scanSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &signals.NotFoundError{GUID: guid}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find signal by guid: %w", err)
	}
	s := m.toDomain()
	return &s, nil
}

// List orders by id as well so signals saved within the same millisecond
// keep insertion order.
func (r *signalRepository) List(ctx context.Context, limit int) ([]signals.SavedSignal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	defer rows.Close()

	out := []signals.SavedSignal{}
	for rows.Next() {
		m, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		out = append(out, m.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate signals: %w", err)
	}
	return out, nil
}

func (r *signalRepository) Delete(ctx context.Context, guid string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM signals WHERE guid = ?`, guid)
	if err != nil {
		return fmt.Errorf("failed to delete signal: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return &signals.NotFoundError{GUID: guid}
	}
	return nil
}

func (r *signalRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signals`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count signals: %w", err)
	}
	return n, nil
}
