// Package sqlite stores saved signals and the intent log in a local SQLite
// database, migrated on open.
package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/signals"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the connection pool.
type DB struct {
	conn *sql.DB
	path string
}

// NewDB opens (creating if needed) the database at path and applies
// pending migrations. An existing file is copied to path+".bak" first.
func NewDB(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := backup(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("backup database: %w", err)
		}
	}

	dsn := "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(wal)" +
		"&_pragma=foreign_keys(1)"
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := migrateUp(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatDB, "database ready", "path", path)
	return &DB{conn: conn, path: path}, nil
}

func migrateUp(conn *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	// m.Close would close conn through the driver.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func backup(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- path is the configured db path
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Connection returns the underlying pool.
func (db *DB) Connection() *sql.DB {
	return db.conn
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// SignalRepository returns a signals.Repository backed by this database.
func (db *DB) SignalRepository() signals.Repository {
	return newSignalRepository(db.conn)
}

// IntentLog returns the broadcast intent log backed by this database.
func (db *DB) IntentLog() *IntentLog {
	return &IntentLog{db: db.conn}
}
