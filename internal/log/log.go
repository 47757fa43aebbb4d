// Package log provides structured file logging for sigtrack.
// Logging is off unless enabled via the --debug flag or SIGTRACK_DEBUG env,
// because the terminal itself is owned by the Bubble Tea program.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/sigtrack/internal/pubsub"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level, defaulting to LevelDebug.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelDebug
	}
}

// Category groups related log messages.
type Category string

const (
	CatHistory   Category = "history"   // Undo/redo buffer
	CatAntidelay Category = "antidelay" // Delayed-commit coordinator and press-and-hold
	CatDB        Category = "db"        // SQLite storage
	CatBroadcast Category = "broadcast" // Intent dispatch
	CatConfig    Category = "config"    // Configuration loading/saving
	CatWatcher   Category = "watcher"   // Config file watcher
	CatUI        Category = "ui"        // UI component updates
	CatAPI       Category = "api"       // HTTP automation surface
	CatCache     Category = "cache"     // Cache operations
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writer   io.Writer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the global logger writing to path.
// Returns a cleanup function to close the log file.
func Init(path string) (func(), error) {
	var initErr error
	once.Do(func() {
		defaultLogger, initErr = newLogger(path)
	})
	if initErr != nil {
		return nil, initErr
	}
	if defaultLogger == nil {
		return nil, fmt.Errorf("logger initialization failed or already attempted")
	}
	return func() {
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
		}
	}, nil
}

// InitWithTeaLog uses tea.LogToFile so that anything Bubble Tea itself
// logs lands in the same file.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}

	defaultLogger = &Logger{
		file:     f,
		writer:   f,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}

	return func() { _ = f.Close() }, nil
}

// InitWriter routes log output to w. Used by tests and the serve command.
func InitWriter(w io.Writer, minLevel Level) {
	defaultLogger = &Logger{
		writer:   w,
		enabled:  true,
		minLevel: minLevel,
		broker:   pubsub.NewBroker[string](),
	}
}

func newLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is user-controlled debug log path
	if err != nil {
		return nil, err
	}

	return &Logger{
		file:     f,
		writer:   f,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}, nil
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.enabled = enabled
		defaultLogger.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if defaultLogger != nil {
		defaultLogger.mu.Lock()
		defaultLogger.minLevel = level
		defaultLogger.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	write(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	write(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	write(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	write(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	write(LevelError, cat, msg, fields...)
}

// format renders one entry:
// 2026-10-19T10:45:00 [ERROR] [db] message key=value key2=value2
func format(now time.Time, level Level, cat Category, msg string, fields ...any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", now.Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')
	return b.String()
}

func write(level Level, cat Category, msg string, fields ...any) {
	l := defaultLogger
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	entry := format(time.Now(), level, cat, msg, fields...)
	if l.writer != nil {
		_, _ = io.WriteString(l.writer, entry)
	}
	if l.broker != nil {
		l.broker.Publish(pubsub.CreatedEvent, strings.TrimRight(entry, "\n"))
	}
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener creates a new log event listener, or nil when logging is off.
// The listener is cleaned up when ctx is cancelled.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil || defaultLogger.broker == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, defaultLogger.broker)
}
