// Package config provides configuration types, defaults and validation for sigtrack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/templates"
)

// Config holds all configuration options for sigtrack.
type Config struct {
	DBPath    string          `mapstructure:"db_path"`
	Antidelay AntidelayConfig `mapstructure:"antidelay"`
	History   HistoryConfig   `mapstructure:"history"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	UI        UIConfig        `mapstructure:"ui"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Server    ServerConfig    `mapstructure:"server"`
}

// AntidelayConfig controls the delayed save prompt.
type AntidelayConfig struct {
	// LastSeconds is the delay pre-filled into the prompt. It is rewritten
	// after every delayed save so the value survives restarts.
	LastSeconds int `mapstructure:"last_seconds"`
	// LongPressMs is how long Save TS must be held to open the prompt.
	LongPressMs int `mapstructure:"long_press_ms"`
}

// LongPress returns LongPressMs as a duration.
func (a AntidelayConfig) LongPress() time.Duration {
	return time.Duration(a.LongPressMs) * time.Millisecond
}

// HistoryConfig bounds the undo/redo log.
type HistoryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// BroadcastAction is one named intent the UI can fire.
type BroadcastAction struct {
	Name   string `mapstructure:"name"`   // Button label, e.g. "Ring Off"
	Action string `mapstructure:"action"` // Intent action, e.g. "com.tasker.RING_OFF"
	URL    string `mapstructure:"url"`    // Fallback URL, derived from the action when empty
	Key    string `mapstructure:"key"`    // Optional key binding, e.g. "ctrl+o"
}

// BroadcastConfig configures the intent dispatcher.
type BroadcastConfig struct {
	Command   string            `mapstructure:"command"`    // Platform broadcast command (default "am")
	Opener    string            `mapstructure:"opener"`     // URL opener used for the fallback
	URLScheme string            `mapstructure:"url_scheme"` // Scheme for derived fallback URLs
	TimeoutMs int               `mapstructure:"timeout_ms"` // Per-command timeout
	Actions   []BroadcastAction `mapstructure:"actions"`
}

// Timeout returns TimeoutMs as a duration.
func (b BroadcastConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

// Find looks an action up by name (case-insensitive) or by action string.
func (b BroadcastConfig) Find(nameOrAction string) (BroadcastAction, bool) {
	for _, a := range b.Actions {
		if a.Action == nameOrAction || strings.EqualFold(a.Name, nameOrAction) {
			return a, true
		}
	}
	return BroadcastAction{}, false
}

// UIConfig holds user interface options.
type UIConfig struct {
	ShowHistory    bool `mapstructure:"show_history"`     // Show the snapshot log beside the input
	PressedFlashMs int  `mapstructure:"pressed_flash_ms"` // How long a button stays "pressed" after a save
	ToastSeconds   int  `mapstructure:"toast_seconds"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"` // none, file, stdout, otlp
	FilePath     string  `mapstructure:"file_path"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

// ServerConfig configures `sigtrack serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultDBPath returns ~/.sigtrack/signals.db, or a relative path when the
// home directory is unknown.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".sigtrack", "signals.db")
	}
	return filepath.Join(home, ".sigtrack", "signals.db")
}

// DefaultTracesFilePath returns ~/.config/sigtrack/traces/traces.jsonl or
// "" if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sigtrack", "traces", "traces.jsonl")
}

// DefaultActions returns the Tasker intents shipped by default.
func DefaultActions() []BroadcastAction {
	return []BroadcastAction{
		{Name: "Ring Off", Action: "com.tasker.RING_OFF", URL: "tasker://ringoff", Key: "ctrl+o"},
		{Name: "Screen Off", Action: "com.tasker.SCREEN_OFF", URL: "tasker://screenoff", Key: "ctrl+w"},
	}
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DBPath: DefaultDBPath(),
		Antidelay: AntidelayConfig{
			LastSeconds: 0,
			LongPressMs: 500,
		},
		History: HistoryConfig{
			MaxEntries: 1000,
		},
		Broadcast: BroadcastConfig{
			Command:   "am",
			Opener:    "termux-open-url",
			URLScheme: "tasker",
			TimeoutMs: 3000,
			Actions:   DefaultActions(),
		},
		UI: UIConfig{
			ShowHistory:    true,
			PressedFlashMs: 250,
			ToastSeconds:   3,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     "",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

// Validate checks the configuration for errors.
func Validate(cfg Config) error {
	if cfg.Antidelay.LastSeconds < 0 {
		return fmt.Errorf("antidelay.last_seconds must be >= 0, got %d", cfg.Antidelay.LastSeconds)
	}
	if cfg.Antidelay.LongPressMs < 0 {
		return fmt.Errorf("antidelay.long_press_ms must be >= 0, got %d", cfg.Antidelay.LongPressMs)
	}
	if cfg.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must be >= 0, got %d", cfg.History.MaxEntries)
	}
	if err := ValidateBroadcast(cfg.Broadcast); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateBroadcast checks broadcast actions for errors.
func ValidateBroadcast(b BroadcastConfig) error {
	if b.TimeoutMs < 0 {
		return fmt.Errorf("broadcast.timeout_ms must be >= 0, got %d", b.TimeoutMs)
	}
	seen := make(map[string]bool, len(b.Actions))
	for i, a := range b.Actions {
		if a.Name == "" {
			return fmt.Errorf("broadcast action %d: name is required", i)
		}
		if a.Action == "" {
			return fmt.Errorf("broadcast action %d (%s): action is required", i, a.Name)
		}
		if strings.ContainsAny(a.Action, " \t\n") {
			return fmt.Errorf("broadcast action %d (%s): action must not contain whitespace", i, a.Name)
		}
		if a.URL != "" && !strings.Contains(a.URL, "://") {
			return fmt.Errorf("broadcast action %d (%s): url %q has no scheme", i, a.Name, a.URL)
		}
		key := strings.ToLower(a.Name)
		if seen[key] {
			return fmt.Errorf("broadcast action %d: duplicate name %q", i, a.Name)
		}
		seen[key] = true
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return templates.DefaultConfig()
}

// WriteDefaultConfig creates a config file at configPath with default
// settings and comments, creating the parent directory if needed.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
