package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/sigtrack/internal/antidelay"
	"github.com/zjrosen/sigtrack/internal/app"
	"github.com/zjrosen/sigtrack/internal/broadcast"
	"github.com/zjrosen/sigtrack/internal/config"
	"github.com/zjrosen/sigtrack/internal/infrastructure/sqlite"
	"github.com/zjrosen/sigtrack/internal/log"
	"github.com/zjrosen/sigtrack/internal/signals"
	"github.com/zjrosen/sigtrack/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

const (
	localConfigPath = ".sigtrack/config.yaml"
	envDebug        = "SIGTRACK_DEBUG"
	envLog          = "SIGTRACK_LOG"
)

var (
	version     = "dev"
	cfgFile     string
	debugFlag   bool
	initialText string

	cfg     config.Config
	cfgPath string
)

var rootCmd = &cobra.Command{
	Use:   "sigtrack",
	Short: "Record signal text with undo/redo and backdated saves",
	Long: `A terminal UI for keeping a running signal log. Every edit is kept in an
undo/redo history. Save commits the text now; Save TS (hold the button or
press ctrl+t) asks how many seconds ago it happened and backdates the
saved timestamp by that much. Configured intents can be fired from the
same screen.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runApp,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .sigtrack/config.yaml, then ~/.config/sigtrack/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also enabled by "+envDebug+")")
	rootCmd.Flags().StringVarP(&initialText, "text", "t", "",
		"start with this text in the editor")
}

// setup initialises logging and loads the configuration for every command.
func setup(cmd *cobra.Command, _ []string) error {
	if debugFlag || os.Getenv(envDebug) != "" {
		logPath := os.Getenv(envLog)
		if logPath == "" {
			logPath = "debug.log"
		}
		cleanup, err := log.InitWithTeaLog(logPath, "sigtrack")
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		cobra.OnFinalize(cleanup)
		log.Info(log.CatConfig, "sigtrack starting", "command", cmd.Name(), "version", version)
	}

	home, _ := os.UserHomeDir()
	path, err := resolveConfigPath(cfgFile, home)
	if err != nil {
		return err
	}

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded
	cfgPath = path
	log.Info(log.CatConfig, "config loaded", "path", cfgPath, "db", cfg.DBPath)
	return nil
}

// resolveConfigPath picks the config file. Lookup order:
//  1. --config
//  2. .sigtrack/config.yaml (current directory)
//  3. ~/.config/sigtrack/config.yaml (user config)
//
// When neither 2 nor 3 exists the default config is written to 3, or to 2
// when the home directory is unknown.
func resolveConfigPath(flagPath, home string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".sigtrack")
	if home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "sigtrack"))
	}

	err := v.ReadInConfig()
	if err == nil {
		return v.ConfigFileUsed(), nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("reading config: %w", err)
	}

	defaultPath := localConfigPath
	if home != "" {
		defaultPath = filepath.Join(home, ".config", "sigtrack", "config.yaml")
	}
	if err := config.WriteDefaultConfig(defaultPath); err != nil {
		return "", err
	}
	return defaultPath, nil
}

// services bundles what the commands share. Close releases all of it.
type services struct {
	db       *sqlite.DB
	signals  *signals.Service
	tracer   *tracing.Provider
	dispatch *broadcast.PlatformDispatcher
}

func openServices() (*services, error) {
	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:      cfg.Tracing.Enabled,
		Exporter:     cfg.Tracing.Exporter,
		FilePath:     cfg.Tracing.FilePath,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	db, err := sqlite.NewDB(cfg.DBPath)
	if err != nil {
		_ = tp.Shutdown(context.Background())
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &services{
		db:      db,
		tracer:  tp,
		signals: signals.NewService(db.SignalRepository(), signals.WithTracer(tp.Tracer())),
		dispatch: broadcast.NewPlatformDispatcher(cfg.Broadcast,
			broadcast.WithTracer(tp.Tracer()),
			broadcast.WithRecorder(db.IntentLog()),
		),
	}, nil
}

func (s *services) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.tracer.Shutdown(ctx); err != nil {
		log.Warn(log.CatConfig, "tracing shutdown failed", "error", err)
	}
	return s.db.Close()
}

func runApp(_ *cobra.Command, _ []string) error {
	svc, err := openServices()
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	zone.NewGlobal()

	model := app.New(app.Options{
		Config:      cfg,
		ConfigPath:  cfgPath,
		Store:       svc.signals,
		Dispatcher:  svc.dispatch,
		Clock:       antidelay.RealClock{},
		InitialText: initialText,
		Watch:       true,
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
