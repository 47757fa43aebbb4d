package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/zjrosen/sigtrack/internal/log"
)

// Load reads the YAML config at path on top of Defaults and validates it.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Decode(v)
}

// Decode unmarshals an already-read viper instance on top of Defaults.
func Decode(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	// List elements decode into the existing defaults otherwise.
	if v.IsSet("broadcast.actions") {
		cfg.Broadcast.Actions = nil
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.DBPath = ExpandHome(cfg.DBPath)
	cfg.Tracing.FilePath = ExpandHome(cfg.Tracing.FilePath)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	log.Debug(log.CatConfig, "Config decoded", "file", v.ConfigFileUsed(), "actions", len(cfg.Broadcast.Actions))
	return cfg, nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
