// Package templates holds files shipped inside the binary.
package templates

import (
	_ "embed"
)

// defaultConfig is written to disk the first time sigtrack runs without a
// config file.
//
//go:embed config.yaml
var defaultConfig string

// DefaultConfig returns the commented default configuration.
func DefaultConfig() string {
	return defaultConfig
}
