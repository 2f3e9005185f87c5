// Package config provides configuration management for the RIF servers.
// This file contains the lightweight configuration used by the MCP server.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// LiteConfig is the env-only configuration for standalone operation.
// Cases are kept in a local SQLite file under DataDir.
type LiteConfig struct {
	DataDir string // Base directory for the case database and exports

	// Concurrency of batch evaluations; 0 uses GOMAXPROCS
	Workers int

	// Logging
	LogLevel  string // Log level: debug, info, warn, error
	LogFormat string // Log format: json, text
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()

	return &LiteConfig{
		DataDir:   filepath.Join(homeDir, ".rif-protocol"),
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// LoadLiteConfig loads configuration from environment variables.
// Falls back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("RIF_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("RIF_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("RIF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("RIF_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// CasesDBPath returns the path to the case SQLite database.
func (c *LiteConfig) CasesDBPath() string {
	return filepath.Join(c.DataDir, "rif_cases.db")
}

// ExportDir returns the directory for JSON exports.
func (c *LiteConfig) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.ExportDir(), 0755)
}
