// Package logging builds the logrus loggers used by the servers and the CLI.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/domain"
)

// NewLogger creates a logger from configuration. The returned closer
// releases the log file when Output is "file" and is a no-op otherwise.
func NewLogger(cfg domain.LoggingConfig) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	logger.SetLevel(level)
	logger.SetFormatter(Formatter(cfg.Format))

	var closer io.Closer = nopCloser{}
	switch strings.ToLower(cfg.Output) {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	case "file":
		if cfg.Filename == "" {
			return nil, nil, fmt.Errorf("log filename is required when output is file")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(f)
		closer = f
	default:
		return nil, nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	return logger, closer, nil
}

// ParseLevel parses a level name; an empty name is info.
func ParseLevel(name string) (logrus.Level, error) {
	if name == "" {
		return logrus.InfoLevel, nil
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level: %s", name)
	}
	return level, nil
}

// Formatter returns the JSON formatter unless format is "text".
func Formatter(format string) logrus.Formatter {
	if strings.ToLower(format) == "text" {
		return &logrus.TextFormatter{FullTimestamp: true}
	}
	return &logrus.JSONFormatter{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
