// Package mcp exposes the RIF evaluator as MCP tools over stdio so agents can
// evaluate, export and look up cases.
package mcp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/casestore"
	litecfg "github.com/rif-protocol-server/internal/config"
	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/logging"
	"github.com/rif-protocol-server/internal/service"
)

const (
	serverName    = "rif-protocol-server"
	serverVersion = "v1.0.0"
)

// Server is the MCP tool server. Cases are persisted to a local SQLite
// store unless another store is supplied.
type Server struct {
	config    *litecfg.LiteConfig
	mcpServer *mcp.Server
	logger    *logrus.Logger

	evaluator *service.EvaluationService
	validator domain.SnapshotValidator
	store     casestore.Store

	now func() time.Time
}

// Option is a functional option for Server.
type Option func(*Server) error

// WithStore sets a custom case store.
func WithStore(store casestore.Store) Option {
	return func(s *Server) error {
		s.store = store
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// NewServer creates a new MCP server instance.
func NewServer(cfg *litecfg.LiteConfig, opts ...Option) (*Server, error) {
	server := &Server{
		config: cfg,
		logger: logrus.New(),
		now:    time.Now,
	}

	// stdout carries the protocol
	server.logger.SetOutput(os.Stderr)
	server.logger.SetFormatter(logging.Formatter(cfg.LogFormat))
	level, _ := logging.ParseLevel(cfg.LogLevel)
	server.logger.SetLevel(level)

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if server.store == nil {
		store, err := casestore.NewSQLiteStore(cfg.CasesDBPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create case store: %w", err)
		}
		server.store = store
	}

	server.evaluator = service.NewEvaluationService(server.logger)
	server.validator = service.NewSnapshotValidator()

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	server.registerTools()

	server.logger.WithFields(logrus.Fields{
		"data_dir":   cfg.DataDir,
		"tool_count": len(toolCatalogue),
	}).Info("MCP server initialized successfully")
	return server, nil
}

// Start serves MCP over stdio until ctx is cancelled or the client leaves.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting RIF MCP server on stdio")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close case store")
			return err
		}
	}
	return nil
}

// Store returns the case store for external access.
func (s *Server) Store() casestore.Store {
	return s.store
}
