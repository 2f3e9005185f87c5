package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/rif-protocol-server/internal/api"
	"github.com/rif-protocol-server/internal/casestore"
	"github.com/rif-protocol-server/internal/config"
	"github.com/rif-protocol-server/internal/database"
	"github.com/rif-protocol-server/internal/logging"
)

func main() {
	configFile := flag.StringP("config", "c", "", "path to config.yaml (default: search ., ./config, /etc/rif-protocol/)")
	flag.Parse()

	configManager, err := config.NewManagerWithFile(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()

	logger, logCloser, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := casestore.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open case store")
	}
	var cases casestore.Store = casestore.NewResilientStore(store, casestore.BreakerConfig{}, logger)
	if cfg.Cache.Enabled {
		cached, err := casestore.NewCachedStore(ctx, cases, cfg.Cache, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect case cache")
		}
		logger.WithField("ttl", cfg.Cache.TTL).Info("Redis case cache enabled")
		cases = cached
	}
	defer cases.Close()

	opts := []api.Option{api.WithStore(cases), api.WithLogger(logger)}
	if cfg.Storage.Driver == casestore.DriverPostgres {
		pool, err := database.NewConnection(ctx, database.ConfigFromDomain(cfg.Database), logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open database health pool")
		}
		defer pool.Close()
		opts = append(opts, api.WithHealthCheck("database", pool.Health))
	}

	server, err := api.NewServer(configManager, opts...)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create server")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":    cfg.Server.Host,
		"port":    cfg.Server.Port,
		"storage": cfg.Storage.Driver,
	}).Info("Starting RIF protocol server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Error("Server stopped with error")
		return
	}

	logger.Info("Server stopped")
}
