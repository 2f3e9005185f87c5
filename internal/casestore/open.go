package casestore

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/database"
	"github.com/rif-protocol-server/internal/domain"
)

// Storage drivers accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open creates the store selected by cfg.Storage.Driver. For PostgreSQL the
// embedded migrations run first when cfg.Database.AutoMigrate is set.
func Open(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case DriverSQLite, "":
		store, err := NewSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite case store: %w", err)
		}
		logger.WithField("path", cfg.Storage.SQLitePath).Info("SQLite case store ready")
		return store, nil

	case DriverPostgres:
		dbURL := database.ConfigFromDomain(cfg.Database).URL()
		if cfg.Database.AutoMigrate {
			if err := migrate(ctx, dbURL, logger); err != nil {
				return nil, err
			}
		}
		store, err := NewPostgresStoreFromURL(dbURL, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres case store: %w", err)
		}
		logger.WithFields(logrus.Fields{
			"host":     cfg.Database.Host,
			"database": cfg.Database.Database,
		}).Info("PostgreSQL case store ready")
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func migrate(ctx context.Context, dbURL string, logger *logrus.Logger) error {
	runner, err := database.NewMigrationRunner(dbURL, logger)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	defer runner.Close()

	if err := runner.Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate case store: %w", err)
	}
	return nil
}
