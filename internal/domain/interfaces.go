package domain

import (
	"context"
)

// Evaluator runs the full pipeline on one snapshot. Implementations are pure:
// the same snapshot always yields the same Evaluation.
type Evaluator interface {
	Evaluate(snapshot InputSnapshot) *Evaluation
	// EvaluateBatch keeps results in snapshot order.
	EvaluateBatch(ctx context.Context, snapshots []InputSnapshot, workers int) ([]*Evaluation, error)
}

// SnapshotValidator checks the input contract before a snapshot reaches the
// evaluator.
type SnapshotValidator interface {
	Validate(snapshot InputSnapshot) error
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetDatabaseConfig() *DatabaseConfig
	GetServerConfig() *ServerConfig
	Reload() error
	Validate() error
	GetDatabaseConnectionString() string
	IsProduction() bool
	IsDevelopment() bool
}
