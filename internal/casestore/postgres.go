package casestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL case store.
// It expects the schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL case store from a connection URL.
func NewPostgresStoreFromURL(databaseURL string, maxOpen, maxIdle int, maxLifetime time.Duration) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save upserts a case.
func (s *PostgresStore) Save(ctx context.Context, rec *CaseRecord) error {
	prepareForSave(rec, time.Now())

	enc, err := encodeCase(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO rif_cases (
			id, patient_name, age, failure_count, bmi,
			snapshot, critical_alerts, recommendations, evaluated_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			patient_name = EXCLUDED.patient_name,
			age = EXCLUDED.age,
			failure_count = EXCLUDED.failure_count,
			bmi = EXCLUDED.bmi,
			snapshot = EXCLUDED.snapshot,
			critical_alerts = EXCLUDED.critical_alerts,
			recommendations = EXCLUDED.recommendations,
			evaluated_at = EXCLUDED.evaluated_at
		RETURNING created_at
	`

	p := rec.Snapshot.Patient
	err = s.db.QueryRowContext(ctx, query,
		rec.ID, p.Name, p.Age, p.FailureCount, p.BMI,
		string(enc.snapshot), string(enc.alerts), string(enc.recommendations),
		rec.EvaluatedAt, rec.CreatedAt,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}
	return nil
}

// Get retrieves a case by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*CaseRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM rif_cases WHERE id = $1`, id)

	rec, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return rec, nil
}

// List returns cases with pagination, newest first.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*CaseRecord, error) {
	query := `
		SELECT ` + caseColumns + `
		FROM rif_cases
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	result := []*CaseRecord{}
	for rows.Next() {
		rec, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}

	return result, rows.Err()
}

// Count returns the total number of cases.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rif_cases").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count cases: %w", err)
	}
	return count, nil
}

// Delete removes a case by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rif_cases WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// ExportJSON exports all cases to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}
	return writeExport(writer, all)
}

// ImportJSON imports cases from a JSON reader.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	return importCases(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
