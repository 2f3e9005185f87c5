package casestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite case store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	store, err := NewSQLiteStoreWithDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	store.dbPath = dbPath
	return store, nil
}

// NewSQLiteStoreWithDB wraps an open database handle and creates the schema.
func NewSQLiteStoreWithDB(db *sql.DB) (*SQLiteStore, error) {
	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS rif_cases (
		id TEXT PRIMARY KEY,
		patient_name TEXT NOT NULL DEFAULT '',
		age INTEGER NOT NULL,
		failure_count INTEGER NOT NULL,
		bmi REAL NOT NULL,
		snapshot TEXT NOT NULL,
		critical_alerts TEXT NOT NULL DEFAULT '[]',
		recommendations TEXT NOT NULL DEFAULT '[]',
		evaluated_at DATETIME NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_rif_cases_patient_name ON rif_cases(patient_name);
	CREATE INDEX IF NOT EXISTS idx_rif_cases_created_at ON rif_cases(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Path returns the database file, empty for stores built from a handle.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// Save inserts or replaces a case.
func (s *SQLiteStore) Save(ctx context.Context, rec *CaseRecord) error {
	prepareForSave(rec, time.Now())

	enc, err := encodeCase(rec)
	if err != nil {
		return err
	}

	p := rec.Snapshot.Patient
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO rif_cases (
			id, patient_name, age, failure_count, bmi,
			snapshot, critical_alerts, recommendations, evaluated_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			patient_name = excluded.patient_name,
			age = excluded.age,
			failure_count = excluded.failure_count,
			bmi = excluded.bmi,
			snapshot = excluded.snapshot,
			critical_alerts = excluded.critical_alerts,
			recommendations = excluded.recommendations,
			evaluated_at = excluded.evaluated_at
	`,
		rec.ID, p.Name, p.Age, p.FailureCount, p.BMI,
		string(enc.snapshot), string(enc.alerts), string(enc.recommendations),
		rec.EvaluatedAt, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}
	return nil
}

// Get retrieves a case by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*CaseRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM rif_cases WHERE id = ?`, id)

	rec, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// List returns cases with pagination, newest first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+caseColumns+`
		FROM rif_cases
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM rif_cases").Scan(&count)
	return count, err
}

// Delete removes a case by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rif_cases WHERE id = ?", id)
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
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}
	return writeExport(writer, all)
}

// ImportJSON imports cases from a JSON reader.
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	return importCases(ctx, s, reader)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
