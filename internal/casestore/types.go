// Package casestore persists evaluated RIF cases: the input snapshot together
// with the critical alerts and recommendations it produced. Plans are not
// stored; they are recomputed from the snapshot on demand.
package casestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/export"
)

// CaseRecord is one stored case.
type CaseRecord struct {
	ID              string               `json:"id"`
	Snapshot        domain.InputSnapshot `json:"snapshot"`
	CriticalAlerts  []string             `json:"critical_alerts"`
	Recommendations []string             `json:"recommendations"`
	EvaluatedAt     time.Time            `json:"evaluated_at"`
	CreatedAt       time.Time            `json:"created_at"`
}

// NewCaseRecord builds an unsaved record for an evaluated snapshot.
func NewCaseRecord(snapshot domain.InputSnapshot, eval *domain.Evaluation, at time.Time) *CaseRecord {
	rec := &CaseRecord{
		Snapshot:        snapshot,
		CriticalAlerts:  []string{},
		Recommendations: []string{},
		EvaluatedAt:     at,
	}
	if eval != nil {
		rec.CriticalAlerts = append(rec.CriticalAlerts, eval.CriticalAlerts...)
		rec.Recommendations = append(rec.Recommendations, eval.Recommendations...)
	}
	return rec
}

// Export returns the portable export record of the case.
func (c *CaseRecord) Export() *export.Record {
	return export.NewRecord(c.Snapshot.Patient, &domain.Evaluation{
		CriticalAlerts:  c.CriticalAlerts,
		Recommendations: c.Recommendations,
	}, c.EvaluatedAt)
}

// Store defines the case storage operations.
type Store interface {
	// Save inserts the case, assigning ID and CreatedAt when unset. Saving
	// an existing ID replaces the stored case.
	Save(ctx context.Context, rec *CaseRecord) error

	// Get returns the case with the given ID or an error wrapping
	// domain.ErrNotFound.
	Get(ctx context.Context, id string) (*CaseRecord, error)

	// List returns cases newest first.
	List(ctx context.Context, limit, offset int) ([]*CaseRecord, error)

	Count(ctx context.Context) (int64, error)

	// Delete removes a case; unknown IDs wrap domain.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// ExportJSON writes every case to writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON loads cases written by ExportJSON, skipping IDs that are
	// already stored.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)

	Close() error
}

// ErrInvalidArchive is returned by ImportJSON for input that is not a case
// export document.
var ErrInvalidArchive = errors.New("invalid case archive")

// CaseExport is the bulk JSON export format.
type CaseExport struct {
	Version    string        `json:"version"`
	ExportedAt time.Time     `json:"exported_at"`
	Count      int           `json:"count"`
	Cases      []*CaseRecord `json:"cases"`
}

const exportVersion = "1.0"

// maxExportLimit is the maximum number of cases exported at once.
const maxExportLimit = 1000000

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// caseColumns is the select list read by scanCase.
const caseColumns = `id, snapshot, critical_alerts, recommendations, evaluated_at, created_at`

func scanCase(s scanner) (*CaseRecord, error) {
	rec := &CaseRecord{}
	var snapshot, alerts, recs []byte

	if err := s.Scan(&rec.ID, &snapshot, &alerts, &recs, &rec.EvaluatedAt, &rec.CreatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(snapshot, &rec.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of case %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(alerts, &rec.CriticalAlerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts of case %s: %w", rec.ID, err)
	}
	if err := json.Unmarshal(recs, &rec.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations of case %s: %w", rec.ID, err)
	}
	return rec, nil
}

// encodedCase holds the JSON columns of a record.
type encodedCase struct {
	snapshot, alerts, recommendations []byte
}

func encodeCase(rec *CaseRecord) (encodedCase, error) {
	var enc encodedCase
	var err error

	if enc.snapshot, err = json.Marshal(rec.Snapshot); err != nil {
		return enc, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	alerts := rec.CriticalAlerts
	if alerts == nil {
		alerts = []string{}
	}
	if enc.alerts, err = json.Marshal(alerts); err != nil {
		return enc, fmt.Errorf("failed to encode alerts: %w", err)
	}
	recs := rec.Recommendations
	if recs == nil {
		recs = []string{}
	}
	if enc.recommendations, err = json.Marshal(recs); err != nil {
		return enc, fmt.Errorf("failed to encode recommendations: %w", err)
	}
	return enc, nil
}

// prepareForSave fills ID and CreatedAt.
func prepareForSave(rec *CaseRecord, now time.Time) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.EvaluatedAt.IsZero() {
		rec.EvaluatedAt = now
	}
}

func writeExport(writer io.Writer, all []*CaseRecord) error {
	if all == nil {
		all = []*CaseRecord{}
	}
	bundle := &CaseExport{
		Version:    exportVersion,
		ExportedAt: time.Now(),
		Count:      len(all),
		Cases:      all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(bundle)
}

// importCases implements ImportJSON on top of Get and Save.
func importCases(ctx context.Context, store Store, reader io.Reader) (imported int, skipped int, err error) {
	var bundle CaseExport
	if err := json.NewDecoder(reader).Decode(&bundle); err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}

	for _, rec := range bundle.Cases {
		if rec.ID != "" {
			_, err := store.Get(ctx, rec.ID)
			if err == nil {
				skipped++
				continue
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
			}
		}

		if err := store.Save(ctx, rec); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

func notFound(id string) error {
	return fmt.Errorf("case %s: %w", id, domain.ErrNotFound)
}
