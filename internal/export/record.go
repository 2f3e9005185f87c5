// Package export produces the portable case record handed to external
// persistence: demographics, evaluation time, critical alerts and
// recommendations, serialized as UTF-8 JSON.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rif-protocol-server/internal/domain"
)

// TimestampLayout is the evaluation timestamp format of the record.
const TimestampLayout = "2006-01-02 15:04:05"

const filenameDateLayout = "20060102"

// Record is the exported case summary.
type Record struct {
	Name            string   `json:"nome"`
	Age             int      `json:"idade"`
	FailureCount    int      `json:"num_falhas"`
	BMI             float64  `json:"imc"`
	EvaluatedAt     string   `json:"data_avaliacao"`
	CriticalAlerts  []string `json:"alertas_criticos"`
	Recommendations []string `json:"recomendacoes"`

	at time.Time
}

// NewRecord builds the record for an evaluated snapshot at the given time.
func NewRecord(patient domain.PatientInfo, eval *domain.Evaluation, at time.Time) *Record {
	rec := &Record{
		Name:            patient.Name,
		Age:             patient.Age,
		FailureCount:    patient.FailureCount,
		BMI:             patient.BMI,
		EvaluatedAt:     at.Format(TimestampLayout),
		CriticalAlerts:  []string{},
		Recommendations: []string{},
		at:              at,
	}
	if eval != nil {
		rec.CriticalAlerts = append(rec.CriticalAlerts, eval.CriticalAlerts...)
		rec.Recommendations = append(rec.Recommendations, eval.Recommendations...)
	}
	return rec
}

// Time returns the evaluation time, parsing EvaluatedAt for decoded records.
func (r *Record) Time() time.Time {
	if !r.at.IsZero() {
		return r.at
	}
	t, err := time.ParseInLocation(TimestampLayout, r.EvaluatedAt, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Filename returns caso_rif_<name>_<YYYYMMDD>.json with spaces in the name
// replaced by underscores.
func (r *Record) Filename() string {
	return Filename(r.Name, r.Time())
}

var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// Filename builds the export filename for a patient name and date. Path
// separators are replaced like spaces so the result never leaves its
// directory.
func Filename(name string, at time.Time) string {
	return fmt.Sprintf("caso_rif_%s_%s.json", filenameReplacer.Replace(name), at.Format(filenameDateLayout))
}

// Encode writes the record as indented JSON. Non-ASCII text is written
// as-is.
func Encode(w io.Writer, rec *Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(rec)
}

// Marshal returns the encoded record.
func Marshal(rec *Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads a record written by Encode.
func Decode(r io.Reader) (*Record, error) {
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode export record: %w", err)
	}
	return &rec, nil
}

// WriteToDir writes the record into dir under its Filename and returns the
// full path. The directory is created if needed.
func WriteToDir(dir string, rec *Record) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	data, err := Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode export record: %w", err)
	}

	path := filepath.Join(dir, rec.Filename())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export record: %w", err)
	}
	return path, nil
}
