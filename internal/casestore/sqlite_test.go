package casestore

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rif-protocol-server/internal/domain"
)

func testSnapshot(name string) domain.InputSnapshot {
	return domain.InputSnapshot{
		Patient: domain.PatientInfo{
			Name:          name,
			Age:           38,
			FailureCount:  4,
			BMI:           24.5,
			EmbryoType:    domain.EmbryoBlastocyst,
			EmbryoQuality: domain.QualityGood,
		},
		Genetic:    domain.GeneticInput{FactorV: domain.GenotypeHeterozygous},
		Laboratory: domain.LaboratoryInput{VitaminD: domain.Measured(18.5)},
	}
}

func testCase(name string) *CaseRecord {
	eval := &domain.Evaluation{
		CriticalAlerts:  []string{"TROMBOFILIA DETECTADA - Anticoagulação obrigatória"},
		Recommendations: []string{"Vitamina D baixa (18.5): Suplementar 4000-6000 UI/dia"},
	}
	return NewCaseRecord(testSnapshot(name), eval, time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC))
}

func TestNewSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "cases.db")

	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
	assert.Equal(t, dbPath, store.Path())
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	rec := testCase("Ana Lúcia Souza")
	require.NoError(t, store.Save(ctx, rec))
	assert.NotEmpty(t, rec.ID, "ID should be assigned")
	assert.False(t, rec.CreatedAt.IsZero(), "CreatedAt should be set")

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, rec.Snapshot, got.Snapshot)
	assert.Equal(t, rec.CriticalAlerts, got.CriticalAlerts)
	assert.Equal(t, rec.Recommendations, got.Recommendations)
	assert.True(t, rec.EvaluatedAt.Equal(got.EvaluatedAt))
	require.NotNil(t, got.Snapshot.Laboratory.VitaminD)
	assert.Equal(t, 18.5, *got.Snapshot.Laboratory.VitaminD)
	assert.Nil(t, got.Snapshot.Laboratory.CRP, "untested values stay untested")
}

func TestSQLiteStore_SaveReplaces(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	rec := testCase("Maria Silva")
	require.NoError(t, store.Save(ctx, rec))

	rec.CriticalAlerts = []string{}
	rec.Snapshot.Patient.Age = 39
	require.NoError(t, store.Save(ctx, rec))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := store.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CriticalAlerts)
	assert.Equal(t, 39, got.Snapshot.Patient.Age)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	store := createTestStore(t)

	got, err := store.Get(context.Background(), "missing")
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSQLiteStore_ListAndCount(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"A", "B", "C"} {
		rec := testCase(name)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(ctx, rec))
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	page, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "C", page[0].Snapshot.Patient.Name, "newest first")
	assert.Equal(t, "B", page[1].Snapshot.Patient.Name)

	rest, err := store.List(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "A", rest[0].Snapshot.Patient.Name)

	empty, err := store.List(ctx, 10, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	rec := testCase("Maria Silva")
	require.NoError(t, store.Save(ctx, rec))

	require.NoError(t, store.Delete(ctx, rec.ID))
	_, err := store.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, rec.ID), domain.ErrNotFound)
}

func TestSQLiteStore_ExportImport(t *testing.T) {
	src := createTestStore(t)
	ctx := context.Background()

	first := testCase("Ana Lúcia Souza")
	second := testCase("Maria Silva")
	require.NoError(t, src.Save(ctx, first))
	require.NoError(t, src.Save(ctx, second))

	var buf bytes.Buffer
	require.NoError(t, src.ExportJSON(ctx, &buf))
	assert.Contains(t, buf.String(), `"version": "1.0"`)
	assert.Contains(t, buf.String(), `"count": 2`)
	assert.Contains(t, buf.String(), "Ana Lúcia Souza", "non-ASCII text is kept")

	dst := createTestStore(t)
	require.NoError(t, dst.Save(ctx, &CaseRecord{ID: first.ID, Snapshot: testSnapshot("Existing")}))

	imported, skipped, err := dst.ImportJSON(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 1, skipped)

	kept, err := dst.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Existing", kept.Snapshot.Patient.Name, "Existing should not be overwritten")

	_, _, err = dst.ImportJSON(ctx, strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestCaseRecord_Export(t *testing.T) {
	rec := testCase("Ana Lúcia Souza")
	out := rec.Export()

	assert.Equal(t, "Ana Lúcia Souza", out.Name)
	assert.Equal(t, 38, out.Age)
	assert.Equal(t, 4, out.FailureCount)
	assert.Equal(t, "2024-03-09 14:05:07", out.EvaluatedAt)
	assert.Equal(t, rec.CriticalAlerts, out.CriticalAlerts)
	assert.Equal(t, "caso_rif_Ana_Lúcia_Souza_20240309.json", out.Filename())
}

func TestSQLiteStore_DriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS rif_cases")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	store, err := NewSQLiteStoreWithDB(db)
	require.NoError(t, err)

	ctx := context.Background()

	mock.ExpectExec("INSERT INTO rif_cases").WillReturnError(errors.New("disk I/O error"))
	err = store.Save(ctx, testCase("Maria Silva"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save case")

	mock.ExpectQuery("SELECT (.+) FROM rif_cases WHERE id = ?").
		WithArgs("abc").
		WillReturnError(errors.New("database is locked"))
	_, err = store.Get(ctx, "abc")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))

	mock.ExpectQuery("SELECT (.+) FROM rif_cases").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "snapshot", "critical_alerts", "recommendations", "evaluated_at", "created_at"}).
			AddRow("abc", "{broken", "[]", "[]", time.Now(), time.Now()))
	_, err = store.List(ctx, 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode snapshot of case abc")

	mock.ExpectExec("DELETE FROM rif_cases").
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.Delete(ctx, "abc"), domain.ErrNotFound)

	mock.ExpectClose()
	require.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_SchemaError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("read-only database"))
	_, err = NewSQLiteStoreWithDB(db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create schema")
}

// Helper function to create a test store
func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}
