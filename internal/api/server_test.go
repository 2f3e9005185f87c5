package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rif-protocol-server/internal/casestore"
	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/export"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubConfig struct {
	cfg *domain.Config
}

func (s *stubConfig) GetConfig() *domain.Config                 { return s.cfg }
func (s *stubConfig) GetDatabaseConfig() *domain.DatabaseConfig { return &s.cfg.Database }
func (s *stubConfig) GetServerConfig() *domain.ServerConfig     { return &s.cfg.Server }
func (s *stubConfig) Reload() error                             { return nil }
func (s *stubConfig) Validate() error                           { return nil }
func (s *stubConfig) GetDatabaseConnectionString() string       { return "" }
func (s *stubConfig) IsProduction() bool                        { return false }
func (s *stubConfig) IsDevelopment() bool                       { return true }

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func newTestServer(t *testing.T, withStore bool, rl domain.RateLimitConfig, extra ...Option) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	opts := append([]Option{WithLogger(logger)}, extra...)
	if withStore {
		store, err := casestore.NewSQLiteStore(filepath.Join(t.TempDir(), "cases.db"))
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		opts = append(opts, WithStore(store))
	}

	cfg := &domain.Config{
		Server:    domain.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Logging:   domain.LoggingConfig{Level: "info"},
		RateLimit: rl,
	}
	server, err := NewServer(&stubConfig{cfg: cfg}, opts...)
	require.NoError(t, err)
	server.now = func() time.Time { return fixedNow }
	return server
}

const deficientCase = `{
	"patient": {"name": "Maria Silva", "age": 34, "failure_count": 3, "bmi": 22.5},
	"laboratory": {"vitamin_d": 15}
}`

func do(server *Server, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeAPIError(t *testing.T, rec *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	return apiErr
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(t, true, domain.RateLimitConfig{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "ok", body["store"])
	assert.NotEmpty(t, rec.Header().Get("X-Correlation-ID"))

	t.Run("failing dependency", func(t *testing.T) {
		down := WithHealthCheck("database", func(ctx context.Context) error {
			return errors.New("connection refused")
		})
		rec := do(newTestServer(t, true, domain.RateLimitConfig{}, down), http.MethodGet, "/health", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "degraded", body["status"])
		assert.Equal(t, "connection refused", body["database"])
		assert.Equal(t, "ok", body["store"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, false, domain.RateLimitConfig{})
	do(server, http.MethodPost, "/api/v1/evaluations", deficientCase)

	rec := do(server, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rif_evaluations_total")
	assert.Contains(t, rec.Body.String(), `path="/api/v1/evaluations"`)
}

func TestEvaluate(t *testing.T) {
	server := newTestServer(t, false, domain.RateLimitConfig{})

	t.Run("evaluation", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/evaluations", deficientCase)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp EvaluationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.CriticalAlerts, "Deficiência de vitamina D - Corrigir antes do ciclo")
		assert.Contains(t, resp.Recommendations, "Vitamina D baixa (15): Suplementar 4000-6000 UI/dia")
		assert.Len(t, resp.Plan.Phases, 5)
		assert.Empty(t, resp.Report)
	})

	t.Run("with report", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/evaluations?report=markdown", deficientCase)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp EvaluationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Report, "ALERTAS CRÍTICOS")
		assert.Contains(t, resp.Report, "Maria Silva")
	})

	t.Run("unknown report format", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/evaluations?report=pdf", deficientCase)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/evaluations", `{"patient":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, domain.ErrInvalidInput, decodeAPIError(t, rec).Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/evaluations",
			`{"patient": {"age": 12, "failure_count": 3, "bmi": 22}}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		apiErr := decodeAPIError(t, rec)
		assert.Equal(t, domain.ErrValidation, apiErr.Code)
		assert.Contains(t, apiErr.Details, "patient.age")
		assert.Equal(t, rec.Header().Get("X-Correlation-ID"), apiErr.RequestID)
	})
}

func TestEvaluateBatch(t *testing.T) {
	server := newTestServer(t, false, domain.RateLimitConfig{})
	normal := `{"patient": {"name": "Ana", "age": 30, "failure_count": 3, "bmi": 22}}`

	rec := do(server, http.MethodPost, "/api/v1/evaluations/batch",
		`{"cases": [`+deficientCase+`, `+normal+`]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	assert.NotEmpty(t, resp.Results[0].CriticalAlerts)
	assert.Empty(t, resp.Results[1].CriticalAlerts)

	t.Run("empty batch", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/evaluations/batch", `{"cases": []}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid case names its index", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/evaluations/batch",
			`{"cases": [`+normal+`, {"patient": {"age": 30, "failure_count": 1, "bmi": 22}}]}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeAPIError(t, rec).Details, "cases[1]")
	})
}

func TestCases(t *testing.T) {
	server := newTestServer(t, true, domain.RateLimitConfig{})

	rec := do(server, http.MethodPost, "/api/v1/cases", deficientCase)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CaseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Case.ID
	require.NotEmpty(t, id)
	assert.Equal(t, "/api/v1/cases/"+id, rec.Header().Get("Location"))
	assert.True(t, fixedNow.Equal(created.Case.EvaluatedAt))

	t.Run("get recomputes the plan", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/v1/cases/"+id, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var got CaseResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, created.Case.CriticalAlerts, got.Case.CriticalAlerts)
		assert.Equal(t, created.Evaluation.Plan, got.Evaluation.Plan)
	})

	t.Run("list", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/v1/cases?limit=5", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var list CaseListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Equal(t, int64(1), list.Total)
		assert.Equal(t, 5, list.Limit)
		require.Len(t, list.Cases, 1)
	})

	t.Run("list rejects bad paging", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(server, http.MethodGet, "/api/v1/cases?limit=0", "").Code)
		assert.Equal(t, http.StatusBadRequest, do(server, http.MethodGet, "/api/v1/cases?limit=abc", "").Code)
		assert.Equal(t, http.StatusBadRequest, do(server, http.MethodGet, "/api/v1/cases?offset=-1", "").Code)
	})

	t.Run("export download", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/v1/cases/"+id+"/export", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, `attachment; filename=caso_rif_Maria_Silva_20240309.json`, rec.Header().Get("Content-Disposition"))

		record, err := export.Decode(rec.Body)
		require.NoError(t, err)
		assert.Equal(t, "Maria Silva", record.Name)
		assert.Equal(t, "2024-03-09 14:05:07", record.EvaluatedAt)
		assert.Equal(t, created.Case.CriticalAlerts, record.CriticalAlerts)
	})

	t.Run("report", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/v1/cases/"+id+"/report?format=text", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "PROTOCOLO PASSO A PASSO")
	})

	t.Run("archive round trip skips existing", func(t *testing.T) {
		rec := do(server, http.MethodGet, "/api/v1/archive", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "rif_cases_20240309.json")

		rec = do(server, http.MethodPost, "/api/v1/archive", rec.Body.String())
		require.Equal(t, http.StatusOK, rec.Code)

		var resp ImportResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, ImportResponse{Imported: 0, Skipped: 1}, resp)
	})

	t.Run("archive rejects garbage", func(t *testing.T) {
		rec := do(server, http.MethodPost, "/api/v1/archive", "not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, do(server, http.MethodDelete, "/api/v1/cases/"+id, "").Code)

		rec := do(server, http.MethodGet, "/api/v1/cases/"+id, "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, domain.ErrCaseNotFound, decodeAPIError(t, rec).Code)

		assert.Equal(t, http.StatusNotFound, do(server, http.MethodDelete, "/api/v1/cases/"+id, "").Code)
	})
}

func TestCasesWithoutStore(t *testing.T) {
	server := newTestServer(t, false, domain.RateLimitConfig{})

	rec := do(server, http.MethodPost, "/api/v1/cases", deficientCase)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, domain.ErrDatabaseError, decodeAPIError(t, rec).Code)

	assert.Equal(t, http.StatusServiceUnavailable, do(server, http.MethodGet, "/api/v1/cases", "").Code)
}

func TestRateLimit(t *testing.T) {
	server := newTestServer(t, false, domain.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.1, Burst: 1, MaxClients: 10})

	assert.Equal(t, http.StatusOK, do(server, http.MethodGet, "/health", "").Code)

	rec := do(server, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, domain.ErrRateLimit, decodeAPIError(t, rec).Code)
}

func TestCaseBodyIsUTF8(t *testing.T) {
	server := newTestServer(t, true, domain.RateLimitConfig{})
	body := bytes.Replace([]byte(deficientCase), []byte("Maria Silva"), []byte("Conceição Araújo"), 1)

	rec := do(server, http.MethodPost, "/api/v1/cases", string(body))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Conceição Araújo")
}
