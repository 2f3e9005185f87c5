package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/casestore"
	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/export"
	"github.com/rif-protocol-server/internal/metrics"
	"github.com/rif-protocol-server/internal/middleware"
	"github.com/rif-protocol-server/internal/report"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxBatchSize    = 100
)

// EvaluationResponse is the body of a successful evaluation.
type EvaluationResponse struct {
	*domain.Evaluation
	Report string `json:"report,omitempty"`
}

// BatchRequest is the body of POST /evaluations/batch.
type BatchRequest struct {
	Cases []domain.InputSnapshot `json:"cases"`
}

// BatchResponse keeps results in request order.
type BatchResponse struct {
	Results []*domain.Evaluation `json:"results"`
}

// CaseResponse is a stored case with its recomputed evaluation.
type CaseResponse struct {
	Case       *casestore.CaseRecord `json:"case"`
	Evaluation *domain.Evaluation    `json:"evaluation"`
}

// CaseListResponse is one page of stored cases.
type CaseListResponse struct {
	Cases  []*casestore.CaseRecord `json:"cases"`
	Total  int64                   `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// ImportResponse reports the outcome of an archive import.
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (s *Server) abort(c *gin.Context, status int, code, message, details string) {
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, c.GetString(middleware.CorrelationIDKey)))
}

// storeError maps case store failures to HTTP responses.
func (s *Server) storeError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.abort(c, http.StatusNotFound, domain.ErrCaseNotFound, "Case not found", err.Error())
	case errors.Is(err, casestore.ErrStoreUnavailable):
		s.abort(c, http.StatusServiceUnavailable, domain.ErrDatabaseError, "Case store unavailable", err.Error())
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"operation":      operation,
			"correlation_id": c.GetString(middleware.CorrelationIDKey),
		}).Error("Case store operation failed")
		s.abort(c, http.StatusInternalServerError, domain.ErrDatabaseError, "Case store operation failed", "")
	}
}

// requireStore aborts with 503 when no store is configured.
func (s *Server) requireStore(c *gin.Context) bool {
	if s.store == nil {
		s.abort(c, http.StatusServiceUnavailable, domain.ErrDatabaseError, "Case store not configured", "")
		return false
	}
	return true
}

// bindSnapshot decodes and validates the request body.
func (s *Server) bindSnapshot(c *gin.Context) (domain.InputSnapshot, bool) {
	var snapshot domain.InputSnapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Malformed case body", err.Error())
		return snapshot, false
	}
	if err := s.validator.Validate(snapshot); err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrValidation, "Case failed validation", err.Error())
		return snapshot, false
	}
	return snapshot, true
}

// reportFormat reads the optional ?report= query parameter.
func (s *Server) reportFormat(c *gin.Context) (report.Format, bool, bool) {
	raw, ok := c.GetQuery("report")
	if !ok {
		return "", false, true
	}
	format, err := report.ParseFormat(raw)
	if err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Unknown report format", err.Error())
		return "", false, false
	}
	return format, true, true
}

// handleEvaluate evaluates one snapshot without persisting it
func (s *Server) handleEvaluate(c *gin.Context) {
	snapshot, ok := s.bindSnapshot(c)
	if !ok {
		return
	}
	format, withReport, ok := s.reportFormat(c)
	if !ok {
		return
	}

	eval := s.evaluator.Evaluate(snapshot)
	metrics.RecordEvaluation("http", eval)

	resp := EvaluationResponse{Evaluation: eval}
	if withReport {
		resp.Report = report.String(snapshot.Patient, eval, format)
	}
	c.JSON(http.StatusOK, resp)
}

// handleEvaluateBatch evaluates independent snapshots concurrently
func (s *Server) handleEvaluateBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Malformed batch body", err.Error())
		return
	}
	if len(req.Cases) == 0 || len(req.Cases) > maxBatchSize {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput,
			"Invalid batch size", fmt.Sprintf("a batch holds 1 to %d cases, got %d", maxBatchSize, len(req.Cases)))
		return
	}
	for i, snapshot := range req.Cases {
		if err := s.validator.Validate(snapshot); err != nil {
			s.abort(c, http.StatusBadRequest, domain.ErrValidation,
				"Case failed validation", fmt.Sprintf("cases[%d]: %v", i, err))
			return
		}
	}

	results, err := s.evaluator.EvaluateBatch(c.Request.Context(), req.Cases, 0)
	if err != nil {
		s.abort(c, http.StatusServiceUnavailable, domain.ErrInternalServer, "Batch evaluation interrupted", err.Error())
		return
	}
	for _, eval := range results {
		metrics.RecordEvaluation("http", eval)
	}

	c.JSON(http.StatusOK, BatchResponse{Results: results})
}

// handleCreateCase evaluates a snapshot and persists the case
func (s *Server) handleCreateCase(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	snapshot, ok := s.bindSnapshot(c)
	if !ok {
		return
	}

	eval := s.evaluator.Evaluate(snapshot)
	metrics.RecordEvaluation("http", eval)

	rec := casestore.NewCaseRecord(snapshot, eval, s.now())
	if err := s.store.Save(c.Request.Context(), rec); err != nil {
		s.storeError(c, err, "save")
		return
	}
	metrics.RecordCaseSaved("http")

	s.logger.WithFields(logrus.Fields{
		"case_id":         rec.ID,
		"critical_alerts": len(rec.CriticalAlerts),
		"correlation_id":  c.GetString(middleware.CorrelationIDKey),
	}).Info("Case saved")

	c.Header("Location", "/api/v1/cases/"+rec.ID)
	c.JSON(http.StatusCreated, CaseResponse{Case: rec, Evaluation: eval})
}

// handleListCases lists stored cases, newest first
func (s *Server) handleListCases(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	limit, err := queryInt(c, "limit", defaultPageSize)
	if err != nil || limit <= 0 || limit > maxPageSize {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid limit", fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil || offset < 0 {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid offset", "offset must be a non-negative integer")
		return
	}

	ctx := c.Request.Context()
	cases, err := s.store.List(ctx, limit, offset)
	if err != nil {
		s.storeError(c, err, "list")
		return
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		s.storeError(c, err, "count")
		return
	}

	c.JSON(http.StatusOK, CaseListResponse{Cases: cases, Total: total, Limit: limit, Offset: offset})
}

// loadCase fetches the case named by the :id parameter.
func (s *Server) loadCase(c *gin.Context) (*casestore.CaseRecord, bool) {
	if !s.requireStore(c) {
		return nil, false
	}
	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.storeError(c, err, "get")
		return nil, false
	}
	return rec, true
}

// handleGetCase returns a stored case with its plan recomputed
func (s *Server) handleGetCase(c *gin.Context) {
	rec, ok := s.loadCase(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, CaseResponse{Case: rec, Evaluation: s.evaluator.Evaluate(rec.Snapshot)})
}

// handleExportCase downloads the export record of a stored case
func (s *Server) handleExportCase(c *gin.Context) {
	rec, ok := s.loadCase(c)
	if !ok {
		return
	}

	record := rec.Export()
	data, err := export.Marshal(record)
	if err != nil {
		s.abort(c, http.StatusInternalServerError, domain.ErrInternalServer, "Failed to encode export record", err.Error())
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": record.Filename()}))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// handleCaseReport renders the report of a stored case
func (s *Server) handleCaseReport(c *gin.Context) {
	format, err := report.ParseFormat(c.DefaultQuery("format", string(report.FormatMarkdown)))
	if err != nil {
		s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Unknown report format", err.Error())
		return
	}
	rec, ok := s.loadCase(c)
	if !ok {
		return
	}

	contentType := "text/markdown; charset=utf-8"
	if format == report.FormatText {
		contentType = "text/plain; charset=utf-8"
	}
	eval := s.evaluator.Evaluate(rec.Snapshot)
	c.Data(http.StatusOK, contentType, []byte(report.String(rec.Snapshot.Patient, eval, format)))
}

// handleDeleteCase removes a stored case
func (s *Server) handleDeleteCase(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}
	if err := s.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.storeError(c, err, "delete")
		return
	}
	c.Status(http.StatusNoContent)
}

// handleExportArchive streams every stored case as one JSON document
func (s *Server) handleExportArchive(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	var buf bytes.Buffer
	if err := s.store.ExportJSON(c.Request.Context(), &buf); err != nil {
		s.storeError(c, err, "export")
		return
	}

	name := fmt.Sprintf("rif_cases_%s.json", s.now().Format("20060102"))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, "application/json; charset=utf-8", buf.Bytes())
}

// handleImportArchive loads a document produced by handleExportArchive
func (s *Server) handleImportArchive(c *gin.Context) {
	if !s.requireStore(c) {
		return
	}

	imported, skipped, err := s.store.ImportJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		if errors.Is(err, casestore.ErrInvalidArchive) {
			s.abort(c, http.StatusBadRequest, domain.ErrInvalidInput, "Failed to import archive", err.Error())
			return
		}
		s.storeError(c, err, "import")
		return
	}

	s.logger.WithFields(logrus.Fields{
		"imported": imported,
		"skipped":  skipped,
	}).Info("Case archive imported")

	c.JSON(http.StatusOK, ImportResponse{Imported: imported, Skipped: skipped})
}

func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
