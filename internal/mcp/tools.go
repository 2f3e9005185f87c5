package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/casestore"
	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/export"
	"github.com/rif-protocol-server/internal/metrics"
	"github.com/rif-protocol-server/internal/report"
)

const (
	toolEvaluate  = "evaluate_rif_case"
	toolExport    = "export_rif_case"
	toolListCases = "list_rif_cases"
	toolGetCase   = "get_rif_case"
)

var toolCatalogue = []struct {
	name        string
	description string
}{
	{toolEvaluate, "Evaluate a recurrent implantation failure case: findings, prioritized recommendations, critical alerts and the phased protocol for the next cycle"},
	{toolExport, "Evaluate a case, write its export record as JSON into the export directory and store it"},
	{toolListCases, "List stored cases, newest first"},
	{toolGetCase, "Fetch a stored case by ID and render its protocol"},
}

func describe(name string) string {
	for _, t := range toolCatalogue {
		if t.name == name {
			return t.description
		}
	}
	return ""
}

// EvaluateInput is the argument of evaluate_rif_case.
type EvaluateInput struct {
	Case   domain.InputSnapshot `json:"case" jsonschema:"the patient, laboratory and imaging data of one case"`
	Format string               `json:"format,omitempty" jsonschema:"report format: text (default) or markdown"`
}

// EvaluateOutput is the structured result of evaluate_rif_case.
type EvaluateOutput struct {
	Findings        domain.Findings               `json:"findings"`
	Recommendations []string                      `json:"recommendations"`
	CriticalAlerts  []string                      `json:"critical_alerts"`
	Plan            map[domain.PhaseName][]string `json:"plan"`
}

// ExportInput is the argument of export_rif_case.
type ExportInput struct {
	Case domain.InputSnapshot `json:"case" jsonschema:"the patient, laboratory and imaging data of one case"`
}

// ExportOutput names the written file and the stored case.
type ExportOutput struct {
	CaseID   string `json:"case_id"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// ListInput is the argument of list_rif_cases.
type ListInput struct {
	Limit  int `json:"limit,omitempty" jsonschema:"page size, default 20, at most 100"`
	Offset int `json:"offset,omitempty" jsonschema:"number of cases to skip"`
}

// CaseSummary is one line of list_rif_cases.
type CaseSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Age            int    `json:"age"`
	FailureCount   int    `json:"failure_count"`
	CriticalAlerts int    `json:"critical_alerts"`
	EvaluatedAt    string `json:"evaluated_at"`
}

// ListOutput is one page of stored cases.
type ListOutput struct {
	Cases []CaseSummary `json:"cases"`
	Total int64         `json:"total"`
}

// GetInput is the argument of get_rif_case.
type GetInput struct {
	ID     string `json:"id" jsonschema:"case ID returned by export_rif_case"`
	Format string `json:"format,omitempty" jsonschema:"report format: text (default) or markdown"`
}

// GetOutput is a stored case with its recomputed evaluation. Timestamps use
// the export record layout.
type GetOutput struct {
	ID          string               `json:"id"`
	Case        domain.InputSnapshot `json:"case"`
	EvaluatedAt string               `json:"evaluated_at"`
	CreatedAt   string               `json:"created_at"`
	Evaluation  EvaluateOutput       `json:"evaluation"`
}

// registerTools registers every tool with the MCP SDK.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{Name: toolEvaluate, Description: describe(toolEvaluate)}, s.handleEvaluate)
	mcp.AddTool(s.mcpServer, &mcp.Tool{Name: toolExport, Description: describe(toolExport)}, s.handleExport)
	mcp.AddTool(s.mcpServer, &mcp.Tool{Name: toolListCases, Description: describe(toolListCases)}, s.handleListCases)
	mcp.AddTool(s.mcpServer, &mcp.Tool{Name: toolGetCase, Description: describe(toolGetCase)}, s.handleGetCase)

	for _, t := range toolCatalogue {
		s.logger.WithField("tool_name", t.name).Debug("Registered MCP tool")
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toOutput(eval *domain.Evaluation) EvaluateOutput {
	contract := eval.Output()
	return EvaluateOutput{
		Findings:        eval.Findings,
		Recommendations: contract.Recommendations,
		CriticalAlerts:  contract.CriticalAlerts,
		Plan:            contract.Plan,
	}
}

// evaluate validates and evaluates one case.
func (s *Server) evaluate(tool string, snapshot domain.InputSnapshot) (*domain.Evaluation, error) {
	if err := s.validator.Validate(snapshot); err != nil {
		s.logger.WithError(err).WithField("tool", tool).Warn("Rejected invalid case")
		return nil, fmt.Errorf("invalid case: %w", err)
	}
	eval := s.evaluator.Evaluate(snapshot)
	metrics.RecordEvaluation("mcp", eval)
	return eval, nil
}

func (s *Server) handleEvaluate(ctx context.Context, req *mcp.CallToolRequest, in EvaluateInput) (*mcp.CallToolResult, EvaluateOutput, error) {
	s.logger.WithField("tool", toolEvaluate).Info("Tool invoked")

	format, err := report.ParseFormat(in.Format)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}
	eval, err := s.evaluate(toolEvaluate, in.Case)
	if err != nil {
		return nil, EvaluateOutput{}, err
	}

	return textResult(report.String(in.Case.Patient, eval, format)), toOutput(eval), nil
}

func (s *Server) handleExport(ctx context.Context, req *mcp.CallToolRequest, in ExportInput) (*mcp.CallToolResult, ExportOutput, error) {
	s.logger.WithField("tool", toolExport).Info("Tool invoked")

	eval, err := s.evaluate(toolExport, in.Case)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	rec := casestore.NewCaseRecord(in.Case, eval, s.now())
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, ExportOutput{}, fmt.Errorf("failed to store case: %w", err)
	}
	metrics.RecordCaseSaved("mcp")

	record := rec.Export()
	path, err := export.WriteToDir(s.config.ExportDir(), record)
	if err != nil {
		return nil, ExportOutput{}, fmt.Errorf("failed to write export record: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"case_id":         rec.ID,
		"path":            path,
		"critical_alerts": len(rec.CriticalAlerts),
	}).Info("Case exported")

	out := ExportOutput{CaseID: rec.ID, Path: path, Filename: record.Filename()}
	return textResult(fmt.Sprintf("✅ Caso exportado: %s\nID: %s", path, rec.ID)), out, nil
}

func (s *Server) handleListCases(ctx context.Context, req *mcp.CallToolRequest, in ListInput) (*mcp.CallToolResult, ListOutput, error) {
	s.logger.WithField("tool", toolListCases).Info("Tool invoked")

	limit := in.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if in.Offset < 0 {
		return nil, ListOutput{}, fmt.Errorf("offset must be non-negative, got %d", in.Offset)
	}

	cases, err := s.store.List(ctx, limit, in.Offset)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to list cases: %w", err)
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("failed to count cases: %w", err)
	}

	out := ListOutput{Cases: make([]CaseSummary, 0, len(cases)), Total: total}
	text := fmt.Sprintf("%d de %d casos\n", len(cases), total)
	for _, c := range cases {
		summary := CaseSummary{
			ID:             c.ID,
			Name:           c.Snapshot.Patient.Name,
			Age:            c.Snapshot.Patient.Age,
			FailureCount:   c.Snapshot.Patient.FailureCount,
			CriticalAlerts: len(c.CriticalAlerts),
			EvaluatedAt:    c.EvaluatedAt.Format(export.TimestampLayout),
		}
		out.Cases = append(out.Cases, summary)
		text += fmt.Sprintf("- %s | %s | %d anos | %d falhas | %d alertas críticos\n",
			summary.ID, summary.Name, summary.Age, summary.FailureCount, summary.CriticalAlerts)
	}

	return textResult(text), out, nil
}

func (s *Server) handleGetCase(ctx context.Context, req *mcp.CallToolRequest, in GetInput) (*mcp.CallToolResult, GetOutput, error) {
	s.logger.WithFields(logrus.Fields{"tool": toolGetCase, "case_id": in.ID}).Info("Tool invoked")

	format, err := report.ParseFormat(in.Format)
	if err != nil {
		return nil, GetOutput{}, err
	}
	rec, err := s.store.Get(ctx, in.ID)
	if err != nil {
		return nil, GetOutput{}, err
	}

	eval := s.evaluator.Evaluate(rec.Snapshot)
	out := GetOutput{
		ID:          rec.ID,
		Case:        rec.Snapshot,
		EvaluatedAt: rec.EvaluatedAt.Format(export.TimestampLayout),
		CreatedAt:   rec.CreatedAt.Format(export.TimestampLayout),
		Evaluation:  toOutput(eval),
	}
	return textResult(report.String(rec.Snapshot.Patient, eval, format)), out, nil
}
