package mcp

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	litecfg "github.com/rif-protocol-server/internal/config"
	"github.com/rif-protocol-server/internal/domain"
	"github.com/rif-protocol-server/internal/export"
)

func createTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &litecfg.LiteConfig{DataDir: filepath.Join(t.TempDir(), "rif"), LogLevel: "info", LogFormat: "json"}
	server, err := NewServer(cfg, WithLogger(logger))
	require.NoError(t, err)
	server.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }
	t.Cleanup(func() { server.Close() })
	return server
}

func thrombophiliaCase() domain.InputSnapshot {
	return domain.InputSnapshot{
		Patient: domain.PatientInfo{Name: "Ana Lúcia Souza", Age: 38, FailureCount: 4, BMI: 23},
		Genetic: domain.GeneticInput{FactorV: domain.GenotypeHeterozygous},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer(t *testing.T) {
	server := createTestServer(t)

	assert.NotNil(t, server.mcpServer)
	assert.NotNil(t, server.Store())
	_, err := os.Stat(server.config.ExportDir())
	assert.NoError(t, err)
	_, err = os.Stat(server.config.CasesDBPath())
	assert.NoError(t, err)
}

func TestToolCatalogue(t *testing.T) {
	names := map[string]bool{}
	for _, tool := range toolCatalogue {
		assert.NotEmpty(t, tool.description)
		names[tool.name] = true
	}
	assert.Len(t, names, 4)
	assert.Empty(t, describe("unknown_tool"))
}

func TestHandleEvaluate(t *testing.T) {
	server := createTestServer(t)
	ctx := context.Background()

	result, out, err := server.handleEvaluate(ctx, nil, EvaluateInput{Case: thrombophiliaCase(), Format: "markdown"})
	require.NoError(t, err)

	assert.NotEmpty(t, out.CriticalAlerts)
	assert.Contains(t, out.Recommendations, "Anticoagulação profilática: Enoxaparina 40mg/dia + AAS 100mg/dia")
	assert.Contains(t, out.Recommendations, "PGT-A: Fortemente recomendado devido à idade materna ≥37 anos")
	assert.Len(t, out.Plan, 5)
	assert.True(t, out.Findings.Has(domain.CodeThrombophilia))

	text := resultText(t, result)
	assert.Contains(t, text, "Ana Lúcia Souza")
	assert.Contains(t, text, "- [ ] ")

	t.Run("invalid case", func(t *testing.T) {
		bad := thrombophiliaCase()
		bad.Patient.FailureCount = 1
		_, _, err := server.handleEvaluate(ctx, nil, EvaluateInput{Case: bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "patient.failure_count")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := server.handleEvaluate(ctx, nil, EvaluateInput{Case: thrombophiliaCase(), Format: "html"})
		assert.Error(t, err)
	})
}

func TestHandleExportAndLookup(t *testing.T) {
	server := createTestServer(t)
	ctx := context.Background()

	result, out, err := server.handleExport(ctx, nil, ExportInput{Case: thrombophiliaCase()})
	require.NoError(t, err)
	assert.Equal(t, "caso_rif_Ana_Lúcia_Souza_20240309.json", out.Filename)
	assert.Equal(t, filepath.Join(server.config.ExportDir(), out.Filename), out.Path)
	assert.Contains(t, resultText(t, result), out.CaseID)

	f, err := os.Open(out.Path)
	require.NoError(t, err)
	defer f.Close()
	record, err := export.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "Ana Lúcia Souza", record.Name)
	assert.Equal(t, 4, record.FailureCount)
	assert.Equal(t, "2024-03-09 14:05:07", record.EvaluatedAt)
	assert.NotEmpty(t, record.CriticalAlerts)

	t.Run("list", func(t *testing.T) {
		result, list, err := server.handleListCases(ctx, nil, ListInput{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), list.Total)
		require.Len(t, list.Cases, 1)
		assert.Equal(t, out.CaseID, list.Cases[0].ID)
		assert.Equal(t, "2024-03-09 14:05:07", list.Cases[0].EvaluatedAt)
		assert.Contains(t, resultText(t, result), "1 de 1 casos")
	})

	t.Run("list rejects negative offset", func(t *testing.T) {
		_, _, err := server.handleListCases(ctx, nil, ListInput{Offset: -1})
		assert.Error(t, err)
	})

	t.Run("get", func(t *testing.T) {
		result, got, err := server.handleGetCase(ctx, nil, GetInput{ID: out.CaseID})
		require.NoError(t, err)
		assert.Equal(t, thrombophiliaCase(), got.Case)
		assert.Equal(t, record.CriticalAlerts, got.Evaluation.CriticalAlerts)
		assert.Contains(t, resultText(t, result), "PROTOCOLO PASSO A PASSO")
	})

	t.Run("get unknown", func(t *testing.T) {
		_, _, err := server.handleGetCase(ctx, nil, GetInput{ID: "missing"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
