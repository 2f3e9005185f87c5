package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rif-protocol-server/internal/domain"
)

func TestEvaluationScenarios(t *testing.T) {
	svc := NewEvaluationService(testLogger())

	t.Run("advanced age without PGT-A", func(t *testing.T) {
		s := normalSnapshot()
		s.Patient.Age = 38
		s.Genetic.PGTA = domain.PGTANotPerformed

		eval := svc.Evaluate(s)
		assert.Contains(t, eval.Recommendations, "PGT-A: Fortemente recomendado devido à idade materna ≥37 anos")
		assert.Empty(t, eval.CriticalAlerts)
	})

	t.Run("factor V Leiden heterozygous", func(t *testing.T) {
		s := normalSnapshot()
		s.Genetic.FactorV = domain.GenotypeHeterozygous

		eval := svc.Evaluate(s)
		assert.Contains(t, eval.CriticalAlerts, "TROMBOFILIA DETECTADA - Anticoagulação obrigatória")
		assert.True(t, eval.Plan.Contains(domain.PhaseTransferDay, "Iniciar Enoxaparina 40mg/dia SC (no dia da transferência)"))
	})

	t.Run("thin endometrium", func(t *testing.T) {
		s := normalSnapshot()
		s.Anatomic.EndometrialThicknessMM = domain.Measured(6.5)

		eval := svc.Evaluate(s)
		assert.Contains(t, eval.CriticalAlerts, "Endométrio fino - Protocolo de otimização necessário")
		prep, ok := eval.Plan.Phase(domain.PhaseEndometrialPrep)
		require.True(t, ok)
		thin := 0
		for _, text := range prep.Texts() {
			if strings.HasPrefix(text, "Protocolo endométrio fino: ") {
				thin++
			}
		}
		assert.Equal(t, 6, thin)
	})

	t.Run("insulin resistance", func(t *testing.T) {
		s := normalSnapshot()
		s.Laboratory.FastingGlucose = domain.Measured(120)
		s.Laboratory.FastingInsulin = domain.Measured(15)

		eval := svc.Evaluate(s)
		require.NotNil(t, eval.InsulinResistanceIndex)
		assert.InDelta(t, 4.44, *eval.InsulinResistanceIndex, 0.005)
		assert.Contains(t, eval.CriticalAlerts, "Resistência insulínica - Metformina + modificação estilo de vida")
		assert.True(t, eval.Plan.Contains(domain.PhasePreCycle, "Metformina 1500-2000mg/dia"))
		assert.True(t, eval.Plan.Contains(domain.PhasePreCycle, "Myo-inositol 2g + D-chiro-inositol 50mg 2x/dia"))
	})

	t.Run("pre-receptive ERA", func(t *testing.T) {
		s := normalSnapshot()
		s.Anatomic.ERA = domain.ERAPreReceptive

		eval := svc.Evaluate(s)
		assert.Contains(t, eval.CriticalAlerts, "ERA: Janela pré-receptiva - Transferir 12-24h mais tarde")
		assert.True(t, eval.Plan.Contains(domain.PhaseTransferDay, "Ajustar timing: Transferir 12-24h MAIS TARDE que o habitual (+12-24h)"))
		assert.False(t, eval.Plan.Contains(domain.PhaseTransferDay, "Ajustar timing: Transferir 12-24h MAIS CEDO que o habitual (-12-24h)"))
	})

	t.Run("normal work-up", func(t *testing.T) {
		eval := svc.Evaluate(normalSnapshot())
		assert.Empty(t, eval.Recommendations)
		assert.Empty(t, eval.CriticalAlerts)
		assert.Empty(t, eval.Plan.ConditionalItems())
	})

	t.Run("nothing tested", func(t *testing.T) {
		eval := svc.Evaluate(untestedSnapshot())
		assert.Empty(t, eval.Findings)
		assert.Empty(t, eval.Recommendations)
		assert.Empty(t, eval.CriticalAlerts)
		for _, it := range eval.Plan.ConditionalItems() {
			assert.Equal(t, SectionPendingWorkup, it.Section, "only missing work-up is suggested: %s", it.Text)
		}
	})
}

func TestEvaluateIsDeterministic(t *testing.T) {
	svc := NewEvaluationService(testLogger())
	s := normalSnapshot()
	s.Patient.Age = 39
	s.Genetic.FactorV = domain.GenotypeHeterozygous
	s.Immunologic.LupusAnticoagulant = domain.ResultPositive
	s.Anatomic.Findings = []domain.AnatomicalFinding{domain.HydrosalpinxBilateral, domain.EndometrialPolyp}
	s.Laboratory.VitaminD = domain.Measured(18)

	first, err := json.Marshal(svc.Evaluate(s).Output())
	require.NoError(t, err)
	for range 5 {
		again, err := json.Marshal(svc.Evaluate(s).Output())
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}

	if diff := cmp.Diff(svc.Evaluate(s), svc.Evaluate(s)); diff != "" {
		t.Errorf("evaluation changed between runs (-first +second):\n%s", diff)
	}
}

// severityOf returns 0 when the code is absent and Rank()+1 otherwise.
func severityOf(eval *domain.Evaluation, code domain.FindingCode) int {
	best := 0
	for _, f := range eval.Findings {
		if f.Code == code && f.Severity.Rank()+1 > best {
			best = f.Severity.Rank() + 1
		}
	}
	return best
}

func TestEvaluateIsMonotonic(t *testing.T) {
	svc := NewEvaluationService(testLogger())

	tests := []struct {
		name   string
		code   domain.FindingCode
		values []float64
		set    func(*domain.InputSnapshot, float64)
	}{
		{"vitamin D falling", domain.CodeVitaminD, []float64{45, 30, 29.9, 25, 20, 19.9, 10, 0},
			func(s *domain.InputSnapshot, v float64) { s.Laboratory.VitaminD = domain.Measured(v) }},
		{"insulin rising", domain.CodeInsulinResistance, []float64{5, 9, 9.6, 11, 12.6, 20, 40},
			func(s *domain.InputSnapshot, v float64) { s.Laboratory.FastingInsulin = domain.Measured(v) }},
		{"thickness falling", domain.CodeEndometrialThickness, []float64{12, 9, 8.9, 7.5, 7, 6.9, 4},
			func(s *domain.InputSnapshot, v float64) { s.Anatomic.EndometrialThicknessMM = domain.Measured(v) }},
		{"CRP rising", domain.CodeCRP, []float64{1, 3, 3.1, 10, 10.1, 30},
			func(s *domain.InputSnapshot, v float64) { s.Laboratory.CRP = domain.Measured(v) }},
		{"glycemia rising", domain.CodeFastingGlycemia, []float64{85, 99, 100, 125, 126, 180},
			func(s *domain.InputSnapshot, v float64) { s.Laboratory.FastingGlucose = domain.Measured(v) }},
		{"TSH rising", domain.CodeThyroidDysfunction, []float64{1.5, 2.5, 2.6, 5, 9},
			func(s *domain.InputSnapshot, v float64) { s.Immunologic.TSH = domain.Measured(v) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := 0
			for _, v := range tt.values {
				s := normalSnapshot()
				tt.set(&s, v)
				got := severityOf(svc.Evaluate(s), tt.code)
				assert.GreaterOrEqual(t, got, prev, "severity dropped at %v", v)
				prev = got
			}
			assert.Positive(t, prev, "worst value triggers the finding")
		})
	}
}

func TestEvaluateSuppression(t *testing.T) {
	svc := NewEvaluationService(testLogger())

	tests := []struct {
		name  string
		code  domain.FindingCode
		clear func(*domain.InputSnapshot)
	}{
		{"karyotype", domain.CodeAbnormalKaryotype, func(s *domain.InputSnapshot) { s.Genetic.Karyotype = domain.KaryotypeNotPerformed }},
		{"factor V", domain.CodeThrombophilia, func(s *domain.InputSnapshot) { s.Genetic.FactorV = domain.GenotypeNotTested }},
		{"CD138", domain.CodeChronicEndometritis, func(s *domain.InputSnapshot) { s.Infectious.CD138Biopsy = domain.CD138NotPerformed }},
		{"microbiome", domain.CodeEndometrialDysbiosis, func(s *domain.InputSnapshot) { s.Infectious.Microbiome = domain.MicrobiomeNotPerformed }},
		{"ERA", domain.CodeERADisplacedWindow, func(s *domain.InputSnapshot) { s.Anatomic.ERA = domain.ERANotPerformed }},
		{"vitamin D", domain.CodeVitaminD, func(s *domain.InputSnapshot) { s.Laboratory.VitaminD = nil }},
		{"insulin", domain.CodeInsulinResistance, func(s *domain.InputSnapshot) { s.Laboratory.FastingInsulin = nil }},
		{"DNA fragmentation", domain.CodeSpermDNAFragmentation, func(s *domain.InputSnapshot) {
			s.MaleFactor.DNAFragmentation = domain.DNAFragmentationNotPerformed
		}},
	}

	worst := normalSnapshot()
	worst.Genetic.Karyotype = domain.KaryotypeAbnormal
	worst.Genetic.FactorV = domain.GenotypeHomozygous
	worst.Infectious.CD138Biopsy = domain.CD138PositiveHigh
	worst.Infectious.Microbiome = domain.MicrobiomeBelow50
	worst.Anatomic.ERA = domain.ERAPostReceptive
	worst.Laboratory.VitaminD = domain.Measured(12)
	worst.Laboratory.FastingGlucose = domain.Measured(110)
	worst.Laboratory.FastingInsulin = domain.Measured(25)
	worst.MaleFactor.DNAFragmentation = domain.DNAFragmentationAbove30

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := worst
			require.Positive(t, severityOf(svc.Evaluate(s), tt.code))
			tt.clear(&s)
			assert.Zero(t, severityOf(svc.Evaluate(s), tt.code))
		})
	}
}

func TestEvaluateBatch(t *testing.T) {
	svc := NewEvaluationService(testLogger())

	snapshots := make([]domain.InputSnapshot, 0, 12)
	for i := range 12 {
		s := normalSnapshot()
		s.Patient.Age = 25 + i
		snapshots = append(snapshots, s)
	}

	results, err := svc.EvaluateBatch(context.Background(), snapshots, 4)
	require.NoError(t, err)
	require.Len(t, results, len(snapshots))
	for i, s := range snapshots {
		assert.Equal(t, svc.Evaluate(s).Output(), results[i].Output(), "result %d keeps input order", i)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.EvaluateBatch(ctx, snapshots, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRIFRuleEngine(t *testing.T) {
	engine := NewRIFRuleEngine(testLogger())
	assert.Equal(t, domain.EvaluationOrder, engine.Domains())

	s := normalSnapshot()
	s.MaleFactor.SemenAnalysis = domain.SemenAsthenozoospermia
	enriched := Enrich(s)

	groups := engine.EvaluateAll(enriched)
	require.Len(t, groups, len(domain.EvaluationOrder))

	male, err := engine.EvaluateDomain(domain.DomainMaleFactor, enriched)
	require.NoError(t, err)
	assert.Equal(t, groups[len(groups)-1], male)
	assert.Equal(t, []domain.FindingCode{domain.CodeAbnormalSemenAnalysis}, codes(male))

	_, err = engine.EvaluateDomain(domain.ClinicalDomain("psychological"), enriched)
	assert.ErrorIs(t, err, domain.ErrInvalidDomain)
}
