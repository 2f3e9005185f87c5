package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rif-protocol-server/internal/domain"
)

func assemble(t *testing.T, s domain.InputSnapshot) domain.PhasedPlan {
	t.Helper()
	enriched := Enrich(s)
	findings, _, _ := Aggregate(NewRIFRuleEngine(testLogger()).EvaluateAll(enriched))
	return AssemblePlan(enriched, findings)
}

func TestAssemblePlanShape(t *testing.T) {
	plan := assemble(t, normalSnapshot())
	require.Len(t, plan.Phases, 5)
	for i, name := range domain.PlanPhases {
		assert.Equal(t, name, plan.Phases[i].Name)
		assert.Equal(t, name.Title(), plan.Phases[i].Title)
		assert.NotEmpty(t, plan.Phases[i].Items, "phase %s has baseline items", name)
	}
	assert.Empty(t, plan.ConditionalItems())
}

func TestAssemblePendingWorkup(t *testing.T) {
	s := untestedSnapshot()
	plan := assemble(t, s)

	pre, ok := plan.Phase(domain.PhasePreCycle)
	require.True(t, ok)
	var pending []string
	for _, it := range pre.Items {
		if it.Section == SectionPendingWorkup {
			pending = append(pending, it.Text)
		}
	}
	assert.Equal(t, []string{
		"Cariótipo do casal",
		"Painel completo de trombofilia",
		"Biópsia endometrial com CD138 (endometrite crônica)",
		"Histeroscopia diagnóstica",
		"Considerar ERA Test (janela de implantação)",
		"Pesquisa Ureaplasma/Mycoplasma (casal)",
		"Fragmentação de DNA espermático",
	}, pending)

	s.Patient.Age = 40
	assert.True(t, assemble(t, s).Contains(domain.PhasePreCycle, "Considerar PGT-A nos próximos embriões"))
}

func TestAssembleAnticoagulationAcrossPhases(t *testing.T) {
	s := normalSnapshot()
	s.Immunologic.AnticardiolipinIgG = domain.Measured(50)
	plan := assemble(t, s)

	assert.True(t, plan.Contains(domain.PhaseEndometrialPrep, "AAS 100mg/dia (iniciar com preparo endometrial)"))
	assert.True(t, plan.Contains(domain.PhaseTransferDay, "Iniciar Enoxaparina 40mg/dia SC (no dia da transferência)"))
	assert.True(t, plan.Contains(domain.PhasePostTransfer, "Manter anticoagulação até 12 semanas se gestação positiva"))
	assert.True(t, plan.Contains(domain.PhaseFollowUp, "Encaminhar para reumatologista"))
	assert.True(t, plan.Contains(domain.PhasePreCycle, "Hidroxicloroquina 400mg/dia (iniciar 2-3 meses antes)"))

	// Lupus anticoagulant negative: no transfer-day hydroxychloroquine.
	assert.False(t, plan.Contains(domain.PhaseTransferDay, "Hidroxicloroquina 400mg/dia (se não iniciado antes)"))

	s.Immunologic.LupusAnticoagulant = domain.ResultPositive
	assert.True(t, assemble(t, s).Contains(domain.PhaseTransferDay, "Hidroxicloroquina 400mg/dia (se não iniciado antes)"))
}

func TestAssembleNKNeedsFourFailures(t *testing.T) {
	s := normalSnapshot()
	s.Immunologic.PeripheralNKPercent = domain.Measured(22)
	prednisone := "Considerar Prednisona 5-10mg/dia (controverso - discutir riscos/benefícios)"

	assert.False(t, assemble(t, s).Contains(domain.PhaseTransferDay, prednisone))
	s.Patient.FailureCount = 4
	assert.True(t, assemble(t, s).Contains(domain.PhaseTransferDay, prednisone))
}

func TestAssembleInterpolatedValues(t *testing.T) {
	s := normalSnapshot()
	s.Laboratory.VitaminD = domain.Measured(22)
	s.Laboratory.LutealProgesterone = domain.Measured(7.5)
	s.Anatomic.EndometrialThicknessMM = domain.Measured(8)
	plan := assemble(t, s)

	assert.True(t, plan.Contains(domain.PhasePreCycle, "Vitamina D: dose terapêutica até normalizar (atual: 22 ng/mL)"))
	assert.True(t, plan.Contains(domain.PhaseTransferDay, "Aumentar dose de progesterona ou adicionar via adicional (atual: 7.5 ng/mL)"))
	assert.True(t, plan.Contains(domain.PhaseEndometrialPrep, "Adicionar estradiol vaginal (endométrio atual: 8mm)"))
	assert.False(t, plan.Contains(domain.PhaseEndometrialPrep, "Protocolo endométrio fino: AAS 100mg/dia"))
}

func TestAssembleSurgeryAndMaleBlocks(t *testing.T) {
	s := normalSnapshot()
	s.Anatomic.Findings = []domain.AnatomicalFinding{domain.UterineSeptum, domain.AdenomyosisFocal}
	s.MaleFactor.SemenAnalysis = domain.SemenTeratozoospermia
	plan := assemble(t, s)

	assert.True(t, plan.Contains(domain.PhasePreCycle, "Cirurgia pré-ciclo: Septoplastia histeroscópica"))
	assert.True(t, plan.Contains(domain.PhaseEndometrialPrep, "Considerar GnRH análogo 2-3 meses antes (Leuprolide)"))
	assert.True(t, plan.Contains(domain.PhasePreCycle, "L-carnitina 2g/dia"))
	assert.False(t, plan.Contains(domain.PhasePreCycle, "Ver alertas críticos - tratamento obrigatório antes do ciclo"))
}

func TestAssembleAntioxidantBlock(t *testing.T) {
	s := normalSnapshot()
	assert.False(t, assemble(t, s).Contains(domain.PhasePreCycle, "CoQ10 200-600mg/dia"))

	s.Patient.Age = 35
	assert.True(t, assemble(t, s).Contains(domain.PhasePreCycle, "CoQ10 200-600mg/dia"))

	s.Patient.Age = 30
	s.Laboratory.AntioxidantOptIn = true
	assert.True(t, assemble(t, s).Contains(domain.PhasePreCycle, "CoQ10 200-600mg/dia"))
}

func TestAssemblePlanIsIdempotent(t *testing.T) {
	s := normalSnapshot()
	s.Genetic.FactorV = domain.GenotypeHeterozygous
	enriched := Enrich(s)
	findings, _, _ := Aggregate(NewRIFRuleEngine(testLogger()).EvaluateAll(enriched))

	first := AssemblePlan(enriched, findings)
	second := AssemblePlan(enriched, findings)
	assert.Equal(t, first, second)
}
