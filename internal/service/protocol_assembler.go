package service

import (
	"fmt"

	"github.com/rif-protocol-server/internal/domain"
)

// Section headings of the plan checklists.
const (
	SectionPendingWorkup     = "Investigações pendentes"
	SectionTreatments        = "Tratamentos/Cirurgias necessários"
	SectionFemaleSupplements = "Suplementação pré-ciclo: mulher"
	SectionMaleSupplements   = "Suplementação pré-ciclo: homem"
	SectionEndometrialPrep   = "Protocolo de preparo endometrial"
	SectionTransferDay       = "Dia da transferência"
	SectionLutealSupport     = "Suporte de fase lútea"
	SectionPostTransferCare  = "Cuidados pós-transferência"
	SectionNegativeBeta      = "Se beta-hCG negativo"
	SectionPositiveBeta      = "Se beta-hCG positivo"
	SectionFollowUpReferrals = "Seguimento especializado"
)

// planInput is what every plan predicate may read.
type planInput struct {
	snapshot domain.EnrichedSnapshot
	findings domain.Findings
}

func (p planInput) anticoagulation() bool {
	return p.findings.HasCritical(domain.CodeThrombophilia) || p.findings.Has(domain.CodeAntiphospholipid)
}

func (p planInput) eraShift() int {
	if f, ok := p.findings.First(domain.CodeERADisplacedWindow); ok {
		return f.TimingShift
	}
	return 0
}

// planEntry contributes items to one phase section. A nil when marks a
// baseline entry.
type planEntry struct {
	section string
	when    func(planInput) bool
	items   func(planInput) []string
}

func baseline(section string, texts ...string) planEntry {
	return planEntry{section: section, items: func(planInput) []string { return texts }}
}

func conditional(section string, when func(planInput) bool, texts ...string) planEntry {
	return planEntry{section: section, when: when, items: func(planInput) []string { return texts }}
}

func interpolated(section string, when func(planInput) bool, items func(planInput) []string) planEntry {
	return planEntry{section: section, when: when, items: items}
}

// planCatalogue lists, per phase, the ordered entries evaluated against each
// snapshot. Predicates are evaluated independently in every phase.
var planCatalogue = map[domain.PhaseName][]planEntry{
	domain.PhasePreCycle: {
		conditional(SectionPendingWorkup, func(p planInput) bool { return !p.snapshot.Genetic.Karyotype.IsTested() },
			"Cariótipo do casal"),
		conditional(SectionPendingWorkup, func(p planInput) bool {
			return !p.snapshot.Genetic.PGTA.IsTested() && p.snapshot.Patient.Age >= 37
		}, "Considerar PGT-A nos próximos embriões"),
		conditional(SectionPendingWorkup, func(p planInput) bool { return !p.snapshot.Genetic.ThrombophiliaPanelTested() },
			"Painel completo de trombofilia"),
		conditional(SectionPendingWorkup, func(p planInput) bool { return !p.snapshot.Infectious.CD138Biopsy.IsTested() },
			"Biópsia endometrial com CD138 (endometrite crônica)"),
		conditional(SectionPendingWorkup, func(p planInput) bool { return !p.snapshot.Infectious.Hysteroscopy.IsTested() },
			"Histeroscopia diagnóstica"),
		conditional(SectionPendingWorkup, func(p planInput) bool {
			return !p.snapshot.Anatomic.ERA.IsTested() && p.snapshot.Patient.FailureCount >= 3
		}, "Considerar ERA Test (janela de implantação)"),
		conditional(SectionPendingWorkup, func(p planInput) bool { return !p.snapshot.Infectious.Ureaplasma.IsTested() },
			"Pesquisa Ureaplasma/Mycoplasma (casal)"),
		conditional(SectionPendingWorkup, func(p planInput) bool { return !p.snapshot.MaleFactor.DNAFragmentation.IsTested() },
			"Fragmentação de DNA espermático"),

		conditional(SectionTreatments, func(p planInput) bool { return p.findings.AnyCritical() },
			"Ver alertas críticos - tratamento obrigatório antes do ciclo"),
		conditional(SectionTreatments, func(p planInput) bool { return p.findings.Has(domain.CodeChronicEndometritis) },
			"Antibioticoterapia 14 dias: Doxiciclina 100mg 12/12h + Metronidazol 400mg 8/8h",
			"Probióticos vaginais (Lactobacillus) por 30 dias após os antibióticos",
			"Repetir histeroscopia + biópsia CD138 30-60 dias após o tratamento"),
		conditional(SectionTreatments, func(p planInput) bool { return p.findings.Has(domain.CodeGenitalInfection) },
			"Tratamento antimicrobiano do casal + teste de cura"),
		interpolated(SectionTreatments, func(p planInput) bool {
			return len(SurgicalProcedures(p.snapshot.Anatomic)) > 0
		}, func(p planInput) []string {
			var out []string
			for _, proc := range SurgicalProcedures(p.snapshot.Anatomic) {
				out = append(out, "Cirurgia pré-ciclo: "+proc)
			}
			return out
		}),
		conditional(SectionTreatments, func(p planInput) bool { return p.findings.Has(domain.CodeAntiphospholipid) },
			"Hidroxicloroquina 400mg/dia (iniciar 2-3 meses antes)"),
		conditional(SectionTreatments, func(p planInput) bool { return p.findings.Has(domain.CodeThyroidDysfunction) },
			"Levotiroxina: otimizar TSH <2.5 mUI/L antes da transferência"),
		conditional(SectionTreatments, func(p planInput) bool { return p.findings.Has(domain.CodeHyperprolactinemia) },
			"Cabergolina conforme controle de prolactina"),

		baseline(SectionFemaleSupplements,
			"Ácido fólico 5mg/dia (ou metilfolato se MTHFR+)",
			"Vitamina D 2000-4000 UI/dia (se <30 ng/mL)",
			"Ômega-3 (DHA) 1-2g/dia",
			"Multivitamínico pré-natal"),
		conditional(SectionFemaleSupplements, func(p planInput) bool {
			return p.snapshot.Patient.Age >= 35 || p.snapshot.Laboratory.AntioxidantOptIn
		},
			"CoQ10 200-600mg/dia",
			"Melatonina 3mg à noite",
			"Considerar DHEA 25-75mg/dia (avaliar com médico)"),
		interpolated(SectionFemaleSupplements, func(p planInput) bool {
			band, ok := VitaminDTable.ClassifyMeasured(p.snapshot.Laboratory.VitaminD)
			return ok && band != BandNormal
		}, func(p planInput) []string {
			return []string{fmt.Sprintf("Vitamina D: dose terapêutica até normalizar (atual: %s ng/mL)",
				formatValue(*p.snapshot.Laboratory.VitaminD))}
		}),
		conditional(SectionFemaleSupplements, func(p planInput) bool {
			band, ok := InsulinResistanceTable.ClassifyMeasured(p.snapshot.Derived.InsulinResistanceIndex)
			return ok && band == BandAbnormal
		},
			"Metformina 1500-2000mg/dia",
			"Myo-inositol 2g + D-chiro-inositol 50mg 2x/dia"),

		conditional(SectionMaleSupplements, func(p planInput) bool {
			return len(p.findings.InDomain(domain.DomainMaleFactor)) > 0
		},
			"Multivitamínico com antioxidantes",
			"Vitamina C 1000mg/dia",
			"Vitamina E 400 UI/dia",
			"Zinco 30mg/dia",
			"Selênio 200mcg/dia",
			"CoQ10 200mg/dia",
			"L-carnitina 2g/dia"),
	},

	domain.PhaseEndometrialPrep: {
		baseline(SectionEndometrialPrep,
			"Estradiol (dose ajustada para atingir endométrio ≥8mm)",
			"Monitoramento ultrassonográfico seriado",
			"Meta: Endométrio trilaminar ≥8-9mm"),
		conditional(SectionEndometrialPrep, func(p planInput) bool {
			band, ok := EndometrialThicknessTable.ClassifyMeasured(p.snapshot.Anatomic.EndometrialThicknessMM)
			return ok && band == BandAbnormal
		},
			"Protocolo endométrio fino: Estradiol oral dose alta (6-8mg/dia)",
			"Protocolo endométrio fino: Estradiol vaginal adicional 2mg 12/12h",
			"Protocolo endométrio fino: Vitamina E 800 UI/dia",
			"Protocolo endométrio fino: L-arginina 6g/dia",
			"Protocolo endométrio fino: Pentoxifilina 800mg/dia",
			"Protocolo endométrio fino: AAS 100mg/dia"),
		interpolated(SectionEndometrialPrep, func(p planInput) bool {
			band, ok := EndometrialThicknessTable.ClassifyMeasured(p.snapshot.Anatomic.EndometrialThicknessMM)
			return ok && band == BandBorderline
		}, func(p planInput) []string {
			return []string{fmt.Sprintf("Adicionar estradiol vaginal (endométrio atual: %smm)",
				formatValue(*p.snapshot.Anatomic.EndometrialThicknessMM))}
		}),
		conditional(SectionEndometrialPrep, planInput.anticoagulation,
			"AAS 100mg/dia (iniciar com preparo endometrial)"),
		conditional(SectionEndometrialPrep, func(p planInput) bool { return p.findings.Has(domain.CodeAdenomyosis) },
			"Considerar GnRH análogo 2-3 meses antes (Leuprolide)"),
	},

	domain.PhaseTransferDay: {
		conditional(SectionTransferDay, planInput.anticoagulation,
			"Iniciar Enoxaparina 40mg/dia SC (no dia da transferência)",
			"Manter AAS 100mg/dia"),
		conditional(SectionTransferDay, func(p planInput) bool {
			return p.findings.Has(domain.CodeAntiphospholipid) &&
				p.snapshot.Immunologic.LupusAnticoagulant == domain.ResultPositive
		}, "Hidroxicloroquina 400mg/dia (se não iniciado antes)"),
		conditional(SectionTransferDay, func(p planInput) bool {
			return p.findings.Has(domain.CodeElevatedNK) && p.snapshot.Patient.FailureCount >= 4
		},
			"Considerar Prednisona 5-10mg/dia (controverso - discutir riscos/benefícios)",
			"Ou Intralipid 20% 100mL IV antes da transferência (controverso)"),
		conditional(SectionTransferDay, func(p planInput) bool { return p.eraShift() > 0 },
			"Ajustar timing: Transferir 12-24h MAIS TARDE que o habitual (+12-24h)"),
		conditional(SectionTransferDay, func(p planInput) bool { return p.eraShift() < 0 },
			"Ajustar timing: Transferir 12-24h MAIS CEDO que o habitual (-12-24h)"),

		baseline(SectionLutealSupport,
			"Progesterona micronizada 600-800mg/dia (vaginal)",
			"OU Progesterona injetável 50-100mg/dia IM",
			"OU Combinação das vias",
			"Estradiol 2-6mg/dia (manter)"),
		interpolated(SectionLutealSupport, func(p planInput) bool {
			band, ok := ProgesteroneTable.ClassifyMeasured(p.snapshot.Laboratory.LutealProgesterone)
			return ok && band == BandAbnormal
		}, func(p planInput) []string {
			return []string{fmt.Sprintf("Aumentar dose de progesterona ou adicionar via adicional (atual: %s ng/mL)",
				formatValue(*p.snapshot.Laboratory.LutealProgesterone))}
		}),
	},

	domain.PhasePostTransfer: {
		baseline(SectionPostTransferCare,
			"Manter todas as medicações prescritas",
			"Beta-hCG em 10-12 dias",
			"Ultrassom em 5-6 semanas (se beta positivo)",
			"Repouso relativo primeiras 24-48h",
			"Evitar exercícios intensos por 2 semanas",
			"Evitar relações sexuais por 2 semanas"),
		conditional(SectionPostTransferCare, planInput.anticoagulation,
			"Manter anticoagulação até 12 semanas se gestação positiva",
			"Seguimento com hematologista/reumatologista"),
		conditional(SectionPostTransferCare, func(p planInput) bool { return p.findings.Has(domain.CodeThyroidDysfunction) },
			"Controle de TSH a cada 4 semanas (meta <2.5)",
			"Ajustar levotiroxina conforme necessário"),
	},

	domain.PhaseFollowUp: {
		baseline(SectionNegativeBeta,
			"Reavaliar protocolo com médico",
			"Considerar investigações adicionais não realizadas",
			"Ajustar estratégia para próximo ciclo"),
		baseline(SectionPositiveBeta,
			"Manter todas as medicações",
			"Ultrassom precoce (5-6 semanas)",
			"Seguimento pré-natal de alto risco",
			"Manter anticoagulação se indicada",
			"Screening de diabetes gestacional precoce",
			"Suplementação continuar até 12 semanas mínimo"),
		conditional(SectionFollowUpReferrals, func(p planInput) bool { return p.findings.Has(domain.CodeAntiphospholipid) },
			"Repetir sorologia para SAF após 12 semanas",
			"Encaminhar para reumatologista"),
	},
}

// AssemblePlan builds the five-phase plan for a snapshot and its findings.
// It has no side effects; equal inputs give equal plans.
func AssemblePlan(snapshot domain.EnrichedSnapshot, findings domain.Findings) domain.PhasedPlan {
	in := planInput{snapshot: snapshot, findings: findings}
	plan := domain.PhasedPlan{Phases: make([]domain.Phase, 0, len(domain.PlanPhases))}

	for _, name := range domain.PlanPhases {
		phase := domain.Phase{Name: name, Title: name.Title(), Items: []domain.ChecklistItem{}}
		for _, entry := range planCatalogue[name] {
			if entry.when != nil && !entry.when(in) {
				continue
			}
			for _, text := range entry.items(in) {
				phase.Items = append(phase.Items, domain.ChecklistItem{
					Section:  entry.section,
					Text:     text,
					Baseline: entry.when == nil,
				})
			}
		}
		plan.Phases = append(plan.Phases, phase)
	}

	return plan
}
