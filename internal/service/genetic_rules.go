package service

import (
	"fmt"

	"github.com/rif-protocol-server/internal/domain"
)

// EvaluateGenetic applies the genetic rules in their declared order.
func EvaluateGenetic(patient domain.PatientInfo, in domain.GeneticInput) domain.Findings {
	var out domain.Findings

	// Keyed on the absence of PGT-A: it recommends performing the test.
	if patient.Age >= 37 && !in.PGTA.IsTested() {
		out = append(out, warningFinding(domain.DomainGenetic, domain.CodePGTARecommended,
			fmt.Sprintf("Idade materna de %d anos sem PGT-A dos embriões", patient.Age),
			"PGT-A: Fortemente recomendado devido à idade materna ≥37 anos"))
	}

	switch in.PGTA {
	case domain.PGTAAllAneuploid, domain.PGTAMostlyAneuploid:
		out = append(out, criticalFinding(domain.DomainGenetic, domain.CodeHighAneuploidyRate,
			"PGT-A com todos ou a maioria dos embriões aneuploides",
			"PGT-A com alta taxa de aneuploidias: Investigar causas + considerar DHEA/CoQ10",
			"Alta taxa de aneuploidias - investigar causas e considerar uso de DHEA/CoQ10"))
	}

	if in.Karyotype == domain.KaryotypeAbnormal {
		out = append(out, warningFinding(domain.DomainGenetic, domain.CodeAbnormalKaryotype,
			"Cariótipo do casal alterado",
			"Cariótipo alterado: Aconselhamento genético + considerar PGT-SR"))
	}

	var mutations []string
	if in.FactorV.Carrier() {
		mutations = append(mutations, "Fator V Leiden "+zygosityLabel(in.FactorV))
	}
	if in.Prothrombin.Carrier() {
		mutations = append(mutations, "Protrombina G20210A "+zygosityLabel(in.Prothrombin))
	}
	if len(mutations) > 0 {
		out = append(out, criticalFinding(domain.DomainGenetic, domain.CodeThrombophilia,
			"Trombofilia hereditária: "+joinCriteria(mutations),
			"Anticoagulação profilática: Enoxaparina 40mg/dia + AAS 100mg/dia",
			"TROMBOFILIA DETECTADA - Anticoagulação obrigatória"))
	}

	if in.MTHFR == domain.GenotypeHomozygous {
		out = append(out, warningFinding(domain.DomainGenetic, domain.CodeMTHFRHomozygous,
			"MTHFR C677T homozigoto",
			"MTHFR homozigoto: Suplementar ácido fólico na forma de metilfolato"))
	}

	if in.PAI1 == domain.PAI14G4G {
		out = append(out, warningFinding(domain.DomainGenetic, domain.CodePAI1Homozygous4G,
			"PAI-1 4G/4G (hipofibrinólise)",
			"PAI-1 4G/4G: Discutir AAS 100mg/dia com hematologista"))
	}

	if in.HLASharedAlleles != nil && *in.HLASharedAlleles >= 2 {
		out = append(out, warningFinding(domain.DomainGenetic, domain.CodeHLAShared,
			fmt.Sprintf("%d alelos HLA-DQ compartilhados pelo casal", *in.HLASharedAlleles),
			"Considerar imunoterapia (controverso - discutir com especialista)"))
	}

	return out
}
