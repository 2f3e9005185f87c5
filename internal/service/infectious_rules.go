package service

import (
	"strings"

	"github.com/rif-protocol-server/internal/domain"
)

// EvaluateInfectious applies the chronic endometritis and pathogen rules.
func EvaluateInfectious(in domain.InfectiousInput) domain.Findings {
	var out domain.Findings

	if in.CD138Biopsy.Positive() {
		out = append(out, criticalFinding(domain.DomainInfectious, domain.CodeChronicEndometritis,
			"Endometrite crônica confirmada por biópsia com CD138",
			"Antibioticoterapia completa + repetir biópsia antes de transferência",
			"ENDOMETRITE CRÔNICA - Tratamento obrigatório antes de novo ciclo"))
	} else if in.Hysteroscopy.SuggestsEndometritis() {
		out = append(out, warningFinding(domain.DomainInfectious, domain.CodeSuggestiveHysteroscopy,
			"Achados histeroscópicos sugestivos de endometrite",
			"Realizar biópsia endometrial com imuno-histoquímica CD138"))
	}

	var pathogens []string
	if in.Ureaplasma == domain.ResultPositive {
		pathogens = append(pathogens, "Ureaplasma")
	}
	if in.Mycoplasma == domain.ResultPositive {
		pathogens = append(pathogens, "Mycoplasma")
	}
	if in.Chlamydia == domain.ResultPositive {
		pathogens = append(pathogens, "Chlamydia")
	}
	if len(pathogens) > 0 {
		out = append(out, criticalFinding(domain.DomainInfectious, domain.CodeGenitalInfection,
			"Patógenos detectados: "+joinCriteria(pathogens),
			"Tratamento antimicrobiano completo + teste de cura",
			"Infecção detectada: "+joinCriteria(pathogens)+" - Tratar casal"))
	}

	if in.EndometrialCulture == domain.ResultPositive {
		advice := "Cultura endometrial positiva - Antibioticoterapia conforme antibiograma"
		if germ := strings.TrimSpace(in.CultureOrganism); germ != "" {
			advice = "Germe detectado: " + germ + " - Antibioticoterapia conforme antibiograma"
		}
		out = append(out, warningFinding(domain.DomainInfectious, domain.CodePositiveCulture,
			"Cultura endometrial positiva", advice))
	}

	if in.Microbiome == domain.MicrobiomeBelow50 {
		out = append(out, warningFinding(domain.DomainInfectious, domain.CodeEndometrialDysbiosis,
			"Disbiose endometrial (Lactobacillus <50%)",
			"Probióticos vaginais (Lactobacillus) por 30-60 dias"))
	}

	return out
}
