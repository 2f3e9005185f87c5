package service

import (
	"github.com/rif-protocol-server/internal/domain"
)

// EvaluateMaleFactor applies the sperm DNA fragmentation and semen analysis
// rules.
func EvaluateMaleFactor(in domain.MaleFactorInput) domain.Findings {
	var out domain.Findings

	if in.DNAFragmentation.Elevated() {
		label := "25-30% (limítrofe)"
		if in.DNAFragmentation == domain.DNAFragmentationAbove30 {
			label = ">30% (alto)"
		}
		out = append(out, criticalFinding(domain.DomainMaleFactor, domain.CodeSpermDNAFragmentation,
			"Fragmentação de DNA espermático "+label,
			"Fator masculino: Antioxidantes + técnicas de seleção espermática avançada",
			"Fragmentação DNA espermático elevada - Antioxidantes 3 meses"))
	}

	if in.SemenAnalysis.IsTested() && in.SemenAnalysis != domain.SemenNormal {
		out = append(out, warningFinding(domain.DomainMaleFactor, domain.CodeAbnormalSemenAnalysis,
			"Alteração espermática: "+in.SemenAnalysis.Label(),
			"Espermograma alterado: Avaliação urológica completa"))
	}

	return out
}
