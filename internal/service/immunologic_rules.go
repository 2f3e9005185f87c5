package service

import (
	"fmt"

	"github.com/rif-protocol-server/internal/domain"
)

// AntiphospholipidCriteria returns the laboratory criteria for
// antiphospholipid syndrome that the snapshot meets, in declared order.
func AntiphospholipidCriteria(in domain.ImmunologicInput) []string {
	checks := []struct {
		label string
		met   bool
	}{
		{"Anticardiolipina IgG >40", titerPositive(in.AnticardiolipinIgG)},
		{"Anticardiolipina IgM >40", titerPositive(in.AnticardiolipinIgM)},
		{"Anticoagulante lúpico positivo", in.LupusAnticoagulant == domain.ResultPositive},
		{"Anti-β2GP1 IgG >40", titerPositive(in.AntiB2GP1IgG)},
		{"Anti-β2GP1 IgM >40", titerPositive(in.AntiB2GP1IgM)},
	}
	var criteria []string
	for _, c := range checks {
		if c.met {
			criteria = append(criteria, c.label)
		}
	}
	return criteria
}

func titerPositive(v *float64) bool {
	band, ok := AntiphospholipidTiterTable.ClassifyMeasured(v)
	return ok && band == BandAbnormal
}

// EvaluateImmunologic applies the antiphospholipid, autoimmunity, NK-cell
// and thyroid rules.
func EvaluateImmunologic(in domain.ImmunologicInput) domain.Findings {
	var out domain.Findings

	if criteria := AntiphospholipidCriteria(in); len(criteria) > 0 {
		out = append(out, criticalFinding(domain.DomainImmunologic, domain.CodeAntiphospholipid,
			fmt.Sprintf("Critérios para SAF presentes (%d): %s", len(criteria), joinCriteria(criteria)),
			"Protocolo SAF: AAS + Enoxaparina + Hidroxicloroquina",
			"SÍNDROME ANTIFOSFOLÍPIDE - Anticoagulação + hidroxicloroquina"))
	}

	if in.ANA.Significant() || in.AntiDsDNA == domain.ResultPositive {
		var markers []string
		if in.ANA.Significant() {
			markers = append(markers, "FAN "+string(in.ANA))
		}
		if in.AntiDsDNA == domain.ResultPositive {
			markers = append(markers, "Anti-DNA positivo")
		}
		out = append(out, warningFinding(domain.DomainImmunologic, domain.CodeSystemicAutoimmunity,
			"Marcadores de autoimunidade: "+joinCriteria(markers),
			"Avaliação reumatológica - possível doença autoimune sistêmica"))
	}

	var nk []string
	if band, ok := PeripheralNKTable.ClassifyMeasured(in.PeripheralNKPercent); ok && band == BandAbnormal {
		nk = append(nk, fmt.Sprintf("NK periféricas %s%%", formatValue(*in.PeripheralNKPercent)))
	}
	if in.EndometrialNK == domain.EndometrialNKModerate || in.EndometrialNK == domain.EndometrialNKMarked {
		nk = append(nk, "NK endometriais "+in.EndometrialNK.Label())
	}
	if len(nk) > 0 {
		out = append(out, warningFinding(domain.DomainImmunologic, domain.CodeElevatedNK,
			"Células NK elevadas: "+joinCriteria(nk),
			"NK elevadas: Discutir prednisona (controverso) - Considerar apenas após múltiplas falhas"))
	}

	var thyroid []string
	if band, ok := TSHTable.ClassifyMeasured(in.TSH); ok {
		switch band {
		case BandHigh:
			thyroid = append(thyroid, fmt.Sprintf("TSH elevado: %s mUI/L", formatValue(*in.TSH)))
		case BandLow:
			thyroid = append(thyroid, fmt.Sprintf("TSH suprimido: %s mUI/L", formatValue(*in.TSH)))
		}
	}
	if in.AntiTPO == domain.AntiTPOPositive || in.AntiTPO == domain.AntiTPOMarked {
		thyroid = append(thyroid, "Anti-TPO positivo (tireoidite autoimune)")
	}
	if len(thyroid) > 0 {
		out = append(out, criticalFinding(domain.DomainImmunologic, domain.CodeThyroidDysfunction,
			"Disfunção tireoidiana: "+joinCriteria(thyroid),
			"Otimização tireoidiana: TSH alvo <2.5 mUI/L antes da transferência",
			"Disfunção tireoidiana - Otimizar antes do ciclo (TSH <2.5)"))
	}

	if in.AntiTg == domain.ResultPositive {
		out = append(out, infoFinding(domain.DomainImmunologic, domain.CodeAntiThyroglobulin,
			"Anti-tireoglobulina positivo",
			"Anti-Tg positivo: Monitorar função tireoidiana durante o tratamento"))
	}

	return out
}
