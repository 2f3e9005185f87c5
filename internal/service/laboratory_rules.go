package service

import (
	"fmt"

	"github.com/rif-protocol-server/internal/domain"
)

// EvaluateLaboratory applies the hormonal, metabolic and inflammatory rules.
// BMI is read from the demographics and the insulin-resistance index from the
// derived metrics.
func EvaluateLaboratory(patient domain.PatientInfo, in domain.LaboratoryInput, derived domain.DerivedMetrics) domain.Findings {
	var out domain.Findings
	const d = domain.DomainLaboratory

	if patient.BMI > 0 {
		switch BMITable.Classify(patient.BMI) {
		case BandLow:
			out = append(out, warningFinding(d, domain.CodeBMIOutOfRange,
				fmt.Sprintf("IMC %.1f kg/m² (baixo peso)", patient.BMI),
				"IMC baixo: Orientação nutricional antes do ciclo (meta IMC 18.5-30)"))
		case BandHigh:
			out = append(out, warningFinding(d, domain.CodeBMIOutOfRange,
				fmt.Sprintf("IMC %.1f kg/m² (obesidade)", patient.BMI),
				"IMC elevado: Perda de peso antes do ciclo (meta IMC <30)"))
		}
	}

	if band, ok := VitaminDTable.ClassifyMeasured(in.VitaminD); ok {
		v := formatValue(*in.VitaminD)
		switch band {
		case BandAbnormal:
			out = append(out, criticalFinding(d, domain.CodeVitaminD,
				fmt.Sprintf("Deficiência de vitamina D: %s ng/mL", v),
				fmt.Sprintf("Vitamina D baixa (%s): Suplementar 4000-6000 UI/dia", v),
				"Deficiência de vitamina D - Corrigir antes do ciclo"))
		case BandBorderline:
			out = append(out, warningFinding(d, domain.CodeVitaminD,
				fmt.Sprintf("Vitamina D insuficiente: %s ng/mL", v),
				fmt.Sprintf("Vitamina D insuficiente (%s): Suplementar 2000-4000 UI/dia", v)))
		}
	}

	if band, ok := ProlactinTable.ClassifyMeasured(in.Prolactin); ok && band == BandAbnormal {
		out = append(out, criticalFinding(d, domain.CodeHyperprolactinemia,
			fmt.Sprintf("Hiperprolactinemia: %s ng/mL", formatValue(*in.Prolactin)),
			"Hiperprolactinemia: Cabergolina + investigação",
			"Hiperprolactinemia - Investigar e tratar antes do ciclo"))
	}

	if band, ok := ProgesteroneTable.ClassifyMeasured(in.LutealProgesterone); ok && band == BandAbnormal {
		out = append(out, warningFinding(d, domain.CodeLowProgesterone,
			fmt.Sprintf("Progesterona lútea baixa: %s ng/mL", formatValue(*in.LutealProgesterone)),
			"Suporte de progesterona: Considerar dose mais alta ou via adicional"))
	}

	if band, ok := InsulinResistanceTable.ClassifyMeasured(derived.InsulinResistanceIndex); ok {
		homa := *derived.InsulinResistanceIndex
		switch band {
		case BandAbnormal:
			out = append(out, criticalFinding(d, domain.CodeInsulinResistance,
				fmt.Sprintf("Resistência insulínica presente (HOMA-IR: %.2f)", homa),
				"Resistência insulínica: Metformina 1500-2000mg/dia + inositol",
				"Resistência insulínica - Metformina + modificação estilo de vida"))
		case BandBorderline:
			out = append(out, warningFinding(d, domain.CodeInsulinResistance,
				fmt.Sprintf("Resistência insulínica limítrofe (HOMA-IR: %.2f)", homa),
				"HOMA-IR limítrofe: Considerar metformina + inositol"))
		}
	}

	if band, ok := GlycemiaTable.ClassifyMeasured(in.FastingGlucose); ok {
		v := formatValue(*in.FastingGlucose)
		switch band {
		case BandAbnormal:
			out = append(out, criticalFinding(d, domain.CodeFastingGlycemia,
				fmt.Sprintf("Glicemia de jejum %s mg/dL compatível com diabetes", v),
				"Diabetes: Encaminhar para endocrinologista",
				"DIABETES - Controle glicêmico obrigatório antes do ciclo"))
		case BandBorderline:
			out = append(out, warningFinding(d, domain.CodeFastingGlycemia,
				fmt.Sprintf("Glicemia de jejum alterada: %s mg/dL (pré-diabetes)", v),
				"Glicemia de jejum alterada: Orientação dietética + reavaliar glicemia"))
		}
	}

	if band, ok := HbA1cTable.ClassifyMeasured(in.HbA1c); ok {
		v := formatValue(*in.HbA1c)
		switch band {
		case BandAbnormal:
			out = append(out, criticalFinding(d, domain.CodeHbA1c,
				fmt.Sprintf("HbA1c %s%% compatível com diabetes", v),
				"HbA1c elevada: Controle glicêmico com endocrinologista",
				"HbA1c compatível com diabetes - Controle glicêmico obrigatório antes do ciclo"))
		case BandBorderline:
			out = append(out, warningFinding(d, domain.CodeHbA1c,
				fmt.Sprintf("HbA1c %s%% (pré-diabetes)", v),
				"HbA1c limítrofe: Modificação do estilo de vida"))
		}
	}

	if band, ok := CRPTable.ClassifyMeasured(in.CRP); ok {
		v := formatValue(*in.CRP)
		switch band {
		case BandAbnormal:
			out = append(out, criticalFinding(d, domain.CodeCRP,
				fmt.Sprintf("PCR muito elevada: %s mg/L - processo inflamatório ativo", v),
				"PCR elevada: Investigar causas de inflamação",
				"PCR elevada - Investigar processo inflamatório antes do ciclo"))
		case BandBorderline:
			out = append(out, warningFinding(d, domain.CodeCRP,
				fmt.Sprintf("PCR elevada: %s mg/L", v),
				"PCR elevada: Investigar causas de inflamação"))
		}
	}

	if band, ok := HomocysteineTable.ClassifyMeasured(in.Homocysteine); ok && band == BandAbnormal {
		out = append(out, warningFinding(d, domain.CodeHyperhomocysteinemia,
			fmt.Sprintf("Homocisteína elevada: %s µmol/L", formatValue(*in.Homocysteine)),
			"Homocisteína elevada: Vitaminas B (folato, B12, B6)"))
	}

	// Opt-in OR age >= 37, each side reported under its own code.
	switch {
	case patient.Age >= 37:
		out = append(out, infoFinding(d, domain.CodeAntioxidantAge,
			fmt.Sprintf("Idade materna de %d anos", patient.Age),
			"Idade ≥37 anos: Protocolo antioxidante completo (CoQ10, melatonina, DHEA)"))
	case in.AntioxidantOptIn:
		out = append(out, infoFinding(d, domain.CodeAntioxidantRequested,
			"Suplementação antioxidante solicitada",
			"Protocolo antioxidante: CoQ10, melatonina e ômega-3 por 2-3 meses antes do ciclo"))
	}

	return out
}
