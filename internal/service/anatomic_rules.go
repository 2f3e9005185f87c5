package service

import (
	"fmt"

	"github.com/rif-protocol-server/internal/domain"
)

// surgicalProcedures maps each finding that must be operated on before the
// next cycle to its procedure.
var surgicalProcedures = map[domain.AnatomicalFinding]string{
	domain.EndometrialPolyp:       "Polipectomia histeroscópica",
	domain.SubmucosalFibroid:      "Miomectomia histeroscópica",
	domain.IntramuralFibroidNear:  "Miomectomia laparoscópica/aberta",
	domain.UterineSeptum:          "Septoplastia histeroscópica",
	domain.AshermanSyndrome:       "Lise de sinéquias histeroscópica",
	domain.HydrosalpinxUnilateral: "Salpingectomia laparoscópica",
	domain.HydrosalpinxBilateral:  "Salpingectomia laparoscópica",
}

var findingLabels = map[domain.AnatomicalFinding]string{
	domain.EndometrialPolyp:       "Pólipo endometrial",
	domain.SubmucosalFibroid:      "Mioma submucoso (FIGO 0-1-2)",
	domain.IntramuralFibroidNear:  "Mioma intramural >4cm próximo ao endométrio",
	domain.UterineSeptum:          "Septo uterino",
	domain.AshermanSyndrome:       "Sinéquia uterina (Asherman)",
	domain.HydrosalpinxUnilateral: "Hidrossalpinge unilateral",
	domain.HydrosalpinxBilateral:  "Hidrossalpinge bilateral",
	domain.AdenomyosisFocal:       "Adenomiose focal",
	domain.AdenomyosisDiffuse:     "Adenomiose difusa",
	domain.OvarianEndometrioma:    "Endometrioma ovariano",
	domain.DeepEndometriosis:      "Endometriose profunda",
}

// SurgicalProcedures returns the procedures required by the selected
// findings, in canonical finding order. Both hydrosalpinx variants map to the
// same procedure, which is listed once.
func SurgicalProcedures(in domain.AnatomicInput) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range selectedFindings(in) {
		proc, ok := surgicalProcedures[f]
		if !ok || seen[proc] {
			continue
		}
		seen[proc] = true
		out = append(out, proc)
	}
	return out
}

// selectedFindings returns the selected findings in canonical order,
// dropping "none" and values outside the enumeration.
func selectedFindings(in domain.AnatomicInput) []domain.AnatomicalFinding {
	var out []domain.AnatomicalFinding
	for _, f := range domain.AnatomicalFindings {
		if f != domain.AnatomicalNone && in.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// EvaluateAnatomic applies the imaging, endometrial and ERA rules. Surgical
// findings come before medical ones.
func EvaluateAnatomic(in domain.AnatomicInput) domain.Findings {
	var out domain.Findings
	selected := selectedFindings(in)

	for _, f := range selected {
		proc, ok := surgicalProcedures[f]
		if !ok {
			continue
		}
		if f.IsHydrosalpinx() {
			out = append(out, criticalFinding(domain.DomainAnatomic, domain.CodeHydrosalpinx,
				findingLabels[f],
				"Cirurgia: "+proc,
				"HIDROSSALPINGE - Salpingectomia OBRIGATÓRIA antes do ciclo"))
			continue
		}
		out = append(out, warningFinding(domain.DomainAnatomic, domain.CodeSurgicalFinding,
			findingLabels[f], "Cirurgia: "+proc))
	}

	for _, f := range selected {
		switch {
		case f.IsAdenomyosis():
			out = append(out, warningFinding(domain.DomainAnatomic, domain.CodeAdenomyosis,
				findingLabels[f], "Tratamento: Análogo GnRH pré-tratamento"))
		case f.IsEndometriosis():
			out = append(out, warningFinding(domain.DomainAnatomic, domain.CodeEndometriosis,
				findingLabels[f], "Endometriose: Avaliar necessidade de tratamento antes da FIV"))
		}
	}

	if band, ok := EndometrialThicknessTable.ClassifyMeasured(in.EndometrialThicknessMM); ok {
		mm := formatValue(*in.EndometrialThicknessMM)
		switch band {
		case BandAbnormal:
			out = append(out, criticalFinding(domain.DomainAnatomic, domain.CodeEndometrialThickness,
				fmt.Sprintf("Endométrio fino: %smm (ideal ≥7mm)", mm),
				"Endométrio fino: Aumentar estradiol + suplementos vasodilatadores",
				"Endométrio fino - Protocolo de otimização necessário"))
		case BandBorderline:
			out = append(out, warningFinding(domain.DomainAnatomic, domain.CodeEndometrialThickness,
				fmt.Sprintf("Endométrio limítrofe: %smm (ideal ≥9mm)", mm),
				"Endométrio limítrofe: Adicionar estradiol vaginal"))
		}
	}

	if in.EndometrialPattern == domain.PatternIrregular {
		out = append(out, warningFinding(domain.DomainAnatomic, domain.CodeIrregularPattern,
			"Padrão endometrial irregular/heterogêneo",
			"Padrão endometrial irregular: Investigar pólipos, sinéquias ou endometrite"))
	}

	out = append(out, evaluateERA(in.ERA)...)

	return out
}

func evaluateERA(era domain.ERAResult) domain.Findings {
	switch era {
	case domain.ERAPreReceptive:
		f := criticalFinding(domain.DomainAnatomic, domain.CodeERADisplacedWindow,
			"Janela de implantação deslocada: pré-receptivo",
			"ERA Test: Ajustar timing da transferência (+12-24h)",
			"ERA: Janela pré-receptiva - Transferir 12-24h mais tarde")
		f.TimingShift = era.TransferShift()
		return domain.Findings{f}
	case domain.ERAPostReceptive:
		f := criticalFinding(domain.DomainAnatomic, domain.CodeERADisplacedWindow,
			"Janela de implantação deslocada: pós-receptivo",
			"ERA Test: Ajustar timing da transferência (-12-24h)",
			"ERA: Janela pós-receptiva - Transferir 12-24h mais cedo")
		f.TimingShift = era.TransferShift()
		return domain.Findings{f}
	case domain.ERAReceptive:
		// No action: the finding records the zero adjustment only.
		return domain.Findings{infoFinding(domain.DomainAnatomic, domain.CodeERAReceptive,
			"Janela de implantação normal - Manter protocolo atual", "")}
	default:
		return nil
	}
}
