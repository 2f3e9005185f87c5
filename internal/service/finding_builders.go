package service

import (
	"strconv"
	"strings"

	"github.com/rif-protocol-server/internal/domain"
)

func infoFinding(d domain.ClinicalDomain, code domain.FindingCode, rationale, advice string) domain.Finding {
	return domain.Finding{Domain: d, Code: code, Severity: domain.SeverityInfo, Rationale: rationale, Advice: advice}
}

func warningFinding(d domain.ClinicalDomain, code domain.FindingCode, rationale, advice string) domain.Finding {
	return domain.Finding{Domain: d, Code: code, Severity: domain.SeverityWarning, Rationale: rationale, Advice: advice}
}

// criticalFinding builds a mandatory-action finding. Every critical finding
// carries advice so its alert always has a matching recommendation.
func criticalFinding(d domain.ClinicalDomain, code domain.FindingCode, rationale, advice, alert string) domain.Finding {
	return domain.Finding{Domain: d, Code: code, Severity: domain.SeverityCritical, Rationale: rationale, Advice: advice, Alert: alert}
}

// formatValue renders a measurement the way it was entered: 15 stays "15",
// 6.5 stays "6.5".
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinCriteria(criteria []string) string {
	return strings.Join(criteria, ", ")
}

func zygosityLabel(g domain.Genotype) string {
	switch g {
	case domain.GenotypeHeterozygous:
		return "heterozigoto"
	case domain.GenotypeHomozygous:
		return "homozigoto"
	default:
		return string(g)
	}
}
