package service

import (
	"github.com/rif-protocol-server/internal/domain"
)

// Aggregate flattens per-domain finding groups, already in domain order,
// into the recommendation and critical-alert sequences. Order is preserved;
// the only transformation is dropping a text identical to one already
// emitted in the same sequence.
func Aggregate(groups []domain.Findings) (findings domain.Findings, recommendations, criticalAlerts []string) {
	findings = domain.Findings{}
	recommendations = []string{}
	criticalAlerts = []string{}
	seenAdvice := make(map[string]bool)
	seenAlert := make(map[string]bool)

	for _, group := range groups {
		for _, f := range group {
			findings = append(findings, f)

			if f.Advice != "" && !seenAdvice[f.Advice] {
				seenAdvice[f.Advice] = true
				recommendations = append(recommendations, f.Advice)
			}

			if !f.IsCritical() {
				continue
			}
			alert := f.Alert
			if alert == "" {
				alert = f.Rationale
			}
			if !seenAlert[alert] {
				seenAlert[alert] = true
				criticalAlerts = append(criticalAlerts, alert)
			}
		}
	}

	return findings, recommendations, criticalAlerts
}
