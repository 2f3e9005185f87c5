// Package domain contains the core entities for evaluating patients with
// recurrent implantation failure (RIF): the input snapshot collected across
// six clinical domains, the findings derived from it, and the phased
// treatment plan assembled for the next cycle.
//
// RIF is defined here as failure to implant after three or more transfers of
// good-quality embryos, or after ten or more embryos across cycles.
package domain

import (
	"errors"
)

// Severity grades a finding. Critical findings are surfaced as mandatory
// alerts in addition to the advisory recommendation list.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// ClinicalDomain identifies one of the six evaluated areas. The declaration
// order below is the evaluation order.
type ClinicalDomain string

const (
	DomainGenetic     ClinicalDomain = "genetic"
	DomainInfectious  ClinicalDomain = "infectious"
	DomainImmunologic ClinicalDomain = "immunologic"
	DomainAnatomic    ClinicalDomain = "anatomic"
	DomainLaboratory  ClinicalDomain = "laboratory"
	DomainMaleFactor  ClinicalDomain = "male_factor"
)

// EvaluationOrder is the fixed domain order used by the rule engine and the
// aggregator.
var EvaluationOrder = []ClinicalDomain{
	DomainGenetic,
	DomainInfectious,
	DomainImmunologic,
	DomainAnatomic,
	DomainLaboratory,
	DomainMaleFactor,
}

// PhaseName identifies a phase of the treatment plan.
type PhaseName string

const (
	PhasePreCycle        PhaseName = "pre_cycle"
	PhaseEndometrialPrep PhaseName = "endometrial_prep"
	PhaseTransferDay     PhaseName = "transfer_day"
	PhasePostTransfer    PhaseName = "post_transfer"
	PhaseFollowUp        PhaseName = "follow_up"
)

// PlanPhases is the fixed phase order of every PhasedPlan.
var PlanPhases = []PhaseName{
	PhasePreCycle,
	PhaseEndometrialPrep,
	PhaseTransferDay,
	PhasePostTransfer,
	PhaseFollowUp,
}

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidSeverity = errors.New("invalid finding severity")
	ErrInvalidDomain   = errors.New("invalid clinical domain")
)

// IsValid reports whether the severity is one of the defined grades.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// Rank orders severities from least (0) to most severe (2). Unknown values
// rank as info.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 2
	case SeverityWarning:
		return 1
	default:
		return 0
	}
}

// RequiresAction reports whether findings of this severity are mandatory
// alerts.
func (s Severity) RequiresAction() bool {
	return s == SeverityCritical
}

// IsValid reports whether the domain is one of the six evaluated areas.
func (d ClinicalDomain) IsValid() bool {
	for _, known := range EvaluationOrder {
		if d == known {
			return true
		}
	}
	return false
}

// String returns the string representation of the domain.
func (d ClinicalDomain) String() string {
	return string(d)
}

// String returns the string representation of the phase.
func (p PhaseName) String() string {
	return string(p)
}

// Title returns the section heading used when the phase is rendered.
func (p PhaseName) Title() string {
	switch p {
	case PhasePreCycle:
		return "FASE 1: PRÉ-CICLO (2-3 meses antes)"
	case PhaseEndometrialPrep:
		return "FASE 2: PREPARO ENDOMETRIAL"
	case PhaseTransferDay:
		return "FASE 3: TRANSFERÊNCIA EMBRIONÁRIA"
	case PhasePostTransfer:
		return "FASE 4: PÓS-TRANSFERÊNCIA"
	case PhaseFollowUp:
		return "FASE 5: SEGUIMENTO E PRÓXIMOS PASSOS"
	default:
		return string(p)
	}
}
