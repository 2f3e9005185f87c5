package service

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/domain"
)

// RIFRuleEngine runs the six domain evaluators in their fixed order.
type RIFRuleEngine struct {
	logger     *logrus.Logger
	evaluators []*DomainRule
}

// DomainRule binds a clinical domain to its evaluator. Each evaluator reads
// only its own domain input, plus demographics and derived metrics where
// the rules need them.
type DomainRule struct {
	Domain      domain.ClinicalDomain
	Description string
	Evaluate    func(snapshot domain.EnrichedSnapshot) domain.Findings
}

// NewRIFRuleEngine creates a rule engine with every domain registered
func NewRIFRuleEngine(logger *logrus.Logger) *RIFRuleEngine {
	engine := &RIFRuleEngine{
		logger: logger,
	}

	engine.initializeEvaluators()

	return engine
}

func (e *RIFRuleEngine) initializeEvaluators() {
	e.addEvaluator(domain.DomainGenetic, "Karyotype, PGT-A, hereditary thrombophilia and HLA",
		func(s domain.EnrichedSnapshot) domain.Findings { return EvaluateGenetic(s.Patient, s.Genetic) })
	e.addEvaluator(domain.DomainInfectious, "Chronic endometritis and genital pathogens",
		func(s domain.EnrichedSnapshot) domain.Findings { return EvaluateInfectious(s.Infectious) })
	e.addEvaluator(domain.DomainImmunologic, "Antiphospholipid criteria, autoimmunity, NK cells and thyroid",
		func(s domain.EnrichedSnapshot) domain.Findings { return EvaluateImmunologic(s.Immunologic) })
	e.addEvaluator(domain.DomainAnatomic, "Uterine and tubal findings, endometrium and ERA",
		func(s domain.EnrichedSnapshot) domain.Findings { return EvaluateAnatomic(s.Anatomic) })
	e.addEvaluator(domain.DomainLaboratory, "Hormonal, metabolic and inflammatory markers",
		func(s domain.EnrichedSnapshot) domain.Findings {
			return EvaluateLaboratory(s.Patient, s.Laboratory, s.Derived)
		})
	e.addEvaluator(domain.DomainMaleFactor, "Semen analysis and sperm DNA fragmentation",
		func(s domain.EnrichedSnapshot) domain.Findings { return EvaluateMaleFactor(s.MaleFactor) })

	e.logger.WithField("evaluator_count", len(e.evaluators)).Debug("Registered RIF domain evaluators")
}

// addEvaluator appends an evaluator; registration order is evaluation order.
func (e *RIFRuleEngine) addEvaluator(d domain.ClinicalDomain, description string, evaluate func(domain.EnrichedSnapshot) domain.Findings) {
	e.evaluators = append(e.evaluators, &DomainRule{
		Domain:      d,
		Description: description,
		Evaluate:    evaluate,
	})
}

// Domains returns the registered domains in evaluation order.
func (e *RIFRuleEngine) Domains() []domain.ClinicalDomain {
	out := make([]domain.ClinicalDomain, 0, len(e.evaluators))
	for _, ev := range e.evaluators {
		out = append(out, ev.Domain)
	}
	return out
}

// EvaluateAll returns one finding group per domain, in evaluation order.
func (e *RIFRuleEngine) EvaluateAll(snapshot domain.EnrichedSnapshot) []domain.Findings {
	groups := make([]domain.Findings, 0, len(e.evaluators))
	for _, ev := range e.evaluators {
		groups = append(groups, ev.Evaluate(snapshot))
	}
	return groups
}

// EvaluateDomain runs a single domain evaluator
func (e *RIFRuleEngine) EvaluateDomain(d domain.ClinicalDomain, snapshot domain.EnrichedSnapshot) (domain.Findings, error) {
	for _, ev := range e.evaluators {
		if ev.Domain == d {
			return ev.Evaluate(snapshot), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrInvalidDomain, d)
}
