package service

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rif-protocol-server/internal/domain"
)

var _ domain.Evaluator = (*EvaluationService)(nil)

// EvaluationService runs the complete pipeline: derived metrics, domain
// evaluators, aggregation and plan assembly.
type EvaluationService struct {
	logger     *logrus.Logger
	ruleEngine *RIFRuleEngine
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(logger *logrus.Logger) *EvaluationService {
	return &EvaluationService{
		logger:     logger,
		ruleEngine: NewRIFRuleEngine(logger),
	}
}

// Evaluate recomputes everything from the snapshot. It never fails and
// keeps no state between calls.
func (s *EvaluationService) Evaluate(snapshot domain.InputSnapshot) *domain.Evaluation {
	enriched := Enrich(snapshot)

	findings, recommendations, alerts := Aggregate(s.ruleEngine.EvaluateAll(enriched))
	plan := AssemblePlan(enriched, findings)

	s.logger.WithFields(logrus.Fields{
		"finding_count":   len(findings),
		"recommendations": len(recommendations),
		"critical_alerts": len(alerts),
		"plan_items":      countPlanItems(plan),
	}).Debug("Completed RIF evaluation")

	return &domain.Evaluation{
		Findings:               findings,
		Recommendations:        recommendations,
		CriticalAlerts:         alerts,
		Plan:                   plan,
		InsulinResistanceIndex: enriched.Derived.InsulinResistanceIndex,
	}
}

// EvaluateBatch evaluates independent snapshots concurrently. Results keep
// the input order. workers <= 0 uses GOMAXPROCS.
func (s *EvaluationService) EvaluateBatch(ctx context.Context, snapshots []domain.InputSnapshot, workers int) ([]*domain.Evaluation, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*domain.Evaluation, len(snapshots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range snapshots {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = s.Evaluate(snapshots[i])
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch evaluation interrupted: %w", err)
	}

	s.logger.WithField("case_count", len(snapshots)).Info("Completed batch evaluation")
	return results, nil
}

func countPlanItems(plan domain.PhasedPlan) int {
	n := 0
	for _, ph := range plan.Phases {
		n += len(ph.Items)
	}
	return n
}
