package service

import (
	"github.com/rif-protocol-server/internal/domain"
)

// homaDivisor converts glucose in mg/dL and insulin in µU/mL to HOMA-IR.
const homaDivisor = 405.0

// InsulinResistanceIndex returns (glucose × insulin) / 405. The index is
// undefined, and nil is returned, unless both values were measured and are
// strictly positive.
func InsulinResistanceIndex(glucose, insulin *float64) *float64 {
	if glucose == nil || insulin == nil {
		return nil
	}
	if !(*glucose > 0) || !(*insulin > 0) {
		return nil
	}
	homa := (*glucose * *insulin) / homaDivisor
	return &homa
}

// Enrich computes the derived metrics of a snapshot.
func Enrich(snapshot domain.InputSnapshot) domain.EnrichedSnapshot {
	return domain.EnrichedSnapshot{
		InputSnapshot: snapshot,
		Derived: domain.DerivedMetrics{
			InsulinResistanceIndex: InsulinResistanceIndex(
				snapshot.Laboratory.FastingGlucose,
				snapshot.Laboratory.FastingInsulin,
			),
		},
	}
}
