package domain

// DerivedMetrics holds quantities computed from raw measurements before the
// rules run.
type DerivedMetrics struct {
	// InsulinResistanceIndex is HOMA-IR; nil when undefined.
	InsulinResistanceIndex *float64 `json:"insulin_resistance_index,omitempty"`
}

// EnrichedSnapshot is an InputSnapshot together with its derived metrics.
type EnrichedSnapshot struct {
	InputSnapshot
	Derived DerivedMetrics `json:"derived"`
}

// ChecklistItem is one line of a plan phase.
type ChecklistItem struct {
	// Section is the sub-heading the item is listed under.
	Section string `json:"section"`
	Text    string `json:"text"`
	// Baseline marks items included regardless of the findings.
	Baseline bool `json:"baseline,omitempty"`
}

// Phase is one step of the treatment plan.
type Phase struct {
	Name  PhaseName       `json:"name"`
	Title string          `json:"title"`
	Items []ChecklistItem `json:"items"`
}

// Texts returns the checklist strings of the phase in order.
func (p Phase) Texts() []string {
	out := make([]string, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, it.Text)
	}
	return out
}

// PhasedPlan always holds the five phases in PlanPhases order.
type PhasedPlan struct {
	Phases []Phase `json:"phases"`
}

// Phase returns the named phase.
func (p PhasedPlan) Phase(name PhaseName) (Phase, bool) {
	for _, ph := range p.Phases {
		if ph.Name == name {
			return ph, true
		}
	}
	return Phase{}, false
}

// Contains reports whether the named phase has an item with exactly the
// given text.
func (p PhasedPlan) Contains(name PhaseName, text string) bool {
	ph, ok := p.Phase(name)
	if !ok {
		return false
	}
	for _, it := range ph.Items {
		if it.Text == text {
			return true
		}
	}
	return false
}

// ConditionalItems returns the non-baseline items of every phase.
func (p PhasedPlan) ConditionalItems() []ChecklistItem {
	var out []ChecklistItem
	for _, ph := range p.Phases {
		for _, it := range ph.Items {
			if !it.Baseline {
				out = append(out, it)
			}
		}
	}
	return out
}

// Evaluation is the complete result of one pipeline run.
type Evaluation struct {
	Findings               Findings   `json:"findings"`
	Recommendations        []string   `json:"recommendations"`
	CriticalAlerts         []string   `json:"critical_alerts"`
	Plan                   PhasedPlan `json:"plan"`
	InsulinResistanceIndex *float64   `json:"insulin_resistance_index,omitempty"`
}

// OutputContract is the string-only view handed to presentation and export
// collaborators.
type OutputContract struct {
	Recommendations []string               `json:"recommendations"`
	CriticalAlerts  []string               `json:"critical_alerts"`
	Plan            map[PhaseName][]string `json:"plan"`
}

// Output returns the string-only view of the evaluation.
func (e *Evaluation) Output() OutputContract {
	plan := make(map[PhaseName][]string, len(e.Plan.Phases))
	for _, ph := range e.Plan.Phases {
		plan[ph.Name] = ph.Texts()
	}
	return OutputContract{
		Recommendations: e.Recommendations,
		CriticalAlerts:  e.CriticalAlerts,
		Plan:            plan,
	}
}
