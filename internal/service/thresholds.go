package service

import "math"

// Band is the category a threshold table assigns to a measurement.
type Band string

const (
	BandNormal     Band = "normal"
	BandBorderline Band = "borderline"
	BandAbnormal   Band = "abnormal"
	BandLow        Band = "low"
	BandHigh       Band = "high"
)

type comparison int

const (
	lessThan comparison = iota
	atMost
	greaterThan
	atLeast
)

func (c comparison) holds(v, bound float64) bool {
	switch c {
	case lessThan:
		return v < bound
	case atMost:
		return v <= bound
	case greaterThan:
		return v > bound
	case atLeast:
		return v >= bound
	default:
		return false
	}
}

type cutPoint struct {
	op    comparison
	bound float64
	band  Band
}

// ThresholdTable classifies a measurement by scanning its cut points from
// the most severe to the least severe and returning the first match.
// Values matching no cut point (including NaN) fall into Default, so the
// classifier is total.
type ThresholdTable struct {
	Name    string
	rows    []cutPoint
	Default Band
}

// Classify returns the band of v.
func (t ThresholdTable) Classify(v float64) Band {
	if math.IsNaN(v) {
		return t.Default
	}
	for _, row := range t.rows {
		if row.op.holds(v, row.bound) {
			return row.band
		}
	}
	return t.Default
}

// ClassifyMeasured classifies a possibly missing measurement. The boolean is
// false when the value was not tested.
func (t ThresholdTable) ClassifyMeasured(v *float64) (Band, bool) {
	if v == nil {
		return "", false
	}
	return t.Classify(*v), true
}

// The tables below encode each field's boundaries exactly; none of them
// share cut points.
var (
	// Vitamin D (ng/mL): <20 deficient, 20 <= v < 30 insufficient.
	VitaminDTable = ThresholdTable{
		Name: "vitamin_d",
		rows: []cutPoint{
			{lessThan, 20, BandAbnormal},
			{lessThan, 30, BandBorderline},
		},
		Default: BandNormal,
	}

	// HOMA-IR: >2.5 present, 1.9 < x <= 2.5 borderline.
	InsulinResistanceTable = ThresholdTable{
		Name: "homa_ir",
		rows: []cutPoint{
			{greaterThan, 2.5, BandAbnormal},
			{greaterThan, 1.9, BandBorderline},
		},
		Default: BandNormal,
	}

	// Endometrial thickness (mm): <7 thin, 7 <= x < 9 borderline.
	EndometrialThicknessTable = ThresholdTable{
		Name: "endometrial_thickness",
		rows: []cutPoint{
			{lessThan, 7, BandAbnormal},
			{lessThan, 9, BandBorderline},
		},
		Default: BandNormal,
	}

	// TSH (mUI/L): >2.5 above the IVF target, <0.5 suppressed.
	TSHTable = ThresholdTable{
		Name: "tsh",
		rows: []cutPoint{
			{greaterThan, 2.5, BandHigh},
			{lessThan, 0.5, BandLow},
		},
		Default: BandNormal,
	}

	// CRP (mg/L): >10 active inflammation, 3 < x <= 10 elevated.
	CRPTable = ThresholdTable{
		Name: "crp",
		rows: []cutPoint{
			{greaterThan, 10, BandAbnormal},
			{greaterThan, 3, BandBorderline},
		},
		Default: BandNormal,
	}

	// Fasting glycemia (mg/dL): >=126 diabetes, 100 <= x < 126 impaired.
	GlycemiaTable = ThresholdTable{
		Name: "fasting_glucose",
		rows: []cutPoint{
			{atLeast, 126, BandAbnormal},
			{atLeast, 100, BandBorderline},
		},
		Default: BandNormal,
	}

	// HbA1c (%): >=6.5 diabetes, 5.7 <= x < 6.5 prediabetes.
	HbA1cTable = ThresholdTable{
		Name: "hba1c",
		rows: []cutPoint{
			{atLeast, 6.5, BandAbnormal},
			{atLeast, 5.7, BandBorderline},
		},
		Default: BandNormal,
	}

	// Prolactin (ng/mL): >25.
	ProlactinTable = ThresholdTable{
		Name:    "prolactin",
		rows:    []cutPoint{{greaterThan, 25, BandAbnormal}},
		Default: BandNormal,
	}

	// Luteal progesterone (ng/mL): <10.
	ProgesteroneTable = ThresholdTable{
		Name:    "luteal_progesterone",
		rows:    []cutPoint{{lessThan, 10, BandAbnormal}},
		Default: BandNormal,
	}

	// Homocysteine (µmol/L): >15.
	HomocysteineTable = ThresholdTable{
		Name:    "homocysteine",
		rows:    []cutPoint{{greaterThan, 15, BandAbnormal}},
		Default: BandNormal,
	}

	// Peripheral NK cells (%): >18.
	PeripheralNKTable = ThresholdTable{
		Name:    "peripheral_nk",
		rows:    []cutPoint{{greaterThan, 18, BandAbnormal}},
		Default: BandNormal,
	}

	// Anticardiolipin and anti-β2GP1 titers: >40 meets the laboratory
	// criterion.
	AntiphospholipidTiterTable = ThresholdTable{
		Name:    "antiphospholipid_titer",
		rows:    []cutPoint{{greaterThan, 40, BandAbnormal}},
		Default: BandNormal,
	}

	// BMI (kg/m²): <18.5 underweight, >30 obesity.
	BMITable = ThresholdTable{
		Name: "bmi",
		rows: []cutPoint{
			{lessThan, 18.5, BandLow},
			{greaterThan, 30, BandHigh},
		},
		Default: BandNormal,
	}
)
