package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rif-protocol-server/internal/domain"
)

func TestThresholdBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		table ThresholdTable
		value float64
		want  Band
	}{
		{"vitamin D deficient", VitaminDTable, 19.9, BandAbnormal},
		{"vitamin D at 20 is insufficient", VitaminDTable, 20, BandBorderline},
		{"vitamin D just below 30", VitaminDTable, 29.9, BandBorderline},
		{"vitamin D at 30 is adequate", VitaminDTable, 30, BandNormal},

		{"HOMA above 2.5", InsulinResistanceTable, 2.51, BandAbnormal},
		{"HOMA at 2.5 is borderline", InsulinResistanceTable, 2.5, BandBorderline},
		{"HOMA just above 1.9", InsulinResistanceTable, 1.91, BandBorderline},
		{"HOMA at 1.9 is absent", InsulinResistanceTable, 1.9, BandNormal},

		{"thickness below 7", EndometrialThicknessTable, 6.9, BandAbnormal},
		{"thickness at 7 is borderline", EndometrialThicknessTable, 7, BandBorderline},
		{"thickness at 9 is adequate", EndometrialThicknessTable, 9, BandNormal},

		{"TSH above target", TSHTable, 2.6, BandHigh},
		{"TSH at 2.5 is on target", TSHTable, 2.5, BandNormal},
		{"TSH suppressed", TSHTable, 0.4, BandLow},
		{"TSH at 0.5 is on target", TSHTable, 0.5, BandNormal},

		{"glycemia at 126", GlycemiaTable, 126, BandAbnormal},
		{"glycemia at 100", GlycemiaTable, 100, BandBorderline},
		{"glycemia at 99", GlycemiaTable, 99, BandNormal},

		{"HbA1c at 6.5", HbA1cTable, 6.5, BandAbnormal},
		{"HbA1c at 5.7", HbA1cTable, 5.7, BandBorderline},

		{"CRP above 10", CRPTable, 10.1, BandAbnormal},
		{"CRP at 10 is elevated", CRPTable, 10, BandBorderline},
		{"CRP at 3 is normal", CRPTable, 3, BandNormal},

		{"prolactin at 25 is normal", ProlactinTable, 25, BandNormal},
		{"progesterone at 10 is adequate", ProgesteroneTable, 10, BandNormal},
		{"homocysteine above 15", HomocysteineTable, 15.5, BandAbnormal},
		{"peripheral NK at 18 is normal", PeripheralNKTable, 18, BandNormal},
		{"aCL at 40 does not meet criterion", AntiphospholipidTiterTable, 40, BandNormal},
		{"aCL above 40 meets criterion", AntiphospholipidTiterTable, 40.5, BandAbnormal},

		{"BMI underweight", BMITable, 18.4, BandLow},
		{"BMI at 30 is normal", BMITable, 30, BandNormal},
		{"BMI obese", BMITable, 30.1, BandHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.table.Classify(tt.value))
		})
	}
}

func TestThresholdFailsClosed(t *testing.T) {
	assert.Equal(t, BandNormal, VitaminDTable.Classify(math.NaN()))
	assert.Equal(t, BandAbnormal, VitaminDTable.Classify(-5), "out-of-range values take the nearest defined band")
	assert.Equal(t, BandNormal, VitaminDTable.Classify(math.Inf(1)))
}

func TestClassifyMeasured(t *testing.T) {
	band, ok := VitaminDTable.ClassifyMeasured(nil)
	assert.False(t, ok)
	assert.Empty(t, band)

	band, ok = VitaminDTable.ClassifyMeasured(domain.Measured(0))
	assert.True(t, ok, "zero is a measurement, not a sentinel")
	assert.Equal(t, BandAbnormal, band)
}
