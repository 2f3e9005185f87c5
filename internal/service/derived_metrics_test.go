package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rif-protocol-server/internal/domain"
)

func TestInsulinResistanceIndex(t *testing.T) {
	t.Run("exact formula", func(t *testing.T) {
		homa := InsulinResistanceIndex(domain.Measured(120), domain.Measured(15))
		require.NotNil(t, homa)
		assert.Equal(t, 120.0*15.0/405.0, *homa)
		assert.InDelta(t, 4.44, *homa, 0.005)
	})

	tests := []struct {
		name             string
		glucose, insulin *float64
	}{
		{"glucose not tested", nil, domain.Measured(10)},
		{"insulin not tested", domain.Measured(90), nil},
		{"zero glucose", domain.Measured(0), domain.Measured(10)},
		{"zero insulin", domain.Measured(90), domain.Measured(0)},
		{"negative insulin", domain.Measured(90), domain.Measured(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, InsulinResistanceIndex(tt.glucose, tt.insulin))
		})
	}
}

func TestEnrich(t *testing.T) {
	s := untestedSnapshot()
	assert.Nil(t, Enrich(s).Derived.InsulinResistanceIndex)

	s.Laboratory.FastingGlucose = domain.Measured(81)
	s.Laboratory.FastingInsulin = domain.Measured(10)
	enriched := Enrich(s)
	require.NotNil(t, enriched.Derived.InsulinResistanceIndex)
	assert.InDelta(t, 2.0, *enriched.Derived.InsulinResistanceIndex, 1e-12)
	assert.Equal(t, s, enriched.InputSnapshot)
}
