package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSustainabilityGain(t *testing.T) {
	cases := []struct {
		weightKg float64
		gain     float64
	}{
		{0, 0},
		{1, 0.5},
		{10, 5},
		{25.5, 12.75},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.gain, SustainabilityGain(tc.weightKg), 1e-9, "weight %.2f", tc.weightKg)
	}

	// One enormous pickup still lands under the cap after clamping.
	assert.Greater(t, SustainabilityGain(500), MaxSustainabilityScore,
		"caller must clamp at MaxSustainabilityScore")
}
