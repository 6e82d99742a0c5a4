package uavledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name       string
		totalUnits int
		stepCount  int
		want       []int
	}{
		{"even split", 100, 10, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}},
		{"remainder to earliest steps", 23, 5, []int{5, 10, 15, 19, 23}},
		{"single step", 7, 1, []int{7}},
		{"one unit per step", 4, 4, []int{1, 2, 3, 4}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Plan(tc.totalUnits, tc.stepCount)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPlanRejectsEmptySteps(t *testing.T) {
	for _, tc := range []struct{ totalUnits, stepCount int }{
		{0, 1},   // nothing to upload
		{5, 10},  // zero-width snapshots
		{10, 0},  // no steps
		{10, -1}, // negative steps
	} {
		_, err := Plan(tc.totalUnits, tc.stepCount)
		assert.ErrorIs(t, err, ErrPlanSteps, "Plan(%d, %d)", tc.totalUnits, tc.stepCount)
	}
}

func TestPlanProperties(t *testing.T) {
	for totalUnits := 1; totalUnits <= 60; totalUnits++ {
		for stepCount := 1; stepCount <= totalUnits; stepCount++ {
			got, err := Plan(totalUnits, stepCount)
			require.NoError(t, err)
			require.Len(t, got, stepCount)
			require.GreaterOrEqual(t, got[0], 1)
			for i := 1; i < len(got); i++ {
				require.Greater(t, got[i], got[i-1],
					"Plan(%d, %d) not strictly increasing", totalUnits, stepCount)
			}
			require.Equal(t, totalUnits, got[len(got)-1])
		}
	}
}
