package uavledger

import "fmt"

// Plan splits totalUnits into stepCount cumulative snapshot boundaries. The
// remainder of the division is distributed to the earliest steps, so the last
// boundary always equals totalUnits and no step is empty.
//
// A plan that would contain a zero-width step is rejected: such a snapshot
// carries no new bytes and would corrupt delta computation downstream.
func Plan(totalUnits, stepCount int) ([]int, error) {
	if stepCount <= 0 {
		return nil, fmt.Errorf("%w: step count %d", ErrPlanSteps, stepCount)
	}
	if totalUnits < stepCount {
		return nil, fmt.Errorf("%w: %d steps over %d units", ErrPlanSteps, stepCount, totalUnits)
	}
	base := totalUnits / stepCount
	rem := totalUnits % stepCount
	out := make([]int, stepCount)
	acc := 0
	for i := range out {
		acc += base
		if i < rem {
			acc++
		}
		out[i] = acc
	}
	return out, nil
}
