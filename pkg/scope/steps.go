package scope

import (
	"fmt"
	"sort"
	"strconv"
)

const (
	minStepExponent = -9
	maxStepExponent = 8
)

// preferredSteps is the 1-2-5 sequence from 1e-9 to 1e8 inclusive.
var preferredSteps = buildPreferredSteps(minStepExponent, maxStepExponent)

func buildPreferredSteps(minExp, maxExp int) []float64 {
	steps := make([]float64, 0, 3*(maxExp-minExp+1))
	for exp := minExp; exp <= maxExp; exp++ {
		for _, m := range []int{1, 2, 5} {
			if exp == maxExp && m > 1 {
				break
			}
			// Parsing the decimal literal gives the nearest double, so 5e-3
			// compares equal to 0.005 written anywhere else.
			v, err := strconv.ParseFloat(fmt.Sprintf("%de%d", m, exp), 64)
			if err != nil {
				panic(err)
			}
			steps = append(steps, v)
		}
	}
	sort.Float64s(steps)
	return steps
}

// PreferredSteps returns a copy of the 1-2-5 sequence.
func PreferredSteps() []float64 {
	out := make([]float64, len(preferredSteps))
	copy(out, preferredSteps)
	return out
}

// MinPreferredStep is the smallest value SnapToPreferred returns.
func MinPreferredStep() float64 { return preferredSteps[0] }

// MaxPreferredStep is the largest value SnapToPreferred returns.
func MaxPreferredStep() float64 { return preferredSteps[len(preferredSteps)-1] }

// SnapToPreferred returns the 1-2-5 step closest to value by absolute
// difference. Ties go to the lower step. Values outside the sequence clamp to
// its bounds. Callers must pass value > 0 when snapping a range.
func SnapToPreferred(value float64) float64 {
	lo, hi := preferredSteps[0], preferredSteps[len(preferredSteps)-1]
	if value != value || value <= lo {
		return lo
	}
	if value >= hi {
		return hi
	}

	i := sort.SearchFloat64s(preferredSteps, value)
	if preferredSteps[i] == value {
		return value
	}
	below, above := preferredSteps[i-1], preferredSteps[i]
	if value-below <= above-value {
		return below
	}
	return above
}

// StepUp returns the next preferred step above the snapped value, used by
// knob-style controls.
func StepUp(value float64) float64 {
	v := SnapToPreferred(value)
	i := sort.SearchFloat64s(preferredSteps, v)
	if i+1 < len(preferredSteps) {
		return preferredSteps[i+1]
	}
	return preferredSteps[len(preferredSteps)-1]
}

// StepDown returns the next preferred step below the snapped value.
func StepDown(value float64) float64 {
	v := SnapToPreferred(value)
	i := sort.SearchFloat64s(preferredSteps, v)
	if i > 0 {
		return preferredSteps[i-1]
	}
	return preferredSteps[0]
}
