package scope

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferredSteps(t *testing.T) {
	steps := PreferredSteps()
	require.NotEmpty(t, steps)

	assert.Equal(t, 1e-9, steps[0])
	assert.Equal(t, 1e8, steps[len(steps)-1])
	assert.Len(t, steps, 3*17+1)

	for i := 1; i < len(steps); i++ {
		assert.Less(t, steps[i-1], steps[i], "steps must be strictly increasing at %d", i)
	}
	assert.Contains(t, steps, 0.005)
	assert.Contains(t, steps, 0.002)
	assert.Contains(t, steps, 20.0)
}

func TestSnapToPreferred(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  float64
	}{
		{"exact step", 0.5, 0.5},
		{"nearest below", 1.4, 1},
		{"nearest above", 1.6, 2},
		{"between 2 and 5", 3.6, 5},
		{"tie goes lower", 1.5, 1},
		{"tie between 2 and 5", 3.5, 2},
		{"range over 4.8", 8 / 4.8, 2},
		{"decade boundary", 7.4, 5},
		{"next decade", 7.6, 10},
		{"below minimum", 1e-12, 1e-9},
		{"zero clamps low", 0, 1e-9},
		{"above maximum", 5e9, 1e8},
		{"milli", 0.0021, 0.002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SnapToPreferred(tt.value))
		})
	}
}

func TestSnapToPreferred_Idempotent(t *testing.T) {
	for v := 1e-9; v < 1e8; v *= 1.37 {
		once := SnapToPreferred(v)
		assert.Equal(t, once, SnapToPreferred(once), "value %g", v)
	}
}

func TestSnapToPreferred_NaN(t *testing.T) {
	assert.Equal(t, MinPreferredStep(), SnapToPreferred(math.NaN()))
}

func TestStepUpDown(t *testing.T) {
	assert.Equal(t, 2.0, StepUp(1))
	assert.Equal(t, 5.0, StepUp(2))
	assert.Equal(t, 10.0, StepUp(5))
	assert.Equal(t, 0.5, StepDown(1))
	assert.Equal(t, MaxPreferredStep(), StepUp(MaxPreferredStep()))
	assert.Equal(t, MinPreferredStep(), StepDown(MinPreferredStep()))
}
