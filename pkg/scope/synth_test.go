package scope

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_Shapes(t *testing.T) {
	base := SynthesisConfig{FrequencyHz: 1, Amplitude: 2, DurationSec: 1, SampleRateHz: 8}

	tests := []struct {
		shape Shape
		// expected waveform values at t = i/8 for one period, before amplitude
		want []float64
	}{
		{ShapeSine, []float64{0, math.Sqrt2 / 2, 1, math.Sqrt2 / 2, 0, -math.Sqrt2 / 2, -1, -math.Sqrt2 / 2}},
		{ShapeSquare, []float64{1, 1, 1, 1, 1, -1, -1, -1}},
		{ShapeTriangle, []float64{0, 0.5, 1, 0.5, 0, -0.5, -1, -0.5}},
		{ShapeSawtooth, []float64{0, 0.25, 0.5, 0.75, -1, -0.75, -0.5, -0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.shape.String(), func(t *testing.T) {
			cfg := base
			cfg.Shape = tt.shape
			got := Synthesize(cfg)
			require.Len(t, got, 8)
			for i, p := range got {
				assert.InDelta(t, float64(i)/8, p.X, 1e-12)
				if tt.shape == ShapeSquare && (i == 0 || i == 4) {
					// sin(pi) is a hair above zero in floating point; only
					// t = 0 is guaranteed to sit exactly on the crossing.
					if i == 0 {
						assert.Equal(t, 2.0, p.Y)
					}
					continue
				}
				assert.InDelta(t, tt.want[i]*2, p.Y, 1e-9, "sample %d", i)
			}
		})
	}
}

func TestSynthesize_Deterministic(t *testing.T) {
	cfg := SynthesisConfig{Shape: ShapeTriangle, FrequencyHz: 950, Amplitude: 5, DurationSec: 0.1, SampleRateHz: 95000}
	assert.Equal(t, Synthesize(cfg), Synthesize(cfg))
}

func TestSynthesize_SampleCount(t *testing.T) {
	tests := []struct {
		name string
		cfg  SynthesisConfig
		want int
	}{
		{"floor", SynthesisConfig{FrequencyHz: 1, Amplitude: 1, DurationSec: 0.0105, SampleRateHz: 1000}, 10},
		{"exact", SynthesisConfig{FrequencyHz: 1000, Amplitude: 5, DurationSec: 0.01, SampleRateHz: 100000}, 1000},
		{"zero", SynthesisConfig{FrequencyHz: 1, Amplitude: 1, DurationSec: 0.0001, SampleRateHz: 100}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.SampleCount())
			assert.Len(t, Synthesize(tt.cfg), tt.want)
		})
	}
}

func TestSynthesize_ZeroAmplitudeIsFlat(t *testing.T) {
	got := Synthesize(SynthesisConfig{Shape: ShapeSquare, FrequencyHz: 10, DurationSec: 1, SampleRateHz: 100})
	require.Len(t, got, 100)
	lo, hi, ok := got.Bounds()
	require.True(t, ok)
	assert.Zero(t, lo)
	assert.Zero(t, hi)
}

func TestSynthesize_EmptyIsNotNil(t *testing.T) {
	got := Synthesize(SynthesisConfig{FrequencyHz: 1, DurationSec: 0, SampleRateHz: 1})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSynthesize_Phase(t *testing.T) {
	cfg := SynthesisConfig{Shape: ShapeSine, FrequencyHz: 1, Amplitude: 1, DurationSec: 1, SampleRateHz: 4, PhaseRad: math.Pi / 2}
	got := Synthesize(cfg)
	require.Len(t, got, 4)
	assert.InDelta(t, 1, got[0].Y, 1e-12)

	saw := Synthesize(SynthesisConfig{Shape: ShapeSawtooth, FrequencyHz: 1, Amplitude: 1, DurationSec: 1, SampleRateHz: 4, PhaseRad: math.Pi / 2})
	assert.InDelta(t, 0.5, saw[0].Y, 1e-12)
}

func TestSynthesisConfig_Validate(t *testing.T) {
	valid := SynthesisConfig{Shape: ShapeSine, FrequencyHz: 1000, Amplitude: 5, DurationSec: 0.01, SampleRateHz: 100000}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*SynthesisConfig)
	}{
		{"zero frequency", func(c *SynthesisConfig) { c.FrequencyHz = 0 }},
		{"negative frequency", func(c *SynthesisConfig) { c.FrequencyHz = -1 }},
		{"zero duration", func(c *SynthesisConfig) { c.DurationSec = 0 }},
		{"zero sample rate", func(c *SynthesisConfig) { c.SampleRateHz = 0 }},
		{"nan amplitude", func(c *SynthesisConfig) { c.Amplitude = math.NaN() }},
		{"unknown shape", func(c *SynthesisConfig) { c.Shape = Shape(9) }},
		{"too many samples", func(c *SynthesisConfig) { c.DurationSec, c.SampleRateHz = 1e10, 1e10 }},
		{"overflowing product", func(c *SynthesisConfig) { c.DurationSec, c.SampleRateHz = 1e300, 1e300 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestSynthesize_OversizedConfigIsEmpty(t *testing.T) {
	cfg := SynthesisConfig{Shape: ShapeSine, FrequencyHz: 1, Amplitude: 1, DurationSec: 1e10, SampleRateHz: 1e10}
	assert.Zero(t, cfg.SampleCount())
	assert.NotPanics(t, func() {
		assert.Empty(t, Synthesize(cfg))
	})

	cfg.DurationSec, cfg.SampleRateHz = 1, MaxSampleCount
	assert.Equal(t, MaxSampleCount, cfg.SampleCount())
	assert.NoError(t, cfg.Validate())
}

func TestDefaultSeries(t *testing.T) {
	assert.Empty(t, DefaultSeries(1, 0))
	assert.Equal(t, Series{{X: 0, Y: 0}}, DefaultSeries(1, 1))

	got := DefaultSeries(0.001, 5)
	require.Len(t, got, 5)
	assert.Equal(t, 0.0, got[0].X)
	assert.InDelta(t, 0.01, got[4].X, 1e-15)
	assert.InDelta(t, 0.0025, got[1].X, 1e-15)
	for _, p := range got {
		assert.Zero(t, p.Y)
	}
}

func TestShape_TextRoundTrip(t *testing.T) {
	var cfg SynthesisConfig
	require.NoError(t, json.Unmarshal([]byte(`{"shape":"Sawtooth","frequency_hz":5}`), &cfg))
	assert.Equal(t, ShapeSawtooth, cfg.Shape)

	b, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"shape":"sawtooth"`)

	_, err = ParseShape("noise")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPhaseAt(t *testing.T) {
	assert.InDelta(t, math.Pi, PhaseAt(1, 0.5), 1e-12)
	assert.InDelta(t, math.Pi/2, PhaseAt(1, 1.25), 1e-12)
	p := PhaseAt(3, 1234.567)
	assert.GreaterOrEqual(t, p, 0.0)
	assert.Less(t, p, 2*math.Pi)
}
