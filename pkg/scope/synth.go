package scope

import (
	"fmt"
	"math"
	"strings"
)

// Shape is a synthesizable waveform.
type Shape int

const (
	ShapeSine Shape = iota
	ShapeSquare
	ShapeTriangle
	ShapeSawtooth
)

var shapeNames = [...]string{"sine", "square", "triangle", "sawtooth"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("Shape(%d)", int(s))
	}
	return shapeNames[s]
}

// ParseShape resolves a shape by name, case-insensitively.
func ParseShape(name string) (Shape, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range shapeNames {
		if s == n {
			return Shape(i), nil
		}
	}
	if n == "saw" {
		return ShapeSawtooth, nil
	}
	return ShapeSine, fmt.Errorf("%w: unknown shape %q", ErrInvalidConfig, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Shape) UnmarshalText(b []byte) error {
	v, err := ParseShape(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// SynthesisConfig describes a generated waveform. PhaseRad shifts the
// waveform start and defaults to zero; the tick-driven animator advances it.
type SynthesisConfig struct {
	Shape        Shape   `json:"shape"`
	FrequencyHz  float64 `json:"frequency_hz"`
	Amplitude    float64 `json:"amplitude"`
	DurationSec  float64 `json:"duration_sec"`
	SampleRateHz float64 `json:"sample_rate_hz"`
	PhaseRad     float64 `json:"phase_rad,omitempty"`
}

// MaxSampleCount is the largest series Synthesize will render.
const MaxSampleCount = 1 << 24

// SampleCount is floor(duration * sampleRate). It is 0 when that is not a
// positive count no larger than MaxSampleCount.
func (c SynthesisConfig) SampleCount() int {
	n := math.Floor(c.DurationSec * c.SampleRateHz)
	if !finite(n) || n <= 0 || n > MaxSampleCount {
		return 0
	}
	return int(n)
}

// Validate rejects configurations the synthesizer must never see.
func (c SynthesisConfig) Validate() error {
	switch {
	case c.Shape < ShapeSine || c.Shape > ShapeSawtooth:
		return fmt.Errorf("%w: unknown shape %d", ErrInvalidConfig, int(c.Shape))
	case !finite(c.FrequencyHz) || c.FrequencyHz <= 0:
		return fmt.Errorf("%w: frequency must be > 0 Hz, got %g", ErrInvalidConfig, c.FrequencyHz)
	case !finite(c.DurationSec) || c.DurationSec <= 0:
		return fmt.Errorf("%w: duration must be > 0 s, got %g", ErrInvalidConfig, c.DurationSec)
	case !finite(c.SampleRateHz) || c.SampleRateHz <= 0:
		return fmt.Errorf("%w: sample rate must be > 0 Hz, got %g", ErrInvalidConfig, c.SampleRateHz)
	case !finite(c.Amplitude):
		return fmt.Errorf("%w: amplitude must be finite", ErrInvalidConfig)
	case !finite(c.PhaseRad):
		return fmt.Errorf("%w: phase must be finite", ErrInvalidConfig)
	case math.Floor(c.DurationSec*c.SampleRateHz) > MaxSampleCount:
		return fmt.Errorf("%w: %g s at %g Hz exceeds %d samples", ErrInvalidConfig, c.DurationSec, c.SampleRateHz, MaxSampleCount)
	}
	return nil
}

// Synthesize renders the configured waveform. Sample i sits at
// t = i / sampleRate. The result depends only on cfg.
//
// Square waves map sin(...) >= 0 to +1, so the zero crossing at t = 0 is +1.
func Synthesize(cfg SynthesisConfig) Series {
	n := cfg.SampleCount()
	out := make(Series, n)
	if n == 0 {
		return out
	}

	omega := 2 * math.Pi * cfg.FrequencyHz
	cycleShift := cfg.PhaseRad / (2 * math.Pi)
	for i := range out {
		t := float64(i) / cfg.SampleRateHz
		var w float64
		switch cfg.Shape {
		case ShapeSine:
			w = math.Sin(omega*t + cfg.PhaseRad)
		case ShapeSquare:
			if math.Sin(omega*t+cfg.PhaseRad) >= 0 {
				w = 1
			} else {
				w = -1
			}
		case ShapeTriangle:
			w = (2 / math.Pi) * math.Asin(math.Sin(omega*t+cfg.PhaseRad))
		case ShapeSawtooth:
			ft := cfg.FrequencyHz*t + cycleShift
			w = 2 * (ft - math.Floor(ft+0.5))
		}
		out[i] = Sample{X: t, Y: w * cfg.Amplitude}
	}
	return out
}

// DefaultSeries is the idle-channel trace: count zero-valued samples evenly
// spaced over [0, timePerDivision*10]. count <= 0 yields an empty series and
// count == 1 yields the single sample (0, 0).
func DefaultSeries(timePerDivision float64, count int) Series {
	if count <= 0 {
		return Series{}
	}
	if count == 1 {
		return Series{{X: 0, Y: 0}}
	}
	total := timePerDivision * HorizontalDivisions
	if !finite(total) {
		total = 0
	}
	out := make(Series, count)
	for i := range out {
		out[i] = Sample{X: float64(i) / float64(count-1) * total}
	}
	return out
}

// PhaseAt returns the phase, wrapped to [0, 2π), a generator running at
// frequencyHz has accumulated after elapsed seconds.
func PhaseAt(frequencyHz, elapsed float64) float64 {
	if !finite(frequencyHz) || !finite(elapsed) {
		return 0
	}
	p := math.Mod(2*math.Pi*frequencyHz*elapsed, 2*math.Pi)
	if p < 0 {
		p += 2 * math.Pi
	}
	return p
}
