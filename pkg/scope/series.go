// Package scope is the signal-processing engine behind the virtual
// oscilloscope: waveform synthesis, spectral analysis, auto-ranging and
// display decimation.
//
// Every function in this package is pure. Inputs are never mutated and each
// transform returns a freshly allocated Series, so independent channels can be
// processed concurrently without locking.
package scope

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrInsufficientData is reported when fewer than two samples are available
	// where two are required.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInvalidConfig is reported by configuration validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Sample is a single (x, y) point. In the time domain x is seconds and y is
// volts; in the frequency domain x is hertz and y is magnitude.
type Sample struct {
	X float64 `json:"x" doc:"Seconds (time domain) or hertz (frequency domain)"`
	Y float64 `json:"y" doc:"Volts (time domain) or magnitude (frequency domain)"`
}

// Series is an ordered run of samples, non-decreasing in X.
type Series []Sample

// First returns the first sample.
func (s Series) First() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[0], true
}

// Last returns the last sample.
func (s Series) Last() (Sample, bool) {
	if len(s) == 0 {
		return Sample{}, false
	}
	return s[len(s)-1], true
}

// Values returns the Y values as a new slice.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Y
	}
	return out
}

// Bounds returns the minimum and maximum Y. ok is false for an empty series.
func (s Series) Bounds() (lo, hi float64, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range s {
		if p.Y < lo {
			lo = p.Y
		}
		if p.Y > hi {
			hi = p.Y
		}
	}
	return lo, hi, true
}

// MaxY returns the largest Y, or 0 for an empty series.
func (s Series) MaxY() float64 {
	_, hi, ok := s.Bounds()
	if !ok {
		return 0
	}
	return hi
}

// Clone returns an independent copy.
func (s Series) Clone() Series {
	if s == nil {
		return nil
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// At returns the sample at index i.
func (s Series) At(i int) (Sample, bool) {
	if i < 0 || i >= len(s) {
		return Sample{}, false
	}
	return s[i], true
}

// Domain selects which pair of scale/offset values is active.
type Domain int

const (
	DomainTime Domain = iota
	DomainFrequency
)

func (d Domain) String() string {
	switch d {
	case DomainTime:
		return "time"
	case DomainFrequency:
		return "frequency"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// ParseDomain accepts "time" or "frequency" (also "freq").
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "time", "":
		return DomainTime, nil
	case "frequency", "freq":
		return DomainFrequency, nil
	default:
		return DomainTime, fmt.Errorf("%w: unknown domain %q", ErrInvalidConfig, s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Domain) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Domain) UnmarshalText(b []byte) error {
	v, err := ParseDomain(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
