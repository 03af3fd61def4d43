package scope

import (
	"fmt"
	"math"
	"strings"
)

// DefaultMaxPoints is the point-overlay cap used for rendering.
const DefaultMaxPoints = 1000

// Decimator reduces a series to at most maxPoints samples. Output is always an
// order-preserving subsequence of the input, and inputs that already fit are
// returned unchanged.
type Decimator interface {
	Decimate(s Series, maxPoints int) Series
}

// Decimate applies fixed-stride decimation.
func Decimate(s Series, maxPoints int) Series {
	return StrideDecimator{}.Decimate(s, maxPoints)
}

// StrideDecimator keeps s[floor(i*len/maxPoints)] for i in [0, maxPoints).
type StrideDecimator struct{}

// Decimate implements Decimator.
func (StrideDecimator) Decimate(s Series, maxPoints int) Series {
	if len(s) <= maxPoints {
		return s
	}
	if maxPoints <= 0 {
		return Series{}
	}

	step := float64(len(s)) / float64(maxPoints)
	out := make(Series, 0, maxPoints)
	last := -1
	for i := 0; i < maxPoints; i++ {
		idx := int(math.Floor(float64(i) * step))
		if idx >= len(s) {
			break
		}
		if idx == last {
			continue
		}
		out = append(out, s[idx])
		last = idx
	}
	return out
}

// WindowDecimator restricts sampling to samples with X in
// [Start, Start+Span] and splits that window into maxPoints equal bins,
// keeping the first sample that lands in each bin. A window with a
// non-positive or non-finite span falls back to stride decimation.
type WindowDecimator struct {
	Start float64
	Span  float64
}

// Decimate implements Decimator.
func (w WindowDecimator) Decimate(s Series, maxPoints int) Series {
	if len(s) <= maxPoints {
		return s
	}
	if maxPoints <= 0 {
		return Series{}
	}
	if !finite(w.Start) || !finite(w.Span) || w.Span <= 0 {
		return StrideDecimator{}.Decimate(s, maxPoints)
	}

	end := w.Start + w.Span
	binWidth := w.Span / float64(maxPoints)
	out := make(Series, 0, maxPoints)
	lastBin := -1
	for _, p := range s {
		if p.X < w.Start {
			continue
		}
		if p.X > end {
			break
		}
		bin := int(math.Floor((p.X - w.Start) / binWidth))
		if bin >= maxPoints {
			// Only X == end lands here; it shares the final bin.
			bin = maxPoints - 1
		}
		if bin > lastBin {
			out = append(out, p)
			lastBin = bin
		}
	}
	return out
}

// View describes the visible span along X: divisions * unitsPerDivision
// starting at Start.
type View struct {
	Start            float64
	UnitsPerDivision float64
	Divisions        float64
}

// Span is the width of the view along X.
func (v View) Span() float64 { return v.Divisions * v.UnitsPerDivision }

// Decimator returns the window strategy bounded by this view.
func (v View) Decimator() WindowDecimator {
	return WindowDecimator{Start: v.Start, Span: v.Span()}
}

// HorizontalView returns the visible X window for the bench timebase in the
// given domain. The display maps x to (x + offset) / unitsPerDivision, so
// the left edge of the grid sits at -offset.
func HorizontalView(tb Timebase, d Domain) View {
	if d == DomainFrequency {
		return View{Start: -tb.FreqOffset, UnitsPerDivision: tb.FreqPerDivision, Divisions: HorizontalDivisions}
	}
	return View{Start: -tb.TimeOffset, UnitsPerDivision: tb.TimePerDivision, Divisions: HorizontalDivisions}
}

// DecimationMode names a decimation strategy.
type DecimationMode string

const (
	ModeStride DecimationMode = "stride"
	ModeWindow DecimationMode = "window"
)

// ParseDecimationMode accepts "stride" or "window"; empty means stride.
func ParseDecimationMode(s string) (DecimationMode, error) {
	switch DecimationMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStride:
		return ModeStride, nil
	case ModeWindow:
		return ModeWindow, nil
	default:
		return ModeStride, fmt.Errorf("%w: unknown decimation mode %q", ErrInvalidConfig, s)
	}
}

// NewDecimator returns the strategy for mode; view is only used by
// ModeWindow.
func NewDecimator(mode DecimationMode, view View) Decimator {
	if mode == ModeWindow {
		return view.Decimator()
	}
	return StrideDecimator{}
}
