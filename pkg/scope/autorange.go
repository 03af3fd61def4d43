package scope

// Grid geometry of the display.
const (
	HorizontalDivisions = 10
	VerticalDivisions   = 8

	// TimeCenterDivision is the vertical division of the time-domain zero line.
	TimeCenterDivision = 4
	// FrequencyBaselineDivision is the vertical division of zero magnitude.
	FrequencyBaselineDivision = 8
)

const (
	// voltageFitDivisions is the vertical span a signal's peak-to-peak range
	// is fitted into.
	voltageFitDivisions = 4.8
	// significantFreqDivision is where the highest significant frequency lands.
	significantFreqDivision = 9
	// magnitudeDisplayGain scales spectrum magnitude onto the vertical grid.
	magnitudeDisplayGain = 10
	// significanceFraction of the global maximum magnitude marks a bin as
	// significant.
	significanceFraction = 0.05
)

// Range is one scale/offset pair.
type Range struct {
	UnitsPerDivision float64 `json:"units_per_division"`
	Offset           float64 `json:"offset"`
}

// DefaultRange is 1 unit per division with no offset.
var DefaultRange = Range{UnitsPerDivision: 1}

// ChannelRange holds a channel's visibility and one Range per domain.
type ChannelRange struct {
	Visible bool     `json:"visible"`
	Ranges  [2]Range `json:"ranges"`
}

// NewChannelRange returns a channel with default ranges in both domains.
func NewChannelRange(visible bool) ChannelRange {
	return ChannelRange{Visible: visible, Ranges: [2]Range{DefaultRange, DefaultRange}}
}

// Range returns the pair active for d.
func (c ChannelRange) Range(d Domain) Range {
	if d == DomainFrequency {
		return c.Ranges[DomainFrequency]
	}
	return c.Ranges[DomainTime]
}

// WithRange returns a copy with the pair for d replaced.
func (c ChannelRange) WithRange(d Domain, r Range) ChannelRange {
	if d == DomainFrequency {
		c.Ranges[DomainFrequency] = r
	} else {
		c.Ranges[DomainTime] = r
	}
	return c
}

// Timebase is the horizontal scale shared by every channel.
type Timebase struct {
	TimePerDivision float64 `json:"time_per_division"`
	TimeOffset      float64 `json:"time_offset"`
	FreqPerDivision float64 `json:"freq_per_division"`
	FreqOffset      float64 `json:"freq_offset"`
}

// DefaultTimebase is 1 s/div and 50 Hz/div with no offsets.
var DefaultTimebase = Timebase{TimePerDivision: 1, FreqPerDivision: 50}

// AutoRangeInput bundles everything the engine reads. Series slices are
// indexed like Channels; a missing or empty entry leaves its channel alone.
type AutoRangeInput struct {
	Domain    Domain
	Timebase  Timebase
	Channels  []ChannelRange
	Time      []Series
	Frequency []Series
}

// AutoRangeResult is the recomputed state. Channels is a new slice.
type AutoRangeResult struct {
	Timebase Timebase
	Channels []ChannelRange
	// Active lists the indices of channels that took part.
	Active []int
}

// AutoRange fits the visible channels' signals onto the grid for the active
// domain. Inputs are not modified.
func AutoRange(in AutoRangeInput) AutoRangeResult {
	res := AutoRangeResult{
		Timebase: in.Timebase,
		Channels: make([]ChannelRange, len(in.Channels)),
	}
	copy(res.Channels, in.Channels)

	source := in.Time
	if in.Domain == DomainFrequency {
		source = in.Frequency
	}
	for i, ch := range in.Channels {
		if ch.Visible && i < len(source) && len(source[i]) > 0 {
			res.Active = append(res.Active, i)
		}
	}
	if len(res.Active) == 0 {
		return res
	}

	if in.Domain == DomainFrequency {
		autoRangeFrequency(&res, source)
	} else {
		autoRangeTime(&res, source)
	}
	return res
}

func autoRangeTime(res *AutoRangeResult, series []Series) {
	maxTime, minTime := 0.0, 0.0
	for n, i := range res.Active {
		first, _ := series[i].First()
		last, _ := series[i].Last()
		if n == 0 || last.X > maxTime {
			maxTime = last.X
		}
		if n == 0 || first.X < minTime {
			minTime = first.X
		}
	}
	if finite(maxTime) && maxTime > 0 {
		res.Timebase.TimePerDivision = SnapToPreferred(maxTime / HorizontalDivisions)
	}
	if finite(minTime) {
		// 0 - x rather than -x keeps a zero start from becoming -0.
		res.Timebase.TimeOffset = 0 - minTime
	}

	for _, i := range res.Active {
		if r, ok := FitVoltage(series[i]); ok {
			res.Channels[i] = res.Channels[i].WithRange(DomainTime, r)
		}
	}
}

// FitVoltage computes the time-domain range that centers s on the grid's
// zero line with its peak-to-peak span across 4.8 divisions. A flat signal
// gets 1 unit per division. ok is false when s has no finite bounds.
func FitVoltage(s Series) (Range, bool) {
	lo, hi, ok := s.Bounds()
	if !ok || !finite(lo) || !finite(hi) {
		return Range{}, false
	}
	span := hi - lo
	center := (hi + lo) / 2

	upd := 1.0
	if span > 0 {
		upd = SnapToPreferred(span / voltageFitDivisions)
	}
	return Range{UnitsPerDivision: upd, Offset: 0 - center}, true
}

func autoRangeFrequency(res *AutoRangeResult, spectra []Series) {
	globalMax := 0.0
	for _, i := range res.Active {
		if m := spectra[i].MaxY(); finite(m) && m > globalMax {
			globalMax = m
		}
	}

	significantMaxFreq := 0.0
	for _, i := range res.Active {
		if f, ok := SignificantMaxFrequency(spectra[i], globalMax); ok && f > significantMaxFreq {
			significantMaxFreq = f
		}
	}
	if significantMaxFreq == 0 {
		for _, i := range res.Active {
			if last, ok := spectra[i].Last(); ok && finite(last.X) && last.X > significantMaxFreq {
				significantMaxFreq = last.X
			}
		}
	}

	if significantMaxFreq > 0 {
		res.Timebase.FreqPerDivision = SnapToPreferred(significantMaxFreq / significantFreqDivision)
	}
	res.Timebase.FreqOffset = 0

	for _, i := range res.Active {
		maxMag := spectra[i].MaxY()
		if !finite(maxMag) || maxMag <= 0 {
			continue
		}
		r := Range{
			UnitsPerDivision: SnapToPreferred(maxMag * magnitudeDisplayGain / voltageFitDivisions),
			Offset:           0,
		}
		res.Channels[i] = res.Channels[i].WithRange(DomainFrequency, r)
	}
}

// SignificantMaxFrequency returns the highest X whose Y exceeds 5% of
// reference. ok is false when no bin does.
func SignificantMaxFrequency(spectrum Series, reference float64) (float64, bool) {
	threshold := reference * significanceFraction
	found := false
	best := 0.0
	for _, p := range spectrum {
		if p.Y > threshold && (!found || p.X > best) {
			best = p.X
			found = true
		}
	}
	return best, found
}
