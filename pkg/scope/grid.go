package scope

// GridPoint is a position in display divisions: X in [0, 10] left to right,
// Y in [0, 8] top to bottom when on screen.
type GridPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToGrid maps a sample into division coordinates for domain d using the
// channel's active range and the shared timebase. Zero scales are treated as
// 1 so the mapping never divides by zero.
func ToGrid(p Sample, d Domain, r Range, tb Timebase) GridPoint {
	upd := nonZero(r.UnitsPerDivision)
	if d == DomainFrequency {
		return GridPoint{
			X: (p.X + tb.FreqOffset) / nonZero(tb.FreqPerDivision),
			Y: FrequencyBaselineDivision - (p.Y*magnitudeDisplayGain+r.Offset)/upd,
		}
	}
	return GridPoint{
		X: (p.X + tb.TimeOffset) / nonZero(tb.TimePerDivision),
		Y: TimeCenterDivision - (p.Y+r.Offset)/upd,
	}
}

// OnGrid reports whether g falls inside the visible grid.
func (g GridPoint) OnGrid() bool {
	return g.X >= 0 && g.X <= HorizontalDivisions && g.Y >= 0 && g.Y <= VerticalDivisions
}

func nonZero(v float64) float64 {
	if v == 0 || !finite(v) {
		return 1
	}
	return v
}
