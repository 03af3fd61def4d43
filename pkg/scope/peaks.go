package scope

import "sort"

// PeakThreshold is the fraction of the tallest peak a peak must reach to be
// reported.
const PeakThreshold = 0.05

// Peak is a local maximum of a series.
type Peak struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Index int     `json:"index"`
}

// FindPeaks returns up to topN local maxima sorted by Y descending.
//
// A peak is declared where the first difference turns from positive to
// negative, including across a flat plateau (the plateau's first sample is
// reported). Peaks below PeakThreshold of the tallest one are dropped.
func FindPeaks(s Series, topN int) []Peak {
	if len(s) < 2 || topN <= 0 {
		return []Peak{}
	}

	ys := s.Values()
	dy := make([]float64, len(ys)-1)
	for i := range dy {
		dy[i] = ys[i+1] - ys[i]
	}

	var peaks []Peak
	for i := 0; i < len(dy)-1; i++ {
		if dy[i] <= 0 {
			continue
		}
		switch {
		case dy[i+1] < 0:
			peaks = append(peaks, Peak{X: s[i+1].X, Y: s[i+1].Y, Index: i + 1})
		case dy[i+1] == 0:
			j := i + 1
			for j < len(dy) && dy[j] == 0 {
				j++
			}
			if j < len(dy) && dy[j] < 0 {
				peaks = append(peaks, Peak{X: s[i+1].X, Y: s[i+1].Y, Index: i + 1})
				i = j - 1
			}
		}
	}
	if len(peaks) == 0 {
		return []Peak{}
	}

	maxMag := peaks[0].Y
	for _, p := range peaks[1:] {
		if p.Y > maxMag {
			maxMag = p.Y
		}
	}
	threshold := maxMag * PeakThreshold

	significant := peaks[:0]
	for _, p := range peaks {
		if p.Y >= threshold {
			significant = append(significant, p)
		}
	}

	sort.SliceStable(significant, func(a, b int) bool {
		return significant[a].Y > significant[b].Y
	})
	if len(significant) > topN {
		significant = significant[:topN]
	}
	return significant
}
