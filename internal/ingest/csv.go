package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/RMahshie/scopebench/pkg/scope"
)

// AutoColumn asks ParseCSV to choose the column itself.
const AutoColumn = -1

// Columns names the zero-based CSV columns holding time and value.
type Columns struct {
	Time  int `json:"time"`
	Value int `json:"value"`
}

// ParseCSV reads comma-separated rows and extracts (time, value) pairs.
//
// Auto-selected columns are the two with the most numeric cells: the densest
// is time, the runner-up is value. Rows where either cell is not a number are
// dropped, so header lines need no special handling. The result is sorted by
// time.
func ParseCSV(r io.Reader, cols Columns) (scope.Series, Columns, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, cols, fmt.Errorf("reading csv: %w", err)
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, cols, fmt.Errorf("%w: empty csv", ErrNoData)
	}

	cols = pickColumns(rows, cols)
	if cols.Time < 0 || cols.Value < 0 {
		return nil, cols, fmt.Errorf("%w: need two numeric columns", ErrNoData)
	}

	out := make(scope.Series, 0, len(rows))
	for _, row := range rows {
		if cols.Time >= len(row) || cols.Value >= len(row) {
			continue
		}
		t, ok := parseNumber(row[cols.Time])
		if !ok {
			continue
		}
		v, ok := parseNumber(row[cols.Value])
		if !ok {
			continue
		}
		out = append(out, scope.Sample{X: t, Y: v})
	}
	if len(out) == 0 {
		return nil, cols, fmt.Errorf("%w: no numeric rows in columns %d and %d", ErrNoData, cols.Time, cols.Value)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out, cols, nil
}

// pickColumns fills in any AutoColumn entries. A column with no numeric
// cells is never picked.
func pickColumns(rows [][]string, cols Columns) Columns {
	if cols.Time != AutoColumn && cols.Value != AutoColumn {
		return cols
	}

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	counts := make([]int, width)
	for _, row := range rows {
		for i, cell := range row {
			if _, ok := parseNumber(cell); ok {
				counts[i]++
			}
		}
	}

	order := make([]int, width)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return counts[order[a]] > counts[order[b]] })

	next := func(skip int) int {
		for _, i := range order {
			if i != skip && counts[i] > 0 {
				return i
			}
		}
		return -1
	}

	if cols.Time == AutoColumn {
		cols.Time = next(cols.Value)
	}
	if cols.Value == AutoColumn {
		cols.Value = next(cols.Time)
	}
	return cols
}

func parseNumber(cell string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Resample linearly interpolates s onto n evenly spaced times spanning its
// first to last X. s must be sorted by X. Inputs with fewer than two samples
// are returned as a copy; a zero-length time span repeats the first sample.
func Resample(s scope.Series, n int) scope.Series {
	if len(s) < 2 || n < 2 {
		return s.Clone()
	}

	start, end := s[0].X, s[len(s)-1].X
	duration := end - start
	out := make(scope.Series, n)
	if duration == 0 {
		for i := range out {
			out[i] = s[0]
		}
		return out
	}

	src := 0
	for i := range out {
		t := start + duration*float64(i)/float64(n-1)
		for src < len(s)-1 && s[src+1].X <= t {
			src++
		}
		p0 := s[src]
		if src == len(s)-1 {
			out[i] = scope.Sample{X: t, Y: p0.Y}
			continue
		}
		p1 := s[src+1]
		if p1.X == p0.X {
			out[i] = scope.Sample{X: t, Y: p0.Y}
			continue
		}
		frac := (t - p0.X) / (p1.X - p0.X)
		out[i] = scope.Sample{X: t, Y: p0.Y + (p1.Y-p0.Y)*frac}
	}
	return out
}
