package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

type seriesOut struct {
	Count  int `json:"count"`
	Points []struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"points"`
}

func TestSynth(t *testing.T) {
	out, err := run(t, "synth")
	require.NoError(t, err)

	var s seriesOut
	require.NoError(t, json.Unmarshal(out, &s))
	// 10 ms at 100 kHz
	assert.Equal(t, 1000, s.Count)

	out, err = run(t, "synth", "--shape", "square", "--freq", "10Hz", "--rate", "100 Hz", "--duration", "1s", "--amp", "2V")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &s))
	assert.Equal(t, 100, s.Count)
	for _, p := range s.Points {
		assert.Contains(t, []float64{-2, 2}, p.Y)
	}
}

func TestSynth_InvalidFlags(t *testing.T) {
	_, err := run(t, "synth", "--shape", "noise")
	assert.Error(t, err)

	_, err = run(t, "synth", "--freq", "fast")
	assert.ErrorContains(t, err, "--freq")

	_, err = run(t, "synth", "--rate", "0")
	assert.Error(t, err)
}

func TestSpectrum(t *testing.T) {
	out, err := run(t, "spectrum", "--freq", "125 Hz", "--rate", "1 kHz", "--duration", "128 ms")
	require.NoError(t, err)

	var s seriesOut
	require.NoError(t, json.Unmarshal(out, &s))
	require.Equal(t, 64, s.Count)

	best := 0
	for i, p := range s.Points {
		if p.Y > s.Points[best].Y {
			best = i
		}
	}
	assert.Equal(t, 125.0, s.Points[best].X)
}

func TestPeaks(t *testing.T) {
	out, err := run(t, "peaks", "--top", "1")
	require.NoError(t, err)

	var resp struct {
		Peaks []struct {
			X      float64 `json:"x"`
			XLabel string  `json:"x_label"`
		} `json:"peaks"`
	}
	require.NoError(t, json.Unmarshal(out, &resp))
	require.Len(t, resp.Peaks, 1)
	// 1024-point spectrum at 100 kHz has ~98 Hz bins
	assert.InDelta(t, 1000, resp.Peaks[0].X, 100)
	assert.True(t, strings.HasSuffix(resp.Peaks[0].XLabel, "Hz"))

	_, err = run(t, "peaks", "--domain", "phase")
	assert.Error(t, err)
}

func TestDecimate(t *testing.T) {
	out, err := run(t, "decimate", "--max-points", "10")
	require.NoError(t, err)

	var s seriesOut
	require.NoError(t, json.Unmarshal(out, &s))
	assert.Equal(t, 10, s.Count)

	out, err = run(t, "decimate", "--mode", "window", "--start", "2ms", "--per-div", "100us", "--max-points", "50")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(out, &s))
	require.NotEmpty(t, s.Points)
	for _, p := range s.Points {
		assert.GreaterOrEqual(t, p.X, 0.002-1e-12)
		assert.LessOrEqual(t, p.X, 0.003+1e-12)
	}

	_, err = run(t, "decimate", "--mode", "bogus")
	assert.Error(t, err)
}

func TestAutoRange(t *testing.T) {
	out, err := run(t, "autorange")
	require.NoError(t, err)

	var resp struct {
		Timebase struct {
			TimePerDivision float64 `json:"time_per_division"`
		} `json:"timebase"`
		Time struct {
			UnitsPerDivision float64 `json:"units_per_division"`
			Label            string  `json:"label"`
		} `json:"time"`
	}
	require.NoError(t, json.Unmarshal(out, &resp))
	// 10 V peak to peak over 4.8 divisions
	assert.Equal(t, 2.0, resp.Time.UnitsPerDivision)
	assert.Equal(t, "2 V/div", resp.Time.Label)
	assert.Equal(t, 0.001, resp.Timebase.TimePerDivision)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.csv")
	var b strings.Builder
	b.WriteString("time,volts\n")
	for i := 0; i < 20; i++ {
		b.WriteString(strings.Join([]string{
			jsonNumber(float64(i) * 0.001),
			jsonNumber(float64(i % 4)),
		}, ",") + "\n")
	}
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	out, err := run(t, "import", path, "--points", "8")
	require.NoError(t, err)

	var resp struct {
		Format        string `json:"format"`
		SourceSamples int    `json:"source_samples"`
		Columns       *struct {
			Time  int `json:"time"`
			Value int `json:"value"`
		} `json:"columns"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, "csv", resp.Format)
	assert.Equal(t, 20, resp.SourceSamples)
	assert.Equal(t, 8, resp.Count)
	require.NotNil(t, resp.Columns)
	assert.Equal(t, 0, resp.Columns.Time)
	assert.Equal(t, 1, resp.Columns.Value)

	// the capture also feeds the analysis commands
	out, err = run(t, "spectrum", "--in", path, "--points", "16")
	require.NoError(t, err)
	var s seriesOut
	require.NoError(t, json.Unmarshal(out, &s))
	assert.Equal(t, 8, s.Count)
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "capture.txt")
	require.NoError(t, os.WriteFile(txt, []byte("1,2\n"), 0o600))

	_, err := run(t, "import", txt)
	assert.Error(t, err)

	_, err = run(t, "import", filepath.Join(dir, "missing.csv"))
	assert.ErrorContains(t, err, "open capture")

	_, err = run(t, "import")
	assert.Error(t, err)
}

func TestSnap(t *testing.T) {
	out, err := run(t, "snap", "3.3ms", "--unit", "s")
	require.NoError(t, err)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(out, &resp))
	assert.Equal(t, 0.002, resp["snapped"])
	assert.Equal(t, 0.005, resp["step_up"])
	assert.Equal(t, 0.001, resp["step_down"])
	assert.Equal(t, "2 ms", resp["label"])
}

func jsonNumber(v float64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
