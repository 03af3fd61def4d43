package handlers

import (
	"context"
	"testing"

	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalHandler_Synthesize(t *testing.T) {
	h := NewSignalHandler()

	resp, err := h.Synthesize(context.Background(), &models.SynthesizeRequest{
		Body: models.GeneratorBody{Shape: "sawtooth", FrequencyHz: 10, Amplitude: 2, DurationSec: 1, SampleRateHz: 100},
	})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Body.Count)
	assert.Len(t, resp.Body.Points, 100)

	_, err = h.Synthesize(context.Background(), &models.SynthesizeRequest{
		Body: models.GeneratorBody{Shape: "noise", FrequencyHz: 10, Amplitude: 2, DurationSec: 1, SampleRateHz: 100},
	})
	assert.Equal(t, 400, statusOf(t, err))

	_, err = h.Synthesize(context.Background(), &models.SynthesizeRequest{
		Body: models.GeneratorBody{Shape: "sine", FrequencyHz: 1, Amplitude: 1, DurationSec: 1e10, SampleRateHz: 1e10},
	})
	assert.Equal(t, 400, statusOf(t, err))
}

func TestSignalHandler_Analyze(t *testing.T) {
	h := NewSignalHandler()

	req := &models.AnalyzeRequest{}
	req.Body.Points = scope.Synthesize(scope.SynthesisConfig{
		Shape: scope.ShapeSine, FrequencyHz: 125, Amplitude: 1, DurationSec: 0.128, SampleRateHz: 1000,
	})
	resp, err := h.Analyze(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 64, resp.Body.Count)

	req.Body.Points = req.Body.Points[:1]
	_, err = h.Analyze(context.Background(), req)
	assert.Equal(t, 422, statusOf(t, err))
}

func TestSignalHandler_Decimate(t *testing.T) {
	h := NewSignalHandler()
	series := scope.DefaultSeries(1, 5000)

	req := &models.DecimateRequest{}
	req.Body.Points = series
	resp, err := h.Decimate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, scope.DefaultMaxPoints, resp.Body.Count)

	req.Body.Mode = "window"
	req.Body.MaxPoints = 10
	req.Body.Start = 5
	req.Body.UnitsPerDivision = 0.1
	resp, err = h.Decimate(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Body.Points)
	for _, p := range resp.Body.Points {
		assert.GreaterOrEqual(t, p.X, 5.0)
		assert.LessOrEqual(t, p.X, 6.0)
	}

	req.Body.Mode = "bogus"
	_, err = h.Decimate(context.Background(), req)
	assert.Equal(t, 400, statusOf(t, err))
}

func TestSignalHandler_Peaks(t *testing.T) {
	h := NewSignalHandler()

	req := &models.SignalPeaksRequest{}
	req.Body.Points = scope.Series{{X: 0, Y: 0}, {X: 1, Y: 3}, {X: 2, Y: 0}, {X: 3, Y: 5}, {X: 4, Y: 0}}
	resp, err := h.Peaks(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Body.Peaks, 2)
	assert.Equal(t, 3, resp.Body.Peaks[0].Index)
	assert.Equal(t, "3 Hz", resp.Body.Peaks[0].XLabel)

	req.Body.Top = 1
	req.Body.Domain = "time"
	resp, err = h.Peaks(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.Body.Peaks, 1)
	assert.Equal(t, "3 s", resp.Body.Peaks[0].XLabel)
}

func TestSignalHandler_Snap(t *testing.T) {
	resp, err := NewSignalHandler().Snap(context.Background(), &models.SnapRequest{Value: 0.0033, Unit: "s"})
	require.NoError(t, err)
	assert.Equal(t, 0.002, resp.Body.Snapped)
	assert.Equal(t, 0.005, resp.Body.StepUp)
	assert.Equal(t, 0.001, resp.Body.StepDown)
	assert.Equal(t, "2 ms", resp.Body.Label)
}
