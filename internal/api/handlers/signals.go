package handlers

import (
	"context"

	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
	"github.com/danielgtaylor/huma/v2"
)

const defaultPeakCount = 5

// SignalHandler exposes the signal core without any bench state
type SignalHandler struct{}

// NewSignalHandler creates a new signal handler
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{}
}

// Synthesize renders a waveform
func (h *SignalHandler) Synthesize(ctx context.Context, req *models.SynthesizeRequest) (*models.SeriesResponse, error) {
	cfg, err := req.Body.Config()
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error(), err)
	}
	return models.NewSeriesResponse(scope.Synthesize(cfg)), nil
}

// Analyze computes a magnitude spectrum
func (h *SignalHandler) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.SeriesResponse, error) {
	spectrum, err := scope.TryAnalyze(req.Body.Points, req.Body.SampleRateHz)
	if err != nil {
		return nil, serviceError(err, "")
	}
	return models.NewSeriesResponse(spectrum), nil
}

// Decimate reduces a series to a point budget
func (h *SignalHandler) Decimate(ctx context.Context, req *models.DecimateRequest) (*models.SeriesResponse, error) {
	mode, err := scope.ParseDecimationMode(req.Body.Mode)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid decimation mode", err)
	}
	maxPoints := req.Body.MaxPoints
	if maxPoints <= 0 {
		maxPoints = scope.DefaultMaxPoints
	}
	view := scope.View{
		Start:            req.Body.Start,
		UnitsPerDivision: req.Body.UnitsPerDivision,
		Divisions:        scope.HorizontalDivisions,
	}
	out := scope.NewDecimator(mode, view).Decimate(req.Body.Points, maxPoints)
	return models.NewSeriesResponse(out), nil
}

// Peaks finds the strongest local maxima of a series
func (h *SignalHandler) Peaks(ctx context.Context, req *models.SignalPeaksRequest) (*models.PeakListResponse, error) {
	top := req.Body.Top
	if top <= 0 {
		top = defaultPeakCount
	}
	d := scope.DomainFrequency
	if req.Body.Domain != "" {
		var err error
		if d, err = scope.ParseDomain(req.Body.Domain); err != nil {
			return nil, huma.Error400BadRequest("Invalid domain", err)
		}
	}

	resp := &models.PeakListResponse{}
	resp.Body.Peaks = models.NewPeakBodies(scope.FindPeaks(req.Body.Points, top), d)
	return resp, nil
}

// Snap quantizes a value onto the 1-2-5 sequence
func (h *SignalHandler) Snap(ctx context.Context, req *models.SnapRequest) (*models.SnapResponse, error) {
	snapped := scope.SnapToPreferred(req.Value)

	resp := &models.SnapResponse{}
	resp.Body.Value = req.Value
	resp.Body.Snapped = snapped
	resp.Body.StepUp = scope.StepUp(snapped)
	resp.Body.StepDown = scope.StepDown(snapped)
	resp.Body.Label = scope.FormatMetric(snapped, req.Unit)
	return resp, nil
}
