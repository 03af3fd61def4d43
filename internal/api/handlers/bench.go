package handlers

import (
	"context"

	"github.com/RMahshie/scopebench/internal/processing"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
	"github.com/danielgtaylor/huma/v2"
	"github.com/rs/zerolog/log"
)

// BenchHandler handles bench-related HTTP requests
type BenchHandler struct {
	benches processing.BenchService
}

// NewBenchHandler creates a new bench handler
func NewBenchHandler(benches processing.BenchService) *BenchHandler {
	return &BenchHandler{benches: benches}
}

func benchResponse(b *models.Bench) *models.BenchResponse {
	return &models.BenchResponse{Body: models.NewBenchBody(b)}
}

// CreateBench creates a bench in its power-on state
func (h *BenchHandler) CreateBench(ctx context.Context, req *models.CreateBenchRequest) (*models.BenchResponse, error) {
	log.Info().Str("sessionID", req.Body.SessionID).Int("totalSamples", req.Body.TotalSamples).Msg("Creating new bench")

	bench, err := h.benches.Create(ctx, req.Body.SessionID, req.Body.TotalSamples)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to create bench", err)
	}
	return benchResponse(bench), nil
}

// GetBench returns a bench
func (h *BenchHandler) GetBench(ctx context.Context, req *models.BenchPathRequest) (*models.BenchResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	bench, err := h.benches.Get(ctx, id)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}
	return benchResponse(bench), nil
}

// SetDomain switches between the time and frequency displays
func (h *BenchHandler) SetDomain(ctx context.Context, req *models.SetDomainRequest) (*models.BenchResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	d, err := scope.ParseDomain(req.Body.Domain)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid domain", err)
	}
	bench, err := h.benches.SetDomain(ctx, id, d)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}
	return benchResponse(bench), nil
}

// UpdateTimebase changes the shared horizontal scale
func (h *BenchHandler) UpdateTimebase(ctx context.Context, req *models.UpdateTimebaseRequest) (*models.BenchResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	bench, err := h.benches.UpdateTimebase(ctx, id, processing.TimebaseUpdate{
		TimePerDivision: req.Body.TimePerDivision,
		TimeOffset:      req.Body.TimeOffset,
		FreqPerDivision: req.Body.FreqPerDivision,
		FreqOffset:      req.Body.FreqOffset,
		TotalSamples:    req.Body.TotalSamples,
	})
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}
	return benchResponse(bench), nil
}

// UpdateChannel changes one channel's display settings
func (h *BenchHandler) UpdateChannel(ctx context.Context, req *models.UpdateChannelRequest) (*models.BenchResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	u := processing.ChannelUpdate{
		Visible:    req.Body.Visible,
		Color:      req.Body.Color,
		TimeScale:  req.Body.TimeScale,
		TimeOffset: req.Body.TimeOffset,
		FreqScale:  req.Body.FreqScale,
		FreqOffset: req.Body.FreqOffset,
	}
	if req.Body.Source != nil {
		src := models.ChannelSource(*req.Body.Source)
		u.Source = &src
	}
	bench, err := h.benches.UpdateChannel(ctx, id, req.Channel, u)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}
	return benchResponse(bench), nil
}

// SetGenerator configures a channel's function generator
func (h *BenchHandler) SetGenerator(ctx context.Context, req *models.SetGeneratorRequest) (*models.BenchResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	cfg, err := req.Body.Config()
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error(), err)
	}
	log.Info().
		Str("benchID", req.ID).
		Int("channel", req.Channel).
		Str("shape", cfg.Shape.String()).
		Float64("frequencyHz", cfg.FrequencyHz).
		Msg("Setting generator")

	bench, err := h.benches.SetGenerator(ctx, id, req.Channel, cfg)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}
	return benchResponse(bench), nil
}

// AutoRange fits the visible channels onto the grid
func (h *BenchHandler) AutoRange(ctx context.Context, req *models.BenchPathRequest) (*models.BenchResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	bench, err := h.benches.AutoRange(ctx, id)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}
	return benchResponse(bench), nil
}

// LoadPreset loads one of the predefined test setups
func (h *BenchHandler) LoadPreset(ctx context.Context, req *models.LoadPresetRequest) (*models.BenchResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	bench, err := h.benches.LoadPreset(ctx, id, req.Preset)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}
	return benchResponse(bench), nil
}

// GetTrace returns a decimated channel trace
func (h *BenchHandler) GetTrace(ctx context.Context, req *models.TraceRequest) (*models.TraceResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	d, err := optionalDomain(req.Domain)
	if err != nil {
		return nil, err
	}
	mode, err := scope.ParseDecimationMode(req.Mode)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid decimation mode", err)
	}

	tr, err := h.benches.Trace(ctx, id, req.Channel, processing.TraceOptions{
		Domain:    d,
		Mode:      mode,
		MaxPoints: req.MaxPoints,
	})
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}

	points := tr.Points
	if points == nil {
		points = scope.Series{}
	}
	return &models.TraceResponse{
		Body: models.TraceBody{
			BenchID:      req.ID,
			Channel:      req.Channel,
			Domain:       tr.Domain.String(),
			Mode:         string(tr.Mode),
			SourcePoints: tr.SourcePoints,
			Points:       points,
			Grid:         tr.Grid,
		},
	}, nil
}

// GetPeaks returns the strongest peaks of a channel
func (h *BenchHandler) GetPeaks(ctx context.Context, req *models.PeaksRequest) (*models.PeakListResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	d, err := scope.ParseDomain(req.Domain)
	if err != nil {
		return nil, huma.Error400BadRequest("Invalid domain", err)
	}
	peaks, err := h.benches.Peaks(ctx, id, req.Channel, d, req.Top)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}

	resp := &models.PeakListResponse{}
	resp.Body.Peaks = models.NewPeakBodies(peaks, d)
	return resp, nil
}

// GetCursor reads one sample of a channel
func (h *BenchHandler) GetCursor(ctx context.Context, req *models.CursorRequest) (*models.CursorResponse, error) {
	id, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	d, err := optionalDomain(req.Domain)
	if err != nil {
		return nil, err
	}
	c, err := h.benches.Cursor(ctx, id, req.Channel, d, req.Index)
	if err != nil {
		return nil, serviceError(err, "Bench not found")
	}

	xUnit, yUnit := models.AxisUnits(c.Domain)
	resp := &models.CursorResponse{}
	resp.Body.Index = c.Index
	resp.Body.Sample = c.Sample
	resp.Body.Grid = c.Grid
	resp.Body.OnGrid = c.Grid.OnGrid()
	resp.Body.XLabel = models.Label(c.Sample.X, xUnit)
	resp.Body.YLabel = models.Label(c.Sample.Y, yUnit)
	return resp, nil
}
