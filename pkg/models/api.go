package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/RMahshie/scopebench/pkg/scope"
)

// MaxSynthesisSamples bounds duration*sampleRate for generator settings
// accepted over the API.
const MaxSynthesisSamples = 1 << 20

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// GeneratorBody is the wire form of a function generator setting
type GeneratorBody struct {
	Shape        string  `json:"shape" enum:"sine,square,triangle,sawtooth" required:"true" doc:"Waveform shape"`
	FrequencyHz  float64 `json:"frequency_hz" exclusiveMinimum:"0" required:"true" doc:"Frequency in Hz"`
	Amplitude    float64 `json:"amplitude" required:"true" doc:"Peak amplitude in volts"`
	DurationSec  float64 `json:"duration_sec" exclusiveMinimum:"0" required:"true" doc:"Capture length in seconds"`
	SampleRateHz float64 `json:"sample_rate_hz" exclusiveMinimum:"0" required:"true" doc:"Sample rate in Hz"`
}

// Config converts the body into a validated synthesis config
func (g GeneratorBody) Config() (scope.SynthesisConfig, error) {
	shape, err := scope.ParseShape(g.Shape)
	if err != nil {
		return scope.SynthesisConfig{}, err
	}
	cfg := scope.SynthesisConfig{
		Shape:        shape,
		FrequencyHz:  g.FrequencyHz,
		Amplitude:    g.Amplitude,
		DurationSec:  g.DurationSec,
		SampleRateHz: g.SampleRateHz,
	}
	if err := cfg.Validate(); err != nil {
		return scope.SynthesisConfig{}, err
	}
	if n := cfg.SampleCount(); n > MaxSynthesisSamples {
		return scope.SynthesisConfig{}, fmt.Errorf("%w: %d samples requested, limit is %d", scope.ErrInvalidConfig, n, MaxSynthesisSamples)
	}
	return cfg, nil
}

// NewGeneratorBody renders a synthesis config for responses
func NewGeneratorBody(c scope.SynthesisConfig) GeneratorBody {
	return GeneratorBody{
		Shape:        c.Shape.String(),
		FrequencyHz:  c.FrequencyHz,
		Amplitude:    c.Amplitude,
		DurationSec:  c.DurationSec,
		SampleRateHz: c.SampleRateHz,
	}
}

// RangeBody is one scale/offset pair with a readable scale label
type RangeBody struct {
	UnitsPerDivision float64 `json:"units_per_division" doc:"Vertical units per division"`
	Offset           float64 `json:"offset" doc:"Vertical offset in units"`
	Label            string  `json:"label" example:"2 V/div" doc:"Formatted scale"`
}

// NewRangeBody renders a vertical range with its V/div label
func NewRangeBody(r scope.Range) RangeBody {
	return RangeBody{
		UnitsPerDivision: r.UnitsPerDivision,
		Offset:           r.Offset,
		Label:            scope.FormatMetric(r.UnitsPerDivision, "V") + "/div",
	}
}

// ChannelBody is the wire form of a channel
type ChannelBody struct {
	ID            int           `json:"id" doc:"Channel index"`
	Color         string        `json:"color" doc:"Trace color"`
	Visible       bool          `json:"visible" doc:"Whether the trace is shown and auto-ranged"`
	Source        string        `json:"source" enum:"idle,live,static" doc:"Series source"`
	Time          RangeBody     `json:"time" doc:"Time-domain vertical range"`
	Frequency     RangeBody     `json:"frequency" doc:"Frequency-domain vertical range"`
	Generator     GeneratorBody `json:"generator" doc:"Function generator settings"`
	StaticSamples int           `json:"static_samples" doc:"Samples held by an imported capture"`
}

// TimebaseBody is the wire form of the shared horizontal scale
type TimebaseBody struct {
	TimePerDivision float64 `json:"time_per_division" doc:"Seconds per horizontal division"`
	TimeOffset      float64 `json:"time_offset" doc:"Horizontal time offset in seconds"`
	FreqPerDivision float64 `json:"freq_per_division" doc:"Hertz per horizontal division"`
	FreqOffset      float64 `json:"freq_offset" doc:"Horizontal frequency offset in hertz"`
	TimeLabel       string  `json:"time_label" example:"1 ms/div" doc:"Formatted time scale"`
	FreqLabel       string  `json:"freq_label" example:"200 Hz/div" doc:"Formatted frequency scale"`
}

// NewTimebaseBody renders the horizontal scale with its labels
func NewTimebaseBody(tb scope.Timebase) TimebaseBody {
	return TimebaseBody{
		TimePerDivision: tb.TimePerDivision,
		TimeOffset:      tb.TimeOffset,
		FreqPerDivision: tb.FreqPerDivision,
		FreqOffset:      tb.FreqOffset,
		TimeLabel:       scope.FormatMetric(tb.TimePerDivision, "s") + "/div",
		FreqLabel:       scope.FormatMetric(tb.FreqPerDivision, "Hz") + "/div",
	}
}

// BenchBody is the wire form of a bench
type BenchBody struct {
	ID           string        `json:"id" doc:"Bench unique identifier"`
	SessionID    string        `json:"session_id" doc:"Client session identifier"`
	Domain       string        `json:"domain" enum:"time,frequency" doc:"Active display domain"`
	Timebase     TimebaseBody  `json:"timebase" doc:"Shared horizontal scale"`
	TotalSamples int           `json:"total_samples" doc:"Samples in the idle trace"`
	Channels     []ChannelBody `json:"channels" doc:"The four input channels"`
	CreatedAt    time.Time     `json:"created_at" doc:"Bench creation timestamp"`
	UpdatedAt    time.Time     `json:"updated_at" doc:"Last change timestamp"`
}

// NewBenchBody renders a bench for responses
func NewBenchBody(b *Bench) BenchBody {
	body := BenchBody{
		ID:           b.ID,
		SessionID:    b.SessionID,
		Domain:       b.Domain.String(),
		Timebase:     NewTimebaseBody(b.Timebase),
		TotalSamples: b.TotalSamples,
		Channels:     make([]ChannelBody, len(b.Channels)),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
	for i, ch := range b.Channels {
		body.Channels[i] = ChannelBody{
			ID:            ch.ID,
			Color:         ch.Color,
			Visible:       ch.Visible,
			Source:        string(ch.Source),
			Time:          NewRangeBody(ch.Range(scope.DomainTime)),
			Frequency:     NewRangeBody(ch.Range(scope.DomainFrequency)),
			Generator:     NewGeneratorBody(ch.Generator),
			StaticSamples: len(ch.Static),
		}
	}
	return body
}

// BenchResponse returns a bench
type BenchResponse struct {
	Body BenchBody
}

// CreateBenchRequest represents a request to create a new bench
type CreateBenchRequest struct {
	Body struct {
		SessionID    string `json:"session_id" minLength:"10" maxLength:"50" required:"true" doc:"Client session identifier"`
		TotalSamples int    `json:"total_samples,omitempty" minimum:"1" maximum:"65536" doc:"Samples in the idle trace, server default when omitted"`
	}
}

// BenchPathRequest addresses a bench
type BenchPathRequest struct {
	ID string `path:"id" doc:"Bench ID"`
}

// SetDomainRequest switches the active display domain
type SetDomainRequest struct {
	ID   string `path:"id" doc:"Bench ID"`
	Body struct {
		Domain string `json:"domain" enum:"time,frequency" required:"true" doc:"Display domain"`
	}
}

// UpdateTimebaseRequest changes the shared horizontal scale. Per-division
// values are snapped to the 1-2-5 sequence.
type UpdateTimebaseRequest struct {
	ID   string `path:"id" doc:"Bench ID"`
	Body struct {
		TimePerDivision *float64 `json:"time_per_division,omitempty" exclusiveMinimum:"0" doc:"Seconds per division"`
		TimeOffset      *float64 `json:"time_offset,omitempty" doc:"Time offset in seconds"`
		FreqPerDivision *float64 `json:"freq_per_division,omitempty" exclusiveMinimum:"0" doc:"Hertz per division"`
		FreqOffset      *float64 `json:"freq_offset,omitempty" doc:"Frequency offset in hertz"`
		TotalSamples    *int     `json:"total_samples,omitempty" minimum:"1" maximum:"65536" doc:"Samples in the idle trace"`
	}
}

// ChannelPathRequest addresses a channel on a bench
type ChannelPathRequest struct {
	ID      string `path:"id" doc:"Bench ID"`
	Channel int    `path:"channel" minimum:"0" maximum:"3" doc:"Channel index"`
}

// UpdateChannelRequest changes a channel's display settings. Scales are
// snapped to the 1-2-5 sequence.
type UpdateChannelRequest struct {
	ID      string `path:"id" doc:"Bench ID"`
	Channel int    `path:"channel" minimum:"0" maximum:"3" doc:"Channel index"`
	Body    struct {
		Visible    *bool    `json:"visible,omitempty" doc:"Show the trace"`
		Color      *string  `json:"color,omitempty" pattern:"^#[0-9a-fA-F]{6}$" doc:"Trace color as #rrggbb"`
		Source     *string  `json:"source,omitempty" enum:"idle,live" doc:"Switch between the idle trace and the generator"`
		TimeScale  *float64 `json:"time_scale,omitempty" exclusiveMinimum:"0" doc:"Volts per division in the time domain"`
		TimeOffset *float64 `json:"time_offset,omitempty" doc:"Vertical offset in the time domain"`
		FreqScale  *float64 `json:"freq_scale,omitempty" exclusiveMinimum:"0" doc:"Units per division in the frequency domain"`
		FreqOffset *float64 `json:"freq_offset,omitempty" doc:"Vertical offset in the frequency domain"`
	}
}

// SetGeneratorRequest configures a channel's function generator and makes
// the channel live
type SetGeneratorRequest struct {
	ID      string `path:"id" doc:"Bench ID"`
	Channel int    `path:"channel" minimum:"0" maximum:"3" doc:"Channel index"`
	Body    GeneratorBody
}

// LoadPresetRequest loads a predefined test setup
type LoadPresetRequest struct {
	ID     string `path:"id" doc:"Bench ID"`
	Preset int    `path:"preset" enum:"1,2" doc:"Preset number"`
}

// TraceRequest asks for a render-bounded trace of one channel
type TraceRequest struct {
	ID        string `path:"id" doc:"Bench ID"`
	Channel   int    `path:"channel" minimum:"0" maximum:"3" doc:"Channel index"`
	Domain    string `query:"domain" enum:"time,frequency" doc:"Domain, defaults to the bench domain"`
	Mode      string `query:"mode" enum:"stride,window" default:"stride" doc:"Decimation strategy"`
	MaxPoints int    `query:"max_points" minimum:"0" maximum:"100000" doc:"Point budget, server default when 0"`
}

// TraceBody is a decimated trace with its grid coordinates
type TraceBody struct {
	BenchID      string            `json:"bench_id" doc:"Bench ID"`
	Channel      int               `json:"channel" doc:"Channel index"`
	Domain       string            `json:"domain" doc:"Domain of the trace"`
	Mode         string            `json:"mode" doc:"Decimation strategy used"`
	SourcePoints int               `json:"source_points" doc:"Samples before decimation"`
	Points       []scope.Sample    `json:"points" doc:"Decimated samples"`
	Grid         []scope.GridPoint `json:"grid" doc:"Samples mapped to display divisions"`
}

// TraceResponse returns a trace
type TraceResponse struct {
	Body TraceBody
}

// PeaksRequest asks for the strongest peaks of one channel
type PeaksRequest struct {
	ID      string `path:"id" doc:"Bench ID"`
	Channel int    `path:"channel" minimum:"0" maximum:"3" doc:"Channel index"`
	Domain  string `query:"domain" enum:"time,frequency" default:"frequency" doc:"Domain to search"`
	Top     int    `query:"top" minimum:"1" maximum:"100" default:"5" doc:"Maximum peaks returned"`
}

// PeakBody is one peak with formatted coordinates
type PeakBody struct {
	X      float64 `json:"x" doc:"Position in seconds or hertz"`
	Y      float64 `json:"y" doc:"Height in volts or magnitude"`
	Index  int     `json:"index" doc:"Sample index"`
	XLabel string  `json:"x_label" example:"1 kHz" doc:"Formatted position"`
	YLabel string  `json:"y_label" example:"2.5 V" doc:"Formatted height, unitless for spectrum magnitudes"`
}

// AxisUnits returns the x and y units of domain d. Spectrum magnitudes are
// unitless.
func AxisUnits(d scope.Domain) (x, y string) {
	if d == scope.DomainFrequency {
		return "Hz", ""
	}
	return "s", "V"
}

// Label formats v with an SI prefix and an optional unit
func Label(v float64, unit string) string {
	return strings.TrimSpace(scope.FormatMetric(v, unit))
}

// NewPeakBodies formats peaks found in domain d
func NewPeakBodies(peaks []scope.Peak, d scope.Domain) []PeakBody {
	xUnit, yUnit := AxisUnits(d)
	out := make([]PeakBody, len(peaks))
	for i, p := range peaks {
		out[i] = PeakBody{
			X:      p.X,
			Y:      p.Y,
			Index:  p.Index,
			XLabel: Label(p.X, xUnit),
			YLabel: Label(p.Y, yUnit),
		}
	}
	return out
}

// PeakListResponse returns peaks
type PeakListResponse struct {
	Body struct {
		Peaks []PeakBody `json:"peaks" doc:"Peaks sorted by height, tallest first"`
	}
}

// CursorRequest reads one sample of a channel
type CursorRequest struct {
	ID      string `path:"id" doc:"Bench ID"`
	Channel int    `path:"channel" minimum:"0" maximum:"3" doc:"Channel index"`
	Domain  string `query:"domain" enum:"time,frequency" doc:"Domain, defaults to the bench domain"`
	Index   int    `query:"index" minimum:"0" doc:"Sample index"`
}

// CursorResponse is a cursor readout
type CursorResponse struct {
	Body struct {
		Index  int             `json:"index" doc:"Sample index"`
		Sample scope.Sample    `json:"sample" doc:"Sample at the cursor"`
		Grid   scope.GridPoint `json:"grid" doc:"Cursor position in divisions"`
		OnGrid bool            `json:"on_grid" doc:"Whether the cursor is on screen"`
		XLabel string          `json:"x_label" doc:"Formatted position"`
		YLabel string          `json:"y_label" doc:"Formatted value"`
	}
}

// CreateImportRequest represents a request to import a capture onto a channel
type CreateImportRequest struct {
	ID   string `path:"id" doc:"Bench ID"`
	Body struct {
		Channel     int    `json:"channel" minimum:"0" maximum:"3" required:"true" doc:"Target channel"`
		Format      string `json:"format" enum:"csv,wav" required:"true" doc:"Capture format"`
		FileSize    int64  `json:"file_size" minimum:"1" maximum:"20971520" required:"true" doc:"Capture size in bytes"`
		TimeColumn  *int   `json:"time_column,omitempty" minimum:"0" doc:"CSV time column, auto-detected when omitted"`
		ValueColumn *int   `json:"value_column,omitempty" minimum:"0" doc:"CSV value column, auto-detected when omitted"`
		WAVChannel  int    `json:"wav_channel,omitempty" minimum:"0" doc:"WAV channel to read"`
		Content     []byte `json:"content,omitempty" doc:"Inline capture bytes; skips the presigned upload"`
	}
}

// CreateImportResponseBody is the body of the create import response
type CreateImportResponseBody struct {
	ID        string `json:"id" doc:"Import unique identifier"`
	Status    string `json:"status" enum:"pending,processing,completed,failed" doc:"Import status"`
	UploadURL string `json:"upload_url,omitempty" doc:"Pre-signed URL for the capture upload"`
	ExpiresIn int    `json:"expires_in,omitempty" doc:"URL expiration time in seconds"`
}

// CreateImportResponse represents the response from creating an import
type CreateImportResponse struct {
	Body CreateImportResponseBody
}

// StartProcessingRequest represents a request to start processing an uploaded capture
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Import ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// GetImportStatusRequest represents a request to get import status
type GetImportStatusRequest struct {
	ID string `path:"id" doc:"Import ID"`
}

// GetImportStatusResponseBody is the body of the status response
type GetImportStatusResponseBody struct {
	ID            string `json:"id" doc:"Import ID"`
	BenchID       string `json:"bench_id" doc:"Bench the capture lands on"`
	Channel       int    `json:"channel" doc:"Target channel"`
	Status        string `json:"status" enum:"pending,processing,completed,failed" doc:"Import status"`
	Progress      int    `json:"progress" minimum:"0" maximum:"100" doc:"Import progress percentage"`
	Message       string `json:"message,omitempty" doc:"Human-readable status message"`
	SourceSamples int    `json:"source_samples,omitempty" doc:"Samples read from the capture"`
	DownloadURL   string `json:"download_url,omitempty" doc:"Pre-signed URL of the raw capture"`
}

// GetImportStatusResponse represents the current status of an import
type GetImportStatusResponse struct {
	Body GetImportStatusResponseBody
}

// SynthesizeRequest renders a waveform without touching a bench
type SynthesizeRequest struct {
	Body GeneratorBody
}

// SeriesResponse returns a series
type SeriesResponse struct {
	Body struct {
		Count  int            `json:"count" doc:"Number of samples"`
		Points []scope.Sample `json:"points" doc:"Samples in order"`
	}
}

// NewSeriesResponse wraps s
func NewSeriesResponse(s scope.Series) *SeriesResponse {
	resp := &SeriesResponse{}
	resp.Body.Count = len(s)
	resp.Body.Points = s
	if resp.Body.Points == nil {
		resp.Body.Points = []scope.Sample{}
	}
	return resp
}

// AnalyzeRequest computes the spectrum of a series
type AnalyzeRequest struct {
	Body struct {
		Points       []scope.Sample `json:"points" maxItems:"1048576" required:"true" doc:"Time-domain samples"`
		SampleRateHz float64        `json:"sample_rate_hz,omitempty" minimum:"0" doc:"Sample rate, inferred from the first two samples when omitted"`
	}
}

// DecimateRequest reduces a series to a point budget
type DecimateRequest struct {
	Body struct {
		Points           []scope.Sample `json:"points" maxItems:"1048576" required:"true" doc:"Samples to reduce"`
		MaxPoints        int            `json:"max_points,omitempty" minimum:"1" maximum:"100000" doc:"Point budget, 1000 when omitted"`
		Mode             string         `json:"mode,omitempty" enum:"stride,window" doc:"Decimation strategy, stride when omitted"`
		Start            float64        `json:"start,omitempty" doc:"Window start for window mode"`
		UnitsPerDivision float64        `json:"units_per_division,omitempty" minimum:"0" doc:"Window scale for window mode"`
	}
}

// SignalPeaksRequest finds peaks in a series
type SignalPeaksRequest struct {
	Body struct {
		Points []scope.Sample `json:"points" maxItems:"1048576" required:"true" doc:"Samples to search"`
		Top    int            `json:"top,omitempty" minimum:"1" maximum:"100" doc:"Maximum peaks returned, 5 when omitted"`
		Domain string         `json:"domain,omitempty" enum:"time,frequency" doc:"Domain used for labels, frequency when omitted"`
	}
}

// SnapRequest quantizes a value onto the 1-2-5 sequence
type SnapRequest struct {
	Value float64 `query:"value" required:"true" exclusiveMinimum:"0" doc:"Value to snap"`
	Unit  string  `query:"unit" maxLength:"4" doc:"Unit for the label"`
}

// SnapResponse is a snapped value with its neighbours
type SnapResponse struct {
	Body struct {
		Value    float64 `json:"value" doc:"Requested value"`
		Snapped  float64 `json:"snapped" doc:"Closest preferred step"`
		StepUp   float64 `json:"step_up" doc:"Next larger step"`
		StepDown float64 `json:"step_down" doc:"Next smaller step"`
		Label    string  `json:"label" example:"2 ms" doc:"Formatted snapped value"`
	}
}
