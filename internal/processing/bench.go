package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

var (
	// ErrUnknownPreset is returned for preset numbers other than 1 and 2
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrIndexOutOfRange is returned when a cursor points past the series
	ErrIndexOutOfRange = errors.New("index out of range")
)

// TimebaseUpdate carries the timebase fields to change. Nil fields are kept.
type TimebaseUpdate struct {
	TimePerDivision *float64
	TimeOffset      *float64
	FreqPerDivision *float64
	FreqOffset      *float64
	TotalSamples    *int
}

// ChannelUpdate carries the channel fields to change. Nil fields are kept.
type ChannelUpdate struct {
	Visible    *bool
	Color      *string
	Source     *models.ChannelSource
	TimeScale  *float64
	TimeOffset *float64
	FreqScale  *float64
	FreqOffset *float64
}

// TraceOptions selects how a trace is rendered. A nil Domain means the
// bench's active domain; MaxPoints <= 0 means the service default.
type TraceOptions struct {
	Domain    *scope.Domain
	Mode      scope.DecimationMode
	MaxPoints int
}

// Trace is a decimated channel series with grid coordinates
type Trace struct {
	Domain       scope.Domain
	Mode         scope.DecimationMode
	SourcePoints int
	Points       scope.Series
	Grid         []scope.GridPoint
}

// CursorReadout is one sample of a channel and where it sits on the grid
type CursorReadout struct {
	Domain scope.Domain
	Index  int
	Sample scope.Sample
	Grid   scope.GridPoint
}

// Snapshot is the resolved signal state of a bench: one time series and one
// spectrum per channel, indexed like the bench channels.
type Snapshot struct {
	Bench     *models.Bench
	Time      []scope.Series
	Frequency []scope.Series
}

// BenchService owns bench state changes and the signal computations on top
// of them
type BenchService interface {
	Create(ctx context.Context, sessionID string, totalSamples int) (*models.Bench, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Bench, error)
	SetDomain(ctx context.Context, id uuid.UUID, d scope.Domain) (*models.Bench, error)
	UpdateTimebase(ctx context.Context, id uuid.UUID, u TimebaseUpdate) (*models.Bench, error)
	UpdateChannel(ctx context.Context, id uuid.UUID, channel int, u ChannelUpdate) (*models.Bench, error)
	SetGenerator(ctx context.Context, id uuid.UUID, channel int, cfg scope.SynthesisConfig) (*models.Bench, error)
	SetStatic(ctx context.Context, id uuid.UUID, channel int, s scope.Series) (*models.Bench, error)
	AutoRange(ctx context.Context, id uuid.UUID) (*models.Bench, error)
	LoadPreset(ctx context.Context, id uuid.UUID, preset int) (*models.Bench, error)
	Snapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	Trace(ctx context.Context, id uuid.UUID, channel int, opts TraceOptions) (*Trace, error)
	Peaks(ctx context.Context, id uuid.UUID, channel int, d scope.Domain, top int) ([]scope.Peak, error)
	Cursor(ctx context.Context, id uuid.UUID, channel int, d *scope.Domain, index int) (*CursorReadout, error)
}

// BenchConfig holds the service defaults
type BenchConfig struct {
	DefaultTotalSamples int
	MaxDisplayPoints    int
}

type benchService struct {
	repo     repository.BenchRepository
	animator *Animator
	cfg      BenchConfig

	locks sync.Map // bench id -> *sync.Mutex
}

// NewBenchService creates a bench service. animator may be nil, in which
// case live channels always render at phase zero.
func NewBenchService(repo repository.BenchRepository, animator *Animator, cfg BenchConfig) BenchService {
	if cfg.DefaultTotalSamples <= 0 {
		cfg.DefaultTotalSamples = 1024
	}
	if cfg.MaxDisplayPoints <= 0 {
		cfg.MaxDisplayPoints = scope.DefaultMaxPoints
	}
	return &benchService{repo: repo, animator: animator, cfg: cfg}
}

func (s *benchService) Create(ctx context.Context, sessionID string, totalSamples int) (*models.Bench, error) {
	if totalSamples <= 0 {
		totalSamples = s.cfg.DefaultTotalSamples
	}
	bench := models.NewBench(sessionID, totalSamples)
	if err := s.repo.Create(ctx, bench); err != nil {
		return nil, fmt.Errorf("failed to create bench: %w", err)
	}
	log.Info().Str("benchID", bench.ID).Str("sessionID", sessionID).Int("totalSamples", totalSamples).Msg("Bench created")
	return bench, nil
}

func (s *benchService) Get(ctx context.Context, id uuid.UUID) (*models.Bench, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *benchService) SetDomain(ctx context.Context, id uuid.UUID, d scope.Domain) (*models.Bench, error) {
	return s.mutate(ctx, id, func(b *models.Bench) error {
		b.Domain = d
		return nil
	})
}

func (s *benchService) UpdateTimebase(ctx context.Context, id uuid.UUID, u TimebaseUpdate) (*models.Bench, error) {
	return s.mutate(ctx, id, func(b *models.Bench) error {
		if u.TimePerDivision != nil {
			b.Timebase.TimePerDivision = scope.SnapToPreferred(*u.TimePerDivision)
		}
		if u.TimeOffset != nil {
			b.Timebase.TimeOffset = *u.TimeOffset
		}
		if u.FreqPerDivision != nil {
			b.Timebase.FreqPerDivision = scope.SnapToPreferred(*u.FreqPerDivision)
		}
		if u.FreqOffset != nil {
			b.Timebase.FreqOffset = *u.FreqOffset
		}
		if u.TotalSamples != nil {
			if *u.TotalSamples <= 0 {
				return fmt.Errorf("%w: total samples must be positive", scope.ErrInvalidConfig)
			}
			b.TotalSamples = *u.TotalSamples
		}
		return nil
	})
}

func (s *benchService) UpdateChannel(ctx context.Context, id uuid.UUID, channel int, u ChannelUpdate) (*models.Bench, error) {
	return s.mutate(ctx, id, func(b *models.Bench) error {
		ch, err := b.Channel(channel)
		if err != nil {
			return err
		}
		if u.Visible != nil {
			ch.Visible = *u.Visible
		}
		if u.Color != nil {
			ch.Color = *u.Color
		}
		if u.Source != nil {
			switch *u.Source {
			case models.SourceIdle:
				ch.Source = models.SourceIdle
				ch.Static = nil
			case models.SourceLive:
				ch.Source = models.SourceLive
				ch.Static = nil
			default:
				return fmt.Errorf("%w: channel source %q cannot be set directly", scope.ErrInvalidConfig, *u.Source)
			}
		}
		ch.ChannelRange = applyRange(ch.ChannelRange, scope.DomainTime, u.TimeScale, u.TimeOffset)
		ch.ChannelRange = applyRange(ch.ChannelRange, scope.DomainFrequency, u.FreqScale, u.FreqOffset)
		return nil
	})
}

func applyRange(cr scope.ChannelRange, d scope.Domain, scale, offset *float64) scope.ChannelRange {
	r := cr.Range(d)
	if scale != nil {
		r.UnitsPerDivision = scope.SnapToPreferred(*scale)
	}
	if offset != nil {
		r.Offset = *offset
	}
	return cr.WithRange(d, r)
}

func (s *benchService) SetGenerator(ctx context.Context, id uuid.UUID, channel int, cfg scope.SynthesisConfig) (*models.Bench, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(b *models.Bench) error {
		ch, err := b.Channel(channel)
		if err != nil {
			return err
		}
		ch.Generator = cfg
		ch.Source = models.SourceLive
		ch.Static = nil
		return nil
	})
}

// SetStatic places an imported capture on a channel and shows it
func (s *benchService) SetStatic(ctx context.Context, id uuid.UUID, channel int, series scope.Series) (*models.Bench, error) {
	return s.mutate(ctx, id, func(b *models.Bench) error {
		ch, err := b.Channel(channel)
		if err != nil {
			return err
		}
		ch.Source = models.SourceStatic
		ch.Static = series.Clone()
		ch.Visible = true
		return nil
	})
}

func (s *benchService) AutoRange(ctx context.Context, id uuid.UUID) (*models.Bench, error) {
	return s.mutate(ctx, id, func(b *models.Bench) error {
		s.autoRange(b)
		return nil
	})
}

func (s *benchService) autoRange(b *models.Bench) {
	snap := s.resolve(b)
	res := scope.AutoRange(scope.AutoRangeInput{
		Domain:    b.Domain,
		Timebase:  b.Timebase,
		Channels:  b.ChannelRanges(),
		Time:      snap.Time,
		Frequency: snap.Frequency,
	})
	b.Timebase = res.Timebase
	for i := range b.Channels {
		b.Channels[i].ChannelRange = res.Channels[i]
	}
	log.Info().
		Str("benchID", b.ID).
		Str("domain", b.Domain.String()).
		Ints("active", res.Active).
		Float64("timePerDivision", b.Timebase.TimePerDivision).
		Float64("freqPerDivision", b.Timebase.FreqPerDivision).
		Msg("Auto-range applied")
}

func (s *benchService) LoadPreset(ctx context.Context, id uuid.UUID, preset int) (*models.Bench, error) {
	generators, err := presetGenerators(preset)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(b *models.Bench) error {
		for i := range b.Channels {
			if i >= len(generators) {
				break
			}
			ch := &b.Channels[i]
			ch.Generator = generators[i]
			ch.Source = models.SourceLive
			ch.Static = nil
			ch.Visible = true
		}
		s.autoRange(b)
		log.Info().Str("benchID", b.ID).Int("preset", preset).Msg("Preset loaded")
		return nil
	})
}

// presetGenerators returns the per-channel generator settings of a preset.
// Preset 1 renders 100 periods at 100 samples per period around 1 kHz;
// preset 2 renders 10 ms at 100 kHz for every channel.
func presetGenerators(preset int) ([]scope.SynthesisConfig, error) {
	switch preset {
	case 1:
		shapes := []scope.Shape{scope.ShapeSine, scope.ShapeTriangle, scope.ShapeSquare, scope.ShapeSawtooth}
		freqs := []float64{1000, 950, 1050, 1000}
		out := make([]scope.SynthesisConfig, len(shapes))
		for i := range shapes {
			out[i] = scope.SynthesisConfig{
				Shape:        shapes[i],
				FrequencyHz:  freqs[i],
				Amplitude:    5,
				DurationSec:  100 / freqs[i],
				SampleRateHz: 100 * freqs[i],
			}
		}
		return out, nil
	case 2:
		shapes := []scope.Shape{scope.ShapeSine, scope.ShapeSquare, scope.ShapeTriangle, scope.ShapeSine}
		out := make([]scope.SynthesisConfig, len(shapes))
		for i, shape := range shapes {
			out[i] = models.DefaultGenerator()
			out[i].Shape = shape
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownPreset, preset)
	}
}

func (s *benchService) Snapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolve(b), nil
}

// resolve builds every channel's time series from its source and analyzes
// them concurrently
func (s *benchService) resolve(b *models.Bench) *Snapshot {
	snap := &Snapshot{Bench: b, Time: make([]scope.Series, len(b.Channels))}
	for i := range b.Channels {
		snap.Time[i] = s.channelSeries(b, &b.Channels[i])
	}
	snap.Frequency = iter.Map(snap.Time, func(ts *scope.Series) scope.Series {
		return scope.Analyze(*ts, 0)
	})
	return snap
}

func (s *benchService) channelSeries(b *models.Bench, ch *models.Channel) scope.Series {
	switch ch.Source {
	case models.SourceLive:
		cfg := ch.Generator
		cfg.PhaseRad = scope.PhaseAt(cfg.FrequencyHz, s.elapsed(b.ID))
		return scope.Synthesize(cfg)
	case models.SourceStatic:
		return ch.Static
	default:
		return scope.DefaultSeries(b.Timebase.TimePerDivision, b.TotalSamples)
	}
}

func (s *benchService) domainSeries(b *models.Bench, ch *models.Channel, d scope.Domain) scope.Series {
	ts := s.channelSeries(b, ch)
	if d == scope.DomainFrequency {
		return scope.Analyze(ts, 0)
	}
	return ts
}

func (s *benchService) Trace(ctx context.Context, id uuid.UUID, channel int, opts TraceOptions) (*Trace, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ch, err := b.Channel(channel)
	if err != nil {
		return nil, err
	}

	d := b.Domain
	if opts.Domain != nil {
		d = *opts.Domain
	}
	mode := opts.Mode
	if mode == "" {
		mode = scope.ModeStride
	}
	maxPoints := opts.MaxPoints
	if maxPoints <= 0 {
		maxPoints = s.cfg.MaxDisplayPoints
	}

	series := s.domainSeries(b, ch, d)
	dec := scope.NewDecimator(mode, scope.HorizontalView(b.Timebase, d))
	points := dec.Decimate(series, maxPoints)

	r := ch.Range(d)
	grid := make([]scope.GridPoint, len(points))
	for i, p := range points {
		grid[i] = scope.ToGrid(p, d, r, b.Timebase)
	}

	return &Trace{
		Domain:       d,
		Mode:         mode,
		SourcePoints: len(series),
		Points:       points,
		Grid:         grid,
	}, nil
}

func (s *benchService) Peaks(ctx context.Context, id uuid.UUID, channel int, d scope.Domain, top int) ([]scope.Peak, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ch, err := b.Channel(channel)
	if err != nil {
		return nil, err
	}
	return scope.FindPeaks(s.domainSeries(b, ch, d), top), nil
}

func (s *benchService) Cursor(ctx context.Context, id uuid.UUID, channel int, d *scope.Domain, index int) (*CursorReadout, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ch, err := b.Channel(channel)
	if err != nil {
		return nil, err
	}

	domain := b.Domain
	if d != nil {
		domain = *d
	}
	series := s.domainSeries(b, ch, domain)
	p, ok := series.At(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(series))
	}
	return &CursorReadout{
		Domain: domain,
		Index:  index,
		Sample: p,
		Grid:   scope.ToGrid(p, domain, ch.Range(domain), b.Timebase),
	}, nil
}

// mutate loads a bench, applies fn and stores the result. Changes to one
// bench are serialized.
func (s *benchService) mutate(ctx context.Context, id uuid.UUID, fn func(b *models.Bench) error) (*models.Bench, error) {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to update bench: %w", err)
	}
	s.syncAnimation(b)
	return b, nil
}

// syncAnimation keeps a bench on the animator exactly while it has a live
// channel.
func (s *benchService) syncAnimation(b *models.Bench) {
	if s.animator == nil {
		return
	}
	for _, ch := range b.Channels {
		if ch.Source == models.SourceLive {
			s.animator.Track(b.ID)
			return
		}
	}
	s.animator.Untrack(b.ID)
}

func (s *benchService) elapsed(benchID string) float64 {
	if s.animator == nil {
		return 0
	}
	return s.animator.Elapsed(benchID)
}
