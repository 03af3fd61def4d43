package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/scopebench/internal/ingest"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
)

// source selects where a command's series comes from: a capture file when
// --in is set, the function generator otherwise. Metric flags accept SI
// prefixes ("1 kHz", "10ms", "5V").
type source struct {
	file       string
	format     string
	wavChannel int
	points     int

	shape    string
	freq     string
	amp      string
	duration string
	rate     string
	phase    float64
}

func (s *source) register(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&s.file, "in", "", "read a CSV or WAV capture instead of generating")
	f.StringVar(&s.format, "format", "", "capture format (csv, wav); defaults to the file extension")
	f.IntVar(&s.wavChannel, "wav-channel", 0, "interleaved WAV channel to read")
	f.IntVar(&s.points, "points", ingest.DefaultOptions().Points, "CSV resampling target and WAV frame cap")

	g := models.DefaultGenerator()
	f.StringVar(&s.shape, "shape", g.Shape.String(), "waveform shape (sine, square, triangle, sawtooth)")
	f.StringVar(&s.freq, "freq", scope.FormatMetric(g.FrequencyHz, "Hz"), "generator frequency")
	f.StringVar(&s.amp, "amp", scope.FormatMetric(g.Amplitude, "V"), "generator amplitude")
	f.StringVar(&s.duration, "duration", scope.FormatMetric(g.DurationSec, "s"), "generated duration")
	f.StringVar(&s.rate, "rate", scope.FormatMetric(g.SampleRateHz, "Hz"), "generator sample rate")
	f.Float64Var(&s.phase, "phase", 0, "generator start phase in radians")
}

func (s *source) generator() (scope.SynthesisConfig, error) {
	shape, err := scope.ParseShape(s.shape)
	if err != nil {
		return scope.SynthesisConfig{}, err
	}
	cfg := scope.SynthesisConfig{Shape: shape, PhaseRad: s.phase}
	for _, field := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"freq", s.freq, &cfg.FrequencyHz},
		{"amp", s.amp, &cfg.Amplitude},
		{"duration", s.duration, &cfg.DurationSec},
		{"rate", s.rate, &cfg.SampleRateHz},
	} {
		v, err := scope.ParseMetric(field.raw)
		if err != nil {
			return scope.SynthesisConfig{}, fmt.Errorf("--%s: %w", field.name, err)
		}
		*field.dst = v
	}
	if err := cfg.Validate(); err != nil {
		return scope.SynthesisConfig{}, err
	}
	if n := cfg.SampleCount(); n > models.MaxSynthesisSamples {
		return scope.SynthesisConfig{}, fmt.Errorf("%w: %d samples exceeds %d", scope.ErrInvalidConfig, n, models.MaxSynthesisSamples)
	}
	return cfg, nil
}

// series returns the samples and their sample rate. The rate is zero when it
// has to be inferred from sample spacing.
func (s *source) series() (scope.Series, float64, error) {
	if s.file == "" {
		cfg, err := s.generator()
		if err != nil {
			return nil, 0, err
		}
		log.Debug().Str("shape", cfg.Shape.String()).Float64("frequency_hz", cfg.FrequencyHz).Int("samples", cfg.SampleCount()).Msg("Generating waveform")
		return scope.Synthesize(cfg), cfg.SampleRateHz, nil
	}

	capture, err := s.capture()
	if err != nil {
		return nil, 0, err
	}
	return capture.Series, capture.SampleRateHz, nil
}

func (s *source) capture() (*ingest.Capture, error) {
	name := s.format
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(s.file), ".")
	}
	format, err := ingest.ParseFormat(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(s.file)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()

	opts := ingest.DefaultOptions()
	opts.WAVChannel = s.wavChannel
	opts.Points = s.points
	capture, err := ingest.Decode(f, format, opts)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.file, err)
	}
	log.Debug().Str("file", s.file).Str("format", string(format)).Int("source_samples", capture.SourceSamples).Msg("Decoded capture")
	return capture, nil
}

func newRootCmd() *cobra.Command {
	var (
		src     source
		verbose bool
	)

	root := &cobra.Command{
		Use:   "scopectl",
		Short: "Run the oscilloscope signal core offline",
		Long: `scopectl exercises the signal core without a server.

Every command reads one series: a capture given with --in, or a waveform from
the built-in function generator. Results are printed as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug detail to stderr")
	src.register(root)

	root.AddCommand(
		newSynthCmd(&src),
		newSpectrumCmd(&src),
		newDecimateCmd(&src),
		newPeaksCmd(&src),
		newAutoRangeCmd(&src),
		newImportCmd(&src),
		newSnapCmd(),
	)
	return root
}

func newSynthCmd(src *source) *cobra.Command {
	return &cobra.Command{
		Use:   "synth",
		Short: "Print the time-domain series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, err := src.series()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), models.NewSeriesResponse(s).Body)
		},
	}
}

func newSpectrumCmd(src *source) *cobra.Command {
	return &cobra.Command{
		Use:   "spectrum",
		Short: "Print the one-sided magnitude spectrum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, rate, err := src.series()
			if err != nil {
				return err
			}
			spectrum, err := scope.TryAnalyze(s, rate)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), models.NewSeriesResponse(spectrum).Body)
		},
	}
}

func newDecimateCmd(src *source) *cobra.Command {
	var (
		mode      string
		maxPoints int
		start     string
		perDiv    string
		frequency bool
	)
	cmd := &cobra.Command{
		Use:   "decimate",
		Short: "Reduce the series to a display point budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := scope.ParseDecimationMode(mode)
			if err != nil {
				return err
			}
			s, rate, err := src.series()
			if err != nil {
				return err
			}
			if frequency {
				if s, err = scope.TryAnalyze(s, rate); err != nil {
					return err
				}
			}

			view := scope.View{Divisions: scope.HorizontalDivisions}
			if m == scope.ModeWindow {
				if view.Start, err = scope.ParseMetric(start); err != nil {
					return fmt.Errorf("--start: %w", err)
				}
				if view.UnitsPerDivision, err = scope.ParseMetric(perDiv); err != nil {
					return fmt.Errorf("--per-div: %w", err)
				}
			}
			out := scope.NewDecimator(m, view).Decimate(s, maxPoints)
			return writeJSON(cmd.OutOrStdout(), models.NewSeriesResponse(out).Body)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(scope.ModeStride), "decimation mode (stride, window)")
	cmd.Flags().IntVar(&maxPoints, "max-points", scope.DefaultMaxPoints, "point budget")
	cmd.Flags().StringVar(&start, "start", "0", "window start along X")
	cmd.Flags().StringVar(&perDiv, "per-div", "1", "window units per division")
	cmd.Flags().BoolVar(&frequency, "frequency", false, "decimate the spectrum instead of the time series")
	return cmd
}

func newPeaksCmd(src *source) *cobra.Command {
	var (
		top    int
		domain string
	)
	cmd := &cobra.Command{
		Use:   "peaks",
		Short: "List the tallest local maxima",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := scope.ParseDomain(domain)
			if err != nil {
				return err
			}
			s, rate, err := src.series()
			if err != nil {
				return err
			}
			if d == scope.DomainFrequency {
				if s, err = scope.TryAnalyze(s, rate); err != nil {
					return err
				}
			}
			resp := &models.PeakListResponse{}
			resp.Body.Peaks = models.NewPeakBodies(scope.FindPeaks(s, top), d)
			return writeJSON(cmd.OutOrStdout(), resp.Body)
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "number of peaks to report")
	cmd.Flags().StringVar(&domain, "domain", scope.DomainFrequency.String(), "search domain (time, frequency)")
	return cmd
}

func newAutoRangeCmd(src *source) *cobra.Command {
	var domain string
	cmd := &cobra.Command{
		Use:   "autorange",
		Short: "Fit the series onto the grid and print the resulting scales",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := scope.ParseDomain(domain)
			if err != nil {
				return err
			}
			s, rate, err := src.series()
			if err != nil {
				return err
			}
			res := scope.AutoRange(scope.AutoRangeInput{
				Domain:    d,
				Timebase:  scope.DefaultTimebase,
				Channels:  []scope.ChannelRange{scope.NewChannelRange(true)},
				Time:      []scope.Series{s},
				Frequency: []scope.Series{scope.Analyze(s, rate)},
			})
			ch := res.Channels[0]
			return writeJSON(cmd.OutOrStdout(), struct {
				Domain    string              `json:"domain"`
				Timebase  models.TimebaseBody `json:"timebase"`
				Time      models.RangeBody    `json:"time"`
				Frequency models.RangeBody    `json:"frequency"`
			}{
				Domain:    d.String(),
				Timebase:  models.NewTimebaseBody(res.Timebase),
				Time:      models.NewRangeBody(ch.Range(scope.DomainTime)),
				Frequency: models.NewRangeBody(ch.Range(scope.DomainFrequency)),
			})
		},
	}
	cmd.Flags().StringVar(&domain, "domain", scope.DomainTime.String(), "domain to fit (time, frequency)")
	return cmd
}

func newImportCmd(src *source) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Decode a capture file and summarize it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src.file = args[0]
			capture, err := src.capture()
			if err != nil {
				return err
			}
			out := struct {
				Format        string          `json:"format"`
				SourceSamples int             `json:"source_samples"`
				SampleRateHz  float64         `json:"sample_rate_hz,omitempty"`
				Columns       *ingest.Columns `json:"columns,omitempty"`
				Count         int             `json:"count"`
				Points        scope.Series    `json:"points"`
			}{
				Format:        string(capture.Format),
				SourceSamples: capture.SourceSamples,
				SampleRateHz:  capture.SampleRateHz,
				Count:         len(capture.Series),
				Points:        capture.Series,
			}
			if capture.Format == ingest.FormatCSV {
				out.Columns = &capture.Columns
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newSnapCmd() *cobra.Command {
	var unit string
	cmd := &cobra.Command{
		Use:   "snap <value>",
		Short: "Snap a scale to the 1-2-5 sequence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := scope.ParseMetric(args[0])
			if err != nil {
				return err
			}
			resp := &models.SnapResponse{}
			resp.Body.Value = v
			resp.Body.Snapped = scope.SnapToPreferred(v)
			resp.Body.StepUp = scope.StepUp(resp.Body.Snapped)
			resp.Body.StepDown = scope.StepDown(resp.Body.Snapped)
			resp.Body.Label = scope.FormatMetric(resp.Body.Snapped, unit)
			return writeJSON(cmd.OutOrStdout(), resp.Body)
		},
	}
	cmd.Flags().StringVar(&unit, "unit", "", "unit for the label (V, s, Hz)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
