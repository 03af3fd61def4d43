// Package ingest turns uploaded captures into scope series.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/RMahshie/scopebench/pkg/scope"
)

var (
	// ErrNoData means the capture parsed but held fewer usable samples than
	// required.
	ErrNoData = errors.New("capture has no usable samples")
	// ErrUnsupportedFormat is returned for unknown formats and malformed files.
	ErrUnsupportedFormat = errors.New("unsupported capture format")
)

// Format is a capture file format.
type Format string

const (
	FormatCSV Format = "csv"
	FormatWAV Format = "wav"
)

// ParseFormat accepts "csv" or "wav", case-insensitively, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatWAV, "wave":
		return FormatWAV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType is the MIME type uploads of this format must declare.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatWAV:
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

// Extension is the object key suffix for this format.
func (f Format) Extension() string { return "." + string(f) }

// Options tunes Decode.
type Options struct {
	// Columns selects CSV columns; AutoColumn picks by numeric density.
	Columns Columns
	// WAVChannel selects the interleaved channel of a WAV file.
	WAVChannel int
	// Points is the CSV resampling target and the WAV sample cap.
	Points int
}

// DefaultOptions auto-picks CSV columns, reads WAV channel 0 and targets 1024
// points.
func DefaultOptions() Options {
	return Options{
		Columns: Columns{Time: AutoColumn, Value: AutoColumn},
		Points:  1024,
	}
}

// Capture is a decoded capture ready to become a static channel.
type Capture struct {
	Format        Format
	Series        scope.Series
	SourceSamples int
	// Columns is set for CSV captures.
	Columns Columns
	// SampleRateHz is set for WAV captures.
	SampleRateHz float64
}

// Decode reads a capture of format f.
//
// CSV captures are sorted by time and linearly resampled to opts.Points
// evenly spaced samples. WAV captures keep their native spacing and are cut
// to the first opts.Points frames.
func Decode(r io.ReadSeeker, f Format, opts Options) (*Capture, error) {
	switch f {
	case FormatCSV:
		s, cols, err := ParseCSV(r, opts.Columns)
		if err != nil {
			return nil, err
		}
		return &Capture{
			Format:        f,
			Series:        Resample(s, opts.Points),
			SourceSamples: len(s),
			Columns:       cols,
		}, nil
	case FormatWAV:
		s, info, err := DecodeWAV(r, opts.WAVChannel)
		if err != nil {
			return nil, err
		}
		source := len(s)
		if opts.Points > 0 && len(s) > opts.Points {
			s = s[:opts.Points:opts.Points]
		}
		return &Capture{
			Format:        f,
			Series:        s,
			SourceSamples: source,
			SampleRateHz:  float64(info.SampleRate),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(f))
	}
}
