package ingest

import (
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"

	"github.com/RMahshie/scopebench/pkg/scope"
)

// WAVInfo describes a decoded WAV file.
type WAVInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Frames     int
}

// DecodeWAV reads PCM data and returns one channel as volts normalized to
// ±1 full scale, with sample i at t = i / sampleRate.
func DecodeWAV(r io.ReadSeeker, channel int) (scope.Series, WAVInfo, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, WAVInfo{}, fmt.Errorf("%w: invalid WAV file", ErrUnsupportedFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, WAVInfo{}, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	info := WAVInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if buf.Format != nil {
		info.SampleRate = buf.Format.SampleRate
		info.Channels = buf.Format.NumChannels
	}
	if info.SampleRate <= 0 || info.Channels <= 0 || info.BitDepth == 0 {
		return nil, info, fmt.Errorf("%w: WAV header has rate %d, %d channels, %d bits",
			ErrUnsupportedFormat, info.SampleRate, info.Channels, info.BitDepth)
	}
	if channel < 0 || channel >= info.Channels {
		return nil, info, fmt.Errorf("%w: channel %d out of range, file has %d", scope.ErrInvalidConfig, channel, info.Channels)
	}

	info.Frames = len(buf.Data) / info.Channels
	if info.Frames == 0 {
		return nil, info, fmt.Errorf("%w: WAV file has no frames", ErrNoData)
	}

	fullScale := math.Pow(2, float64(info.BitDepth-1))
	// 8-bit PCM is stored unsigned.
	bias := 0
	if info.BitDepth == 8 {
		bias = 128
	}

	out := make(scope.Series, info.Frames)
	rate := float64(info.SampleRate)
	for i := range out {
		v := buf.Data[i*info.Channels+channel] - bias
		out[i] = scope.Sample{X: float64(i) / rate, Y: float64(v) / fullScale}
	}
	return out, info, nil
}
