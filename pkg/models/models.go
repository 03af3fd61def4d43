package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RMahshie/scopebench/pkg/scope"
)

// ErrNoSuchChannel is returned for channel indices outside [0, ChannelCount).
var ErrNoSuchChannel = errors.New("no such channel")

// ChannelCount is the number of input channels on a bench.
const ChannelCount = 4

// DefaultChannelColors are the trace colors of channels 0 to 3.
var DefaultChannelColors = [ChannelCount]string{"#ffff00", "#00ff00", "#00ffff", "#ff00ff"}

// ChannelSource says where a channel's time-domain series comes from.
type ChannelSource string

const (
	// SourceIdle channels show the flat default trace.
	SourceIdle ChannelSource = "idle"
	// SourceLive channels are synthesized from their generator every tick.
	SourceLive ChannelSource = "live"
	// SourceStatic channels show an imported capture.
	SourceStatic ChannelSource = "static"
)

// Import status values
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Channel is one scope input. The embedded ChannelRange carries visibility
// and the per-domain scale/offset pairs.
type Channel struct {
	ID    int    `json:"id"`
	Color string `json:"color"`
	scope.ChannelRange
	Source    ChannelSource         `json:"source"`
	Generator scope.SynthesisConfig `json:"generator"`
	Static    scope.Series          `json:"static,omitempty"`
}

// Bench is one virtual oscilloscope session.
type Bench struct {
	ID           string         `json:"id"`
	SessionID    string         `json:"session_id"`
	Domain       scope.Domain   `json:"domain"`
	Timebase     scope.Timebase `json:"timebase"`
	TotalSamples int            `json:"total_samples"`
	Channels     []Channel      `json:"channels"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// DefaultGenerator is the function generator setting a fresh channel starts
// with: a 1 kHz, 5 V sine over 10 ms at 100 kHz.
func DefaultGenerator() scope.SynthesisConfig {
	return scope.SynthesisConfig{
		Shape:        scope.ShapeSine,
		FrequencyHz:  1000,
		Amplitude:    5,
		DurationSec:  0.01,
		SampleRateHz: 100000,
	}
}

// NewBench returns a bench in its power-on state: time domain, default
// timebase, channel 0 visible and every channel idle.
func NewBench(sessionID string, totalSamples int) *Bench {
	now := time.Now().UTC()
	b := &Bench{
		ID:           uuid.New().String(),
		SessionID:    sessionID,
		Domain:       scope.DomainTime,
		Timebase:     scope.DefaultTimebase,
		TotalSamples: totalSamples,
		Channels:     make([]Channel, ChannelCount),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i := range b.Channels {
		b.Channels[i] = Channel{
			ID:           i,
			Color:        DefaultChannelColors[i],
			ChannelRange: scope.NewChannelRange(i == 0),
			Source:       SourceIdle,
			Generator:    DefaultGenerator(),
		}
	}
	return b
}

// Channel returns the channel with index id.
func (b *Bench) Channel(id int) (*Channel, error) {
	if id < 0 || id >= len(b.Channels) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrNoSuchChannel, id, len(b.Channels))
	}
	return &b.Channels[id], nil
}

// ChannelRanges returns the visibility and ranges of every channel in order.
func (b *Bench) ChannelRanges() []scope.ChannelRange {
	out := make([]scope.ChannelRange, len(b.Channels))
	for i, ch := range b.Channels {
		out[i] = ch.ChannelRange
	}
	return out
}

// Import tracks one uploaded capture on its way to a static channel.
type Import struct {
	ID            string     `json:"id"`
	BenchID       string     `json:"bench_id"`
	ChannelID     int        `json:"channel_id"`
	Format        string     `json:"format"`
	ObjectKey     string     `json:"object_key"`
	TimeColumn    int        `json:"time_column"`
	ValueColumn   int        `json:"value_column"`
	WAVChannel    int        `json:"wav_channel"`
	Status        string     `json:"status"`
	Progress      int        `json:"progress"`
	SourceSamples int        `json:"source_samples"`
	ErrorMsg      *string    `json:"error_message,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}
