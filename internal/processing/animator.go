package processing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Animator accumulates running time for benches with live channels. Each
// tick advances every tracked bench by the tick interval; live generators
// derive their phase from that elapsed time.
type Animator struct {
	interval time.Duration

	mu      sync.RWMutex
	elapsed map[string]time.Duration
}

// NewAnimator creates an animator that advances by interval per tick
func NewAnimator(interval time.Duration) *Animator {
	return &Animator{
		interval: interval,
		elapsed:  make(map[string]time.Duration),
	}
}

// Track starts accumulating time for a bench. Tracking an already tracked
// bench keeps its elapsed time.
func (a *Animator) Track(benchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.elapsed[benchID]; !ok {
		a.elapsed[benchID] = 0
	}
}

// Untrack stops accumulating time for a bench and forgets it
func (a *Animator) Untrack(benchID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.elapsed, benchID)
}

// Tracked reports whether a bench is being animated
func (a *Animator) Tracked(benchID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.elapsed[benchID]
	return ok
}

// Elapsed returns the seconds a bench has been animated, zero when untracked
func (a *Animator) Elapsed(benchID string) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.elapsed[benchID].Seconds()
}

// Tick advances every tracked bench by one interval
func (a *Animator) Tick() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for id := range a.elapsed {
		a.elapsed[id] += a.interval
	}
}

// Run ticks until ctx is cancelled
func (a *Animator) Run(ctx context.Context) {
	if a.interval <= 0 {
		log.Warn().Dur("interval", a.interval).Msg("Animator disabled, tick interval is not positive")
		return
	}

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	log.Info().Dur("interval", a.interval).Msg("Animator started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Animator stopped")
			return
		case <-ticker.C:
			a.Tick()
		}
	}
}
