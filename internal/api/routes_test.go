package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/RMahshie/scopebench/internal/processing"
	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memBenchRepository keeps benches in memory, storing JSON copies so
// callers never share state with the store
type memBenchRepository struct {
	mu      sync.Mutex
	benches map[string][]byte
}

func newMemBenchRepository() *memBenchRepository {
	return &memBenchRepository{benches: make(map[string][]byte)}
}

func (r *memBenchRepository) put(b *models.Bench) error {
	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	r.benches[b.ID] = data
	return nil
}

func (r *memBenchRepository) Create(ctx context.Context, b *models.Bench) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(b)
}

func (r *memBenchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bench, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.benches[id.String()]
	if !ok {
		return nil, fmt.Errorf("bench %s: %w", id, repository.ErrNotFound)
	}
	var b models.Bench
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *memBenchRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Bench, error) {
	return nil, nil
}

func (r *memBenchRepository) Update(ctx context.Context, b *models.Bench) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.benches[b.ID]; !ok {
		return repository.ErrNotFound
	}
	return r.put(b)
}

func newTestAPI(t *testing.T) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	benches := processing.NewBenchService(newMemBenchRepository(), processing.NewAnimator(50*time.Millisecond), processing.BenchConfig{})
	RegisterRoutes(api, Dependencies{Benches: benches, MaxImportBytes: 1 << 20})
	return api
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[map[string]any](t, resp.Body.Bytes())
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestBenchWorkflow(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/benches", map[string]any{"session_id": "test-session-123"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	bench := decode[models.BenchBody](t, resp.Body.Bytes())
	base := "/api/benches/" + bench.ID

	resp = api.Get(base)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Put(base+"/channels/1/generator", map[string]any{
		"shape":          "square",
		"frequency_hz":   500,
		"amplitude":      3,
		"duration_sec":   0.02,
		"sample_rate_hz": 50000,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	bench = decode[models.BenchBody](t, resp.Body.Bytes())
	assert.Equal(t, "live", bench.Channels[1].Source)
	assert.Equal(t, "square", bench.Channels[1].Generator.Shape)

	resp = api.Patch(base+"/channels/1", map[string]any{"visible": true, "time_scale": 0.3})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	bench = decode[models.BenchBody](t, resp.Body.Bytes())
	assert.True(t, bench.Channels[1].Visible)
	assert.Equal(t, 0.2, bench.Channels[1].Time.UnitsPerDivision)
	assert.Equal(t, "200 mV/div", bench.Channels[1].Time.Label)

	resp = api.Post(base + "/autorange")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	bench = decode[models.BenchBody](t, resp.Body.Bytes())
	// channel 0 idles across the 1 s/div screen, so the timebase stays
	assert.Equal(t, 1.0, bench.Timebase.TimePerDivision)
	// 6 V peak to peak over 4.8 divisions
	assert.Equal(t, 1.0, bench.Channels[1].Time.UnitsPerDivision)

	resp = api.Put(base+"/domain", map[string]any{"domain": "frequency"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Get(base + "/channels/1/trace?max_points=100")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	trace := decode[models.TraceBody](t, resp.Body.Bytes())
	assert.Equal(t, "frequency", trace.Domain)
	assert.Equal(t, 512, trace.SourcePoints)
	assert.Len(t, trace.Points, 100)

	resp = api.Get(base + "/channels/1/peaks?top=2")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	peaks := decode[struct {
		Peaks []models.PeakBody `json:"peaks"`
	}](t, resp.Body.Bytes())
	require.NotEmpty(t, peaks.Peaks)
	assert.LessOrEqual(t, len(peaks.Peaks), 2)
	assert.InDelta(t, 500, peaks.Peaks[0].X, 50)

	resp = api.Get(base + "/channels/0/cursor?index=0&domain=time")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = api.Get(base + "/channels/0/cursor?index=99999")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post(base + "/presets/2")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	bench = decode[models.BenchBody](t, resp.Body.Bytes())
	for _, ch := range bench.Channels {
		assert.True(t, ch.Visible)
		assert.Equal(t, "live", ch.Source)
	}
}

func TestBenchRoutes_Validation(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/benches", map[string]any{"session_id": "short"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Get("/api/benches/" + uuid.New().String())
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = api.Get("/api/benches/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = api.Post("/api/benches/" + uuid.New().String() + "/presets/3")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSignalRoutes(t *testing.T) {
	api := newTestAPI(t)

	resp := api.Post("/api/signals/synthesize", map[string]any{
		"shape":          "sine",
		"frequency_hz":   100,
		"amplitude":      1,
		"duration_sec":   0.1,
		"sample_rate_hz": 1000,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	series := decode[struct {
		Count  int              `json:"count"`
		Points []map[string]any `json:"points"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, 100, series.Count)

	resp = api.Post("/api/signals/analyze", map[string]any{"points": series.Points})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	spectrum := decode[struct {
		Count int `json:"count"`
	}](t, resp.Body.Bytes())
	assert.Equal(t, 64, spectrum.Count)

	resp = api.Post("/api/signals/synthesize", map[string]any{
		"shape":          "sine",
		"frequency_hz":   -1,
		"amplitude":      1,
		"duration_sec":   0.1,
		"sample_rate_hz": 1000,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Get("/api/signals/snap?value=0.0033&unit=s")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	snap := decode[map[string]any](t, resp.Body.Bytes())
	assert.Equal(t, 0.002, snap["snapped"])
	assert.Equal(t, "2 ms", snap["label"])
}
