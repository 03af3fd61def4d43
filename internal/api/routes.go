package api

import (
	"context"
	"net/http"
	"time"

	"github.com/RMahshie/scopebench/internal/api/handlers"
	"github.com/RMahshie/scopebench/internal/processing"
	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/internal/storage"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/danielgtaylor/huma/v2"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Dependencies are the services the routes are served by
type Dependencies struct {
	Benches        processing.BenchService
	Imports        repository.ImportRepository
	Store          storage.ObjectStore
	Processing     processing.ProcessingService
	MaxImportBytes int64
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, deps Dependencies) {
	benchHandler := handlers.NewBenchHandler(deps.Benches)
	importHandler := handlers.NewImportHandler(deps.Benches, deps.Imports, deps.Store, deps.Processing, deps.MaxImportBytes)
	signalHandler := handlers.NewSignalHandler()

	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = Version
		resp.Body.Time = time.Now()
		return resp, nil
	})

	registerBenchRoutes(api, benchHandler)
	registerImportRoutes(api, importHandler)
	registerSignalRoutes(api, signalHandler)
}

func registerBenchRoutes(api huma.API, h *handlers.BenchHandler) {
	tags := []string{"Bench"}

	huma.Register(api, huma.Operation{
		OperationID:   "createBench",
		Method:        http.MethodPost,
		Path:          "/api/benches",
		Summary:       "Create a bench",
		Description:   "Creates a virtual oscilloscope in its power-on state",
		Tags:          tags,
		DefaultStatus: http.StatusCreated,
	}, h.CreateBench)

	huma.Register(api, huma.Operation{
		OperationID: "getBench",
		Method:      http.MethodGet,
		Path:        "/api/benches/{id}",
		Summary:     "Get a bench",
		Tags:        tags,
	}, h.GetBench)

	huma.Register(api, huma.Operation{
		OperationID: "setDomain",
		Method:      http.MethodPut,
		Path:        "/api/benches/{id}/domain",
		Summary:     "Switch display domain",
		Tags:        tags,
	}, h.SetDomain)

	huma.Register(api, huma.Operation{
		OperationID: "updateTimebase",
		Method:      http.MethodPatch,
		Path:        "/api/benches/{id}/timebase",
		Summary:     "Change the horizontal scale",
		Description: "Per-division values are snapped to the 1-2-5 sequence",
		Tags:        tags,
	}, h.UpdateTimebase)

	huma.Register(api, huma.Operation{
		OperationID: "updateChannel",
		Method:      http.MethodPatch,
		Path:        "/api/benches/{id}/channels/{channel}",
		Summary:     "Change channel settings",
		Tags:        tags,
	}, h.UpdateChannel)

	huma.Register(api, huma.Operation{
		OperationID: "setGenerator",
		Method:      http.MethodPut,
		Path:        "/api/benches/{id}/channels/{channel}/generator",
		Summary:     "Configure a channel's function generator",
		Description: "Sets the waveform and makes the channel live",
		Tags:        tags,
	}, h.SetGenerator)

	huma.Register(api, huma.Operation{
		OperationID: "autoRange",
		Method:      http.MethodPost,
		Path:        "/api/benches/{id}/autorange",
		Summary:     "Auto-range",
		Description: "Fits the visible channels onto the grid for the active domain",
		Tags:        tags,
	}, h.AutoRange)

	huma.Register(api, huma.Operation{
		OperationID: "loadPreset",
		Method:      http.MethodPost,
		Path:        "/api/benches/{id}/presets/{preset}",
		Summary:     "Load a test preset",
		Tags:        tags,
	}, h.LoadPreset)

	huma.Register(api, huma.Operation{
		OperationID: "getTrace",
		Method:      http.MethodGet,
		Path:        "/api/benches/{id}/channels/{channel}/trace",
		Summary:     "Get a channel trace",
		Description: "Returns the channel series decimated to a point budget with grid coordinates",
		Tags:        tags,
	}, h.GetTrace)

	huma.Register(api, huma.Operation{
		OperationID: "getPeaks",
		Method:      http.MethodGet,
		Path:        "/api/benches/{id}/channels/{channel}/peaks",
		Summary:     "Find channel peaks",
		Tags:        tags,
	}, h.GetPeaks)

	huma.Register(api, huma.Operation{
		OperationID: "getCursor",
		Method:      http.MethodGet,
		Path:        "/api/benches/{id}/channels/{channel}/cursor",
		Summary:     "Read a sample under the cursor",
		Tags:        tags,
	}, h.GetCursor)
}

func registerImportRoutes(api huma.API, h *handlers.ImportHandler) {
	tags := []string{"Import"}

	huma.Register(api, huma.Operation{
		OperationID: "createImport",
		Method:      http.MethodPost,
		Path:        "/api/benches/{id}/imports",
		Summary:     "Import a capture",
		Description: "Creates an import record and returns an upload URL, or processes inline content",
		Tags:        tags,
	}, h.CreateImport)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/imports/{id}/process",
		Summary:     "Start processing an import",
		Description: "Starts processing an uploaded capture",
		Tags:        tags,
	}, h.StartProcessing)

	huma.Register(api, huma.Operation{
		OperationID: "getImportStatus",
		Method:      http.MethodGet,
		Path:        "/api/imports/{id}/status",
		Summary:     "Get import status",
		Description: "Returns the current status and progress of an import",
		Tags:        tags,
	}, h.GetImportStatus)
}

func registerSignalRoutes(api huma.API, h *handlers.SignalHandler) {
	tags := []string{"Signals"}

	huma.Register(api, huma.Operation{
		OperationID: "synthesize",
		Method:      http.MethodPost,
		Path:        "/api/signals/synthesize",
		Summary:     "Synthesize a waveform",
		Tags:        tags,
	}, h.Synthesize)

	huma.Register(api, huma.Operation{
		OperationID: "analyze",
		Method:      http.MethodPost,
		Path:        "/api/signals/analyze",
		Summary:     "Compute a magnitude spectrum",
		Tags:        tags,
	}, h.Analyze)

	huma.Register(api, huma.Operation{
		OperationID: "decimate",
		Method:      http.MethodPost,
		Path:        "/api/signals/decimate",
		Summary:     "Decimate a series",
		Tags:        tags,
	}, h.Decimate)

	huma.Register(api, huma.Operation{
		OperationID: "findPeaks",
		Method:      http.MethodPost,
		Path:        "/api/signals/peaks",
		Summary:     "Find peaks in a series",
		Tags:        tags,
	}, h.Peaks)

	huma.Register(api, huma.Operation{
		OperationID: "snap",
		Method:      http.MethodGet,
		Path:        "/api/signals/snap",
		Summary:     "Snap a value to the 1-2-5 sequence",
		Tags:        tags,
	}, h.Snap)
}
