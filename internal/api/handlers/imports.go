package handlers

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/RMahshie/scopebench/internal/ingest"
	"github.com/RMahshie/scopebench/internal/processing"
	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/internal/storage"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const uploadURLExpiresIn = 15 * time.Minute

// ImportHandler handles capture import HTTP requests
type ImportHandler struct {
	benches       processing.BenchService
	imports       repository.ImportRepository
	store         storage.ObjectStore
	processingSvc processing.ProcessingService
	maxBytes      int64
}

// NewImportHandler creates a new import handler
func NewImportHandler(benches processing.BenchService, imports repository.ImportRepository, store storage.ObjectStore, processingSvc processing.ProcessingService, maxBytes int64) *ImportHandler {
	return &ImportHandler{
		benches:       benches,
		imports:       imports,
		store:         store,
		processingSvc: processingSvc,
		maxBytes:      maxBytes,
	}
}

// CreateImport registers a capture import. Without inline content it returns
// a pre-signed upload URL and waits for StartProcessing; with inline content
// it stores the capture and starts processing immediately.
func (h *ImportHandler) CreateImport(ctx context.Context, req *models.CreateImportRequest) (*models.CreateImportResponse, error) {
	benchID, err := parseID(req.ID, "bench")
	if err != nil {
		return nil, err
	}
	format, err := ingest.ParseFormat(req.Body.Format)
	if err != nil {
		return nil, huma.Error400BadRequest("Capture format not supported", err)
	}

	size := req.Body.FileSize
	if len(req.Body.Content) > 0 {
		size = int64(len(req.Body.Content))
	}
	if h.maxBytes > 0 && size > h.maxBytes {
		return nil, huma.Error400BadRequest(fmt.Sprintf("Capture too large. Limit is %d bytes.", h.maxBytes), nil)
	}

	if _, err := h.benches.Get(ctx, benchID); err != nil {
		return nil, serviceError(err, "Bench not found")
	}

	importID := uuid.New()
	key := storage.CaptureKey(benchID, importID, format.Extension())
	log.Info().
		Str("benchID", req.ID).
		Str("importID", importID.String()).
		Int("channel", req.Body.Channel).
		Str("format", string(format)).
		Int64("size", size).
		Msg("Creating capture import")

	resp := &models.CreateImportResponse{
		Body: models.CreateImportResponseBody{
			ID:     importID.String(),
			Status: models.StatusPending,
		},
	}

	inline := len(req.Body.Content) > 0
	if inline {
		if err := h.store.Upload(ctx, key, bytes.NewReader(req.Body.Content), size, format.ContentType()); err != nil {
			return nil, huma.Error500InternalServerError("Failed to store capture", err)
		}
	} else {
		uploadURL, err := h.store.GenerateUploadURL(ctx, key, format.ContentType())
		if err != nil {
			if strings.Contains(err.Error(), "invalid content type") {
				return nil, huma.Error400BadRequest("Capture format not supported", err)
			}
			return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
		}
		resp.Body.UploadURL = uploadURL
		resp.Body.ExpiresIn = int(uploadURLExpiresIn.Seconds())
	}

	now := time.Now().UTC()
	imp := &models.Import{
		ID:          importID.String(),
		BenchID:     benchID.String(),
		ChannelID:   req.Body.Channel,
		Format:      string(format),
		ObjectKey:   key,
		TimeColumn:  columnOrAuto(req.Body.TimeColumn),
		ValueColumn: columnOrAuto(req.Body.ValueColumn),
		WAVChannel:  req.Body.WAVChannel,
		Status:      models.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.imports.Create(ctx, imp); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create import", err)
	}

	if inline {
		h.startProcessing(importID)
	}
	return resp, nil
}

func columnOrAuto(c *int) int {
	if c == nil {
		return ingest.AutoColumn
	}
	return *c
}

// StartProcessing starts processing an uploaded capture
func (h *ImportHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	importID, err := parseID(req.ID, "import")
	if err != nil {
		return nil, err
	}

	imp, err := h.imports.GetByID(ctx, importID)
	if err != nil {
		return nil, serviceError(err, "Import not found")
	}
	if imp.Status != models.StatusPending {
		return nil, huma.Error409Conflict("Import already started", fmt.Errorf("import status is %s", imp.Status))
	}

	h.startProcessing(importID)

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

// startProcessing runs the import in the background; the request context
// ends before processing does
func (h *ImportHandler) startProcessing(importID uuid.UUID) {
	log.Info().Str("importID", importID.String()).Msg("Starting background import processing")
	go func() {
		if err := h.processingSvc.ProcessImport(context.Background(), importID); err != nil {
			log.Error().Err(err).Str("importID", importID.String()).Msg("Import processing failed")
			if err := h.imports.UpdateError(context.Background(), importID, fmt.Sprintf("Processing failed: %v", err)); err != nil {
				log.Error().Err(err).Str("importID", importID.String()).Msg("Failed to record import error")
			}
		}
	}()
}

// GetImportStatus returns the current status of an import
func (h *ImportHandler) GetImportStatus(ctx context.Context, req *models.GetImportStatusRequest) (*models.GetImportStatusResponse, error) {
	importID, err := parseID(req.ID, "import")
	if err != nil {
		return nil, err
	}

	imp, err := h.imports.GetByID(ctx, importID)
	if err != nil {
		return nil, serviceError(err, "Import not found")
	}

	body := models.GetImportStatusResponseBody{
		ID:            imp.ID,
		BenchID:       imp.BenchID,
		Channel:       imp.ChannelID,
		Status:        imp.Status,
		Progress:      imp.Progress,
		Message:       statusMessage(imp.Status, imp.Progress),
		SourceSamples: imp.SourceSamples,
	}
	if imp.Status == models.StatusFailed && imp.ErrorMsg != nil {
		body.Message = *imp.ErrorMsg
	}
	if imp.Status == models.StatusCompleted {
		url, err := h.store.GenerateDownloadURL(ctx, imp.ObjectKey)
		if err != nil {
			log.Warn().Err(err).Str("importID", imp.ID).Msg("Failed to sign capture download")
		} else {
			body.DownloadURL = url
		}
	}

	return &models.GetImportStatusResponse{Body: body}, nil
}

// statusMessage creates a human-readable status message
func statusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Waiting for capture upload..."
	case models.StatusProcessing:
		switch {
		case progress < 20:
			return "Starting import..."
		case progress < 50:
			return "Downloading capture..."
		case progress < 80:
			return "Decoding samples..."
		default:
			return "Placing capture on channel..."
		}
	case models.StatusCompleted:
		return "Import complete!"
	case models.StatusFailed:
		return "Import failed. Please try again."
	default:
		return "Unknown status"
	}
}
