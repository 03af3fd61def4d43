package processing

import (
	"bytes"
	"context"
	"fmt"

	"github.com/RMahshie/scopebench/internal/ingest"
	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/internal/storage"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProcessingService turns uploaded captures into static channels
type ProcessingService interface {
	ProcessImport(ctx context.Context, importID uuid.UUID) error
}

// ImportConfig bounds capture processing
type ImportConfig struct {
	ResamplePoints int
	MaxBytes       int64
}

type processingService struct {
	store   storage.ObjectStore
	imports repository.ImportRepository
	benches BenchService
	cfg     ImportConfig
}

// NewProcessingService creates the capture processing service
func NewProcessingService(store storage.ObjectStore, imports repository.ImportRepository, benches BenchService, cfg ImportConfig) ProcessingService {
	return &processingService{
		store:   store,
		imports: imports,
		benches: benches,
		cfg:     cfg,
	}
}

// ProcessImport downloads, decodes and applies one capture. Failures in the
// capture itself mark the import failed and return nil; only bookkeeping
// errors are returned.
func (s *processingService) ProcessImport(ctx context.Context, importID uuid.UUID) error {
	// Step 1: Update to processing status
	if err := s.imports.UpdateStatus(ctx, importID, models.StatusProcessing, 10); err != nil {
		return err
	}

	// Step 2: Get import details
	imp, err := s.imports.GetByID(ctx, importID)
	if err != nil {
		return err
	}
	benchID, err := uuid.Parse(imp.BenchID)
	if err != nil {
		return s.fail(ctx, importID, "Import references an invalid bench", err)
	}
	format, err := ingest.ParseFormat(imp.Format)
	if err != nil {
		return s.fail(ctx, importID, "Capture format not supported", err)
	}

	// Step 3: Download the capture
	if err := s.imports.UpdateStatus(ctx, importID, models.StatusProcessing, 20); err != nil {
		return err
	}
	data, err := s.store.Download(ctx, imp.ObjectKey, s.cfg.MaxBytes)
	if err != nil {
		return s.fail(ctx, importID, "Failed to download capture", err)
	}

	// Step 4: Decode
	if err := s.imports.UpdateStatus(ctx, importID, models.StatusProcessing, 50); err != nil {
		return err
	}
	opts := ingest.DefaultOptions()
	opts.Columns = ingest.Columns{Time: imp.TimeColumn, Value: imp.ValueColumn}
	opts.WAVChannel = imp.WAVChannel
	if s.cfg.ResamplePoints > 0 {
		opts.Points = s.cfg.ResamplePoints
	}
	capture, err := ingest.Decode(bytes.NewReader(data), format, opts)
	if err != nil {
		if delErr := s.store.Delete(ctx, imp.ObjectKey); delErr != nil {
			log.Warn().Err(delErr).Str("key", imp.ObjectKey).Msg("Failed to delete rejected capture")
		}
		return s.fail(ctx, importID, fmt.Sprintf("Failed to decode capture: %v", err), err)
	}

	// Step 5: Place the series on the channel
	if err := s.imports.UpdateStatus(ctx, importID, models.StatusProcessing, 80); err != nil {
		return err
	}
	if _, err := s.benches.SetStatic(ctx, benchID, imp.ChannelID, capture.Series); err != nil {
		return s.fail(ctx, importID, "Failed to apply capture to channel", err)
	}

	// Step 6: Mark complete
	if err := s.imports.Complete(ctx, importID, capture.SourceSamples); err != nil {
		return err
	}

	log.Info().
		Str("importID", importID.String()).
		Str("benchID", imp.BenchID).
		Int("channel", imp.ChannelID).
		Int("sourceSamples", capture.SourceSamples).
		Int("points", len(capture.Series)).
		Msg("Capture imported")
	return nil
}

func (s *processingService) fail(ctx context.Context, importID uuid.UUID, msg string, cause error) error {
	log.Error().Err(cause).Str("importID", importID.String()).Msg(msg)
	if err := s.imports.UpdateError(ctx, importID, msg); err != nil {
		return fmt.Errorf("failed to record import error: %w", err)
	}
	return nil
}
