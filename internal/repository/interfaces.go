package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// BenchRepository defines the interface for bench persistence
type BenchRepository interface {
	Create(ctx context.Context, bench *models.Bench) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bench, error)
	GetBySessionID(ctx context.Context, sessionID string) ([]*models.Bench, error)
	// Update replaces the stored domain, timebase, sample count and channels
	Update(ctx context.Context, bench *models.Bench) error
}

// ImportRepository defines the interface for capture import operations
type ImportRepository interface {
	Create(ctx context.Context, imp *models.Import) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Import, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	// Complete marks the import finished and records how many samples it read
	Complete(ctx context.Context, id uuid.UUID, sourceSamples int) error
}
