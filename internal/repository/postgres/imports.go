package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/google/uuid"
)

// PostgresImportRepository implements ImportRepository for PostgreSQL
type PostgresImportRepository struct {
	db *sql.DB
}

// NewPostgresImportRepository creates a new PostgreSQL import repository
func NewPostgresImportRepository(db *sql.DB) repository.ImportRepository {
	return &PostgresImportRepository{db: db}
}

// Create inserts a new import record
func (r *PostgresImportRepository) Create(ctx context.Context, imp *models.Import) error {
	query := `
		INSERT INTO imports (id, bench_id, channel_id, format, object_key, time_column, value_column,
		                     wav_channel, status, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		imp.ID,
		imp.BenchID,
		imp.ChannelID,
		imp.Format,
		imp.ObjectKey,
		imp.TimeColumn,
		imp.ValueColumn,
		imp.WAVChannel,
		imp.Status,
		imp.Progress,
		imp.CreatedAt,
		imp.UpdatedAt)

	return err
}

// GetByID retrieves an import by ID
func (r *PostgresImportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Import, error) {
	query := `
		SELECT id, bench_id, channel_id, format, object_key, time_column, value_column, wav_channel,
		       status, progress, source_samples, error_message, created_at, updated_at, completed_at
		FROM imports
		WHERE id = $1`

	var imp models.Import
	var errorMsg sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&imp.ID,
		&imp.BenchID,
		&imp.ChannelID,
		&imp.Format,
		&imp.ObjectKey,
		&imp.TimeColumn,
		&imp.ValueColumn,
		&imp.WAVChannel,
		&imp.Status,
		&imp.Progress,
		&imp.SourceSamples,
		&errorMsg,
		&imp.CreatedAt,
		&imp.UpdatedAt,
		&completedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("import %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if errorMsg.Valid {
		imp.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		imp.CompletedAt = &completedAt.Time
	}

	return &imp, nil
}

// UpdateStatus updates the status and progress of an import
func (r *PostgresImportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE imports
		SET status = $1, progress = $2, updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks an import failed with a message
func (r *PostgresImportRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE imports
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// Complete marks an import completed at 100%
func (r *PostgresImportRepository) Complete(ctx context.Context, id uuid.UUID, sourceSamples int) error {
	query := `
		UPDATE imports
		SET status = 'completed', progress = 100, source_samples = $1,
		    updated_at = NOW(), completed_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, sourceSamples, id)
	return err
}
