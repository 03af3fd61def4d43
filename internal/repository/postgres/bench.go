package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/RMahshie/scopebench/internal/repository"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
	"github.com/google/uuid"
)

// PostgresBenchRepository implements BenchRepository for PostgreSQL
type PostgresBenchRepository struct {
	db *sql.DB
}

// NewPostgresBenchRepository creates a new PostgreSQL bench repository
func NewPostgresBenchRepository(db *sql.DB) repository.BenchRepository {
	return &PostgresBenchRepository{db: db}
}

const benchColumns = `id, session_id, domain, timebase, total_samples, channels, created_at, updated_at`

// Create inserts a new bench
func (r *PostgresBenchRepository) Create(ctx context.Context, bench *models.Bench) error {
	timebase, channels, err := marshalBenchState(bench)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO benches (` + benchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		bench.ID,
		bench.SessionID,
		bench.Domain.String(),
		timebase,
		bench.TotalSamples,
		channels,
		bench.CreatedAt,
		bench.UpdatedAt)

	return err
}

// GetByID retrieves a bench by ID
func (r *PostgresBenchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bench, error) {
	query := `SELECT ` + benchColumns + ` FROM benches WHERE id = $1`

	bench, err := scanBench(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bench %s: %w", id, repository.ErrNotFound)
	}
	return bench, err
}

// GetBySessionID retrieves the benches of a session, newest first
func (r *PostgresBenchRepository) GetBySessionID(ctx context.Context, sessionID string) ([]*models.Bench, error) {
	query := `SELECT ` + benchColumns + ` FROM benches WHERE session_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var benches []*models.Bench
	for rows.Next() {
		bench, err := scanBench(rows)
		if err != nil {
			return nil, err
		}
		benches = append(benches, bench)
	}
	return benches, rows.Err()
}

// Update stores the mutable state of a bench
func (r *PostgresBenchRepository) Update(ctx context.Context, bench *models.Bench) error {
	timebase, channels, err := marshalBenchState(bench)
	if err != nil {
		return err
	}

	query := `
		UPDATE benches
		SET domain = $1, timebase = $2, total_samples = $3, channels = $4, updated_at = $5
		WHERE id = $6`

	res, err := r.db.ExecContext(ctx, query,
		bench.Domain.String(),
		timebase,
		bench.TotalSamples,
		channels,
		bench.UpdatedAt,
		bench.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bench %s: %w", bench.ID, repository.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBench(row rowScanner) (*models.Bench, error) {
	var bench models.Bench
	var domain string
	var timebase, channels []byte

	err := row.Scan(
		&bench.ID,
		&bench.SessionID,
		&domain,
		&timebase,
		&bench.TotalSamples,
		&channels,
		&bench.CreatedAt,
		&bench.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if bench.Domain, err = scope.ParseDomain(domain); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(timebase, &bench.Timebase); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timebase: %w", err)
	}
	if err := json.Unmarshal(channels, &bench.Channels); err != nil {
		return nil, fmt.Errorf("failed to unmarshal channels: %w", err)
	}
	return &bench, nil
}

func marshalBenchState(bench *models.Bench) (string, string, error) {
	timebase, err := json.Marshal(bench.Timebase)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal timebase: %w", err)
	}
	channels, err := json.Marshal(bench.Channels)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal channels: %w", err)
	}
	return string(timebase), string(channels), nil
}
