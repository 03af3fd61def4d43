package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrTooLarge is returned by Download when an object exceeds the caller's
// size limit.
var ErrTooLarge = errors.New("object exceeds size limit")

const (
	uploadURLExpiry   = 15 * time.Minute
	downloadURLExpiry = 24 * time.Hour
)

// ObjectStore holds uploaded capture files.
type ObjectStore interface {
	// EnsureBucket creates the configured bucket if it does not exist.
	EnsureBucket(ctx context.Context) error
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// Download reads at most limit bytes; limit <= 0 means no limit.
	Download(ctx context.Context, key string, limit int64) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Config selects and configures an ObjectStore backend.
type Config struct {
	Backend   string // "s3" or "minio"
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New builds the backend named by cfg.Backend.
func New(ctx context.Context, cfg Config) (ObjectStore, error) {
	switch cfg.Backend {
	case "", "s3":
		return NewS3Store(ctx, cfg)
	case "minio":
		return NewMinioStore(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// CaptureKey is the object key for an import's raw capture.
func CaptureKey(benchID, importID uuid.UUID, ext string) string {
	return fmt.Sprintf("captures/%s/%s%s", benchID, importID, ext)
}

var validContentTypes = map[string]bool{
	"text/csv":        true,
	"text/plain":      true,
	"application/csv": true,
	"audio/wav":       true,
	"audio/x-wav":     true,
	"audio/wave":      true,
}

// ValidateContentType rejects uploads that cannot hold a capture.
func ValidateContentType(contentType string) error {
	if !validContentTypes[contentType] {
		return fmt.Errorf("invalid content type: %s. Supported types: text/csv, text/plain, application/csv, audio/wav, audio/x-wav, audio/wave", contentType)
	}
	return nil
}

// readLimited drains body, failing once more than limit bytes arrive.
func readLimited(body io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(body)
	}
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}
