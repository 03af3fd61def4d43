package handlers

import (
	"context"
	"io"

	"github.com/RMahshie/scopebench/internal/processing"
	"github.com/RMahshie/scopebench/pkg/models"
	"github.com/RMahshie/scopebench/pkg/scope"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockBenchService implements processing.BenchService for testing
type MockBenchService struct {
	mock.Mock
}

func (m *MockBenchService) result(args mock.Arguments) (*models.Bench, error) {
	bench, _ := args.Get(0).(*models.Bench)
	return bench, args.Error(1)
}

func (m *MockBenchService) Create(ctx context.Context, sessionID string, totalSamples int) (*models.Bench, error) {
	return m.result(m.Called(ctx, sessionID, totalSamples))
}

func (m *MockBenchService) Get(ctx context.Context, id uuid.UUID) (*models.Bench, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockBenchService) SetDomain(ctx context.Context, id uuid.UUID, d scope.Domain) (*models.Bench, error) {
	return m.result(m.Called(ctx, id, d))
}

func (m *MockBenchService) UpdateTimebase(ctx context.Context, id uuid.UUID, u processing.TimebaseUpdate) (*models.Bench, error) {
	return m.result(m.Called(ctx, id, u))
}

func (m *MockBenchService) UpdateChannel(ctx context.Context, id uuid.UUID, channel int, u processing.ChannelUpdate) (*models.Bench, error) {
	return m.result(m.Called(ctx, id, channel, u))
}

func (m *MockBenchService) SetGenerator(ctx context.Context, id uuid.UUID, channel int, cfg scope.SynthesisConfig) (*models.Bench, error) {
	return m.result(m.Called(ctx, id, channel, cfg))
}

func (m *MockBenchService) SetStatic(ctx context.Context, id uuid.UUID, channel int, s scope.Series) (*models.Bench, error) {
	return m.result(m.Called(ctx, id, channel, s))
}

func (m *MockBenchService) AutoRange(ctx context.Context, id uuid.UUID) (*models.Bench, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockBenchService) LoadPreset(ctx context.Context, id uuid.UUID, preset int) (*models.Bench, error) {
	return m.result(m.Called(ctx, id, preset))
}

func (m *MockBenchService) Snapshot(ctx context.Context, id uuid.UUID) (*processing.Snapshot, error) {
	args := m.Called(ctx, id)
	snap, _ := args.Get(0).(*processing.Snapshot)
	return snap, args.Error(1)
}

func (m *MockBenchService) Trace(ctx context.Context, id uuid.UUID, channel int, opts processing.TraceOptions) (*processing.Trace, error) {
	args := m.Called(ctx, id, channel, opts)
	tr, _ := args.Get(0).(*processing.Trace)
	return tr, args.Error(1)
}

func (m *MockBenchService) Peaks(ctx context.Context, id uuid.UUID, channel int, d scope.Domain, top int) ([]scope.Peak, error) {
	args := m.Called(ctx, id, channel, d, top)
	peaks, _ := args.Get(0).([]scope.Peak)
	return peaks, args.Error(1)
}

func (m *MockBenchService) Cursor(ctx context.Context, id uuid.UUID, channel int, d *scope.Domain, index int) (*processing.CursorReadout, error) {
	args := m.Called(ctx, id, channel, d, index)
	c, _ := args.Get(0).(*processing.CursorReadout)
	return c, args.Error(1)
}

// MockImportRepository implements repository.ImportRepository for testing
type MockImportRepository struct {
	mock.Mock
}

func (m *MockImportRepository) Create(ctx context.Context, imp *models.Import) error {
	args := m.Called(ctx, imp)
	return args.Error(0)
}

func (m *MockImportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Import, error) {
	args := m.Called(ctx, id)
	imp, _ := args.Get(0).(*models.Import)
	return imp, args.Error(1)
}

func (m *MockImportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockImportRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockImportRepository) Complete(ctx context.Context, id uuid.UUID, sourceSamples int) error {
	args := m.Called(ctx, id, sourceSamples)
	return args.Error(0)
}

// MockObjectStore implements storage.ObjectStore for testing
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockObjectStore) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStore) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, body, size, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) Download(ctx context.Context, key string, limit int64) ([]byte, error) {
	args := m.Called(ctx, key, limit)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessImport(ctx context.Context, importID uuid.UUID) error {
	args := m.Called(ctx, importID)
	return args.Error(0)
}
