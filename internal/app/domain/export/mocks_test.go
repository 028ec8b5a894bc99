package export

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"

	"github.com/FACorreiaa/loci-itinerary-maps/internal/app/models"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	args := m.Called(ctx, key, data)
	return args.String(0), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishExport(ctx context.Context, event models.ExportEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

type MockObjectClient struct {
	mock.Mock
}

func (m *MockObjectClient) BucketExists(ctx context.Context, bucket string) (bool, error) {
	args := m.Called(ctx, bucket)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectClient) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return m.Called(ctx, bucket, opts).Error(0)
}

func (m *MockObjectClient) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, _ := io.ReadAll(reader)
	args := m.Called(ctx, bucket, object, data, size, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

type MockItineraries struct {
	mock.Mock
}

func (m *MockItineraries) GetItinerary(ctx context.Context, userID, id uuid.UUID) (*models.Itinerary, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Itinerary), args.Error(1)
}

type MockService struct {
	mock.Mock
}

func (m *MockService) Export(ctx context.Context, itinerary models.Itinerary, capturer Capturer) (*models.ExportedDocument, error) {
	args := m.Called(ctx, itinerary, capturer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ExportedDocument), args.Error(1)
}

// blockingCapturer cancels ctx while the capture is in flight and still
// returns an image, like a capture that completes after a teardown.
type blockingCapturer struct {
	cancel  context.CancelFunc
	capture Capture
}

func (b blockingCapturer) Capture(ctx context.Context, _ models.Itinerary) (Capture, error) {
	b.cancel()
	return b.capture, nil
}
