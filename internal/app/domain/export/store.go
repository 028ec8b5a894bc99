package export

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// DocumentStore persists generated documents and returns their location.
type DocumentStore interface {
	Save(ctx context.Context, key string, data []byte) (string, error)
}

// ObjectClient is the subset of the MinIO client used by MinioStore.
type ObjectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// MinioStore keeps exported PDFs in an S3 compatible bucket.
type MinioStore struct {
	client ObjectClient
	bucket string
	logger *zap.Logger
}

// MinioConfig holds the connection settings of the object store.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
}

// NewMinioStore connects to the object store.
func NewMinioStore(cfg MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("minio endpoint, credentials and bucket are required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	logger.Info("Connected to object store", zap.String("endpoint", cfg.Endpoint), zap.String("bucket", cfg.Bucket))
	return NewMinioStoreWithClient(client, cfg.Bucket, logger), nil
}

// NewMinioStoreWithClient wraps an existing client.
func NewMinioStoreWithClient(client ObjectClient, bucket string, logger *zap.Logger) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, logger: logger}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("Created export bucket", zap.String("bucket", s.bucket))
	return nil
}

// Save uploads data as a PDF under key.
func (s *MinioStore) Save(ctx context.Context, key string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/pdf"})
	if err != nil {
		return "", fmt.Errorf("failed to store document %s: %w", key, err)
	}
	location := s.bucket + "/" + key
	s.logger.Debug("Stored document", zap.String("location", location), zap.Int("bytes", len(data)))
	return location, nil
}
