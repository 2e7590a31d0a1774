package s3

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

type bucketService struct {
	log    *logger.Logger
	client *minio.Client
	cfg    objectstorage.Config
}

// NewBucketService talks to any S3-compatible endpoint (MinIO, AWS, R2).
func NewBucketService(log *logger.Logger, cfg objectstorage.Config) (objectstorage.BucketService, error) {
	if cfg.Mode != objectstorage.ModeS3 {
		return nil, &objectstorage.ConfigError{Code: objectstorage.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := objectstorage.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	region := strings.TrimSpace(cfg.S3Region)
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(strings.TrimSpace(cfg.S3Endpoint), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		Secure: cfg.S3UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create s3 client: %w", err)
	}
	serviceLog := log.With("service", "BucketService", "backend", "s3")
	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"endpoint", cfg.S3Endpoint,
		"region", region,
		"place_bucket", cfg.PlaceBucket,
		"avatar_bucket", cfg.AvatarBucket,
	)
	return &bucketService{log: serviceLog, client: client, cfg: cfg}, nil
}

func (bs *bucketService) UploadFile(ctx context.Context, category objectstorage.BucketCategory, key string, file io.Reader) error {
	bucket, err := bs.cfg.Bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	opts := minio.PutObjectOptions{ContentType: objectstorage.ContentTypeForKey(key)}
	if _, err := bs.client.PutObject(ctx, bucket, key, file, -1, opts); err != nil {
		return fmt.Errorf("failed to put s3 object %q in bucket %q: %w", key, bucket, err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category objectstorage.BucketCategory, key string) error {
	bucket, err := bs.cfg.Bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := bs.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		if isNotFound(err) {
			return objectstorage.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete s3 object %q in bucket %q: %w", key, bucket, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(category objectstorage.BucketCategory, key string) string {
	return publicURL(bs.cfg, category, key)
}

func publicURL(cfg objectstorage.Config, category objectstorage.BucketCategory, key string) string {
	bucket, err := cfg.Bucket(category)
	if err != nil {
		return key
	}
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cdn := cfg.CDN(category); cdn != "" {
		return fmt.Sprintf("https://%s/%s", cdn, key)
	}
	if cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, bucket, key)
	}
	scheme := "http"
	if cfg.S3UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, strings.TrimRight(strings.TrimSpace(cfg.S3Endpoint), "/"), bucket, key)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}
