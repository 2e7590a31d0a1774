package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	cfg           objectstorage.Config
}

func NewBucketService(log *logger.Logger, cfg objectstorage.Config) (objectstorage.BucketService, error) {
	if cfg.Mode != objectstorage.ModeGCS && cfg.Mode != objectstorage.ModeGCSEmulator {
		return nil, &objectstorage.ConfigError{Code: objectstorage.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if err := objectstorage.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService", "backend", "gcs")

	stClient, err := newStorageClientForMode(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"public_base_url", cfg.PublicBaseURL,
		"place_bucket", cfg.PlaceBucket,
		"avatar_bucket", cfg.AvatarBucket,
	)
	return &bucketService{log: serviceLog, storageClient: stClient, cfg: cfg}, nil
}

func newStorageClientForMode(ctx context.Context, cfg objectstorage.Config) (*storage.Client, error) {
	switch cfg.Mode {
	case objectstorage.ModeGCS:
		opts := ClientOptions(cfg.CredentialsJSON)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case objectstorage.ModeGCSEmulator:
		// The storage client only discovers the emulator through this variable.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &objectstorage.ConfigError{Code: objectstorage.ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (bs *bucketService) UploadFile(ctx context.Context, category objectstorage.BucketCategory, key string, file io.Reader) error {
	bucket, err := bs.cfg.Bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bucket).Object(key).NewWriter(ctx)
	if ct := objectstorage.ContentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
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
	if err := bs.storageClient.Bucket(bucket).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return objectstorage.ErrObjectNotFound
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bucket, err)
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
	if cfg.IsEmulatorMode() {
		base := cfg.PublicBaseURL
		if base == "" {
			base = cfg.EmulatorHost
		}
		if base != "" {
			return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(bucket), url.PathEscape(key))
		}
	}
	if cfg.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", cfg.PublicBaseURL, bucket, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}
