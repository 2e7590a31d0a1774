package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

// AssetService stores binary assets outside of any transaction. Writes are
// side effects: nothing here takes part in a rollback.
type AssetService interface {
	Store(ctx context.Context, category objectstorage.BucketCategory, raw []byte, suggestedName string) (string, error)
	Delete(ctx context.Context, category objectstorage.BucketCategory, key string) error
	PublicURL(category objectstorage.BucketCategory, key string) string
}

type assetService struct {
	log     *logger.Logger
	bucket  objectstorage.BucketService
	metrics *observability.Metrics
	newID   func() uuid.UUID
}

func NewAssetService(log *logger.Logger, bucket objectstorage.BucketService, metrics *observability.Metrics) AssetService {
	return &assetService{
		log:     log.With("service", "AssetService"),
		bucket:  bucket,
		metrics: metrics,
		newID:   uuid.New,
	}
}

func (s *assetService) Store(ctx context.Context, category objectstorage.BucketCategory, raw []byte, suggestedName string) (string, error) {
	const op = "AssetService.Store"
	if len(raw) == 0 {
		return "", domainagg.NewError(domainagg.CodeValidation, op, "Image is required.", nil)
	}
	if s.bucket == nil {
		return "", domainagg.NewError(domainagg.CodeIO, op, "asset storage not configured", nil)
	}
	key := string(category) + "/" + s.newID().String() + assetExtension(raw, suggestedName)
	if err := s.bucket.UploadFile(ctx, category, key, bytes.NewReader(raw)); err != nil {
		s.metrics.IncAssetOperation("store", string(category), "error")
		s.log.Error("asset upload failed", "category", category, "key", key, "error", err)
		return "", domainagg.NewError(domainagg.CodeIO, op, "Could not store the uploaded image.", err)
	}
	s.metrics.IncAssetOperation("store", string(category), "ok")
	return key, nil
}

// Delete removes the object. A missing object counts as deleted.
func (s *assetService) Delete(ctx context.Context, category objectstorage.BucketCategory, key string) error {
	const op = "AssetService.Delete"
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if s.bucket == nil {
		return domainagg.NewError(domainagg.CodeIO, op, "asset storage not configured", nil)
	}
	err := s.bucket.DeleteFile(ctx, category, key)
	switch {
	case err == nil:
		s.metrics.IncAssetOperation("delete", string(category), "ok")
		return nil
	case errors.Is(err, objectstorage.ErrObjectNotFound):
		s.metrics.IncAssetOperation("delete", string(category), "missing")
		return nil
	default:
		s.metrics.IncAssetOperation("delete", string(category), "error")
		return domainagg.NewError(domainagg.CodeIO, op, "Could not delete the stored image.", err)
	}
}

func (s *assetService) PublicURL(category objectstorage.BucketCategory, key string) string {
	if s.bucket == nil || strings.TrimSpace(key) == "" {
		return ""
	}
	return s.bucket.GetPublicURL(category, key)
}

func assetExtension(raw []byte, suggestedName string) string {
	switch http.DetectContentType(raw) {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	ext := strings.ToLower(path.Ext(strings.TrimSpace(suggestedName)))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if objectstorage.ContentTypeForKey("x"+ext) != "" {
		return ext
	}
	return ".bin"
}
