package objectstorage

import (
	"context"
	"errors"
	"io"
	"strings"
)

type BucketCategory string

const (
	BucketCategoryPlace  BucketCategory = "place"
	BucketCategoryAvatar BucketCategory = "avatar"
)

// ErrObjectNotFound is returned by backends when a key does not exist.
// Deletes treat it as success.
var ErrObjectNotFound = errors.New("object not found")

// BucketService stores binary assets under (category, key).
type BucketService interface {
	UploadFile(ctx context.Context, category BucketCategory, key string, file io.Reader) error
	DeleteFile(ctx context.Context, category BucketCategory, key string) error
	GetPublicURL(category BucketCategory, key string) string
}

// ParseCategory accepts the category names persisted on cleanup rows.
func ParseCategory(raw string) (BucketCategory, bool) {
	switch BucketCategory(strings.ToLower(strings.TrimSpace(raw))) {
	case BucketCategoryPlace:
		return BucketCategoryPlace, true
	case BucketCategoryAvatar:
		return BucketCategoryAvatar, true
	default:
		return "", false
	}
}

func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	default:
		return ""
	}
}
