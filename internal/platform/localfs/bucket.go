package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

// URLPrefix is the route the HTTP server mounts the local root on.
const URLPrefix = "/uploads"

type bucketService struct {
	log *logger.Logger
	fs  afero.Fs
	cfg objectstorage.Config
}

// NewBucketService stores assets under cfg.LocalRoot on the local disk.
func NewBucketService(log *logger.Logger, cfg objectstorage.Config) (objectstorage.BucketService, error) {
	root := strings.TrimSpace(cfg.LocalRoot)
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create local storage root %q: %w", root, err)
	}
	cfg.LocalRoot = root
	return NewBucketServiceWithFs(log, cfg, afero.NewBasePathFs(afero.NewOsFs(), root)), nil
}

// NewBucketServiceWithFs stores assets on an arbitrary afero filesystem.
func NewBucketServiceWithFs(log *logger.Logger, cfg objectstorage.Config, fs afero.Fs) objectstorage.BucketService {
	serviceLog := log.With("service", "BucketService", "backend", "local")
	serviceLog.Info("Object storage initialized", "mode", objectstorage.ModeLocal, "root", cfg.LocalRoot)
	return &bucketService{log: serviceLog, fs: fs, cfg: cfg}
}

func (bs *bucketService) UploadFile(ctx context.Context, category objectstorage.BucketCategory, key string, file io.Reader) error {
	name, err := objectPath(category, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bs.fs.MkdirAll(path.Dir(name), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", name, err)
	}
	f, err := bs.fs.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open %q: %w", name, err)
	}
	if _, err := io.Copy(f, file); err != nil {
		_ = f.Close()
		_ = bs.fs.Remove(name)
		return fmt.Errorf("write %q: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", name, err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(ctx context.Context, category objectstorage.BucketCategory, key string) error {
	name, err := objectPath(category, key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := bs.fs.Remove(name); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return objectstorage.ErrObjectNotFound
		}
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}

func (bs *bucketService) GetPublicURL(category objectstorage.BucketCategory, key string) string {
	name, err := objectPath(category, key)
	if err != nil {
		return key
	}
	return strings.TrimRight(bs.cfg.PublicBaseURL, "/") + URLPrefix + "/" + name
}

// objectPath cleans key and confines it to the category's directory.
func objectPath(category objectstorage.BucketCategory, key string) (string, error) {
	if _, ok := objectstorage.ParseCategory(string(category)); !ok {
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
	clean := path.Clean("/" + strings.TrimSpace(key))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || !strings.HasPrefix(clean, string(category)+"/") {
		return "", fmt.Errorf("key %q is outside category %q", key, category)
	}
	return clean, nil
}
