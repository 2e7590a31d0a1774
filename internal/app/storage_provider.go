package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/placeshare-backend/internal/platform/gcp"
	"github.com/yungbote/placeshare-backend/internal/platform/localfs"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
	"github.com/yungbote/placeshare-backend/internal/platform/s3"
)

type bucketFactory func(log *logger.Logger, cfg objectstorage.Config) (objectstorage.BucketService, error)

// Swapped in tests.
var bucketFactories = map[objectstorage.Mode]bucketFactory{
	objectstorage.ModeGCS:         gcp.NewBucketService,
	objectstorage.ModeGCSEmulator: gcp.NewBucketService,
	objectstorage.ModeS3:          s3.NewBucketService,
	objectstorage.ModeLocal:       localfs.NewBucketService,
}

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorInvalidEmulatorHost StorageProviderBootstrapErrorCode = "invalid_emulator_host"
	StorageProviderBootstrapErrorInvalidConfig       StorageProviderBootstrapErrorCode = "invalid_config"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveBucketService picks the asset store backend for the configured mode.
func resolveBucketService(log *logger.Logger, raw objectstorage.Config) (objectstorage.BucketService, objectstorage.Config, error) {
	cfg, err := objectstorage.Resolve(raw)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(cfg, err)
		log.Error(
			"Object storage provider selection failed",
			"mode", raw.Mode,
			"emulator_host", raw.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, cfg, classified
	}

	log.Info(
		"Selecting object storage provider",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"compatibility_fallback", cfg.CompatibilityFallback,
		"emulator_host", cfg.EmulatorHost,
	)

	factory, ok := bucketFactories[cfg.Mode]
	if !ok {
		err := &StorageProviderBootstrapError{
			Code:  StorageProviderBootstrapErrorInvalidMode,
			Mode:  string(cfg.Mode),
			Cause: fmt.Errorf("no provider registered for mode %q", cfg.Mode),
		}
		log.Error("Object storage provider selection failed", "mode", cfg.Mode, "error_code", err.Code, "error", err)
		return nil, cfg, err
	}

	bucket, err := factory(log, cfg)
	if err != nil {
		classified := classifyStorageProviderBootstrapError(cfg, err)
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", cfg.Mode,
			"mode_source", cfg.ModeSource(),
			"emulator_host", cfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(classified),
			"error", classified,
		)
		return nil, cfg, classified
	}
	return bucket, cfg, nil
}

func classifyStorageProviderBootstrapError(cfg objectstorage.Config, err error) error {
	out := &StorageProviderBootstrapError{
		Code:         StorageProviderBootstrapErrorConnectFailed,
		Mode:         string(cfg.Mode),
		EmulatorHost: cfg.EmulatorHost,
		Cause:        err,
	}
	var cfgErr *objectstorage.ConfigError
	if errors.As(err, &cfgErr) {
		switch cfgErr.Code {
		case objectstorage.ConfigErrorInvalidMode:
			out.Code = StorageProviderBootstrapErrorInvalidMode
			if cfgErr.Mode != "" {
				out.Mode = cfgErr.Mode
			}
		case objectstorage.ConfigErrorMissingEmulatorHost:
			out.Code = StorageProviderBootstrapErrorMissingEmulatorHost
		case objectstorage.ConfigErrorInvalidEmulatorHost:
			out.Code = StorageProviderBootstrapErrorInvalidEmulatorHost
		default:
			out.Code = StorageProviderBootstrapErrorInvalidConfig
		}
	}
	return out
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) && bootstrapErr.Code != "" {
		return bootstrapErr.Code
	}
	return StorageProviderBootstrapErrorConnectFailed
}
