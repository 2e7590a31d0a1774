package objectstorage

import (
	"fmt"
	"net/url"
	"strings"
)

type Mode string

const (
	ModeGCS         Mode = "gcs"
	ModeGCSEmulator Mode = "gcs_emulator"
	ModeS3          Mode = "s3"
	ModeLocal       Mode = "local"
)

// Config is the resolved asset store configuration. The raw values come
// from the environment through app config.
type Config struct {
	Mode                  Mode
	CompatibilityFallback bool

	PlaceBucket   string
	AvatarBucket  string
	PlaceCDN      string
	AvatarCDN     string
	PublicBaseURL string

	// gcs / gcs_emulator
	EmulatorHost    string
	CredentialsJSON string

	// s3
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool

	// local
	LocalRoot string
}

func IsSupportedMode(mode Mode) bool {
	switch mode {
	case ModeGCS, ModeGCSEmulator, ModeS3, ModeLocal:
		return true
	default:
		return false
	}
}

func (cfg Config) IsEmulatorMode() bool {
	return cfg.Mode == ModeGCSEmulator
}

func (cfg Config) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ConfigErrorCode string

const (
	ConfigErrorInvalidMode         ConfigErrorCode = "invalid_mode"
	ConfigErrorMissingEmulatorHost ConfigErrorCode = "missing_emulator_host"
	ConfigErrorInvalidEmulatorHost ConfigErrorCode = "invalid_emulator_host"
	ConfigErrorMissingBucket       ConfigErrorCode = "missing_bucket"
	ConfigErrorMissingS3Endpoint   ConfigErrorCode = "missing_s3_endpoint"
	ConfigErrorInvalidPublicBase   ConfigErrorCode = "invalid_public_base_url"
)

type ConfigError struct {
	Code  ConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ConfigErrorInvalidMode:
		return fmt.Sprintf(
			"invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q, %q)",
			e.Mode, ModeGCS, ModeGCSEmulator, ModeS3, ModeLocal,
		)
	case ConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ModeGCSEmulator)
	case ConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires %s to be set", e.Mode, e.Value)
	case ConfigErrorMissingS3Endpoint:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires S3_ENDPOINT to be set", ModeS3)
	case ConfigErrorInvalidPublicBase:
		return fmt.Sprintf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Resolve normalizes a raw config. An empty mode picks gcs_emulator when an
// emulator host is present and gcs otherwise.
func Resolve(raw Config) (Config, error) {
	cfg := raw
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	rawMode := strings.TrimSpace(string(raw.Mode))
	mode := Mode(strings.ToLower(rawMode))

	switch {
	case mode == "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = ModeGCSEmulator
			cfg.CompatibilityFallback = true
		} else {
			cfg.Mode = ModeGCS
		}
	case IsSupportedMode(mode):
		cfg.Mode = mode
	default:
		return cfg, &ConfigError{Code: ConfigErrorInvalidMode, Mode: rawMode}
	}

	if base := strings.TrimSpace(cfg.PublicBaseURL); base != "" {
		if !isAbsoluteURL(base) {
			return cfg, &ConfigError{Code: ConfigErrorInvalidPublicBase, Mode: string(cfg.Mode), Value: base}
		}
		cfg.PublicBaseURL = strings.TrimRight(base, "/")
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if !IsSupportedMode(cfg.Mode) {
		return &ConfigError{Code: ConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.Mode == ModeLocal {
		return nil
	}
	if strings.TrimSpace(cfg.PlaceBucket) == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode), Value: "PLACE_BUCKET_NAME"}
	}
	if strings.TrimSpace(cfg.AvatarBucket) == "" {
		return &ConfigError{Code: ConfigErrorMissingBucket, Mode: string(cfg.Mode), Value: "AVATAR_BUCKET_NAME"}
	}
	switch cfg.Mode {
	case ModeGCSEmulator:
		if cfg.EmulatorHost == "" {
			return &ConfigError{Code: ConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
		}
		if !isAbsoluteURL(cfg.EmulatorHost) {
			return &ConfigError{Code: ConfigErrorInvalidEmulatorHost, Mode: string(cfg.Mode), Value: cfg.EmulatorHost}
		}
	case ModeS3:
		if strings.TrimSpace(cfg.S3Endpoint) == "" {
			return &ConfigError{Code: ConfigErrorMissingS3Endpoint, Mode: string(cfg.Mode)}
		}
	}
	return nil
}

// Bucket returns the bucket name configured for category.
func (cfg Config) Bucket(category BucketCategory) (string, error) {
	switch category {
	case BucketCategoryPlace:
		return cfg.PlaceBucket, nil
	case BucketCategoryAvatar:
		return cfg.AvatarBucket, nil
	default:
		return "", fmt.Errorf("unknown bucket category: %s", category)
	}
}

// CDN returns the CDN domain configured for category, if any.
func (cfg Config) CDN(category BucketCategory) string {
	switch category {
	case BucketCategoryPlace:
		return strings.TrimSpace(cfg.PlaceCDN)
	case BucketCategoryAvatar:
		return strings.TrimSpace(cfg.AvatarCDN)
	default:
		return ""
	}
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}
