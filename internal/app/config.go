package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/yungbote/placeshare-backend/internal/data/db"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/geocode"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

const (
	DatabaseDriverPostgres = "postgres"
	DatabaseDriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver     string `env:"DB_DRIVER" envDefault:"postgres"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"placeshare.db"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     string `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD"`
	Name     string `env:"POSTGRES_NAME" envDefault:"placeshare"`
	SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
}

func (c DatabaseConfig) Postgres() db.PostgresConfig {
	return db.PostgresConfig{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Name:     c.Name,
		SSLMode:  c.SSLMode,
	}
}

type StorageConfig struct {
	Mode          string `env:"OBJECT_STORAGE_MODE"`
	PlaceBucket   string `env:"PLACE_BUCKET_NAME"`
	AvatarBucket  string `env:"AVATAR_BUCKET_NAME"`
	PlaceCDN      string `env:"PLACE_CDN_DOMAIN"`
	AvatarCDN     string `env:"AVATAR_CDN_DOMAIN"`
	PublicBaseURL string `env:"OBJECT_STORAGE_PUBLIC_BASE_URL"`

	EmulatorHost    string `env:"STORAGE_EMULATOR_HOST"`
	CredentialsJSON string `env:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`

	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3AccessKey string `env:"S3_ACCESS_KEY"`
	S3SecretKey string `env:"S3_SECRET_KEY"`
	S3UseSSL    bool   `env:"S3_USE_SSL" envDefault:"true"`

	LocalRoot string `env:"LOCAL_STORAGE_ROOT" envDefault:"uploads"`
}

// ObjectStorage maps the raw env values onto the storage layer's config.
// Mode resolution happens later in resolveBucketService.
func (c StorageConfig) ObjectStorage() objectstorage.Config {
	return objectstorage.Config{
		Mode:            objectstorage.Mode(c.Mode),
		PlaceBucket:     c.PlaceBucket,
		AvatarBucket:    c.AvatarBucket,
		PlaceCDN:        c.PlaceCDN,
		AvatarCDN:       c.AvatarCDN,
		PublicBaseURL:   c.PublicBaseURL,
		EmulatorHost:    c.EmulatorHost,
		CredentialsJSON: c.CredentialsJSON,
		S3Endpoint:      c.S3Endpoint,
		S3Region:        c.S3Region,
		S3AccessKey:     c.S3AccessKey,
		S3SecretKey:     c.S3SecretKey,
		S3UseSSL:        c.S3UseSSL,
		LocalRoot:       c.LocalRoot,
	}
}

type GeocodeConfig struct {
	GoogleAPIKey string        `env:"GOOGLE_API_KEY"`
	BaseURL      string        `env:"GEOCODE_BASE_URL"`
	MaxRetries   int           `env:"GEOCODE_MAX_RETRIES" envDefault:"2"`
	Timeout      time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"5s"`
	CacheTTL     time.Duration `env:"GEOCODE_CACHE_TTL" envDefault:"24h"`
}

func (c GeocodeConfig) Google() geocode.GoogleConfig {
	return geocode.GoogleConfig{
		APIKey:     c.GoogleAPIKey,
		BaseURL:    c.BaseURL,
		MaxRetries: c.MaxRetries,
		Timeout:    c.Timeout,
	}
}

type OtelConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" envDefault:"placeshare"`
	Environment string  `env:"APP_ENV" envDefault:"development"`
	Version     string  `env:"APP_VERSION"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Headers     string  `env:"OTEL_EXPORTER_OTLP_HEADERS"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	SampleRatio float64 `env:"OTEL_SAMPLE_RATIO" envDefault:"1"`
}

func (c OtelConfig) Observability() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.Enabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Version:     c.Version,
		Endpoint:    c.Endpoint,
		Headers:     c.Headers,
		Insecure:    c.Insecure,
		SampleRatio: c.SampleRatio,
	}
}

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	JWTSecretKey   string        `env:"JWT_SECRET_KEY"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"12"`

	RedisURL string `env:"REDIS_URL"`

	AssetJanitorInterval    time.Duration `env:"ASSET_JANITOR_INTERVAL" envDefault:"1m"`
	AssetJanitorMaxAttempts int           `env:"ASSET_JANITOR_MAX_ATTEMPTS" envDefault:"5"`
	MetricsInterval         time.Duration `env:"METRICS_COLLECT_INTERVAL" envDefault:"10s"`
	SlowWriteThreshold      time.Duration `env:"SLOW_WRITE_THRESHOLD" envDefault:"500ms"`

	AvatarColorsPath string `env:"AVATAR_COLORS_PATH"`
	AvatarFontPath   string `env:"AVATAR_FONT_PATH"`

	Database DatabaseConfig
	Storage  StorageConfig
	Geocode  GeocodeConfig
	Otel     OtelConfig
}

func (c Config) Address() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	return ":" + port
}

// LoadConfig reads an optional .env file and then the process environment.
// Values already present in the environment win over the file.
func LoadConfig(log *logger.Logger, files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
		log.Info("Loaded env file", "path", f)
	}
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case DatabaseDriverPostgres, DatabaseDriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER=%q (allowed: %q, %q)", c.Database.Driver, DatabaseDriverPostgres, DatabaseDriverSQLite)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	origins := c.CORSOrigins[:0]
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSOrigins = origins
	return nil
}
