package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/db"
	apphttp "github.com/yungbote/placeshare-backend/internal/http"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type database interface {
	DB() *gorm.DB
	AutoMigrateAll() error
	Close() error
}

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Metrics  *observability.Metrics
	Repos    Repos
	Clients  Clients
	Services Services

	database     database
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, log, cfg)
}

// NewWithConfig wires the application from an already loaded config.
func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	a := &App{Log: log, Cfg: cfg, Metrics: observability.New()}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel.Observability())

	store, err := openDatabase(log, cfg.Database)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.database = store
	if err := store.AutoMigrateAll(); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	a.DB = store.DB()

	a.Repos = wireRepos(a.DB, log)
	a.Clients, err = wireClients(ctx, log, cfg, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Services, err = wireServices(a.DB, log, cfg, a.Repos, a.Clients, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	handlers, err := wireHandlers(log, a.DB, a.Services)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("wire handlers: %w", err)
	}
	a.Server = wireServer(log, cfg, a.Clients, a.Metrics, handlers, wireMiddleware(log, a.Services))
	return a, nil
}

func openDatabase(log *logger.Logger, cfg DatabaseConfig) (database, error) {
	switch cfg.Driver {
	case DatabaseDriverSQLite:
		s, err := db.NewSQLiteService(log, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return s, nil
	default:
		pg, err := db.NewPostgresService(log, cfg.Postgres())
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return pg, nil
	}
}

// Run serves HTTP and runs the background workers until ctx is cancelled or
// the server fails, then shuts the server down within ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Services.Janitor.StartWorker(gctx, a.Cfg.AssetJanitorInterval)
	a.Metrics.StartDBCollector(gctx, a.Log, a.DB, a.Cfg.MetricsInterval)
	a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis, a.Cfg.MetricsInterval)

	addr := a.Cfg.Address()
	g.Go(func() error {
		a.Log.Info("Server listening", "address", addr)
		if err := a.Server.Run(addr); err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.ShutdownTimeout)
		defer cancel()
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	a.Clients.Close()
	if a.database != nil {
		if err := a.database.Close(); err != nil && a.Log != nil {
			a.Log.Warn("database close failed", "error", err)
		}
		a.database = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
