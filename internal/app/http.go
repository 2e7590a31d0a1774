package app

import (
	"gorm.io/gorm"

	apphttp "github.com/yungbote/placeshare-backend/internal/http"
	httpH "github.com/yungbote/placeshare-backend/internal/http/handlers"
	httpMW "github.com/yungbote/placeshare-backend/internal/http/middleware"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health *httpH.HealthHandler
	Auth   *httpH.AuthHandler
	User   *httpH.UserHandler
	Place  *httpH.PlaceHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) (Handlers, error) {
	log.Info("Wiring handlers...")
	sqlDB, err := db.DB()
	if err != nil {
		return Handlers{}, err
	}
	return Handlers{
		Health: httpH.NewHealthHandler(sqlDB),
		Auth:   httpH.NewAuthHandler(services.User),
		User:   httpH.NewUserHandler(services.User),
		Place:  httpH.NewPlaceHandler(services.Place),
	}, nil
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, clients Clients, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	routerCfg := apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		UserHandler:    handlers.User,
		PlaceHandler:   handlers.Place,
		HealthHandler:  handlers.Health,
	}
	if cfg.Otel.Enabled {
		routerCfg.ServiceName = cfg.Otel.ServiceName
	}
	if clients.Storage.Mode == objectstorage.ModeLocal {
		routerCfg.UploadsDir = clients.Storage.LocalRoot
	}
	return apphttp.NewServer(routerCfg)
}
