package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/services"
)

type Services struct {
	Store   domainagg.EntityStore
	Auth    services.AuthService
	Assets  services.AssetService
	Janitor services.AssetJanitor
	Avatars services.AvatarService
	User    services.UserService
	Place   services.PlaceService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	store := aggregates.NewEntityStore(aggregates.EntityStoreDeps{
		DB:       db,
		Log:      log,
		Places:   reposet.Place,
		Users:    reposet.User,
		Members:  reposet.UserPlace,
		Cleanups: reposet.AssetCleanup,
	})
	hooks := aggregates.NewObservabilityHooks(metrics, log, cfg.SlowWriteThreshold)

	auth, err := services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}
	avatars, err := services.NewAvatarService(log, services.AvatarConfig{
		ColorsJSONPath: cfg.AvatarColorsPath,
		FontPath:       cfg.AvatarFontPath,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init avatar service: %w", err)
	}

	assets := services.NewAssetService(log, clients.Bucket, metrics)
	janitor := services.NewAssetJanitor(log, reposet.AssetCleanup, assets, metrics, services.AssetJanitorConfig{
		MaxAttempts: cfg.AssetJanitorMaxAttempts,
	})

	return Services{
		Store:   store,
		Auth:    auth,
		Assets:  assets,
		Janitor: janitor,
		Avatars: avatars,
		User: services.NewUserService(log, services.UserServiceDeps{
			Store:      store,
			Hooks:      hooks,
			Auth:       auth,
			Assets:     assets,
			Janitor:    janitor,
			Avatars:    avatars,
			BcryptCost: cfg.BcryptCost,
		}),
		Place: services.NewPlaceService(log, services.PlaceServiceDeps{
			Store:    store,
			Hooks:    hooks,
			Gate:     services.NewAuthorizationGate(),
			Assets:   assets,
			Janitor:  janitor,
			Geocoder: clients.Geocoder,
		}),
	}, nil
}
