package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/repos"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type Repos struct {
	Place        repos.PlaceRepo
	User         repos.UserRepo
	UserPlace    repos.UserPlaceRepo
	AssetCleanup repos.AssetCleanupRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Place:        repos.NewPlaceRepo(db, log),
		User:         repos.NewUserRepo(db, log),
		UserPlace:    repos.NewUserPlaceRepo(db, log),
		AssetCleanup: repos.NewAssetCleanupRepo(db, log),
	}
}
