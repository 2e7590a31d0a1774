package repos

import (
	"github.com/yungbote/placeshare-backend/internal/data/repos/assets"
	"github.com/yungbote/placeshare-backend/internal/data/repos/places"
	"github.com/yungbote/placeshare-backend/internal/data/repos/user"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserPlaceRepo = user.UserPlaceRepo
type PlaceRepo = places.PlaceRepo
type AssetCleanupRepo = assets.AssetCleanupRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewUserPlaceRepo(db *gorm.DB, log *logger.Logger) UserPlaceRepo {
	return user.NewUserPlaceRepo(db, log)
}
func NewPlaceRepo(db *gorm.DB, log *logger.Logger) PlaceRepo { return places.NewPlaceRepo(db, log) }
func NewAssetCleanupRepo(db *gorm.DB, log *logger.Logger) AssetCleanupRepo {
	return assets.NewAssetCleanupRepo(db, log)
}
