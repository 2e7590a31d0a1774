package domain

import (
	"github.com/yungbote/placeshare-backend/internal/domain/assets"
	"github.com/yungbote/placeshare-backend/internal/domain/places"
	"github.com/yungbote/placeshare-backend/internal/domain/user"
)

const (
	AssetCleanupStatusPending   = assets.AssetCleanupStatusPending
	AssetCleanupStatusDone      = assets.AssetCleanupStatusDone
	AssetCleanupStatusAbandoned = assets.AssetCleanupStatusAbandoned

	AssetCleanupReasonPlaceDeleted  = assets.AssetCleanupReasonPlaceDeleted
	AssetCleanupReasonCreateAborted = assets.AssetCleanupReasonCreateAborted
	AssetCleanupReasonSignupAborted = assets.AssetCleanupReasonSignupAborted
)

type (
	Place      = places.Place
	PlacePatch = places.PlacePatch
	Location   = places.Location

	User      = user.User
	UserPlace = user.UserPlace

	AssetCleanup = assets.AssetCleanup
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Place{},
		&UserPlace{},
		&AssetCleanup{},
	}
}
