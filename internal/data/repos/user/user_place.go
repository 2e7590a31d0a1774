package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/placeshare-backend/internal/domain"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

// UserPlaceRepo stores place-set membership rows. Appends are inserts, so
// concurrent appends to one user never overwrite each other.
type UserPlaceRepo interface {
	Add(dbc dbctx.Context, userID, placeID uuid.UUID) error
	Remove(dbc dbctx.Context, userID, placeID uuid.UUID) (int64, error)
	PlaceIDsByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error)
}

type userPlaceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPlaceRepo(db *gorm.DB, baseLog *logger.Logger) UserPlaceRepo {
	return &userPlaceRepo{db: db, log: baseLog.With("repo", "UserPlaceRepo")}
}

func (r *userPlaceRepo) Add(dbc dbctx.Context, userID, placeID uuid.UUID) error {
	row := &types.UserPlace{
		UserID:    userID,
		PlaceID:   placeID,
		CreatedAt: time.Now().UTC(),
	}
	return dbc.DB(r.db).Create(row).Error
}

func (r *userPlaceRepo) Remove(dbc dbctx.Context, userID, placeID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).
		Where("user_id = ? AND place_id = ?", userID, placeID).
		Delete(&types.UserPlace{})
	return res.RowsAffected, res.Error
}

func (r *userPlaceRepo) PlaceIDsByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []*types.UserPlace
	if err := dbc.DB(r.db).
		Where("user_id IN ?", userIDs).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = append(out[row.UserID], row.PlaceID)
	}
	return out, nil
}
