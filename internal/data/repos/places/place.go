package places

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/placeshare-backend/internal/domain"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type PlaceRepo interface {
	Create(dbc dbctx.Context, rows []*types.Place) ([]*types.Place, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Place, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Place, error)
	ListByOwnerID(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Place, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error)
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type placeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlaceRepo(db *gorm.DB, baseLog *logger.Logger) PlaceRepo {
	return &placeRepo{db: db, log: baseLog.With("repo", "PlaceRepo")}
}

func (r *placeRepo) Create(dbc dbctx.Context, rows []*types.Place) ([]*types.Place, error) {
	if len(rows) == 0 {
		return []*types.Place{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *placeRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Place, error) {
	var out []*types.Place
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns nil, nil when the place does not exist.
func (r *placeRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Place, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rows, err := r.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *placeRepo) ListByOwnerID(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Place, error) {
	var out []*types.Place
	if ownerID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *placeRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (int64, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Model(&types.Place{}).Where("id = ?", id).Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *placeRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Place{})
	return res.RowsAffected, res.Error
}
