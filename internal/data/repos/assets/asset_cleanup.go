package assets

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/placeshare-backend/internal/domain"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type AssetCleanupRepo interface {
	Create(dbc dbctx.Context, rows []*types.AssetCleanup) ([]*types.AssetCleanup, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetCleanup, error)
	ListPending(dbc dbctx.Context, limit int) ([]*types.AssetCleanup, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type assetCleanupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssetCleanupRepo(db *gorm.DB, baseLog *logger.Logger) AssetCleanupRepo {
	return &assetCleanupRepo{db: db, log: baseLog.With("repo", "AssetCleanupRepo")}
}

func (r *assetCleanupRepo) Create(dbc dbctx.Context, rows []*types.AssetCleanup) ([]*types.AssetCleanup, error) {
	if len(rows) == 0 {
		return []*types.AssetCleanup{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *assetCleanupRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AssetCleanup, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.AssetCleanup
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

// ListPending returns the oldest-touched pending rows first.
func (r *assetCleanupRepo) ListPending(dbc dbctx.Context, limit int) ([]*types.AssetCleanup, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []*types.AssetCleanup
	if err := dbc.DB(r.db).
		Where("status = ?", types.AssetCleanupStatusPending).
		Order("updated_at ASC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *assetCleanupRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.AssetCleanup{}).Where("id = ?", id).Updates(updates).Error
}
