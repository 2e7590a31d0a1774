package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/domain"
)

// Service is the handle app wiring needs from a database backend.
type Service interface {
	DB() *gorm.DB
	AutoMigrateAll() error
	Close() error
}

var (
	_ Service = (*PostgresService)(nil)
	_ Service = (*SQLiteService)(nil)
)

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}
