package assets

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AssetCleanupStatusPending   = "pending"
	AssetCleanupStatusDone      = "done"
	AssetCleanupStatusAbandoned = "abandoned"
)

const (
	AssetCleanupReasonPlaceDeleted  = "place_deleted"
	AssetCleanupReasonCreateAborted = "create_aborted"
	AssetCleanupReasonSignupAborted = "signup_aborted"
)

// AssetCleanup records an object that must be removed from the asset store.
// Rows stay pending until a delete succeeds or attempts run out.
type AssetCleanup struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Category   string         `gorm:"not null;column:category" json:"category"`
	StorageKey string         `gorm:"not null;column:storage_key" json:"storage_key"`
	Reason     string         `gorm:"not null;column:reason" json:"reason"`
	Status     string         `gorm:"not null;index;column:status" json:"status"`
	Attempts   int            `gorm:"not null;default:0;column:attempts" json:"attempts"`
	LastError  string         `gorm:"column:last_error" json:"last_error,omitempty"`
	Metadata   datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null;index" json:"updated_at"`
}

func (AssetCleanup) TableName() string { return "asset_cleanup" }
