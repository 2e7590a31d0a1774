package user

import (
	"time"

	"github.com/google/uuid"
)

// UserPlace is one membership row of a user's place-set. A place appears in
// at most one set, enforced by the unique index on place_id.
type UserPlace struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	PlaceID   uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:idx_user_place_place;column:place_id" json:"place_id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (UserPlace) TableName() string { return "user_place" }
