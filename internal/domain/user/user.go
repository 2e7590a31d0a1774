package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"not null;column:name" json:"name"`
	Email    string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string    `gorm:"not null;column:password" json:"-"`

	ImageKey string `gorm:"column:image_key" json:"-"`
	ImageURL string `gorm:"-" json:"image,omitempty"`

	// Places is the user's place-set, loaded from user_place.
	Places []uuid.UUID `gorm:"-" json:"places"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }

// HasPlace reports whether placeID is in the user's place-set.
func (u *User) HasPlace(placeID uuid.UUID) bool {
	if u == nil {
		return false
	}
	for _, id := range u.Places {
		if id == placeID {
			return true
		}
	}
	return false
}
