package places

import (
	"time"

	"github.com/google/uuid"
)

// Location is the geocoded position of a place's address.
type Location struct {
	Lat float64 `gorm:"column:lat;not null" json:"lat"`
	Lng float64 `gorm:"column:lng;not null" json:"lng"`
}

type Place struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"not null;column:description" json:"description"`
	Address     string    `gorm:"not null;column:address" json:"address"`
	Location    Location  `gorm:"embedded" json:"location"`

	// ImageKey is the asset store key; ImageURL is resolved at read time.
	ImageKey string `gorm:"column:image_key" json:"-"`
	ImageURL string `gorm:"-" json:"image,omitempty"`

	// OwnerID is fixed at creation. Reassignment is not supported.
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index;column:owner_id" json:"creator"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Place) TableName() string { return "place" }

// Owner satisfies the ownership contract checked before mutations.
func (p *Place) Owner() uuid.UUID {
	if p == nil {
		return uuid.Nil
	}
	return p.OwnerID
}

// PlacePatch lists the fields a place update may change. Nil means unchanged.
type PlacePatch struct {
	Title       *string
	Description *string
}

func (p PlacePatch) Empty() bool {
	return p.Title == nil && p.Description == nil
}

// Columns renders the patch as a gorm column map.
func (p PlacePatch) Columns() map[string]interface{} {
	out := map[string]interface{}{}
	if p.Title != nil {
		out["title"] = *p.Title
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	return out
}
