package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/placeshare-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Name:     "Max Schwarz",
		Email:    email,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedPlace inserts a place together with its place-set membership row.
func SeedPlace(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, title string) *types.Place {
	tb.Helper()
	p := &types.Place{
		ID:          uuid.New(),
		Title:       title,
		Description: "seeded place",
		Address:     "20 W 34th St, New York, NY 10001",
		Location:    types.Location{Lat: 40.7484405, Lng: -73.9878584},
		ImageKey:    "place/" + uuid.NewString() + ".jpg",
		OwnerID:     ownerID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed place: %v", err)
	}
	link := &types.UserPlace{UserID: ownerID, PlaceID: p.ID, CreatedAt: time.Now().UTC()}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("seed user_place: %v", err)
	}
	return p
}
