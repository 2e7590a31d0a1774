package aggregates

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/placeshare-backend/internal/domain"
)

// EntityStore persists places, users and their place-sets.
//
// Writes exist only on Tx, so commit is the single path to visibility.
// Reads on the store observe committed state only.
type EntityStore interface {
	Aggregate

	// Begin opens a transaction. Fails with CodeUnavailable when no
	// session can be allocated.
	Begin(ctx context.Context) (Tx, error)

	FindPlaceByID(ctx context.Context, placeID uuid.UUID) (*domain.Place, error)
	FindPlacesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Place, error)
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// Tx is an open unit of work. Pending writes become visible together on
// Commit or not at all.
type Tx interface {
	// InsertPlace stages a new place and returns its id.
	InsertPlace(place *domain.Place) (uuid.UUID, error)
	// AppendPlaceToUser adds placeID to the user's place-set.
	AppendPlaceToUser(userID, placeID uuid.UUID) error
	// RemovePlace deletes the place; CodeNotFound when it is already gone.
	RemovePlace(placeID uuid.UUID) error
	// RemovePlaceFromUser drops placeID from the user's place-set.
	RemovePlaceFromUser(userID, placeID uuid.UUID) error
	// UpdatePlace applies a field patch to one place.
	UpdatePlace(placeID uuid.UUID, patch domain.PlacePatch) (*domain.Place, error)
	// InsertUser stages a new user.
	InsertUser(user *domain.User) error
	// EnqueueAssetCleanup records an asset removal that commits with the tx.
	EnqueueAssetCleanup(task *domain.AssetCleanup) error

	// Commit publishes all staged writes atomically. A failed commit leaves
	// nothing visible and reports CodeConflict.
	Commit() error
	// Rollback discards staged writes. It is idempotent and a no-op after
	// Commit.
	Rollback()
}

// EntityStoreContract documents the place/user consistency boundary.
var EntityStoreContract = Contract{
	Name:             "Places.EntityStore",
	WriteTxOwnership: WriteTxOwnedByCaller,
	ReadPolicy:       ReadPolicyCommittedOnly,
	Notes:            "place rows and user_place membership change only inside one Tx",
}
