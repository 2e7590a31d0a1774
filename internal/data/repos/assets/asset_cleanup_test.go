package assets

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/placeshare-backend/internal/data/repos/testutil"
	types "github.com/yungbote/placeshare-backend/internal/domain"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
)

func TestAssetCleanupRepo(t *testing.T) {
	db := testutil.DB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewAssetCleanupRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	rows := []*types.AssetCleanup{
		{
			ID:         uuid.New(),
			Category:   "place",
			StorageKey: "place/a.jpg",
			Reason:     types.AssetCleanupReasonPlaceDeleted,
			Status:     types.AssetCleanupStatusPending,
			Metadata:   datatypes.JSON([]byte(`{"place_id":"x"}`)),
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		{
			ID:         uuid.New(),
			Category:   "place",
			StorageKey: "place/b.jpg",
			Reason:     types.AssetCleanupReasonCreateAborted,
			Status:     types.AssetCleanupStatusDone,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	if _, err := repo.Create(dbc, rows); err != nil {
		t.Fatalf("Create: %v", err)
	}

	pending, err := repo.ListPending(dbc, 10)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(pending) != 1 || pending[0].StorageKey != "place/a.jpg" {
		t.Fatalf("ListPending: unexpected result: %+v", pending)
	}

	if err := repo.UpdateFields(dbc, rows[0].ID, map[string]interface{}{
		"status":   types.AssetCleanupStatusDone,
		"attempts": 1,
	}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByID(dbc, rows[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != types.AssetCleanupStatusDone || got.Attempts != 1 {
		t.Fatalf("GetByID: unexpected row: %+v", got)
	}
	if string(got.Metadata) != `{"place_id":"x"}` {
		t.Fatalf("metadata: want=%q got=%q", `{"place_id":"x"}`, string(got.Metadata))
	}
}
