package places

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/placeshare-backend/internal/data/repos/testutil"
	types "github.com/yungbote/placeshare-backend/internal/domain"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
)

func TestPlaceRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewPlaceRepo(db, testutil.Logger(t))

	owner := testutil.SeedUser(t, ctx, db, "places@example.com")
	created, err := repo.Create(dbc, []*types.Place{
		{
			ID:          uuid.New(),
			Title:       "Empire State Building",
			Description: "One of the most famous sky scrapers in the world!",
			Address:     "20 W 34th St, New York, NY 10001",
			Location:    types.Location{Lat: 40.7484405, Lng: -73.9878584},
			OwnerID:     owner.ID,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created[0].ID

	got, err := repo.GetByID(dbc, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Title != "Empire State Building" || got.Location.Lat != 40.7484405 {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: want=nil,nil got=%+v,%v", missing, err)
	}

	byOwner, err := repo.ListByOwnerID(dbc, owner.ID)
	if err != nil {
		t.Fatalf("ListByOwnerID: %v", err)
	}
	if len(byOwner) != 1 || byOwner[0].ID != id {
		t.Fatalf("ListByOwnerID: unexpected result: %+v", byOwner)
	}

	n, err := repo.UpdateFields(dbc, id, map[string]interface{}{"title": "ESB"})
	if err != nil || n != 1 {
		t.Fatalf("UpdateFields: want=1,nil got=%d,%v", n, err)
	}
	n, err = repo.UpdateFields(dbc, uuid.New(), map[string]interface{}{"title": "nope"})
	if err != nil || n != 0 {
		t.Fatalf("UpdateFields missing: want=0,nil got=%d,%v", n, err)
	}

	n, err = repo.DeleteByID(dbc, id)
	if err != nil || n != 1 {
		t.Fatalf("DeleteByID: want=1,nil got=%d,%v", n, err)
	}
	n, err = repo.DeleteByID(dbc, id)
	if err != nil || n != 0 {
		t.Fatalf("DeleteByID twice: want=0,nil got=%d,%v", n, err)
	}
}
