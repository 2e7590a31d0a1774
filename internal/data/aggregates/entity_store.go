package aggregates

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/placeshare-backend/internal/data/repos"
	"github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
)

type EntityStoreDeps struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Places   repos.PlaceRepo
	Users    repos.UserRepo
	Members  repos.UserPlaceRepo
	Cleanups repos.AssetCleanupRepo
}

type entityStore struct {
	db       *gorm.DB
	log      *logger.Logger
	places   repos.PlaceRepo
	users    repos.UserRepo
	members  repos.UserPlaceRepo
	cleanups repos.AssetCleanupRepo
}

// NewEntityStore builds the gorm-backed EntityStore. Missing repos are
// constructed on deps.DB.
func NewEntityStore(deps EntityStoreDeps) domainagg.EntityStore {
	s := &entityStore{
		db:       deps.DB,
		log:      deps.Log.With("aggregate", "EntityStore"),
		places:   deps.Places,
		users:    deps.Users,
		members:  deps.Members,
		cleanups: deps.Cleanups,
	}
	if s.places == nil {
		s.places = repos.NewPlaceRepo(deps.DB, deps.Log)
	}
	if s.users == nil {
		s.users = repos.NewUserRepo(deps.DB, deps.Log)
	}
	if s.members == nil {
		s.members = repos.NewUserPlaceRepo(deps.DB, deps.Log)
	}
	if s.cleanups == nil {
		s.cleanups = repos.NewAssetCleanupRepo(deps.DB, deps.Log)
	}
	return s
}

func (s *entityStore) Contract() domainagg.Contract {
	return domainagg.EntityStoreContract
}

func (s *entityStore) Begin(ctx context.Context) (domainagg.Tx, error) {
	const op = "EntityStore.Begin"
	if s.db == nil {
		return nil, domainagg.NewError(domainagg.CodeUnavailable, op, "entity store has no database", nil)
	}
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, domainagg.NewError(domainagg.CodeUnavailable, op, "could not open a transaction", tx.Error)
	}
	return &gormTx{store: s, ctx: ctx, tx: tx}, nil
}

func (s *entityStore) FindPlaceByID(ctx context.Context, placeID uuid.UUID) (*domain.Place, error) {
	const op = "EntityStore.FindPlaceByID"
	p, err := s.places.GetByID(dbctx.Context{Ctx: ctx}, placeID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if p == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "could not find a place for the provided id", nil)
	}
	return p, nil
}

func (s *entityStore) FindPlacesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Place, error) {
	rows, err := s.places.ListByOwnerID(dbctx.Context{Ctx: ctx}, ownerID)
	if err != nil {
		return nil, MapError("EntityStore.FindPlacesByOwner", err)
	}
	return rows, nil
}

func (s *entityStore) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	const op = "EntityStore.FindUserByID"
	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if u == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "could not find a user for the provided id", nil)
	}
	if err := s.loadPlaceSets(dbc, []*domain.User{u}); err != nil {
		return nil, MapError(op, err)
	}
	return u, nil
}

func (s *entityStore) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "EntityStore.FindUserByEmail"
	dbc := dbctx.Context{Ctx: ctx}
	u, err := s.users.GetByEmail(dbc, email)
	if err != nil {
		return nil, MapError(op, err)
	}
	if u == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "could not find a user for the provided email", nil)
	}
	if err := s.loadPlaceSets(dbc, []*domain.User{u}); err != nil {
		return nil, MapError(op, err)
	}
	return u, nil
}

func (s *entityStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	const op = "EntityStore.ListUsers"
	dbc := dbctx.Context{Ctx: ctx}
	users, err := s.users.List(dbc)
	if err != nil {
		return nil, MapError(op, err)
	}
	if err := s.loadPlaceSets(dbc, users); err != nil {
		return nil, MapError(op, err)
	}
	return users, nil
}

func (s *entityStore) loadPlaceSets(dbc dbctx.Context, users []*domain.User) error {
	if len(users) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	sets, err := s.members.PlaceIDsByUserIDs(dbc, ids)
	if err != nil {
		return err
	}
	for _, u := range users {
		u.Places = sets[u.ID]
		if u.Places == nil {
			u.Places = []uuid.UUID{}
		}
	}
	return nil
}

type txState int

const (
	txOpen txState = iota
	txCommitted
	txRolledBack
)

type gormTx struct {
	store *entityStore
	ctx   context.Context
	tx    *gorm.DB

	mu    sync.Mutex
	state txState
}

func (t *gormTx) dbc() dbctx.Context {
	return dbctx.Context{Ctx: t.ctx, Tx: t.tx}
}

func (t *gormTx) ensureOpen(op string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != txOpen {
		return domainagg.NewError(domainagg.CodeInternal, op, "transaction is no longer open", nil)
	}
	return nil
}

func (t *gormTx) InsertPlace(place *domain.Place) (uuid.UUID, error) {
	const op = "EntityStore.InsertPlace"
	if err := t.ensureOpen(op); err != nil {
		return uuid.Nil, err
	}
	if place == nil {
		return uuid.Nil, MapError(op, ValidationError("place is required"))
	}
	if err := RequireNonBlank(
		[2]string{"title", place.Title},
		[2]string{"address", place.Address},
	); err != nil {
		return uuid.Nil, MapError(op, err)
	}
	if place.OwnerID == uuid.Nil {
		return uuid.Nil, MapError(op, ValidationError("owner is required"))
	}
	if place.ID == uuid.Nil {
		place.ID = uuid.New()
	}
	if _, err := t.store.places.Create(t.dbc(), []*domain.Place{place}); err != nil {
		return uuid.Nil, MapError(op, err)
	}
	return place.ID, nil
}

func (t *gormTx) AppendPlaceToUser(userID, placeID uuid.UUID) error {
	const op = "EntityStore.AppendPlaceToUser"
	if err := t.ensureOpen(op); err != nil {
		return err
	}
	// Lock the owner first so a concurrent user removal cannot slip between
	// the existence check and the insert.
	u, err := t.store.users.LockByID(t.dbc(), userID)
	if err != nil {
		return MapError(op, err)
	}
	if u == nil {
		return MapError(op, NotFoundError("could not find user for provided id"))
	}
	if err := t.store.members.Add(t.dbc(), userID, placeID); err != nil {
		return MapError(op, err)
	}
	return nil
}

func (t *gormTx) RemovePlace(placeID uuid.UUID) error {
	const op = "EntityStore.RemovePlace"
	if err := t.ensureOpen(op); err != nil {
		return err
	}
	n, err := t.store.places.DeleteByID(t.dbc(), placeID)
	if err != nil {
		return MapError(op, err)
	}
	return MapError(op, RequireRowsAffected(n, NotFoundError("could not find a place for the provided id")))
}

func (t *gormTx) RemovePlaceFromUser(userID, placeID uuid.UUID) error {
	const op = "EntityStore.RemovePlaceFromUser"
	if err := t.ensureOpen(op); err != nil {
		return err
	}
	n, err := t.store.members.Remove(t.dbc(), userID, placeID)
	if err != nil {
		return MapError(op, err)
	}
	return MapError(op, RequireRowsAffected(n, InvariantError("place is missing from its owner's place-set")))
}

func (t *gormTx) UpdatePlace(placeID uuid.UUID, patch domain.PlacePatch) (*domain.Place, error) {
	const op = "EntityStore.UpdatePlace"
	if err := t.ensureOpen(op); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, MapError(op, ValidationError("nothing to update"))
	}
	n, err := t.store.places.UpdateFields(t.dbc(), placeID, patch.Columns())
	if err != nil {
		return nil, MapError(op, err)
	}
	if err := RequireRowsAffected(n, NotFoundError("could not find a place for the provided id")); err != nil {
		return nil, MapError(op, err)
	}
	p, err := t.store.places.GetByID(t.dbc(), placeID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if p == nil {
		return nil, MapError(op, NotFoundError("could not find a place for the provided id"))
	}
	return p, nil
}

func (t *gormTx) InsertUser(user *domain.User) error {
	const op = "EntityStore.InsertUser"
	if err := t.ensureOpen(op); err != nil {
		return err
	}
	if user == nil {
		return MapError(op, ValidationError("user is required"))
	}
	if err := RequireNonBlank(
		[2]string{"name", user.Name},
		[2]string{"email", user.Email},
		[2]string{"password", user.Password},
	); err != nil {
		return MapError(op, err)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, err := t.store.users.Create(t.dbc(), []*domain.User{user}); err != nil {
		return MapError(op, err)
	}
	if user.Places == nil {
		user.Places = []uuid.UUID{}
	}
	return nil
}

func (t *gormTx) EnqueueAssetCleanup(task *domain.AssetCleanup) error {
	const op = "EntityStore.EnqueueAssetCleanup"
	if err := t.ensureOpen(op); err != nil {
		return err
	}
	if task == nil {
		return MapError(op, ValidationError("cleanup task is required"))
	}
	if err := RequireNonBlank(
		[2]string{"category", task.Category},
		[2]string{"storage key", task.StorageKey},
	); err != nil {
		return MapError(op, err)
	}
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	if strings.TrimSpace(task.Status) == "" {
		task.Status = domain.AssetCleanupStatusPending
	}
	if _, err := t.store.cleanups.Create(t.dbc(), []*domain.AssetCleanup{task}); err != nil {
		return MapError(op, err)
	}
	return nil
}

func (t *gormTx) Commit() error {
	const op = "EntityStore.Commit"
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case txCommitted:
		return nil
	case txRolledBack:
		return domainagg.NewError(domainagg.CodeInternal, op, "transaction was already rolled back", nil)
	}
	if err := t.tx.Commit().Error; err != nil {
		t.state = txRolledBack
		_ = t.tx.Rollback()
		// A cancelled request surfaces as sql.ErrTxDone from database/sql;
		// report the cancellation, not a write conflict.
		if ctxErr := t.ctx.Err(); ctxErr != nil {
			return MapError(op, fmt.Errorf("%w: %v", ctxErr, err))
		}
		mapped := MapError(op, err)
		switch domainagg.CodeOf(mapped) {
		case domainagg.CodeConflict, domainagg.CodeUnavailable, domainagg.CodeValidation:
			return mapped
		}
		return domainagg.NewError(domainagg.CodeConflict, op, "could not commit changes, please try again", err)
	}
	t.state = txCommitted
	return nil
}

func (t *gormTx) Rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != txOpen {
		return
	}
	t.state = txRolledBack
	if err := t.tx.Rollback().Error; err != nil {
		t.store.log.Debug("rollback failed (ignored)", "error", err)
	}
}
