package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

// InjectedStore wraps a real EntityStore and fails selected Tx steps on
// demand. A nil Fail* field lets the step through to the wrapped store.
type InjectedStore struct {
	domainagg.EntityStore

	mu sync.Mutex

	FailBegin               error
	FailInsertPlace         error
	FailAppendPlaceToUser   error
	FailRemovePlace         error
	FailRemovePlaceFromUser error
	FailUpdatePlace         error
	FailInsertUser          error
	FailEnqueueAssetCleanup error
	FailCommit              error
	// FailAfterCommit lets the commit land and then reports it as failed,
	// like a connection dropped before the acknowledgement arrived.
	FailAfterCommit error

	// BeforeCommit runs just before a commit is attempted.
	BeforeCommit func()
	// AfterCommit runs once a commit has landed.
	AfterCommit func()

	begins    int
	commits   int
	rollbacks int
}

var _ domainagg.EntityStore = (*InjectedStore)(nil)

func NewInjectedStore(inner domainagg.EntityStore) *InjectedStore {
	return &InjectedStore{EntityStore: inner}
}

func (s *InjectedStore) Begin(ctx context.Context) (domainagg.Tx, error) {
	s.mu.Lock()
	failBegin := s.FailBegin
	s.mu.Unlock()
	if failBegin != nil {
		return nil, domainagg.NewError(domainagg.CodeUnavailable, "EntityStore.Begin", "injected begin failure", failBegin)
	}
	inner, err := s.EntityStore.Begin(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.begins++
	s.mu.Unlock()
	return &injectedTx{store: s, inner: inner}, nil
}

// Counts reports begun transactions, successful commits and effective
// rollbacks of still-open transactions.
func (s *InjectedStore) Counts() (begins, commits, rollbacks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.begins, s.commits, s.rollbacks
}

func (s *InjectedStore) fail(step func(*InjectedStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return step(s)
}

type injectedTx struct {
	store *InjectedStore
	inner domainagg.Tx

	mu   sync.Mutex
	done bool
}

func injected(op string, err error) error {
	if err == nil {
		return nil
	}
	if domainagg.CodeOf(err) != "" {
		return err
	}
	return domainagg.NewError(domainagg.CodeInternal, op, "injected failure", err)
}

func (t *injectedTx) InsertPlace(place *domain.Place) (uuid.UUID, error) {
	if err := t.store.fail(func(s *InjectedStore) error { return s.FailInsertPlace }); err != nil {
		return uuid.Nil, injected("EntityStore.InsertPlace", err)
	}
	return t.inner.InsertPlace(place)
}

func (t *injectedTx) AppendPlaceToUser(userID, placeID uuid.UUID) error {
	if err := t.store.fail(func(s *InjectedStore) error { return s.FailAppendPlaceToUser }); err != nil {
		return injected("EntityStore.AppendPlaceToUser", err)
	}
	return t.inner.AppendPlaceToUser(userID, placeID)
}

func (t *injectedTx) RemovePlace(placeID uuid.UUID) error {
	if err := t.store.fail(func(s *InjectedStore) error { return s.FailRemovePlace }); err != nil {
		return injected("EntityStore.RemovePlace", err)
	}
	return t.inner.RemovePlace(placeID)
}

func (t *injectedTx) RemovePlaceFromUser(userID, placeID uuid.UUID) error {
	if err := t.store.fail(func(s *InjectedStore) error { return s.FailRemovePlaceFromUser }); err != nil {
		return injected("EntityStore.RemovePlaceFromUser", err)
	}
	return t.inner.RemovePlaceFromUser(userID, placeID)
}

func (t *injectedTx) UpdatePlace(placeID uuid.UUID, patch domain.PlacePatch) (*domain.Place, error) {
	if err := t.store.fail(func(s *InjectedStore) error { return s.FailUpdatePlace }); err != nil {
		return nil, injected("EntityStore.UpdatePlace", err)
	}
	return t.inner.UpdatePlace(placeID, patch)
}

func (t *injectedTx) InsertUser(user *domain.User) error {
	if err := t.store.fail(func(s *InjectedStore) error { return s.FailInsertUser }); err != nil {
		return injected("EntityStore.InsertUser", err)
	}
	return t.inner.InsertUser(user)
}

func (t *injectedTx) EnqueueAssetCleanup(task *domain.AssetCleanup) error {
	if err := t.store.fail(func(s *InjectedStore) error { return s.FailEnqueueAssetCleanup }); err != nil {
		return injected("EntityStore.EnqueueAssetCleanup", err)
	}
	return t.inner.EnqueueAssetCleanup(task)
}

func (t *injectedTx) Commit() error {
	t.store.mu.Lock()
	before, after := t.store.BeforeCommit, t.store.AfterCommit
	failCommit, failAfter := t.store.FailCommit, t.store.FailAfterCommit
	t.store.mu.Unlock()
	if before != nil {
		before()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if failCommit != nil {
		t.inner.Rollback()
		t.done = true
		return domainagg.NewError(domainagg.CodeConflict, "EntityStore.Commit", "injected commit failure", failCommit)
	}
	if err := t.inner.Commit(); err != nil {
		t.done = true
		return err
	}
	t.done = true
	t.store.mu.Lock()
	t.store.commits++
	t.store.mu.Unlock()
	if after != nil {
		after()
	}
	if failAfter != nil {
		return domainagg.NewError(domainagg.CodeUnavailable, "EntityStore.Commit", "injected lost commit acknowledgement", failAfter)
	}
	return nil
}

func (t *injectedTx) Rollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	t.inner.Rollback()
	t.store.mu.Lock()
	t.store.rollbacks++
	t.store.mu.Unlock()
}
