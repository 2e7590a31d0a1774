package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

func TestExecuteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}
	store := &spyStore{}

	err := Execute(context.Background(), BaseDeps{
		Store: store,
		Hooks: hooks,
	}, "aggregate.test.success", func(_ domainagg.Tx) error { return nil })
	if err != nil {
		t.Fatalf("Execute success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
	if store.tx.commits != 1 || store.tx.rollbacks != 1 {
		t.Fatalf("tx calls: want commits=1 rollbacks=1 got commits=%d rollbacks=%d", store.tx.commits, store.tx.rollbacks)
	}
}

func TestExecuteRollsBackWithoutCommitOnFailure(t *testing.T) {
	hooks := &spyHooks{}
	store := &spyStore{}

	err := Execute(context.Background(), BaseDeps{
		Store: store,
		Hooks: hooks,
	}, "aggregate.test.invariant", func(_ domainagg.Tx) error {
		return InvariantError("invariant broken")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation code, got=%v", err)
	}
	if store.tx.commits != 0 {
		t.Fatalf("commit must not run after a failed step, got=%d", store.tx.commits)
	}
	if store.tx.rollbacks != 1 {
		t.Fatalf("rollbacks: want=1 got=%d", store.tx.rollbacks)
	}
	if hooks.Operations[0].Status != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("operation status: want=%s got=%s", domainagg.CodeInvariantViolation, hooks.Operations[0].Status)
	}
}

func TestExecuteRollsBackOnPanic(t *testing.T) {
	store := &spyStore{}
	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic to propagate")
			}
		}()
		_ = Execute(context.Background(), BaseDeps{Store: store}, "aggregate.test.panic", func(_ domainagg.Tx) error {
			panic("boom")
		})
	}()
	if store.tx.rollbacks != 1 {
		t.Fatalf("rollbacks after panic: want=1 got=%d", store.tx.rollbacks)
	}
}

func TestExecuteTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		hooks := &spyHooks{}
		err := Execute(context.Background(), BaseDeps{
			Store: &spyStore{},
			Hooks: hooks,
		}, "aggregate.test.conflict", func(_ domainagg.Tx) error {
			return ConflictError("stale version")
		})
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0] != "aggregate.test.conflict" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
	})

	t.Run("commit_failure", func(t *testing.T) {
		hooks := &spyHooks{}
		store := &spyStore{commitErr: errors.New("could not serialize access")}
		err := Execute(context.Background(), BaseDeps{
			Store: store,
			Hooks: hooks,
		}, "aggregate.test.commit", func(_ domainagg.Tx) error { return nil })
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		hooks := &spyHooks{}
		store := &spyStore{beginErr: domainagg.NewError(domainagg.CodeUnavailable, "EntityStore.Begin", "no session", nil)}
		called := false
		err := Execute(context.Background(), BaseDeps{
			Store: store,
			Hooks: hooks,
		}, "aggregate.test.unavailable", func(_ domainagg.Tx) error {
			called = true
			return nil
		})
		if !domainagg.IsCode(err, domainagg.CodeUnavailable) {
			t.Fatalf("expected unavailable code, got=%v", err)
		}
		if called {
			t.Fatalf("fn must not run when Begin fails")
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0] != "aggregate.test.unavailable" {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
	})
}

func TestExecuteWithoutStore(t *testing.T) {
	err := Execute(context.Background(), BaseDeps{}, "aggregate.test.nostore", nil)
	if !domainagg.IsCode(err, domainagg.CodeInternal) {
		t.Fatalf("expected internal code, got=%v", err)
	}
}

type opEvent struct {
	Name   string
	Status string
}

type spyHooks struct {
	Operations []opEvent
	Conflicts  []string
	Retries    []string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, opEvent{Name: name, Status: status})
}
func (h *spyHooks) IncConflict(name string) { h.Conflicts = append(h.Conflicts, name) }
func (h *spyHooks) IncRetry(name string)    { h.Retries = append(h.Retries, name) }

type spyStore struct {
	domainagg.EntityStore

	beginErr  error
	commitErr error
	tx        *spyTx
}

func (s *spyStore) Begin(context.Context) (domainagg.Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.tx = &spyTx{commitErr: s.commitErr}
	return s.tx, nil
}

type spyTx struct {
	commitErr error
	commits   int
	rollbacks int
}

func (t *spyTx) InsertPlace(*domain.Place) (uuid.UUID, error)          { return uuid.New(), nil }
func (t *spyTx) AppendPlaceToUser(uuid.UUID, uuid.UUID) error          { return nil }
func (t *spyTx) RemovePlace(uuid.UUID) error                           { return nil }
func (t *spyTx) RemovePlaceFromUser(uuid.UUID, uuid.UUID) error        { return nil }
func (t *spyTx) InsertUser(*domain.User) error                         { return nil }
func (t *spyTx) EnqueueAssetCleanup(*domain.AssetCleanup) error        { return nil }
func (t *spyTx) UpdatePlace(uuid.UUID, domain.PlacePatch) (*domain.Place, error) {
	return &domain.Place{}, nil
}

func (t *spyTx) Commit() error {
	t.commits++
	if t.commitErr != nil {
		return domainagg.NewError(domainagg.CodeConflict, "EntityStore.Commit", "commit failed", t.commitErr)
	}
	return nil
}

func (t *spyTx) Rollback() { t.rollbacks++ }
