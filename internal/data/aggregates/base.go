package aggregates

import (
	"context"
	"strings"
	"time"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

type BaseDeps struct {
	Store domainagg.EntityStore
	Hooks Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	return d
}

// Execute runs fn inside one EntityStore transaction. The transaction is
// committed when fn succeeds and rolled back on any failure, including a
// panic. Errors come back classified with aggregate codes and the outcome
// is reported to hooks.
func Execute(ctx context.Context, deps BaseDeps, op string, fn func(tx domainagg.Tx) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := runInTx(ctx, deps.Store, op, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op)
		}
		if domainagg.IsCode(mapped, domainagg.CodeUnavailable) {
			deps.Hooks.IncRetry(op)
		}
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

func runInTx(ctx context.Context, store domainagg.EntityStore, op string, fn func(tx domainagg.Tx) error) error {
	if store == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "entity store not configured", nil)
	}
	tx, err := store.Begin(ctx)
	if err != nil {
		return err
	}
	// Rollback is a no-op once Commit has run.
	defer tx.Rollback()
	if fn != nil {
		if err := fn(tx); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
