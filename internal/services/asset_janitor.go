package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/placeshare-backend/internal/data/repos"
	types "github.com/yungbote/placeshare-backend/internal/domain"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/dbctx"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstorage"
)

const (
	defaultJanitorMaxAttempts = 5
	defaultJanitorBatch       = 50
)

// AssetJanitor drives AssetCleanup rows to a terminal state. Delete failures
// never propagate to the business operation that produced the row.
type AssetJanitor interface {
	// Attempt tries one delete and records the outcome on the row.
	Attempt(ctx context.Context, task *types.AssetCleanup) bool
	// Schedule records a cleanup outside any transaction and attempts it.
	Schedule(ctx context.Context, category objectstorage.BucketCategory, key, reason string, meta map[string]any) bool
	// Sweep retries pending rows and returns how many finished.
	Sweep(ctx context.Context) (int, error)
	// StartWorker sweeps every interval until ctx is done.
	StartWorker(ctx context.Context, interval time.Duration)
}

type AssetJanitorConfig struct {
	MaxAttempts int
	BatchSize   int
}

type assetJanitor struct {
	log      *logger.Logger
	cleanups repos.AssetCleanupRepo
	assets   AssetService
	metrics  *observability.Metrics
	cfg      AssetJanitorConfig
	now      func() time.Time
}

func NewAssetJanitor(log *logger.Logger, cleanups repos.AssetCleanupRepo, assets AssetService, metrics *observability.Metrics, cfg AssetJanitorConfig) AssetJanitor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultJanitorMaxAttempts
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultJanitorBatch
	}
	return &assetJanitor{
		log:      log.With("service", "AssetJanitor"),
		cleanups: cleanups,
		assets:   assets,
		metrics:  metrics,
		cfg:      cfg,
		now:      time.Now,
	}
}

// NewCleanupTask builds a pending cleanup row.
func NewCleanupTask(category objectstorage.BucketCategory, key, reason string, meta map[string]any) *types.AssetCleanup {
	task := &types.AssetCleanup{
		ID:         uuid.New(),
		Category:   string(category),
		StorageKey: strings.TrimSpace(key),
		Reason:     reason,
		Status:     types.AssetCleanupStatusPending,
	}
	if len(meta) > 0 {
		if raw, err := json.Marshal(meta); err == nil {
			task.Metadata = datatypes.JSON(raw)
		}
	}
	return task
}

func (j *assetJanitor) Schedule(ctx context.Context, category objectstorage.BucketCategory, key, reason string, meta map[string]any) bool {
	if strings.TrimSpace(key) == "" {
		return true
	}
	// The caller's request may already be gone; the row and the delete must
	// still land.
	ctx = context.WithoutCancel(ctx)
	task := NewCleanupTask(category, key, reason, meta)
	if _, err := j.cleanups.Create(dbctx.Context{Ctx: ctx}, []*types.AssetCleanup{task}); err != nil {
		// Without a row the janitor cannot retry; the delete below is the only attempt.
		j.log.Error("asset cleanup record failed", "category", category, "key", key, "reason", reason, "error", err)
		if derr := j.assets.Delete(ctx, category, key); derr != nil {
			j.metrics.IncAssetCleanup(reason, "orphaned")
			j.log.Error("asset orphaned", "category", category, "key", key, "error", derr)
			return false
		}
		j.metrics.IncAssetCleanup(reason, "done")
		return true
	}
	return j.Attempt(ctx, task)
}

// lookupCommitted reports whether a write whose Execute returned err is
// visible anyway, as after a commit whose acknowledgement was lost. known is
// false when the lookup itself failed.
func lookupCommitted(ctx context.Context, err error, find func(context.Context) error) (committed, known bool) {
	switch domainagg.CodeOf(err) {
	case domainagg.CodeValidation, domainagg.CodeNotFound, domainagg.CodeAuthorization, domainagg.CodeInvariantViolation:
		return false, true
	}
	ferr := find(context.WithoutCancel(ctx))
	switch {
	case ferr == nil:
		return true, true
	case domainagg.IsCode(ferr, domainagg.CodeNotFound):
		return false, true
	default:
		return false, false
	}
}

func (j *assetJanitor) Attempt(ctx context.Context, task *types.AssetCleanup) bool {
	if task == nil || task.Status != types.AssetCleanupStatusPending {
		return true
	}
	dbc := dbctx.Context{Ctx: ctx}
	category, ok := objectstorage.ParseCategory(task.Category)
	if !ok {
		j.finish(dbc, task, types.AssetCleanupStatusAbandoned, "unknown category "+task.Category)
		j.metrics.IncAssetCleanup(task.Reason, "abandoned")
		return false
	}

	err := j.assets.Delete(ctx, category, task.StorageKey)
	task.Attempts++
	if err == nil {
		j.finish(dbc, task, types.AssetCleanupStatusDone, "")
		j.metrics.IncAssetCleanup(task.Reason, "done")
		return true
	}

	msg := domainagg.MessageOf(err)
	if task.Attempts >= j.cfg.MaxAttempts {
		j.log.Error("asset cleanup abandoned",
			"cleanup_id", task.ID,
			"category", task.Category,
			"key", task.StorageKey,
			"attempts", task.Attempts,
			"error", err,
		)
		j.finish(dbc, task, types.AssetCleanupStatusAbandoned, msg)
		j.metrics.IncAssetCleanup(task.Reason, "abandoned")
		return false
	}
	j.log.Warn("asset delete failed (ignored)",
		"cleanup_id", task.ID,
		"key", task.StorageKey,
		"attempts", task.Attempts,
		"error", err,
	)
	if uerr := j.cleanups.UpdateFields(dbc, task.ID, map[string]interface{}{
		"attempts":   task.Attempts,
		"last_error": msg,
		"updated_at": j.now().UTC(),
	}); uerr != nil {
		j.log.Warn("asset cleanup update failed", "cleanup_id", task.ID, "error", uerr)
	}
	j.metrics.IncAssetCleanup(task.Reason, "retry")
	return false
}

func (j *assetJanitor) finish(dbc dbctx.Context, task *types.AssetCleanup, status, lastError string) {
	task.Status = status
	task.LastError = lastError
	if err := j.cleanups.UpdateFields(dbc, task.ID, map[string]interface{}{
		"status":     status,
		"attempts":   task.Attempts,
		"last_error": lastError,
		"updated_at": j.now().UTC(),
	}); err != nil {
		j.log.Warn("asset cleanup update failed", "cleanup_id", task.ID, "status", status, "error", err)
	}
}

func (j *assetJanitor) Sweep(ctx context.Context) (int, error) {
	rows, err := j.cleanups.ListPending(dbctx.Context{Ctx: ctx}, j.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	done := 0
	for _, row := range rows {
		if ctx.Err() != nil {
			return done, ctx.Err()
		}
		if j.Attempt(ctx, row) {
			done++
		}
	}
	return done, nil
}

func (j *assetJanitor) StartWorker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		j.log.Info("Asset janitor started", "interval", interval.String())
		for {
			select {
			case <-ctx.Done():
				j.log.Info("Asset janitor stopped")
				return
			case <-ticker.C:
				n, err := j.Sweep(ctx)
				if err != nil && ctx.Err() == nil {
					j.log.Warn("asset sweep failed", "error", err)
					continue
				}
				if n > 0 {
					j.log.Info("asset sweep finished", "done", n)
				}
			}
		}
	}()
}
