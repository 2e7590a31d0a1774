package aggregates

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrNotFound indicates a referenced entity does not exist.
	ErrNotFound = errors.New("aggregate not found")
	// ErrInvariant indicates invariant rule violation.
	ErrInvariant = errors.New("aggregate invariant violation")
	// ErrConflict indicates a concurrency conflict the caller may retry.
	ErrConflict = errors.New("aggregate conflict")
	// ErrUnavailable indicates the store could not serve the request.
	ErrUnavailable = errors.New("aggregate unavailable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// NotFoundError tags an error as a missing entity.
func NotFoundError(msg string) error {
	return errors.Join(ErrNotFound, errors.New(strings.TrimSpace(msg)))
}

// InvariantError tags an error as invariant violation.
func InvariantError(msg string) error {
	return errors.Join(ErrInvariant, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// UnavailableError tags an error as a transient store outage.
func UnavailableError(msg string) error {
	return errors.Join(ErrUnavailable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return newTagged(domainagg.CodeValidation, op, err, ErrValidation)
	case errors.Is(err, ErrNotFound):
		return newTagged(domainagg.CodeNotFound, op, err, ErrNotFound)
	case errors.Is(err, ErrInvariant):
		return newTagged(domainagg.CodeInvariantViolation, op, err, ErrInvariant)
	case errors.Is(err, ErrConflict):
		return newTagged(domainagg.CodeConflict, op, err, ErrConflict)
	case errors.Is(err, ErrUnavailable):
		return newTagged(domainagg.CodeUnavailable, op, err, ErrUnavailable)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, sql.ErrTxDone):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeUnavailable, op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := strings.TrimSpace(pgErr.Code)
		switch {
		case code == "23505":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation
		case code == "23502", code == "23503", code == "23514":
			return domainagg.Wrap(domainagg.CodeValidation, op, err) // not_null/foreign_key/check
		case code == "40001", code == "40P01", code == "55P03":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // serialization/deadlock/lock_not_available
		case strings.HasPrefix(code, "08"), code == "53300", code == "57P01":
			return domainagg.Wrap(domainagg.CodeUnavailable, op, err) // connection/too_many_connections/admin_shutdown
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "already exists"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "database is closed"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "bad connection"),
		strings.Contains(msg, "timeout"):
		return domainagg.Wrap(domainagg.CodeUnavailable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

// newTagged drops the sentinel from the message so users see only the detail.
func newTagged(code domainagg.ErrorCode, op string, err, sentinel error) error {
	msg := strings.TrimSpace(strings.Replace(err.Error(), sentinel.Error(), "", 1))
	if msg == "" {
		msg = sentinel.Error()
	}
	return domainagg.NewError(code, op, msg, err)
}

// UniqueViolationOn reports whether err is a unique-key violation on
// table.column. Postgres is matched on the gorm index name (idx_<table>_<column>)
// and SQLite on its "UNIQUE constraint failed: <table>.<column>" detail.
func UniqueViolationOn(err error, table, column string) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if strings.TrimSpace(pgErr.Code) != "23505" {
			return false
		}
		if pgErr.TableName != "" && pgErr.TableName != table {
			return false
		}
		return pgErr.ConstraintName == "idx_"+table+"_"+column || pgErr.ColumnName == column
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed: "+strings.ToLower(table+"."+column))
}
