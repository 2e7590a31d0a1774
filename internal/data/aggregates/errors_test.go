package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("title is required"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
	if got := domainagg.MessageOf(err); got != "title is required" {
		t.Fatalf("message: want=%q got=%q", "title is required", got)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeConflict, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := []struct {
		code string
		want domainagg.ErrorCode
	}{
		{"23505", domainagg.CodeConflict},
		{"23503", domainagg.CodeValidation},
		{"40001", domainagg.CodeConflict},
		{"40P01", domainagg.CodeConflict},
		{"08006", domainagg.CodeUnavailable},
		{"57P01", domainagg.CodeUnavailable},
	}
	for _, tc := range cases {
		err := MapError("op", fmt.Errorf("exec: %w", &pgconn.PgError{Code: tc.code}))
		if got := domainagg.CodeOf(err); got != tc.want {
			t.Fatalf("pg code %s: want=%s got=%s", tc.code, tc.want, got)
		}
	}
}

func TestMapError_MessageFallbacks(t *testing.T) {
	cases := []struct {
		err  error
		want domainagg.ErrorCode
	}{
		{errors.New("UNIQUE constraint failed: user.email"), domainagg.CodeConflict},
		{errors.New("database is locked"), domainagg.CodeConflict},
		{errors.New("sql: database is closed"), domainagg.CodeUnavailable},
		{context.DeadlineExceeded, domainagg.CodeUnavailable},
		{errors.New("something odd"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		if got := domainagg.CodeOf(MapError("op", tc.err)); got != tc.want {
			t.Fatalf("%v: want=%s got=%s", tc.err, tc.want, got)
		}
	}
}

func TestMapError_Nil(t *testing.T) {
	if err := MapError("op", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestUniqueViolationOn(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"sqlite email", errors.New("constraint failed: UNIQUE constraint failed: user.email (2067)"), true},
		{"sqlite primary key", errors.New("UNIQUE constraint failed: user.id"), false},
		{"sqlite other table", errors.New("UNIQUE constraint failed: user_place.place_id"), false},
		{"pg email index", &pgconn.PgError{Code: "23505", TableName: "user", ConstraintName: "idx_user_email"}, true},
		{"pg primary key mentioning email", &pgconn.PgError{
			Code:           "23505",
			TableName:      "user",
			ConstraintName: "user_pkey",
			Detail:         "Key (id)=(1) already exists; email column untouched",
		}, false},
		{"pg not null on email", &pgconn.PgError{Code: "23502", TableName: "user", ColumnName: "email"}, false},
		{"wrapped pg email index", domainagg.Wrap(domainagg.CodeConflict, "op", fmt.Errorf("insert: %w",
			&pgconn.PgError{Code: "23505", ConstraintName: "idx_user_email"})), true},
		{"message mentions email only", errors.New("email service timeout"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		if got := UniqueViolationOn(tc.err, "user", "email"); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}
