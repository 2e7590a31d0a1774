package services

import (
	"context"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/placeshare-backend/internal/domain/aggregates"
)

// Owned is anything with a single owning user.
type Owned interface {
	Owner() uuid.UUID
}

// AssertFunc checks one authorization condition. It returns a denial reason,
// or "" when the condition holds.
type AssertFunc func(callerID uuid.UUID, entity Owned) string

func IsAuthenticated() AssertFunc {
	return func(callerID uuid.UUID, _ Owned) string {
		if callerID == uuid.Nil {
			return "You are not allowed to modify this place."
		}
		return ""
	}
}

func IsOwner() AssertFunc {
	return func(callerID uuid.UUID, entity Owned) string {
		if entity == nil || entity.Owner() == uuid.Nil || entity.Owner() != callerID {
			return "You are not allowed to modify this place."
		}
		return ""
	}
}

// Assert runs checks in order and reports the first denial.
func Assert(callerID uuid.UUID, entity Owned, checks ...AssertFunc) string {
	for _, check := range checks {
		if reason := check(callerID, entity); reason != "" {
			return reason
		}
	}
	return ""
}

// AuthorizationGate decides whether a caller may mutate an entity. It holds
// no state and never touches storage.
type AuthorizationGate interface {
	AuthorizeMutation(ctx context.Context, callerID uuid.UUID, entity Owned) error
}

type ownerGate struct {
	checks []AssertFunc
}

func NewAuthorizationGate() AuthorizationGate {
	return &ownerGate{checks: []AssertFunc{IsAuthenticated(), IsOwner()}}
}

func (g *ownerGate) AuthorizeMutation(_ context.Context, callerID uuid.UUID, entity Owned) error {
	if reason := Assert(callerID, entity, g.checks...); reason != "" {
		return domainagg.NewError(domainagg.CodeAuthorization, "AuthorizationGate.AuthorizeMutation", reason, nil)
	}
	return nil
}
