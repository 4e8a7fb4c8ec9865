package models

import (
	"context"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role types.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == types.AdminRole || a.Role == types.SupervisorRole
}

func (a Actor) IsAnonymous() bool {
	return a.ID == "" && a.Role == ""
}

type actorCtxKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, a)
}

// ActorFromContext returns the actor set by the auth middleware, or an anonymous one.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorCtxKey{}).(Actor)
	return a
}
