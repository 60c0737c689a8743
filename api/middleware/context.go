package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxOrgID contextKey = "organization_id"
	ctxActor contextKey = "actor"
	ctxRole  contextKey = "actor_role"
)

// OrganizationIDFromContext returns the tenant seeded by the auth middleware,
// or uuid.Nil when the request is unauthenticated.
func OrganizationIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxOrgID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// ActorFromContext returns the acting identity (admin email) for audit trails.
func ActorFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxActor).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// WithOrganizationID injects the tenant into the context for downstream handlers.
func WithOrganizationID(ctx context.Context, orgID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxOrgID, orgID)
}

func contextWithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

// WithActor injects the acting identity into the context.
func WithActor(ctx context.Context, actor string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}
