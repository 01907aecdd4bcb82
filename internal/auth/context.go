package auth

import (
	"context"
)

// ctxKey is a private type for context keys to prevent collisions.
type ctxKey int

const routeAuthKey ctxKey = iota

// WithRouteAuth stores the resolved authentication state in the context.
func WithRouteAuth(ctx context.Context, ra *RouteAuth) context.Context {
	return context.WithValue(ctx, routeAuthKey, ra)
}

// RouteAuthFromContext retrieves the authentication state set by the route
// middleware. Returns nil outside an authenticated route.
func RouteAuthFromContext(ctx context.Context) *RouteAuth {
	if v := ctx.Value(routeAuthKey); v != nil {
		if ra, ok := v.(*RouteAuth); ok {
			return ra
		}
	}
	return nil
}

// AdminIDFromContext is a convenience for handlers: the authenticated
// admin's ID, or 0 when unauthenticated.
func AdminIDFromContext(ctx context.Context) int64 {
	ra := RouteAuthFromContext(ctx)
	if ra == nil || ra.Payload == nil {
		return 0
	}
	id, err := ra.Payload.AdminID()
	if err != nil {
		return 0
	}
	return id
}
