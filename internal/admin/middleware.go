package admin

import (
	"net/http"

	"github.com/arborview/enroll/internal/auth"
	"github.com/arborview/enroll/internal/metrics"
)

// RequireAuth resolves the caller's identity from the auth cookies,
// transparently rotating the refresh token when the access token has
// expired. Rotated tokens are written back onto the response here, before
// any handler output, so every protected route honors the cookie contract.
//
// A request that cannot be authenticated gets a uniform 401 regardless of
// which failure occurred, with both cookies cleared when the session is
// unsalvageable.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		routeAuth, err := h.access.Authenticator().GetRouteAuth(r)
		if err != nil {
			h.logger.Error("route auth failed", "error", err)
			WriteError(w, http.StatusInternalServerError, ErrCodeInternalError, "Internal error")
			return
		}

		if routeAuth.Payload == nil {
			if routeAuth.NeedsClear {
				h.cookies.Clear(w)
			}
			metrics.RecordAuthFailure("session_invalid")
			WriteError(w, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized.")
			return
		}

		h.cookies.ApplyRefreshed(w, routeAuth.Refreshed)

		ctx := auth.WithRouteAuth(r.Context(), routeAuth)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
