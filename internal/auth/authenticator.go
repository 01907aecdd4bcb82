package auth

import (
	"net/http"
)

// RouteAuth is the per-request authentication state.
//
// Payload is nil when the caller could not be identified. A non-nil
// Refreshed pair must be persisted onto the outbound response by the
// caller, or the client silently re-authenticates on every request.
// NeedsClear signals that both auth cookies should be stripped.
type RouteAuth struct {
	Payload    *Claims
	Refreshed  *TokenPair
	NeedsClear bool
}

// RequestAuthenticator resolves a request's identity from its cookies,
// transparently renewing via the session issuer when the access token is
// missing or invalid.
type RequestAuthenticator struct {
	cookies  *Cookies
	tokens   *TokenService
	sessions *SessionIssuer
}

// NewRequestAuthenticator creates a request authenticator.
func NewRequestAuthenticator(cookies *Cookies, tokens *TokenService, sessions *SessionIssuer) *RequestAuthenticator {
	return &RequestAuthenticator{cookies: cookies, tokens: tokens, sessions: sessions}
}

// GetRouteAuth resolves the caller's identity.
// The error return is reserved for infrastructure failures (storage);
// authentication failures come back as a RouteAuth with NeedsClear set.
func (a *RequestAuthenticator) GetRouteAuth(r *http.Request) (*RouteAuth, error) {
	ctx := r.Context()

	// Fast path: a valid access token answers without touching storage.
	if accessToken := a.cookies.ReadAccessToken(r); accessToken != "" {
		if claims, err := a.tokens.VerifyAccessToken(accessToken); err == nil {
			return &RouteAuth{Payload: claims}, nil
		}
	}

	refreshToken := a.cookies.ReadRefreshToken(r)
	if refreshToken == "" {
		return &RouteAuth{NeedsClear: true}, nil
	}

	pair, err := a.sessions.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return &RouteAuth{NeedsClear: true}, nil
	}

	// The new access token was signed moments ago; a verify failure here
	// means the signing config is broken, and clearing beats panicking.
	claims, err := a.tokens.VerifyAccessToken(pair.AccessToken)
	if err != nil {
		return &RouteAuth{NeedsClear: true}, nil
	}

	return &RouteAuth{Payload: claims, Refreshed: pair}, nil
}
