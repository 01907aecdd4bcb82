package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arborview/enroll/internal/storage"
)

func newTestAuthenticator(t *testing.T) (*storage.SQLiteStorage, *TokenService, *SessionIssuer, *RequestAuthenticator) {
	t.Helper()
	store, tokens, issuer := newTestIssuer(t)
	cookies := NewCookies(false, 15*time.Minute, 24*time.Hour)
	return store, tokens, issuer, NewRequestAuthenticator(cookies, tokens, issuer)
}

func requestWithCookies(access, refresh string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	if access != "" {
		r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: access})
	}
	if refresh != "" {
		r.AddCookie(&http.Cookie{Name: RefreshCookieName, Value: refresh})
	}
	return r
}

func TestGetRouteAuth_ValidAccessToken(t *testing.T) {
	store, _, issuer, authn := newTestAuthenticator(t)
	admin := createTestAdmin(t, store, "fastpath@example.com")

	pair, err := issuer.IssueAdminSession(context.Background(), admin)
	if err != nil {
		t.Fatalf("IssueAdminSession failed: %v", err)
	}

	ra, err := authn.GetRouteAuth(requestWithCookies(pair.AccessToken, pair.RefreshToken))
	if err != nil {
		t.Fatalf("GetRouteAuth failed: %v", err)
	}
	if ra.Payload == nil {
		t.Fatalf("Payload should be set")
	}
	if id, _ := ra.Payload.AdminID(); id != admin.ID {
		t.Errorf("AdminID = %d, want %d", id, admin.ID)
	}
	// The access token was valid, so no rotation happened.
	if ra.Refreshed != nil {
		t.Errorf("valid access token should not trigger a refresh")
	}
	if ra.NeedsClear {
		t.Errorf("NeedsClear should be false")
	}
}

func TestGetRouteAuth_NoCookies(t *testing.T) {
	_, _, _, authn := newTestAuthenticator(t)

	ra, err := authn.GetRouteAuth(requestWithCookies("", ""))
	if err != nil {
		t.Fatalf("GetRouteAuth failed: %v", err)
	}
	if ra.Payload != nil {
		t.Errorf("Payload should be nil without cookies")
	}
	if !ra.NeedsClear {
		t.Errorf("NeedsClear should be set")
	}
}

func TestGetRouteAuth_RefreshFlow(t *testing.T) {
	store, tokens, issuer, authn := newTestAuthenticator(t)
	admin := createTestAdmin(t, store, "refreshflow@example.com")

	pair, err := issuer.IssueAdminSession(context.Background(), admin)
	if err != nil {
		t.Fatalf("IssueAdminSession failed: %v", err)
	}

	// No access cookie at all: the refresh cookie alone recovers identity.
	ra, err := authn.GetRouteAuth(requestWithCookies("", pair.RefreshToken))
	if err != nil {
		t.Fatalf("GetRouteAuth failed: %v", err)
	}
	if ra.Payload == nil {
		t.Fatalf("Payload should be recovered via refresh")
	}
	if id, _ := ra.Payload.AdminID(); id != admin.ID {
		t.Errorf("AdminID = %d, want %d", id, admin.ID)
	}
	if ra.Refreshed == nil {
		t.Fatalf("Refreshed pair should be returned for cookie write-back")
	}
	if ra.Refreshed.RefreshToken == pair.RefreshToken {
		t.Errorf("refresh secret should have rotated")
	}
	if _, err := tokens.VerifyAccessToken(ra.Refreshed.AccessToken); err != nil {
		t.Errorf("refreshed access token should verify: %v", err)
	}
}

func TestGetRouteAuth_ExpiredAccessTokenTriggersRefresh(t *testing.T) {
	store, _, issuer, authn := newTestAuthenticator(t)
	admin := createTestAdmin(t, store, "staleaccess@example.com")

	pair, err := issuer.IssueAdminSession(context.Background(), admin)
	if err != nil {
		t.Fatalf("IssueAdminSession failed: %v", err)
	}

	expiredSvc := NewTokenService("test-secret-at-least-32-bytes-long!!", -time.Minute, 24*time.Hour, 32)
	expiredAccess, err := expiredSvc.SignAccessToken(admin.ID, admin.Email)
	if err != nil {
		t.Fatalf("SignAccessToken failed: %v", err)
	}

	ra, err := authn.GetRouteAuth(requestWithCookies(expiredAccess, pair.RefreshToken))
	if err != nil {
		t.Fatalf("GetRouteAuth failed: %v", err)
	}
	if ra.Payload == nil {
		t.Fatalf("expired access token with live refresh should recover")
	}
	if ra.Refreshed == nil {
		t.Errorf("Refreshed pair should be set")
	}
}

func TestGetRouteAuth_RevokedRefreshToken(t *testing.T) {
	store, _, issuer, authn := newTestAuthenticator(t)
	admin := createTestAdmin(t, store, "revoked@example.com")

	pair, err := issuer.IssueAdminSession(context.Background(), admin)
	if err != nil {
		t.Fatalf("IssueAdminSession failed: %v", err)
	}
	if err := issuer.RevokeFromRawToken(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("RevokeFromRawToken failed: %v", err)
	}

	ra, err := authn.GetRouteAuth(requestWithCookies("", pair.RefreshToken))
	if err != nil {
		t.Fatalf("GetRouteAuth failed: %v", err)
	}
	if ra.Payload != nil {
		t.Errorf("revoked session should not authenticate")
	}
	if !ra.NeedsClear {
		t.Errorf("NeedsClear should be set")
	}
}

func TestGetRouteAuth_GarbageCookies(t *testing.T) {
	_, _, _, authn := newTestAuthenticator(t)

	ra, err := authn.GetRouteAuth(requestWithCookies("not-a-jwt", "not-a-known-secret"))
	if err != nil {
		t.Fatalf("GetRouteAuth failed: %v", err)
	}
	if ra.Payload != nil {
		t.Errorf("garbage cookies should not authenticate")
	}
	if !ra.NeedsClear {
		t.Errorf("NeedsClear should be set")
	}
}

func TestRouteAuthContext(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		claims := &Claims{Email: "ctx@example.com"}
		claims.Subject = "7"
		ra := &RouteAuth{Payload: claims}

		ctx := WithRouteAuth(context.Background(), ra)
		if got := RouteAuthFromContext(ctx); got != ra {
			t.Errorf("RouteAuthFromContext returned a different value")
		}
		if got := AdminIDFromContext(ctx); got != 7 {
			t.Errorf("AdminIDFromContext = %d, want 7", got)
		}
	})

	t.Run("empty context", func(t *testing.T) {
		if got := RouteAuthFromContext(context.Background()); got != nil {
			t.Errorf("RouteAuthFromContext = %v, want nil", got)
		}
		if got := AdminIDFromContext(context.Background()); got != 0 {
			t.Errorf("AdminIDFromContext = %d, want 0", got)
		}
	})

	t.Run("unauthenticated route auth", func(t *testing.T) {
		ctx := WithRouteAuth(context.Background(), &RouteAuth{NeedsClear: true})
		if got := AdminIDFromContext(ctx); got != 0 {
			t.Errorf("AdminIDFromContext = %d, want 0", got)
		}
	})
}
