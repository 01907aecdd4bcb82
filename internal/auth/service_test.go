package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/arborview/enroll/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(t *testing.T) (*storage.SQLiteStorage, *TokenService, *AdminAccessService) {
	t.Helper()
	store, tokens, issuer := newTestIssuer(t)
	hasher := NewPasswordHasher(bcrypt.MinCost)
	cookies := NewCookies(false, 15*time.Minute, 24*time.Hour)
	authenticator := NewRequestAuthenticator(cookies, tokens, issuer)
	return store, tokens, NewAdminAccessService(store, hasher, issuer, authenticator, discardLogger())
}

func setupAdmin(t *testing.T, svc *AdminAccessService, email, password string) *storage.AdminUser {
	t.Helper()
	admin, _, err := svc.SetupInitialAdmin(context.Background(), email, password)
	if err != nil {
		t.Fatalf("SetupInitialAdmin failed: %v", err)
	}
	return admin
}

func TestSetupInitialAdmin(t *testing.T) {
	_, tokens, svc := newTestService(t)
	ctx := context.Background()

	t.Run("first admin becomes super admin with a session", func(t *testing.T) {
		admin, pair, err := svc.SetupInitialAdmin(ctx, "First@School.Example", "a strong password")
		if err != nil {
			t.Fatalf("SetupInitialAdmin failed: %v", err)
		}
		if !admin.IsSuperAdmin {
			t.Errorf("first admin should be super admin")
		}
		if admin.Email != "first@school.example" {
			t.Errorf("Email = %q, want lowercased", admin.Email)
		}
		if pair == nil || pair.AccessToken == "" {
			t.Fatalf("setup should issue a session")
		}
		if _, err := tokens.VerifyAccessToken(pair.AccessToken); err != nil {
			t.Errorf("access token should verify: %v", err)
		}
	})

	t.Run("second setup attempt fails", func(t *testing.T) {
		_, _, err := svc.SetupInitialAdmin(ctx, "second@school.example", "another password")
		wantGuardError(t, err, http.StatusBadRequest)
	})
}

func TestLogin(t *testing.T) {
	_, _, svc := newTestService(t)
	ctx := context.Background()
	setupAdmin(t, svc, "admin@school.example", "correct password")

	t.Run("valid credentials", func(t *testing.T) {
		admin, pair, err := svc.Login(ctx, "admin@school.example", "correct password")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if admin.Email != "admin@school.example" {
			t.Errorf("Email = %q", admin.Email)
		}
		if pair == nil || pair.RefreshToken == "" {
			t.Errorf("login should issue a session")
		}
	})

	t.Run("email is case-insensitive and trimmed", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "  ADMIN@School.Example  ", "correct password")
		if err != nil {
			t.Errorf("Login failed: %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "admin@school.example", "wrong password")
		wantGuardError(t, err, http.StatusUnauthorized)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "nobody@school.example", "correct password")
		wantGuardError(t, err, http.StatusUnauthorized)
	})

	t.Run("both failures are byte-identical", func(t *testing.T) {
		_, _, errWrongPw := svc.Login(ctx, "admin@school.example", "wrong password")
		_, _, errNoUser := svc.Login(ctx, "nobody@school.example", "whatever")
		if errWrongPw == nil || errNoUser == nil {
			t.Fatalf("both logins should fail")
		}
		if errWrongPw.Error() != errNoUser.Error() {
			t.Errorf("failure messages differ: %q vs %q", errWrongPw.Error(), errNoUser.Error())
		}
		if AsError(errWrongPw).Status != AsError(errNoUser).Status {
			t.Errorf("failure statuses differ")
		}
	})
}

func TestLogout(t *testing.T) {
	store, tokens, svc := newTestService(t)
	ctx := context.Background()
	setupAdmin(t, svc, "admin@school.example", "pw12345678")

	_, pair, err := svc.Login(ctx, "admin@school.example", "pw12345678")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	svc.Logout(ctx, pair.RefreshToken)

	rec, err := store.GetRefreshTokenByHash(ctx, tokens.HashRefreshSecret(pair.RefreshToken))
	if err != nil {
		t.Fatalf("token not found: %v", err)
	}
	if rec.RevokedAt == nil {
		t.Errorf("logout should revoke the session")
	}

	// Logging out again, or with no token, never errors.
	svc.Logout(ctx, pair.RefreshToken)
	svc.Logout(ctx, "")
}

func TestChangePassword(t *testing.T) {
	store, tokens, svc := newTestService(t)
	ctx := context.Background()
	admin := setupAdmin(t, svc, "admin@school.example", "old password")

	_, otherSession, err := svc.Login(ctx, "admin@school.example", "old password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	t.Run("wrong current password", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, admin.ID, "not the password", "new password")
		wantGuardError(t, err, http.StatusBadRequest)
	})

	t.Run("unknown admin", func(t *testing.T) {
		_, err := svc.ChangePassword(ctx, 99999, "old password", "new password")
		wantGuardError(t, err, http.StatusUnauthorized)
	})

	t.Run("successful change revokes other sessions", func(t *testing.T) {
		pair, err := svc.ChangePassword(ctx, admin.ID, "old password", "new password")
		if err != nil {
			t.Fatalf("ChangePassword failed: %v", err)
		}
		if pair == nil || pair.RefreshToken == "" {
			t.Fatalf("change should issue a fresh session")
		}

		// The other device's session died with the password.
		rec, err := store.GetRefreshTokenByHash(ctx, tokens.HashRefreshSecret(otherSession.RefreshToken))
		if err != nil {
			t.Fatalf("token not found: %v", err)
		}
		if rec.RevokedAt == nil {
			t.Errorf("pre-change session should be revoked")
		}

		// Old password no longer works; new one does.
		if _, _, err := svc.Login(ctx, "admin@school.example", "old password"); err == nil {
			t.Errorf("old password should be rejected")
		}
		if _, _, err := svc.Login(ctx, "admin@school.example", "new password"); err != nil {
			t.Errorf("new password should work: %v", err)
		}
	})
}
