package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/arborview/enroll/internal/metrics"
	"github.com/arborview/enroll/internal/storage"
)

// AdminAccessService is the façade the routes call: login, first-admin
// setup, logout, and route authentication.
type AdminAccessService struct {
	store         Store
	hasher        *PasswordHasher
	sessions      *SessionIssuer
	authenticator *RequestAuthenticator
	logger        *slog.Logger
}

// NewAdminAccessService creates the façade.
func NewAdminAccessService(store Store, hasher *PasswordHasher, sessions *SessionIssuer, authenticator *RequestAuthenticator, logger *slog.Logger) *AdminAccessService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminAccessService{
		store:         store,
		hasher:        hasher,
		sessions:      sessions,
		authenticator: authenticator,
		logger:        logger,
	}
}

// Login authenticates by email and password and issues a session.
// Unknown email and wrong password produce the identical error, and both
// paths pay for a bcrypt comparison, so responses don't enumerate accounts.
func (s *AdminAccessService) Login(ctx context.Context, email, password string) (*storage.AdminUser, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	admin, err := s.store.GetAdminByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		s.hasher.VerifyDummy(password)
		metrics.RecordAuthFailure("bad_credentials")
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if !s.hasher.Verify(password, admin.PasswordHash) {
		metrics.RecordAuthFailure("bad_credentials")
		s.logger.Warn("failed admin login", "admin_user_id", admin.ID)
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.sessions.IssueAdminSession(ctx, admin)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("admin login", "admin_user_id", admin.ID)
	return admin, pair, nil
}

// SetupInitialAdmin bootstraps the first admin as a super admin and issues
// a session. Fails once any admin exists; this is the only way the
// super-admin invariant is seeded.
func (s *AdminAccessService) SetupInitialAdmin(ctx context.Context, email, password string) (*storage.AdminUser, *TokenPair, error) {
	count, err := s.store.CountAdmins(ctx)
	if err != nil {
		return nil, nil, err
	}
	if count > 0 {
		return nil, nil, BadRequest("Admin already exists.")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, err
	}

	admin, err := s.store.CreateAdminUser(ctx, strings.ToLower(strings.TrimSpace(email)), hash, true)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, nil, BadRequest("Admin already exists.")
		}
		return nil, nil, err
	}

	pair, err := s.sessions.IssueAdminSession(ctx, admin)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("initial admin created", "admin_user_id", admin.ID)
	return admin, pair, nil
}

// Logout revokes the presented refresh chain, best effort.
// Always succeeds from the caller's perspective; the caller clears cookies
// regardless of whether a token was presented.
func (s *AdminAccessService) Logout(ctx context.Context, rawRefreshToken string) {
	if err := s.sessions.RevokeFromRawToken(ctx, rawRefreshToken); err != nil {
		s.logger.Error("logout revocation failed", "error", err)
	}
}

// ChangePassword verifies the current password, stores a new hash, and
// revokes every other session for the admin. The caller re-issues a
// session for the device that made the change.
func (s *AdminAccessService) ChangePassword(ctx context.Context, adminID int64, currentPassword, newPassword string) (*TokenPair, error) {
	admin, err := s.store.GetAdminByID(ctx, adminID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Verify(currentPassword, admin.PasswordHash) {
		metrics.RecordAuthFailure("bad_credentials")
		return nil, BadRequest("Current password is incorrect.")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateAdminPasswordHash(ctx, adminID, hash); err != nil {
		return nil, err
	}

	if err := s.store.RevokeAllRefreshTokensForAdmin(ctx, adminID); err != nil {
		return nil, err
	}

	pair, err := s.sessions.IssueAdminSession(ctx, admin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("admin password changed", "admin_user_id", adminID)
	return pair, nil
}

// Authenticator exposes the request authenticator for the route middleware.
func (s *AdminAccessService) Authenticator() *RequestAuthenticator {
	return s.authenticator
}
