// Package admin provides the admin panel API: authentication endpoints,
// admin account management, notification settings, and registration review.
package admin

import (
	"context"
	"log/slog"

	"github.com/arborview/enroll/internal/auth"
	"github.com/arborview/enroll/internal/storage"
)

// Storage is the persistence surface the handlers use directly.
// The auth core reaches storage through its own interface; this one covers
// the panel's read/write endpoints.
type Storage interface {
	Ping(ctx context.Context) error

	ListAdmins(ctx context.Context) ([]*storage.AdminUser, error)
	CountAdmins(ctx context.Context) (int, error)
	GetAdminByID(ctx context.Context, id int64) (*storage.AdminUser, error)
	CreateAdminUser(ctx context.Context, email, passwordHash string, isSuperAdmin bool) (*storage.AdminUser, error)

	GetAdminConfig(ctx context.Context) (*storage.AdminConfig, error)
	SetNotificationEmail(ctx context.Context, email string, updatedByAdminID int64) (*storage.AdminConfig, error)

	ListRegistrations(ctx context.Context) ([]*storage.Registration, error)
}

// Handler provides the admin panel endpoints.
type Handler struct {
	storage  Storage
	access   *auth.AdminAccessService
	policy   *auth.SuperAdminPolicy
	hasher   *auth.PasswordHasher
	cookies  *auth.Cookies
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

// NewHandler creates the admin panel handler.
func NewHandler(
	store Storage,
	access *auth.AdminAccessService,
	policy *auth.SuperAdminPolicy,
	hasher *auth.PasswordHasher,
	cookies *auth.Cookies,
	logLevel *slog.LevelVar,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}

	return &Handler{
		storage:  store,
		access:   access,
		policy:   policy,
		hasher:   hasher,
		cookies:  cookies,
		logger:   logger,
		logLevel: logLevel,
	}
}
