package auth

import (
	"context"

	"github.com/arborview/enroll/internal/storage"
)

// Store is the persistence surface the auth core needs.
// Implemented by *storage.SQLiteStorage.
type Store interface {
	GetAdminByID(ctx context.Context, id int64) (*storage.AdminUser, error)
	GetAdminByEmail(ctx context.Context, email string) (*storage.AdminUser, error)
	CountAdmins(ctx context.Context) (int, error)
	CreateAdminUser(ctx context.Context, email, passwordHash string, isSuperAdmin bool) (*storage.AdminUser, error)
	UpdateAdminPasswordHash(ctx context.Context, id int64, passwordHash string) error

	CreateRefreshToken(ctx context.Context, rec *storage.RefreshToken) (*storage.RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*storage.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id int64) error
	RevokeAllRefreshTokensForAdmin(ctx context.Context, adminUserID int64) error

	// WithTx runs work atomically; rollback on error, commit otherwise.
	WithTx(ctx context.Context, work func(tx *storage.Tx) error) error
}
