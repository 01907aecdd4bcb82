package storage

import "time"

// AdminUser represents an admin account.
// Email is stored lowercased; lookups are case-insensitive.
type AdminUser struct {
	ID           int64
	Email        string
	PasswordHash string
	IsSuperAdmin bool
	CreatedAt    time.Time
}

// RefreshToken represents a persisted refresh token row.
// Only the SHA-256 hash of the opaque secret is stored; the raw secret is
// handed to the client exactly once and never persisted.
type RefreshToken struct {
	ID                int64
	AdminUserID       int64
	TokenHash         string
	CreatedAt         time.Time
	ExpiresAt         time.Time
	RevokedAt         *time.Time
	ReplacedByTokenID *int64
}

// Active reports whether the token can still be redeemed at the given time.
func (t *RefreshToken) Active(now time.Time) bool {
	return t.RevokedAt == nil && t.ExpiresAt.After(now)
}

// AdminConfig is the singleton configuration row (id = 1).
type AdminConfig struct {
	ID                   int64
	NotificationEmail    string
	UpdatedByAdminUserID *int64
	UpdatedAt            time.Time
}

// Registration represents an admission-interest submission.
// Rows are written by the public intake service; this API only reads them
// and lets the notification worker mark them as sent.
type Registration struct {
	ID            int64
	StudentName   string
	GuardianEmail string
	Phone         string
	Message       string
	CreatedAt     time.Time
	NotifiedAt    *time.Time
}
