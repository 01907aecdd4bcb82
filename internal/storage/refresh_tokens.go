package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateRefreshToken inserts a new refresh token row.
// Returns ErrDuplicate if a row with the same hash already exists.
func (s *SQLiteStorage) CreateRefreshToken(ctx context.Context, rec *RefreshToken) (*RefreshToken, error) {
	return createRefreshToken(ctx, s.db, rec)
}

// GetRefreshTokenByHash looks up a refresh token by its storage hash.
// Returns ErrNotFound if no row matches; callers must not reveal to the
// client whether the presented secret ever existed.
func (s *SQLiteStorage) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error) {
	var rec RefreshToken
	var revokedAt sql.NullTime
	var replacedBy sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, admin_user_id, token_hash, created_at, expires_at, revoked_at, replaced_by_token_id
		 FROM refresh_tokens WHERE token_hash = ?`,
		tokenHash,
	).Scan(&rec.ID, &rec.AdminUserID, &rec.TokenHash, &rec.CreatedAt, &rec.ExpiresAt, &revokedAt, &replacedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh token: %w", err)
	}
	if revokedAt.Valid {
		rec.RevokedAt = &revokedAt.Time
	}
	if replacedBy.Valid {
		rec.ReplacedByTokenID = &replacedBy.Int64
	}
	return &rec, nil
}

// RevokeRefreshToken revokes a single token if it is not already revoked.
// Idempotent: revoking an already-revoked or absent token affects no rows
// and returns nil.
func (s *SQLiteStorage) RevokeRefreshToken(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE id = ? AND revoked_at IS NULL",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllRefreshTokensForAdmin revokes every active token for an admin.
// Used when reuse of a rotated token is detected.
func (s *SQLiteStorage) RevokeAllRefreshTokensForAdmin(ctx context.Context, adminUserID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE admin_user_id = ? AND revoked_at IS NULL",
		adminUserID,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke tokens for admin: %w", err)
	}
	return nil
}

// DeleteExpiredRefreshTokens removes rows whose expiry has passed.
// Revocation history for unexpired chains is kept so reuse detection works.
func (s *SQLiteStorage) DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM refresh_tokens WHERE expires_at <= ?", now,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

// createRefreshToken is shared between SQLiteStorage and Tx.
func createRefreshToken(ctx context.Context, q dbtx, rec *RefreshToken) (*RefreshToken, error) {
	if rec.TokenHash == "" {
		return nil, errors.New("token hash required")
	}
	if rec.AdminUserID == 0 {
		return nil, errors.New("admin user id required")
	}

	result, err := q.ExecContext(ctx,
		"INSERT INTO refresh_tokens (admin_user_id, token_hash, expires_at) VALUES (?, ?, ?)",
		rec.AdminUserID, rec.TokenHash, rec.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create refresh token: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	var out RefreshToken
	var revokedAt sql.NullTime
	var replacedBy sql.NullInt64
	err = q.QueryRowContext(ctx,
		`SELECT id, admin_user_id, token_hash, created_at, expires_at, revoked_at, replaced_by_token_id
		 FROM refresh_tokens WHERE id = ?`,
		id,
	).Scan(&out.ID, &out.AdminUserID, &out.TokenHash, &out.CreatedAt, &out.ExpiresAt, &revokedAt, &replacedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to read back refresh token: %w", err)
	}
	if revokedAt.Valid {
		out.RevokedAt = &revokedAt.Time
	}
	if replacedBy.Valid {
		out.ReplacedByTokenID = &replacedBy.Int64
	}
	return &out, nil
}
