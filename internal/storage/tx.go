package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Query helpers are written against it so the same SQL serves both the
// plain storage methods and the transactional handle.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a transaction-scoped handle over the storage operations that must
// be atomic: the super-admin invariant checks, config ownership reassignment,
// admin deletion, and refresh token rotation.
type Tx struct {
	tx *sql.Tx
}

// WithTx runs work inside a single database transaction.
// The transaction commits when work returns nil and rolls back otherwise;
// a failure partway through is never observable.
func (s *SQLiteStorage) WithTx(ctx context.Context, work func(tx *Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := work(&Tx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetAdminByID returns the admin row inside the transaction.
func (t *Tx) GetAdminByID(ctx context.Context, id int64) (*AdminUser, error) {
	return getAdminByID(ctx, t.tx, id)
}

// CountSuperAdmins counts admins with super status inside the transaction.
func (t *Tx) CountSuperAdmins(ctx context.Context) (int, error) {
	return countSuperAdmins(ctx, t.tx)
}

// SetAdminSuperStatus updates an admin's super flag inside the transaction.
func (t *Tx) SetAdminSuperStatus(ctx context.Context, id int64, isSuper bool) error {
	return setAdminSuperStatus(ctx, t.tx, id, isSuper)
}

// ReassignConfigUpdater points the config row's updater at a different admin.
// Used before deleting the admin that last touched the config.
func (t *Tx) ReassignConfigUpdater(ctx context.Context, fromAdminID, toAdminID int64) error {
	_, err := t.tx.ExecContext(ctx,
		"UPDATE admin_config SET updated_by_admin_user_id = ? WHERE updated_by_admin_user_id = ?",
		toAdminID, fromAdminID,
	)
	if err != nil {
		return fmt.Errorf("failed to reassign config updater: %w", err)
	}
	return nil
}

// DeleteAdminUser removes an admin row inside the transaction.
// Refresh tokens cascade via the foreign key.
func (t *Tx) DeleteAdminUser(ctx context.Context, id int64) error {
	return deleteAdminUser(ctx, t.tx, id)
}

// CreateRefreshToken inserts a refresh token row inside the transaction.
func (t *Tx) CreateRefreshToken(ctx context.Context, rec *RefreshToken) (*RefreshToken, error) {
	return createRefreshToken(ctx, t.tx, rec)
}

// MarkRefreshTokenRotated revokes the old row and links it to its successor.
func (t *Tx) MarkRefreshTokenRotated(ctx context.Context, oldID, newID int64) error {
	result, err := t.tx.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at = CURRENT_TIMESTAMP, replaced_by_token_id = ? WHERE id = ? AND revoked_at IS NULL",
		newID, oldID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark token rotated: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
