package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// CreateAdminUser creates a new admin account.
// Email is stored lowercased. Returns ErrDuplicate if the email is taken.
func (s *SQLiteStorage) CreateAdminUser(ctx context.Context, email, passwordHash string, isSuperAdmin bool) (*AdminUser, error) {
	if email == "" {
		return nil, errors.New("email required")
	}
	if passwordHash == "" {
		return nil, errors.New("password hash required")
	}

	email = strings.ToLower(email)

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash, is_super_admin) VALUES (?, ?, ?)",
		email, passwordHash, boolToInt(isSuperAdmin),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create admin user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get insert ID: %w", err)
	}

	return s.GetAdminByID(ctx, id)
}

// GetAdminByID returns an admin by ID.
// Returns ErrNotFound if no such admin exists.
func (s *SQLiteStorage) GetAdminByID(ctx context.Context, id int64) (*AdminUser, error) {
	return getAdminByID(ctx, s.db, id)
}

// GetAdminByEmail returns an admin by email, case-insensitively.
// Returns ErrNotFound if no such admin exists.
func (s *SQLiteStorage) GetAdminByEmail(ctx context.Context, email string) (*AdminUser, error) {
	var a AdminUser
	var isSuper int
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, is_super_admin, created_at FROM admin_users WHERE email = ? COLLATE NOCASE",
		strings.ToLower(email),
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &isSuper, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admin by email: %w", err)
	}
	a.IsSuperAdmin = isSuper != 0
	return &a, nil
}

// ListAdmins returns all admin accounts ordered by creation time.
// Returns an empty slice if none exist.
func (s *SQLiteStorage) ListAdmins(ctx context.Context) ([]*AdminUser, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, email, password_hash, is_super_admin, created_at FROM admin_users ORDER BY created_at, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin users: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var admins []*AdminUser
	for rows.Next() {
		var a AdminUser
		var isSuper int
		if err := rows.Scan(&a.ID, &a.Email, &a.PasswordHash, &isSuper, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin row: %w", err)
		}
		a.IsSuperAdmin = isSuper != 0
		admins = append(admins, &a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin users: %w", err)
	}

	if admins == nil {
		admins = make([]*AdminUser, 0)
	}
	return admins, nil
}

// CountAdmins returns the total number of admin accounts.
func (s *SQLiteStorage) CountAdmins(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_users").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return n, nil
}

// CountSuperAdmins returns the number of admins with super status.
func (s *SQLiteStorage) CountSuperAdmins(ctx context.Context) (int, error) {
	return countSuperAdmins(ctx, s.db)
}

// UpdateAdminPasswordHash replaces an admin's stored password hash.
// Returns ErrNotFound if the admin doesn't exist.
func (s *SQLiteStorage) UpdateAdminPasswordHash(ctx context.Context, id int64, passwordHash string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE admin_users SET password_hash = ? WHERE id = ?",
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
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

// getAdminByID is shared between SQLiteStorage and Tx.
func getAdminByID(ctx context.Context, q dbtx, id int64) (*AdminUser, error) {
	var a AdminUser
	var isSuper int
	err := q.QueryRowContext(ctx,
		"SELECT id, email, password_hash, is_super_admin, created_at FROM admin_users WHERE id = ?",
		id,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &isSuper, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admin by id: %w", err)
	}
	a.IsSuperAdmin = isSuper != 0
	return &a, nil
}

func countSuperAdmins(ctx context.Context, q dbtx) (int, error) {
	var n int
	err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_users WHERE is_super_admin = 1").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count super admins: %w", err)
	}
	return n, nil
}

func setAdminSuperStatus(ctx context.Context, q dbtx, id int64, isSuper bool) error {
	result, err := q.ExecContext(ctx,
		"UPDATE admin_users SET is_super_admin = ? WHERE id = ?",
		boolToInt(isSuper), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update super status: %w", err)
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

func deleteAdminUser(ctx context.Context, q dbtx, id int64) error {
	result, err := q.ExecContext(ctx, "DELETE FROM admin_users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete admin user: %w", err)
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

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
