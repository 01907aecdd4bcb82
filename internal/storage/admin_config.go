package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetAdminConfig returns the singleton config row.
// A default empty row is created on first read so callers never see ErrNotFound.
func (s *SQLiteStorage) GetAdminConfig(ctx context.Context) (*AdminConfig, error) {
	cfg, err := s.readAdminConfig(ctx)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO admin_config (id, notification_email) VALUES (1, '')",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to seed admin config: %w", err)
	}
	return s.readAdminConfig(ctx)
}

// SetNotificationEmail updates the notification address and records which
// admin made the change.
func (s *SQLiteStorage) SetNotificationEmail(ctx context.Context, email string, updatedByAdminID int64) (*AdminConfig, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_config (id, notification_email, updated_by_admin_user_id, updated_at)
		 VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(id) DO UPDATE SET
			notification_email = excluded.notification_email,
			updated_by_admin_user_id = excluded.updated_by_admin_user_id,
			updated_at = CURRENT_TIMESTAMP`,
		email, updatedByAdminID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set notification email: %w", err)
	}
	return s.readAdminConfig(ctx)
}

func (s *SQLiteStorage) readAdminConfig(ctx context.Context) (*AdminConfig, error) {
	var cfg AdminConfig
	var updatedBy sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, notification_email, updated_by_admin_user_id, updated_at FROM admin_config WHERE id = 1",
	).Scan(&cfg.ID, &cfg.NotificationEmail, &updatedBy, &cfg.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query admin config: %w", err)
	}
	if updatedBy.Valid {
		cfg.UpdatedByAdminUserID = &updatedBy.Int64
	}
	return &cfg, nil
}
