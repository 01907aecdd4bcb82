// Package storage handles all database operations for the registration backend.
package storage

import (
	"database/sql"
	"fmt"
)

// InitSchema creates all required tables and indexes.
// This is idempotent - safe to call multiple times.
func InitSchema(db *sql.DB) error {
	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	ddlStatements := []string{
		// admin_users: admin accounts; email is unique case-insensitively
		`CREATE TABLE IF NOT EXISTS admin_users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE COLLATE NOCASE,
			password_hash TEXT NOT NULL,
			is_super_admin INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// refresh_tokens: rotation chain per login, anchored by replaced_by_token_id
		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			admin_user_id INTEGER NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			revoked_at TIMESTAMP,
			replaced_by_token_id INTEGER,
			FOREIGN KEY (admin_user_id) REFERENCES admin_users(id) ON DELETE CASCADE,
			FOREIGN KEY (replaced_by_token_id) REFERENCES refresh_tokens(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_hash ON refresh_tokens(token_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_admin ON refresh_tokens(admin_user_id)`,

		// admin_config: singleton row holding notification settings
		`CREATE TABLE IF NOT EXISTS admin_config (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			notification_email TEXT NOT NULL DEFAULT '',
			updated_by_admin_user_id INTEGER,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (updated_by_admin_user_id) REFERENCES admin_users(id)
		)`,

		// registrations: written by the public intake service, read here
		`CREATE TABLE IF NOT EXISTS registrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			student_name TEXT NOT NULL,
			guardian_email TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			notified_at TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_registrations_notified ON registrations(notified_at)`,
	}

	for _, stmt := range ddlStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}
