package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CreateRegistration inserts an admission-interest submission.
// The public intake service is the normal writer; this method also backs tests
// and the seed tooling.
func (s *SQLiteStorage) CreateRegistration(ctx context.Context, reg *Registration) (int64, error) {
	if reg.StudentName == "" {
		return 0, errors.New("student name required")
	}
	if reg.GuardianEmail == "" {
		return 0, errors.New("guardian email required")
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO registrations (student_name, guardian_email, phone, message) VALUES (?, ?, ?, ?)",
		reg.StudentName, reg.GuardianEmail, reg.Phone, reg.Message,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create registration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert ID: %w", err)
	}
	return id, nil
}

// ListRegistrations returns submissions, newest first.
// Returns an empty slice if none exist.
func (s *SQLiteStorage) ListRegistrations(ctx context.Context) ([]*Registration, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, student_name, guardian_email, phone, message, created_at, notified_at
		 FROM registrations ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var regs []*Registration
	for rows.Next() {
		var r Registration
		var notifiedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.StudentName, &r.GuardianEmail, &r.Phone, &r.Message, &r.CreatedAt, &notifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		if notifiedAt.Valid {
			r.NotifiedAt = &notifiedAt.Time
		}
		regs = append(regs, &r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registrations: %w", err)
	}

	if regs == nil {
		regs = make([]*Registration, 0)
	}
	return regs, nil
}

// MarkRegistrationNotified records that staff were emailed about a submission.
// Consumed by the external notification worker.
// Returns ErrNotFound if the registration doesn't exist.
func (s *SQLiteStorage) MarkRegistrationNotified(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE registrations SET notified_at = CURRENT_TIMESTAMP WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark registration notified: %w", err)
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
