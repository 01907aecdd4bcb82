package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arborview/enroll/internal/storage"
)

// SuperAdminPolicy enforces the cross-row invariants on admin mutations:
// at least one super admin always exists, and nobody deletes themselves.
// Each guarded mutation runs its checks and writes in one transaction.
type SuperAdminPolicy struct {
	store  Store
	logger *slog.Logger
}

// NewSuperAdminPolicy creates the policy.
func NewSuperAdminPolicy(store Store, logger *slog.Logger) *SuperAdminPolicy {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuperAdminPolicy{store: store, logger: logger}
}

// UpdateSuperStatus toggles an admin's super flag with guards.
// Setting the current value is an idempotent success, not an error, so UI
// retries never flap into failures. Demoting the last super admin is a
// Conflict.
func (p *SuperAdminPolicy) UpdateSuperStatus(ctx context.Context, actingAdminID, targetAdminID int64, isSuperAdmin bool) (*storage.AdminUser, error) {
	var updated *storage.AdminUser

	err := p.store.WithTx(ctx, func(tx *storage.Tx) error {
		acting, err := tx.GetAdminByID(ctx, actingAdminID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnauthorized
		}
		if err != nil {
			return err
		}
		if !acting.IsSuperAdmin {
			return Forbidden("Super admin privileges required.")
		}

		target, err := tx.GetAdminByID(ctx, targetAdminID)
		if errors.Is(err, storage.ErrNotFound) {
			return NotFound("Admin not found.")
		}
		if err != nil {
			return err
		}

		if target.IsSuperAdmin == isSuperAdmin {
			updated = target
			return nil
		}

		if target.IsSuperAdmin && !isSuperAdmin {
			count, err := tx.CountSuperAdmins(ctx)
			if err != nil {
				return err
			}
			if count <= 1 {
				return Conflict("Cannot demote the last super admin.")
			}
		}

		if err := tx.SetAdminSuperStatus(ctx, targetAdminID, isSuperAdmin); err != nil {
			return err
		}

		updated, err = tx.GetAdminByID(ctx, targetAdminID)
		return err
	})
	if err != nil {
		return nil, err
	}

	p.logger.Info("admin super status updated",
		"acting_admin_id", actingAdminID,
		"target_admin_id", targetAdminID,
		"is_super_admin", isSuperAdmin)
	return updated, nil
}

// RemoveAdmin deletes an admin with guards. Self-deletion is a BadRequest
// regardless of role; deleting the last super admin is a Conflict. Config
// ownership is reassigned to the acting admin before the row goes away, in
// the same transaction.
func (p *SuperAdminPolicy) RemoveAdmin(ctx context.Context, actingAdminID, targetAdminID int64) error {
	err := p.store.WithTx(ctx, func(tx *storage.Tx) error {
		acting, err := tx.GetAdminByID(ctx, actingAdminID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrUnauthorized
		}
		if err != nil {
			return err
		}

		if actingAdminID == targetAdminID {
			return BadRequest("You cannot delete your own account.")
		}

		if !acting.IsSuperAdmin {
			return Forbidden("Super admin privileges required.")
		}

		target, err := tx.GetAdminByID(ctx, targetAdminID)
		if errors.Is(err, storage.ErrNotFound) {
			return NotFound("Admin not found.")
		}
		if err != nil {
			return err
		}

		if target.IsSuperAdmin {
			count, err := tx.CountSuperAdmins(ctx)
			if err != nil {
				return err
			}
			if count <= 1 {
				return Conflict("Cannot delete the last super admin.")
			}
		}

		if err := tx.ReassignConfigUpdater(ctx, targetAdminID, actingAdminID); err != nil {
			return err
		}
		return tx.DeleteAdminUser(ctx, targetAdminID)
	})
	if err != nil {
		return err
	}

	p.logger.Info("admin deleted",
		"acting_admin_id", actingAdminID,
		"target_admin_id", targetAdminID)
	return nil
}
