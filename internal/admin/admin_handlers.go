package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"

	"github.com/go-chi/chi/v5"

	"github.com/arborview/enroll/internal/auth"
	"github.com/arborview/enroll/internal/storage"
)

// HandleListAdmins returns all admin accounts.
// GET /api/admins
func (h *Handler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.storage.ListAdmins(r.Context())
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	response := make([]AdminResponse, len(admins))
	for i, a := range admins {
		response[i] = adminResponse(a)
	}
	writeJSON(w, http.StatusOK, response)
}

// CreateAdminRequest is the request body for POST /api/admins.
type CreateAdminRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	IsSuperAdmin bool   `json:"is_super_admin"`
}

// HandleCreateAdmin creates a new admin account. Super admins only.
// POST /api/admins
func (h *Handler) HandleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	acting, err := h.requireSuperAdmin(r)
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	var req CreateAdminRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Valid email required")
		return
	}
	if len(req.Password) < minPasswordLen {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Password must be at least 8 characters")
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	created, err := h.storage.CreateAdminUser(r.Context(), req.Email, hash, req.IsSuperAdmin)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			WriteError(w, http.StatusConflict, ErrCodeConflict, "An admin with this email already exists")
			return
		}
		h.writeGuardError(w, err)
		return
	}

	h.logger.Info("admin created",
		"acting_admin_id", acting.ID,
		"new_admin_id", created.ID,
		"is_super_admin", created.IsSuperAdmin)
	writeJSON(w, http.StatusCreated, adminResponse(created))
}

// UpdateRoleRequest is the request body for PATCH /api/admins/{id}/role.
type UpdateRoleRequest struct {
	IsSuperAdmin bool `json:"is_super_admin"`
}

// HandleUpdateAdminRole toggles an admin's super status.
// PATCH /api/admins/{id}/role
// Guards live in the policy: 403 for non-supers, 409 for the last super.
func (h *Handler) HandleUpdateAdminRole(w http.ResponseWriter, r *http.Request) {
	targetID, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid admin ID")
		return
	}

	var req UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}

	actingID := auth.AdminIDFromContext(r.Context())
	updated, err := h.policy.UpdateSuperStatus(r.Context(), actingID, targetID, req.IsSuperAdmin)
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adminResponse(updated))
}

// HandleDeleteAdmin removes an admin account.
// DELETE /api/admins/{id}
// Guards live in the policy: no self-delete, last super admin protected.
func (h *Handler) HandleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	targetID, ok := parseIDParam(chi.URLParam(r, "id"))
	if !ok {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid admin ID")
		return
	}

	actingID := auth.AdminIDFromContext(r.Context())
	if err := h.policy.RemoveAdmin(r.Context(), actingID, targetID); err != nil {
		h.writeGuardError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// requireSuperAdmin loads the acting admin and checks super status.
// Mutations that the policy already guards don't use this; it covers the
// handler-level mutations (admin creation).
func (h *Handler) requireSuperAdmin(r *http.Request) (*storage.AdminUser, error) {
	actingID := auth.AdminIDFromContext(r.Context())
	acting, err := h.storage.GetAdminByID(r.Context(), actingID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, auth.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !acting.IsSuperAdmin {
		return nil, auth.Forbidden("Super admin privileges required.")
	}
	return acting, nil
}
