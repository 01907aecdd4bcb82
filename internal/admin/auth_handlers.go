package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/arborview/enroll/internal/auth"
	"github.com/arborview/enroll/internal/storage"
)

// minPasswordLen applies to setup and new-admin creation, not login.
const minPasswordLen = 8

// CredentialsRequest is the request body for login and setup.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AdminResponse represents an admin account in API responses.
type AdminResponse struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	CreatedAt    string `json:"created_at"`
}

func adminResponse(a *storage.AdminUser) AdminResponse {
	return AdminResponse{
		ID:           a.ID,
		Email:        a.Email,
		IsSuperAdmin: a.IsSuperAdmin,
		CreatedAt:    a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// HandleSetupStatus reports whether the first admin has been created.
// GET /auth/setup-status
func (h *Handler) HandleSetupStatus(w http.ResponseWriter, r *http.Request) {
	count, err := h.storage.CountAdmins(r.Context())
	if err != nil {
		h.writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"setup_complete": count > 0})
}

// HandleSetup bootstraps the first admin account as a super admin.
// POST /auth/setup
// Body: {"email": "...", "password": "..."}
func (h *Handler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}
	if len(req.Password) < minPasswordLen {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Password must be at least 8 characters")
		return
	}

	admin, pair, err := h.access.SetupInitialAdmin(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	h.cookies.SetSession(w, pair)
	writeJSON(w, http.StatusCreated, adminResponse(admin))
}

// HandleLogin authenticates an admin and issues a session.
// POST /auth/login
// Body: {"email": "...", "password": "..."}
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeCredentials(w, r)
	if !ok {
		return
	}

	admin, pair, err := h.access.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	h.cookies.SetSession(w, pair)
	writeJSON(w, http.StatusOK, adminResponse(admin))
}

// HandleLogout revokes the presented session and clears cookies.
// POST /auth/logout
// Always succeeds, whether or not a valid session was presented.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.access.Logout(r.Context(), h.cookies.ReadRefreshToken(r))
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleMe returns the authenticated admin's account.
// GET /api/me
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	adminID := auth.AdminIDFromContext(r.Context())
	admin, err := h.storage.GetAdminByID(r.Context(), adminID)
	if errors.Is(err, storage.ErrNotFound) {
		// Account deleted while the access token was still live.
		h.writeGuardError(w, auth.ErrUnauthorized)
		return
	}
	if err != nil {
		h.writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, adminResponse(admin))
}

// ChangePasswordRequest is the request body for POST /api/me/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword changes the caller's password and revokes all other
// sessions. The calling device gets a fresh session.
// POST /api/me/password
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}
	if len(req.NewPassword) < minPasswordLen {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Password must be at least 8 characters")
		return
	}

	adminID := auth.AdminIDFromContext(r.Context())
	pair, err := h.access.ChangePassword(r.Context(), adminID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	h.cookies.SetSession(w, pair)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// decodeCredentials parses and validates a credentials body.
func (h *Handler) decodeCredentials(w http.ResponseWriter, r *http.Request) (*CredentialsRequest, bool) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return nil, false
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Valid email required")
		return nil, false
	}
	if req.Password == "" {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Password required")
		return nil, false
	}
	return &req, true
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
