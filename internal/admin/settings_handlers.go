package admin

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/arborview/enroll/internal/auth"
	"github.com/arborview/enroll/internal/storage"
)

// SettingsResponse represents the notification settings in API responses.
type SettingsResponse struct {
	NotificationEmail    string `json:"notification_email"`
	UpdatedByAdminUserID *int64 `json:"updated_by_admin_user_id,omitempty"`
	UpdatedAt            string `json:"updated_at"`
}

func settingsResponse(cfg *storage.AdminConfig) SettingsResponse {
	return SettingsResponse{
		NotificationEmail:    cfg.NotificationEmail,
		UpdatedByAdminUserID: cfg.UpdatedByAdminUserID,
		UpdatedAt:            cfg.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// HandleGetSettings returns the notification settings.
// GET /api/settings/notification-email
func (h *Handler) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.storage.GetAdminConfig(r.Context())
	if err != nil {
		h.writeGuardError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse(cfg))
}

// UpdateSettingsRequest is the request body for PUT /api/settings/notification-email.
type UpdateSettingsRequest struct {
	NotificationEmail string `json:"notification_email"`
}

// HandleUpdateSettings updates the staff notification address and records
// which admin made the change.
// PUT /api/settings/notification-email
func (h *Handler) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Invalid JSON")
		return
	}
	if _, err := mail.ParseAddress(req.NotificationEmail); err != nil {
		WriteError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Valid email required")
		return
	}

	adminID := auth.AdminIDFromContext(r.Context())
	cfg, err := h.storage.SetNotificationEmail(r.Context(), req.NotificationEmail, adminID)
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	h.logger.Info("notification email updated", "admin_user_id", adminID)
	writeJSON(w, http.StatusOK, settingsResponse(cfg))
}
