package admin

import (
	"net/http"

	"github.com/arborview/enroll/internal/storage"
)

// RegistrationResponse represents an admission-interest submission.
type RegistrationResponse struct {
	ID            int64  `json:"id"`
	StudentName   string `json:"student_name"`
	GuardianEmail string `json:"guardian_email"`
	Phone         string `json:"phone,omitempty"`
	Message       string `json:"message,omitempty"`
	CreatedAt     string `json:"created_at"`
	NotifiedAt    string `json:"notified_at,omitempty"`
}

func registrationResponse(reg *storage.Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:            reg.ID,
		StudentName:   reg.StudentName,
		GuardianEmail: reg.GuardianEmail,
		Phone:         reg.Phone,
		Message:       reg.Message,
		CreatedAt:     reg.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if reg.NotifiedAt != nil {
		resp.NotifiedAt = reg.NotifiedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// HandleListRegistrations returns submissions, newest first.
// GET /api/registrations
func (h *Handler) HandleListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.storage.ListRegistrations(r.Context())
	if err != nil {
		h.writeGuardError(w, err)
		return
	}

	response := make([]RegistrationResponse, len(regs))
	for i, reg := range regs {
		response[i] = registrationResponse(reg)
	}
	writeJSON(w, http.StatusOK, response)
}
