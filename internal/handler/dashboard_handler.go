package handler

import (
	"net/http"

	"github.com/parisxmas/oxiforms/internal/auth"
	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/service"
)

type DashboardHandler struct {
	formSvc *service.FormService
}

func NewDashboardHandler(formSvc *service.FormService) *DashboardHandler {
	return &DashboardHandler{formSvc: formSvc}
}

// Dashboard summarises the caller's forms and their review backlog.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUser(r.Context())
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	forms, err := h.formSvc.Summaries(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	total, pending := 0, 0
	for _, f := range forms {
		total += f.ResponseCount
		pending += f.ByStatus[models.StatusSubmitted]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"formCount":     len(forms),
		"responseCount": total,
		"pendingReview": pending,
		"forms":         forms,
	})
}
