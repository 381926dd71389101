package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxiforms/internal/service"
)

type SearchHandler struct {
	svc *service.ResponseService
}

func NewSearchHandler(svc *service.ResponseService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Search pages through a form's responses filtered by status and text.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req service.ResponseQuery
	if err := readJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	page, err := h.svc.Search(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
