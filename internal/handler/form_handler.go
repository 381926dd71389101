package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxiforms/internal/auth"
	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/service"
)

type FormHandler struct {
	svc *service.FormService
}

func NewFormHandler(svc *service.FormService) *FormHandler {
	return &FormHandler{svc: svc}
}

// List returns the forms of ?userId=, falling back to the caller's token.
func (h *FormHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		if claims := auth.GetUser(r.Context()); claims != nil {
			userID = claims.UserID
		}
	}
	forms, err := h.svc.ListByUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forms)
}

func (h *FormHandler) Create(w http.ResponseWriter, r *http.Request) {
	var draft models.Form
	if err := readJSON(r, &draft); err != nil {
		badBody(w, err)
		return
	}
	if draft.CreatedBy == "" {
		if claims := auth.GetUser(r.Context()); claims != nil {
			draft.CreatedBy = claims.UserID
		}
	}
	form, err := h.svc.Create(r.Context(), &draft)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, form)
}

func (h *FormHandler) Get(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *FormHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var patch models.FormPatch
	if err := readJSON(r, &patch); err != nil {
		badBody(w, err)
		return
	}
	form, err := h.svc.Patch(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

// Publish and Unpublish set the isPublished flag and return the form.
func (h *FormHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

func (h *FormHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *FormHandler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	form, err := h.svc.Publish(r.Context(), chi.URLParam(r, "id"), published)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, form)
}

func (h *FormHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Form deleted successfully"})
}
