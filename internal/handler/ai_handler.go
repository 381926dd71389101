package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/service"
)

type AIHandler struct {
	svc *service.AIService
}

func NewAIHandler(svc *service.AIService) *AIHandler {
	return &AIHandler{svc: svc}
}

func (h *AIHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		enhanceOptions
	}
	if err := readJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	out, err := h.svc.Enhance(r.Context(), req.Text, req.enhanceOptions.toAI())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"enhancedText": out})
}

func (h *AIHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text    string `json:"text"`
		Context string `json:"context"`
	}
	if err := readJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	suggestions, err := h.svc.Suggest(r.Context(), req.Text, req.Context)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": suggestions})
}

func (h *AIHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := readJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	s, err := h.svc.Sentiment(r.Context(), req.Text)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *AIHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var p models.AiPrompt
	if err := readJSON(r, &p); err != nil {
		badBody(w, err)
		return
	}
	created, err := h.svc.CreatePrompt(r.Context(), &p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *AIHandler) GetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetPrompt(r.Context(), chi.URLParam(r, "formId"), chi.URLParam(r, "questionId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AIHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	var patch models.AiPromptPatch
	if err := readJSON(r, &patch); err != nil {
		badBody(w, err)
		return
	}
	p, err := h.svc.UpdatePrompt(r.Context(), chi.URLParam(r, "formId"), chi.URLParam(r, "questionId"), patch)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
