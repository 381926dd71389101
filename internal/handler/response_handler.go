package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parisxmas/oxiforms/internal/ai"
	"github.com/parisxmas/oxiforms/internal/auth"
	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/service"
)

type ResponseHandler struct {
	svc *service.ResponseService
}

func NewResponseHandler(svc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{svc: svc}
}

func (h *ResponseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Responses       map[string]any `json:"responses"`
		RespondentEmail string         `json:"respondentEmail"`
		RespondentName  string         `json:"respondentName"`
	}
	if err := readJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	if req.RespondentEmail == "" {
		if claims := auth.GetUser(r.Context()); claims != nil {
			req.RespondentEmail = claims.Email
		}
	}
	resp, err := h.svc.Submit(r.Context(), chi.URLParam(r, "id"), service.SubmitInput{
		Responses:       req.Responses,
		RespondentEmail: req.RespondentEmail,
		RespondentName:  req.RespondentName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListByForm(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// PatchStatus records a review. reviewedBy defaults to the caller.
func (h *ResponseHandler) PatchStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status     models.ResponseStatus `json:"status"`
		ReviewedBy string                `json:"reviewedBy"`
	}
	if err := readJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	if req.ReviewedBy == "" {
		if claims := auth.GetUser(r.Context()); claims != nil {
			req.ReviewedBy = claims.UserID
		}
	}
	resp, err := h.svc.PatchStatus(r.Context(), chi.URLParam(r, "id"), req.Status, req.ReviewedBy)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ResponseHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID   string          `json:"questionId"`
		OriginalText string          `json:"originalText"`
		Options      *enhanceOptions `json:"options"`
	}
	if err := readJSON(r, &req); err != nil {
		badBody(w, err)
		return
	}
	in := service.EnhanceAnswerInput{QuestionID: req.QuestionID, OriginalText: req.OriginalText}
	if req.Options != nil {
		opts := req.Options.toAI()
		in.Options = &opts
	}
	res, err := h.svc.EnhanceAnswer(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type enhanceOptions struct {
	Tone         models.Tone   `json:"tone"`
	Length       models.Length `json:"length"`
	CustomPrompt string        `json:"customPrompt"`
}

func (o enhanceOptions) toAI() ai.EnhanceOptions {
	return ai.EnhanceOptions{Tone: o.Tone, Length: o.Length, CustomPrompt: o.CustomPrompt}
}
