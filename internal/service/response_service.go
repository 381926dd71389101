package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/parisxmas/oxiforms/internal/ai"
	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/notify"
	"github.com/parisxmas/oxiforms/internal/repository"
)

// Dispatcher queues submission notifications off the request path.
type Dispatcher interface {
	Dispatch(ev notify.SubmissionEvent) bool
}

type ResponseService struct {
	base
	store      *repository.Store
	enhancer   *ai.Enhancer
	dispatcher Dispatcher
	locks      *keyedMutex
}

func NewResponseService(store *repository.Store, enhancer *ai.Enhancer, dispatcher Dispatcher) *ResponseService {
	return &ResponseService{
		base:       newBase(),
		store:      store,
		enhancer:   enhancer,
		dispatcher: dispatcher,
		locks:      newKeyedMutex(),
	}
}

type SubmitInput struct {
	Responses       map[string]any
	RespondentEmail string
	RespondentName  string
}

// Submit validates and stores a response with its final status in one
// transaction, then queues notifications. Notification problems never
// change the result.
func (s *ResponseService) Submit(ctx context.Context, formID string, in SubmitInput) (*models.FormResponse, error) {
	if in.Responses == nil {
		return nil, models.Invalidf("responses is required")
	}
	email := strings.TrimSpace(in.RespondentEmail)
	if err := models.ValidateEmail("respondentEmail", email); err != nil {
		return nil, err
	}

	var (
		form *models.Form
		resp *models.FormResponse
	)
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		f, err := tx.Forms.FindByID(ctx, formID)
		if err != nil {
			return orNotFound(err, ErrFormNotFound)
		}
		if err := models.ValidateAnswers(f, in.Responses); err != nil {
			return err
		}

		now := s.now()
		r := &models.FormResponse{
			ID:                  s.newID(),
			FormID:              f.ID,
			RespondentEmail:     email,
			RespondentName:      strings.TrimSpace(in.RespondentName),
			Responses:           in.Responses,
			AIEnhancedResponses: map[string]string{},
			Status:              models.StatusSubmitted,
			SubmittedAt:         now,
			Version:             1,
		}
		if !f.WorkflowConfig.RequireApproval {
			r.Status = models.StatusApproved
			r.ReviewedAt = &now
		}
		if err := tx.Responses.Create(ctx, r); err != nil {
			return err
		}
		form, resp = f, r
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"form_id":     form.ID,
		"response_id": resp.ID,
		"status":      resp.Status,
	}).Info("response submitted")

	if ev := notify.NewSubmissionEvent(form, resp); ev.Wants() && s.dispatcher != nil {
		s.dispatcher.Dispatch(ev)
	}
	return resp, nil
}

func (s *ResponseService) Get(ctx context.Context, id string) (*models.FormResponse, error) {
	r, err := s.store.Responses.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, ErrResponseNotFound)
	}
	return r, nil
}

func (s *ResponseService) ListByForm(ctx context.Context, formID string) ([]models.FormResponse, error) {
	if _, err := s.store.Forms.FindByID(ctx, formID); err != nil {
		return nil, orNotFound(err, ErrFormNotFound)
	}
	return s.store.Responses.FindByFormID(ctx, formID)
}

// PatchStatus records a review decision. Any valid status may follow any other.
func (s *ResponseService) PatchStatus(ctx context.Context, id string, status models.ResponseStatus, reviewerID string) (*models.FormResponse, error) {
	if !status.Valid() {
		return nil, models.Invalidf("status must be one of submitted, approved, rejected")
	}
	if err := s.store.Responses.UpdateStatus(ctx, id, status, reviewerID, s.now()); err != nil {
		return nil, orNotFound(err, ErrResponseNotFound)
	}
	log.WithFields(log.Fields{"response_id": id, "status": status, "reviewed_by": reviewerID}).Info("response reviewed")
	return s.Get(ctx, id)
}

// EnhanceAnswerInput asks for one answer to be rewritten. A nil Options
// falls back to the stored ai prompt, then the question's own prompt.
type EnhanceAnswerInput struct {
	QuestionID   string
	OriginalText string
	Options      *ai.EnhanceOptions
}

type EnhanceAnswerResult struct {
	EnhancedText string               `json:"enhancedText"`
	Response     *models.FormResponse `json:"response"`
}

// EnhanceAnswer rewrites one answer and merges it into the response's
// enhanced map. Merges for the same response are serialised here and
// version-checked in the store, so concurrent calls never drop an entry.
func (s *ResponseService) EnhanceAnswer(ctx context.Context, id string, in EnhanceAnswerInput) (*EnhanceAnswerResult, error) {
	if in.QuestionID == "" {
		return nil, models.Invalidf("questionId is required")
	}
	if strings.TrimSpace(in.OriginalText) == "" {
		return nil, models.Invalidf("originalText is required")
	}

	resp, err := s.store.Responses.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, ErrResponseNotFound)
	}
	form, err := s.store.Forms.FindByID(ctx, resp.FormID)
	if err != nil {
		return nil, orNotFound(err, ErrFormNotFound)
	}
	q, ok := form.Question(in.QuestionID)
	if !ok {
		return nil, models.Invalidf("unknown question id: %s", in.QuestionID)
	}

	opts, err := s.resolveOptions(ctx, form.ID, q, in.Options)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	text, err := s.enhancer.Enhance(ctx, in.OriginalText, opts)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"response_id": id,
		"question_id": in.QuestionID,
		"provider":    s.enhancer.Provider(),
		"input_len":   len(in.OriginalText),
		"output_len":  len(text),
		"duration":    time.Since(start).Round(time.Millisecond),
	}).Info("answer enhanced")

	unlock := s.locks.Lock(id)
	defer unlock()
	updated, err := s.store.Responses.SetEnhancedAnswer(ctx, id, in.QuestionID, text)
	if err != nil {
		return nil, orNotFound(err, ErrResponseNotFound)
	}
	return &EnhanceAnswerResult{EnhancedText: text, Response: updated}, nil
}

func (s *ResponseService) resolveOptions(ctx context.Context, formID string, q *models.Question, given *ai.EnhanceOptions) (ai.EnhanceOptions, error) {
	if given != nil {
		if err := validateToneLength(given.Tone, given.Length); err != nil {
			return ai.EnhanceOptions{}, err
		}
		return *given, nil
	}
	stored, err := s.store.Prompts.Find(ctx, formID, q.ID)
	switch {
	case err == nil:
		return ai.EnhanceOptions{Tone: stored.Tone, Length: stored.Length, CustomPrompt: stored.Prompt}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return ai.EnhanceOptions{}, err
	}
	if q.AIPrompt != nil {
		return ai.EnhanceOptions{Tone: q.AIPrompt.Tone, Length: q.AIPrompt.Length, CustomPrompt: q.AIPrompt.Prompt}, nil
	}
	return ai.EnhanceOptions{}, nil
}

func validateToneLength(tone models.Tone, length models.Length) error {
	switch tone {
	case "", models.ToneProfessional, models.ToneCasual, models.ToneFormal, models.ToneCreative:
	default:
		return models.Invalidf("tone must be one of [professional casual formal creative]")
	}
	switch length {
	case "", models.LengthConcise, models.LengthModerate, models.LengthDetailed:
	default:
		return models.Invalidf("length must be one of [concise moderate detailed]")
	}
	return nil
}

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 200
)

// ResponseQuery filters a form's responses. Text matches any raw or
// enhanced answer case-insensitively.
type ResponseQuery struct {
	Status models.ResponseStatus `json:"status,omitempty"`
	Text   string                `json:"text,omitempty"`
	Skip   int                   `json:"skip"`
	Limit  int                   `json:"limit"`
}

type ResponsePage struct {
	Responses []models.FormResponse `json:"responses"`
	Total     int                   `json:"total"`
	Skip      int                   `json:"skip"`
	Limit     int                   `json:"limit"`
}

// Search returns one page of a form's responses, newest first.
func (s *ResponseService) Search(ctx context.Context, formID string, q ResponseQuery) (*ResponsePage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, models.Invalidf("status must be one of submitted, approved, rejected")
	}
	if q.Skip < 0 {
		return nil, models.Invalidf("skip must not be negative")
	}
	switch {
	case q.Limit <= 0:
		q.Limit = defaultSearchLimit
	case q.Limit > maxSearchLimit:
		q.Limit = maxSearchLimit
	}

	all, err := s.ListByForm(ctx, formID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	matched := make([]models.FormResponse, 0, len(all))
	for _, r := range all {
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		if needle != "" && !responseContains(r, needle) {
			continue
		}
		matched = append(matched, r)
	}

	page := &ResponsePage{Responses: []models.FormResponse{}, Total: len(matched), Skip: q.Skip, Limit: q.Limit}
	if q.Skip < len(matched) {
		end := min(q.Skip+q.Limit, len(matched))
		page.Responses = matched[q.Skip:end]
	}
	return page, nil
}

func responseContains(r models.FormResponse, needle string) bool {
	for _, v := range r.Responses {
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), needle) {
			return true
		}
	}
	for _, v := range r.AIEnhancedResponses {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(r.RespondentName), needle) ||
		strings.Contains(strings.ToLower(r.RespondentEmail), needle)
}
