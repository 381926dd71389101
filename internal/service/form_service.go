package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/repository"
)

type FormService struct {
	base
	store *repository.Store
}

func NewFormService(store *repository.Store) *FormService {
	return &FormService{base: newBase(), store: store}
}

func (s *FormService) Create(ctx context.Context, draft *models.Form) (*models.Form, error) {
	form := *draft
	if form.Questions == nil {
		form.Questions = []models.Question{}
	}
	if err := models.ValidateForm(&form); err != nil {
		return nil, err
	}
	now := s.now()
	form.ID = s.newID()
	form.CreatedAt = now
	form.UpdatedAt = now

	if err := s.store.Forms.Create(ctx, &form); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"form_id": form.ID, "created_by": form.CreatedBy, "questions": len(form.Questions)}).Info("form created")
	return &form, nil
}

func (s *FormService) Get(ctx context.Context, id string) (*models.Form, error) {
	form, err := s.store.Forms.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, ErrFormNotFound)
	}
	return form, nil
}

// ListByUser returns the forms created by userID, newest first.
func (s *FormService) ListByUser(ctx context.Context, userID string) ([]models.Form, error) {
	if userID == "" {
		return nil, models.Invalidf("userId is required")
	}
	return s.store.Forms.FindByCreator(ctx, userID)
}

// Patch merges the supplied fields and re-validates the whole form.
// Concurrent patches are last-writer-wins.
func (s *FormService) Patch(ctx context.Context, id string, patch models.FormPatch) (*models.Form, error) {
	var out *models.Form
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		form, err := tx.Forms.FindByID(ctx, id)
		if err != nil {
			return orNotFound(err, ErrFormNotFound)
		}
		patch.Apply(form)
		if form.Questions == nil {
			form.Questions = []models.Question{}
		}
		if err := models.ValidateForm(form); err != nil {
			return err
		}
		form.UpdatedAt = s.now()
		if err := tx.Forms.Update(ctx, form); err != nil {
			return orNotFound(err, ErrFormNotFound)
		}
		out = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FormService) Publish(ctx context.Context, id string, published bool) (*models.Form, error) {
	return s.Patch(ctx, id, models.FormPatch{IsPublished: &published})
}

// Delete removes the form with its responses and ai prompts. Deleting an
// unknown id succeeds.
func (s *FormService) Delete(ctx context.Context, id string) error {
	var forms, responses, prompts int64
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		var err error
		if prompts, err = tx.Prompts.DeleteByFormID(ctx, id); err != nil {
			return err
		}
		if responses, err = tx.Responses.DeleteByFormID(ctx, id); err != nil {
			return err
		}
		forms, err = tx.Forms.Delete(ctx, id)
		return err
	})
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"form_id":   id,
		"deleted":   forms > 0,
		"responses": responses,
		"prompts":   prompts,
	}).Info("form deleted")
	return nil
}

// FormSummary is one row of a creator's dashboard.
type FormSummary struct {
	ID            string                        `json:"id"`
	Title         string                        `json:"title"`
	IsPublished   bool                          `json:"isPublished"`
	QuestionCount int                           `json:"questionCount"`
	ResponseCount int                           `json:"responseCount"`
	ByStatus      map[models.ResponseStatus]int `json:"byStatus"`
	CreatedAt     time.Time                     `json:"createdAt"`
}

// Summaries returns the creator's forms with per-status response counts.
func (s *FormService) Summaries(ctx context.Context, userID string) ([]FormSummary, error) {
	forms, err := s.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]FormSummary, 0, len(forms))
	for _, f := range forms {
		total, err := s.store.Responses.CountByFormID(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		counts, err := s.store.Responses.CountByStatus(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, FormSummary{
			ID:            f.ID,
			Title:         f.Title,
			IsPublished:   f.IsPublished,
			QuestionCount: len(f.Questions),
			ResponseCount: total,
			ByStatus:      counts,
			CreatedAt:     f.CreatedAt,
		})
	}
	return out, nil
}
