package service

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/parisxmas/oxiforms/internal/ai"
	"github.com/parisxmas/oxiforms/internal/models"
	"github.com/parisxmas/oxiforms/internal/repository"
)

// AIService exposes free-text enhancement and per-question prompt settings.
type AIService struct {
	base
	store    *repository.Store
	enhancer *ai.Enhancer
}

func NewAIService(store *repository.Store, enhancer *ai.Enhancer) *AIService {
	return &AIService{base: newBase(), store: store, enhancer: enhancer}
}

func (s *AIService) Enhance(ctx context.Context, text string, opts ai.EnhanceOptions) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", models.Invalidf("text is required")
	}
	if err := validateToneLength(opts.Tone, opts.Length); err != nil {
		return "", err
	}
	return s.enhancer.Enhance(ctx, text, opts)
}

func (s *AIService) Suggest(ctx context.Context, text, hint string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.Invalidf("text is required")
	}
	return s.enhancer.Suggest(ctx, text, hint)
}

func (s *AIService) Sentiment(ctx context.Context, text string) (*ai.Sentiment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.Invalidf("text is required")
	}
	return s.enhancer.AnalyzeSentiment(ctx, text)
}

// CreatePrompt stores enhancement settings for a long-text question.
func (s *AIService) CreatePrompt(ctx context.Context, p *models.AiPrompt) (*models.AiPrompt, error) {
	if p.FormID == "" || p.QuestionID == "" {
		return nil, models.Invalidf("formId and questionId are required")
	}
	prompt := *p
	if prompt.Tone == "" {
		prompt.Tone = models.ToneProfessional
	}
	if prompt.Length == "" {
		prompt.Length = models.LengthModerate
	}
	if err := validateToneLength(prompt.Tone, prompt.Length); err != nil {
		return nil, err
	}
	if err := s.checkQuestion(ctx, prompt.FormID, prompt.QuestionID); err != nil {
		return nil, err
	}
	prompt.ID = s.newID()
	prompt.CreatedAt = s.now()
	if err := s.store.Prompts.Create(ctx, &prompt); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"form_id": prompt.FormID, "question_id": prompt.QuestionID}).Info("ai prompt created")
	return &prompt, nil
}

func (s *AIService) GetPrompt(ctx context.Context, formID, questionID string) (*models.AiPrompt, error) {
	p, err := s.store.Prompts.Find(ctx, formID, questionID)
	if err != nil {
		return nil, orNotFound(err, ErrPromptNotFound)
	}
	return p, nil
}

func (s *AIService) UpdatePrompt(ctx context.Context, formID, questionID string, patch models.AiPromptPatch) (*models.AiPrompt, error) {
	if err := models.Struct(patch); err != nil {
		return nil, err
	}
	var out *models.AiPrompt
	err := s.store.WithTx(ctx, func(tx *repository.Store) error {
		p, err := tx.Prompts.Find(ctx, formID, questionID)
		if err != nil {
			return orNotFound(err, ErrPromptNotFound)
		}
		patch.Apply(p)
		if err := tx.Prompts.Update(ctx, p); err != nil {
			return orNotFound(err, ErrPromptNotFound)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *AIService) checkQuestion(ctx context.Context, formID, questionID string) error {
	form, err := s.store.Forms.FindByID(ctx, formID)
	if err != nil {
		return orNotFound(err, ErrFormNotFound)
	}
	q, ok := form.Question(questionID)
	if !ok {
		return models.Invalidf("unknown question id: %s", questionID)
	}
	if q.Type != models.QuestionLongText {
		return models.Invalidf("ai prompts are only allowed on long-text questions")
	}
	return nil
}
