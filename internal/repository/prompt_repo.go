package repository

import (
	"context"
	"fmt"

	"github.com/parisxmas/oxiforms/internal/models"
)

const promptColumns = `id, form_id, question_id, prompt, tone, length, created_at`

type PromptRepo struct {
	repo
}

func (r *PromptRepo) Create(ctx context.Context, p *models.AiPrompt) error {
	_, err := r.exec(ctx,
		`INSERT INTO ai_prompts (`+promptColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FormID, p.QuestionID, p.Prompt, string(p.Tone), string(p.Length), p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert ai prompt: %w", err)
	}
	return nil
}

func (r *PromptRepo) Find(ctx context.Context, formID, questionID string) (*models.AiPrompt, error) {
	var (
		p      models.AiPrompt
		tone   string
		length string
	)
	err := r.queryRow(ctx,
		`SELECT `+promptColumns+` FROM ai_prompts WHERE form_id = ? AND question_id = ?`, formID, questionID,
	).Scan(&p.ID, &p.FormID, &p.QuestionID, &p.Prompt, &tone, &length, timeColumn{t: &p.CreatedAt})
	if err != nil {
		return nil, translateError(err)
	}
	p.Tone = models.Tone(tone)
	p.Length = models.Length(length)
	return &p, nil
}

func (r *PromptRepo) Update(ctx context.Context, p *models.AiPrompt) error {
	res, err := r.exec(ctx,
		`UPDATE ai_prompts SET prompt = ?, tone = ?, length = ? WHERE form_id = ? AND question_id = ?`,
		p.Prompt, string(p.Tone), string(p.Length), p.FormID, p.QuestionID,
	)
	if err != nil {
		return fmt.Errorf("update ai prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PromptRepo) DeleteByFormID(ctx context.Context, formID string) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM ai_prompts WHERE form_id = ?`, formID)
	if err != nil {
		return 0, fmt.Errorf("delete ai prompts: %w", err)
	}
	return res.RowsAffected()
}
