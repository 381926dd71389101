package models

import "time"

// AiPrompt stores the enhancement settings for one question of one form.
type AiPrompt struct {
	ID         string    `json:"id"`
	FormID     string    `json:"formId"`
	QuestionID string    `json:"questionId"`
	Prompt     string    `json:"prompt"`
	Tone       Tone      `json:"tone"`
	Length     Length    `json:"length"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AiPromptPatch carries a partial ai prompt update.
type AiPromptPatch struct {
	Prompt *string `json:"prompt,omitempty"`
	Tone   *Tone   `json:"tone,omitempty" validate:"omitempty,oneof=professional casual formal creative"`
	Length *Length `json:"length,omitempty" validate:"omitempty,oneof=concise moderate detailed"`
}

func (p AiPromptPatch) Apply(a *AiPrompt) {
	if p.Prompt != nil {
		a.Prompt = *p.Prompt
	}
	if p.Tone != nil {
		a.Tone = *p.Tone
	}
	if p.Length != nil {
		a.Length = *p.Length
	}
}
