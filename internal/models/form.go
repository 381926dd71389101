package models

import "time"

// QuestionType enumerates the input kinds a form question can take.
type QuestionType string

const (
	QuestionSingleChoice QuestionType = "multiple-choice"
	QuestionMultiChoice  QuestionType = "checkboxes"
	QuestionShortText    QuestionType = "text-field"
	QuestionLongText     QuestionType = "long-text"
	QuestionNumber       QuestionType = "number"
	QuestionDate         QuestionType = "date"
)

// IsChoice reports whether answers must be picked from Options.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingleChoice || t == QuestionMultiChoice
}

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneFormal       Tone = "formal"
	ToneCreative     Tone = "creative"
)

type Length string

const (
	LengthConcise  Length = "concise"
	LengthModerate Length = "moderate"
	LengthDetailed Length = "detailed"
)

// QuestionAIPrompt is the enhancement instruction attached to a long-text question.
type QuestionAIPrompt struct {
	Prompt string `json:"prompt"`
	Tone   Tone   `json:"tone,omitempty" validate:"omitempty,oneof=professional casual formal creative"`
	Length Length `json:"length,omitempty" validate:"omitempty,oneof=concise moderate detailed"`
}

type Question struct {
	ID       string            `json:"id" validate:"required"`
	Type     QuestionType      `json:"type" validate:"required,oneof=multiple-choice checkboxes text-field long-text number date"`
	Title    string            `json:"title" validate:"required"`
	Required bool              `json:"required"`
	Options  []string          `json:"options,omitempty"`
	AIPrompt *QuestionAIPrompt `json:"aiPrompt,omitempty"`
}

// WorkflowConfig controls what happens after a response is submitted.
type WorkflowConfig struct {
	EmailNotifications bool     `json:"emailNotifications"`
	SlackNotifications bool     `json:"slackNotifications"`
	RequireApproval    bool     `json:"requireApproval"`
	ApproverEmail      string   `json:"approverEmail,omitempty" validate:"omitempty,email"`
	NotifyEmails       []string `json:"notifyEmails,omitempty" validate:"omitempty,dive,email"`
}

// Recipients returns the de-duplicated email recipients for submission notices.
func (w WorkflowConfig) Recipients() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(addr string) {
		if addr == "" || seen[addr] {
			return
		}
		seen[addr] = true
		out = append(out, addr)
	}
	add(w.ApproverEmail)
	for _, e := range w.NotifyEmails {
		add(e)
	}
	return out
}

type Form struct {
	ID             string         `json:"id"`
	Title          string         `json:"title" validate:"required"`
	Description    string         `json:"description"`
	CreatedBy      string         `json:"createdBy" validate:"required"`
	Questions      []Question     `json:"questions" validate:"dive"`
	WorkflowConfig WorkflowConfig `json:"workflowConfig"`
	IsPublished    bool           `json:"isPublished"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Question looks up a question by id.
func (f *Form) Question(id string) (*Question, bool) {
	for i := range f.Questions {
		if f.Questions[i].ID == id {
			return &f.Questions[i], true
		}
	}
	return nil, false
}

// FormPatch carries the fields of a partial form update. Nil means untouched.
type FormPatch struct {
	Title          *string         `json:"title,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Questions      *[]Question     `json:"questions,omitempty"`
	WorkflowConfig *WorkflowConfig `json:"workflowConfig,omitempty"`
	IsPublished    *bool           `json:"isPublished,omitempty"`
}

// Apply merges the patch into f.
func (p FormPatch) Apply(f *Form) {
	if p.Title != nil {
		f.Title = *p.Title
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Questions != nil {
		f.Questions = *p.Questions
	}
	if p.WorkflowConfig != nil {
		f.WorkflowConfig = *p.WorkflowConfig
	}
	if p.IsPublished != nil {
		f.IsPublished = *p.IsPublished
	}
}
