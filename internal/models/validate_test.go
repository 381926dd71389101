package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForm() *Form {
	return &Form{
		Title:     "Survey",
		CreatedBy: "u1",
		Questions: []Question{
			{ID: "color", Type: QuestionSingleChoice, Title: "Color", Required: true, Options: []string{"red", "blue"}},
			{ID: "pets", Type: QuestionMultiChoice, Title: "Pets", Options: []string{"cat", "dog"}},
			{ID: "name", Type: QuestionShortText, Title: "Name"},
			{ID: "story", Type: QuestionLongText, Title: "Story", AIPrompt: &QuestionAIPrompt{Prompt: "tidy"}},
			{ID: "age", Type: QuestionNumber, Title: "Age"},
			{ID: "born", Type: QuestionDate, Title: "Born"},
		},
	}
}

func TestValidateForm(t *testing.T) {
	require.NoError(t, ValidateForm(sampleForm()))

	cases := map[string]struct {
		mutate func(f *Form)
		msg    string
	}{
		"missing title":        {func(f *Form) { f.Title = "" }, "title is required"},
		"blank title":          {func(f *Form) { f.Title = " \t" }, "title is required"},
		"blank question title": {func(f *Form) { f.Questions[1].Title = "   " }, "questions[1].title is required"},
		"missing creator":      {func(f *Form) { f.CreatedBy = "" }, "createdBy is required"},
		"unknown type":         {func(f *Form) { f.Questions[2].Type = "slider" }, "questions[2].type must be one of"},
		"question without id":  {func(f *Form) { f.Questions[2].ID = "" }, "questions[2].id is required"},
		"duplicate id":         {func(f *Form) { f.Questions[1].ID = "color" }, "is duplicated"},
		"one option":           {func(f *Form) { f.Questions[0].Options = []string{"red", " "} }, "at least 2 entries"},
		"prompt on short text": {func(f *Form) { f.Questions[2].AIPrompt = &QuestionAIPrompt{} }, "only allowed on long-text"},
		"bad tone":             {func(f *Form) { f.Questions[3].AIPrompt.Tone = "angry" }, "tone must be one of"},
		"bad approver":         {func(f *Form) { f.WorkflowConfig.ApproverEmail = "nope" }, "approverEmail must be a valid email"},
		"bad notify email":     {func(f *Form) { f.WorkflowConfig.NotifyEmails = []string{"a@b.co", "x"} }, "notifyEmails[1]"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := sampleForm()
			tc.mutate(f)
			err := ValidateForm(f)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestValidateAnswers(t *testing.T) {
	f := sampleForm()

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"color": "red",
		"pets": ["cat", "dog"],
		"name": "Ann",
		"story": "once",
		"age": 31,
		"born": "1995-04-02"
	}`), &decoded))
	require.NoError(t, ValidateAnswers(f, decoded))
	require.NoError(t, ValidateAnswers(f, map[string]any{"color": "blue", "age": "42", "pets": []any{}}))

	cases := map[string]map[string]any{
		"required missing": {"name": "Ann"},
		"required blank":   {"color": "  "},
		"unknown key":      {"color": "red", "extra": "x"},
		"not an option":    {"color": "green"},
		"multi not list":   {"color": "red", "pets": "cat"},
		"multi bad item":   {"color": "red", "pets": []any{"cat", "fish"}},
		"text not string":  {"color": "red", "name": 7},
		"not a number":     {"color": "red", "age": "old"},
		"bad date":         {"color": "red", "born": "02/04/1995"},
	}
	for name, answers := range cases {
		t.Run(name, func(t *testing.T) {
			assert.True(t, IsValidation(ValidateAnswers(f, answers)))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("email", ""))
	assert.NoError(t, ValidateEmail("email", "a@example.com"))
	err := ValidateEmail("respondentEmail", "nope")
	assert.EqualError(t, err, "respondentEmail must be a valid email")
}

func TestFormPatchApply(t *testing.T) {
	f := sampleForm()
	title := "New"
	published := true
	FormPatch{Title: &title, IsPublished: &published}.Apply(f)
	assert.Equal(t, "New", f.Title)
	assert.True(t, f.IsPublished)
	assert.Len(t, f.Questions, 6)

	var p FormPatch
	require.NoError(t, json.Unmarshal([]byte(`{"description":""}`), &p))
	require.NotNil(t, p.Description)
	p.Apply(f)
	assert.Empty(t, f.Description)
	assert.Equal(t, "New", f.Title)
}

func TestRecipientsDeduplicated(t *testing.T) {
	w := WorkflowConfig{ApproverEmail: "a@x.io", NotifyEmails: []string{"b@x.io", "a@x.io", ""}}
	assert.Equal(t, []string{"a@x.io", "b@x.io"}, w.Recipients())
	assert.Nil(t, WorkflowConfig{}.Recipients())
}

func TestResponseStatusValid(t *testing.T) {
	assert.True(t, StatusRejected.Valid())
	assert.False(t, ResponseStatus("archived").Valid())
}
