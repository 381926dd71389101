// Package notify delivers submission notifications by email and Slack.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/parisxmas/oxiforms/internal/models"
)

// Notifier delivers one submission event.
type Notifier interface {
	Notify(ctx context.Context, ev SubmissionEvent) error
}

// Answer is a question title paired with the rendered answer.
type Answer struct {
	Question string
	Value    string
}

// SubmissionEvent is the notification payload for a new response.
type SubmissionEvent struct {
	FormID          string
	FormTitle       string
	ResponseID      string
	RespondentEmail string
	RespondentName  string
	Status          models.ResponseStatus
	SubmittedAt     time.Time
	Answers         []Answer

	Recipients       []string
	EmailEnabled     bool
	SlackEnabled     bool
	RequiresApproval bool
}

// NewSubmissionEvent snapshots the form and response so delivery never
// touches shared state after the request returns.
func NewSubmissionEvent(f *models.Form, r *models.FormResponse) SubmissionEvent {
	ev := SubmissionEvent{
		FormID:           f.ID,
		FormTitle:        f.Title,
		ResponseID:       r.ID,
		RespondentEmail:  r.RespondentEmail,
		RespondentName:   r.RespondentName,
		Status:           r.Status,
		SubmittedAt:      r.SubmittedAt,
		Recipients:       f.WorkflowConfig.Recipients(),
		EmailEnabled:     f.WorkflowConfig.EmailNotifications,
		SlackEnabled:     f.WorkflowConfig.SlackNotifications,
		RequiresApproval: f.WorkflowConfig.RequireApproval,
	}
	for _, q := range f.Questions {
		v, ok := r.Responses[q.ID]
		if !ok {
			continue
		}
		ev.Answers = append(ev.Answers, Answer{Question: q.Title, Value: formatValue(v)})
	}
	return ev
}

// Wants reports whether any channel should fire for the event.
func (ev SubmissionEvent) Wants() bool {
	return (ev.EmailEnabled && len(ev.Recipients) > 0) || ev.SlackEnabled
}

func (ev SubmissionEvent) respondent() string {
	switch {
	case ev.RespondentName != "" && ev.RespondentEmail != "":
		return fmt.Sprintf("%s <%s>", ev.RespondentName, ev.RespondentEmail)
	case ev.RespondentName != "":
		return ev.RespondentName
	case ev.RespondentEmail != "":
		return ev.RespondentEmail
	}
	return "anonymous"
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, formatValue(p))
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+formatValue(t[k]))
		}
		return strings.Join(parts, ", ")
	}
	return fmt.Sprint(v)
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, ev SubmissionEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
