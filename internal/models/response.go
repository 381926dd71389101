package models

import "time"

type ResponseStatus string

const (
	StatusSubmitted ResponseStatus = "submitted"
	StatusApproved  ResponseStatus = "approved"
	StatusRejected  ResponseStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ResponseStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// FormResponse is one respondent's answers to a form.
type FormResponse struct {
	ID                  string            `json:"id"`
	FormID              string            `json:"formId"`
	RespondentEmail     string            `json:"respondentEmail,omitempty"`
	RespondentName      string            `json:"respondentName,omitempty"`
	Responses           map[string]any    `json:"responses"`
	AIEnhancedResponses map[string]string `json:"aiEnhancedResponses"`
	Status              ResponseStatus    `json:"status"`
	SubmittedAt         time.Time         `json:"submittedAt"`
	ReviewedAt          *time.Time        `json:"reviewedAt,omitempty"`
	ReviewedBy          string            `json:"reviewedBy,omitempty"`
	Version             int64             `json:"version"`
}
