package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/parisxmas/oxiforms/internal/models"
)

const responseColumns = `id, form_id, respondent_email, respondent_name, responses, ai_enhanced_responses, status, submitted_at, reviewed_at, reviewed_by, version`

// maxCASAttempts bounds the optimistic retry loop in SetEnhancedAnswer.
const maxCASAttempts = 8

type ResponseRepo struct {
	repo
}

func (r *ResponseRepo) Create(ctx context.Context, resp *models.FormResponse) error {
	answers, err := toJSON(orEmptyAnswers(resp.Responses))
	if err != nil {
		return err
	}
	enhanced, err := toJSON(orEmptyEnhanced(resp.AIEnhancedResponses))
	if err != nil {
		return err
	}
	if resp.Version == 0 {
		resp.Version = 1
	}
	_, err = r.exec(ctx,
		`INSERT INTO form_responses (`+responseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, resp.FormID, resp.RespondentEmail, resp.RespondentName, answers, enhanced,
		string(resp.Status), resp.SubmittedAt.UTC(), nullTime(resp.ReviewedAt), resp.ReviewedBy, resp.Version,
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (r *ResponseRepo) FindByID(ctx context.Context, id string) (*models.FormResponse, error) {
	row := r.queryRow(ctx, `SELECT `+responseColumns+` FROM form_responses WHERE id = ?`, id)
	resp, err := scanResponse(row)
	if err != nil {
		return nil, translateError(err)
	}
	return resp, nil
}

// FindByFormID lists a form's responses, newest first.
func (r *ResponseRepo) FindByFormID(ctx context.Context, formID string) ([]models.FormResponse, error) {
	rows, err := r.query(ctx,
		`SELECT `+responseColumns+` FROM form_responses WHERE form_id = ? ORDER BY submitted_at DESC, id DESC`, formID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	out := make([]models.FormResponse, 0)
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, *resp)
	}
	return out, rows.Err()
}

// UpdateStatus sets status and review metadata without checking the current status.
func (r *ResponseRepo) UpdateStatus(ctx context.Context, id string, status models.ResponseStatus, reviewedBy string, at time.Time) error {
	res, err := r.exec(ctx,
		`UPDATE form_responses SET status = ?, reviewed_by = ?, reviewed_at = ?, version = version + 1 WHERE id = ?`,
		string(status), reviewedBy, at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update response status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnhancedAnswer merges one enhanced answer into the response. The merge
// is a read-modify-write guarded by the version column; a lost race is
// retried against the fresh row.
func (r *ResponseRepo) SetEnhancedAnswer(ctx context.Context, id, questionID, text string) (*models.FormResponse, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		merged := make(map[string]string, len(current.AIEnhancedResponses)+1)
		for k, v := range current.AIEnhancedResponses {
			merged[k] = v
		}
		merged[questionID] = text
		encoded, err := toJSON(merged)
		if err != nil {
			return nil, err
		}
		res, err := r.exec(ctx,
			`UPDATE form_responses SET ai_enhanced_responses = ?, version = version + 1 WHERE id = ? AND version = ?`,
			encoded, id, current.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("update enhanced answers: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 1 {
			current.AIEnhancedResponses = merged
			current.Version++
			return current, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, ErrConflict
}

func (r *ResponseRepo) DeleteByFormID(ctx context.Context, formID string) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM form_responses WHERE form_id = ?`, formID)
	if err != nil {
		return 0, fmt.Errorf("delete responses: %w", err)
	}
	return res.RowsAffected()
}

func (r *ResponseRepo) CountByFormID(ctx context.Context, formID string) (int, error) {
	var n int
	if err := r.queryRow(ctx, `SELECT COUNT(*) FROM form_responses WHERE form_id = ?`, formID).Scan(&n); err != nil {
		return 0, translateError(err)
	}
	return n, nil
}

// CountByStatus returns the number of responses per status for a form.
// Statuses with no responses are absent from the map.
func (r *ResponseRepo) CountByStatus(ctx context.Context, formID string) (map[models.ResponseStatus]int, error) {
	rows, err := r.query(ctx, `SELECT status, COUNT(*) FROM form_responses WHERE form_id = ? GROUP BY status`, formID)
	if err != nil {
		return nil, fmt.Errorf("count responses by status: %w", err)
	}
	defer rows.Close()

	out := make(map[models.ResponseStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[models.ResponseStatus(status)] = n
	}
	return out, rows.Err()
}

func scanResponse(s rowScanner) (*models.FormResponse, error) {
	var (
		resp       models.FormResponse
		status     string
		reviewedAt time.Time
		reviewed   bool
		reviewedBy sql.NullString
	)
	err := s.Scan(
		&resp.ID, &resp.FormID, &resp.RespondentEmail, &resp.RespondentName,
		jsonColumn{&resp.Responses}, jsonColumn{&resp.AIEnhancedResponses},
		&status, timeColumn{t: &resp.SubmittedAt},
		timeColumn{t: &reviewedAt, valid: &reviewed}, &reviewedBy, &resp.Version,
	)
	if err != nil {
		return nil, err
	}
	resp.Status = models.ResponseStatus(status)
	if reviewed {
		resp.ReviewedAt = &reviewedAt
	}
	resp.ReviewedBy = reviewedBy.String
	resp.Responses = orEmptyAnswers(resp.Responses)
	resp.AIEnhancedResponses = orEmptyEnhanced(resp.AIEnhancedResponses)
	return &resp, nil
}

func orEmptyAnswers(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func orEmptyEnhanced(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
