package repository

import (
	"context"
	"fmt"

	"github.com/parisxmas/oxiforms/internal/models"
)

const formColumns = `id, title, description, created_by, questions, workflow_config, is_published, created_at, updated_at`

type FormRepo struct {
	repo
}

func (r *FormRepo) Create(ctx context.Context, f *models.Form) error {
	questions, err := toJSON(orEmptyQuestions(f.Questions))
	if err != nil {
		return err
	}
	workflow, err := toJSON(f.WorkflowConfig)
	if err != nil {
		return err
	}
	_, err = r.exec(ctx,
		`INSERT INTO forms (`+formColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Title, f.Description, f.CreatedBy, questions, workflow, f.IsPublished, f.CreatedAt.UTC(), f.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert form: %w", err)
	}
	return nil
}

func (r *FormRepo) FindByID(ctx context.Context, id string) (*models.Form, error) {
	row := r.queryRow(ctx, `SELECT `+formColumns+` FROM forms WHERE id = ?`, id)
	f, err := scanForm(row)
	if err != nil {
		return nil, translateError(err)
	}
	return f, nil
}

// FindByCreator lists a user's forms, newest first.
func (r *FormRepo) FindByCreator(ctx context.Context, userID string) ([]models.Form, error) {
	rows, err := r.query(ctx,
		`SELECT `+formColumns+` FROM forms WHERE created_by = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	defer rows.Close()

	forms := make([]models.Form, 0)
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("scan form: %w", err)
		}
		forms = append(forms, *f)
	}
	return forms, rows.Err()
}

// Update replaces every mutable column. Last writer wins.
func (r *FormRepo) Update(ctx context.Context, f *models.Form) error {
	questions, err := toJSON(orEmptyQuestions(f.Questions))
	if err != nil {
		return err
	}
	workflow, err := toJSON(f.WorkflowConfig)
	if err != nil {
		return err
	}
	res, err := r.exec(ctx,
		`UPDATE forms SET title = ?, description = ?, questions = ?, workflow_config = ?, is_published = ?, updated_at = ? WHERE id = ?`,
		f.Title, f.Description, questions, workflow, f.IsPublished, f.UpdatedAt.UTC(), f.ID,
	)
	if err != nil {
		return fmt.Errorf("update form: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the form row and reports how many rows went away.
func (r *FormRepo) Delete(ctx context.Context, id string) (int64, error) {
	res, err := r.exec(ctx, `DELETE FROM forms WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete form: %w", err)
	}
	return res.RowsAffected()
}

func scanForm(s rowScanner) (*models.Form, error) {
	var f models.Form
	err := s.Scan(
		&f.ID, &f.Title, &f.Description, &f.CreatedBy,
		jsonColumn{&f.Questions}, jsonColumn{&f.WorkflowConfig},
		&f.IsPublished,
		timeColumn{t: &f.CreatedAt}, timeColumn{t: &f.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	if f.Questions == nil {
		f.Questions = []models.Question{}
	}
	return &f, nil
}

func orEmptyQuestions(q []models.Question) []models.Question {
	if q == nil {
		return []models.Question{}
	}
	return q
}
