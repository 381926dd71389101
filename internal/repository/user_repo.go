package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/parisxmas/oxiforms/internal/models"
)

const userColumns = `id, email, first_name, last_name, profile_image_url, password_hash, role, created_at, updated_at`

type UserRepo struct {
	repo
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return nil, translateError(err)
	}
	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u *models.User) error {
	_, err := r.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, nullString(u.Email), u.FirstName, u.LastName, u.ProfileImageURL, u.PasswordHash, u.Role,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Upsert inserts the user or refreshes its profile fields. Credentials and
// role are never touched by an upsert of an existing row.
func (r *UserRepo) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	_, err := r.exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = COALESCE(excluded.email, users.email),
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			profile_image_url = excluded.profile_image_url,
			updated_at = excluded.updated_at`,
		u.ID, nullString(u.Email), u.FirstName, u.LastName, u.ProfileImageURL, u.PasswordHash, u.Role,
		u.CreatedAt.UTC(), u.UpdatedAt.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return r.FindByID(ctx, u.ID)
}

func scanUser(s rowScanner) (*models.User, error) {
	var (
		u     models.User
		email sql.NullString
	)
	err := s.Scan(&u.ID, &email, &u.FirstName, &u.LastName, &u.ProfileImageURL, &u.PasswordHash, &u.Role,
		timeColumn{t: &u.CreatedAt}, timeColumn{t: &u.UpdatedAt})
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	return &u, nil
}
