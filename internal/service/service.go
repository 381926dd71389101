package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parisxmas/oxiforms/internal/repository"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrFormNotFound       = fmt.Errorf("form %w", ErrNotFound)
	ErrResponseNotFound   = fmt.Errorf("response %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrPromptNotFound     = fmt.Errorf("ai prompt %w", ErrNotFound)
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrForbidden          = errors.New("forbidden")
)

// orNotFound swaps a repository miss for the caller-facing sentinel.
func orNotFound(err, notFound error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}

// clock and id generation are swapped out in tests.
type base struct {
	now   func() time.Time
	newID func() string
}

func newBase() base {
	return base{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}
