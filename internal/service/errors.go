package service

import (
	"errors"
	"fmt"

	"github.com/falconilham/gym-nexus-sub000/internal/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("invalid credentials")
	ErrClassFull    = errors.New("class is full")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrForbidden, fmt.Sprintf(format, args...))
}

// mapRepoErr turns repository sentinels into service errors naming the entity.
func mapRepoErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %s not found", ErrNotFound, entity)
	case errors.Is(err, repository.ErrDuplicate):
		return fmt.Errorf("%w: %s already exists", ErrConflict, entity)
	case errors.Is(err, repository.ErrForeignKey):
		return fmt.Errorf("%w: %s references a missing record", ErrInvalidInput, entity)
	}
	return err
}
