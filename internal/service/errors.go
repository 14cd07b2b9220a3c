package service

import (
	"errors"

	"gorm.io/gorm"
)

// Error taxonomy shared by all services. Handlers and the ws gateway map
// these onto HTTP statuses and error frames.
var (
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrPersistence  = errors.New("persistence unavailable")
)

// translate maps repository-level errors into the service taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
