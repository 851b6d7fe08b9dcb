package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/weiawesome/wes-io-live/support-service/internal/repository"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("not a participant of this thread")
	ErrForbidden       = errors.New("operation not permitted")
	ErrAlreadyAssigned = errors.New("thread already assigned")
	ErrThreadNotFound  = errors.New("thread not found")
)

// mapRepoErr translates repository sentinels into service sentinels.
func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrThreadNotFound):
		return ErrThreadNotFound
	case errors.Is(err, repository.ErrAlreadyAssigned):
		return ErrAlreadyAssigned
	default:
		return err
	}
}

func validThreadID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
