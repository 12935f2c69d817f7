package model

import (
	"errors"
	"fmt"

	"library-backend/internal/shared/apperror"
)

var (
	ErrClientNotFound = fmt.Errorf("client %w", apperror.ErrNotFound)
	ErrClientInUse    = fmt.Errorf("%w: client has borrowings", apperror.ErrConflict)
	ErrClientExists   = fmt.Errorf("%w: client with this pesel or email already exists", apperror.ErrConflict)
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrClientNotFound)
}
