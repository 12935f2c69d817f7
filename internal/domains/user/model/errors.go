package model

import (
	"errors"
	"fmt"

	"library-backend/internal/shared/apperror"
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", apperror.ErrNotFound)
	ErrUserExists         = fmt.Errorf("%w: username or email already taken", apperror.ErrConflict)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", apperror.ErrUnauthorized)
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
