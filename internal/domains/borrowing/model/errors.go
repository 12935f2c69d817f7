package model

import (
	"errors"
	"fmt"

	"library-backend/internal/shared/apperror"
)

var (
	// ErrBorrowingNotFound also covers records outside the caller's scope so
	// their existence is not revealed.
	ErrBorrowingNotFound = fmt.Errorf("borrowing %w", apperror.ErrNotFound)
	ErrClientNotFound    = fmt.Errorf("client %w", apperror.ErrNotFound)
	ErrBookNotFound      = fmt.Errorf("book %w", apperror.ErrNotFound)
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBorrowingNotFound)
}
