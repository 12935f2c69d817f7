package model

import (
	"errors"
	"fmt"

	"library-backend/internal/shared/apperror"
)

var (
	ErrBookNotFound = fmt.Errorf("book %w", apperror.ErrNotFound)
	ErrBookInUse    = fmt.Errorf("%w: book is referenced by borrowings", apperror.ErrConflict)
)

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}
