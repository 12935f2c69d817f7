package model

import (
	"errors"
	"fmt"

	"library-backend/internal/shared/apperror"

	"github.com/google/uuid"
)

var (
	ErrBookNotFound = fmt.Errorf("book %w", apperror.ErrNotFound)

	ErrZeroDelta = apperror.Validation(errors.New("stock adjustment delta cannot be zero"))

	ErrStockLimitExceeded = apperror.Validation(fmt.Errorf("stock cannot exceed %d", MaxStock))
)

// InsufficientStockError reports a refused reservation.
type InsufficientStockError struct {
	BookID    uuid.UUID
	Requested int
	Available int
}

func NewInsufficientStockError(bookID uuid.UUID, requested, available int) error {
	return &InsufficientStockError{BookID: bookID, Requested: requested, Available: available}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %s: requested %d, available %d", e.BookID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error { return apperror.ErrInsufficientStock }

func (e *InsufficientStockError) Details() map[string]interface{} {
	return map[string]interface{}{
		"book_id":   e.BookID,
		"requested": e.Requested,
		"available": e.Available,
	}
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrBookNotFound)
}

func IsInsufficientStockError(err error) bool {
	return errors.Is(err, apperror.ErrInsufficientStock)
}

func IsValidationError(err error) bool {
	return errors.Is(err, apperror.ErrValidation)
}
