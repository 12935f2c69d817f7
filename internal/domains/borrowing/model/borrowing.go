package model

import (
	"errors"
	"time"

	bookModel "library-backend/internal/domains/book/model"
	clientModel "library-backend/internal/domains/client/model"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	MinQuantity = 1
	MaxQuantity = 1000
)

type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
)

func (s Status) Valid() bool {
	return s == StatusBorrowed || s == StatusReturned
}

// Borrowing is a client holding Quantity copies of a book. ActorID is the
// user who recorded it and owns it for access checks.
type Borrowing struct {
	ID         uuid.UUID `json:"id"`
	ClientID   uuid.UUID `json:"client_id"`
	BookID     uuid.UUID `json:"book_id"`
	ActorID    uuid.UUID `json:"actor_id"`
	BorrowDate time.Time `json:"borrow_date"`
	Quantity   int       `json:"quantity"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (b Borrowing) OwnerID() uuid.UUID { return b.ActorID }

// Reserved is the part of Quantity currently taken out of the book's stock.
func (b Borrowing) Reserved() int {
	if b.Status == StatusBorrowed {
		return b.Quantity
	}
	return 0
}

// Validate checks a fully merged record before it is persisted.
func (b Borrowing) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.ClientID, validation.By(requiredID)),
		validation.Field(&b.BookID, validation.By(requiredID)),
		validation.Field(&b.Quantity,
			validation.Required.Error(quantityMessage),
			validation.Min(MinQuantity).Error(quantityMessage),
			validation.Max(MaxQuantity).Error(quantityMessage),
		),
		validation.Field(&b.Status, validation.By(validStatus)),
		validation.Field(&b.BorrowDate, validation.Required),
	)
}

// BorrowingView is a borrowing joined with the display fields of the rows it
// references.
type BorrowingView struct {
	Borrowing
	ClientName string `json:"client_name"`
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	Username   string `json:"username"`
}

// BorrowingDetails is the full picture behind one borrowing.
type BorrowingDetails struct {
	Borrowing BorrowingView       `json:"borrowing"`
	Book      *bookModel.Book     `json:"book"`
	Client    *clientModel.Client `json:"client"`
	Username  string              `json:"username"`
}

// ListFilter narrows a borrowing list beyond the caller's scope.
type ListFilter struct {
	ClientID *uuid.UUID
	BookID   *uuid.UUID
}

const quantityMessage = "quantity must be between 1 and 1000"

func requiredID(value interface{}) error {
	switch v := value.(type) {
	case uuid.UUID:
		if v == uuid.Nil {
			return errors.New("is required")
		}
	case *uuid.UUID:
		if v != nil && *v == uuid.Nil {
			return errors.New("must be a valid id")
		}
	}
	return nil
}

func validStatus(value interface{}) error {
	var s Status
	switch v := value.(type) {
	case Status:
		s = v
	case *Status:
		if v == nil {
			return nil
		}
		s = *v
	}
	if !s.Valid() {
		return errors.New("status must be borrowed or returned")
	}
	return nil
}
