package model

import (
	"library-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ========================================
// WRITE DTOs
// ========================================

type CreateBorrowingRequest struct {
	ClientID   uuid.UUID `json:"client_id"`
	BookID     uuid.UUID `json:"book_id"`
	Quantity   int       `json:"quantity"`
	BorrowDate string    `json:"borrow_date"`
}

func (r CreateBorrowingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ClientID, validation.By(requiredID)),
		validation.Field(&r.BookID, validation.By(requiredID)),
		validation.Field(&r.Quantity,
			validation.Required.Error(quantityMessage),
			validation.Min(MinQuantity).Error(quantityMessage),
			validation.Max(MaxQuantity).Error(quantityMessage),
		),
		validation.Field(&r.BorrowDate, validation.Required, validation.By(utils.ValidDate)),
	)
}

// ToBorrowing assumes Validate passed.
func (r CreateBorrowingRequest) ToBorrowing(actorID uuid.UUID) *Borrowing {
	borrowDate, _ := utils.ParseDate(r.BorrowDate)
	return &Borrowing{
		ID:         uuid.New(),
		ClientID:   r.ClientID,
		BookID:     r.BookID,
		ActorID:    actorID,
		BorrowDate: borrowDate,
		Quantity:   r.Quantity,
		Status:     StatusBorrowed,
	}
}

// UpdateBorrowingRequest is a partial update; nil fields keep their value.
type UpdateBorrowingRequest struct {
	ClientID   *uuid.UUID `json:"client_id"`
	BookID     *uuid.UUID `json:"book_id"`
	Quantity   *int       `json:"quantity"`
	BorrowDate *string    `json:"borrow_date"`
	Status     *Status    `json:"status"`
}

func (r UpdateBorrowingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ClientID, validation.By(requiredID)),
		validation.Field(&r.BookID, validation.By(requiredID)),
		validation.Field(&r.Quantity,
			validation.NilOrNotEmpty.Error(quantityMessage),
			validation.Min(MinQuantity).Error(quantityMessage),
			validation.Max(MaxQuantity).Error(quantityMessage),
		),
		validation.Field(&r.BorrowDate, validation.NilOrNotEmpty, validation.By(utils.ValidDate)),
		validation.Field(&r.Status, validation.By(validStatus)),
	)
}

// Apply returns a copy of b with the set fields merged in.
func (r UpdateBorrowingRequest) Apply(b Borrowing) Borrowing {
	if r.ClientID != nil {
		b.ClientID = *r.ClientID
	}
	if r.BookID != nil {
		b.BookID = *r.BookID
	}
	if r.Quantity != nil {
		b.Quantity = *r.Quantity
	}
	if r.BorrowDate != nil {
		if d, err := utils.ParseDate(*r.BorrowDate); err == nil {
			b.BorrowDate = d
		}
	}
	if r.Status != nil {
		b.Status = *r.Status
	}
	return b
}

// ========================================
// READ DTOs
// ========================================

type ListBorrowingsRequest struct {
	Filter ListFilter
	Page   int
	Limit  int
}

// ListBorrowingsQuery is the query string form of ListBorrowingsRequest.
type ListBorrowingsQuery struct {
	ClientID string `form:"client_id"`
	BookID   string `form:"book_id"`
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
}

func (q ListBorrowingsQuery) ToRequest() (ListBorrowingsRequest, error) {
	clientID, err := utils.ParseOptionalUUID(q.ClientID)
	if err != nil {
		return ListBorrowingsRequest{}, validation.Errors{"client_id": err}
	}
	bookID, err := utils.ParseOptionalUUID(q.BookID)
	if err != nil {
		return ListBorrowingsRequest{}, validation.Errors{"book_id": err}
	}
	return ListBorrowingsRequest{
		Filter: ListFilter{ClientID: clientID, BookID: bookID},
		Page:   q.Page,
		Limit:  q.Limit,
	}, nil
}

type ListBorrowingsResponse struct {
	Records    []BorrowingView  `json:"records"`
	Pagination utils.Pagination `json:"pagination"`
}

