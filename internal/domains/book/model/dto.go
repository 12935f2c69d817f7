package model

import (
	"errors"

	inventoryModel "library-backend/internal/domains/inventory/model"
	"library-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

type CreateBookRequest struct {
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ReleaseDate string          `json:"release_date"`
	Genre       string          `json:"genre"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Author, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.ReleaseDate, validation.Required, validation.By(utils.ValidDate)),
		validation.Field(&r.Genre, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Price, validation.By(validPrice)),
		validation.Field(&r.Stock, validation.Min(0), validation.Max(inventoryModel.MaxStock)),
	)
}

// ToBook assumes Validate passed.
func (r CreateBookRequest) ToBook() *Book {
	released, _ := utils.ParseDate(r.ReleaseDate)
	return &Book{
		Title:       r.Title,
		Author:      r.Author,
		ReleaseDate: released,
		Genre:       r.Genre,
		Price:       r.Price,
		Stock:       r.Stock,
	}
}

// UpdateBookRequest is a partial update. Stock is deliberately absent: it
// moves through stock adjustments so every change is locked and audited.
type UpdateBookRequest struct {
	Title       *string          `json:"title"`
	Author      *string          `json:"author"`
	ReleaseDate *string          `json:"release_date"`
	Genre       *string          `json:"genre"`
	Price       *decimal.Decimal `json:"price"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.Author, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.ReleaseDate, validation.NilOrNotEmpty, validation.By(utils.ValidDate)),
		validation.Field(&r.Genre, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&r.Price, validation.By(validPrice)),
	)
}

// Apply merges the set fields into b.
func (r UpdateBookRequest) Apply(b *Book) {
	if r.Title != nil {
		b.Title = *r.Title
	}
	if r.Author != nil {
		b.Author = *r.Author
	}
	if r.ReleaseDate != nil {
		b.ReleaseDate, _ = utils.ParseDate(*r.ReleaseDate)
	}
	if r.Genre != nil {
		b.Genre = *r.Genre
	}
	if r.Price != nil {
		b.Price = *r.Price
	}
}

type ListBooksRequest struct {
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
	Search string `form:"search"`
	Genre  string `form:"genre"`
}

type ListBooksResponse struct {
	Books      []Book           `json:"books"`
	Pagination utils.Pagination `json:"pagination"`
}

func validPrice(value interface{}) error {
	var d decimal.Decimal
	switch v := value.(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return nil
		}
		d = *v
	default:
		return errors.New("must be a decimal number")
	}
	if !d.IsPositive() {
		return errors.New("must be greater than 0")
	}
	if d.GreaterThan(MaxPrice) {
		return errors.New("must be no greater than 1000000")
	}
	return nil
}
