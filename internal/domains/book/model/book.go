package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var MaxPrice = decimal.NewFromInt(1_000_000)

// Book is a catalog entry. Stock is only changed through the inventory ledger
// once the book exists.
type Book struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ReleaseDate time.Time       `json:"release_date"`
	Genre       string          `json:"genre"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type SelectOption struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	Stock  int       `json:"stock"`
}

// ListFilter narrows the catalog list.
type ListFilter struct {
	Search string
	Genre  string
}
