package service

import (
	"context"

	"library-backend/internal/domains/book/model"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	ListBooks(ctx context.Context, req model.ListBooksRequest) (*model.ListBooksResponse, error)
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
	SelectOptions(ctx context.Context) ([]model.SelectOption, error)

	// RefreshCache reloads one book into the read cache, or evicts it if gone.
	RefreshCache(ctx context.Context, id uuid.UUID) error
}
