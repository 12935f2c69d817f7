package repository

import (
	"context"

	"library-backend/internal/domains/book/model"

	"github.com/google/uuid"
)

type RepositoryInterface interface {
	Create(ctx context.Context, book *model.Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	List(ctx context.Context, filter model.ListFilter, limit, offset int) ([]model.Book, int, error)
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id uuid.UUID) error
	SelectOptions(ctx context.Context) ([]model.SelectOption, error)
}
