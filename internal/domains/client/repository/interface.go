package repository

import (
	"context"

	"library-backend/internal/domains/client/model"

	"github.com/google/uuid"
)

type RepositoryInterface interface {
	Create(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, search string, limit, offset int) ([]model.Client, int, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	SelectOptions(ctx context.Context) ([]model.SelectOption, error)
}
