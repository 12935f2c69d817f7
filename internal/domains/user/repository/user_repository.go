package repository

import (
	"context"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/shared/access"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role access.Role) error
}
