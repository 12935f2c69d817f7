package service

import (
	"context"

	"library-backend/internal/domains/client/model"

	"github.com/google/uuid"
)

type ServiceInterface interface {
	ListClients(ctx context.Context, req model.ListClientsRequest) (*model.ListClientsResponse, error)
	GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error)
	CreateClient(ctx context.Context, req model.CreateClientRequest) (*model.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, req model.UpdateClientRequest) (*model.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error
	SelectOptions(ctx context.Context) ([]model.SelectOption, error)
}
