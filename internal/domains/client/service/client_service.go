package service

import (
	"context"

	"library-backend/internal/domains/client/model"
	"library-backend/internal/domains/client/repository"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/logger"

	"github.com/google/uuid"
)

type ClientService struct {
	repo repository.RepositoryInterface
}

func NewService(repo repository.RepositoryInterface) *ClientService {
	return &ClientService{repo: repo}
}

func (s *ClientService) ListClients(ctx context.Context, req model.ListClientsRequest) (*model.ListClientsResponse, error) {
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	clients, total, err := s.repo.List(ctx, req.Search, limit, offset)
	if err != nil {
		return nil, err
	}

	return &model.ListClientsResponse{
		Clients:    clients,
		Pagination: utils.NewPagination(page, limit, total),
	}, nil
}

func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ClientService) CreateClient(ctx context.Context, req model.CreateClientRequest) (*model.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	client := req.ToClient()
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	logger.Info("Client created", map[string]interface{}{"client_id": client.ID.String()})
	return client, nil
}

func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req model.UpdateClientRequest) (*model.Client, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(client)
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	logger.Info("Client deleted", map[string]interface{}{"client_id": id.String()})
	return nil
}

func (s *ClientService) SelectOptions(ctx context.Context) ([]model.SelectOption, error) {
	options, err := s.repo.SelectOptions(ctx)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []model.SelectOption{}
	}
	return options, nil
}
