package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/repository"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/apperror"
	"library-backend/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer is satisfied by *jwt.Manager.
type TokenIssuer interface {
	GenerateAccessToken(userID, username, role string) (string, time.Time, error)
}

type Service interface {
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, req model.UpdateRoleRequest) (*model.User, error)
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

type userService struct {
	repo   repository.Repository
	tokens TokenIssuer
	cost   int
}

func NewService(repo repository.Repository, tokens TokenIssuer) Service {
	return &userService{repo: repo, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *userService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	u, err := s.newUser(req.Username, req.Email, req.Password, access.RoleUser)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	logger.Info("User registered", map[string]interface{}{"user_id": u.ID.String(), "username": u.Username})
	return u, nil
}

func (s *userService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	u, err := s.repo.GetByUsername(ctx, req.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// constant-time comparison
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("Failed login attempt", map[string]interface{}{"username": req.Username})
		return nil, model.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(u.ID.String(), u.Username, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        *u,
	}, nil
}

func (s *userService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, id uuid.UUID, req model.UpdateRoleRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	role := access.Role(req.Role)
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, err
	}

	logger.Info("User role updated", map[string]interface{}{"user_id": id.String(), "role": req.Role})
	return s.repo.GetByID(ctx, id)
}

// EnsureAdmin creates the bootstrap admin account unless the username is
// already taken. An existing account keeps its password and role.
func (s *userService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" {
		return nil
	}

	_, err := s.repo.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	req := model.RegisterRequest{Username: username, Email: email, Password: password}
	if err := req.Validate(); err != nil {
		return apperror.Validation(err)
	}

	u, err := s.newUser(username, email, password, access.RoleAdmin)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, u); err != nil && !errors.Is(err, model.ErrUserExists) {
		return err
	}

	logger.Info("Bootstrap admin created", map[string]interface{}{"username": username})
	return nil
}

func (s *userService) newUser(username, email, password string, role access.Role) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}
