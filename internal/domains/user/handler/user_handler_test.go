package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	args := m.Called(ctx, req)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	args := m.Called(ctx, req)
	r, _ := args.Get(0).(*model.LoginResponse)
	return r, args.Error(1)
}

func (m *mockService) GetProfile(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockService) UpdateRole(ctx context.Context, id uuid.UUID, req model.UpdateRoleRequest) (*model.User, error) {
	args := m.Called(ctx, id, req)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *mockService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	return m.Called(ctx, username, email, password).Error(0)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockService)
	r := gin.New()
	r.POST("/auth/login", NewUserHandler(svc).Login)

	svc.On("Login", mock.Anything, model.LoginRequest{Username: "a", Password: "b"}).
		Return(nil, model.ErrInvalidCredentials)

	body, _ := json.Marshal(map[string]string{"username": "a", "password": "b"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfile_UsesActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(mockService)
	actor := access.Actor{ID: uuid.New(), Role: access.RoleUser}

	r := gin.New()
	r.GET("/users/me", func(c *gin.Context) {
		middleware.SetActor(c, actor)
		c.Next()
	}, NewUserHandler(svc).GetProfile)

	svc.On("GetProfile", mock.Anything, actor.ID).Return(&model.User{ID: actor.ID, Username: "reader"}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"reader"`)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestGetProfile_NoActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users/me", NewUserHandler(new(mockService)).GetProfile)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/users/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
