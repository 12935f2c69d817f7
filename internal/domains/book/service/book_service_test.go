package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, b *model.Book) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil {
		b.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*model.Book)
	return b, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, f model.ListFilter, limit, offset int) ([]model.Book, int, error) {
	args := m.Called(ctx, f, limit, offset)
	books, _ := args.Get(0).([]model.Book)
	return books, args.Int(1), args.Error(2)
}

func (m *mockRepo) Update(ctx context.Context, b *model.Book) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) SelectOptions(ctx context.Context) ([]model.SelectOption, error) {
	args := m.Called(ctx)
	opts, _ := args.Get(0).([]model.SelectOption)
	return opts, args.Error(1)
}

// mapCache is a JSON round-tripping cache.Cache used to observe cache traffic.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *mapCache) Ping(context.Context) error { return nil }

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func sampleBook() *model.Book {
	return &model.Book{
		ID:          uuid.New(),
		Title:       "Solaris",
		Author:      "Stanislaw Lem",
		ReleaseDate: time.Date(1961, 1, 1, 0, 0, 0, 0, time.UTC),
		Genre:       "Science Fiction",
		Price:       decimal.RequireFromString("39.90"),
		Stock:       4,
	}
}

func TestGetBook_CachesAfterFirstRead(t *testing.T) {
	repo := new(mockRepo)
	c := newMapCache()
	svc := NewService(repo, c, time.Minute)
	book := sampleBook()

	repo.On("GetByID", mock.Anything, book.ID).Return(book, nil).Once()

	got, err := svc.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, got.Title)

	got, err = svc.GetBook(context.Background(), book.ID)
	require.NoError(t, err)
	assert.True(t, book.Price.Equal(got.Price))

	repo.AssertExpectations(t)
}

func TestGetBook_NotFound(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, 0)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, model.ErrBookNotFound)

	_, err := svc.GetBook(context.Background(), id)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCreateBook_Validation(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, 0)

	_, err := svc.CreateBook(context.Background(), model.CreateBookRequest{
		Title:       "",
		Author:      "Lem",
		ReleaseDate: "1961-01-01",
		Genre:       "SF",
		Price:       decimal.NewFromInt(0),
	})

	assert.ErrorIs(t, err, apperror.ErrValidation)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBook(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, 0)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Book) bool {
		return b.Title == "Solaris" && b.Stock == 3 && b.ReleaseDate.Year() == 1961
	})).Return(nil)

	book, err := svc.CreateBook(context.Background(), model.CreateBookRequest{
		Title:       "Solaris",
		Author:      "Lem",
		ReleaseDate: "1961-06-01",
		Genre:       "SF",
		Price:       decimal.RequireFromString("12.50"),
		Stock:       3,
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, book.ID)
	repo.AssertExpectations(t)
}

func TestUpdateBook_EvictsCache(t *testing.T) {
	repo := new(mockRepo)
	c := newMapCache()
	svc := NewService(repo, c, time.Minute)
	book := sampleBook()

	require.NoError(t, c.Set(context.Background(), bookCacheKey(book.ID), book, time.Minute))

	title := "Solaris (2nd ed.)"
	repo.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(b *model.Book) bool { return b.Title == title })).Return(nil)

	updated, err := svc.UpdateBook(context.Background(), book.ID, model.UpdateBookRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.False(t, c.has(bookCacheKey(book.ID)))
}

func TestDeleteBook_InUse(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, newMapCache(), time.Minute)
	id := uuid.New()

	repo.On("Delete", mock.Anything, id).Return(model.ErrBookInUse)

	err := svc.DeleteBook(context.Background(), id)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestListBooks_Pagination(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, 0)

	repo.On("List", mock.Anything, model.ListFilter{Genre: "SF"}, 2, 2).
		Return([]model.Book{*sampleBook()}, 3, nil)

	resp, err := svc.ListBooks(context.Background(), model.ListBooksRequest{Page: 2, Limit: 2, Genre: "SF"})
	require.NoError(t, err)
	assert.Len(t, resp.Books, 1)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}

func TestRefreshCache(t *testing.T) {
	repo := new(mockRepo)
	c := newMapCache()
	svc := NewService(repo, c, time.Minute)
	book := sampleBook()
	gone := uuid.New()

	repo.On("GetByID", mock.Anything, book.ID).Return(book, nil)
	repo.On("GetByID", mock.Anything, gone).Return(nil, model.ErrBookNotFound)
	require.NoError(t, c.Set(context.Background(), bookCacheKey(gone), book, time.Minute))

	require.NoError(t, svc.RefreshCache(context.Background(), book.ID))
	assert.True(t, c.has(bookCacheKey(book.ID)))

	require.NoError(t, svc.RefreshCache(context.Background(), gone))
	assert.False(t, c.has(bookCacheKey(gone)))
}

func TestSelectOptions_NeverNil(t *testing.T) {
	repo := new(mockRepo)
	svc := NewService(repo, nil, 0)
	repo.On("SelectOptions", mock.Anything).Return(nil, nil)

	opts, err := svc.SelectOptions(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, opts)
}
