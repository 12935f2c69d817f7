package service

import (
	"context"
	"errors"
	"time"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"

	"github.com/google/uuid"
)

const defaultBookTTL = 5 * time.Minute

type BookService struct {
	repo     repository.RepositoryInterface
	cache    cache.Cache
	cacheTTL time.Duration
}

// NewService wires the catalog service. cache may be nil.
func NewService(repo repository.RepositoryInterface, c cache.Cache, ttl time.Duration) *BookService {
	if ttl <= 0 {
		ttl = defaultBookTTL
	}
	return &BookService{repo: repo, cache: c, cacheTTL: ttl}
}

func bookCacheKey(id uuid.UUID) string {
	return "book:" + id.String()
}

func (s *BookService) ListBooks(ctx context.Context, req model.ListBooksRequest) (*model.ListBooksResponse, error) {
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	books, total, err := s.repo.List(ctx, model.ListFilter{Search: req.Search, Genre: req.Genre}, limit, offset)
	if err != nil {
		return nil, err
	}

	return &model.ListBooksResponse{
		Books:      books,
		Pagination: utils.NewPagination(page, limit, total),
	}, nil
}

func (s *BookService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	if s.cache != nil {
		var cached model.Book
		found, err := s.cache.Get(ctx, bookCacheKey(id), &cached)
		if err != nil {
			logger.Warn("Book cache read failed", map[string]interface{}{"book_id": id.String(), "error": err.Error()})
		}
		if found {
			return &cached, nil
		}
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.store(ctx, book)
	return book, nil
}

func (s *BookService) CreateBook(ctx context.Context, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	book := req.ToBook()
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	logger.Info("Book created", map[string]interface{}{"book_id": book.ID.String(), "stock": book.Stock})
	return book, nil
}

func (s *BookService) UpdateBook(ctx context.Context, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err)
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(book)
	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	s.evict(ctx, id)
	return book, nil
}

func (s *BookService) DeleteBook(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.evict(ctx, id)
	logger.Info("Book deleted", map[string]interface{}{"book_id": id.String()})
	return nil
}

func (s *BookService) SelectOptions(ctx context.Context) ([]model.SelectOption, error) {
	options, err := s.repo.SelectOptions(ctx)
	if err != nil {
		return nil, err
	}
	if options == nil {
		options = []model.SelectOption{}
	}
	return options, nil
}

func (s *BookService) RefreshCache(ctx context.Context, id uuid.UUID) error {
	if s.cache == nil {
		return nil
	}

	book, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, model.ErrBookNotFound) {
		return s.cache.Delete(ctx, bookCacheKey(id))
	}
	if err != nil {
		return err
	}

	return s.cache.Set(ctx, bookCacheKey(id), book, s.cacheTTL)
}

func (s *BookService) store(ctx context.Context, book *model.Book) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, bookCacheKey(book.ID), book, s.cacheTTL); err != nil {
		logger.Warn("Book cache write failed", map[string]interface{}{"book_id": book.ID.String(), "error": err.Error()})
	}
}

func (s *BookService) evict(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, bookCacheKey(id)); err != nil {
		logger.Warn("Book cache evict failed", map[string]interface{}{"book_id": id.String(), "error": err.Error()})
	}
}
