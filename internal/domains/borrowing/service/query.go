package service

import (
	"context"
	"errors"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/borrowing/model"
	clientModel "library-backend/internal/domains/client/model"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/utils"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func (s *BorrowingService) List(ctx context.Context, actor access.Actor, req model.ListBorrowingsRequest) (*model.ListBorrowingsResponse, error) {
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	records, total, err := s.repo.List(ctx, access.ScopeFor(actor), req.Filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.BorrowingView{}
	}

	return &model.ListBorrowingsResponse{
		Records:    records,
		Pagination: utils.NewPagination(page, limit, total),
	}, nil
}

func (s *BorrowingService) Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*model.BorrowingView, error) {
	view, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.ScopeFor(actor).Authorize(view) {
		return nil, model.ErrBorrowingNotFound
	}
	return view, nil
}

// Details loads the borrowing and then its book, client and owner in parallel.
func (s *BorrowingService) Details(ctx context.Context, actor access.Actor, id uuid.UUID) (*model.BorrowingDetails, error) {
	view, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if s.lookups.Books == nil || s.lookups.Clients == nil || s.lookups.Users == nil {
		return nil, errors.New("borrowing details lookups are not configured")
	}

	var (
		book     *bookModel.Book
		client   *clientModel.Client
		username string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.lookups.Books.GetBook(gctx, view.BookID)
		book = b
		return err
	})
	g.Go(func() error {
		c, err := s.lookups.Clients.GetClient(gctx, view.ClientID)
		client = c
		return err
	})
	g.Go(func() error {
		u, err := s.lookups.Users.GetProfile(gctx, view.ActorID)
		if err != nil {
			return err
		}
		username = u.Username
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.BorrowingDetails{
		Borrowing: *view,
		Book:      book,
		Client:    client,
		Username:  username,
	}, nil
}
