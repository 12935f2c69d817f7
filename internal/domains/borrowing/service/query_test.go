package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/domains/borrowing/repository"
	clientModel "library-backend/internal/domains/client/model"
	inventoryRepo "library-backend/internal/domains/inventory/repository"
	inventoryService "library-backend/internal/domains/inventory/service"
	userModel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/memdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeBooks map[uuid.UUID]*bookModel.Book

func (f fakeBooks) GetBook(_ context.Context, id uuid.UUID) (*bookModel.Book, error) {
	if b, ok := f[id]; ok {
		return b, nil
	}
	return nil, bookModel.ErrBookNotFound
}

type fakeClients map[uuid.UUID]*clientModel.Client

func (f fakeClients) GetClient(_ context.Context, id uuid.UUID) (*clientModel.Client, error) {
	if c, ok := f[id]; ok {
		return c, nil
	}
	return nil, clientModel.ErrClientNotFound
}

type fakeUsers map[uuid.UUID]*userModel.User

func (f fakeUsers) GetProfile(_ context.Context, id uuid.UUID) (*userModel.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, userModel.ErrUserNotFound
}

type QuerySuite struct {
	suite.Suite
	ctx   context.Context
	repo  *repository.MemoryRepository
	stock *inventoryRepo.MemoryRepository
	svc   *BorrowingService

	books   fakeBooks
	clients fakeClients
	users   fakeUsers

	admin access.Actor
	alice access.Actor
	bob   access.Actor
}

func TestQuerySuite(t *testing.T) {
	suite.Run(t, new(QuerySuite))
}

func (s *QuerySuite) SetupTest() {
	s.ctx = context.Background()
	db := memdb.New()
	s.stock = inventoryRepo.NewMemoryRepository(db)
	s.repo = repository.NewMemoryRepository(db)
	ledger := inventoryService.NewInventoryService(s.stock, db, nil, nil)

	s.books = fakeBooks{}
	s.clients = fakeClients{}
	s.users = fakeUsers{}
	s.svc = NewService(s.repo, ledger, db, nil, Lookups{Books: s.books, Clients: s.clients, Users: s.users})

	s.admin = s.user("admin", access.RoleAdmin)
	s.alice = s.user("alice", access.RoleUser)
	s.bob = s.user("bob", access.RoleUser)
}

func (s *QuerySuite) user(name string, role access.Role) access.Actor {
	a := access.Actor{ID: uuid.New(), Role: role}
	s.repo.PutUser(a.ID, name)
	s.users[a.ID] = &userModel.User{ID: a.ID, Username: name, Role: role}
	return a
}

func (s *QuerySuite) book(title string, stock int) uuid.UUID {
	id := uuid.New()
	s.stock.PutBook(id, stock)
	s.repo.PutBook(id, title, "Author")
	s.books[id] = &bookModel.Book{ID: id, Title: title, Author: "Author", Stock: stock}
	return id
}

func (s *QuerySuite) client(first, last string) uuid.UUID {
	id := uuid.New()
	s.repo.PutClient(id, first+" "+last)
	s.clients[id] = &clientModel.Client{ID: id, FirstName: first, LastName: last}
	return id
}

func (s *QuerySuite) borrow(actor access.Actor, client, book uuid.UUID, day int) *model.Borrowing {
	b, err := s.svc.Create(s.ctx, actor, model.CreateBorrowingRequest{
		ClientID:   client,
		BookID:     book,
		Quantity:   1,
		BorrowDate: fmt.Sprintf("2025-01-%02d", day),
	})
	s.Require().NoError(err)
	return b
}

func (s *QuerySuite) TestList_PaginationAndOrder() {
	book := s.book("Solaris", 50)
	client := s.client("Jan", "Nowak")
	for day := 1; day <= 5; day++ {
		s.borrow(s.alice, client, book, day)
	}

	first, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Page: 1, Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(first.Records, 2)
	s.Equal(5, first.Records[0].BorrowDate.Day())
	s.Equal(4, first.Records[1].BorrowDate.Day())
	s.Equal(5, first.Pagination.Total)
	s.Equal(3, first.Pagination.TotalPages)

	last, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Page: 3, Limit: 2})
	s.Require().NoError(err)
	s.Len(last.Records, 1)

	beyond, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Page: 9, Limit: 2})
	s.Require().NoError(err)
	s.NotNil(beyond.Records)
	s.Empty(beyond.Records)
	s.Equal(5, beyond.Pagination.Total)
	s.Equal(3, beyond.Pagination.TotalPages)
	s.Equal(9, beyond.Pagination.CurrentPage)

	far, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Page: math.MaxInt / 5, Limit: 10})
	s.Require().NoError(err)
	s.Empty(far.Records)
	s.Equal(5, far.Pagination.Total)
	s.Equal(1, far.Pagination.TotalPages)
}

func (s *QuerySuite) TestList_Defaults() {
	resp, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Page: -4, Limit: 5000})
	s.Require().NoError(err)
	s.Equal(1, resp.Pagination.CurrentPage)
	s.Equal(100, resp.Pagination.Limit)
	s.Equal(0, resp.Pagination.TotalPages)
	s.Empty(resp.Records)
}

func (s *QuerySuite) TestList_ScopeAppliesBeforePaging() {
	book := s.book("Eden", 50)
	client := s.client("Jan", "Nowak")
	for day := 1; day <= 3; day++ {
		s.borrow(s.alice, client, book, day)
	}
	for day := 4; day <= 10; day++ {
		s.borrow(s.bob, client, book, day)
	}

	alice, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Limit: 2})
	s.Require().NoError(err)
	s.Equal(3, alice.Pagination.Total)
	s.Equal(2, alice.Pagination.TotalPages)
	for _, r := range alice.Records {
		s.Equal(s.alice.ID, r.ActorID)
		s.Equal("alice", r.Username)
	}

	admin, err := s.svc.List(s.ctx, s.admin, model.ListBorrowingsRequest{Limit: 2})
	s.Require().NoError(err)
	s.Equal(10, admin.Pagination.Total)
}

func (s *QuerySuite) TestList_Filters() {
	solaris := s.book("Solaris", 10)
	eden := s.book("Eden", 10)
	jan := s.client("Jan", "Nowak")
	ewa := s.client("Ewa", "Lis")

	s.borrow(s.alice, jan, solaris, 1)
	s.borrow(s.alice, jan, eden, 2)
	s.borrow(s.alice, ewa, eden, 3)
	s.borrow(s.bob, ewa, eden, 4)

	byBook, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Filter: model.ListFilter{BookID: &eden}})
	s.Require().NoError(err)
	s.Equal(2, byBook.Pagination.Total)

	byClient, err := s.svc.List(s.ctx, s.admin, model.ListBorrowingsRequest{Filter: model.ListFilter{ClientID: &ewa}})
	s.Require().NoError(err)
	s.Equal(2, byClient.Pagination.Total)
	s.Equal("Ewa Lis", byClient.Records[0].ClientName)

	both, err := s.svc.List(s.ctx, s.alice, model.ListBorrowingsRequest{Filter: model.ListFilter{ClientID: &jan, BookID: &solaris}})
	s.Require().NoError(err)
	s.Require().Len(both.Records, 1)
	s.Equal("Solaris", both.Records[0].BookTitle)
}

func (s *QuerySuite) TestDetails() {
	book := s.book("Fiasco", 3)
	client := s.client("Anna", "Zielinska")
	b := s.borrow(s.alice, client, book, 7)

	details, err := s.svc.Details(s.ctx, s.alice, b.ID)
	s.Require().NoError(err)
	s.Equal("Fiasco", details.Book.Title)
	s.Equal("Anna", details.Client.FirstName)
	s.Equal("alice", details.Username)
	s.Equal(b.ID, details.Borrowing.ID)

	_, err = s.svc.Details(s.ctx, s.bob, b.ID)
	s.ErrorIs(err, model.ErrBorrowingNotFound)
}

func (s *QuerySuite) TestDetails_LookupFailure() {
	book := s.book("Fiasco", 3)
	client := s.client("Anna", "Zielinska")
	b := s.borrow(s.alice, client, book, 7)
	delete(s.clients, client)

	_, err := s.svc.Details(s.ctx, s.admin, b.ID)
	s.True(errors.Is(err, clientModel.ErrClientNotFound))
}

func (s *QuerySuite) TestExport() {
	book := s.book("Solaris", 10)
	client := s.client("Jan", "Nowak")
	s.borrow(s.alice, client, book, 1)
	s.borrow(s.alice, client, book, 2)
	s.borrow(s.bob, client, book, 3)

	f, err := s.svc.Export(s.ctx, s.alice, model.ListFilter{})
	s.Require().NoError(err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	s.Require().NoError(err)
	s.Require().Len(rows, 3)
	s.Equal("ID", rows[0][0])
	s.Equal("2025-01-02", rows[1][1])
	s.Equal("Jan Nowak", rows[1][2])
	s.Equal("alice", rows[2][7])
}

func TestBuildBorrowingsExcelFile_Empty(t *testing.T) {
	f, err := buildBorrowingsExcelFile(nil, 0)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBuildBorrowingsExcelFile_TruncationNote(t *testing.T) {
	records := []model.BorrowingView{
		{Borrowing: model.Borrowing{ID: uuid.New(), Quantity: 1, Status: model.StatusBorrowed}},
		{Borrowing: model.Borrowing{ID: uuid.New(), Quantity: 2, Status: model.StatusReturned}},
	}

	f, err := buildBorrowingsExcelFile(records, 5)
	require.NoError(t, err)
	defer f.Close()

	note, err := f.GetCellValue(exportSheet, "A5")
	require.NoError(t, err)
	assert.Contains(t, note, "2 of 5")

	complete, err := buildBorrowingsExcelFile(records, 2)
	require.NoError(t, err)
	defer complete.Close()

	rows, err := complete.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
