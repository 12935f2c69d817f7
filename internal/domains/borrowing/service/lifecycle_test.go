package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/domains/borrowing/repository"
	inventoryModel "library-backend/internal/domains/inventory/model"
	inventoryRepo "library-backend/internal/domains/inventory/repository"
	inventoryService "library-backend/internal/domains/inventory/service"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/memdb"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

// countingLedger records how often the lifecycle reaches the ledger.
type countingLedger struct {
	inner Ledger

	mu          sync.Mutex
	calls       int
	adjustments int
	locked      [][]uuid.UUID
	committed   []inventoryModel.AdjustmentResult
}

func (l *countingLedger) LockBooksWithTx(ctx context.Context, tx pgx.Tx, bookIDs ...uuid.UUID) error {
	l.mu.Lock()
	l.locked = append(l.locked, append([]uuid.UUID(nil), bookIDs...))
	l.mu.Unlock()
	return l.inner.LockBooksWithTx(ctx, tx, bookIDs...)
}

func (l *countingLedger) AdjustManyWithTx(ctx context.Context, tx pgx.Tx, adjs []inventoryModel.Adjustment) ([]inventoryModel.AdjustmentResult, error) {
	l.mu.Lock()
	l.calls++
	l.adjustments += len(adjs)
	l.mu.Unlock()
	return l.inner.AdjustManyWithTx(ctx, tx, adjs)
}

func (l *countingLedger) Committed(ctx context.Context, results ...inventoryModel.AdjustmentResult) {
	l.mu.Lock()
	l.committed = append(l.committed, results...)
	l.mu.Unlock()
	l.inner.Committed(ctx, results...)
}

func (l *countingLedger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type LifecycleSuite struct {
	suite.Suite
	ctx     context.Context
	db      *memdb.DB
	stock   *inventoryRepo.MemoryRepository
	repo    *repository.MemoryRepository
	ledger  *countingLedger
	metrics *metrics.Metrics
	svc     *BorrowingService

	admin  access.Actor
	alice  access.Actor
	bob    access.Actor
	client uuid.UUID
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = memdb.New()
	s.stock = inventoryRepo.NewMemoryRepository(s.db)
	s.repo = repository.NewMemoryRepository(s.db)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.ledger = &countingLedger{
		inner: inventoryService.NewInventoryService(s.stock, s.db, nil, s.metrics),
	}
	s.svc = NewService(s.repo, s.ledger, s.db, s.metrics, Lookups{})

	s.admin = access.Actor{ID: uuid.New(), Role: access.RoleAdmin}
	s.alice = access.Actor{ID: uuid.New(), Role: access.RoleUser}
	s.bob = access.Actor{ID: uuid.New(), Role: access.RoleUser}
	s.repo.PutUser(s.admin.ID, "admin")
	s.repo.PutUser(s.alice.ID, "alice")
	s.repo.PutUser(s.bob.ID, "bob")

	s.client = uuid.New()
	s.repo.PutClient(s.client, "Jan Kowalski")
}

func (s *LifecycleSuite) newBook(stock int) uuid.UUID {
	id := uuid.New()
	s.stock.PutBook(id, stock)
	s.repo.PutBook(id, "Solaris", "Stanislaw Lem")
	return id
}

func (s *LifecycleSuite) stockOf(book uuid.UUID) int {
	v, ok := s.stock.Stock(book)
	s.Require().True(ok)
	return v
}

func (s *LifecycleSuite) create(actor access.Actor, book uuid.UUID, qty int) *model.Borrowing {
	b, err := s.svc.Create(s.ctx, actor, model.CreateBorrowingRequest{
		ClientID:   s.client,
		BookID:     book,
		Quantity:   qty,
		BorrowDate: "2025-03-01",
	})
	s.Require().NoError(err)
	return b
}

func statusPtr(st model.Status) *model.Status { return &st }

func intPtr(v int) *int { return &v }

// ========================================
// CREATE
// ========================================

func (s *LifecycleSuite) TestCreate_ReservesStock() {
	book := s.newBook(5)

	b := s.create(s.alice, book, 3)

	s.Equal(2, s.stockOf(book))
	s.Equal(model.StatusBorrowed, b.Status)
	s.Equal(3, b.Quantity)
	s.Equal(s.alice.ID, b.ActorID)

	stored, ok := s.repo.Get(b.ID)
	s.Require().True(ok)
	s.Equal(model.StatusBorrowed, stored.Status)
	s.Equal(1, s.stock.MovementCount())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BorrowingOps.WithLabelValues("create", "ok")))
}

func (s *LifecycleSuite) TestCreate_InsufficientStock() {
	book := s.newBook(2)

	_, err := s.svc.Create(s.ctx, s.alice, model.CreateBorrowingRequest{
		ClientID: s.client, BookID: book, Quantity: 3, BorrowDate: "2025-03-01",
	})

	s.Require().ErrorIs(err, apperror.ErrInsufficientStock)
	var insufficient *inventoryModel.InsufficientStockError
	s.Require().True(errors.As(err, &insufficient))
	s.Equal(3, insufficient.Requested)
	s.Equal(2, insufficient.Available)

	s.Equal(2, s.stockOf(book))
	s.Zero(s.repo.Count())
	s.Zero(s.stock.MovementCount())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.BorrowingOps.WithLabelValues("create", "insufficient_stock")))
}

func (s *LifecycleSuite) TestCreate_EmptyShelf() {
	book := s.newBook(0)

	_, err := s.svc.Create(s.ctx, s.alice, model.CreateBorrowingRequest{
		ClientID: s.client, BookID: book, Quantity: 1, BorrowDate: "2025-03-01",
	})

	s.ErrorIs(err, apperror.ErrInsufficientStock)
	s.Equal(0, s.stockOf(book))
	s.Zero(s.repo.Count())
}

func (s *LifecycleSuite) TestCreate_UnknownReferences() {
	book := s.newBook(4)

	_, err := s.svc.Create(s.ctx, s.alice, model.CreateBorrowingRequest{
		ClientID: uuid.New(), BookID: book, Quantity: 1, BorrowDate: "2025-03-01",
	})
	s.ErrorIs(err, model.ErrClientNotFound)
	s.Equal(4, s.stockOf(book))

	_, err = s.svc.Create(s.ctx, s.alice, model.CreateBorrowingRequest{
		ClientID: s.client, BookID: uuid.New(), Quantity: 1, BorrowDate: "2025-03-01",
	})
	s.ErrorIs(err, apperror.ErrNotFound)
	s.Zero(s.repo.Count())
}

func (s *LifecycleSuite) TestCreate_Validation() {
	book := s.newBook(10)

	cases := []model.CreateBorrowingRequest{
		{ClientID: s.client, BookID: book, Quantity: 0, BorrowDate: "2025-03-01"},
		{ClientID: s.client, BookID: book, Quantity: 1001, BorrowDate: "2025-03-01"},
		{ClientID: s.client, BookID: book, Quantity: 1},
		{ClientID: s.client, BookID: book, Quantity: 1, BorrowDate: "03/01/2025"},
		{BookID: book, Quantity: 1, BorrowDate: "2025-03-01"},
	}
	for _, req := range cases {
		_, err := s.svc.Create(s.ctx, s.alice, req)
		s.ErrorIs(err, apperror.ErrValidation)
	}

	s.Zero(s.ledger.Calls())
	s.Equal(10, s.stockOf(book))
}

func (s *LifecycleSuite) TestCreate_QuantityBounds() {
	book := s.newBook(1001)

	s.create(s.alice, book, 1)
	s.create(s.alice, book, 1000)
	s.Equal(0, s.stockOf(book))
}

// ========================================
// UPDATE
// ========================================

func (s *LifecycleSuite) TestRoundTrip_ReturnRestoresStock() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 3)
	s.Equal(2, s.stockOf(book))

	updated, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusReturned)})
	s.Require().NoError(err)
	s.Equal(model.StatusReturned, updated.Status)
	s.Equal(5, s.stockOf(book))

	s.Require().NoError(s.svc.Delete(s.ctx, s.alice, b.ID))
	s.Equal(5, s.stockOf(book))
	s.Zero(s.repo.Count())
}

func (s *LifecycleSuite) TestUpdate_NoOpNeverCallsLedger() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 2)
	callsAfterCreate := s.ledger.Calls()
	movements := s.stock.MovementCount()

	date := "2025-04-15"
	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{
		Status:     statusPtr(model.StatusBorrowed),
		Quantity:   intPtr(2),
		BorrowDate: &date,
	})
	s.Require().NoError(err)

	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{})
	s.Require().NoError(err)

	s.Equal(callsAfterCreate, s.ledger.Calls())
	s.Equal(movements, s.stock.MovementCount())
	s.Equal(3, s.stockOf(book))

	stored, _ := s.repo.Get(b.ID)
	s.Equal(2025, stored.BorrowDate.Year())
	s.Equal(4, int(stored.BorrowDate.Month()))
}

func (s *LifecycleSuite) TestUpdate_QuantityWhileBorrowed() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 3)

	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Quantity: intPtr(5)})
	s.Require().NoError(err)
	s.Equal(0, s.stockOf(book))

	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Quantity: intPtr(1)})
	s.Require().NoError(err)
	s.Equal(4, s.stockOf(book))

	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Quantity: intPtr(6)})
	s.ErrorIs(err, apperror.ErrInsufficientStock)
	s.Equal(4, s.stockOf(book))

	stored, _ := s.repo.Get(b.ID)
	s.Equal(1, stored.Quantity)
}

func (s *LifecycleSuite) TestUpdate_QuantityWhileReturnedHasNoStockEffect() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 2)
	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusReturned)})
	s.Require().NoError(err)
	calls := s.ledger.Calls()

	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Quantity: intPtr(40)})
	s.Require().NoError(err)

	s.Equal(5, s.stockOf(book))
	s.Equal(calls, s.ledger.Calls())
}

func (s *LifecycleSuite) TestUpdate_ReborrowNeedsStock() {
	book := s.newBook(3)
	b := s.create(s.alice, book, 3)
	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusReturned)})
	s.Require().NoError(err)

	other := s.create(s.bob, book, 2)
	s.Equal(1, s.stockOf(book))

	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusBorrowed)})
	s.ErrorIs(err, apperror.ErrInsufficientStock)

	stored, _ := s.repo.Get(b.ID)
	s.Equal(model.StatusReturned, stored.Status)
	s.Equal(1, s.stockOf(book))

	s.Require().NoError(s.svc.Delete(s.ctx, s.bob, other.ID))
	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusBorrowed)})
	s.Require().NoError(err)
	s.Equal(0, s.stockOf(book))
}

func (s *LifecycleSuite) TestUpdate_StatusAndQuantityTogether() {
	book := s.newBook(10)
	b := s.create(s.alice, book, 3)
	s.Equal(7, s.stockOf(book))

	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{
		Status:   statusPtr(model.StatusReturned),
		Quantity: intPtr(5),
	})
	s.Require().NoError(err)
	s.Equal(10, s.stockOf(book))

	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{
		Status:   statusPtr(model.StatusBorrowed),
		Quantity: intPtr(4),
	})
	s.Require().NoError(err)
	s.Equal(6, s.stockOf(book))
}

func (s *LifecycleSuite) TestUpdate_MoveToAnotherBook() {
	first := s.newBook(5)
	second := s.newBook(4)
	b := s.create(s.alice, first, 2)

	updated, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{BookID: &second})
	s.Require().NoError(err)
	s.Equal(second, updated.BookID)
	s.Equal(5, s.stockOf(first))
	s.Equal(2, s.stockOf(second))
}

func (s *LifecycleSuite) TestUpdate_MoveToBookWithoutStockRollsBack() {
	first := s.newBook(5)
	second := s.newBook(1)
	b := s.create(s.alice, first, 2)
	movements := s.stock.MovementCount()

	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{BookID: &second})
	s.ErrorIs(err, apperror.ErrInsufficientStock)

	s.Equal(3, s.stockOf(first))
	s.Equal(1, s.stockOf(second))
	s.Equal(movements, s.stock.MovementCount())
	stored, _ := s.repo.Get(b.ID)
	s.Equal(first, stored.BookID)
}

func (s *LifecycleSuite) TestUpdate_MoveLocksBothBooksFirst() {
	from, to := s.newBook(4), s.newBook(4)
	b := s.create(s.alice, from, 2)

	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{BookID: &to})
	s.Require().NoError(err)

	s.Require().Len(s.ledger.locked, 1)
	s.ElementsMatch([]uuid.UUID{from, to}, s.ledger.locked[0])
	s.Equal(4, s.stockOf(from))
	s.Equal(2, s.stockOf(to))
}

func (s *LifecycleSuite) TestUpdate_SameBookTakesNoExtraLocks() {
	book := s.newBook(4)
	b := s.create(s.alice, book, 2)

	three := 3
	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Quantity: &three})
	s.Require().NoError(err)
	s.Empty(s.ledger.locked)
}

func (s *LifecycleSuite) TestUpdate_MoveReturnedRecordToUnknownBook() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 2)
	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusReturned)})
	s.Require().NoError(err)

	missing := uuid.New()
	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{BookID: &missing})
	s.ErrorIs(err, model.ErrBookNotFound)
}

func (s *LifecycleSuite) TestUpdate_UnknownClient() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 2)

	missing := uuid.New()
	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{ClientID: &missing})
	s.ErrorIs(err, model.ErrClientNotFound)

	stored, _ := s.repo.Get(b.ID)
	s.Equal(s.client, stored.ClientID)
}

func (s *LifecycleSuite) TestUpdate_InvalidInput() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 2)

	_, err := s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Quantity: intPtr(0)})
	s.ErrorIs(err, apperror.ErrValidation)

	_, err = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr("lost")})
	s.ErrorIs(err, apperror.ErrValidation)

	s.Equal(3, s.stockOf(book))
}

func (s *LifecycleSuite) TestUpdate_Missing() {
	_, err := s.svc.Update(s.ctx, s.admin, uuid.New(), model.UpdateBorrowingRequest{})
	s.ErrorIs(err, model.ErrBorrowingNotFound)
}

// ========================================
// DELETE
// ========================================

func (s *LifecycleSuite) TestDelete_ReleasesBorrowedStock() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 4)

	s.Require().NoError(s.svc.Delete(s.ctx, s.alice, b.ID))
	s.Equal(5, s.stockOf(book))
	s.Zero(s.repo.Count())

	s.ErrorIs(s.svc.Delete(s.ctx, s.alice, b.ID), model.ErrBorrowingNotFound)
	s.Equal(5, s.stockOf(book))
}

// ========================================
// SCOPE
// ========================================

func (s *LifecycleSuite) TestScope_UsersOnlyTouchTheirOwn() {
	book := s.newBook(10)
	mine := s.create(s.alice, book, 2)

	_, err := s.svc.Update(s.ctx, s.bob, mine.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusReturned)})
	s.ErrorIs(err, model.ErrBorrowingNotFound)
	s.ErrorIs(s.svc.Delete(s.ctx, s.bob, mine.ID), model.ErrBorrowingNotFound)
	_, err = s.svc.Get(s.ctx, s.bob, mine.ID)
	s.ErrorIs(err, model.ErrBorrowingNotFound)
	s.Equal(8, s.stockOf(book))

	list, err := s.svc.List(s.ctx, s.bob, model.ListBorrowingsRequest{})
	s.Require().NoError(err)
	s.Empty(list.Records)
	s.Zero(list.Pagination.Total)

	_, err = s.svc.Update(s.ctx, s.admin, mine.ID, model.UpdateBorrowingRequest{Quantity: intPtr(3)})
	s.Require().NoError(err)
	s.Equal(7, s.stockOf(book))

	view, err := s.svc.Get(s.ctx, s.alice, mine.ID)
	s.Require().NoError(err)
	s.Equal("alice", view.Username)

	s.Require().NoError(s.svc.Delete(s.ctx, s.admin, mine.ID))
	s.Equal(10, s.stockOf(book))
}

// ========================================
// CONCURRENCY
// ========================================

func (s *LifecycleSuite) TestConcurrentCreatesNeverOversell() {
	const (
		workers = 20
		stock   = 7
	)
	book := s.newBook(stock)

	var (
		wg           sync.WaitGroup
		succeeded    atomic.Int32
		insufficient atomic.Int32
		other        atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.svc.Create(s.ctx, s.alice, model.CreateBorrowingRequest{
				ClientID: s.client, BookID: book, Quantity: 1, BorrowDate: "2025-03-01",
			})
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperror.ErrInsufficientStock):
				insufficient.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.EqualValues(stock, succeeded.Load())
	s.EqualValues(workers-stock, insufficient.Load())
	s.Zero(other.Load())
	s.Equal(0, s.stockOf(book))
	s.Equal(stock, s.repo.Count())
}

func (s *LifecycleSuite) TestConcurrentReturnsReleaseOnce() {
	book := s.newBook(5)
	b := s.create(s.alice, book, 5)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.svc.Update(s.ctx, s.alice, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusReturned)})
		}()
	}
	wg.Wait()

	s.Equal(5, s.stockOf(book))
}

// ========================================
// INVARIANT
// ========================================

// Stock plus everything still borrowed stays equal to the initial stock
// across any mix of operations.
func (s *LifecycleSuite) TestConservationAcrossOperations() {
	const initial = 20
	book := s.newBook(initial)

	a := s.create(s.alice, book, 4)
	b := s.create(s.bob, book, 6)
	c := s.create(s.alice, book, 1)

	_, err := s.svc.Update(s.ctx, s.alice, a.ID, model.UpdateBorrowingRequest{Quantity: intPtr(7)})
	s.Require().NoError(err)
	_, err = s.svc.Update(s.ctx, s.bob, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusReturned)})
	s.Require().NoError(err)
	_, err = s.svc.Update(s.ctx, s.bob, b.ID, model.UpdateBorrowingRequest{Quantity: intPtr(9)})
	s.Require().NoError(err)
	s.Require().NoError(s.svc.Delete(s.ctx, s.alice, c.ID))
	_, err = s.svc.Update(s.ctx, s.bob, b.ID, model.UpdateBorrowingRequest{Status: statusPtr(model.StatusBorrowed), Quantity: intPtr(2)})
	s.Require().NoError(err)

	list, err := s.svc.List(s.ctx, s.admin, model.ListBorrowingsRequest{Filter: model.ListFilter{BookID: &book}})
	s.Require().NoError(err)

	reserved := 0
	for _, r := range list.Records {
		reserved += r.Reserved()
	}
	s.Equal(initial, s.stockOf(book)+reserved)
}

func (s *LifecycleSuite) TestOutcome_Labels() {
	s.Equal("ok", outcome(nil))
	s.Equal("insufficient_stock", outcome(inventoryModel.NewInsufficientStockError(uuid.New(), 2, 1)))
	s.Equal("not_found", outcome(model.ErrBorrowingNotFound))
	s.Equal("conflict", outcome(apperror.ErrConflict))
	s.Equal("storage_error", outcome(apperror.Storage("commit transaction", errors.New("connection reset"))))
	s.Equal("error", outcome(errors.New("boom")))
}
