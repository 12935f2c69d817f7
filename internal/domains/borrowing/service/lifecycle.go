package service

import (
	"context"
	"errors"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/domains/borrowing/repository"
	inventoryModel "library-backend/internal/domains/inventory/model"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/apperror"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type BorrowingService struct {
	repo       repository.RepositoryInterface
	ledger     Ledger
	transactor database.Transactor
	metrics    *metrics.Metrics
	lookups    Lookups
}

// NewService wires the borrowing lifecycle and queries. m may be nil.
func NewService(
	repo repository.RepositoryInterface,
	ledger Ledger,
	transactor database.Transactor,
	m *metrics.Metrics,
	lookups Lookups,
) *BorrowingService {
	return &BorrowingService{
		repo:       repo,
		ledger:     ledger,
		transactor: transactor,
		metrics:    m,
		lookups:    lookups,
	}
}

func (s *BorrowingService) Create(ctx context.Context, actor access.Actor, req model.CreateBorrowingRequest) (*model.Borrowing, error) {
	if err := req.Validate(); err != nil {
		s.metrics.IncBorrowingOp("create", "invalid")
		return nil, apperror.Validation(err)
	}

	b := req.ToBorrowing(actor.ID)
	var results []inventoryModel.AdjustmentResult

	err := s.transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		// STEP 1: referenced client must exist
		if err := s.requireClient(ctx, tx, b.ClientID); err != nil {
			return err
		}

		// STEP 2: reserve stock; missing book or short stock aborts here
		var err error
		results, err = s.adjust(ctx, tx, actor, StockDeltas(nil, b))
		if err != nil {
			return err
		}

		// STEP 3: persist the record
		return s.repo.CreateWithTx(ctx, tx, b)
	})
	s.metrics.IncBorrowingOp("create", outcome(err))
	if err != nil {
		return nil, err
	}

	s.ledger.Committed(ctx, results...)
	logger.Info("Borrowing created", map[string]interface{}{
		"borrowing_id": b.ID.String(),
		"book_id":      b.BookID.String(),
		"quantity":     b.Quantity,
		"actor_id":     actor.ID.String(),
	})
	return b, nil
}

func (s *BorrowingService) Update(
	ctx context.Context,
	actor access.Actor,
	id uuid.UUID,
	req model.UpdateBorrowingRequest,
) (*model.Borrowing, error) {
	if err := req.Validate(); err != nil {
		s.metrics.IncBorrowingOp("update", "invalid")
		return nil, apperror.Validation(err)
	}

	var (
		updated model.Borrowing
		results []inventoryModel.AdjustmentResult
	)

	err := s.transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := s.lockOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		updated = req.Apply(*existing)
		if err := updated.Validate(); err != nil {
			return apperror.Validation(err)
		}

		if updated.ClientID != existing.ClientID {
			if err := s.requireClient(ctx, tx, updated.ClientID); err != nil {
				return err
			}
		}
		if updated.BookID != existing.BookID {
			// both books are locked before any stock moves; the ledger and the
			// foreign key check then only touch rows this transaction holds
			if err := s.lockBooks(ctx, tx, existing.BookID, updated.BookID); err != nil {
				return err
			}
		}

		results, err = s.adjust(ctx, tx, actor, StockDeltas(existing, &updated))
		if err != nil {
			return err
		}

		return s.repo.UpdateWithTx(ctx, tx, &updated)
	})
	s.metrics.IncBorrowingOp("update", outcome(err))
	if err != nil {
		return nil, err
	}

	s.ledger.Committed(ctx, results...)
	logger.Info("Borrowing updated", map[string]interface{}{
		"borrowing_id": id.String(),
		"status":       string(updated.Status),
		"quantity":     updated.Quantity,
		"stock_moves":  len(results),
	})
	return &updated, nil
}

func (s *BorrowingService) Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error {
	var results []inventoryModel.AdjustmentResult

	err := s.transactor.WithTransaction(ctx, func(tx pgx.Tx) error {
		existing, err := s.lockOwned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		results, err = s.adjust(ctx, tx, actor, StockDeltas(existing, nil))
		if err != nil {
			return err
		}

		return s.repo.DeleteWithTx(ctx, tx, id)
	})
	s.metrics.IncBorrowingOp("delete", outcome(err))
	if err != nil {
		return err
	}

	s.ledger.Committed(ctx, results...)
	logger.Info("Borrowing deleted", map[string]interface{}{
		"borrowing_id": id.String(),
		"actor_id":     actor.ID.String(),
	})
	return nil
}

// lockOwned locks the borrowing for the rest of tx. Records outside the
// actor's scope are reported as missing.
func (s *BorrowingService) lockOwned(ctx context.Context, tx pgx.Tx, actor access.Actor, id uuid.UUID) (*model.Borrowing, error) {
	existing, err := s.repo.GetByIDForUpdateWithTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if !access.ScopeFor(actor).Authorize(existing) {
		return nil, model.ErrBorrowingNotFound
	}
	return existing, nil
}

// adjust skips the ledger entirely when there is nothing to move.
func (s *BorrowingService) adjust(
	ctx context.Context,
	tx pgx.Tx,
	actor access.Actor,
	adjs []inventoryModel.Adjustment,
) ([]inventoryModel.AdjustmentResult, error) {
	if len(adjs) == 0 {
		return nil, nil
	}
	for i := range adjs {
		actorID := actor.ID
		adjs[i].ActorID = &actorID
	}
	return s.ledger.AdjustManyWithTx(ctx, tx, adjs)
}

func (s *BorrowingService) requireClient(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	ok, err := s.repo.ClientExistsWithTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrClientNotFound
	}
	return nil
}

func (s *BorrowingService) lockBooks(ctx context.Context, tx pgx.Tx, ids ...uuid.UUID) error {
	err := s.ledger.LockBooksWithTx(ctx, tx, ids...)
	if errors.Is(err, inventoryModel.ErrBookNotFound) {
		return model.ErrBookNotFound
	}
	return err
}

// outcome is the metrics label for a lifecycle result.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperror.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrValidation):
		return "invalid"
	case errors.Is(err, apperror.ErrConflict):
		return "conflict"
	case errors.Is(err, apperror.ErrStorage):
		return "storage_error"
	default:
		return "error"
	}
}
