package service

import (
	"bytes"
	"context"
	"sort"

	"library-backend/internal/domains/inventory/model"
	"library-backend/internal/domains/inventory/repository"
	"library-backend/internal/infrastructure/metrics"
	"library-backend/internal/shared"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryService struct {
	repo       repository.RepositoryInterface
	transactor database.Transactor
	publisher  StockEventPublisher
	metrics    *metrics.Metrics
}

// NewInventoryService builds the ledger. publisher and m may be nil.
func NewInventoryService(
	repo repository.RepositoryInterface,
	transactor database.Transactor,
	publisher StockEventPublisher,
	m *metrics.Metrics,
) *InventoryService {
	return &InventoryService{
		repo:       repo,
		transactor: transactor,
		publisher:  publisher,
		metrics:    m,
	}
}

func (s *InventoryService) AdjustStockWithTx(ctx context.Context, tx pgx.Tx, adj model.Adjustment) (model.AdjustmentResult, error) {
	if adj.Delta == 0 {
		return model.AdjustmentResult{}, model.ErrZeroDelta
	}

	current, err := s.repo.LockStockWithTx(ctx, tx, adj.BookID)
	if err != nil {
		return model.AdjustmentResult{}, err
	}

	next := current + adj.Delta
	if next < 0 {
		s.metrics.IncInsufficientStock()
		return model.AdjustmentResult{}, model.NewInsufficientStockError(adj.BookID, -adj.Delta, current)
	}
	if adj.Reason == model.ReasonManual && next > model.MaxStock {
		return model.AdjustmentResult{}, model.ErrStockLimitExceeded
	}

	if err := s.repo.SetStockWithTx(ctx, tx, adj.BookID, next); err != nil {
		return model.AdjustmentResult{}, err
	}

	movement := &model.StockMovement{
		BookID:      adj.BookID,
		Delta:       adj.Delta,
		StockBefore: current,
		StockAfter:  next,
		Reason:      adj.Reason,
		BorrowingID: adj.BorrowingID,
		ActorID:     adj.ActorID,
	}
	if adj.Note != "" {
		note := adj.Note
		movement.Note = &note
	}
	if err := s.repo.CreateMovementWithTx(ctx, tx, movement); err != nil {
		return model.AdjustmentResult{}, err
	}

	return model.AdjustmentResult{
		BookID:      adj.BookID,
		Delta:       adj.Delta,
		StockBefore: current,
		Stock:       next,
		Reason:      adj.Reason,
	}, nil
}

// LockBooksWithTx row-locks the given books in ascending id order without
// changing their stock. Callers that will touch several books take all the
// locks up front so concurrent transactions queue instead of deadlocking.
func (s *InventoryService) LockBooksWithTx(ctx context.Context, tx pgx.Tx, bookIDs ...uuid.UUID) error {
	for _, id := range sortedBookIDs(bookIDs) {
		if _, err := s.repo.LockStockWithTx(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}

func sortedBookIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i][:], out[j][:]) < 0
	})
	return out
}

func (s *InventoryService) AdjustManyWithTx(ctx context.Context, tx pgx.Tx, adjs []model.Adjustment) ([]model.AdjustmentResult, error) {
	ordered := make([]model.Adjustment, 0, len(adjs))
	for _, a := range adjs {
		if a.Delta != 0 {
			ordered = append(ordered, a)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return bytes.Compare(ordered[i].BookID[:], ordered[j].BookID[:]) < 0
	})

	results := make([]model.AdjustmentResult, 0, len(ordered))
	for _, a := range ordered {
		res, err := s.AdjustStockWithTx(ctx, tx, a)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *InventoryService) AdjustStock(ctx context.Context, adj model.Adjustment) (model.AdjustmentResult, error) {
	result, err := database.WithTransactionResult(ctx, s.transactor, func(tx pgx.Tx) (model.AdjustmentResult, error) {
		return s.AdjustStockWithTx(ctx, tx, adj)
	})
	if err != nil {
		return model.AdjustmentResult{}, err
	}

	s.Committed(ctx, result)
	return result, nil
}

// Committed records metrics and schedules cache refreshes. Publishing is
// best effort: the stock is already durable, so failures are only logged.
func (s *InventoryService) Committed(ctx context.Context, results ...model.AdjustmentResult) {
	for _, r := range results {
		s.metrics.AddStockDelta(r.Delta)

		if s.publisher == nil {
			continue
		}
		err := s.publisher.PublishStockChanged(ctx, shared.StockChangedPayload{
			BookID: r.BookID,
			Delta:  r.Delta,
			Stock:  r.Stock,
			Reason: string(r.Reason),
		})
		if err != nil {
			logger.ErrorWithFields("Failed to publish stock change", err, map[string]interface{}{
				"book_id": r.BookID.String(),
			})
		}
	}
}

func (s *InventoryService) ListMovements(ctx context.Context, bookID uuid.UUID, req model.ListMovementsRequest) (*model.ListMovementsResponse, error) {
	page, limit, offset := utils.NormalizePage(req.Page, req.Limit)

	movements, total, err := s.repo.ListMovements(ctx, bookID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &model.ListMovementsResponse{
		Movements:  movements,
		Pagination: utils.NewPagination(page, limit, total),
	}, nil
}
