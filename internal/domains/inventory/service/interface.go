package service

import (
	"context"

	"library-backend/internal/domains/inventory/model"
	"library-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ServiceInterface is the inventory ledger contract.
type ServiceInterface interface {
	// AdjustStockWithTx applies one delta inside tx and returns the new stock.
	// Nothing is written when it fails.
	AdjustStockWithTx(ctx context.Context, tx pgx.Tx, adj model.Adjustment) (model.AdjustmentResult, error)

	// AdjustManyWithTx applies several deltas in ascending book id order so
	// two transactions touching the same books always lock them in the same order.
	AdjustManyWithTx(ctx context.Context, tx pgx.Tx, adjs []model.Adjustment) ([]model.AdjustmentResult, error)

	// LockBooksWithTx takes the same row locks as an adjustment, in the same
	// order, without moving stock. Unknown books yield model.ErrBookNotFound.
	LockBooksWithTx(ctx context.Context, tx pgx.Tx, bookIDs ...uuid.UUID) error

	// AdjustStock runs a single adjustment in its own transaction.
	AdjustStock(ctx context.Context, adj model.Adjustment) (model.AdjustmentResult, error)

	// Committed must be called once the enclosing transaction committed.
	Committed(ctx context.Context, results ...model.AdjustmentResult)

	ListMovements(ctx context.Context, bookID uuid.UUID, req model.ListMovementsRequest) (*model.ListMovementsResponse, error)
}

// StockEventPublisher is implemented by queue.Publisher.
type StockEventPublisher interface {
	PublishStockChanged(ctx context.Context, payload shared.StockChangedPayload) error
}
