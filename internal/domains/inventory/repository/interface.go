package repository

import (
	"context"

	"library-backend/internal/domains/inventory/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RepositoryInterface is the storage side of the inventory ledger. All
// *WithTx methods run inside the caller's transaction.
type RepositoryInterface interface {
	// LockStockWithTx reads a book's stock and holds its row lock until the
	// transaction ends. Returns model.ErrBookNotFound for unknown books.
	LockStockWithTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID) (int, error)

	SetStockWithTx(ctx context.Context, tx pgx.Tx, bookID uuid.UUID, stock int) error

	CreateMovementWithTx(ctx context.Context, tx pgx.Tx, movement *model.StockMovement) error

	ListMovements(ctx context.Context, bookID uuid.UUID, limit, offset int) ([]model.StockMovement, int, error)
}
