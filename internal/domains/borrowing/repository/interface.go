package repository

import (
	"context"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/shared/access"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type RepositoryInterface interface {
	// GetByIDForUpdateWithTx locks the row until tx ends.
	GetByIDForUpdateWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*model.Borrowing, error)
	CreateWithTx(ctx context.Context, tx pgx.Tx, b *model.Borrowing) error
	UpdateWithTx(ctx context.Context, tx pgx.Tx, b *model.Borrowing) error
	DeleteWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) error

	// ClientExistsWithTx holds a key-share lock so the client cannot be
	// deleted before tx commits. Books are locked by the inventory ledger.
	ClientExistsWithTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (bool, error)

	GetView(ctx context.Context, id uuid.UUID) (*model.BorrowingView, error)
	// List returns one page of the rows visible to scope plus the total count
	// of those rows.
	List(ctx context.Context, scope access.Scope, filter model.ListFilter, limit, offset int) ([]model.BorrowingView, int, error)
}
