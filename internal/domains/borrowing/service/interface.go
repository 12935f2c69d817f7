package service

import (
	"context"

	bookModel "library-backend/internal/domains/book/model"
	"library-backend/internal/domains/borrowing/model"
	clientModel "library-backend/internal/domains/client/model"
	inventoryModel "library-backend/internal/domains/inventory/model"
	userModel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/access"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/xuri/excelize/v2"
)

type ServiceInterface interface {
	// Create reserves Quantity copies and records the borrowing in one transaction.
	Create(ctx context.Context, actor access.Actor, req model.CreateBorrowingRequest) (*model.Borrowing, error)
	// Update merges req over the stored record and moves stock by the
	// difference in reserved quantity.
	Update(ctx context.Context, actor access.Actor, id uuid.UUID, req model.UpdateBorrowingRequest) (*model.Borrowing, error)
	// Delete removes the record and releases whatever it still reserves.
	Delete(ctx context.Context, actor access.Actor, id uuid.UUID) error

	List(ctx context.Context, actor access.Actor, req model.ListBorrowingsRequest) (*model.ListBorrowingsResponse, error)
	Get(ctx context.Context, actor access.Actor, id uuid.UUID) (*model.BorrowingView, error)
	Details(ctx context.Context, actor access.Actor, id uuid.UUID) (*model.BorrowingDetails, error)
	Export(ctx context.Context, actor access.Actor, filter model.ListFilter) (*excelize.File, error)
}

// Ledger is the part of the inventory ledger the lifecycle drives.
type Ledger interface {
	LockBooksWithTx(ctx context.Context, tx pgx.Tx, bookIDs ...uuid.UUID) error
	AdjustManyWithTx(ctx context.Context, tx pgx.Tx, adjs []inventoryModel.Adjustment) ([]inventoryModel.AdjustmentResult, error)
	Committed(ctx context.Context, results ...inventoryModel.AdjustmentResult)
}

type BookReader interface {
	GetBook(ctx context.Context, id uuid.UUID) (*bookModel.Book, error)
}

type ClientReader interface {
	GetClient(ctx context.Context, id uuid.UUID) (*clientModel.Client, error)
}

type UserReader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*userModel.User, error)
}

// Lookups resolves the rows shown by Details.
type Lookups struct {
	Books   BookReader
	Clients ClientReader
	Users   UserReader
}
