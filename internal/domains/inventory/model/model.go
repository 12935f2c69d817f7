package model

import (
	"time"

	"github.com/google/uuid"
)

// MaxStock is the upper bound of a book's stock column.
const MaxStock = 1_000_000

// Reason tags every stock movement with the operation that caused it.
type Reason string

const (
	ReasonBorrow       Reason = "borrow"
	ReasonReturn       Reason = "return"
	ReasonBorrowUpdate Reason = "borrow_update"
	ReasonBorrowDelete Reason = "borrow_delete"
	ReasonManual       Reason = "manual"
)

// Adjustment is one signed stock delta. Negative reserves, positive releases.
type Adjustment struct {
	BookID      uuid.UUID
	Delta       int
	Reason      Reason
	BorrowingID *uuid.UUID
	ActorID     *uuid.UUID
	Note        string
}

// AdjustmentResult is what the ledger reports back for a committed delta.
type AdjustmentResult struct {
	BookID      uuid.UUID `json:"book_id"`
	Delta       int       `json:"delta"`
	StockBefore int       `json:"stock_before"`
	Stock       int       `json:"stock"`
	Reason      Reason    `json:"reason"`
}

// StockMovement is the audit row written for every applied adjustment.
type StockMovement struct {
	ID          uuid.UUID  `json:"id"`
	BookID      uuid.UUID  `json:"book_id"`
	Delta       int        `json:"delta"`
	StockBefore int        `json:"stock_before"`
	StockAfter  int        `json:"stock_after"`
	Reason      Reason     `json:"reason"`
	BorrowingID *uuid.UUID `json:"borrowing_id,omitempty"`
	ActorID     *uuid.UUID `json:"actor_id,omitempty"`
	Note        *string    `json:"note,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
