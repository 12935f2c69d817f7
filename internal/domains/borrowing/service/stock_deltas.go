package service

import (
	"library-backend/internal/domains/borrowing/model"
	inventoryModel "library-backend/internal/domains/inventory/model"

	"github.com/google/uuid"
)

// StockDeltas returns the ledger adjustments that move a borrowing from
// before to after. A nil before is a create and a nil after is a delete.
//
// Everything before reserved is released and everything after reserves is
// taken again. When both sides name the same book the two cancel into one
// delta of reserved(before) - reserved(after). Zero deltas are dropped, so an
// update that keeps status and quantity yields no adjustments at all.
func StockDeltas(before, after *model.Borrowing) []inventoryModel.Adjustment {
	reason := reasonFor(before, after)

	var (
		borrowingID uuid.UUID
		adjs        []inventoryModel.Adjustment
	)
	add := func(bookID uuid.UUID, delta int) {
		for i := range adjs {
			if adjs[i].BookID == bookID {
				adjs[i].Delta += delta
				return
			}
		}
		adjs = append(adjs, inventoryModel.Adjustment{BookID: bookID, Delta: delta, Reason: reason})
	}

	if before != nil {
		borrowingID = before.ID
		add(before.BookID, before.Reserved())
	}
	if after != nil {
		borrowingID = after.ID
		add(after.BookID, -after.Reserved())
	}

	out := adjs[:0]
	for _, a := range adjs {
		if a.Delta == 0 {
			continue
		}
		if borrowingID != uuid.Nil {
			id := borrowingID
			a.BorrowingID = &id
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func reasonFor(before, after *model.Borrowing) inventoryModel.Reason {
	switch {
	case before == nil:
		return inventoryModel.ReasonBorrow
	case after == nil:
		return inventoryModel.ReasonBorrowDelete
	case before.Status == model.StatusBorrowed && after.Status == model.StatusReturned:
		return inventoryModel.ReasonReturn
	default:
		return inventoryModel.ReasonBorrowUpdate
	}
}
