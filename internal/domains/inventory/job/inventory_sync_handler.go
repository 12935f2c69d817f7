package job

import (
	"context"
	"encoding/json"
	"fmt"

	"library-backend/internal/shared"
	"library-backend/pkg/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// BookCacheRefresher reloads a book from the database into the read cache.
type BookCacheRefresher interface {
	RefreshCache(ctx context.Context, bookID uuid.UUID) error
}

// InventorySyncHandler keeps the catalog cache in line with committed stock.
type InventorySyncHandler struct {
	books BookCacheRefresher
}

func NewInventorySyncHandler(books BookCacheRefresher) *InventorySyncHandler {
	return &InventorySyncHandler{books: books}
}

func (h *InventorySyncHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.StockChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		// a corrupt payload will not get better on retry
		return fmt.Errorf("unmarshal stock changed payload: %v: %w", err, asynq.SkipRetry)
	}

	if payload.BookID == uuid.Nil {
		return fmt.Errorf("stock changed payload without book_id: %w", asynq.SkipRetry)
	}

	if err := h.books.RefreshCache(ctx, payload.BookID); err != nil {
		logger.ErrorWithFields("InventorySync: refresh failed", err, map[string]interface{}{
			"book_id": payload.BookID.String(),
		})
		return err
	}

	logger.Debug("InventorySync: book cache refreshed", map[string]interface{}{
		"book_id": payload.BookID.String(),
		"stock":   payload.Stock,
		"reason":  payload.Reason,
	})
	return nil
}
