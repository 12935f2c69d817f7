package shared

import "github.com/google/uuid"

// Asynq task types and queues shared by the API (producer) and the worker.
const (
	TypeInventoryStockChanged = "inventory:stock_changed"

	QueueInventory = "inventory"
	QueueDefault   = "default"
)

// StockChangedPayload is enqueued after a committed stock adjustment.
type StockChangedPayload struct {
	BookID uuid.UUID `json:"book_id"`
	Delta  int       `json:"delta"`
	Stock  int       `json:"stock"`
	Reason string    `json:"reason"`
}
