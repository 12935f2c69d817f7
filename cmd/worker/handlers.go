package main

import (
	inventoryJob "library-backend/internal/domains/inventory/job"
	"library-backend/internal/shared"
	"library-backend/pkg/container"

	"github.com/hibiken/asynq"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	inventorySync *inventoryJob.InventorySyncHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		inventorySync: inventoryJob.NewInventorySyncHandler(c.BookService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeInventoryStockChanged, h.inventorySync.ProcessTask)
}
