package model

import (
	"library-backend/internal/shared/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// AdjustStockRequest is the body of a manual restock or write-off.
type AdjustStockRequest struct {
	Delta int    `json:"delta"`
	Note  string `json:"note"`
}

func (r AdjustStockRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Delta,
			validation.Required.Error("delta must be a non-zero integer"),
			validation.Min(-MaxStock),
			validation.Max(MaxStock),
		),
		validation.Field(&r.Note, validation.Length(0, 500)),
	)
}

type ListMovementsRequest struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type ListMovementsResponse struct {
	Movements  []StockMovement  `json:"movements"`
	Pagination utils.Pagination `json:"pagination"`
}
