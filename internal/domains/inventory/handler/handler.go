package handler

import (
	"net/http"

	"library-backend/internal/domains/inventory/model"
	"library-backend/internal/domains/inventory/service"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(svc service.ServiceInterface) *Handler {
	return &Handler{service: svc}
}

// AdjustStock handles POST /books/:id/stock-adjustments
func (h *Handler) AdjustStock(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	var req model.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(c, apperror.Validation(err))
		return
	}

	adj := model.Adjustment{
		BookID: bookID,
		Delta:  req.Delta,
		Reason: model.ReasonManual,
		Note:   req.Note,
	}
	if actor, ok := middleware.ActorFromContext(c); ok {
		adj.ActorID = &actor.ID
	}

	result, err := h.service.AdjustStock(c.Request.Context(), adj)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// ListMovements handles GET /books/:id/stock-movements
func (h *Handler) ListMovements(c *gin.Context) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	var req model.ListMovementsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	resp, err := h.service.ListMovements(c.Request.Context(), bookID, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, resp.Movements, &response.Meta{
		Page:       resp.Pagination.CurrentPage,
		Limit:      resp.Pagination.Limit,
		Total:      resp.Pagination.Total,
		TotalPages: resp.Pagination.TotalPages,
	})
}
