package handler

import (
	"net/http"
	"time"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/domains/borrowing/service"
	"library-backend/internal/shared/access"
	"library-backend/internal/shared/apperror"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type BorrowingHandler struct {
	service service.ServiceInterface
}

func NewBorrowingHandler(s service.ServiceInterface) *BorrowingHandler {
	return &BorrowingHandler{service: s}
}

// ========================================
// LIFECYCLE
// ========================================

// Create handles POST /borrowings
func (h *BorrowingHandler) Create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req model.CreateBorrowingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	b, err := h.service.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, b)
}

// Update handles PUT /borrowings/:id
func (h *BorrowingHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid borrowing ID")
	if !ok {
		return
	}

	var req model.UpdateBorrowingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}

	b, err := h.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, b)
}

// Delete handles DELETE /borrowings/:id
func (h *BorrowingHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid borrowing ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ========================================
// QUERIES
// ========================================

// List handles GET /borrowings?client_id=&book_id=&page=&limit=
func (h *BorrowingHandler) List(c *gin.Context) {
	req, ok := bindListQuery(c)
	if !ok {
		return
	}
	h.list(c, req)
}

// ListForBook handles GET /books/:id/borrowings
func (h *BorrowingHandler) ListForBook(c *gin.Context) {
	bookID, ok := parseID(c, "id", "invalid book ID")
	if !ok {
		return
	}
	req, ok := bindListQuery(c)
	if !ok {
		return
	}
	req.Filter.BookID = &bookID
	h.list(c, req)
}

// ListForClient handles GET /clients/:id/borrowings
func (h *BorrowingHandler) ListForClient(c *gin.Context) {
	clientID, ok := parseID(c, "id", "invalid client ID")
	if !ok {
		return
	}
	req, ok := bindListQuery(c)
	if !ok {
		return
	}
	req.Filter.ClientID = &clientID
	h.list(c, req)
}

func (h *BorrowingHandler) list(c *gin.Context, req model.ListBorrowingsRequest) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	resp, err := h.service.List(c.Request.Context(), actor, req)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, resp.Records, &response.Meta{
		Page:       resp.Pagination.CurrentPage,
		Limit:      resp.Pagination.Limit,
		Total:      resp.Pagination.Total,
		TotalPages: resp.Pagination.TotalPages,
	})
}

// Get handles GET /borrowings/:id
func (h *BorrowingHandler) Get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid borrowing ID")
	if !ok {
		return
	}

	view, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// Details handles GET /borrowings/:id/details
func (h *BorrowingHandler) Details(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id", "invalid borrowing ID")
	if !ok {
		return
	}

	details, err := h.service.Details(c.Request.Context(), actor, id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, details)
}

// Export handles GET /borrowings/export
func (h *BorrowingHandler) Export(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	req, ok := bindListQuery(c)
	if !ok {
		return
	}

	f, err := h.service.Export(c.Request.Context(), actor, req.Filter)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			logger.Error("Failed to close export workbook", err)
		}
	}()

	filename := "borrowings_" + time.Now().Format("20060102_150405") + ".xlsx"
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		logger.Error("Failed to write borrowing export", err)
	}
}

func requireActor(c *gin.Context) (access.Actor, bool) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return access.Actor{}, false
	}
	return actor, true
}

func parseID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.BadRequest(c, message)
		return uuid.Nil, false
	}
	return id, true
}

func bindListQuery(c *gin.Context) (model.ListBorrowingsRequest, bool) {
	var q model.ListBorrowingsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return model.ListBorrowingsRequest{}, false
	}

	req, err := q.ToRequest()
	if err != nil {
		response.HandleError(c, apperror.Validation(err))
		return model.ListBorrowingsRequest{}, false
	}
	return req, true
}
