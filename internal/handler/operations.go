package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finboard/internal/repository"
	"finboard/internal/service"
)

type OperationsHandler struct {
	Journal *service.JournalService
}

func (h *OperationsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/operations")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
	g.PUT("/:id/movements", h.movements)
	g.POST("/:id/recalculate", h.recalculate)
}

// @Summary List operations
// @Tags operations
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Param status query string false "OPEN|CLOSED"
// @Param account_id query int false "account id"
// @Param asset_id query int false "asset id"
// @Param strategy_id query int false "strategy id"
// @Param since query string false "YYYY-MM-DD"
// @Param until query string false "YYYY-MM-DD"
// @Param order_by query string false "start_date|end_date|created_at"
// @Param asc query bool false "ascending order"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/operations [get]
func (h *OperationsHandler) list(c *gin.Context) {
	if h.Journal == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)
	var status *string
	if v := strQueryPtr(c, "status"); v != nil {
		s := strings.ToUpper(*v)
		status = &s
	}
	since, err := dateQuery(c, "since", time.UTC)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid since", nil)
		return
	}
	until, err := dateQuery(c, "until", time.UTC)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid until", nil)
		return
	}
	params := repository.ListOperationsParams{
		Limit:      limit,
		Offset:     offset,
		UserID:     userID(c),
		AccountID:  uint64QueryPtr(c, "account_id"),
		AssetID:    uint64QueryPtr(c, "asset_id"),
		StrategyID: uint64QueryPtr(c, "strategy_id"),
		Status:     status,
		Since:      since,
		Until:      until,
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"start_date": "start_date",
			"end_date":   "end_date",
			"created_at": "created_at",
		}),
		Asc: boolPtr(c.Query("asc") == "true"),
	}
	items, total, err := h.Journal.ListOperations(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Get operation
// @Tags operations
// @Param id path int true "operation id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/operations/{id} [get]
func (h *OperationsHandler) get(c *gin.Context) {
	if h.Journal == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Journal.GetOperation(c.Request.Context(), userID(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Create operation
// @Tags operations
// @Param body body service.OperationInput true "operation"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/operations [post]
func (h *OperationsHandler) create(c *gin.Context) {
	if h.Journal == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	var req service.OperationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Journal.CreateOperation(c.Request.Context(), userID(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update operation
// @Tags operations
// @Param id path int true "operation id"
// @Param body body service.OperationInput true "operation"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/operations/{id} [put]
func (h *OperationsHandler) update(c *gin.Context) {
	if h.Journal == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req service.OperationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Journal.UpdateOperation(c.Request.Context(), userID(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete operation
// @Tags operations
// @Param id path int true "operation id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/operations/{id} [delete]
func (h *OperationsHandler) delete(c *gin.Context) {
	if h.Journal == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := h.Journal.DeleteOperation(c.Request.Context(), userID(c), id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"id": id, "deleted": true}, nil)
}

// movements applies one batch of movement changes and returns the
// recalculated operation.
// @Summary Apply movement batch
// @Tags operations
// @Param id path int true "operation id"
// @Param body body service.MovementBatch true "movements to upsert and delete"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/operations/{id}/movements [put]
func (h *OperationsHandler) movements(c *gin.Context) {
	if h.Journal == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req service.MovementBatch
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Journal.ApplyMovements(c.Request.Context(), userID(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Recalculate operation state
// @Tags operations
// @Param id path int true "operation id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/operations/{id}/recalculate [post]
func (h *OperationsHandler) recalculate(c *gin.Context) {
	if h.Journal == nil {
		Error(c, http.StatusInternalServerError, "journal service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	state, err := h.Journal.Recalculate(c.Request.Context(), userID(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{
		"id":         id,
		"status":     state.Status,
		"start_date": state.StartDate,
		"end_date":   state.EndDate,
	}, nil)
}
