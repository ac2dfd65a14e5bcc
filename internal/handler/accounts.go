package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finboard/internal/repository"
	"finboard/internal/service"
)

type AccountsHandler struct {
	Accounts *service.AccountService
}

func (h *AccountsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/accounts")
	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.get)
	g.DELETE("/:id", h.delete)
	g.POST("/:id/transactions", h.addTransaction)

	r.DELETE("/api/v1/transactions/:id", h.deleteTransaction)
}

// @Summary List accounts
// @Tags accounts
// @Param limit query int false "page size"
// @Param offset query int false "offset"
// @Param active query bool false "filter by active flag"
// @Param order_by query string false "name|created_at|id"
// @Param desc query bool false "descending order"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/accounts [get]
func (h *AccountsHandler) list(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "account service unavailable", nil)
		return
	}
	limit := intQuery(c, "limit", 100)
	offset := intQuery(c, "offset", 0)
	params := repository.ListAccountsParams{
		Limit:    limit,
		Offset:   offset,
		UserID:   userID(c),
		IsActive: boolQueryPtr(c, "active"),
		OrderBy:  parseOrder(c.Query("order_by"), map[string]string{"name": "name", "created_at": "created_at", "id": "id"}),
		Asc:      boolPtr(c.Query("desc") != "true"),
	}
	items, total, err := h.Accounts.ListAccounts(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

// @Summary Create account
// @Tags accounts
// @Param body body service.AccountInput true "account"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/accounts [post]
func (h *AccountsHandler) create(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "account service unavailable", nil)
		return
	}
	var req service.AccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Accounts.CreateAccount(c.Request.Context(), userID(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// get returns the account with its current balance and replayed history.
// @Summary Account ledger
// @Tags accounts
// @Param id path int true "account id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/accounts/{id} [get]
func (h *AccountsHandler) get(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "account service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	item, err := h.Accounts.Ledger(c.Request.Context(), userID(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete account
// @Tags accounts
// @Param id path int true "account id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/accounts/{id} [delete]
func (h *AccountsHandler) delete(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "account service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := h.Accounts.DeleteAccount(c.Request.Context(), userID(c), id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"id": id, "deleted": true}, nil)
}

// @Summary Add account transaction
// @Tags accounts
// @Param id path int true "account id"
// @Param body body service.TransactionInput true "transaction"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/accounts/{id}/transactions [post]
func (h *AccountsHandler) addTransaction(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "account service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	var req service.TransactionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Accounts.AddTransaction(c.Request.Context(), userID(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete account transaction
// @Tags accounts
// @Param id path int true "transaction id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/transactions/{id} [delete]
func (h *AccountsHandler) deleteTransaction(c *gin.Context) {
	if h.Accounts == nil {
		Error(c, http.StatusInternalServerError, "account service unavailable", nil)
		return
	}
	id := uint64QueryParam(c, "id")
	if id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	if err := h.Accounts.DeleteTransaction(c.Request.Context(), userID(c), id); err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{"id": id, "deleted": true}, nil)
}
