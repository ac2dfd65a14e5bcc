package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"finboard/internal/repository"
	"finboard/internal/service"
)

// ReferenceHandler serves the shared catalogue of assets, strategies and tags.
type ReferenceHandler struct {
	Repo      repository.Repository
	Reference *service.ReferenceService
}

func (h *ReferenceHandler) Register(r *gin.Engine) {
	assets := r.Group("/api/v1/assets")
	assets.GET("", h.listAssets)
	assets.POST("", h.createAsset)
	assets.DELETE("/:id", h.deleteBy(h.deleteAsset))

	strategies := r.Group("/api/v1/strategies")
	strategies.GET("", h.listStrategies)
	strategies.POST("", h.createStrategy)
	strategies.DELETE("/:id", h.deleteBy(h.deleteStrategy))

	tags := r.Group("/api/v1/tags")
	tags.GET("", h.listTags)
	tags.POST("", h.createTag)
	tags.DELETE("/:id", h.deleteBy(h.deleteTag))
}

func (h *ReferenceHandler) listParams(c *gin.Context, orders map[string]string) repository.ListReferenceParams {
	return repository.ListReferenceParams{
		Limit:   intQuery(c, "limit", 200),
		Offset:  intQuery(c, "offset", 0),
		Query:   strQueryPtr(c, "q"),
		OrderBy: parseOrder(c.Query("order_by"), orders),
		Asc:     boolPtr(c.Query("desc") != "true"),
	}
}

// @Summary List assets
// @Tags reference
// @Param q query string false "search"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param order_by query string false "ticker|market|name"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/assets [get]
func (h *ReferenceHandler) listAssets(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := h.listParams(c, map[string]string{"ticker": "ticker", "market": "market", "name": "name"})
	items, err := h.Repo.ListAssets(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"limit": params.Limit, "offset": params.Offset})
}

// @Summary List strategies
// @Tags reference
// @Param q query string false "search"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/strategies [get]
func (h *ReferenceHandler) listStrategies(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := h.listParams(c, map[string]string{"name": "name", "created_at": "created_at"})
	items, err := h.Repo.ListStrategies(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"limit": params.Limit, "offset": params.Offset})
}

// @Summary List tags
// @Tags reference
// @Param q query string false "search"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/tags [get]
func (h *ReferenceHandler) listTags(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	params := h.listParams(c, map[string]string{"name": "name"})
	items, err := h.Repo.ListTags(c.Request.Context(), params)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"limit": params.Limit, "offset": params.Offset})
}

// @Summary Create asset
// @Tags reference
// @Param body body service.AssetInput true "asset"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/assets [post]
func (h *ReferenceHandler) createAsset(c *gin.Context) {
	if h.Reference == nil {
		Error(c, http.StatusInternalServerError, "reference service unavailable", nil)
		return
	}
	var req service.AssetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Reference.CreateAsset(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Create strategy
// @Tags reference
// @Param body body service.NamedInput true "strategy"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/strategies [post]
func (h *ReferenceHandler) createStrategy(c *gin.Context) {
	if h.Reference == nil {
		Error(c, http.StatusInternalServerError, "reference service unavailable", nil)
		return
	}
	var req service.NamedInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Reference.CreateStrategy(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Create tag
// @Tags reference
// @Param body body service.NamedInput true "tag"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/tags [post]
func (h *ReferenceHandler) createTag(c *gin.Context) {
	if h.Reference == nil {
		Error(c, http.StatusInternalServerError, "reference service unavailable", nil)
		return
	}
	var req service.NamedInput
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid body", nil)
		return
	}
	item, err := h.Reference.CreateTag(c.Request.Context(), req)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete asset
// @Tags reference
// @Param id path int true "asset id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/assets/{id} [delete]
func (h *ReferenceHandler) deleteAsset(ctx context.Context, id uint64) error {
	return h.Reference.DeleteAsset(ctx, id)
}

// @Summary Delete strategy
// @Tags reference
// @Param id path int true "strategy id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/strategies/{id} [delete]
func (h *ReferenceHandler) deleteStrategy(ctx context.Context, id uint64) error {
	return h.Reference.DeleteStrategy(ctx, id)
}

// @Summary Delete tag
// @Tags reference
// @Param id path int true "tag id"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/tags/{id} [delete]
func (h *ReferenceHandler) deleteTag(ctx context.Context, id uint64) error {
	return h.Reference.DeleteTag(ctx, id)
}

func (h *ReferenceHandler) deleteBy(fn func(context.Context, uint64) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h.Reference == nil {
			Error(c, http.StatusInternalServerError, "reference service unavailable", nil)
			return
		}
		id := uint64QueryParam(c, "id")
		if id == 0 {
			Error(c, http.StatusBadRequest, "invalid id", nil)
			return
		}
		if err := fn(c.Request.Context(), id); err != nil {
			Fail(c, err)
			return
		}
		Ok(c, map[string]any{"id": id, "deleted": true}, nil)
	}
}
