package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"finboard/internal/repository"
	"finboard/internal/service"
)

const defaultDashboardDays = 30

type AnalyticsHandler struct {
	Analytics *service.AnalyticsService
	// Now is overridden in tests.
	Now func() time.Time
}

func (h *AnalyticsHandler) Register(r *gin.Engine) {
	g := r.Group("/api/v1/analytics")
	g.GET("/dashboard", h.dashboard)
	g.GET("/balances", h.balances)
	g.GET("/snapshots", h.snapshots)
}

func (h *AnalyticsHandler) today(loc *time.Location) time.Time {
	now := time.Now()
	if h.Now != nil {
		now = h.Now()
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dashboard takes an inclusive start/end date pair. Without dates it covers
// the last 30 days up to today.
// @Summary Performance dashboard
// @Tags analytics
// @Param start query string false "YYYY-MM-DD"
// @Param end query string false "YYYY-MM-DD"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/analytics/dashboard [get]
func (h *AnalyticsHandler) dashboard(c *gin.Context) {
	if h.Analytics == nil {
		Error(c, http.StatusInternalServerError, "analytics service unavailable", nil)
		return
	}
	loc := h.Analytics.Location()
	start, err := dateQuery(c, "start", loc)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD", nil)
		return
	}
	end, err := dateQuery(c, "end", loc)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD", nil)
		return
	}
	last := h.today(loc)
	if end != nil {
		last = *end
	}
	first := last.AddDate(0, 0, -(defaultDashboardDays - 1))
	if start != nil {
		first = *start
	}
	if last.Before(first) {
		Error(c, http.StatusBadRequest, "end must not be before start", nil)
		return
	}
	report, err := h.Analytics.Dashboard(c.Request.Context(), userID(c), first, last.AddDate(0, 0, 1))
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, report, map[string]any{
		"start":    first.Format(dateLayout),
		"end":      last.Format(dateLayout),
		"timezone": loc.String(),
	})
}

// @Summary Account balance series
// @Tags analytics
// @Param through query string false "YYYY-MM-DD"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/analytics/balances [get]
func (h *AnalyticsHandler) balances(c *gin.Context) {
	if h.Analytics == nil {
		Error(c, http.StatusInternalServerError, "analytics service unavailable", nil)
		return
	}
	loc := h.Analytics.Location()
	through, err := dateQuery(c, "through", loc)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid through, expected YYYY-MM-DD", nil)
		return
	}
	day := h.today(loc)
	if through != nil {
		day = *through
	}
	view, err := h.Analytics.Balances(c.Request.Context(), userID(c), day)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, view, nil)
}

// @Summary List performance snapshots
// @Tags analytics
// @Param since query string false "YYYY-MM-DD"
// @Param until query string false "YYYY-MM-DD"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/analytics/snapshots [get]
func (h *AnalyticsHandler) snapshots(c *gin.Context) {
	if h.Analytics == nil {
		Error(c, http.StatusInternalServerError, "analytics service unavailable", nil)
		return
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
	limit := intQuery(c, "limit", 90)
	offset := intQuery(c, "offset", 0)
	items, err := h.Analytics.Snapshots(c.Request.Context(), repository.ListSnapshotsParams{
		Limit:   limit,
		Offset:  offset,
		UserID:  userID(c),
		Since:   since,
		Until:   until,
		OrderBy: "snapshot_date",
		Asc:     boolPtr(true),
	})
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"limit": limit, "offset": offset})
}
