package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"finboard/internal/fx"
)

type FXHandler struct {
	FX *fx.Converter
}

func (h *FXHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/fx/rate", h.rate)
}

// rate returns the sell rate of currency in the base currency for date,
// falling back to the closest earlier quote.
// @Summary Exchange rate
// @Tags fx
// @Param currency query string true "ISO currency code"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/v1/fx/rate [get]
func (h *FXHandler) rate(c *gin.Context) {
	if h.FX == nil {
		Error(c, http.StatusInternalServerError, "fx converter unavailable", nil)
		return
	}
	currency := strings.ToUpper(strings.TrimSpace(c.Query("currency")))
	if len(currency) != 3 {
		Error(c, http.StatusBadRequest, "currency must be a 3 letter code", nil)
		return
	}
	date, err := dateQuery(c, "date", time.UTC)
	if err != nil {
		Error(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD", nil)
		return
	}
	day := time.Now().UTC()
	if date != nil {
		day = *date
	}
	rate, err := h.FX.ExchangeRate(c.Request.Context(), currency, day)
	if err != nil {
		Fail(c, err)
		return
	}
	Ok(c, map[string]any{
		"currency": currency,
		"base":     h.FX.BaseCurrency(),
		"date":     day.Format(dateLayout),
		"rate":     rate,
	}, nil)
}
