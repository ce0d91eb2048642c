package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"exchangecatalog/internal/service"
)

type CoverageHandler struct {
	Coverage *service.CoverageService
	Logger   *zap.Logger
}

func (h *CoverageHandler) Register(r *gin.Engine) {
	group := r.Group("/api/coverage")
	group.GET("", h.coverage)
	group.GET("/leaders", h.leaders)
	r.GET("/api/stats", h.stats)
}

// @Summary Mapping coverage for one vendor and entity type
// @Tags coverage
// @Param vendor query string true "vendor name"
// @Param entity query string false "entity type, default ticker"
// @Success 200 {object} apiResponse
// @Router /api/coverage [get]
func (h *CoverageHandler) coverage(c *gin.Context) {
	if h.Coverage == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	vendor := strings.TrimSpace(c.Query("vendor"))
	if vendor == "" {
		Error(c, http.StatusBadRequest, "vendor is required", nil)
		return
	}
	entity := strings.TrimSpace(c.Query("entity"))
	if entity == "" {
		entity = "ticker"
	}
	summary, err := h.Coverage.Coverage(c.Request.Context(), vendor, entity)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, summary, nil)
}

// @Summary Ticker coverage leaderboard
// @Tags coverage
// @Param limit query int false "max vendors, default 5"
// @Success 200 {object} apiResponse
// @Router /api/coverage/leaders [get]
func (h *CoverageHandler) leaders(c *gin.Context) {
	if h.Coverage == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	leaders, err := h.Coverage.Leaders(c.Request.Context(), intQuery(c, "limit", 0))
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("leaders failed", zap.Error(err))
		}
		ServiceError(c, err)
		return
	}
	Ok(c, leaders, map[string]any{"total": len(leaders)})
}

// @Summary Aggregate catalog statistics
// @Tags coverage
// @Success 200 {object} apiResponse
// @Router /api/stats [get]
func (h *CoverageHandler) stats(c *gin.Context) {
	if h.Coverage == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	stats, err := h.Coverage.Stats(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, stats, nil)
}
