package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"exchangecatalog/internal/repository"
	"exchangecatalog/internal/service"
)

type MappingHandler struct {
	Mappings *service.MappingService
	Query    *service.CatalogQueryService
	Logger   *zap.Logger
}

func (h *MappingHandler) Register(r *gin.Engine) {
	group := r.Group("/api/mappings")
	group.POST("", h.registerBatch)
	group.GET("", h.listMappings)
	group.GET("/resolve", h.resolve)
	group.POST("/:id/activate", h.activate)
	group.POST("/:id/deactivate", h.deactivate)
}

// @Summary Register field mappings for a vendor
// @Tags mappings
// @Param vendor query string true "vendor name"
// @Param dry_run query bool false "evaluate without writing"
// @Param body body []service.MappingInput true "mappings to register"
// @Success 200 {object} apiResponse
// @Router /api/mappings [post]
func (h *MappingHandler) registerBatch(c *gin.Context) {
	if h.Mappings == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	vendor := strings.TrimSpace(c.Query("vendor"))
	if vendor == "" {
		Error(c, http.StatusBadRequest, "vendor is required", nil)
		return
	}
	dryRun := boolQueryDefault(c, "dry_run", false)

	var inputs []service.MappingInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		Error(c, http.StatusBadRequest, "invalid body: "+err.Error(), nil)
		return
	}
	result, err := h.Mappings.RegisterBatch(c.Request.Context(), vendor, inputs, dryRun)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("mapping batch failed", zap.String("vendor", vendor), zap.Error(err))
		}
		ServiceError(c, err)
		return
	}
	Ok(c, result, nil)
}

// @Summary List field mappings
// @Tags mappings
// @Param vendor_id query int false "vendor id"
// @Param entity query string false "entity type"
// @Param source query string false "rest|websocket"
// @Param active query bool false "active only"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Success 200 {object} apiResponse
// @Router /api/mappings [get]
func (h *MappingHandler) listMappings(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params := repository.ListMappingsParams{
		Limit:      intQuery(c, "limit", 0),
		Offset:     intQuery(c, "offset", 0),
		VendorID:   uintQueryPtr(c, "vendor_id"),
		EntityType: strQueryPtr(c, "entity"),
		SourceType: strQueryPtr(c, "source"),
		ActiveOnly: boolQueryDefault(c, "active", false),
	}
	result, err := h.Query.ListMappings(c.Request.Context(), params)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, result.Items, map[string]any{
		"total":  result.Total,
		"limit":  params.Limit,
		"offset": params.Offset,
	})
}

// @Summary Resolve winning mappings per canonical field
// @Tags mappings
// @Param vendor query string true "vendor name"
// @Param entity query string true "entity type (e.g. ticker)"
// @Param source query string true "rest|websocket"
// @Success 200 {object} apiResponse
// @Router /api/mappings/resolve [get]
func (h *MappingHandler) resolve(c *gin.Context) {
	if h.Mappings == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	vendor := strings.TrimSpace(c.Query("vendor"))
	entity := strings.TrimSpace(c.Query("entity"))
	source := strings.TrimSpace(c.Query("source"))
	if vendor == "" || entity == "" || source == "" {
		Error(c, http.StatusBadRequest, "vendor, entity and source are required", nil)
		return
	}
	resolution, err := h.Mappings.Resolve(c.Request.Context(), vendor, entity, source)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, resolution, nil)
}

// @Summary Activate a mapping
// @Tags mappings
// @Param id path int true "mapping id"
// @Success 200 {object} apiResponse
// @Router /api/mappings/{id}/activate [post]
func (h *MappingHandler) activate(c *gin.Context) {
	h.setActive(c, true)
}

// @Summary Deactivate a mapping
// @Tags mappings
// @Param id path int true "mapping id"
// @Success 200 {object} apiResponse
// @Router /api/mappings/{id}/deactivate [post]
func (h *MappingHandler) deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *MappingHandler) setActive(c *gin.Context, active bool) {
	if h.Mappings == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid mapping id", nil)
		return
	}
	if err := h.Mappings.SetActive(c.Request.Context(), id, active); err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, gin.H{"mapping_id": id, "is_active": active}, nil)
}
