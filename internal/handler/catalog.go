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

type CatalogHandler struct {
	Discovery *service.DiscoveryService
	Query     *service.CatalogQueryService
	Logger    *zap.Logger
}

func (h *CatalogHandler) Register(r *gin.Engine) {
	group := r.Group("/api/catalog")
	group.POST("/discover", h.discover)
	group.GET("/sync-state", h.listSyncState)
	group.GET("/vendors", h.listVendors)
	group.GET("/products", h.listProducts)
	group.GET("/endpoints", h.listEndpoints)
	group.GET("/channels", h.listChannels)
}

// @Summary Run vendor discovery
// @Tags catalog
// @Param vendor query string false "vendor name; empty runs all registered vendors"
// @Param dry_run query bool false "evaluate without writing"
// @Success 200 {object} apiResponse
// @Router /api/catalog/discover [post]
func (h *CatalogHandler) discover(c *gin.Context) {
	if h.Discovery == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	vendor := strings.TrimSpace(c.Query("vendor"))
	dryRun := boolQueryDefault(c, "dry_run", false)

	if vendor == "" {
		results := h.Discovery.DiscoverAll(c.Request.Context(), nil, dryRun)
		Ok(c, results, nil)
		return
	}
	result, err := h.Discovery.Discover(c.Request.Context(), vendor, dryRun)
	if err != nil {
		if h.Logger != nil {
			h.Logger.Warn("discovery failed", zap.String("vendor", vendor), zap.Error(err))
		}
		ServiceError(c, err)
		return
	}
	Ok(c, result, nil)
}

// @Summary List discovery sync states
// @Tags catalog
// @Success 200 {object} apiResponse
// @Router /api/catalog/sync-state [get]
func (h *CatalogHandler) listSyncState(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	states, err := h.Query.ListSyncStates(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, states, nil)
}

// @Summary List vendors
// @Tags catalog
// @Success 200 {object} apiResponse
// @Router /api/catalog/vendors [get]
func (h *CatalogHandler) listVendors(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	vendors, err := h.Query.ListVendors(c.Request.Context())
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, vendors, map[string]any{"total": len(vendors)})
}

// @Summary List products
// @Tags catalog
// @Param vendor_id query int false "vendor id"
// @Param status query string false "online|offline|delisted"
// @Param symbol query string false "exact symbol"
// @Param limit query int false "limit"
// @Param offset query int false "offset"
// @Param order_by query string false "symbol|last_seen_at"
// @Param asc query bool false "ascending"
// @Success 200 {object} apiResponse
// @Router /api/catalog/products [get]
func (h *CatalogHandler) listProducts(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	params := repository.ListProductsParams{
		Limit:    intQuery(c, "limit", 0),
		Offset:   intQuery(c, "offset", 0),
		VendorID: uintQueryPtr(c, "vendor_id"),
		Status:   strQueryPtr(c, "status"),
		Symbol:   strQueryPtr(c, "symbol"),
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"symbol":       "symbol",
			"last_seen_at": "last_seen_at",
		}),
		Asc: boolQueryPtr(c, "asc"),
	}
	result, err := h.Query.ListProducts(c.Request.Context(), params)
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

// @Summary List REST endpoints for a vendor
// @Tags catalog
// @Param vendor query string true "vendor name"
// @Success 200 {object} apiResponse
// @Router /api/catalog/endpoints [get]
func (h *CatalogHandler) listEndpoints(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	vendor := strings.TrimSpace(c.Query("vendor"))
	if vendor == "" {
		Error(c, http.StatusBadRequest, "vendor is required", nil)
		return
	}
	endpoints, err := h.Query.ListEndpoints(c.Request.Context(), vendor)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, endpoints, map[string]any{"total": len(endpoints)})
}

// @Summary List WebSocket channels for a vendor
// @Tags catalog
// @Param vendor query string true "vendor name"
// @Success 200 {object} apiResponse
// @Router /api/catalog/channels [get]
func (h *CatalogHandler) listChannels(c *gin.Context) {
	if h.Query == nil {
		Error(c, http.StatusInternalServerError, "service unavailable", nil)
		return
	}
	vendor := strings.TrimSpace(c.Query("vendor"))
	if vendor == "" {
		Error(c, http.StatusBadRequest, "vendor is required", nil)
		return
	}
	channels, err := h.Query.ListChannels(c.Request.Context(), vendor)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Ok(c, channels, map[string]any{"total": len(channels)})
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func uintQueryPtr(c *gin.Context, key string) *uint64 {
	if val := c.Query(key); val != "" {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			return &i
		}
	}
	return nil
}

func strQueryPtr(c *gin.Context, key string) *string {
	if val := strings.TrimSpace(c.Query(key)); val != "" {
		return &val
	}
	return nil
}

func boolQueryDefault(c *gin.Context, key string, def bool) bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return def
}

func boolQueryPtr(c *gin.Context, key string) *bool {
	if val := c.Query(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return &b
		}
	}
	return nil
}

func parseOrder(value string, allow map[string]string) string {
	key := strings.TrimSpace(strings.ToLower(value))
	if key == "" {
		return ""
	}
	if mapped, ok := allow[key]; ok {
		return mapped
	}
	return ""
}
