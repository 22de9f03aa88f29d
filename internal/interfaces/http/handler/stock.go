package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/stocksync"
	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

// StockHandler exposes location mappings and stock push operations
type StockHandler struct {
	BaseHandler
	stocks *appsync.StockSyncService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stocks *appsync.StockSyncService) *StockHandler {
	return &StockHandler{stocks: stocks}
}

// CreateMappingRequest ties a local inventory cell to a remote location
type CreateMappingRequest struct {
	ConnectorID      string `json:"connector_id" binding:"required,uuid"`
	MirrorProductID  string `json:"mirror_product_id" binding:"required,uuid"`
	LocalLocationID  string `json:"local_location_id" binding:"required,uuid"`
	RemoteLocationID string `json:"remote_location_id" binding:"required,uuid"`
}

// SetMappingActiveRequest toggles whether a mapping participates in pushes
type SetMappingActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SyncProductRequest pushes stock for every active mapping of a local product
type SyncProductRequest struct {
	ConnectorID    string `json:"connector_id" binding:"required,uuid"`
	LocalProductID string `json:"local_product_id" binding:"required,uuid"`
}

// MappingResponse is a location mapping
type MappingResponse struct {
	ID               string          `json:"id"`
	ConnectorID      string          `json:"connector_id"`
	MirrorProductID  string          `json:"mirror_product_id"`
	LocalProductID   string          `json:"local_product_id"`
	LocalLocationID  string          `json:"local_location_id"`
	RemoteLocationID string          `json:"remote_location_id"`
	IsActive         bool            `json:"is_active"`
	LastSyncedQty    decimal.Decimal `json:"last_synced_qty"`
	LastSyncAt       *time.Time      `json:"last_sync_at,omitempty"`
}

func toMappingResponse(m *stocksync.LocationMapping) MappingResponse {
	return MappingResponse{
		ID:               m.ID.String(),
		ConnectorID:      m.ConnectorID.String(),
		MirrorProductID:  m.MirrorProductID.String(),
		LocalProductID:   m.LocalProductID.String(),
		LocalLocationID:  m.LocalLocationID.String(),
		RemoteLocationID: m.RemoteLocationID.String(),
		IsActive:         m.IsActive,
		LastSyncedQty:    m.LastSyncedQty,
		LastSyncAt:       m.LastSyncAt,
	}
}

// SyncLogResponse is one audit record of a push attempt
type SyncLogResponse struct {
	ID           string          `json:"id"`
	ConnectorID  string          `json:"connector_id"`
	MappingID    string          `json:"mapping_id"`
	OldQty       decimal.Decimal `json:"old_qty"`
	NewQty       decimal.Decimal `json:"new_qty"`
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	SyncedAt     time.Time       `json:"synced_at"`
}

func toSyncLogResponse(l *stocksync.SyncLog) SyncLogResponse {
	return SyncLogResponse{
		ID:           l.ID.String(),
		ConnectorID:  l.ConnectorID.String(),
		MappingID:    l.MappingID.String(),
		OldQty:       l.OldQty,
		NewQty:       l.NewQty,
		Status:       string(l.Status),
		ErrorMessage: l.ErrorMessage,
		SyncedAt:     l.SyncedAt,
	}
}

// CreateMapping godoc
// @Summary      Create a location mapping
// @Tags         stock
// @Accept       json
// @Produce      json
// @Success      201 {object} APIResponse[MappingResponse]
// @Router       /stock/mappings [post]
func (h *StockHandler) CreateMapping(c *gin.Context) {
	var req CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	connectorID, _ := parseUUID(req.ConnectorID)
	mirrorProductID, _ := parseUUID(req.MirrorProductID)
	localLocationID, _ := parseUUID(req.LocalLocationID)
	remoteLocationID, _ := parseUUID(req.RemoteLocationID)

	mapping, err := h.stocks.CreateMapping(c.Request.Context(), connectorID, mirrorProductID, localLocationID, remoteLocationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toMappingResponse(mapping))
}

// ListMappings godoc
// @Summary      List location mappings
// @Tags         stock
// @Produce      json
// @Success      200 {object} APIResponse[[]MappingResponse]
// @Router       /stock/mappings [get]
func (h *StockHandler) ListMappings(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := stocksync.MappingFilter{
		ActiveOnly: c.Query("active_only") == "true",
		Limit:      req.PageSize,
		Offset:     req.Offset(),
	}
	if raw := c.Query("connector_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			h.BadRequest(c, "invalid connector_id")
			return
		}
		filter.ConnectorID = &id
	}
	if raw := c.Query("local_product_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			h.BadRequest(c, "invalid local_product_id")
			return
		}
		filter.LocalProductID = &id
	}

	mappings, total, err := h.stocks.ListMappings(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MappingResponse, 0, len(mappings))
	for _, m := range mappings {
		items = append(items, toMappingResponse(m))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// SetMappingActive godoc
// @Summary      Activate or deactivate a mapping
// @Tags         stock
// @Accept       json
// @Produce      json
// @Success      204
// @Router       /stock/mappings/{id}/active [put]
func (h *StockHandler) SetMappingActive(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req SetMappingActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if err := h.stocks.SetMappingActive(c.Request.Context(), id, *req.Active); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// DeleteMapping godoc
// @Summary      Delete a mapping
// @Tags         stock
// @Success      204
// @Router       /stock/mappings/{id} [delete]
func (h *StockHandler) DeleteMapping(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.stocks.DeleteMapping(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SyncMapping godoc
// @Summary      Push stock for one mapping now
// @Tags         stock
// @Produce      json
// @Success      204
// @Failure      422 {object} ErrorResponse
// @Router       /stock/mappings/{id}/sync [post]
func (h *StockHandler) SyncMapping(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.stocks.SyncMapping(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SyncProduct godoc
// @Summary      Push stock for every active mapping of a local product
// @Tags         stock
// @Accept       json
// @Produce      json
// @Success      204
// @Router       /stock/sync [post]
func (h *StockHandler) SyncProduct(c *gin.Context) {
	var req SyncProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	connectorID, _ := parseUUID(req.ConnectorID)
	localProductID, _ := parseUUID(req.LocalProductID)

	if err := h.stocks.SyncProduct(c.Request.Context(), connectorID, localProductID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListLogs godoc
// @Summary      List stock push audit logs
// @Tags         stock
// @Produce      json
// @Success      200 {object} APIResponse[[]SyncLogResponse]
// @Router       /stock/logs [get]
func (h *StockHandler) ListLogs(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := stocksync.LogFilter{
		Limit:  req.PageSize,
		Offset: req.Offset(),
	}
	if raw := c.Query("connector_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			h.BadRequest(c, "invalid connector_id")
			return
		}
		filter.ConnectorID = &id
	}
	if raw := c.Query("mapping_id"); raw != "" {
		id, err := parseUUID(raw)
		if err != nil {
			h.BadRequest(c, "invalid mapping_id")
			return
		}
		filter.MappingID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status := stocksync.SyncStatus(raw)
		if status != stocksync.SyncSuccess && status != stocksync.SyncFailed {
			h.BadRequest(c, "invalid status")
			return
		}
		filter.Status = &status
	}

	logs, total, err := h.stocks.ListLogs(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]SyncLogResponse, 0, len(logs))
	for _, l := range logs {
		items = append(items, toSyncLogResponse(l))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// RegisterRoutes registers stock routes
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	stock := rg.Group("/stock")
	{
		stock.POST("/mappings", h.CreateMapping)
		stock.GET("/mappings", h.ListMappings)
		stock.PUT("/mappings/:id/active", h.SetMappingActive)
		stock.DELETE("/mappings/:id", h.DeleteMapping)
		stock.POST("/mappings/:id/sync", h.SyncMapping)
		stock.POST("/sync", h.SyncProduct)
		stock.GET("/logs", h.ListLogs)
	}
}
