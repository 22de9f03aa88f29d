package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

// OrderHandler exposes order mirrors and their conversion to local orders
type OrderHandler struct {
	BaseHandler
	orders     *appsync.OrderService
	connectors *appsync.ConnectorService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orders *appsync.OrderService, connectors *appsync.ConnectorService) *OrderHandler {
	return &OrderHandler{
		orders:     orders,
		connectors: connectors,
	}
}

// FetchOrderRequest pulls one order from the platform by its remote id
type FetchOrderRequest struct {
	ConnectorID   string `json:"connector_id" binding:"required,uuid"`
	RemoteOrderID string `json:"remote_order_id" binding:"required"`
}

// OrderResponse is a mirrored remote order
type OrderResponse struct {
	ID             string          `json:"id"`
	ConnectorID    string          `json:"connector_id"`
	RemoteID       string          `json:"remote_id"`
	OrderCode      string          `json:"order_code,omitempty"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status,omitempty"`
	PaymentMethod  string          `json:"payment_method,omitempty"`
	CustomerName   string          `json:"customer_name,omitempty"`
	CustomerEmail  string          `json:"customer_email,omitempty"`
	CustomerMobile string          `json:"customer_mobile,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	ShippingTotal  decimal.Decimal `json:"shipping_total"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency,omitempty"`
	LocalOrderRef  string          `json:"local_order_ref,omitempty"`
	OrderedAt      *time.Time      `json:"ordered_at,omitempty"`
	LastImportAt   time.Time       `json:"last_import_at"`
}

func toOrderResponse(o *ordersync.RemoteOrder) OrderResponse {
	return OrderResponse{
		ID:             o.ID.String(),
		ConnectorID:    o.ConnectorID.String(),
		RemoteID:       o.RemoteID,
		OrderCode:      o.OrderCode,
		Status:         string(o.Status),
		PaymentStatus:  o.PaymentStatus,
		PaymentMethod:  o.PaymentMethod,
		CustomerName:   o.CustomerName,
		CustomerEmail:  o.CustomerEmail,
		CustomerMobile: o.CustomerMobile,
		Subtotal:       o.Subtotal,
		ShippingTotal:  o.ShippingTotal,
		Total:          o.Total,
		Currency:       o.Currency,
		LocalOrderRef:  o.LocalOrderRef,
		OrderedAt:      o.OrderedAt,
		LastImportAt:   o.LastImportAt,
	}
}

// List godoc
// @Summary      List mirrored orders
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[[]OrderResponse]
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ordersync.OrderFilter{
		Search: req.Search,
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
	if raw := c.Query("status"); raw != "" {
		status := ordersync.Status(raw)
		if !status.IsValid() {
			h.BadRequest(c, "invalid status")
			return
		}
		filter.Status = &status
	}

	orders, total, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		items = append(items, toOrderResponse(o))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Get godoc
// @Summary      Get one mirrored order
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// Fetch godoc
// @Summary      Pull one order from the platform by remote id
// @Tags         orders
// @Accept       json
// @Produce      json
// @Success      200 {object} APIResponse[OrderResponse]
// @Router       /orders/fetch [post]
func (h *OrderHandler) Fetch(c *gin.Context) {
	var req FetchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	connectorID, err := parseUUID(req.ConnectorID)
	if err != nil {
		h.BadRequest(c, "invalid connector_id")
		return
	}

	o, err := h.orders.FetchOrder(c.Request.Context(), connectorID, req.RemoteOrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// Convert godoc
// @Summary      Create the local sales order for a mirrored order
// @Tags         orders
// @Produce      json
// @Success      200 {object} APIResponse[OrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /orders/{id}/convert [post]
func (h *OrderHandler) Convert(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	conn, err := h.connectors.Get(c.Request.Context(), o.ConnectorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if _, err := h.orders.ConvertToLocalOrder(c.Request.Context(), conn, o); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.POST("/fetch", h.Fetch)
		orders.POST("/:id/convert", h.Convert)
	}
}
