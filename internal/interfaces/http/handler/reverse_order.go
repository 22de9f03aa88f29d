package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

// ReverseOrderHandler exposes the return order lifecycle
type ReverseOrderHandler struct {
	BaseHandler
	reverses *appsync.ReverseService
}

// NewReverseOrderHandler creates a new ReverseOrderHandler
func NewReverseOrderHandler(reverses *appsync.ReverseService) *ReverseOrderHandler {
	return &ReverseOrderHandler{reverses: reverses}
}

// ReverseItemRequest is one returned line
type ReverseItemRequest struct {
	RemoteProductID string          `json:"remote_product_id" binding:"required"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity" binding:"required,min=1"`
	Price           decimal.Decimal `json:"price"`
}

// CreateReverseRequest drafts a return against a mirrored order
type CreateReverseRequest struct {
	OrderID        string               `json:"order_id" binding:"required,uuid"`
	ReasonRemoteID string               `json:"reason_remote_id" binding:"required"`
	Comment        string               `json:"comment"`
	Items          []ReverseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ReverseItemResponse is one returned line
type ReverseItemResponse struct {
	RemoteProductID string          `json:"remote_product_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	Price           decimal.Decimal `json:"price"`
}

// WaybillResponse is the return shipment label
type WaybillResponse struct {
	RemoteID       string          `json:"remote_id"`
	Cost           decimal.Decimal `json:"cost"`
	LabelURL       string          `json:"label_url,omitempty"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	TrackingURL    string          `json:"tracking_url,omitempty"`
	Status         string          `json:"status,omitempty"`
	Courier        string          `json:"courier,omitempty"`
	IssuedAt       *time.Time      `json:"issued_at,omitempty"`
}

// ReverseOrderResponse is a return order
type ReverseOrderResponse struct {
	ID             string                `json:"id"`
	ConnectorID    string                `json:"connector_id"`
	RemoteOrderID  string                `json:"remote_order_id"`
	RemoteID       string                `json:"remote_id,omitempty"`
	ReasonRemoteID string                `json:"reason_remote_id"`
	Comment        string                `json:"comment,omitempty"`
	Status         string                `json:"status"`
	Items          []ReverseItemResponse `json:"items"`
	Waybill        *WaybillResponse      `json:"waybill,omitempty"`
	SentAt         *time.Time            `json:"sent_at,omitempty"`
	CompletedAt    *time.Time            `json:"completed_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

func toReverseOrderResponse(r *ordersync.ReverseOrder) ReverseOrderResponse {
	items := make([]ReverseItemResponse, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, ReverseItemResponse{
			RemoteProductID: it.RemoteProductID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			Price:           it.Price,
		})
	}
	resp := ReverseOrderResponse{
		ID:             r.ID.String(),
		ConnectorID:    r.ConnectorID.String(),
		RemoteOrderID:  r.RemoteOrderID.String(),
		RemoteID:       r.RemoteID,
		ReasonRemoteID: r.ReasonRemoteID,
		Comment:        r.Comment,
		Status:         string(r.Status),
		Items:          items,
		SentAt:         r.SentAt,
		CompletedAt:    r.CompletedAt,
		CreatedAt:      r.CreatedAt,
	}
	if r.Waybill != nil {
		resp.Waybill = &WaybillResponse{
			RemoteID:       r.Waybill.RemoteID,
			Cost:           r.Waybill.Cost,
			LabelURL:       r.Waybill.LabelURL,
			TrackingNumber: r.Waybill.TrackingNumber,
			TrackingURL:    r.Waybill.TrackingURL,
			Status:         r.Waybill.Status,
			Courier:        r.Waybill.Courier,
			IssuedAt:       r.Waybill.IssuedAt,
		}
	}
	return resp
}

// Create godoc
// @Summary      Draft a return order
// @Tags         reverse-orders
// @Accept       json
// @Produce      json
// @Success      201 {object} APIResponse[ReverseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /reverse-orders [post]
func (h *ReverseOrderHandler) Create(c *gin.Context) {
	var req CreateReverseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	orderID, _ := parseUUID(req.OrderID)

	items := make([]appsync.ReverseItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, appsync.ReverseItemInput{
			RemoteProductID: it.RemoteProductID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			Price:           it.Price,
		})
	}

	reverse, err := h.reverses.CreateDraft(c.Request.Context(), orderID, req.ReasonRemoteID, req.Comment, items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toReverseOrderResponse(reverse))
}

// List godoc
// @Summary      List return orders
// @Tags         reverse-orders
// @Produce      json
// @Success      200 {object} APIResponse[[]ReverseOrderResponse]
// @Router       /reverse-orders [get]
func (h *ReverseOrderHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ordersync.ReverseFilter{
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
		status := ordersync.ReverseStatus(raw)
		filter.Status = &status
	}

	reverses, total, err := h.reverses.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ReverseOrderResponse, 0, len(reverses))
	for _, r := range reverses {
		items = append(items, toReverseOrderResponse(r))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Get godoc
// @Summary      Get one return order
// @Tags         reverse-orders
// @Produce      json
// @Success      200 {object} APIResponse[ReverseOrderResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /reverse-orders/{id} [get]
func (h *ReverseOrderHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reverse, err := h.reverses.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReverseOrderResponse(reverse))
}

// Submit godoc
// @Summary      Submit a drafted return to the platform
// @Tags         reverse-orders
// @Produce      json
// @Success      200 {object} APIResponse[ReverseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /reverse-orders/{id}/submit [post]
func (h *ReverseOrderHandler) Submit(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reverse, err := h.reverses.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReverseOrderResponse(reverse))
}

// CreateWaybill godoc
// @Summary      Request the return shipment waybill
// @Tags         reverse-orders
// @Produce      json
// @Success      200 {object} APIResponse[ReverseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /reverse-orders/{id}/waybill [post]
func (h *ReverseOrderHandler) CreateWaybill(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reverse, err := h.reverses.CreateWaybill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReverseOrderResponse(reverse))
}

// Complete godoc
// @Summary      Complete a return
// @Tags         reverse-orders
// @Produce      json
// @Success      200 {object} APIResponse[ReverseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /reverse-orders/{id}/complete [post]
func (h *ReverseOrderHandler) Complete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reverse, err := h.reverses.Complete(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReverseOrderResponse(reverse))
}

// Cancel godoc
// @Summary      Cancel a return
// @Tags         reverse-orders
// @Produce      json
// @Success      200 {object} APIResponse[ReverseOrderResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /reverse-orders/{id}/cancel [post]
func (h *ReverseOrderHandler) Cancel(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	reverse, err := h.reverses.Cancel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReverseOrderResponse(reverse))
}

// RegisterRoutes registers reverse order routes
func (h *ReverseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reverses := rg.Group("/reverse-orders")
	{
		reverses.POST("", h.Create)
		reverses.GET("", h.List)
		reverses.GET("/:id", h.Get)
		reverses.POST("/:id/submit", h.Submit)
		reverses.POST("/:id/waybill", h.CreateWaybill)
		reverses.POST("/:id/complete", h.Complete)
		reverses.POST("/:id/cancel", h.Cancel)
	}
}
