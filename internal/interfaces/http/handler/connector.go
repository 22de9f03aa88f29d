package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

// ConnectorHandler handles store connector API endpoints
type ConnectorHandler struct {
	BaseHandler
	connectors *appsync.ConnectorService
	webhooks   *appsync.WebhookService

	// publicBaseURL is the externally reachable base of this service,
	// used as the webhook callback target.
	publicBaseURL string
}

// NewConnectorHandler creates a new ConnectorHandler
func NewConnectorHandler(connectors *appsync.ConnectorService, webhooks *appsync.WebhookService, publicBaseURL string) *ConnectorHandler {
	return &ConnectorHandler{
		connectors:    connectors,
		webhooks:      webhooks,
		publicBaseURL: publicBaseURL,
	}
}

// CreateConnectorRequest represents a request to link a new store
type CreateConnectorRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200" example:"My Zid Store"`
	StoreID string `json:"store_id" binding:"required,min=1,max=50" example:"12345"`
}

// ConnectRequest carries the store credentials
type ConnectRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	ManagerToken string `json:"manager_token"`
}

// PoliciesRequest replaces the connector's sync policy
type PoliciesRequest struct {
	MatchPriority       string `json:"match_priority" binding:"required,oneof=mapping_first mapping_only direct_only"`
	ProductMatchBy      string `json:"product_match_by" binding:"required,oneof=sku barcode name"`
	CustomerMatchBy     string `json:"customer_match_by" binding:"required,oneof=email mobile both always_create"`
	AutoCreateSaleOrder bool   `json:"auto_create_sale_order"`
	SyncStatusToZid     bool   `json:"sync_status_to_zid"`
	AutoProcessWebhooks bool   `json:"auto_process_webhooks"`
	EnableProductSync   bool   `json:"enable_product_sync"`
	DefaultLocationID   string `json:"default_location_id"`
}

// ConnectorResponse is a connector without its credentials
type ConnectorResponse struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	StoreID       string     `json:"store_id"`
	AuthStatus    string     `json:"auth_status"`
	StoreName     string     `json:"store_name,omitempty"`
	StoreURL      string     `json:"store_url,omitempty"`
	StoreEmail    string     `json:"store_email,omitempty"`
	StoreCurrency string     `json:"store_currency,omitempty"`
	HasToken      bool       `json:"has_token"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`

	MatchPriority       string `json:"match_priority"`
	ProductMatchBy      string `json:"product_match_by"`
	CustomerMatchBy     string `json:"customer_match_by"`
	AutoCreateSaleOrder bool   `json:"auto_create_sale_order"`
	SyncStatusToZid     bool   `json:"sync_status_to_zid"`
	AutoProcessWebhooks bool   `json:"auto_process_webhooks"`
	EnableProductSync   bool   `json:"enable_product_sync"`
	DefaultLocationID   string `json:"default_location_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toConnectorResponse(c *connector.Connector) ConnectorResponse {
	return ConnectorResponse{
		ID:                  c.ID.String(),
		Name:                c.Name,
		StoreID:             c.StoreID,
		AuthStatus:          string(c.AuthStatus),
		StoreName:           c.StoreName,
		StoreURL:            c.StoreURL,
		StoreEmail:          c.StoreEmail,
		StoreCurrency:       c.StoreCurrency,
		HasToken:            c.AccessToken != "",
		LastSyncAt:          c.LastSyncAt,
		MatchPriority:       string(c.MatchPriority),
		ProductMatchBy:      string(c.ProductMatchBy),
		CustomerMatchBy:     string(c.CustomerMatchBy),
		AutoCreateSaleOrder: c.AutoCreateSaleOrder,
		SyncStatusToZid:     c.SyncStatusToZid,
		AutoProcessWebhooks: c.AutoProcessWebhooks,
		EnableProductSync:   c.EnableProductSync,
		DefaultLocationID:   c.DefaultLocationID,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// WebhookSubscriptionResponse describes one remote registration
type WebhookSubscriptionResponse struct {
	ID           string    `json:"id"`
	RemoteID     string    `json:"remote_id"`
	Event        string    `json:"event"`
	TargetURL    string    `json:"target_url"`
	TriggerCount int       `json:"trigger_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Create godoc
// @Summary      Link a new store
// @Tags         connectors
// @Accept       json
// @Produce      json
// @Success      201 {object} APIResponse[ConnectorResponse]
// @Failure      409 {object} ErrorResponse
// @Router       /connectors [post]
func (h *ConnectorHandler) Create(c *gin.Context) {
	var req CreateConnectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	conn, err := h.connectors.Create(c.Request.Context(), req.Name, req.StoreID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toConnectorResponse(conn))
}

// List godoc
// @Summary      List store connectors
// @Tags         connectors
// @Produce      json
// @Success      200 {object} APIResponse[[]ConnectorResponse]
// @Router       /connectors [get]
func (h *ConnectorHandler) List(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := connector.Filter{
		Limit:  req.PageSize,
		Offset: req.Offset(),
	}
	if status := c.Query("auth_status"); status != "" {
		s := connector.AuthorizationStatus(status)
		filter.AuthStatus = &s
	}

	conns, total, err := h.connectors.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]ConnectorResponse, 0, len(conns))
	for _, conn := range conns {
		items = append(items, toConnectorResponse(conn))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// Get godoc
// @Summary      Get a connector
// @Tags         connectors
// @Produce      json
// @Success      200 {object} APIResponse[ConnectorResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /connectors/{id} [get]
func (h *ConnectorHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	conn, err := h.connectors.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toConnectorResponse(conn))
}

// Delete godoc
// @Summary      Unlink a store and drop all its mirrored data
// @Tags         connectors
// @Success      204
// @Router       /connectors/{id} [delete]
func (h *ConnectorHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.connectors.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Connect godoc
// @Summary      Store credentials and verify them against the platform
// @Tags         connectors
// @Accept       json
// @Produce      json
// @Success      200 {object} APIResponse[ConnectorResponse]
// @Failure      422 {object} ErrorResponse
// @Router       /connectors/{id}/connect [post]
func (h *ConnectorHandler) Connect(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	conn, err := h.connectors.Connect(c.Request.Context(), id, req.AccessToken, req.ManagerToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toConnectorResponse(conn))
}

// Disconnect godoc
// @Summary      Drop credentials and return the store to not_connected
// @Tags         connectors
// @Success      204
// @Router       /connectors/{id}/disconnect [post]
func (h *ConnectorHandler) Disconnect(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.connectors.Disconnect(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// TestConnection godoc
// @Summary      Probe the stored credentials against the platform
// @Tags         connectors
// @Produce      json
// @Success      200 {object} SuccessResponse
// @Failure      422 {object} ErrorResponse
// @Router       /connectors/{id}/test [post]
func (h *ConnectorHandler) TestConnection(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.connectors.TestConnection(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"status": "ok"})
}

// UpdatePolicies godoc
// @Summary      Replace the connector's sync policy
// @Tags         connectors
// @Accept       json
// @Produce      json
// @Success      200 {object} APIResponse[ConnectorResponse]
// @Router       /connectors/{id}/policies [put]
func (h *ConnectorHandler) UpdatePolicies(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req PoliciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	conn, err := h.connectors.UpdatePolicies(c.Request.Context(), id, appsync.PolicyInput{
		MatchPriority:       connector.MatchPriority(req.MatchPriority),
		ProductMatchBy:      connector.ProductMatchBy(req.ProductMatchBy),
		CustomerMatchBy:     connector.CustomerMatchBy(req.CustomerMatchBy),
		AutoCreateSaleOrder: req.AutoCreateSaleOrder,
		SyncStatusToZid:     req.SyncStatusToZid,
		AutoProcessWebhooks: req.AutoProcessWebhooks,
		EnableProductSync:   req.EnableProductSync,
		DefaultLocationID:   req.DefaultLocationID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toConnectorResponse(conn))
}

// ListWebhooks godoc
// @Summary      List the connector's webhook registrations
// @Tags         connectors
// @Produce      json
// @Success      200 {object} APIResponse[[]WebhookSubscriptionResponse]
// @Router       /connectors/{id}/webhooks [get]
func (h *ConnectorHandler) ListWebhooks(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	subs, err := h.webhooks.ListSubscriptions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]WebhookSubscriptionResponse, 0, len(subs))
	for _, sub := range subs {
		items = append(items, WebhookSubscriptionResponse{
			ID:           sub.ID.String(),
			RemoteID:     sub.RemoteID,
			Event:        sub.Event,
			TargetURL:    sub.TargetURL,
			TriggerCount: sub.TriggerCount,
			CreatedAt:    sub.CreatedAt,
		})
	}
	h.Success(c, items)
}

// RegisterWebhooks godoc
// @Summary      Reconcile remote webhook registrations for this store
// @Tags         connectors
// @Success      200 {object} SuccessResponse
// @Router       /connectors/{id}/webhooks/register [post]
func (h *ConnectorHandler) RegisterWebhooks(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.webhooks.EnsureRegistrations(c.Request.Context(), id, h.publicBaseURL); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"status": "registered"})
}

// RemoveWebhooks godoc
// @Summary      Remove all remote webhook registrations for this store
// @Tags         connectors
// @Success      204
// @Router       /connectors/{id}/webhooks [delete]
func (h *ConnectorHandler) RemoveWebhooks(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.webhooks.RemoveRegistrations(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *BaseHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers all connector routes
func (h *ConnectorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	connectors := rg.Group("/connectors")
	{
		connectors.POST("", h.Create)
		connectors.GET("", h.List)
		connectors.GET("/:id", h.Get)
		connectors.DELETE("/:id", h.Delete)
		connectors.POST("/:id/connect", h.Connect)
		connectors.POST("/:id/disconnect", h.Disconnect)
		connectors.POST("/:id/test", h.TestConnection)
		connectors.PUT("/:id/policies", h.UpdatePolicies)
		connectors.GET("/:id/webhooks", h.ListWebhooks)
		connectors.POST("/:id/webhooks/register", h.RegisterWebhooks)
		connectors.DELETE("/:id/webhooks", h.RemoveWebhooks)
	}
}
