package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appsync "github.com/erp/zidsync/internal/application/sync"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/interfaces/http/dto"
)

// MirrorHandler exposes the mirrored store catalog for browsing and
// triggers catalog syncs on demand.
type MirrorHandler struct {
	BaseHandler
	products   mirror.ProductRepository
	variants   mirror.VariantRepository
	categories mirror.CategoryRepository
	attributes mirror.AttributeRepository
	locations  mirror.LocationRepository
	customers  mirror.CustomerRepository
	reasons    mirror.ReverseReasonRepository
	carts      mirror.AbandonedCartRepository
	payouts    mirror.PayoutRepository
	catalog    *appsync.CatalogSyncService
}

// NewMirrorHandler creates a new MirrorHandler
func NewMirrorHandler(
	products mirror.ProductRepository,
	variants mirror.VariantRepository,
	categories mirror.CategoryRepository,
	attributes mirror.AttributeRepository,
	locations mirror.LocationRepository,
	customers mirror.CustomerRepository,
	reasons mirror.ReverseReasonRepository,
	carts mirror.AbandonedCartRepository,
	payouts mirror.PayoutRepository,
	catalog *appsync.CatalogSyncService,
) *MirrorHandler {
	return &MirrorHandler{
		products:   products,
		variants:   variants,
		categories: categories,
		attributes: attributes,
		locations:  locations,
		customers:  customers,
		reasons:    reasons,
		carts:      carts,
		payouts:    payouts,
		catalog:    catalog,
	}
}

// LinkProductRequest links a product mirror to a local catalog product.
// An empty local_product_id clears the link.
type LinkProductRequest struct {
	LocalProductID string `json:"local_product_id" binding:"omitempty,uuid"`
}

// MirrorProductResponse is a mirrored remote product
type MirrorProductResponse struct {
	ID             string          `json:"id"`
	ConnectorID    string          `json:"connector_id"`
	RemoteID       string          `json:"remote_id"`
	Name           string          `json:"name"`
	SKU            string          `json:"sku,omitempty"`
	Barcode        string          `json:"barcode,omitempty"`
	Price          decimal.Decimal `json:"price"`
	SalePrice      decimal.Decimal `json:"sale_price"`
	Currency       string          `json:"currency,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	IsInfinite     bool            `json:"is_infinite"`
	IsPublished    bool            `json:"is_published"`
	ImageURL       string          `json:"image_url,omitempty"`
	RemoteHTMLURL  string          `json:"remote_html_url,omitempty"`
	LocalProductID *string         `json:"local_product_id,omitempty"`
	Active         bool            `json:"active"`
	LastImportAt   time.Time       `json:"last_import_at"`
}

func toMirrorProductResponse(p *mirror.Product) MirrorProductResponse {
	resp := MirrorProductResponse{
		ID:            p.ID.String(),
		ConnectorID:   p.ConnectorID.String(),
		RemoteID:      p.RemoteID,
		Name:          p.DisplayName(),
		SKU:           p.SKU,
		Barcode:       p.Barcode,
		Price:         p.Price,
		SalePrice:     p.SalePrice,
		Currency:      p.Currency,
		Quantity:      p.Quantity,
		IsInfinite:    p.IsInfinite,
		IsPublished:   p.IsPublished,
		ImageURL:      p.ImageURL,
		RemoteHTMLURL: p.RemoteHTMLURL,
		Active:        p.Active,
		LastImportAt:  p.LastImportAt,
	}
	if p.LocalProductID != nil {
		id := p.LocalProductID.String()
		resp.LocalProductID = &id
	}
	return resp
}

// MirrorVariantResponse is a mirrored product variant
type MirrorVariantResponse struct {
	ID       string          `json:"id"`
	RemoteID string          `json:"remote_id"`
	SKU      string          `json:"sku,omitempty"`
	Barcode  string          `json:"barcode,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// MirrorCategoryResponse is a mirrored category node
type MirrorCategoryResponse struct {
	ID             string `json:"id"`
	RemoteID       string `json:"remote_id"`
	ParentRemoteID string `json:"parent_remote_id,omitempty"`
	Name           string `json:"name"`
	DisplayPath    string `json:"display_path"`
	Active         bool   `json:"active"`
}

// MirrorLocationResponse is a mirrored inventory location
type MirrorLocationResponse struct {
	ID        string `json:"id"`
	RemoteID  string `json:"remote_id"`
	Name      string `json:"name"`
	City      string `json:"city,omitempty"`
	IsDefault bool   `json:"is_default"`
	Active    bool   `json:"active"`
}

// MirrorCustomerResponse is a mirrored store customer
type MirrorCustomerResponse struct {
	ID       string `json:"id"`
	RemoteID string `json:"remote_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Mobile   string `json:"mobile,omitempty"`
	City     string `json:"city,omitempty"`
}

// MirrorReasonResponse is a mirrored return reason
type MirrorReasonResponse struct {
	ID         string `json:"id"`
	RemoteID   string `json:"remote_id"`
	Name       string `json:"name"`
	UsageCount int    `json:"usage_count"`
}

// MirrorCartResponse is a mirrored abandoned cart
type MirrorCartResponse struct {
	ID            string          `json:"id"`
	RemoteID      string          `json:"remote_id"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerEmail string          `json:"customer_email,omitempty"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency,omitempty"`
	ItemCount     int             `json:"item_count"`
	IsRecoverable bool            `json:"is_recoverable"`
	AbandonedAt   *time.Time      `json:"abandoned_at,omitempty"`
}

// PayoutLineResponse is one settlement breakdown line
type PayoutLineResponse struct {
	Type           string          `json:"type"`
	RemoteOrderRef string          `json:"remote_order_ref,omitempty"`
	Description    string          `json:"description,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
}

// PayoutResponse is a mirrored settlement statement
type PayoutResponse struct {
	ID             string               `json:"id"`
	RemoteID       string               `json:"remote_id"`
	Reference      string               `json:"reference,omitempty"`
	SettlementDate *time.Time           `json:"settlement_date,omitempty"`
	GrossAmount    decimal.Decimal      `json:"gross_amount"`
	FeeAmount      decimal.Decimal      `json:"fee_amount"`
	NetAmount      decimal.Decimal      `json:"net_amount"`
	Currency       string               `json:"currency,omitempty"`
	Status         string               `json:"status,omitempty"`
	Lines          []PayoutLineResponse `json:"lines"`
}

// CatalogSyncResponse reports how many records one sync touched
type CatalogSyncResponse struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

// mirrorFilter builds the shared mirror list filter. connector_id is
// required because every mirror is scoped to one connector.
func (h *MirrorHandler) mirrorFilter(c *gin.Context) (mirror.Filter, dto.ListRequest, bool) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return mirror.Filter{}, req, false
	}
	connectorID, err := parseUUID(c.Query("connector_id"))
	if err != nil {
		h.BadRequest(c, "connector_id is required")
		return mirror.Filter{}, req, false
	}
	return mirror.Filter{
		ConnectorID: connectorID,
		Search:      req.Search,
		ActiveOnly:  c.Query("active_only") == "true",
		Limit:       req.PageSize,
		Offset:      req.Offset(),
	}, req, true
}

// ListProducts godoc
// @Summary      List mirrored products
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[[]MirrorProductResponse]
// @Router       /mirror/products [get]
func (h *MirrorHandler) ListProducts(c *gin.Context) {
	filter, req, ok := h.mirrorFilter(c)
	if !ok {
		return
	}
	products, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.products.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MirrorProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toMirrorProductResponse(p))
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// GetProduct godoc
// @Summary      Get one mirrored product with its variants
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[MirrorProductResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /mirror/products/{id} [get]
func (h *MirrorHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	variants, err := h.variants.ListByProduct(c.Request.Context(), product.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	variantItems := make([]MirrorVariantResponse, 0, len(variants))
	for _, v := range variants {
		variantItems = append(variantItems, MirrorVariantResponse{
			ID:       v.ID.String(),
			RemoteID: v.RemoteID,
			SKU:      v.SKU,
			Barcode:  v.Barcode,
			Price:    v.Price,
			Quantity: v.Quantity,
		})
	}
	h.Success(c, gin.H{
		"product":  toMirrorProductResponse(product),
		"variants": variantItems,
	})
}

// LinkProduct godoc
// @Summary      Link a mirrored product to a local catalog product
// @Tags         mirror
// @Accept       json
// @Produce      json
// @Success      200 {object} APIResponse[MirrorProductResponse]
// @Router       /mirror/products/{id}/link [put]
func (h *MirrorHandler) LinkProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req LinkProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if req.LocalProductID == "" {
		product.LocalProductID = nil
	} else {
		localID, _ := parseUUID(req.LocalProductID)
		product.LocalProductID = &localID
	}
	product.UpdatedAt = time.Now()
	if err := h.products.Save(c.Request.Context(), product); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toMirrorProductResponse(product))
}

// ListCategories godoc
// @Summary      List mirrored categories
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[[]MirrorCategoryResponse]
// @Router       /mirror/categories [get]
func (h *MirrorHandler) ListCategories(c *gin.Context) {
	filter, req, ok := h.mirrorFilter(c)
	if !ok {
		return
	}
	categories, err := h.categories.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	total, err := h.categories.Count(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MirrorCategoryResponse, 0, len(categories))
	for _, cat := range categories {
		items = append(items, MirrorCategoryResponse{
			ID:             cat.ID.String(),
			RemoteID:       cat.RemoteID,
			ParentRemoteID: cat.ParentRemoteID,
			Name:           cat.Name.Resolve(cat.RemoteID),
			DisplayPath:    cat.DisplayPath,
			Active:         cat.Active,
		})
	}
	h.SuccessWithMeta(c, items, total, req.Page, req.PageSize)
}

// ListLocations godoc
// @Summary      List mirrored inventory locations
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[[]MirrorLocationResponse]
// @Router       /mirror/locations [get]
func (h *MirrorHandler) ListLocations(c *gin.Context) {
	filter, _, ok := h.mirrorFilter(c)
	if !ok {
		return
	}
	locations, err := h.locations.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MirrorLocationResponse, 0, len(locations))
	for _, l := range locations {
		items = append(items, MirrorLocationResponse{
			ID:        l.ID.String(),
			RemoteID:  l.RemoteID,
			Name:      l.Name.Resolve(l.RemoteID),
			City:      l.City,
			IsDefault: l.IsDefault,
			Active:    l.Active,
		})
	}
	h.Success(c, items)
}

// ListCustomers godoc
// @Summary      List mirrored customers
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[[]MirrorCustomerResponse]
// @Router       /mirror/customers [get]
func (h *MirrorHandler) ListCustomers(c *gin.Context) {
	filter, _, ok := h.mirrorFilter(c)
	if !ok {
		return
	}
	customers, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MirrorCustomerResponse, 0, len(customers))
	for _, cust := range customers {
		items = append(items, MirrorCustomerResponse{
			ID:       cust.ID.String(),
			RemoteID: cust.RemoteID,
			Name:     cust.Name,
			Email:    cust.Email,
			Mobile:   cust.Mobile,
			City:     cust.City,
		})
	}
	h.Success(c, items)
}

// ListReasons godoc
// @Summary      List mirrored return reasons
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[[]MirrorReasonResponse]
// @Router       /mirror/reverse-reasons [get]
func (h *MirrorHandler) ListReasons(c *gin.Context) {
	filter, _, ok := h.mirrorFilter(c)
	if !ok {
		return
	}
	reasons, err := h.reasons.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MirrorReasonResponse, 0, len(reasons))
	for _, r := range reasons {
		items = append(items, MirrorReasonResponse{
			ID:         r.ID.String(),
			RemoteID:   r.RemoteID,
			Name:       r.Name.Resolve(r.RemoteID),
			UsageCount: r.UsageCount,
		})
	}
	h.Success(c, items)
}

// ListCarts godoc
// @Summary      List mirrored abandoned carts
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[[]MirrorCartResponse]
// @Router       /mirror/abandoned-carts [get]
func (h *MirrorHandler) ListCarts(c *gin.Context) {
	filter, _, ok := h.mirrorFilter(c)
	if !ok {
		return
	}
	carts, err := h.carts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]MirrorCartResponse, 0, len(carts))
	for _, cart := range carts {
		items = append(items, MirrorCartResponse{
			ID:            cart.ID.String(),
			RemoteID:      cart.RemoteID,
			CustomerName:  cart.CustomerName,
			CustomerEmail: cart.CustomerEmail,
			CustomerPhone: cart.CustomerPhone,
			Total:         cart.Total,
			Currency:      cart.Currency,
			ItemCount:     cart.ItemCount,
			IsRecoverable: cart.IsRecoverable,
			AbandonedAt:   cart.AbandonedAt,
		})
	}
	h.Success(c, items)
}

// ListPayouts godoc
// @Summary      List mirrored settlement statements
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[[]PayoutResponse]
// @Router       /mirror/payouts [get]
func (h *MirrorHandler) ListPayouts(c *gin.Context) {
	filter, _, ok := h.mirrorFilter(c)
	if !ok {
		return
	}
	payouts, err := h.payouts.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]PayoutResponse, 0, len(payouts))
	for _, p := range payouts {
		lines := make([]PayoutLineResponse, 0, len(p.Lines))
		for _, line := range p.Lines {
			lines = append(lines, PayoutLineResponse{
				Type:           string(line.Type),
				RemoteOrderRef: line.RemoteOrderRef,
				Description:    line.Description,
				Amount:         line.Amount,
			})
		}
		items = append(items, PayoutResponse{
			ID:             p.ID.String(),
			RemoteID:       p.RemoteID,
			Reference:      p.Reference,
			SettlementDate: p.SettlementDate,
			GrossAmount:    p.GrossAmount,
			FeeAmount:      p.FeeAmount,
			NetAmount:      p.NetAmount,
			Currency:       p.Currency,
			Status:         p.Status,
			Lines:          lines,
		})
	}
	h.Success(c, items)
}

// SyncCatalog godoc
// @Summary      Run one catalog sync now
// @Tags         mirror
// @Produce      json
// @Success      200 {object} APIResponse[CatalogSyncResponse]
// @Router       /mirror/sync/{kind} [post]
func (h *MirrorHandler) SyncCatalog(c *gin.Context) {
	connectorID, err := parseUUID(c.Query("connector_id"))
	if err != nil {
		h.BadRequest(c, "connector_id is required")
		return
	}

	var run func(ctx context.Context, id uuid.UUID) (int, error)
	kind := c.Param("kind")
	switch kind {
	case "categories":
		run = h.catalog.SyncCategories
	case "attributes":
		run = h.catalog.SyncAttributes
	case "locations":
		run = h.catalog.SyncLocations
	case "reverse-reasons":
		run = h.catalog.SyncReverseReasons
	case "abandoned-carts":
		run = h.catalog.SyncAbandonedCarts
	case "payouts":
		run = h.catalog.SyncPayouts
	default:
		h.BadRequest(c, "unknown catalog kind")
		return
	}

	count, err := run(c.Request.Context(), connectorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, CatalogSyncResponse{Kind: kind, Count: count})
}

// RegisterRoutes registers mirror browse and catalog sync routes
func (h *MirrorHandler) RegisterRoutes(rg *gin.RouterGroup) {
	m := rg.Group("/mirror")
	{
		m.GET("/products", h.ListProducts)
		m.GET("/products/:id", h.GetProduct)
		m.PUT("/products/:id/link", h.LinkProduct)
		m.GET("/categories", h.ListCategories)
		m.GET("/locations", h.ListLocations)
		m.GET("/customers", h.ListCustomers)
		m.GET("/reverse-reasons", h.ListReasons)
		m.GET("/abandoned-carts", h.ListCarts)
		m.GET("/payouts", h.ListPayouts)
		m.POST("/sync/:kind", h.SyncCatalog)
	}
}
