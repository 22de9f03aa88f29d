package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/domain/shared"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// ProductLineHandler materializes product queue lines into the product
// and variant mirrors.
type ProductLineHandler struct {
	products mirror.ProductRepository
	variants mirror.VariantRepository
	logger   *zap.Logger
}

// NewProductLineHandler creates a new ProductLineHandler
func NewProductLineHandler(products mirror.ProductRepository, variants mirror.VariantRepository, logger *zap.Logger) *ProductLineHandler {
	return &ProductLineHandler{products: products, variants: variants, logger: logger}
}

// ModelType implements queue.LineHandler
func (h *ProductLineHandler) ModelType() queue.ModelType {
	return queue.ModelProduct
}

// HandleLine imports one product payload. Lines are skipped cleanly
// when the connector has product sync turned off.
func (h *ProductLineHandler) HandleLine(ctx context.Context, conn *connector.Connector, line *queue.Line) error {
	if !conn.EnableProductSync {
		return nil
	}

	var payload zid.Product
	if err := json.Unmarshal(line.Payload, &payload); err != nil {
		return fmt.Errorf("decode product payload: %w", err)
	}

	product, err := productMirrorFromPayload(conn.ID, &payload)
	if err != nil {
		return err
	}
	saved, err := h.upsertProduct(ctx, product)
	if err != nil {
		return err
	}

	for _, v := range payload.Variants {
		if err := h.upsertVariant(ctx, conn.ID, saved.ID, v); err != nil {
			return err
		}
	}
	return nil
}

func (h *ProductLineHandler) upsertProduct(ctx context.Context, incoming *mirror.Product) (*mirror.Product, error) {
	existing, err := h.products.GetByRemoteID(ctx, incoming.ConnectorID, incoming.RemoteID)
	switch {
	case err == nil:
		existing.Overwrite(incoming)
		if err := h.products.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, mirror.ErrNotFound):
		saveErr := h.products.Save(ctx, incoming)
		if errors.Is(saveErr, mirror.ErrDuplicate) {
			// Lost the insert race; retry as an update.
			existing, err = h.products.GetByRemoteID(ctx, incoming.ConnectorID, incoming.RemoteID)
			if err != nil {
				return nil, err
			}
			existing.Overwrite(incoming)
			if err := h.products.Save(ctx, existing); err != nil {
				return nil, err
			}
			return existing, nil
		}
		if saveErr != nil {
			return nil, saveErr
		}
		return incoming, nil
	default:
		return nil, err
	}
}

func (h *ProductLineHandler) upsertVariant(ctx context.Context, connectorID, productID uuid.UUID, payload zid.ProductVariant) error {
	existing, err := h.variants.GetByRemoteID(ctx, connectorID, payload.ID)
	switch {
	case err == nil:
		existing.ProductID = productID
		existing.SKU = payload.SKU
		existing.Barcode = payload.Barcode
		existing.Price = payload.Price
		existing.Quantity = payload.Quantity
		return h.variants.Save(ctx, existing)
	case errors.Is(err, mirror.ErrNotFound):
		variant := &mirror.Variant{
			BaseEntity:  shared.NewBaseEntity(),
			ConnectorID: connectorID,
			ProductID:   productID,
			RemoteID:    payload.ID,
			SKU:         payload.SKU,
			Barcode:     payload.Barcode,
			Price:       payload.Price,
			Quantity:    payload.Quantity,
		}
		return h.variants.Save(ctx, variant)
	default:
		return err
	}
}

// CustomerLineHandler materializes customer queue lines into the
// customer mirror.
type CustomerLineHandler struct {
	customers mirror.CustomerRepository
	logger    *zap.Logger
}

// NewCustomerLineHandler creates a new CustomerLineHandler
func NewCustomerLineHandler(customers mirror.CustomerRepository, logger *zap.Logger) *CustomerLineHandler {
	return &CustomerLineHandler{customers: customers, logger: logger}
}

// ModelType implements queue.LineHandler
func (h *CustomerLineHandler) ModelType() queue.ModelType {
	return queue.ModelCustomer
}

// HandleLine imports one customer payload.
func (h *CustomerLineHandler) HandleLine(ctx context.Context, conn *connector.Connector, line *queue.Line) error {
	var payload zid.Customer
	if err := json.Unmarshal(line.Payload, &payload); err != nil {
		return fmt.Errorf("decode customer payload: %w", err)
	}

	incoming, err := mirror.NewCustomer(conn.ID, payload.ID.String())
	if err != nil {
		return err
	}
	incoming.Name = payload.Name
	incoming.Email = payload.Email
	incoming.Mobile = payload.Mobile
	incoming.City = payload.City

	existing, err := h.customers.GetByRemoteID(ctx, conn.ID, incoming.RemoteID)
	switch {
	case err == nil:
		existing.Overwrite(incoming)
		return h.customers.Save(ctx, existing)
	case errors.Is(err, mirror.ErrNotFound):
		saveErr := h.customers.Save(ctx, incoming)
		if errors.Is(saveErr, mirror.ErrDuplicate) {
			existing, err = h.customers.GetByRemoteID(ctx, conn.ID, incoming.RemoteID)
			if err != nil {
				return err
			}
			existing.Overwrite(incoming)
			return h.customers.Save(ctx, existing)
		}
		return saveErr
	default:
		return err
	}
}

// OrderLineHandler materializes order queue lines through the order
// service so mirroring and conversion share one code path.
type OrderLineHandler struct {
	orders *OrderService
	logger *zap.Logger
}

// NewOrderLineHandler creates a new OrderLineHandler
func NewOrderLineHandler(orders *OrderService, logger *zap.Logger) *OrderLineHandler {
	return &OrderLineHandler{orders: orders, logger: logger}
}

// ModelType implements queue.LineHandler
func (h *OrderLineHandler) ModelType() queue.ModelType {
	return queue.ModelOrder
}

// HandleLine imports one order payload and converts it when the
// connector's automation asks for it.
func (h *OrderLineHandler) HandleLine(ctx context.Context, conn *connector.Connector, line *queue.Line) error {
	order, err := h.orders.UpsertFromPayload(ctx, conn, line.Payload)
	if err != nil {
		return err
	}
	if conn.AutoCreateSaleOrder && !order.IsConverted() {
		if _, err := h.orders.ConvertToLocalOrder(ctx, conn, order); err != nil {
			return err
		}
	}
	return nil
}

// productMirrorFromPayload converts one product payload to a mirror.
func productMirrorFromPayload(connectorID uuid.UUID, payload *zid.Product) (*mirror.Product, error) {
	product, err := mirror.NewProduct(connectorID, payload.ID)
	if err != nil {
		return nil, err
	}
	product.Name = payload.Name.Text()
	product.Description = payload.Description.Text()
	product.SKU = payload.SKU
	product.Barcode = payload.Barcode
	product.Price = payload.Price
	product.SalePrice = payload.SalePrice
	product.Currency = payload.Currency
	product.Quantity = payload.Quantity
	product.IsInfinite = payload.IsInfinite
	product.IsPublished = payload.IsPublished
	product.RemoteHTMLURL = payload.HTMLURL
	for _, cat := range payload.Categories {
		product.CategoryIDs = append(product.CategoryIDs, cat.ID.String())
	}
	if len(payload.Images) > 0 {
		product.ImageURL = payload.Images[0].URL
	}
	return product, nil
}
