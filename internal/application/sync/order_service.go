package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/domain/shared"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// ErrNoMatchedLines is returned when no order line could be resolved to
// a local product, leaving nothing to create an order from.
var ErrNoMatchedLines = errors.New("sync: no order line matched a local product")

// processedLine is the normalized form of one order line, stored on the
// mirror so conversion never re-parses the raw payload.
type processedLine struct {
	RemoteProductID string          `json:"remote_product_id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Barcode         string          `json:"barcode"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Total           decimal.Decimal `json:"total"`
}

type processedOrder struct {
	Lines []processedLine `json:"lines"`
}

// OrderService keeps remote order mirrors in step with the platform and
// converts them into local sales orders under the connector's matching
// policy.
type OrderService struct {
	connectors connector.Repository
	orders     ordersync.OrderRepository
	products   mirror.ProductRepository
	catalog    ordersync.Catalog
	directory  ordersync.CustomerDirectory
	desk       ordersync.OrderDesk
	client     *zid.Client
	outbound   ordersync.OutboundStatusMap
	logger     *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	connectors connector.Repository,
	orders ordersync.OrderRepository,
	products mirror.ProductRepository,
	catalog ordersync.Catalog,
	directory ordersync.CustomerDirectory,
	desk ordersync.OrderDesk,
	client *zid.Client,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		connectors: connectors,
		orders:     orders,
		products:   products,
		catalog:    catalog,
		directory:  directory,
		desk:       desk,
		client:     client,
		outbound:   ordersync.DefaultOutboundStatusMap(),
		logger:     logger,
	}
}

// Get retrieves an order mirror by ID
func (s *OrderService) Get(ctx context.Context, id uuid.UUID) (*ordersync.RemoteOrder, error) {
	return s.orders.GetByID(ctx, id)
}

// List retrieves order mirrors with a total count
func (s *OrderService) List(ctx context.Context, filter ordersync.OrderFilter) ([]*ordersync.RemoteOrder, int64, error) {
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.orders.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

// FetchOrder pulls one order from the platform, mirrors it, and runs
// conversion when the connector's automation asks for it. Fetching the
// same order twice is safe: the mirror is updated in place and a
// converted order is never converted again.
func (s *OrderService) FetchOrder(ctx context.Context, connectorID uuid.UUID, remoteOrderID string) (*ordersync.RemoteOrder, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return nil, err
	}

	_, raw, err := s.client.GetOrder(ctx, conn, remoteOrderID)
	if err != nil {
		return nil, err
	}

	order, err := s.UpsertFromPayload(ctx, conn, raw)
	if err != nil {
		return nil, err
	}

	if conn.AutoCreateSaleOrder && !order.IsConverted() {
		if _, err := s.ConvertToLocalOrder(ctx, conn, order); err != nil {
			// The mirror is already saved; conversion failures are
			// reported but do not undo the import.
			s.logger.Warn("order conversion failed",
				zap.String("remote_id", order.RemoteID),
				zap.Error(err))
		}
	}
	return order, nil
}

// UpsertFromPayload mirrors one raw order payload. The remote status is
// applied only when it moves the order forward; a stale or reordered
// payload never regresses a mirror.
func (s *OrderService) UpsertFromPayload(ctx context.Context, conn *connector.Connector, raw json.RawMessage) (*ordersync.RemoteOrder, error) {
	var payload zid.Order
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode order payload: %w", err)
	}

	incoming, err := orderMirrorFromPayload(conn.ID, &payload, raw)
	if err != nil {
		return nil, err
	}

	existing, err := s.orders.GetByRemoteID(ctx, conn.ID, incoming.RemoteID)
	switch {
	case err == nil:
		if !existing.Status.CanTransition(incoming.Status) {
			s.logger.Warn("ignoring backward status from payload",
				zap.String("remote_id", incoming.RemoteID),
				zap.String("current", string(existing.Status)),
				zap.String("incoming", string(incoming.Status)))
			incoming.Status = existing.Status
		}
		existing.Overwrite(incoming)
		if err := s.orders.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil

	case errors.Is(err, ordersync.ErrOrderNotFound):
		saveErr := s.orders.Save(ctx, incoming)
		if errors.Is(saveErr, ordersync.ErrDuplicateOrder) {
			// Lost the insert race; retry as an update.
			return s.UpsertFromPayload(ctx, conn, raw)
		}
		if saveErr != nil {
			return nil, saveErr
		}
		return incoming, nil

	default:
		return nil, err
	}
}

// ConvertToLocalOrder creates a local sales order from a mirrored one.
// Lines that match no local product are skipped with a warning; the
// dropped value is carried as a note so totals stay explainable. A
// mirror that was already converted returns its existing reference.
func (s *OrderService) ConvertToLocalOrder(ctx context.Context, conn *connector.Connector, order *ordersync.RemoteOrder) (string, error) {
	if order.IsConverted() {
		return order.LocalOrderRef, nil
	}

	var processed processedOrder
	if len(order.ProcessedData) > 0 {
		if err := json.Unmarshal(order.ProcessedData, &processed); err != nil {
			return "", fmt.Errorf("decode processed order: %w", err)
		}
	}

	customerID, err := s.resolveCustomer(ctx, conn, order)
	if err != nil {
		return "", err
	}

	var lines []ordersync.DraftLine
	var skipped []string
	for _, line := range processed.Lines {
		productID, err := s.resolveProduct(ctx, conn, line)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				s.logger.Warn("order line matched no local product",
					zap.String("remote_order_id", order.RemoteID),
					zap.String("remote_product_id", line.RemoteProductID),
					zap.String("sku", line.SKU))
				skipped = append(skipped, line.Name)
				continue
			}
			return "", err
		}
		lines = append(lines, ordersync.DraftLine{
			LocalProductID: productID,
			Description:    line.Name,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
		})
	}
	if len(lines) == 0 {
		return "", ErrNoMatchedLines
	}

	note := order.CustomerNote
	if len(skipped) > 0 {
		if note != "" {
			note += "\n"
		}
		note += "Unmatched lines skipped: " + strings.Join(skipped, ", ")
	}

	ref, err := s.desk.CreateDraftOrder(ctx, ordersync.DraftOrder{
		ConnectorID:     conn.ID,
		RemoteOrderID:   order.RemoteID,
		OrderCode:       order.OrderCode,
		LocalCustomerID: customerID,
		Note:            note,
		Currency:        order.Currency,
		Lines:           lines,
		ShippingTotal:   order.ShippingTotal,
	})
	if err != nil {
		return "", err
	}

	order.LinkLocalOrder(ref)
	if err := s.orders.Save(ctx, order); err != nil {
		return "", err
	}
	s.logger.Info("remote order converted",
		zap.String("remote_id", order.RemoteID),
		zap.String("local_ref", ref),
		zap.Int("lines", len(lines)),
		zap.Int("skipped", len(skipped)))
	return ref, nil
}

// PropagateStatus pushes a local fulfillment event to the platform when
// the connector's policy allows it. Unmapped events are ignored, and a
// push that would move the remote order backward is refused locally.
func (s *OrderService) PropagateStatus(ctx context.Context, localRef string, event ordersync.LocalEvent) error {
	order, err := s.orders.GetByLocalRef(ctx, localRef)
	if err != nil {
		return err
	}
	conn, err := s.connectors.GetByID(ctx, order.ConnectorID)
	if err != nil {
		return err
	}
	if !conn.SyncStatusToZid {
		return nil
	}

	status, mapped := s.outbound.Resolve(event)
	if !mapped {
		return nil
	}
	if !order.Status.CanTransition(status) {
		s.logger.Warn("refusing backward status push",
			zap.String("remote_id", order.RemoteID),
			zap.String("current", string(order.Status)),
			zap.String("requested", string(status)))
		return nil
	}

	if err := s.client.UpdateOrderStatus(ctx, conn, order.RemoteID, string(status)); err != nil {
		return err
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	return s.orders.Save(ctx, order)
}

// resolveCustomer finds or creates the local customer for an order per
// the connector's policy, and keeps the customer mirror linked.
func (s *OrderService) resolveCustomer(ctx context.Context, conn *connector.Connector, order *ordersync.RemoteOrder) (uuid.UUID, error) {
	var id uuid.UUID
	var err error

	switch conn.CustomerMatchBy {
	case connector.CustomerByEmail:
		id, err = s.lookupCustomerByEmail(ctx, order.CustomerEmail)
	case connector.CustomerByMobile:
		id, err = s.lookupCustomerByMobile(ctx, order.CustomerMobile)
	case connector.CustomerByBoth:
		id, err = s.lookupCustomerByEmail(ctx, order.CustomerEmail)
		if errors.Is(err, shared.ErrNotFound) {
			id, err = s.lookupCustomerByMobile(ctx, order.CustomerMobile)
		}
	case connector.CustomerAlways:
		err = shared.ErrNotFound
	default:
		err = shared.ErrNotFound
	}

	if errors.Is(err, shared.ErrNotFound) {
		id, err = s.directory.Create(ctx, order.CustomerName, order.CustomerEmail, order.CustomerMobile)
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *OrderService) lookupCustomerByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	if email == "" {
		return uuid.Nil, shared.ErrNotFound
	}
	return s.directory.FindByEmail(ctx, email)
}

func (s *OrderService) lookupCustomerByMobile(ctx context.Context, mobile string) (uuid.UUID, error) {
	if mobile == "" {
		return uuid.Nil, shared.ErrNotFound
	}
	return s.directory.FindByMobile(ctx, mobile)
}

// resolveProduct maps one order line to a local product per the
// connector's matching priority.
func (s *OrderService) resolveProduct(ctx context.Context, conn *connector.Connector, line processedLine) (uuid.UUID, error) {
	switch conn.MatchPriority {
	case connector.MatchMappingOnly:
		return s.lookupMappedProduct(ctx, conn.ID, line.RemoteProductID)
	case connector.MatchDirectOnly:
		return s.lookupProductByField(ctx, conn, line)
	default: // mapping first
		id, err := s.lookupMappedProduct(ctx, conn.ID, line.RemoteProductID)
		if errors.Is(err, shared.ErrNotFound) {
			return s.lookupProductByField(ctx, conn, line)
		}
		return id, err
	}
}

// lookupMappedProduct consults the stored mirror link for a remote
// product id.
func (s *OrderService) lookupMappedProduct(ctx context.Context, connectorID uuid.UUID, remoteProductID string) (uuid.UUID, error) {
	if remoteProductID == "" {
		return uuid.Nil, shared.ErrNotFound
	}
	p, err := s.products.GetByRemoteID(ctx, connectorID, remoteProductID)
	if err != nil {
		if errors.Is(err, mirror.ErrNotFound) {
			return uuid.Nil, shared.ErrNotFound
		}
		return uuid.Nil, err
	}
	if p.LocalProductID == nil {
		return uuid.Nil, shared.ErrNotFound
	}
	return *p.LocalProductID, nil
}

func (s *OrderService) lookupProductByField(ctx context.Context, conn *connector.Connector, line processedLine) (uuid.UUID, error) {
	switch conn.ProductMatchBy {
	case connector.MatchByBarcode:
		if line.Barcode == "" {
			return uuid.Nil, shared.ErrNotFound
		}
		return s.catalog.FindByBarcode(ctx, line.Barcode)
	case connector.MatchByName:
		if line.Name == "" {
			return uuid.Nil, shared.ErrNotFound
		}
		return s.catalog.FindByName(ctx, line.Name)
	default:
		if line.SKU == "" {
			return uuid.Nil, shared.ErrNotFound
		}
		return s.catalog.FindBySKU(ctx, line.SKU)
	}
}

// orderMirrorFromPayload converts one order payload to a mirror with
// the normalized lines attached.
func orderMirrorFromPayload(connectorID uuid.UUID, payload *zid.Order, raw json.RawMessage) (*ordersync.RemoteOrder, error) {
	order, err := ordersync.NewRemoteOrder(connectorID, payload.ID.String())
	if err != nil {
		return nil, err
	}
	order.OrderCode = payload.Code
	order.Status = statusFromCode(payload.Status.Code)
	order.PaymentStatus = payload.PaymentStatus
	order.PaymentMethod = payload.Payment.Method.Code
	order.CustomerName = payload.Customer.Name
	order.CustomerEmail = payload.Customer.Email
	order.CustomerMobile = payload.Customer.Mobile
	order.CustomerNote = payload.CustomerNote
	order.Subtotal = payload.Subtotal
	order.ShippingTotal = payload.ShippingTotal
	order.Total = payload.Total
	order.Currency = payload.Currency
	order.RawData = raw
	order.OrderedAt = parseRemoteTime(payload.CreatedAt)

	processed := processedOrder{Lines: make([]processedLine, 0, len(payload.Products))}
	for _, p := range payload.Products {
		processed.Lines = append(processed.Lines, processedLine{
			RemoteProductID: p.ID,
			Name:            p.Name.Text().Resolve(p.SKU),
			SKU:             p.SKU,
			Barcode:         p.Barcode,
			Quantity:        p.Quantity,
			UnitPrice:       p.Price,
			Total:           p.Total,
		})
	}
	data, err := json.Marshal(processed)
	if err != nil {
		return nil, err
	}
	order.ProcessedData = data
	return order, nil
}

// statusFromCode normalizes the platform's status code. Unknown codes
// map to new so the forward-only guard can still reason about them.
func statusFromCode(code string) ordersync.Status {
	normalized := ordersync.Status(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "-", "_")))
	if normalized == "in_delivery" {
		normalized = ordersync.StatusInDelivery
	}
	if normalized.IsValid() {
		return normalized
	}
	return ordersync.StatusNew
}
