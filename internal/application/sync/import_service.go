package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// queueNamePrefix maps model types to the sequence reference prefix
// used in queue names, e.g. "ZID/ORDER/00042".
var queueNamePrefix = map[queue.ModelType]string{
	queue.ModelOrder:    "ZID/ORDER",
	queue.ModelProduct:  "ZID/PRODUCT",
	queue.ModelCustomer: "ZID/CUSTOMER",
}

// ImportService pulls remote records into import queues. It never
// touches mirror tables directly; everything lands as a raw payload on
// a queue line and is materialized by the processor. Each import kind
// is guarded by a per-connector lock so overlapping runs cannot race.
type ImportService struct {
	connectors connector.Repository
	queues     queue.Repository
	client     *zid.Client
	logger     *zap.Logger
}

// NewImportService creates a new ImportService
func NewImportService(connectors connector.Repository, queues queue.Repository, client *zid.Client, logger *zap.Logger) *ImportService {
	return &ImportService{
		connectors: connectors,
		queues:     queues,
		client:     client,
		logger:     logger,
	}
}

// ImportOrders fetches orders updated since the connector's watermark
// and enqueues them. The watermark advances only after the queue is
// persisted, so a failed run is retried from the same point.
func (s *ImportService) ImportOrders(ctx context.Context, connectorID uuid.UUID) (*queue.Queue, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	if err := conn.AcquireLock(connector.ImportOrders, startedAt); err != nil {
		return nil, err
	}
	if err := s.connectors.Update(ctx, conn); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx, conn, connector.ImportOrders)

	params := url.Values{}
	if conn.OrderImportSince != nil {
		params.Set("since", conn.OrderImportSince.UTC().Format(time.RFC3339))
	}
	items, err := s.client.CollectPages(ctx, conn, "managers/store/orders", params)
	if err != nil {
		return nil, err
	}

	q, err := s.buildQueue(ctx, conn, queue.ModelOrder, items, orderLineIdentity)
	if err != nil {
		return nil, err
	}

	conn.OrderImportSince = &startedAt
	conn.LastSyncAt = &startedAt
	return q, nil
}

// ImportProducts fetches the full product list and enqueues it.
func (s *ImportService) ImportProducts(ctx context.Context, connectorID uuid.UUID) (*queue.Queue, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	if err := conn.AcquireLock(connector.ImportProducts, startedAt); err != nil {
		return nil, err
	}
	if err := s.connectors.Update(ctx, conn); err != nil {
		return nil, err
	}
	defer s.releaseLock(ctx, conn, connector.ImportProducts)

	items, err := s.client.CollectPages(ctx, conn, "products", nil)
	if err != nil {
		return nil, err
	}

	q, err := s.buildQueue(ctx, conn, queue.ModelProduct, items, productLineIdentity)
	if err != nil {
		return nil, err
	}

	conn.ProductImportSince = &startedAt
	conn.LastSyncAt = &startedAt
	return q, nil
}

// EnqueueSingle creates a one-line queue for a record pushed by a
// webhook, bypassing the full list fetch.
func (s *ImportService) EnqueueSingle(ctx context.Context, conn *connector.Connector, modelType queue.ModelType, remoteID, name string, payload json.RawMessage) (*queue.Queue, error) {
	q, err := s.newNamedQueue(ctx, conn.ID, modelType)
	if err != nil {
		return nil, err
	}
	if _, err := q.AddLine(remoteID, name, payload); err != nil {
		return nil, err
	}
	if err := s.queues.Create(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("queued webhook record",
		zap.String("queue", q.Name),
		zap.String("remote_id", remoteID))
	return q, nil
}

// lineIdentity extracts the remote id and display name from one raw
// list item. Items it cannot identify are skipped with a warning.
type lineIdentity func(raw json.RawMessage) (remoteID, name string, ok bool)

func orderLineIdentity(raw json.RawMessage) (string, string, bool) {
	var o zid.Order
	if err := json.Unmarshal(raw, &o); err != nil || o.ID.String() == "" {
		return "", "", false
	}
	name := o.Code
	if name == "" {
		name = o.ID.String()
	}
	return o.ID.String(), name, true
}

func productLineIdentity(raw json.RawMessage) (string, string, bool) {
	var p zid.Product
	if err := json.Unmarshal(raw, &p); err != nil || strings.TrimSpace(p.ID) == "" {
		return "", "", false
	}
	name := p.Name.Text().Resolve(p.SKU)
	if name == "" {
		name = p.ID
	}
	return p.ID, name, true
}

func customerLineIdentity(raw json.RawMessage) (string, string, bool) {
	var c zid.Customer
	if err := json.Unmarshal(raw, &c); err != nil || c.ID.String() == "" {
		return "", "", false
	}
	name := c.Name
	if name == "" {
		name = c.ID.String()
	}
	return c.ID.String(), name, true
}

// buildQueue wraps the fetched items in a named queue. The queue is
// created even when the fetch returned nothing, so the run is visible;
// empty queues are pruned by the cleanup job.
func (s *ImportService) buildQueue(ctx context.Context, conn *connector.Connector, modelType queue.ModelType, items []json.RawMessage, identify lineIdentity) (*queue.Queue, error) {
	q, err := s.newNamedQueue(ctx, conn.ID, modelType)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		remoteID, name, ok := identify(item)
		if !ok {
			s.logger.Warn("skipping unidentifiable record",
				zap.String("queue", q.Name),
				zap.String("model_type", string(modelType)))
			continue
		}
		if _, err := q.AddLine(remoteID, name, item); err != nil {
			return nil, err
		}
	}

	if err := s.queues.Create(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("import queue created",
		zap.String("queue", q.Name),
		zap.String("connector_id", conn.ID.String()),
		zap.Int("lines", len(q.Lines)))
	return q, nil
}

func (s *ImportService) newNamedQueue(ctx context.Context, connectorID uuid.UUID, modelType queue.ModelType) (*queue.Queue, error) {
	seq, err := s.queues.NextSequence(ctx, connectorID, modelType)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("%s/%05d", queueNamePrefix[modelType], seq)
	return queue.NewQueue(connectorID, name, modelType)
}

// releaseLock frees the import lock and persists the connector,
// including any watermark the caller advanced.
func (s *ImportService) releaseLock(ctx context.Context, conn *connector.Connector, kind connector.ImportKind) {
	conn.ReleaseLock(kind)
	if err := s.connectors.Update(ctx, conn); err != nil {
		s.logger.Error("failed to release import lock",
			zap.String("connector_id", conn.ID.String()),
			zap.String("import_kind", string(kind)),
			zap.Error(err))
	}
}
