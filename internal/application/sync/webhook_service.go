package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/domain/shared"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// SubscribedEvents are the platform events the connector listens for.
var SubscribedEvents = []string{
	"order.create",
	"order.status.update",
	"product.create",
	"product.update",
	"product.delete",
	"customer.create",
	"customer.update",
	"abandoned_cart.created",
}

// webhookDedupeTTL bounds how long an event id is remembered. The
// platform retries deliveries for at most a day.
const webhookDedupeTTL = 24 * time.Hour

// InboundEvent is one webhook delivery after transport decoding.
type InboundEvent struct {
	ID      string
	Event   string
	StoreID string
	Payload json.RawMessage
}

// WebhookService maintains remote webhook registrations and turns
// inbound deliveries into queued work. Deliveries are acknowledged
// unconditionally; a payload the service cannot place is logged and
// dropped rather than bounced, since the platform would only retry it
// into the same failure.
type WebhookService struct {
	connectors    connector.Repository
	subscriptions mirror.WebhookSubscriptionRepository
	products      mirror.ProductRepository
	imports       *ImportService
	orders        *OrderService
	dedupe        shared.IdempotencyStore
	dedupeTTL     time.Duration
	client        *zid.Client
	logger        *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	connectors connector.Repository,
	subscriptions mirror.WebhookSubscriptionRepository,
	products mirror.ProductRepository,
	imports *ImportService,
	orders *OrderService,
	dedupe shared.IdempotencyStore,
	client *zid.Client,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		connectors:    connectors,
		subscriptions: subscriptions,
		products:      products,
		imports:       imports,
		orders:        orders,
		dedupe:        dedupe,
		dedupeTTL:     webhookDedupeTTL,
		client:        client,
		logger:        logger,
	}
}

// SetDedupeTTL overrides how long processed event ids are remembered.
// Non-positive values keep the default.
func (s *WebhookService) SetDedupeTTL(ttl time.Duration) {
	if ttl > 0 {
		s.dedupeTTL = ttl
	}
}

// EnsureRegistrations reconciles the remote registrations against
// SubscribedEvents: missing events are registered, registrations held
// remotely are mirrored locally.
func (s *WebhookService) EnsureRegistrations(ctx context.Context, connectorID uuid.UUID, targetBaseURL string) error {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return err
	}

	remote, err := s.client.ListWebhooks(ctx, conn)
	if err != nil {
		return err
	}
	registered := make(map[string]zid.Webhook, len(remote))
	for _, wh := range remote {
		registered[wh.Event] = wh
	}

	for _, event := range SubscribedEvents {
		wh, ok := registered[event]
		if !ok {
			targetURL := strings.TrimRight(targetBaseURL, "/") + "/zid/webhook/" + event
			created, err := s.client.RegisterWebhook(ctx, conn, event, targetURL)
			if err != nil {
				return fmt.Errorf("register %s: %w", event, err)
			}
			wh = *created
			s.logger.Info("webhook registered",
				zap.String("connector_id", connectorID.String()),
				zap.String("event", event))
		}
		if err := s.mirrorSubscription(ctx, connectorID, wh); err != nil {
			return err
		}
	}
	return nil
}

// RemoveRegistrations deletes every remote registration and its local
// mirror. Used on disconnect.
func (s *WebhookService) RemoveRegistrations(ctx context.Context, connectorID uuid.UUID) error {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return err
	}

	subs, err := s.subscriptions.List(ctx, mirror.Filter{ConnectorID: connectorID})
	if err != nil {
		return err
	}
	for _, sub := range subs {
		if err := s.client.DeleteWebhook(ctx, conn, sub.RemoteID); err != nil {
			s.logger.Warn("failed to delete remote webhook",
				zap.String("event", sub.Event), zap.Error(err))
		}
		if err := s.subscriptions.Delete(ctx, sub.ID); err != nil {
			return err
		}
	}
	return nil
}

// ListSubscriptions retrieves the local subscription mirror
func (s *WebhookService) ListSubscriptions(ctx context.Context, connectorID uuid.UUID) ([]*mirror.WebhookSubscription, error) {
	return s.subscriptions.List(ctx, mirror.Filter{ConnectorID: connectorID})
}

// HandleEvent processes one inbound delivery. Replayed event ids are
// dropped, unknown stores are dropped, and everything else lands on an
// import queue or is applied directly depending on the connector's
// automation policy.
func (s *WebhookService) HandleEvent(ctx context.Context, event InboundEvent) error {
	log := s.logger.With(
		zap.String("event", event.Event),
		zap.String("event_id", event.ID),
		zap.String("store_id", event.StoreID))

	if event.ID != "" {
		fresh, err := s.dedupe.MarkProcessed(ctx, eventDedupeKey(event), s.dedupeTTL)
		if err != nil {
			log.Error("dedupe check failed", zap.Error(err))
		} else if !fresh {
			log.Info("duplicate delivery dropped")
			return nil
		}
	}

	conn, err := s.connectors.GetByStoreID(ctx, event.StoreID)
	if err != nil {
		if errors.Is(err, connector.ErrConnectorNotFound) {
			log.Warn("delivery for unknown store dropped")
			return nil
		}
		return err
	}

	s.bumpTriggerCount(ctx, conn.ID, event.Event)

	if !conn.AutoProcessWebhooks {
		log.Info("webhook processing disabled, delivery dropped")
		return nil
	}

	switch {
	case strings.HasPrefix(event.Event, "order."):
		return s.handleOrderEvent(ctx, conn, event)
	case strings.HasPrefix(event.Event, "product."):
		return s.handleProductEvent(ctx, conn, event)
	case strings.HasPrefix(event.Event, "customer."):
		return s.handleCustomerEvent(ctx, conn, event)
	case strings.HasPrefix(event.Event, "abandoned_cart."):
		// Carts are reconciled by the periodic catalog sync; the event
		// only confirms there is something to fetch.
		log.Info("abandoned cart event noted")
		return nil
	default:
		log.Warn("unhandled event type dropped")
		return nil
	}
}

func (s *WebhookService) handleOrderEvent(ctx context.Context, conn *connector.Connector, event InboundEvent) error {
	remoteID, name, ok := orderLineIdentity(event.Payload)
	if !ok {
		s.logger.Warn("order event payload unreadable", zap.String("event_id", event.ID))
		return nil
	}
	_, err := s.imports.EnqueueSingle(ctx, conn, queue.ModelOrder, remoteID, name, event.Payload)
	return err
}

func (s *WebhookService) handleProductEvent(ctx context.Context, conn *connector.Connector, event InboundEvent) error {
	if event.Event == "product.delete" {
		return s.deactivateProduct(ctx, conn, event.Payload)
	}
	remoteID, name, ok := productLineIdentity(event.Payload)
	if !ok {
		s.logger.Warn("product event payload unreadable", zap.String("event_id", event.ID))
		return nil
	}
	_, err := s.imports.EnqueueSingle(ctx, conn, queue.ModelProduct, remoteID, name, event.Payload)
	return err
}

func (s *WebhookService) handleCustomerEvent(ctx context.Context, conn *connector.Connector, event InboundEvent) error {
	remoteID, name, ok := customerLineIdentity(event.Payload)
	if !ok {
		s.logger.Warn("customer event payload unreadable", zap.String("event_id", event.ID))
		return nil
	}
	_, err := s.imports.EnqueueSingle(ctx, conn, queue.ModelCustomer, remoteID, name, event.Payload)
	return err
}

// deactivateProduct handles a remote delete: the mirror row is kept but
// flagged inactive so mappings and history stay resolvable.
func (s *WebhookService) deactivateProduct(ctx context.Context, conn *connector.Connector, payload json.RawMessage) error {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.ID == "" {
		s.logger.Warn("product delete payload unreadable")
		return nil
	}

	product, err := s.products.GetByRemoteID(ctx, conn.ID, body.ID)
	if err != nil {
		if errors.Is(err, mirror.ErrNotFound) {
			return nil
		}
		return err
	}
	product.Deactivate()
	return s.products.Save(ctx, product)
}

func (s *WebhookService) mirrorSubscription(ctx context.Context, connectorID uuid.UUID, wh zid.Webhook) error {
	existing, err := s.subscriptions.GetByRemoteID(ctx, connectorID, wh.ID.String())
	switch {
	case err == nil:
		existing.Event = wh.Event
		existing.TargetURL = wh.TargetURL
		existing.UpdatedAt = time.Now()
		return s.subscriptions.Save(ctx, existing)
	case errors.Is(err, mirror.ErrNotFound):
		sub, err := mirror.NewWebhookSubscription(connectorID, wh.ID.String(), wh.Event, wh.TargetURL)
		if err != nil {
			return err
		}
		return s.subscriptions.Save(ctx, sub)
	default:
		return err
	}
}

func (s *WebhookService) bumpTriggerCount(ctx context.Context, connectorID uuid.UUID, event string) {
	subs, err := s.subscriptions.List(ctx, mirror.Filter{ConnectorID: connectorID})
	if err != nil {
		s.logger.Error("subscription lookup failed", zap.Error(err))
		return
	}
	for _, sub := range subs {
		if sub.Event != event {
			continue
		}
		sub.TriggerCount++
		sub.UpdatedAt = time.Now()
		if err := s.subscriptions.Save(ctx, sub); err != nil {
			s.logger.Error("failed to bump trigger count", zap.Error(err))
		}
		return
	}
}

func eventDedupeKey(event InboundEvent) string {
	return "webhook:" + event.StoreID + ":" + event.ID
}
