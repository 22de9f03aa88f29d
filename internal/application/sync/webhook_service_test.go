package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

type webhookMocks struct {
	connectors    *MockConnectorRepository
	subscriptions *MockWebhookSubscriptionRepository
	products      *MockProductRepository
	queues        *MockQueueRepository
	dedupe        *MockIdempotencyStore
}

func newWebhookService(t *testing.T) (*WebhookService, *webhookMocks) {
	t.Helper()
	m := &webhookMocks{
		connectors:    new(MockConnectorRepository),
		subscriptions: new(MockWebhookSubscriptionRepository),
		products:      new(MockProductRepository),
		queues:        new(MockQueueRepository),
		dedupe:        new(MockIdempotencyStore),
	}
	client := zid.NewClient(zid.DefaultConfig(), zap.NewNop())
	imports := NewImportService(m.connectors, m.queues, client, zap.NewNop())
	orders, _, _, _, _, _, _ := newOrderService(t)
	service := NewWebhookService(
		m.connectors, m.subscriptions, m.products, imports, orders,
		m.dedupe, client, zap.NewNop())
	return service, m
}

func orderCreateEvent(storeID string) InboundEvent {
	return InboundEvent{
		ID:      "evt-1",
		Event:   "order.create",
		StoreID: storeID,
		Payload: json.RawMessage(`{"id": 987, "code": "ORD-987"}`),
	}
}

func expectNoSubscriptions(m *webhookMocks) {
	m.subscriptions.On("List", mock.Anything, mock.AnythingOfType("mirror.Filter")).
		Return([]*mirror.WebhookSubscription{}, nil)
}

func TestWebhookService_HandleEvent_EnqueuesOrder(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")
	event := orderCreateEvent(conn.StoreID)

	m.dedupe.On("MarkProcessed", ctx, "webhook:"+conn.StoreID+":evt-1", 24*time.Hour).
		Return(true, nil)
	m.connectors.On("GetByStoreID", ctx, conn.StoreID).Return(conn, nil)
	expectNoSubscriptions(m)
	m.queues.On("NextSequence", ctx, conn.ID, queue.ModelOrder).Return(int64(3), nil)

	var created *queue.Queue
	m.queues.On("Create", ctx, mock.AnythingOfType("*queue.Queue")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*queue.Queue)
		}).Return(nil)

	err := service.HandleEvent(ctx, event)

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, "ZID/ORDER/00003", created.Name)
	assert.Len(t, created.Lines, 1)
	assert.Equal(t, "987", created.Lines[0].RemoteID)
}

func TestWebhookService_HandleEvent_DuplicateDropped(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	event := orderCreateEvent("12345")

	m.dedupe.On("MarkProcessed", ctx, "webhook:12345:evt-1", 24*time.Hour).
		Return(false, nil)

	err := service.HandleEvent(ctx, event)

	assert.NoError(t, err)
	m.connectors.AssertNotCalled(t, "GetByStoreID", mock.Anything, mock.Anything)
	m.queues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_UnknownStoreDropped(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	event := orderCreateEvent("99999")

	m.dedupe.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)
	m.connectors.On("GetByStoreID", ctx, "99999").Return(nil, connector.ErrConnectorNotFound)

	err := service.HandleEvent(ctx, event)

	assert.NoError(t, err)
	m.queues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_ProcessingDisabled(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")
	conn.AutoProcessWebhooks = false
	event := orderCreateEvent(conn.StoreID)

	m.dedupe.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)
	m.connectors.On("GetByStoreID", ctx, conn.StoreID).Return(conn, nil)
	expectNoSubscriptions(m)

	err := service.HandleEvent(ctx, event)

	assert.NoError(t, err)
	m.queues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_ProductDeleteDeactivates(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")

	product, err := mirror.NewProduct(conn.ID, "prod-1")
	assert.NoError(t, err)
	assert.True(t, product.Active)

	m.dedupe.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)
	m.connectors.On("GetByStoreID", ctx, conn.StoreID).Return(conn, nil)
	expectNoSubscriptions(m)
	m.products.On("GetByRemoteID", ctx, conn.ID, "prod-1").Return(product, nil)
	m.products.On("Save", ctx, product).Return(nil)

	err = service.HandleEvent(ctx, InboundEvent{
		ID:      "evt-2",
		Event:   "product.delete",
		StoreID: conn.StoreID,
		Payload: json.RawMessage(`{"id": "prod-1"}`),
	})

	assert.NoError(t, err)
	assert.False(t, product.Active)
	m.queues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_ProductDeleteUnknownMirror(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")

	m.dedupe.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)
	m.connectors.On("GetByStoreID", ctx, conn.StoreID).Return(conn, nil)
	expectNoSubscriptions(m)
	m.products.On("GetByRemoteID", ctx, conn.ID, "prod-9").Return(nil, mirror.ErrNotFound)

	err := service.HandleEvent(ctx, InboundEvent{
		ID:      "evt-3",
		Event:   "product.delete",
		StoreID: conn.StoreID,
		Payload: json.RawMessage(`{"id": "prod-9"}`),
	})

	assert.NoError(t, err)
	m.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_AbandonedCartOnlyNoted(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")

	m.dedupe.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)
	m.connectors.On("GetByStoreID", ctx, conn.StoreID).Return(conn, nil)
	expectNoSubscriptions(m)

	err := service.HandleEvent(ctx, InboundEvent{
		ID:      "evt-4",
		Event:   "abandoned_cart.created",
		StoreID: conn.StoreID,
		Payload: json.RawMessage(`{"id": 77}`),
	})

	assert.NoError(t, err)
	m.queues.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWebhookService_HandleEvent_BumpsTriggerCount(t *testing.T) {
	service, m := newWebhookService(t)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")
	conn.AutoProcessWebhooks = false

	sub, err := mirror.NewWebhookSubscription(conn.ID, "wh-1", "order.create", "https://erp.example.com/zid/webhook/order.create")
	assert.NoError(t, err)

	m.dedupe.On("MarkProcessed", ctx, mock.Anything, mock.Anything).Return(true, nil)
	m.connectors.On("GetByStoreID", ctx, conn.StoreID).Return(conn, nil)
	m.subscriptions.On("List", ctx, mock.AnythingOfType("mirror.Filter")).
		Return([]*mirror.WebhookSubscription{sub}, nil)
	m.subscriptions.On("Save", ctx, sub).Return(nil)

	err = service.HandleEvent(ctx, orderCreateEvent(conn.StoreID))

	assert.NoError(t, err)
	assert.Equal(t, 1, sub.TriggerCount)
}

// newWebhookAPIServer pretends order.create is already registered
// remotely and records every new registration it accepts.
func newWebhookAPIServer(t *testing.T, registered *[]string) *httptest.Server {
	t.Helper()
	nextID := 100
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`{
				"results": [{"id": 1, "event": "order.create", "target_url": "https://erp.example.com/zid/webhook/order.create"}],
				"count": 1,
				"next": ""
			}`))
		case http.MethodPost:
			var body struct {
				Event     string `json:"event"`
				TargetURL string `json:"target_url"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("bad registration body: %v", err)
			}
			if body.TargetURL != "https://erp.example.com/zid/webhook/"+body.Event {
				t.Errorf("unexpected target url %q", body.TargetURL)
			}
			*registered = append(*registered, body.Event)
			nextID++
			_, _ = fmt.Fprintf(w, `{"id": %d, "event": %q, "target_url": %q}`, nextID, body.Event, body.TargetURL)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
}

func TestWebhookService_EnsureRegistrations(t *testing.T) {
	var registered []string
	server := newWebhookAPIServer(t, &registered)
	defer server.Close()

	service, m := newWebhookService(t)
	ctx := context.Background()
	conn := newConnectedConnector(server.URL)

	m.connectors.On("GetByID", ctx, conn.ID).Return(conn, nil)
	m.subscriptions.On("GetByRemoteID", ctx, conn.ID, mock.Anything).Return(nil, mirror.ErrNotFound)
	m.subscriptions.On("Save", ctx, mock.AnythingOfType("*mirror.WebhookSubscription")).Return(nil)

	err := service.EnsureRegistrations(ctx, conn.ID, "https://erp.example.com/")

	assert.NoError(t, err)
	// order.create was already registered remotely; the rest were added.
	assert.Len(t, registered, len(SubscribedEvents)-1)
	assert.NotContains(t, registered, "order.create")
	assert.Contains(t, registered, "product.delete")
	// One local mirror row per subscribed event.
	m.subscriptions.AssertNumberOfCalls(t, "Save", len(SubscribedEvents))
}
