package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/domain/queue"
	"github.com/erp/zidsync/internal/domain/stocksync"
)

// MockConnectorRepository is a mock implementation of connector.Repository
type MockConnectorRepository struct {
	mock.Mock
}

func (m *MockConnectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*connector.Connector, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.Connector), args.Error(1)
}

func (m *MockConnectorRepository) GetByStoreID(ctx context.Context, storeID string) (*connector.Connector, error) {
	args := m.Called(ctx, storeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*connector.Connector), args.Error(1)
}

func (m *MockConnectorRepository) List(ctx context.Context, filter connector.Filter) ([]*connector.Connector, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*connector.Connector), args.Error(1)
}

func (m *MockConnectorRepository) Count(ctx context.Context, filter connector.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnectorRepository) Create(ctx context.Context, c *connector.Connector) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockConnectorRepository) Update(ctx context.Context, c *connector.Connector) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockConnectorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of ordersync.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*ordersync.RemoteOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.RemoteOrder), args.Error(1)
}

func (m *MockOrderRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*ordersync.RemoteOrder, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.RemoteOrder), args.Error(1)
}

func (m *MockOrderRepository) GetByLocalRef(ctx context.Context, localRef string) (*ordersync.RemoteOrder, error) {
	args := m.Called(ctx, localRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.RemoteOrder), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context, filter ordersync.OrderFilter) ([]*ordersync.RemoteOrder, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*ordersync.RemoteOrder), args.Error(1)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter ordersync.OrderFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *ordersync.RemoteOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockReverseRepository is a mock implementation of ordersync.ReverseRepository
type MockReverseRepository struct {
	mock.Mock
}

func (m *MockReverseRepository) GetByID(ctx context.Context, id uuid.UUID) (*ordersync.ReverseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ordersync.ReverseOrder), args.Error(1)
}

func (m *MockReverseRepository) List(ctx context.Context, filter ordersync.ReverseFilter) ([]*ordersync.ReverseOrder, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*ordersync.ReverseOrder), args.Error(1)
}

func (m *MockReverseRepository) Count(ctx context.Context, filter ordersync.ReverseFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReverseRepository) Create(ctx context.Context, r *ordersync.ReverseOrder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReverseRepository) Update(ctx context.Context, r *ordersync.ReverseOrder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockProductRepository is a mock implementation of mirror.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*mirror.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Product), args.Error(1)
}

func (m *MockProductRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Product, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, connectorID uuid.UUID, sku string) (*mirror.Product, error) {
	args := m.Called(ctx, connectorID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcode(ctx context.Context, connectorID uuid.UUID, barcode string) (*mirror.Product, error) {
	args := m.Called(ctx, connectorID, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Product), args.Error(1)
}

func (m *MockProductRepository) FindByName(ctx context.Context, connectorID uuid.UUID, name string) (*mirror.Product, error) {
	args := m.Called(ctx, connectorID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Product), args.Error(1)
}

func (m *MockProductRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter mirror.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, p *mirror.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteByConnector(ctx context.Context, connectorID uuid.UUID) error {
	args := m.Called(ctx, connectorID)
	return args.Error(0)
}

// MockVariantRepository is a mock implementation of mirror.VariantRepository
type MockVariantRepository struct {
	mock.Mock
}

func (m *MockVariantRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Variant, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Variant), args.Error(1)
}

func (m *MockVariantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*mirror.Variant, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]*mirror.Variant), args.Error(1)
}

func (m *MockVariantRepository) Save(ctx context.Context, v *mirror.Variant) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of mirror.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Category, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Category), args.Error(1)
}

func (m *MockCategoryRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Category, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.Category), args.Error(1)
}

func (m *MockCategoryRepository) Count(ctx context.Context, filter mirror.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, c *mirror.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteByConnector(ctx context.Context, connectorID uuid.UUID) error {
	args := m.Called(ctx, connectorID)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, eventID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	args := m.Called(ctx, eventID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAttributeRepository is a mock implementation of mirror.AttributeRepository
type MockAttributeRepository struct {
	mock.Mock
}

func (m *MockAttributeRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Attribute, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Attribute), args.Error(1)
}

func (m *MockAttributeRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Attribute, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.Attribute), args.Error(1)
}

func (m *MockAttributeRepository) Save(ctx context.Context, a *mirror.Attribute) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockLocationRepository is a mock implementation of mirror.LocationRepository
type MockLocationRepository struct {
	mock.Mock
}

func (m *MockLocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*mirror.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Location), args.Error(1)
}

func (m *MockLocationRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Location, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Location), args.Error(1)
}

func (m *MockLocationRepository) GetDefault(ctx context.Context, connectorID uuid.UUID) (*mirror.Location, error) {
	args := m.Called(ctx, connectorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Location), args.Error(1)
}

func (m *MockLocationRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Location, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.Location), args.Error(1)
}

func (m *MockLocationRepository) Save(ctx context.Context, l *mirror.Location) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of mirror.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Customer, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Customer), args.Error(1)
}

func (m *MockCustomerRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, c *mirror.Customer) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// MockReverseReasonRepository is a mock implementation of mirror.ReverseReasonRepository
type MockReverseReasonRepository struct {
	mock.Mock
}

func (m *MockReverseReasonRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.ReverseReason, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.ReverseReason), args.Error(1)
}

func (m *MockReverseReasonRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.ReverseReason, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.ReverseReason), args.Error(1)
}

func (m *MockReverseReasonRepository) Save(ctx context.Context, r *mirror.ReverseReason) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

// MockAbandonedCartRepository is a mock implementation of mirror.AbandonedCartRepository
type MockAbandonedCartRepository struct {
	mock.Mock
}

func (m *MockAbandonedCartRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.AbandonedCart, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.AbandonedCart), args.Error(1)
}

func (m *MockAbandonedCartRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.AbandonedCart, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.AbandonedCart), args.Error(1)
}

func (m *MockAbandonedCartRepository) Save(ctx context.Context, a *mirror.AbandonedCart) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// MockPayoutRepository is a mock implementation of mirror.PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.Payout, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.Payout), args.Error(1)
}

func (m *MockPayoutRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.Payout, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.Payout), args.Error(1)
}

func (m *MockPayoutRepository) Save(ctx context.Context, p *mirror.Payout) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockWebhookSubscriptionRepository is a mock implementation of mirror.WebhookSubscriptionRepository
type MockWebhookSubscriptionRepository struct {
	mock.Mock
}

func (m *MockWebhookSubscriptionRepository) GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*mirror.WebhookSubscription, error) {
	args := m.Called(ctx, connectorID, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mirror.WebhookSubscription), args.Error(1)
}

func (m *MockWebhookSubscriptionRepository) List(ctx context.Context, filter mirror.Filter) ([]*mirror.WebhookSubscription, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*mirror.WebhookSubscription), args.Error(1)
}

func (m *MockWebhookSubscriptionRepository) Save(ctx context.Context, w *mirror.WebhookSubscription) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWebhookSubscriptionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQueueRepository is a mock implementation of queue.Repository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*queue.Queue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Queue), args.Error(1)
}

func (m *MockQueueRepository) List(ctx context.Context, filter queue.Filter) ([]*queue.Queue, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*queue.Queue), args.Error(1)
}

func (m *MockQueueRepository) Count(ctx context.Context, filter queue.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueRepository) ListPending(ctx context.Context, limit int) ([]*queue.Queue, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]*queue.Queue), args.Error(1)
}

func (m *MockQueueRepository) Create(ctx context.Context, q *queue.Queue) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQueueRepository) Update(ctx context.Context, q *queue.Queue) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQueueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQueueRepository) SaveLine(ctx context.Context, line *queue.Line) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

func (m *MockQueueRepository) NextSequence(ctx context.Context, connectorID uuid.UUID, modelType queue.ModelType) (int64, error) {
	args := m.Called(ctx, connectorID, modelType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueRepository) DeleteEmptyBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueueRepository) DeleteCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockMappingRepository is a mock implementation of stocksync.MappingRepository
type MockMappingRepository struct {
	mock.Mock
}

func (m *MockMappingRepository) GetByID(ctx context.Context, id uuid.UUID) (*stocksync.LocationMapping, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stocksync.LocationMapping), args.Error(1)
}

func (m *MockMappingRepository) FindForCell(ctx context.Context, connectorID, localProductID, localLocationID uuid.UUID) (*stocksync.LocationMapping, error) {
	args := m.Called(ctx, connectorID, localProductID, localLocationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stocksync.LocationMapping), args.Error(1)
}

func (m *MockMappingRepository) List(ctx context.Context, filter stocksync.MappingFilter) ([]*stocksync.LocationMapping, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*stocksync.LocationMapping), args.Error(1)
}

func (m *MockMappingRepository) Count(ctx context.Context, filter stocksync.MappingFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMappingRepository) Create(ctx context.Context, mapping *stocksync.LocationMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) Update(ctx context.Context, mapping *stocksync.LocationMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockMappingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLogRepository is a mock implementation of stocksync.LogRepository
type MockLogRepository struct {
	mock.Mock
}

func (m *MockLogRepository) Append(ctx context.Context, log *stocksync.SyncLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockLogRepository) List(ctx context.Context, filter stocksync.LogFilter) ([]*stocksync.SyncLog, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*stocksync.SyncLog), args.Error(1)
}

func (m *MockLogRepository) Count(ctx context.Context, filter stocksync.LogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLogRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockCatalog is a mock implementation of ordersync.Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindBySKU(ctx context.Context, sku string) (uuid.UUID, error) {
	args := m.Called(ctx, sku)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCatalog) FindByBarcode(ctx context.Context, barcode string) (uuid.UUID, error) {
	args := m.Called(ctx, barcode)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCatalog) FindByName(ctx context.Context, name string) (uuid.UUID, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockCustomerDirectory is a mock implementation of ordersync.CustomerDirectory
type MockCustomerDirectory struct {
	mock.Mock
}

func (m *MockCustomerDirectory) FindByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCustomerDirectory) FindByMobile(ctx context.Context, mobile string) (uuid.UUID, error) {
	args := m.Called(ctx, mobile)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockCustomerDirectory) Create(ctx context.Context, name, email, mobile string) (uuid.UUID, error) {
	args := m.Called(ctx, name, email, mobile)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

// MockOrderDesk is a mock implementation of ordersync.OrderDesk
type MockOrderDesk struct {
	mock.Mock
}

func (m *MockOrderDesk) CreateDraftOrder(ctx context.Context, draft ordersync.DraftOrder) (string, error) {
	args := m.Called(ctx, draft)
	return args.String(0), args.Error(1)
}

// MockStockLedger is a mock implementation of stocksync.StockLedger
type MockStockLedger struct {
	mock.Mock
}

func (m *MockStockLedger) OnHand(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, productID, locationID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockLineHandler is a mock implementation of queue.LineHandler
type MockLineHandler struct {
	mock.Mock
	modelType queue.ModelType
}

func (m *MockLineHandler) ModelType() queue.ModelType {
	return m.modelType
}

func (m *MockLineHandler) HandleLine(ctx context.Context, conn *connector.Connector, line *queue.Line) error {
	args := m.Called(ctx, conn, line)
	return args.Error(0)
}

// newConnectedConnector builds a connector with live credentials
// pointed at a test server.
func newConnectedConnector(baseURL string) *connector.Connector {
	conn, _ := connector.NewConnector("Test Store", "12345")
	_ = conn.MarkConnected("access-token", "manager-token", connector.StoreProfile{
		Name: "Test Store", Currency: "SAR",
	})
	conn.APIBaseURL = baseURL
	return conn
}
