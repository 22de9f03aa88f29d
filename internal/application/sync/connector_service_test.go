package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

func newConnectorService(server *httptest.Server) (*ConnectorService, *MockConnectorRepository) {
	connectors := new(MockConnectorRepository)
	client := zid.NewClient(zid.DefaultConfig(), zap.NewNop())
	service := NewConnectorService(connectors, client, zap.NewNop())
	return service, connectors
}

func profileServer(t *testing.T, storeID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-access" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message": "invalid token"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"user": {
				"name": "Owner",
				"email": "owner@example.com",
				"store": {
					"id": ` + storeID + `,
					"title": "Test Store",
					"url": "https://test-store.example.com",
					"currency": "SAR"
				}
			}
		}`))
	}))
}

func TestConnectorService_Connect(t *testing.T) {
	server := profileServer(t, "12345")
	defer server.Close()

	service, connectors := newConnectorService(server)
	ctx := context.Background()
	conn, err := connector.NewConnector("Test Store", "12345")
	assert.NoError(t, err)
	conn.APIBaseURL = server.URL

	connectors.On("GetByID", ctx, conn.ID).Return(conn, nil)
	connectors.On("Update", ctx, conn).Return(nil)

	connected, err := service.Connect(ctx, conn.ID, "fresh-access", "fresh-manager")

	assert.NoError(t, err)
	assert.Equal(t, connector.AuthConnected, connected.AuthStatus)
	assert.Equal(t, "fresh-access", connected.AccessToken)
	assert.Equal(t, "Test Store", connected.StoreName)
	assert.Equal(t, "owner@example.com", connected.StoreEmail)
	assert.Equal(t, "SAR", connected.StoreCurrency)
	connectors.AssertNumberOfCalls(t, "Update", 1)
}

func TestConnectorService_Connect_StoreMismatch(t *testing.T) {
	server := profileServer(t, "67890")
	defer server.Close()

	service, connectors := newConnectorService(server)
	ctx := context.Background()
	conn, err := connector.NewConnector("Test Store", "12345")
	assert.NoError(t, err)
	conn.APIBaseURL = server.URL

	connectors.On("GetByID", ctx, conn.ID).Return(conn, nil)

	_, err = service.Connect(ctx, conn.ID, "fresh-access", "fresh-manager")

	assert.ErrorIs(t, err, ErrStoreMismatch)
	connectors.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestConnectorService_Connect_BadCredentials(t *testing.T) {
	server := profileServer(t, "12345")
	defer server.Close()

	service, connectors := newConnectorService(server)
	ctx := context.Background()
	conn, err := connector.NewConnector("Test Store", "12345")
	assert.NoError(t, err)
	conn.APIBaseURL = server.URL

	connectors.On("GetByID", ctx, conn.ID).Return(conn, nil)
	connectors.On("Update", ctx, conn).Return(nil)

	_, err = service.Connect(ctx, conn.ID, "stale-access", "stale-manager")

	assert.ErrorIs(t, err, zid.ErrUnauthorized)
	assert.Equal(t, connector.AuthError, conn.AuthStatus)
}

func TestConnectorService_TestConnection_RecordsExpiry(t *testing.T) {
	server := profileServer(t, "12345")
	defer server.Close()

	service, connectors := newConnectorService(server)
	ctx := context.Background()
	conn := newConnectedConnector(server.URL)
	conn.AccessToken = "revoked"

	connectors.On("GetByID", ctx, conn.ID).Return(conn, nil)
	connectors.On("Update", ctx, conn).Return(nil)

	err := service.TestConnection(ctx, conn.ID)

	assert.ErrorIs(t, err, zid.ErrUnauthorized)
	assert.Equal(t, connector.AuthExpired, conn.AuthStatus)
}

func TestConnectorService_Disconnect(t *testing.T) {
	service, connectors := newConnectorService(nil)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")

	connectors.On("GetByID", ctx, conn.ID).Return(conn, nil)
	connectors.On("Update", ctx, conn).Return(nil)

	err := service.Disconnect(ctx, conn.ID)

	assert.NoError(t, err)
	assert.Equal(t, connector.AuthNotConnected, conn.AuthStatus)
	assert.Empty(t, conn.AccessToken)
}

func TestConnectorService_UpdatePolicies(t *testing.T) {
	service, connectors := newConnectorService(nil)
	ctx := context.Background()
	conn := newConnectedConnector("http://unused")

	connectors.On("GetByID", ctx, conn.ID).Return(conn, nil)
	connectors.On("Update", ctx, conn).Return(nil)

	updated, err := service.UpdatePolicies(ctx, conn.ID, PolicyInput{
		MatchPriority:       connector.MatchMappingOnly,
		ProductMatchBy:      connector.MatchByBarcode,
		CustomerMatchBy:     connector.CustomerAlways,
		AutoCreateSaleOrder: false,
		SyncStatusToZid:     true,
		AutoProcessWebhooks: false,
		EnableProductSync:   true,
		DefaultLocationID:   "loc-2",
	})

	assert.NoError(t, err)
	assert.Equal(t, connector.MatchMappingOnly, updated.MatchPriority)
	assert.Equal(t, connector.MatchByBarcode, updated.ProductMatchBy)
	assert.Equal(t, connector.CustomerAlways, updated.CustomerMatchBy)
	assert.False(t, updated.AutoCreateSaleOrder)
	assert.False(t, updated.AutoProcessWebhooks)
	assert.Equal(t, "loc-2", updated.DefaultLocationID)
}

func TestConnectorService_ResetStaleLocks(t *testing.T) {
	service, connectors := newConnectorService(nil)
	ctx := context.Background()

	stale := newConnectedConnector("http://unused")
	assert.NoError(t, stale.AcquireLock(connector.ImportOrders, time.Now().Add(-2*time.Hour)))
	assert.NoError(t, stale.AcquireLock(connector.ImportProducts, time.Now().Add(-2*time.Hour)))

	fresh := newConnectedConnector("http://unused")
	assert.NoError(t, fresh.AcquireLock(connector.ImportOrders, time.Now()))

	connectors.On("List", ctx, connector.Filter{}).
		Return([]*connector.Connector{stale, fresh}, nil)
	connectors.On("Update", ctx, stale).Return(nil)

	total, err := service.ResetStaleLocks(ctx, time.Hour)

	assert.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.False(t, stale.Locks[connector.ImportOrders].InProgress)
	assert.True(t, fresh.Locks[connector.ImportOrders].InProgress)
	connectors.AssertNumberOfCalls(t, "Update", 1)
}
