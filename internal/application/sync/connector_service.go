// Package sync holds the application services that move data between
// the remote store and the local system: connector lifecycle, catalog
// and order imports, queue processing, stock pushes and webhooks.
package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/shared"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// ErrStoreMismatch is returned when credentials belong to a different
// store than the connector is linked to.
var ErrStoreMismatch = shared.NewDomainError("STORE_MISMATCH", "Credentials belong to a different store")

// ConnectorService manages the store link lifecycle
type ConnectorService struct {
	connectors connector.Repository
	client     *zid.Client
	logger     *zap.Logger
}

// NewConnectorService creates a new ConnectorService
func NewConnectorService(connectors connector.Repository, client *zid.Client, logger *zap.Logger) *ConnectorService {
	return &ConnectorService{
		connectors: connectors,
		client:     client,
		logger:     logger,
	}
}

// Create registers a new connector in the not_connected state
func (s *ConnectorService) Create(ctx context.Context, name, storeID string) (*connector.Connector, error) {
	conn, err := connector.NewConnector(name, storeID)
	if err != nil {
		return nil, err
	}
	if err := s.connectors.Create(ctx, conn); err != nil {
		return nil, err
	}
	s.logger.Info("connector created",
		zap.String("connector_id", conn.ID.String()),
		zap.String("store_id", conn.StoreID))
	return conn, nil
}

// Get retrieves a connector by ID
func (s *ConnectorService) Get(ctx context.Context, id uuid.UUID) (*connector.Connector, error) {
	return s.connectors.GetByID(ctx, id)
}

// GetByStoreID retrieves the connector linked to a remote store
func (s *ConnectorService) GetByStoreID(ctx context.Context, storeID string) (*connector.Connector, error) {
	return s.connectors.GetByStoreID(ctx, storeID)
}

// List retrieves connectors with a total count
func (s *ConnectorService) List(ctx context.Context, filter connector.Filter) ([]*connector.Connector, int64, error) {
	conns, err := s.connectors.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.connectors.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return conns, count, nil
}

// Connect validates the given credentials against the remote platform
// and stores them with the reported store profile. Credentials for a
// different store are rejected.
func (s *ConnectorService) Connect(ctx context.Context, id uuid.UUID, accessToken, managerToken string) (*connector.Connector, error) {
	conn, err := s.connectors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Mark connected in memory first so the validation request carries
	// the new credentials. Nothing is persisted until they check out.
	if err := conn.MarkConnected(accessToken, managerToken, connector.StoreProfile{}); err != nil {
		return nil, err
	}

	profile, err := s.client.GetProfile(ctx, conn)
	if err != nil {
		if errors.Is(err, zid.ErrUnauthorized) {
			conn.MarkAuthFailure(false)
			if updateErr := s.connectors.Update(ctx, conn); updateErr != nil {
				s.logger.Error("failed to record auth failure", zap.Error(updateErr))
			}
		}
		return nil, err
	}

	store := profile.User.Store
	if store.ID.String() != conn.StoreID {
		s.logger.Warn("credentials belong to another store",
			zap.String("connector_store_id", conn.StoreID),
			zap.String("token_store_id", store.ID.String()))
		return nil, ErrStoreMismatch
	}

	if err := conn.MarkConnected(accessToken, managerToken, connector.StoreProfile{
		Name:     store.Title,
		URL:      store.URL,
		Email:    profile.User.Email,
		Currency: store.Currency,
	}); err != nil {
		return nil, err
	}

	if err := s.connectors.Update(ctx, conn); err != nil {
		return nil, err
	}
	s.logger.Info("connector connected",
		zap.String("connector_id", conn.ID.String()),
		zap.String("store_name", conn.StoreName))
	return conn, nil
}

// TestConnection probes the credentials endpoint. An auth rejection is
// recorded on the connector.
func (s *ConnectorService) TestConnection(ctx context.Context, id uuid.UUID) error {
	conn, err := s.connectors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.client.GetProfile(ctx, conn); err != nil {
		if errors.Is(err, zid.ErrUnauthorized) {
			conn.MarkAuthFailure(true)
			if updateErr := s.connectors.Update(ctx, conn); updateErr != nil {
				s.logger.Error("failed to record auth failure", zap.Error(updateErr))
			}
		}
		return err
	}
	return nil
}

// Disconnect clears credentials and returns the link to not_connected
func (s *ConnectorService) Disconnect(ctx context.Context, id uuid.UUID) error {
	conn, err := s.connectors.GetByID(ctx, id)
	if err != nil {
		return err
	}
	conn.Disconnect()
	return s.connectors.Update(ctx, conn)
}

// PolicyInput carries the per-store sync policy fields an operator can change.
type PolicyInput struct {
	MatchPriority       connector.MatchPriority
	ProductMatchBy      connector.ProductMatchBy
	CustomerMatchBy     connector.CustomerMatchBy
	AutoCreateSaleOrder bool
	SyncStatusToZid     bool
	AutoProcessWebhooks bool
	EnableProductSync   bool
	DefaultLocationID   string
}

// UpdatePolicies replaces the connector's sync policy
func (s *ConnectorService) UpdatePolicies(ctx context.Context, id uuid.UUID, input PolicyInput) (*connector.Connector, error) {
	conn, err := s.connectors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conn.MatchPriority = input.MatchPriority
	conn.ProductMatchBy = input.ProductMatchBy
	conn.CustomerMatchBy = input.CustomerMatchBy
	conn.AutoCreateSaleOrder = input.AutoCreateSaleOrder
	conn.SyncStatusToZid = input.SyncStatusToZid
	conn.AutoProcessWebhooks = input.AutoProcessWebhooks
	conn.EnableProductSync = input.EnableProductSync
	conn.DefaultLocationID = input.DefaultLocationID
	conn.UpdatedAt = time.Now()

	if err := s.connectors.Update(ctx, conn); err != nil {
		return nil, err
	}
	return conn, nil
}

// Delete removes a connector and everything it owns
func (s *ConnectorService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.connectors.Delete(ctx, id)
}

// ResetStaleLocks frees import locks whose holder exceeded timeout.
// Run periodically so a crashed import does not block the store forever.
func (s *ConnectorService) ResetStaleLocks(ctx context.Context, timeout time.Duration) (int, error) {
	conns, err := s.connectors.List(ctx, connector.Filter{})
	if err != nil {
		return 0, err
	}

	total := 0
	now := time.Now()
	for _, conn := range conns {
		reset := conn.ResetExpiredLocks(now, timeout)
		if len(reset) == 0 {
			continue
		}
		if err := s.connectors.Update(ctx, conn); err != nil {
			s.logger.Error("failed to persist lock reset",
				zap.String("connector_id", conn.ID.String()),
				zap.Error(err))
			continue
		}
		for _, kind := range reset {
			s.logger.Warn("stale import lock reset",
				zap.String("connector_id", conn.ID.String()),
				zap.String("import_kind", string(kind)))
		}
		total += len(reset)
	}
	return total, nil
}
