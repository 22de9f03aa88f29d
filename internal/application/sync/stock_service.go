package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/stocksync"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// StockSyncService pushes local on-hand quantities to the remote
// platform through location mappings. Every attempt is logged; the
// mapping baseline moves only on a confirmed push.
type StockSyncService struct {
	connectors connector.Reader
	mappings   stocksync.MappingRepository
	logs       stocksync.LogRepository
	products   mirror.ProductRepository
	locations  mirror.LocationRepository
	ledger     stocksync.StockLedger
	client     *zid.Client
	logger     *zap.Logger
}

// NewStockSyncService creates a new StockSyncService
func NewStockSyncService(
	connectors connector.Reader,
	mappings stocksync.MappingRepository,
	logs stocksync.LogRepository,
	products mirror.ProductRepository,
	locations mirror.LocationRepository,
	ledger stocksync.StockLedger,
	client *zid.Client,
	logger *zap.Logger,
) *StockSyncService {
	return &StockSyncService{
		connectors: connectors,
		mappings:   mappings,
		logs:       logs,
		products:   products,
		locations:  locations,
		ledger:     ledger,
		client:     client,
		logger:     logger,
	}
}

// CreateMapping ties a linked mirror product at a local location to a
// remote location. The mirror product must already be linked to a
// local product; the mapping inherits that link.
func (s *StockSyncService) CreateMapping(ctx context.Context, connectorID, mirrorProductID, localLocationID, remoteLocationID uuid.UUID) (*stocksync.LocationMapping, error) {
	product, err := s.products.GetByID(ctx, mirrorProductID)
	if err != nil {
		return nil, err
	}
	if product.LocalProductID == nil {
		return nil, stocksync.ErrProductNotLinked
	}

	mapping, err := stocksync.NewLocationMapping(connectorID, mirrorProductID, *product.LocalProductID, localLocationID, remoteLocationID)
	if err != nil {
		return nil, err
	}
	if err := s.mappings.Create(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// ListMappings retrieves mappings with a total count
func (s *StockSyncService) ListMappings(ctx context.Context, filter stocksync.MappingFilter) ([]*stocksync.LocationMapping, int64, error) {
	mappings, err := s.mappings.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.mappings.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return mappings, count, nil
}

// SetMappingActive toggles whether a mapping participates in pushes
func (s *StockSyncService) SetMappingActive(ctx context.Context, id uuid.UUID, active bool) error {
	mapping, err := s.mappings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	mapping.IsActive = active
	mapping.UpdatedAt = time.Now()
	return s.mappings.Update(ctx, mapping)
}

// DeleteMapping removes a mapping. Its sync history is kept.
func (s *StockSyncService) DeleteMapping(ctx context.Context, id uuid.UUID) error {
	return s.mappings.Delete(ctx, id)
}

// SyncMapping reads the local on-hand quantity for one mapping and
// pushes it remotely. The attempt is logged either way; a failed push
// keeps the last known-good baseline on the mapping.
func (s *StockSyncService) SyncMapping(ctx context.Context, mappingID uuid.UUID) error {
	mapping, err := s.mappings.GetByID(ctx, mappingID)
	if err != nil {
		return err
	}
	if !mapping.IsActive {
		return stocksync.ErrMappingInactive
	}
	return s.push(ctx, mapping)
}

// SyncProduct pushes every active mapping of one local product under a
// connector. Mappings that fail are logged and skipped; the first
// error is returned after all mappings were attempted.
func (s *StockSyncService) SyncProduct(ctx context.Context, connectorID, localProductID uuid.UUID) error {
	mappings, err := s.mappings.List(ctx, stocksync.MappingFilter{
		ConnectorID:    &connectorID,
		LocalProductID: &localProductID,
		ActiveOnly:     true,
	})
	if err != nil {
		return err
	}

	var firstErr error
	for _, mapping := range mappings {
		if err := s.push(ctx, mapping); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// ListLogs retrieves sync history with a total count
func (s *StockSyncService) ListLogs(ctx context.Context, filter stocksync.LogFilter) ([]*stocksync.SyncLog, int64, error) {
	logs, err := s.logs.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.logs.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return logs, count, nil
}

// PruneLogs removes sync history older than age
func (s *StockSyncService) PruneLogs(ctx context.Context, age time.Duration) (int64, error) {
	return s.logs.DeleteBefore(ctx, time.Now().Add(-age))
}

func (s *StockSyncService) push(ctx context.Context, mapping *stocksync.LocationMapping) error {
	conn, err := s.connectors.GetByID(ctx, mapping.ConnectorID)
	if err != nil {
		return err
	}
	product, err := s.products.GetByID(ctx, mapping.MirrorProductID)
	if err != nil {
		return err
	}
	location, err := s.locations.GetByID(ctx, mapping.RemoteLocationID)
	if err != nil {
		return err
	}

	qty, err := s.ledger.OnHand(ctx, mapping.LocalProductID, mapping.LocalLocationID)
	if err != nil {
		return err
	}

	now := time.Now()
	oldQty := mapping.LastSyncedQty

	pushErr := s.client.UpdateProductStock(ctx, conn, product.RemoteID, location.RemoteID, qty, false)
	if pushErr != nil {
		entry := stocksync.NewFailureLog(mapping.ConnectorID, mapping.ID, oldQty, qty, pushErr.Error(), now)
		if logErr := s.logs.Append(ctx, entry); logErr != nil {
			s.logger.Error("failed to record sync failure", zap.Error(logErr))
		}
		s.logger.Warn("stock push failed",
			zap.String("mapping_id", mapping.ID.String()),
			zap.String("remote_product_id", product.RemoteID),
			zap.Error(pushErr))
		return pushErr
	}

	mapping.RecordSuccess(qty, now)
	if err := s.mappings.Update(ctx, mapping); err != nil {
		return err
	}
	entry := stocksync.NewSuccessLog(mapping.ConnectorID, mapping.ID, oldQty, qty, now)
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("failed to record sync success", zap.Error(err))
	}

	s.logger.Info("stock pushed",
		zap.String("mapping_id", mapping.ID.String()),
		zap.String("remote_product_id", product.RemoteID),
		zap.String("quantity", qty.String()))
	return nil
}
