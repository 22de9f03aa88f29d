package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// CatalogSyncService reconciles the slow-moving store catalog into the
// local mirror tables: categories, attributes, locations, reverse
// reasons, abandoned carts and payouts. Each sync replays the full
// remote list; re-imported records are overwritten in place, never
// duplicated.
type CatalogSyncService struct {
	connectors connector.Repository
	categories mirror.CategoryRepository
	attributes mirror.AttributeRepository
	locations  mirror.LocationRepository
	reasons    mirror.ReverseReasonRepository
	carts      mirror.AbandonedCartRepository
	payouts    mirror.PayoutRepository
	client     *zid.Client
	logger     *zap.Logger
}

// NewCatalogSyncService creates a new CatalogSyncService
func NewCatalogSyncService(
	connectors connector.Repository,
	categories mirror.CategoryRepository,
	attributes mirror.AttributeRepository,
	locations mirror.LocationRepository,
	reasons mirror.ReverseReasonRepository,
	carts mirror.AbandonedCartRepository,
	payouts mirror.PayoutRepository,
	client *zid.Client,
	logger *zap.Logger,
) *CatalogSyncService {
	return &CatalogSyncService{
		connectors: connectors,
		categories: categories,
		attributes: attributes,
		locations:  locations,
		reasons:    reasons,
		carts:      carts,
		payouts:    payouts,
		client:     client,
		logger:     logger,
	}
}

// SyncCategories imports the remote category tree, flattened with
// display paths resolved, parents before children.
func (s *CatalogSyncService) SyncCategories(ctx context.Context, connectorID uuid.UUID) (int, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return 0, err
	}

	payload, err := s.client.ListCategories(ctx, conn)
	if err != nil {
		return 0, err
	}

	roots := make([]mirror.TreeNode, 0, len(payload))
	for _, cat := range payload {
		roots = append(roots, cat.TreeNode())
	}
	flat, err := mirror.FlattenTree(connectorID, roots)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, cat := range flat {
		if err := s.upsertCategory(ctx, cat); err != nil {
			s.logger.Error("category sync failed",
				zap.String("connector_id", connectorID.String()),
				zap.String("remote_id", cat.RemoteID),
				zap.Error(err))
			continue
		}
		count++
	}
	s.logger.Info("categories synced",
		zap.String("connector_id", connectorID.String()),
		zap.Int("count", count))
	return count, nil
}

func (s *CatalogSyncService) upsertCategory(ctx context.Context, incoming *mirror.Category) error {
	existing, err := s.categories.GetByRemoteID(ctx, incoming.ConnectorID, incoming.RemoteID)
	switch {
	case err == nil:
		existing.Overwrite(incoming)
		return s.categories.Save(ctx, existing)
	case errors.Is(err, mirror.ErrNotFound):
		saveErr := s.categories.Save(ctx, incoming)
		if errors.Is(saveErr, mirror.ErrDuplicate) {
			// Lost the insert race; retry as an update.
			existing, err = s.categories.GetByRemoteID(ctx, incoming.ConnectorID, incoming.RemoteID)
			if err != nil {
				return err
			}
			existing.Overwrite(incoming)
			return s.categories.Save(ctx, existing)
		}
		return saveErr
	default:
		return err
	}
}

// SyncAttributes imports product attributes.
func (s *CatalogSyncService) SyncAttributes(ctx context.Context, connectorID uuid.UUID) (int, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return 0, err
	}

	payload, err := s.client.ListAttributes(ctx, conn)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range payload {
		attr, err := mirror.NewAttribute(connectorID, item.ID.String())
		if err != nil {
			continue
		}
		attr.Name = item.Name.Text()
		attr.Value = item.Value.Text()

		existing, err := s.attributes.GetByRemoteID(ctx, connectorID, attr.RemoteID)
		switch {
		case err == nil:
			existing.Overwrite(attr)
			err = s.attributes.Save(ctx, existing)
		case errors.Is(err, mirror.ErrNotFound):
			err = s.attributes.Save(ctx, attr)
		}
		if err != nil {
			s.logger.Error("attribute sync failed",
				zap.String("remote_id", attr.RemoteID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// SyncLocations imports inventory locations and records the store's
// default location on the connector for fallback stock pushes.
func (s *CatalogSyncService) SyncLocations(ctx context.Context, connectorID uuid.UUID) (int, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return 0, err
	}

	payload, err := s.client.ListLocations(ctx, conn)
	if err != nil {
		return 0, err
	}

	count := 0
	defaultRemoteID := ""
	for _, item := range payload {
		loc, err := mirror.NewLocation(connectorID, item.ID)
		if err != nil {
			continue
		}
		loc.Name = item.Name.Text()
		loc.City = item.City
		loc.IsDefault = item.IsDefault
		if item.IsDefault {
			defaultRemoteID = loc.RemoteID
		}

		existing, err := s.locations.GetByRemoteID(ctx, connectorID, loc.RemoteID)
		switch {
		case err == nil:
			existing.Overwrite(loc)
			err = s.locations.Save(ctx, existing)
		case errors.Is(err, mirror.ErrNotFound):
			err = s.locations.Save(ctx, loc)
		}
		if err != nil {
			s.logger.Error("location sync failed",
				zap.String("remote_id", loc.RemoteID), zap.Error(err))
			continue
		}
		count++
	}

	if defaultRemoteID != "" && conn.DefaultLocationID != defaultRemoteID {
		conn.DefaultLocationID = defaultRemoteID
		conn.UpdatedAt = time.Now()
		if err := s.connectors.Update(ctx, conn); err != nil {
			s.logger.Error("failed to record default location", zap.Error(err))
		}
	}
	return count, nil
}

// SyncReverseReasons imports the return reasons offered by the platform.
// Existing usage counts are preserved across re-imports.
func (s *CatalogSyncService) SyncReverseReasons(ctx context.Context, connectorID uuid.UUID) (int, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return 0, err
	}

	payload, err := s.client.ListReverseReasons(ctx, conn)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range payload {
		reason, err := mirror.NewReverseReason(connectorID, item.ID.String())
		if err != nil {
			continue
		}
		reason.Name = item.Name.Text()

		existing, err := s.reasons.GetByRemoteID(ctx, connectorID, reason.RemoteID)
		switch {
		case err == nil:
			existing.Overwrite(reason)
			err = s.reasons.Save(ctx, existing)
		case errors.Is(err, mirror.ErrNotFound):
			err = s.reasons.Save(ctx, reason)
		}
		if err != nil {
			s.logger.Error("reverse reason sync failed",
				zap.String("remote_id", reason.RemoteID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// SyncAbandonedCarts imports recoverable carts.
func (s *CatalogSyncService) SyncAbandonedCarts(ctx context.Context, connectorID uuid.UUID) (int, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return 0, err
	}

	payload, err := s.client.ListAbandonedCarts(ctx, conn)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range payload {
		cart, err := mirror.NewAbandonedCart(connectorID, item.ID.String())
		if err != nil {
			continue
		}
		cart.CustomerName = item.Customer.Name
		cart.CustomerEmail = item.Customer.Email
		cart.CustomerPhone = item.Customer.Mobile
		cart.Total = item.Total
		cart.Currency = item.Currency
		cart.ItemCount = item.ProductsCount
		cart.IsRecoverable = item.IsRecoverable
		if at := parseRemoteTime(item.CreatedAt); at != nil {
			cart.AbandonedAt = at
		}

		existing, err := s.carts.GetByRemoteID(ctx, connectorID, cart.RemoteID)
		switch {
		case err == nil:
			existing.Overwrite(cart)
			err = s.carts.Save(ctx, existing)
		case errors.Is(err, mirror.ErrNotFound):
			err = s.carts.Save(ctx, cart)
		}
		if err != nil {
			s.logger.Error("abandoned cart sync failed",
				zap.String("remote_id", cart.RemoteID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

// SyncPayouts imports settlement statements with their breakdown lines.
func (s *CatalogSyncService) SyncPayouts(ctx context.Context, connectorID uuid.UUID) (int, error) {
	conn, err := s.connectors.GetByID(ctx, connectorID)
	if err != nil {
		return 0, err
	}

	payload, err := s.client.ListPayouts(ctx, conn)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, item := range payload {
		payout, err := mirror.NewPayout(connectorID, item.ID.String())
		if err != nil {
			continue
		}
		payout.Reference = item.Reference
		payout.SettlementDate = parseRemoteTime(item.SettlementDate)
		payout.GrossAmount = item.GrossAmount
		payout.FeeAmount = item.FeeAmount
		payout.NetAmount = item.NetAmount
		payout.Currency = item.Currency
		payout.Status = item.Status
		for _, line := range item.Lines {
			payout.AddLine(payoutLineType(line.Type), line.OrderRef, line.Description, line.Amount)
		}

		existing, err := s.payouts.GetByRemoteID(ctx, connectorID, payout.RemoteID)
		switch {
		case err == nil:
			existing.Overwrite(payout)
			err = s.payouts.Save(ctx, existing)
		case errors.Is(err, mirror.ErrNotFound):
			err = s.payouts.Save(ctx, payout)
		}
		if err != nil {
			s.logger.Error("payout sync failed",
				zap.String("remote_id", payout.RemoteID), zap.Error(err))
			continue
		}
		count++
	}
	return count, nil
}

func payoutLineType(raw string) mirror.PayoutLineType {
	switch mirror.PayoutLineType(raw) {
	case mirror.PayoutLineOrder, mirror.PayoutLineRefund, mirror.PayoutLineFee:
		return mirror.PayoutLineType(raw)
	default:
		return mirror.PayoutLineAdjustment
	}
}

// remoteTimeLayouts are the timestamp shapes the platform emits, tried
// in order.
var remoteTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseRemoteTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range remoteTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
