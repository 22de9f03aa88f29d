package sync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
	"github.com/erp/zidsync/internal/domain/mirror"
	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/infrastructure/zid"
)

// ReverseItemInput is one returned line as entered by an operator.
type ReverseItemInput struct {
	RemoteProductID string
	Name            string
	Quantity        int
	Price           decimal.Decimal
}

// ReverseService drives the return lifecycle: draft locally, submit to
// the platform, issue the waybill, then complete or cancel.
type ReverseService struct {
	connectors connector.Reader
	orders     ordersync.OrderRepository
	reverses   ordersync.ReverseRepository
	reasons    mirror.ReverseReasonRepository
	client     *zid.Client
	logger     *zap.Logger
}

// NewReverseService creates a new ReverseService
func NewReverseService(
	connectors connector.Reader,
	orders ordersync.OrderRepository,
	reverses ordersync.ReverseRepository,
	reasons mirror.ReverseReasonRepository,
	client *zid.Client,
	logger *zap.Logger,
) *ReverseService {
	return &ReverseService{
		connectors: connectors,
		orders:     orders,
		reverses:   reverses,
		reasons:    reasons,
		client:     client,
		logger:     logger,
	}
}

// Get retrieves a reverse order by ID
func (s *ReverseService) Get(ctx context.Context, id uuid.UUID) (*ordersync.ReverseOrder, error) {
	return s.reverses.GetByID(ctx, id)
}

// List retrieves reverse orders with a total count
func (s *ReverseService) List(ctx context.Context, filter ordersync.ReverseFilter) ([]*ordersync.ReverseOrder, int64, error) {
	reverses, err := s.reverses.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.reverses.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return reverses, count, nil
}

// CreateDraft opens a return for a delivered order mirror. Nothing is
// sent to the platform until Submit.
func (s *ReverseService) CreateDraft(ctx context.Context, orderID uuid.UUID, reasonRemoteID, comment string, items []ReverseItemInput) (*ordersync.ReverseOrder, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ordersync.ErrItemsRequired
	}

	reverse, err := ordersync.NewReverseOrder(order.ConnectorID, order, reasonRemoteID, comment)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		reverse.AddItem(item.RemoteProductID, item.Name, item.Quantity, item.Price)
	}

	if err := s.reverses.Create(ctx, reverse); err != nil {
		return nil, err
	}
	return reverse, nil
}

// Submit sends a drafted return to the platform. On acceptance the
// order mirror moves to reverse_in_progress and the cited reason's
// usage count is bumped.
func (s *ReverseService) Submit(ctx context.Context, reverseID uuid.UUID) (*ordersync.ReverseOrder, error) {
	reverse, err := s.reverses.GetByID(ctx, reverseID)
	if err != nil {
		return nil, err
	}
	if reverse.Status != ordersync.ReverseDraft {
		return nil, ordersync.ErrInvalidTransition
	}

	conn, err := s.connectors.GetByID(ctx, reverse.ConnectorID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, reverse.RemoteOrderID)
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(reverse.Items))
	for _, item := range reverse.Items {
		productIDs = append(productIDs, item.RemoteProductID)
	}

	result, err := s.client.CreateReverseOrder(ctx, conn, order.RemoteID, reverse.ReasonRemoteID, reverse.Comment, productIDs)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := reverse.MarkSent(result.ID.String(), now); err != nil {
		return nil, err
	}
	if err := s.reverses.Update(ctx, reverse); err != nil {
		return nil, err
	}

	if order.Status.CanTransition(ordersync.StatusReverseInProgress) {
		order.Status = ordersync.StatusReverseInProgress
		order.UpdatedAt = now
		if err := s.orders.Save(ctx, order); err != nil {
			s.logger.Error("failed to flag order as in reverse", zap.Error(err))
		}
	}
	s.bumpReasonUsage(ctx, reverse.ConnectorID, reverse.ReasonRemoteID)

	s.logger.Info("reverse order submitted",
		zap.String("reverse_id", reverse.ID.String()),
		zap.String("remote_id", reverse.RemoteID))
	return reverse, nil
}

// CreateWaybill requests the courier paperwork for a submitted return.
// The platform issues exactly one waybill per return.
func (s *ReverseService) CreateWaybill(ctx context.Context, reverseID uuid.UUID) (*ordersync.ReverseOrder, error) {
	reverse, err := s.reverses.GetByID(ctx, reverseID)
	if err != nil {
		return nil, err
	}
	if reverse.Waybill != nil {
		return nil, ordersync.ErrWaybillExists
	}
	if reverse.Status != ordersync.ReverseSent {
		return nil, ordersync.ErrWaybillNotRequested
	}

	conn, err := s.connectors.GetByID(ctx, reverse.ConnectorID)
	if err != nil {
		return nil, err
	}

	result, err := s.client.CreateReverseWaybill(ctx, conn, reverse.RemoteID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	wb := ordersync.Waybill{
		RemoteID:       result.ID.String(),
		Cost:           result.Cost,
		LabelURL:       result.LabelURL,
		TrackingNumber: result.TrackingNumber,
		TrackingURL:    result.TrackingURL,
		Status:         result.Status,
		Courier:        result.Courier,
		IssuedAt:       &now,
	}
	if err := reverse.AttachWaybill(wb, now); err != nil {
		return nil, err
	}
	if err := s.reverses.Update(ctx, reverse); err != nil {
		return nil, err
	}
	return reverse, nil
}

// Complete closes a return after the courier collected the items
func (s *ReverseService) Complete(ctx context.Context, reverseID uuid.UUID) (*ordersync.ReverseOrder, error) {
	reverse, err := s.reverses.GetByID(ctx, reverseID)
	if err != nil {
		return nil, err
	}
	if err := reverse.Complete(time.Now()); err != nil {
		return nil, err
	}
	if err := s.reverses.Update(ctx, reverse); err != nil {
		return nil, err
	}
	return reverse, nil
}

// Cancel aborts a return from any non-terminal state
func (s *ReverseService) Cancel(ctx context.Context, reverseID uuid.UUID) (*ordersync.ReverseOrder, error) {
	reverse, err := s.reverses.GetByID(ctx, reverseID)
	if err != nil {
		return nil, err
	}
	if err := reverse.Cancel(time.Now()); err != nil {
		return nil, err
	}
	if err := s.reverses.Update(ctx, reverse); err != nil {
		return nil, err
	}
	return reverse, nil
}

func (s *ReverseService) bumpReasonUsage(ctx context.Context, connectorID uuid.UUID, reasonRemoteID string) {
	reason, err := s.reasons.GetByRemoteID(ctx, connectorID, reasonRemoteID)
	if err != nil {
		if !errors.Is(err, mirror.ErrNotFound) {
			s.logger.Error("reason lookup failed", zap.Error(err))
		}
		return
	}
	reason.UsageCount++
	reason.UpdatedAt = time.Now()
	if err := s.reasons.Save(ctx, reason); err != nil {
		s.logger.Error("failed to bump reason usage", zap.Error(err))
	}
}
