package ordersync

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/shared"
)

// ReverseStatus is the lifecycle state of a return request.
type ReverseStatus string

const (
	ReverseDraft          ReverseStatus = "draft"
	ReverseSent           ReverseStatus = "sent"
	ReverseWaybillCreated ReverseStatus = "waybill_created"
	ReverseCompleted      ReverseStatus = "completed"
	ReverseCancelled      ReverseStatus = "cancelled"
)

// reverseNext defines the forward edges of the lifecycle. Cancellation
// is allowed from every non-terminal state.
var reverseNext = map[ReverseStatus]ReverseStatus{
	ReverseDraft:          ReverseSent,
	ReverseSent:           ReverseWaybillCreated,
	ReverseWaybillCreated: ReverseCompleted,
}

// ReverseItem is one returned order line.
type ReverseItem struct {
	ID             uuid.UUID
	ReverseOrderID uuid.UUID

	RemoteProductID string
	Name            string
	Quantity        int
	Price           decimal.Decimal
}

// Waybill carries the courier paperwork issued for a return.
type Waybill struct {
	RemoteID       string
	Cost           decimal.Decimal
	LabelURL       string
	TrackingNumber string
	TrackingURL    string
	Status         string
	Courier        string
	IssuedAt       *time.Time
}

// ReverseOrder is a return request raised against a delivered remote
// order. It is created locally as a draft, submitted to the platform,
// and completed once the courier collects the items.
type ReverseOrder struct {
	shared.BaseEntity

	ConnectorID   uuid.UUID
	RemoteOrderID uuid.UUID // mirror of the order being returned
	RemoteID      string    // id assigned by the platform after submit

	ReasonRemoteID string
	Comment        string
	Status         ReverseStatus
	Items          []ReverseItem

	Waybill *Waybill

	SentAt      *time.Time
	CompletedAt *time.Time
}

// NewReverseOrder creates a draft return for a delivered order mirror.
func NewReverseOrder(conn uuid.UUID, order *RemoteOrder, reasonRemoteID, comment string) (*ReverseOrder, error) {
	if order.Status != StatusDelivered && order.Status != StatusReverseInProgress {
		return nil, ErrNotDelivered
	}
	return &ReverseOrder{
		BaseEntity:     shared.NewBaseEntity(),
		ConnectorID:    conn,
		RemoteOrderID:  order.ID,
		ReasonRemoteID: reasonRemoteID,
		Comment:        comment,
		Status:         ReverseDraft,
	}, nil
}

// AddItem appends one returned line
func (r *ReverseOrder) AddItem(remoteProductID, name string, quantity int, price decimal.Decimal) {
	r.Items = append(r.Items, ReverseItem{
		ID:              uuid.New(),
		ReverseOrderID:  r.ID,
		RemoteProductID: remoteProductID,
		Name:            name,
		Quantity:        quantity,
		Price:           price,
	})
}

// MarkSent records acceptance by the platform with its assigned id.
// Only a draft with at least one item can be sent.
func (r *ReverseOrder) MarkSent(remoteID string, at time.Time) error {
	if r.Status != ReverseDraft {
		return ErrInvalidTransition
	}
	if len(r.Items) == 0 {
		return ErrItemsRequired
	}
	r.RemoteID = remoteID
	r.Status = ReverseSent
	r.SentAt = &at
	r.UpdatedAt = at
	return nil
}

// AttachWaybill records the courier paperwork. A second waybill for the
// same return is rejected; the platform issues exactly one.
func (r *ReverseOrder) AttachWaybill(wb Waybill, at time.Time) error {
	if r.Waybill != nil {
		return ErrWaybillExists
	}
	if r.Status != ReverseSent {
		return ErrWaybillNotRequested
	}
	r.Waybill = &wb
	r.Status = ReverseWaybillCreated
	r.UpdatedAt = at
	return nil
}

// Complete closes the return after pickup
func (r *ReverseOrder) Complete(at time.Time) error {
	if reverseNext[r.Status] != ReverseCompleted {
		return ErrInvalidTransition
	}
	r.Status = ReverseCompleted
	r.CompletedAt = &at
	r.UpdatedAt = at
	return nil
}

// Cancel aborts the return from any non-terminal state
func (r *ReverseOrder) Cancel(at time.Time) error {
	if r.Status == ReverseCompleted || r.Status == ReverseCancelled {
		return ErrInvalidTransition
	}
	r.Status = ReverseCancelled
	r.UpdatedAt = at
	return nil
}
