package ordersync

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/shared"
)

// Status is a remote order status as reported by the platform.
type Status string

const (
	StatusNew               Status = "new"
	StatusPreparing         Status = "preparing"
	StatusReady             Status = "ready"
	StatusInDelivery        Status = "indelivery"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"
	StatusReverseInProgress Status = "reverse_in_progress"
)

// statusRank orders the forward fulfillment sequence. Cancel is
// reachable from anywhere and reverse only after delivery.
var statusRank = map[Status]int{
	StatusNew:        0,
	StatusPreparing:  1,
	StatusReady:      2,
	StatusInDelivery: 3,
	StatusDelivered:  4,
}

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	if _, ok := statusRank[s]; ok {
		return true
	}
	return s == StatusCancelled || s == StatusReverseInProgress
}

// CanTransition reports whether moving from s to next is allowed.
// Forward moves and same-status repeats are fine, backward moves are
// not. Cancellation is always allowed; reverse requires delivery.
func (s Status) CanTransition(next Status) bool {
	if next == StatusCancelled {
		return true
	}
	if next == StatusReverseInProgress {
		return s == StatusDelivered || s == StatusReverseInProgress
	}
	from, okFrom := statusRank[s]
	to, okTo := statusRank[next]
	if !okFrom || !okTo {
		return false
	}
	return to >= from
}

// LocalEvent is a local fulfillment event that may be propagated to the
// remote platform.
type LocalEvent string

const (
	EventOrderConfirmed    LocalEvent = "order_confirmed"
	EventDeliveryCompleted LocalEvent = "delivery_completed"
	EventOrderCancelled    LocalEvent = "order_cancelled"
)

// OutboundStatusMap resolves local events to remote statuses. Events
// missing from the map are deliberately not propagated.
type OutboundStatusMap map[LocalEvent]Status

// DefaultOutboundStatusMap mirrors the stock policy: confirming an
// order starts preparation, completing its delivery marks it ready for
// the remote courier flow.
func DefaultOutboundStatusMap() OutboundStatusMap {
	return OutboundStatusMap{
		EventOrderConfirmed:    StatusPreparing,
		EventDeliveryCompleted: StatusReady,
		EventOrderCancelled:    StatusCancelled,
	}
}

// Resolve returns the remote status for an event, or ok=false when the
// event is not mapped and must be ignored.
func (m OutboundStatusMap) Resolve(event LocalEvent) (Status, bool) {
	s, ok := m[event]
	return s, ok
}

// RemoteOrder mirrors one remote sales order. The pair
// (ConnectorID, RemoteID) is unique; refetching the same order updates
// the row in place.
type RemoteOrder struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string
	OrderCode   string

	Status        Status
	PaymentStatus string
	PaymentMethod string

	CustomerName   string
	CustomerEmail  string
	CustomerMobile string
	CustomerNote   string

	Subtotal      decimal.Decimal
	ShippingTotal decimal.Decimal
	Total         decimal.Decimal
	Currency      string

	// RawData keeps the order payload exactly as the platform sent it.
	// ProcessedData keeps the normalized form used for conversion.
	RawData       json.RawMessage
	ProcessedData json.RawMessage

	// LocalOrderRef links to the sales order created locally, when
	// automation produced one.
	LocalOrderRef string

	OrderedAt    *time.Time
	LastImportAt time.Time
}

// NewRemoteOrder creates an order mirror
func NewRemoteOrder(connectorID uuid.UUID, remoteID string) (*RemoteOrder, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &RemoteOrder{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		Status:       StatusNew,
		LastImportAt: time.Now(),
	}, nil
}

// Overwrite replaces descriptive fields from a fresh remote payload
// while preserving identity and the local order link.
func (o *RemoteOrder) Overwrite(src *RemoteOrder) {
	o.OrderCode = src.OrderCode
	o.Status = src.Status
	o.PaymentStatus = src.PaymentStatus
	o.PaymentMethod = src.PaymentMethod
	o.CustomerName = src.CustomerName
	o.CustomerEmail = src.CustomerEmail
	o.CustomerMobile = src.CustomerMobile
	o.CustomerNote = src.CustomerNote
	o.Subtotal = src.Subtotal
	o.ShippingTotal = src.ShippingTotal
	o.Total = src.Total
	o.Currency = src.Currency
	o.RawData = src.RawData
	o.ProcessedData = src.ProcessedData
	o.OrderedAt = src.OrderedAt
	o.LastImportAt = time.Now()
	o.UpdatedAt = time.Now()
}

// LinkLocalOrder records the locally created sales order reference
func (o *RemoteOrder) LinkLocalOrder(ref string) {
	o.LocalOrderRef = ref
	o.UpdatedAt = time.Now()
}

// IsConverted reports whether a local order was created for the mirror
func (o *RemoteOrder) IsConverted() bool {
	return o.LocalOrderRef != ""
}
