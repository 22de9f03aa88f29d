package mirror

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/shared"
)

// Customer mirrors one remote store customer.
type Customer struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	Name   string
	Email  string
	Mobile string
	City   string

	// Optional link to the local partner record, kept across re-imports.
	LocalCustomerID *uuid.UUID

	LastImportAt time.Time
}

// NewCustomer creates a customer mirror
func NewCustomer(connectorID uuid.UUID, remoteID string) (*Customer, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &Customer{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		LastImportAt: time.Now(),
	}, nil
}

// Overwrite replaces descriptive fields from a fresh payload
func (c *Customer) Overwrite(src *Customer) {
	c.Name = src.Name
	c.Email = src.Email
	c.Mobile = src.Mobile
	c.City = src.City
	c.LastImportAt = time.Now()
	c.UpdatedAt = time.Now()
}

// ReverseReason mirrors one return reason offered by the platform.
// UsageCount tracks how many reverse orders cited it.
type ReverseReason struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	Name       LocalizedText
	UsageCount int

	LastImportAt time.Time
}

// NewReverseReason creates a reverse reason mirror
func NewReverseReason(connectorID uuid.UUID, remoteID string) (*ReverseReason, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &ReverseReason{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		LastImportAt: time.Now(),
	}, nil
}

// Overwrite replaces descriptive fields from a fresh payload
func (r *ReverseReason) Overwrite(src *ReverseReason) {
	r.Name = src.Name
	r.LastImportAt = time.Now()
	r.UpdatedAt = time.Now()
}

// AbandonedCart mirrors one recoverable cart reported by the platform.
type AbandonedCart struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Total         decimal.Decimal
	Currency      string
	ItemCount     int
	IsRecoverable bool
	AbandonedAt   *time.Time

	LastImportAt time.Time
}

// NewAbandonedCart creates an abandoned cart mirror
func NewAbandonedCart(connectorID uuid.UUID, remoteID string) (*AbandonedCart, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &AbandonedCart{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		LastImportAt: time.Now(),
	}, nil
}

// Overwrite replaces descriptive fields from a fresh payload
func (a *AbandonedCart) Overwrite(src *AbandonedCart) {
	a.CustomerName = src.CustomerName
	a.CustomerEmail = src.CustomerEmail
	a.CustomerPhone = src.CustomerPhone
	a.Total = src.Total
	a.Currency = src.Currency
	a.ItemCount = src.ItemCount
	a.IsRecoverable = src.IsRecoverable
	a.AbandonedAt = src.AbandonedAt
	a.LastImportAt = time.Now()
	a.UpdatedAt = time.Now()
}

// WebhookSubscription mirrors one webhook registration held on the
// remote platform.
type WebhookSubscription struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	Event     string
	TargetURL string

	// TriggerCount is incremented locally each time an event for this
	// subscription is received.
	TriggerCount int
}

// NewWebhookSubscription creates a webhook subscription mirror
func NewWebhookSubscription(connectorID uuid.UUID, remoteID, event, targetURL string) (*WebhookSubscription, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &WebhookSubscription{
		BaseEntity:  shared.NewBaseEntity(),
		ConnectorID: connectorID,
		RemoteID:    remoteID,
		Event:       event,
		TargetURL:   targetURL,
	}, nil
}
