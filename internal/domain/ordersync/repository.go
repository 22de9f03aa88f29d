package ordersync

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderFilter defines query criteria for listing order mirrors
type OrderFilter struct {
	ConnectorID *uuid.UUID
	Status      *Status
	Search      string // matches remote id, code, customer name
	Limit       int
	Offset      int
}

// OrderRepository persists remote order mirrors
type OrderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*RemoteOrder, error)
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*RemoteOrder, error)
	GetByLocalRef(ctx context.Context, localRef string) (*RemoteOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]*RemoteOrder, error)
	Count(ctx context.Context, filter OrderFilter) (int64, error)
	Save(ctx context.Context, o *RemoteOrder) error
}

// ReverseFilter defines query criteria for listing reverse orders
type ReverseFilter struct {
	ConnectorID *uuid.UUID
	Status      *ReverseStatus
	Limit       int
	Offset      int
}

// ReverseRepository persists reverse orders with items and waybill
type ReverseRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*ReverseOrder, error)
	List(ctx context.Context, filter ReverseFilter) ([]*ReverseOrder, error)
	Count(ctx context.Context, filter ReverseFilter) (int64, error)
	Create(ctx context.Context, r *ReverseOrder) error
	Update(ctx context.Context, r *ReverseOrder) error
}

// DraftLine is one resolved line of an order about to be created locally.
type DraftLine struct {
	LocalProductID uuid.UUID
	Description    string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
}

// DraftOrder is the normalized input handed to the local order system.
type DraftOrder struct {
	ConnectorID     uuid.UUID
	RemoteOrderID   string
	OrderCode       string
	LocalCustomerID uuid.UUID
	Note            string
	Currency        string
	Lines           []DraftLine
	ShippingTotal   decimal.Decimal
	CommissionTotal decimal.Decimal
}

// OrderDesk creates sales orders in the local system. It is the port
// behind which the local ERP sits.
type OrderDesk interface {
	CreateDraftOrder(ctx context.Context, draft DraftOrder) (localRef string, err error)
}

// Catalog resolves local products for direct field matching.
type Catalog interface {
	FindBySKU(ctx context.Context, sku string) (uuid.UUID, error)
	FindByBarcode(ctx context.Context, barcode string) (uuid.UUID, error)
	FindByName(ctx context.Context, name string) (uuid.UUID, error)
}

// CustomerDirectory resolves or creates local customers.
type CustomerDirectory interface {
	FindByEmail(ctx context.Context, email string) (uuid.UUID, error)
	FindByMobile(ctx context.Context, mobile string) (uuid.UUID, error)
	Create(ctx context.Context, name, email, mobile string) (uuid.UUID, error)
}
