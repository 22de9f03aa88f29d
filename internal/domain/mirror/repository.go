package mirror

import (
	"context"

	"github.com/google/uuid"
)

// Filter defines query criteria shared by the mirror list operations
type Filter struct {
	ConnectorID uuid.UUID
	Search      string
	ActiveOnly  bool
	Limit       int
	Offset      int
}

// ProductRepository persists product mirrors. Save performs an insert
// or an in-place update keyed by entity id; the unique pair
// (connector_id, remote_id) is enforced by the store, which reports a
// racing insert as ErrDuplicate.
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*Product, error)
	FindBySKU(ctx context.Context, connectorID uuid.UUID, sku string) (*Product, error)
	FindByBarcode(ctx context.Context, connectorID uuid.UUID, barcode string) (*Product, error)
	FindByName(ctx context.Context, connectorID uuid.UUID, name string) (*Product, error)
	List(ctx context.Context, filter Filter) ([]*Product, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Save(ctx context.Context, p *Product) error
	DeleteByConnector(ctx context.Context, connectorID uuid.UUID) error
}

// VariantRepository persists variant mirrors
type VariantRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*Variant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*Variant, error)
	Save(ctx context.Context, v *Variant) error
}

// CategoryRepository persists category mirrors
type CategoryRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*Category, error)
	List(ctx context.Context, filter Filter) ([]*Category, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Save(ctx context.Context, c *Category) error
	DeleteByConnector(ctx context.Context, connectorID uuid.UUID) error
}

// AttributeRepository persists attribute mirrors
type AttributeRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*Attribute, error)
	List(ctx context.Context, filter Filter) ([]*Attribute, error)
	Save(ctx context.Context, a *Attribute) error
}

// LocationRepository persists location mirrors
type LocationRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*Location, error)
	GetDefault(ctx context.Context, connectorID uuid.UUID) (*Location, error)
	List(ctx context.Context, filter Filter) ([]*Location, error)
	Save(ctx context.Context, l *Location) error
}

// CustomerRepository persists customer mirrors
type CustomerRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*Customer, error)
	List(ctx context.Context, filter Filter) ([]*Customer, error)
	Save(ctx context.Context, c *Customer) error
}

// ReverseReasonRepository persists reverse reason mirrors
type ReverseReasonRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*ReverseReason, error)
	List(ctx context.Context, filter Filter) ([]*ReverseReason, error)
	Save(ctx context.Context, r *ReverseReason) error
}

// AbandonedCartRepository persists abandoned cart mirrors
type AbandonedCartRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*AbandonedCart, error)
	List(ctx context.Context, filter Filter) ([]*AbandonedCart, error)
	Save(ctx context.Context, a *AbandonedCart) error
}

// PayoutRepository persists payout mirrors with their lines
type PayoutRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*Payout, error)
	List(ctx context.Context, filter Filter) ([]*Payout, error)
	Save(ctx context.Context, p *Payout) error
}

// WebhookSubscriptionRepository persists webhook registrations
type WebhookSubscriptionRepository interface {
	GetByRemoteID(ctx context.Context, connectorID uuid.UUID, remoteID string) (*WebhookSubscription, error)
	List(ctx context.Context, filter Filter) ([]*WebhookSubscription, error)
	Save(ctx context.Context, w *WebhookSubscription) error
	Delete(ctx context.Context, id uuid.UUID) error
}
