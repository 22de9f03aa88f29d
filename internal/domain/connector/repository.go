package connector

import (
	"context"

	"github.com/google/uuid"
)

// Filter defines query criteria for listing connectors
type Filter struct {
	AuthStatus *AuthorizationStatus
	Search     string // matches name or store id
	Limit      int
	Offset     int
}

// Reader provides read-only access to connectors
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Connector, error)
	GetByStoreID(ctx context.Context, storeID string) (*Connector, error)
	List(ctx context.Context, filter Filter) ([]*Connector, error)
	Count(ctx context.Context, filter Filter) (int64, error)
}

// Writer provides write access to connectors
type Writer interface {
	Create(ctx context.Context, c *Connector) error
	Update(ctx context.Context, c *Connector) error
	// Delete removes the connector and cascades to every record it owns.
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository combines read and write access
type Repository interface {
	Reader
	Writer
}
