package stocksync

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/shared"
)

var (
	ErrMappingNotFound  = errors.New("stocksync: location mapping not found")
	ErrMappingInactive  = errors.New("stocksync: location mapping is inactive")
	ErrDuplicateMapping = errors.New("stocksync: mapping already exists for product and location")
	ErrProductNotLinked = errors.New("stocksync: mirror product is not linked to a local product")
	ErrLocationRequired = errors.New("stocksync: remote location is required")
)

// LocationMapping ties one local product at one local stock location to
// a remote inventory location. It is the unit of stock synchronization:
// a push happens only where a mapping exists and is active.
type LocationMapping struct {
	shared.BaseEntity

	ConnectorID uuid.UUID

	// MirrorProductID names the remote product whose stock is pushed.
	MirrorProductID uuid.UUID
	// LocalProductID and LocalLocationID identify the local inventory
	// cell the quantity is read from.
	LocalProductID  uuid.UUID
	LocalLocationID uuid.UUID
	// RemoteLocationID is the mirror location the quantity is pushed to.
	RemoteLocationID uuid.UUID

	IsActive bool

	// Baseline of the last successful push. Updated only on success so
	// a failed push never loses the last known-good state.
	LastSyncedQty decimal.Decimal
	LastSyncAt    *time.Time
}

// NewLocationMapping creates an active mapping
func NewLocationMapping(connectorID, mirrorProductID, localProductID, localLocationID, remoteLocationID uuid.UUID) (*LocationMapping, error) {
	if remoteLocationID == uuid.Nil {
		return nil, ErrLocationRequired
	}
	return &LocationMapping{
		BaseEntity:       shared.NewBaseEntity(),
		ConnectorID:      connectorID,
		MirrorProductID:  mirrorProductID,
		LocalProductID:   localProductID,
		LocalLocationID:  localLocationID,
		RemoteLocationID: remoteLocationID,
		IsActive:         true,
	}, nil
}

// RecordSuccess advances the baseline after a confirmed push
func (m *LocationMapping) RecordSuccess(qty decimal.Decimal, at time.Time) {
	m.LastSyncedQty = qty
	m.LastSyncAt = &at
	m.UpdatedAt = at
}

// SyncStatus is the outcome recorded on a sync log entry.
type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncFailed  SyncStatus = "failed"
)

// SyncLog is one append-only audit record of a stock push attempt.
type SyncLog struct {
	ID          uuid.UUID
	ConnectorID uuid.UUID
	MappingID   uuid.UUID

	OldQty decimal.Decimal
	NewQty decimal.Decimal

	Status       SyncStatus
	ErrorMessage string
	SyncedAt     time.Time
}

// NewSuccessLog records a confirmed push from oldQty to newQty
func NewSuccessLog(connectorID, mappingID uuid.UUID, oldQty, newQty decimal.Decimal, at time.Time) *SyncLog {
	return &SyncLog{
		ID:          uuid.New(),
		ConnectorID: connectorID,
		MappingID:   mappingID,
		OldQty:      oldQty,
		NewQty:      newQty,
		Status:      SyncSuccess,
		SyncedAt:    at,
	}
}

// NewFailureLog records a rejected or failed push attempt. NewQty holds
// the quantity that was attempted; the mapping baseline is untouched.
func NewFailureLog(connectorID, mappingID uuid.UUID, oldQty, attemptedQty decimal.Decimal, cause string, at time.Time) *SyncLog {
	return &SyncLog{
		ID:           uuid.New(),
		ConnectorID:  connectorID,
		MappingID:    mappingID,
		OldQty:       oldQty,
		NewQty:       attemptedQty,
		Status:       SyncFailed,
		ErrorMessage: cause,
		SyncedAt:     at,
	}
}

// MappingFilter defines query criteria for listing mappings
type MappingFilter struct {
	ConnectorID    *uuid.UUID
	LocalProductID *uuid.UUID
	ActiveOnly     bool
	Limit          int
	Offset         int
}

// MappingRepository persists location mappings
type MappingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*LocationMapping, error)
	// FindForCell resolves the mapping for a local product at a local
	// location under one connector.
	FindForCell(ctx context.Context, connectorID, localProductID, localLocationID uuid.UUID) (*LocationMapping, error)
	List(ctx context.Context, filter MappingFilter) ([]*LocationMapping, error)
	Count(ctx context.Context, filter MappingFilter) (int64, error)
	Create(ctx context.Context, m *LocationMapping) error
	Update(ctx context.Context, m *LocationMapping) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LogFilter defines query criteria for listing sync logs
type LogFilter struct {
	ConnectorID *uuid.UUID
	MappingID   *uuid.UUID
	Status      *SyncStatus
	Limit       int
	Offset      int
}

// LogRepository persists sync logs. Entries are append-only.
type LogRepository interface {
	Append(ctx context.Context, log *SyncLog) error
	List(ctx context.Context, filter LogFilter) ([]*SyncLog, error)
	Count(ctx context.Context, filter LogFilter) (int64, error)
	// DeleteBefore prunes entries older than cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// StockLedger reads on-hand quantities from the local inventory. It is
// the port behind which the local stock system sits.
type StockLedger interface {
	OnHand(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error)
}
