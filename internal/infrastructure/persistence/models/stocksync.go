package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/stocksync"
)

// LocationMappingModel is the persistence model for stock location mappings.
type LocationMappingModel struct {
	BaseModel

	// The cell index leads with the connector so one local product can
	// be mapped under several stores.
	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_mappings_cell,priority:1"`

	MirrorProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LocalProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_mappings_cell,priority:2"`
	LocalLocationID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_stock_mappings_cell,priority:3"`
	RemoteLocationID uuid.UUID `gorm:"type:uuid;not null"`

	IsActive bool `gorm:"not null;default:true;index"`

	LastSyncedQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastSyncAt    *time.Time
}

// TableName returns the table name for GORM
func (LocationMappingModel) TableName() string {
	return "stock_location_mappings"
}

// ToDomain converts the persistence model to a domain LocationMapping.
func (m *LocationMappingModel) ToDomain() *stocksync.LocationMapping {
	return &stocksync.LocationMapping{
		BaseEntity:       m.BaseModel.ToDomain(),
		ConnectorID:      m.ConnectorID,
		MirrorProductID:  m.MirrorProductID,
		LocalProductID:   m.LocalProductID,
		LocalLocationID:  m.LocalLocationID,
		RemoteLocationID: m.RemoteLocationID,
		IsActive:         m.IsActive,
		LastSyncedQty:    m.LastSyncedQty,
		LastSyncAt:       m.LastSyncAt,
	}
}

// FromDomain populates the persistence model from a domain LocationMapping.
func (m *LocationMappingModel) FromDomain(lm *stocksync.LocationMapping) {
	m.FromDomainBaseEntity(lm.BaseEntity)
	m.ConnectorID = lm.ConnectorID
	m.MirrorProductID = lm.MirrorProductID
	m.LocalProductID = lm.LocalProductID
	m.LocalLocationID = lm.LocalLocationID
	m.RemoteLocationID = lm.RemoteLocationID
	m.IsActive = lm.IsActive
	m.LastSyncedQty = lm.LastSyncedQty
	m.LastSyncAt = lm.LastSyncAt
}

// LocationMappingModelFromDomain creates a persistence model from a domain LocationMapping.
func LocationMappingModelFromDomain(lm *stocksync.LocationMapping) *LocationMappingModel {
	m := &LocationMappingModel{}
	m.FromDomain(lm)
	return m
}

// StockSyncLogModel is the persistence model for stock push audit records.
type StockSyncLogModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ConnectorID uuid.UUID `gorm:"type:uuid;not null;index"`
	MappingID   uuid.UUID `gorm:"type:uuid;not null;index"`

	OldQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NewQty decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Status       stocksync.SyncStatus `gorm:"type:varchar(10);not null;index"`
	ErrorMessage string               `gorm:"type:text"`
	SyncedAt     time.Time            `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockSyncLogModel) TableName() string {
	return "stock_sync_logs"
}

// ToDomain converts the persistence model to a domain SyncLog.
func (m *StockSyncLogModel) ToDomain() *stocksync.SyncLog {
	return &stocksync.SyncLog{
		ID:           m.ID,
		ConnectorID:  m.ConnectorID,
		MappingID:    m.MappingID,
		OldQty:       m.OldQty,
		NewQty:       m.NewQty,
		Status:       m.Status,
		ErrorMessage: m.ErrorMessage,
		SyncedAt:     m.SyncedAt,
	}
}

// StockSyncLogModelFromDomain creates a persistence model from a domain SyncLog.
func StockSyncLogModelFromDomain(l *stocksync.SyncLog) *StockSyncLogModel {
	return &StockSyncLogModel{
		ID:           l.ID,
		ConnectorID:  l.ConnectorID,
		MappingID:    l.MappingID,
		OldQty:       l.OldQty,
		NewQty:       l.NewQty,
		Status:       l.Status,
		ErrorMessage: l.ErrorMessage,
		SyncedAt:     l.SyncedAt,
	}
}
