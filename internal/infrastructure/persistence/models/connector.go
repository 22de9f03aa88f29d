package models

import (
	"encoding/json"
	"time"

	"github.com/erp/zidsync/internal/domain/connector"
)

// ConnectorModel is the persistence model for the Connector aggregate.
// Import locks are serialized into a JSON column; they are few and
// always read together with the row.
type ConnectorModel struct {
	BaseModel

	Name       string `gorm:"type:varchar(255);not null"`
	StoreID    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_connectors_store_id"`
	APIBaseURL string `gorm:"type:varchar(500);not null"`

	AccessToken  string                        `gorm:"type:text"`
	ManagerToken string                        `gorm:"type:text"`
	AuthStatus   connector.AuthorizationStatus `gorm:"type:varchar(20);not null;default:'not_connected';index"`

	StoreName     string `gorm:"type:varchar(255)"`
	StoreURL      string `gorm:"type:varchar(500)"`
	StoreEmail    string `gorm:"type:varchar(255)"`
	StoreCurrency string `gorm:"type:varchar(10)"`

	DefaultLocationID string `gorm:"type:varchar(100)"`

	MatchPriority   connector.MatchPriority   `gorm:"type:varchar(20);not null;default:'mapping_first'"`
	ProductMatchBy  connector.ProductMatchBy  `gorm:"type:varchar(20);not null;default:'sku'"`
	CustomerMatchBy connector.CustomerMatchBy `gorm:"type:varchar(20);not null;default:'email'"`

	AutoCreateSaleOrder bool `gorm:"not null;default:true"`
	SyncStatusToZid     bool `gorm:"not null;default:true"`
	AutoProcessWebhooks bool `gorm:"not null;default:true"`
	EnableProductSync   bool `gorm:"not null;default:true"`

	OrderImportSince   *time.Time
	ProductImportSince *time.Time

	LocksJSON string `gorm:"type:jsonb;column:import_locks"`

	LastSyncAt *time.Time
}

// TableName returns the table name for GORM
func (ConnectorModel) TableName() string {
	return "connectors"
}

// importLockRecord is the serialized form of one import lock.
type importLockRecord struct {
	InProgress bool       `json:"in_progress"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
}

// ToDomain converts the persistence model to a domain Connector.
func (m *ConnectorModel) ToDomain() *connector.Connector {
	c := &connector.Connector{
		BaseEntity:          m.BaseModel.ToDomain(),
		Name:                m.Name,
		StoreID:             m.StoreID,
		APIBaseURL:          m.APIBaseURL,
		AccessToken:         m.AccessToken,
		ManagerToken:        m.ManagerToken,
		AuthStatus:          m.AuthStatus,
		StoreName:           m.StoreName,
		StoreURL:            m.StoreURL,
		StoreEmail:          m.StoreEmail,
		StoreCurrency:       m.StoreCurrency,
		DefaultLocationID:   m.DefaultLocationID,
		MatchPriority:       m.MatchPriority,
		ProductMatchBy:      m.ProductMatchBy,
		CustomerMatchBy:     m.CustomerMatchBy,
		AutoCreateSaleOrder: m.AutoCreateSaleOrder,
		SyncStatusToZid:     m.SyncStatusToZid,
		AutoProcessWebhooks: m.AutoProcessWebhooks,
		EnableProductSync:   m.EnableProductSync,
		OrderImportSince:    m.OrderImportSince,
		ProductImportSince:  m.ProductImportSince,
		Locks:               make(map[connector.ImportKind]*connector.ImportLock),
		LastSyncAt:          m.LastSyncAt,
	}

	if m.LocksJSON != "" {
		var records map[connector.ImportKind]importLockRecord
		if err := json.Unmarshal([]byte(m.LocksJSON), &records); err == nil {
			for kind, rec := range records {
				c.Locks[kind] = &connector.ImportLock{
					InProgress: rec.InProgress,
					StartedAt:  rec.StartedAt,
				}
			}
		}
	}

	return c
}

// FromDomain populates the persistence model from a domain Connector.
func (m *ConnectorModel) FromDomain(c *connector.Connector) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.Name = c.Name
	m.StoreID = c.StoreID
	m.APIBaseURL = c.APIBaseURL
	m.AccessToken = c.AccessToken
	m.ManagerToken = c.ManagerToken
	m.AuthStatus = c.AuthStatus
	m.StoreName = c.StoreName
	m.StoreURL = c.StoreURL
	m.StoreEmail = c.StoreEmail
	m.StoreCurrency = c.StoreCurrency
	m.DefaultLocationID = c.DefaultLocationID
	m.MatchPriority = c.MatchPriority
	m.ProductMatchBy = c.ProductMatchBy
	m.CustomerMatchBy = c.CustomerMatchBy
	m.AutoCreateSaleOrder = c.AutoCreateSaleOrder
	m.SyncStatusToZid = c.SyncStatusToZid
	m.AutoProcessWebhooks = c.AutoProcessWebhooks
	m.EnableProductSync = c.EnableProductSync
	m.OrderImportSince = c.OrderImportSince
	m.ProductImportSince = c.ProductImportSince
	m.LastSyncAt = c.LastSyncAt

	if len(c.Locks) > 0 {
		records := make(map[connector.ImportKind]importLockRecord, len(c.Locks))
		for kind, lock := range c.Locks {
			records[kind] = importLockRecord{
				InProgress: lock.InProgress,
				StartedAt:  lock.StartedAt,
			}
		}
		if data, err := json.Marshal(records); err == nil {
			m.LocksJSON = string(data)
		}
	} else {
		m.LocksJSON = "{}"
	}
}

// ConnectorModelFromDomain creates a persistence model from a domain Connector.
func ConnectorModelFromDomain(c *connector.Connector) *ConnectorModel {
	m := &ConnectorModel{}
	m.FromDomain(c)
	return m
}
