package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/ordersync"
)

// RemoteOrderModel is the persistence model for remote order mirrors.
type RemoteOrderModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_remote_orders_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_remote_orders_remote,priority:2"`
	OrderCode   string    `gorm:"type:varchar(100);index"`

	Status        ordersync.Status `gorm:"type:varchar(30);not null;index"`
	PaymentStatus string           `gorm:"type:varchar(50)"`
	PaymentMethod string           `gorm:"type:varchar(50)"`

	CustomerName   string `gorm:"type:varchar(255)"`
	CustomerEmail  string `gorm:"type:varchar(255)"`
	CustomerMobile string `gorm:"type:varchar(50)"`
	CustomerNote   string `gorm:"type:text"`

	Subtotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingTotal decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      string          `gorm:"type:varchar(10)"`

	RawData       string `gorm:"type:jsonb"`
	ProcessedData string `gorm:"type:jsonb"`

	LocalOrderRef string `gorm:"type:varchar(100);index"`

	OrderedAt    *time.Time
	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RemoteOrderModel) TableName() string {
	return "remote_orders"
}

// ToDomain converts the persistence model to a domain RemoteOrder.
func (m *RemoteOrderModel) ToDomain() *ordersync.RemoteOrder {
	o := &ordersync.RemoteOrder{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConnectorID:    m.ConnectorID,
		RemoteID:       m.RemoteID,
		OrderCode:      m.OrderCode,
		Status:         m.Status,
		PaymentStatus:  m.PaymentStatus,
		PaymentMethod:  m.PaymentMethod,
		CustomerName:   m.CustomerName,
		CustomerEmail:  m.CustomerEmail,
		CustomerMobile: m.CustomerMobile,
		CustomerNote:   m.CustomerNote,
		Subtotal:       m.Subtotal,
		ShippingTotal:  m.ShippingTotal,
		Total:          m.Total,
		Currency:       m.Currency,
		LocalOrderRef:  m.LocalOrderRef,
		OrderedAt:      m.OrderedAt,
		LastImportAt:   m.LastImportAt,
	}
	if m.RawData != "" {
		o.RawData = json.RawMessage(m.RawData)
	}
	if m.ProcessedData != "" {
		o.ProcessedData = json.RawMessage(m.ProcessedData)
	}
	return o
}

// FromDomain populates the persistence model from a domain RemoteOrder.
func (m *RemoteOrderModel) FromDomain(o *ordersync.RemoteOrder) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.ConnectorID = o.ConnectorID
	m.RemoteID = o.RemoteID
	m.OrderCode = o.OrderCode
	m.Status = o.Status
	m.PaymentStatus = o.PaymentStatus
	m.PaymentMethod = o.PaymentMethod
	m.CustomerName = o.CustomerName
	m.CustomerEmail = o.CustomerEmail
	m.CustomerMobile = o.CustomerMobile
	m.CustomerNote = o.CustomerNote
	m.Subtotal = o.Subtotal
	m.ShippingTotal = o.ShippingTotal
	m.Total = o.Total
	m.Currency = o.Currency
	m.RawData = string(o.RawData)
	m.ProcessedData = string(o.ProcessedData)
	m.LocalOrderRef = o.LocalOrderRef
	m.OrderedAt = o.OrderedAt
	m.LastImportAt = o.LastImportAt
}

// RemoteOrderModelFromDomain creates a persistence model from a domain RemoteOrder.
func RemoteOrderModelFromDomain(o *ordersync.RemoteOrder) *RemoteOrderModel {
	m := &RemoteOrderModel{}
	m.FromDomain(o)
	return m
}

// ReverseOrderModel is the persistence model for return requests.
// The waybill is flattened into nullable columns; at most one exists
// per return.
type ReverseOrderModel struct {
	BaseModel

	ConnectorID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RemoteOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	RemoteID      string    `gorm:"type:varchar(100);index"`

	ReasonRemoteID string                  `gorm:"type:varchar(100)"`
	Comment        string                  `gorm:"type:text"`
	Status         ordersync.ReverseStatus `gorm:"type:varchar(20);not null;index"`

	WaybillRemoteID       string          `gorm:"type:varchar(100)"`
	WaybillCost           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WaybillLabelURL       string          `gorm:"type:varchar(1000)"`
	WaybillTrackingNumber string          `gorm:"type:varchar(100)"`
	WaybillTrackingURL    string          `gorm:"type:varchar(1000)"`
	WaybillStatus         string          `gorm:"type:varchar(50)"`
	WaybillCourier        string          `gorm:"type:varchar(100)"`
	WaybillIssuedAt       *time.Time

	SentAt      *time.Time
	CompletedAt *time.Time
}

// TableName returns the table name for GORM
func (ReverseOrderModel) TableName() string {
	return "reverse_orders"
}

// ReverseItemModel is the persistence model for one returned line.
type ReverseItemModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key"`
	ReverseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`

	RemoteProductID string          `gorm:"type:varchar(100);not null"`
	Name            string          `gorm:"type:varchar(500)"`
	Quantity        int             `gorm:"not null;default:1"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ReverseItemModel) TableName() string {
	return "reverse_order_items"
}

// ToDomain converts the model and its items to a domain ReverseOrder.
func (m *ReverseOrderModel) ToDomain(items []ReverseItemModel) *ordersync.ReverseOrder {
	r := &ordersync.ReverseOrder{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConnectorID:    m.ConnectorID,
		RemoteOrderID:  m.RemoteOrderID,
		RemoteID:       m.RemoteID,
		ReasonRemoteID: m.ReasonRemoteID,
		Comment:        m.Comment,
		Status:         m.Status,
		SentAt:         m.SentAt,
		CompletedAt:    m.CompletedAt,
	}
	for _, it := range items {
		r.Items = append(r.Items, ordersync.ReverseItem{
			ID:              it.ID,
			ReverseOrderID:  it.ReverseOrderID,
			RemoteProductID: it.RemoteProductID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			Price:           it.Price,
		})
	}
	if m.WaybillRemoteID != "" {
		r.Waybill = &ordersync.Waybill{
			RemoteID:       m.WaybillRemoteID,
			Cost:           m.WaybillCost,
			LabelURL:       m.WaybillLabelURL,
			TrackingNumber: m.WaybillTrackingNumber,
			TrackingURL:    m.WaybillTrackingURL,
			Status:         m.WaybillStatus,
			Courier:        m.WaybillCourier,
			IssuedAt:       m.WaybillIssuedAt,
		}
	}
	return r
}

// FromDomain populates the model from a domain ReverseOrder. Items are
// returned separately since they live in their own table.
func (m *ReverseOrderModel) FromDomain(r *ordersync.ReverseOrder) []ReverseItemModel {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ConnectorID = r.ConnectorID
	m.RemoteOrderID = r.RemoteOrderID
	m.RemoteID = r.RemoteID
	m.ReasonRemoteID = r.ReasonRemoteID
	m.Comment = r.Comment
	m.Status = r.Status
	m.SentAt = r.SentAt
	m.CompletedAt = r.CompletedAt

	if r.Waybill != nil {
		m.WaybillRemoteID = r.Waybill.RemoteID
		m.WaybillCost = r.Waybill.Cost
		m.WaybillLabelURL = r.Waybill.LabelURL
		m.WaybillTrackingNumber = r.Waybill.TrackingNumber
		m.WaybillTrackingURL = r.Waybill.TrackingURL
		m.WaybillStatus = r.Waybill.Status
		m.WaybillCourier = r.Waybill.Courier
		m.WaybillIssuedAt = r.Waybill.IssuedAt
	}

	items := make([]ReverseItemModel, len(r.Items))
	for i, it := range r.Items {
		items[i] = ReverseItemModel{
			ID:              it.ID,
			ReverseOrderID:  it.ReverseOrderID,
			RemoteProductID: it.RemoteProductID,
			Name:            it.Name,
			Quantity:        it.Quantity,
			Price:           it.Price,
		}
	}
	return items
}
