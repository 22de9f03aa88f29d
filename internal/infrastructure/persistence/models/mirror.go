package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/mirror"
)

// ProductModel is the persistence model for the mirror Product entity.
type ProductModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_mirror_products_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_products_remote,priority:2"`

	NamePrimary          string `gorm:"type:varchar(500)"`
	NameSecondary        string `gorm:"type:varchar(500)"`
	DescriptionPrimary   string `gorm:"type:text"`
	DescriptionSecondary string `gorm:"type:text"`

	SKU     string `gorm:"type:varchar(100);index"`
	Barcode string `gorm:"type:varchar(100);index"`

	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalePrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency    string          `gorm:"type:varchar(10)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsInfinite  bool            `gorm:"not null;default:false"`
	IsPublished bool            `gorm:"not null;default:false"`

	CategoryIDsJSON string `gorm:"type:jsonb;column:category_ids"`
	ImageURL        string `gorm:"type:varchar(1000)"`
	RemoteHTMLURL   string `gorm:"type:varchar(1000)"`

	LocalProductID *uuid.UUID `gorm:"type:uuid;index"`

	Active       bool      `gorm:"not null;default:true;index"`
	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "mirror_products"
}

// ToDomain converts the persistence model to a domain Product.
func (m *ProductModel) ToDomain() *mirror.Product {
	p := &mirror.Product{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConnectorID:    m.ConnectorID,
		RemoteID:       m.RemoteID,
		Name:           mirror.LocalizedText{Primary: m.NamePrimary, Secondary: m.NameSecondary},
		Description:    mirror.LocalizedText{Primary: m.DescriptionPrimary, Secondary: m.DescriptionSecondary},
		SKU:            m.SKU,
		Barcode:        m.Barcode,
		Price:          m.Price,
		SalePrice:      m.SalePrice,
		Currency:       m.Currency,
		Quantity:       m.Quantity,
		IsInfinite:     m.IsInfinite,
		IsPublished:    m.IsPublished,
		ImageURL:       m.ImageURL,
		RemoteHTMLURL:  m.RemoteHTMLURL,
		LocalProductID: m.LocalProductID,
		Active:         m.Active,
		LastImportAt:   m.LastImportAt,
	}

	if m.CategoryIDsJSON != "" {
		var ids []string
		if err := json.Unmarshal([]byte(m.CategoryIDsJSON), &ids); err == nil {
			p.CategoryIDs = ids
		}
	}

	return p
}

// FromDomain populates the persistence model from a domain Product.
func (m *ProductModel) FromDomain(p *mirror.Product) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ConnectorID = p.ConnectorID
	m.RemoteID = p.RemoteID
	m.NamePrimary = p.Name.Primary
	m.NameSecondary = p.Name.Secondary
	m.DescriptionPrimary = p.Description.Primary
	m.DescriptionSecondary = p.Description.Secondary
	m.SKU = p.SKU
	m.Barcode = p.Barcode
	m.Price = p.Price
	m.SalePrice = p.SalePrice
	m.Currency = p.Currency
	m.Quantity = p.Quantity
	m.IsInfinite = p.IsInfinite
	m.IsPublished = p.IsPublished
	m.ImageURL = p.ImageURL
	m.RemoteHTMLURL = p.RemoteHTMLURL
	m.LocalProductID = p.LocalProductID
	m.Active = p.Active
	m.LastImportAt = p.LastImportAt

	if len(p.CategoryIDs) > 0 {
		if data, err := json.Marshal(p.CategoryIDs); err == nil {
			m.CategoryIDsJSON = string(data)
		}
	} else {
		m.CategoryIDsJSON = "[]"
	}
}

// ProductModelFromDomain creates a persistence model from a domain Product.
func ProductModelFromDomain(p *mirror.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// VariantModel is the persistence model for the mirror Variant entity.
type VariantModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_variants_remote,priority:1"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_variants_remote,priority:2"`

	SKU      string          `gorm:"type:varchar(100);index"`
	Barcode  string          `gorm:"type:varchar(100)"`
	Price    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Quantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	LocalProductID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (VariantModel) TableName() string {
	return "mirror_variants"
}

// ToDomain converts the persistence model to a domain Variant.
func (m *VariantModel) ToDomain() *mirror.Variant {
	return &mirror.Variant{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConnectorID:    m.ConnectorID,
		ProductID:      m.ProductID,
		RemoteID:       m.RemoteID,
		SKU:            m.SKU,
		Barcode:        m.Barcode,
		Price:          m.Price,
		Quantity:       m.Quantity,
		LocalProductID: m.LocalProductID,
	}
}

// FromDomain populates the persistence model from a domain Variant.
func (m *VariantModel) FromDomain(v *mirror.Variant) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.ConnectorID = v.ConnectorID
	m.ProductID = v.ProductID
	m.RemoteID = v.RemoteID
	m.SKU = v.SKU
	m.Barcode = v.Barcode
	m.Price = v.Price
	m.Quantity = v.Quantity
	m.LocalProductID = v.LocalProductID
}

// CategoryModel is the persistence model for the mirror Category entity.
type CategoryModel struct {
	BaseModel

	ConnectorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_categories_remote,priority:1"`
	RemoteID       string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_categories_remote,priority:2"`
	ParentRemoteID string    `gorm:"type:varchar(100);index"`

	NamePrimary          string `gorm:"type:varchar(500)"`
	NameSecondary        string `gorm:"type:varchar(500)"`
	DescriptionPrimary   string `gorm:"type:text"`
	DescriptionSecondary string `gorm:"type:text"`

	DisplayPath string `gorm:"type:varchar(2000)"`

	Active       bool      `gorm:"not null;default:true"`
	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "mirror_categories"
}

// ToDomain converts the persistence model to a domain Category.
func (m *CategoryModel) ToDomain() *mirror.Category {
	return &mirror.Category{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConnectorID:    m.ConnectorID,
		RemoteID:       m.RemoteID,
		ParentRemoteID: m.ParentRemoteID,
		Name:           mirror.LocalizedText{Primary: m.NamePrimary, Secondary: m.NameSecondary},
		Description:    mirror.LocalizedText{Primary: m.DescriptionPrimary, Secondary: m.DescriptionSecondary},
		DisplayPath:    m.DisplayPath,
		Active:         m.Active,
		LastImportAt:   m.LastImportAt,
	}
}

// FromDomain populates the persistence model from a domain Category.
func (m *CategoryModel) FromDomain(c *mirror.Category) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ConnectorID = c.ConnectorID
	m.RemoteID = c.RemoteID
	m.ParentRemoteID = c.ParentRemoteID
	m.NamePrimary = c.Name.Primary
	m.NameSecondary = c.Name.Secondary
	m.DescriptionPrimary = c.Description.Primary
	m.DescriptionSecondary = c.Description.Secondary
	m.DisplayPath = c.DisplayPath
	m.Active = c.Active
	m.LastImportAt = c.LastImportAt
}

// AttributeModel is the persistence model for the mirror Attribute entity.
type AttributeModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_attributes_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_attributes_remote,priority:2"`

	NamePrimary    string `gorm:"type:varchar(500)"`
	NameSecondary  string `gorm:"type:varchar(500)"`
	ValuePrimary   string `gorm:"type:varchar(500)"`
	ValueSecondary string `gorm:"type:varchar(500)"`

	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributeModel) TableName() string {
	return "mirror_attributes"
}

// ToDomain converts the persistence model to a domain Attribute.
func (m *AttributeModel) ToDomain() *mirror.Attribute {
	return &mirror.Attribute{
		BaseEntity:   m.BaseModel.ToDomain(),
		ConnectorID:  m.ConnectorID,
		RemoteID:     m.RemoteID,
		Name:         mirror.LocalizedText{Primary: m.NamePrimary, Secondary: m.NameSecondary},
		Value:        mirror.LocalizedText{Primary: m.ValuePrimary, Secondary: m.ValueSecondary},
		LastImportAt: m.LastImportAt,
	}
}

// FromDomain populates the persistence model from a domain Attribute.
func (m *AttributeModel) FromDomain(a *mirror.Attribute) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.ConnectorID = a.ConnectorID
	m.RemoteID = a.RemoteID
	m.NamePrimary = a.Name.Primary
	m.NameSecondary = a.Name.Secondary
	m.ValuePrimary = a.Value.Primary
	m.ValueSecondary = a.Value.Secondary
	m.LastImportAt = a.LastImportAt
}

// LocationModel is the persistence model for the mirror Location entity.
type LocationModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_locations_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_locations_remote,priority:2"`

	NamePrimary   string `gorm:"type:varchar(500)"`
	NameSecondary string `gorm:"type:varchar(500)"`
	City          string `gorm:"type:varchar(255)"`
	IsDefault     bool   `gorm:"not null;default:false"`

	Active       bool      `gorm:"not null;default:true"`
	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocationModel) TableName() string {
	return "mirror_locations"
}

// ToDomain converts the persistence model to a domain Location.
func (m *LocationModel) ToDomain() *mirror.Location {
	return &mirror.Location{
		BaseEntity:   m.BaseModel.ToDomain(),
		ConnectorID:  m.ConnectorID,
		RemoteID:     m.RemoteID,
		Name:         mirror.LocalizedText{Primary: m.NamePrimary, Secondary: m.NameSecondary},
		City:         m.City,
		IsDefault:    m.IsDefault,
		Active:       m.Active,
		LastImportAt: m.LastImportAt,
	}
}

// FromDomain populates the persistence model from a domain Location.
func (m *LocationModel) FromDomain(l *mirror.Location) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.ConnectorID = l.ConnectorID
	m.RemoteID = l.RemoteID
	m.NamePrimary = l.Name.Primary
	m.NameSecondary = l.Name.Secondary
	m.City = l.City
	m.IsDefault = l.IsDefault
	m.Active = l.Active
	m.LastImportAt = l.LastImportAt
}

// CustomerModel is the persistence model for the mirror Customer entity.
type CustomerModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_customers_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_customers_remote,priority:2"`

	Name   string `gorm:"type:varchar(255)"`
	Email  string `gorm:"type:varchar(255);index"`
	Mobile string `gorm:"type:varchar(50);index"`
	City   string `gorm:"type:varchar(255)"`

	LocalCustomerID *uuid.UUID `gorm:"type:uuid;index"`

	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "mirror_customers"
}

// ToDomain converts the persistence model to a domain Customer.
func (m *CustomerModel) ToDomain() *mirror.Customer {
	return &mirror.Customer{
		BaseEntity:      m.BaseModel.ToDomain(),
		ConnectorID:     m.ConnectorID,
		RemoteID:        m.RemoteID,
		Name:            m.Name,
		Email:           m.Email,
		Mobile:          m.Mobile,
		City:            m.City,
		LocalCustomerID: m.LocalCustomerID,
		LastImportAt:    m.LastImportAt,
	}
}

// FromDomain populates the persistence model from a domain Customer.
func (m *CustomerModel) FromDomain(c *mirror.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.ConnectorID = c.ConnectorID
	m.RemoteID = c.RemoteID
	m.Name = c.Name
	m.Email = c.Email
	m.Mobile = c.Mobile
	m.City = c.City
	m.LocalCustomerID = c.LocalCustomerID
	m.LastImportAt = c.LastImportAt
}

// ReverseReasonModel is the persistence model for the mirror ReverseReason entity.
type ReverseReasonModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_reverse_reasons_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_reverse_reasons_remote,priority:2"`

	NamePrimary   string `gorm:"type:varchar(500)"`
	NameSecondary string `gorm:"type:varchar(500)"`
	UsageCount    int    `gorm:"not null;default:0"`

	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ReverseReasonModel) TableName() string {
	return "mirror_reverse_reasons"
}

// ToDomain converts the persistence model to a domain ReverseReason.
func (m *ReverseReasonModel) ToDomain() *mirror.ReverseReason {
	return &mirror.ReverseReason{
		BaseEntity:   m.BaseModel.ToDomain(),
		ConnectorID:  m.ConnectorID,
		RemoteID:     m.RemoteID,
		Name:         mirror.LocalizedText{Primary: m.NamePrimary, Secondary: m.NameSecondary},
		UsageCount:   m.UsageCount,
		LastImportAt: m.LastImportAt,
	}
}

// FromDomain populates the persistence model from a domain ReverseReason.
func (m *ReverseReasonModel) FromDomain(r *mirror.ReverseReason) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ConnectorID = r.ConnectorID
	m.RemoteID = r.RemoteID
	m.NamePrimary = r.Name.Primary
	m.NameSecondary = r.Name.Secondary
	m.UsageCount = r.UsageCount
	m.LastImportAt = r.LastImportAt
}

// AbandonedCartModel is the persistence model for the mirror AbandonedCart entity.
type AbandonedCartModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_abandoned_carts_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_abandoned_carts_remote,priority:2"`

	CustomerName  string          `gorm:"type:varchar(255)"`
	CustomerEmail string          `gorm:"type:varchar(255)"`
	CustomerPhone string          `gorm:"type:varchar(50)"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency      string          `gorm:"type:varchar(10)"`
	ItemCount     int             `gorm:"not null;default:0"`
	IsRecoverable bool            `gorm:"not null;default:false"`
	AbandonedAt   *time.Time

	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AbandonedCartModel) TableName() string {
	return "mirror_abandoned_carts"
}

// ToDomain converts the persistence model to a domain AbandonedCart.
func (m *AbandonedCartModel) ToDomain() *mirror.AbandonedCart {
	return &mirror.AbandonedCart{
		BaseEntity:    m.BaseModel.ToDomain(),
		ConnectorID:   m.ConnectorID,
		RemoteID:      m.RemoteID,
		CustomerName:  m.CustomerName,
		CustomerEmail: m.CustomerEmail,
		CustomerPhone: m.CustomerPhone,
		Total:         m.Total,
		Currency:      m.Currency,
		ItemCount:     m.ItemCount,
		IsRecoverable: m.IsRecoverable,
		AbandonedAt:   m.AbandonedAt,
		LastImportAt:  m.LastImportAt,
	}
}

// FromDomain populates the persistence model from a domain AbandonedCart.
func (m *AbandonedCartModel) FromDomain(a *mirror.AbandonedCart) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.ConnectorID = a.ConnectorID
	m.RemoteID = a.RemoteID
	m.CustomerName = a.CustomerName
	m.CustomerEmail = a.CustomerEmail
	m.CustomerPhone = a.CustomerPhone
	m.Total = a.Total
	m.Currency = a.Currency
	m.ItemCount = a.ItemCount
	m.IsRecoverable = a.IsRecoverable
	m.AbandonedAt = a.AbandonedAt
	m.LastImportAt = a.LastImportAt
}

// PayoutModel is the persistence model for the mirror Payout entity.
type PayoutModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_payouts_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_payouts_remote,priority:2"`

	Reference      string `gorm:"type:varchar(100)"`
	SettlementDate *time.Time
	GrossAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FeeAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Currency       string          `gorm:"type:varchar(10)"`
	Status         string          `gorm:"type:varchar(50)"`

	LastImportAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PayoutModel) TableName() string {
	return "mirror_payouts"
}

// PayoutLineModel is the persistence model for one payout breakdown line.
type PayoutLineModel struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	PayoutID uuid.UUID `gorm:"type:uuid;not null;index"`

	Type           mirror.PayoutLineType `gorm:"type:varchar(20);not null"`
	RemoteOrderRef string                `gorm:"type:varchar(100)"`
	Description    string                `gorm:"type:varchar(500)"`
	Amount         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (PayoutLineModel) TableName() string {
	return "mirror_payout_lines"
}

// ToDomain converts the payout model and its lines to a domain Payout.
func (m *PayoutModel) ToDomain(lines []PayoutLineModel) *mirror.Payout {
	p := &mirror.Payout{
		BaseEntity:     m.BaseModel.ToDomain(),
		ConnectorID:    m.ConnectorID,
		RemoteID:       m.RemoteID,
		Reference:      m.Reference,
		SettlementDate: m.SettlementDate,
		GrossAmount:    m.GrossAmount,
		FeeAmount:      m.FeeAmount,
		NetAmount:      m.NetAmount,
		Currency:       m.Currency,
		Status:         m.Status,
		LastImportAt:   m.LastImportAt,
	}
	for _, l := range lines {
		p.Lines = append(p.Lines, mirror.PayoutLine{
			ID:             l.ID,
			PayoutID:       l.PayoutID,
			Type:           l.Type,
			RemoteOrderRef: l.RemoteOrderRef,
			Description:    l.Description,
			Amount:         l.Amount,
		})
	}
	return p
}

// FromDomain populates the payout model from a domain Payout. Lines are
// returned separately since they live in their own table.
func (m *PayoutModel) FromDomain(p *mirror.Payout) []PayoutLineModel {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ConnectorID = p.ConnectorID
	m.RemoteID = p.RemoteID
	m.Reference = p.Reference
	m.SettlementDate = p.SettlementDate
	m.GrossAmount = p.GrossAmount
	m.FeeAmount = p.FeeAmount
	m.NetAmount = p.NetAmount
	m.Currency = p.Currency
	m.Status = p.Status
	m.LastImportAt = p.LastImportAt

	lines := make([]PayoutLineModel, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = PayoutLineModel{
			ID:             l.ID,
			PayoutID:       l.PayoutID,
			Type:           l.Type,
			RemoteOrderRef: l.RemoteOrderRef,
			Description:    l.Description,
			Amount:         l.Amount,
		}
	}
	return lines
}

// WebhookSubscriptionModel is the persistence model for webhook registrations.
type WebhookSubscriptionModel struct {
	BaseModel

	ConnectorID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_mirror_webhooks_remote,priority:1"`
	RemoteID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_mirror_webhooks_remote,priority:2"`

	Event        string `gorm:"type:varchar(100);not null;index"`
	TargetURL    string `gorm:"type:varchar(1000);not null"`
	TriggerCount int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (WebhookSubscriptionModel) TableName() string {
	return "mirror_webhook_subscriptions"
}

// ToDomain converts the persistence model to a domain WebhookSubscription.
func (m *WebhookSubscriptionModel) ToDomain() *mirror.WebhookSubscription {
	return &mirror.WebhookSubscription{
		BaseEntity:   m.BaseModel.ToDomain(),
		ConnectorID:  m.ConnectorID,
		RemoteID:     m.RemoteID,
		Event:        m.Event,
		TargetURL:    m.TargetURL,
		TriggerCount: m.TriggerCount,
	}
}

// FromDomain populates the persistence model from a domain WebhookSubscription.
func (m *WebhookSubscriptionModel) FromDomain(w *mirror.WebhookSubscription) {
	m.FromDomainBaseEntity(w.BaseEntity)
	m.ConnectorID = w.ConnectorID
	m.RemoteID = w.RemoteID
	m.Event = w.Event
	m.TargetURL = w.TargetURL
	m.TriggerCount = w.TriggerCount
}
