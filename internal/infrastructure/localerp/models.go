// Package localerp backs the sync ports with the local ERP tables.
// The connector treats the local system as three narrow ports: a
// catalog to match products against, a customer directory, and an
// order desk that accepts drafts. This package implements them on the
// same database the connector runs in.
package localerp

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LocalProductModel is one sellable product of the local catalog.
type LocalProductModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	Code      string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Name      string          `gorm:"type:varchar(500);not null;index"`
	SKU       string          `gorm:"type:varchar(100);index"`
	Barcode   string          `gorm:"type:varchar(100);index"`
	SalePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active    bool            `gorm:"not null;default:true"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocalProductModel) TableName() string {
	return "local_products"
}

// LocalCustomerModel is one customer of the local system.
type LocalCustomerModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Name      string    `gorm:"type:varchar(255);not null"`
	Email     string    `gorm:"type:varchar(255);index"`
	Mobile    string    `gorm:"type:varchar(50);index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocalCustomerModel) TableName() string {
	return "local_customers"
}

// LocalOrderModel is one sales order created from a remote order.
type LocalOrderModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	Ref        string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	CustomerID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SourceRef  string          `gorm:"type:varchar(100);index"`
	Note       string          `gorm:"type:text"`
	Currency   string          `gorm:"type:varchar(10)"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Shipping   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Commission decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status     string          `gorm:"type:varchar(20);not null;default:'draft'"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LocalOrderModel) TableName() string {
	return "local_orders"
}

// LocalOrderLineModel is one line of a local sales order.
type LocalOrderLineModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	Description string          `gorm:"type:varchar(500)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (LocalOrderLineModel) TableName() string {
	return "local_order_lines"
}

// StockLevelModel is the on-hand quantity of one product at one location.
type StockLevelModel struct {
	ProductID  uuid.UUID       `gorm:"type:uuid;primary_key"`
	LocationID uuid.UUID       `gorm:"type:uuid;primary_key"`
	OnHand     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLevelModel) TableName() string {
	return "local_stock_levels"
}
