package localerp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/erp/zidsync/internal/domain/ordersync"
	"github.com/erp/zidsync/internal/domain/shared"
	"github.com/erp/zidsync/internal/domain/stocksync"
)

// Catalog resolves local products by their identifying fields.
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a catalog bound to the given database
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// FindBySKU resolves an active product by SKU
func (c *Catalog) FindBySKU(ctx context.Context, sku string) (uuid.UUID, error) {
	return c.findByField(ctx, "sku", sku)
}

// FindByBarcode resolves an active product by barcode
func (c *Catalog) FindByBarcode(ctx context.Context, barcode string) (uuid.UUID, error) {
	return c.findByField(ctx, "barcode", barcode)
}

// FindByName resolves an active product by exact name
func (c *Catalog) FindByName(ctx context.Context, name string) (uuid.UUID, error) {
	return c.findByField(ctx, "name", name)
}

func (c *Catalog) findByField(ctx context.Context, field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, shared.ErrNotFound
	}
	var model LocalProductModel
	err := c.db.WithContext(ctx).
		Where("active = ? AND "+field+" = ?", true, value).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, shared.ErrNotFound
		}
		return uuid.Nil, err
	}
	return model.ID, nil
}

// Ensure Catalog implements ordersync.Catalog
var _ ordersync.Catalog = (*Catalog)(nil)

// CustomerDirectory resolves or creates local customers.
type CustomerDirectory struct {
	db *gorm.DB
}

// NewCustomerDirectory creates a directory bound to the given database
func NewCustomerDirectory(db *gorm.DB) *CustomerDirectory {
	return &CustomerDirectory{db: db}
}

// FindByEmail resolves a customer by email
func (d *CustomerDirectory) FindByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	return d.findByField(ctx, "email", email)
}

// FindByMobile resolves a customer by mobile number
func (d *CustomerDirectory) FindByMobile(ctx context.Context, mobile string) (uuid.UUID, error) {
	return d.findByField(ctx, "mobile", mobile)
}

func (d *CustomerDirectory) findByField(ctx context.Context, field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, shared.ErrNotFound
	}
	var model LocalCustomerModel
	err := d.db.WithContext(ctx).
		Where(field+" = ?", value).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, shared.ErrNotFound
		}
		return uuid.Nil, err
	}
	return model.ID, nil
}

// Create inserts a new customer record
func (d *CustomerDirectory) Create(ctx context.Context, name, email, mobile string) (uuid.UUID, error) {
	now := time.Now()
	model := LocalCustomerModel{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Mobile:    mobile,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.db.WithContext(ctx).Create(&model).Error; err != nil {
		return uuid.Nil, err
	}
	return model.ID, nil
}

// Ensure CustomerDirectory implements ordersync.CustomerDirectory
var _ ordersync.CustomerDirectory = (*CustomerDirectory)(nil)

// OrderDesk creates local sales orders from normalized drafts.
type OrderDesk struct {
	db *gorm.DB
}

// NewOrderDesk creates an order desk bound to the given database
func NewOrderDesk(db *gorm.DB) *OrderDesk {
	return &OrderDesk{db: db}
}

// CreateDraftOrder writes the order and its lines in one transaction
// and returns the generated local reference.
func (o *OrderDesk) CreateDraftOrder(ctx context.Context, draft ordersync.DraftOrder) (string, error) {
	now := time.Now()
	orderID := uuid.New()
	ref := fmt.Sprintf("SO/%s/%s", now.Format("2006"), orderID.String()[:8])

	subtotal := decimal.Zero
	lines := make([]LocalOrderLineModel, len(draft.Lines))
	for i, l := range draft.Lines {
		lines[i] = LocalOrderLineModel{
			ID:          uuid.New(),
			OrderID:     orderID,
			ProductID:   l.LocalProductID,
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
		}
		subtotal = subtotal.Add(l.UnitPrice.Mul(l.Quantity))
	}

	order := LocalOrderModel{
		ID:         orderID,
		Ref:        ref,
		CustomerID: draft.LocalCustomerID,
		SourceRef:  draft.RemoteOrderID,
		Note:       draft.Note,
		Currency:   draft.Currency,
		Subtotal:   subtotal,
		Shipping:   draft.ShippingTotal,
		Commission: draft.CommissionTotal,
		Total:      subtotal.Add(draft.ShippingTotal),
		Status:     "draft",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if len(lines) > 0 {
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return ref, nil
}

// Ensure OrderDesk implements ordersync.OrderDesk
var _ ordersync.OrderDesk = (*OrderDesk)(nil)

// StockLedger reads on-hand quantities from the local stock table.
type StockLedger struct {
	db *gorm.DB
}

// NewStockLedger creates a ledger bound to the given database
func NewStockLedger(db *gorm.DB) *StockLedger {
	return &StockLedger{db: db}
}

// OnHand returns the stored quantity for a product at a location.
// A missing row reads as zero.
func (s *StockLedger) OnHand(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	var model StockLevelModel
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	return model.OnHand, nil
}

// Ensure StockLedger implements stocksync.StockLedger
var _ stocksync.StockLedger = (*StockLedger)(nil)
