package mirror

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/shared"
)

// Product mirrors one remote product (or variant parent). The pair
// (ConnectorID, RemoteID) is unique; re-importing the same remote id
// overwrites descriptive fields in place and never creates a second row.
type Product struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	Name        LocalizedText
	Description LocalizedText
	SKU         string
	Barcode     string

	Price         decimal.Decimal
	SalePrice     decimal.Decimal
	Currency      string
	Quantity      decimal.Decimal
	IsInfinite    bool
	IsPublished   bool
	CategoryIDs   []string // remote category ids
	ImageURL      string
	RemoteHTMLURL string

	// Optional link to the local catalog, established by matching or by
	// an operator. Preserved across re-imports.
	LocalProductID *uuid.UUID

	Active       bool
	LastImportAt time.Time
}

// NewProduct creates a product mirror
func NewProduct(connectorID uuid.UUID, remoteID string) (*Product, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &Product{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		Active:       true,
		LastImportAt: time.Now(),
	}, nil
}

// DisplayName resolves the bilingual name, falling back to the SKU and
// finally the remote id.
func (p *Product) DisplayName() string {
	if name := p.Name.Resolve(p.SKU); name != "" {
		return name
	}
	return p.RemoteID
}

// Overwrite replaces all descriptive fields from a fresh remote payload
// while keeping identity and the local link intact.
func (p *Product) Overwrite(src *Product) {
	p.Name = src.Name
	p.Description = src.Description
	p.SKU = src.SKU
	p.Barcode = src.Barcode
	p.Price = src.Price
	p.SalePrice = src.SalePrice
	p.Currency = src.Currency
	p.Quantity = src.Quantity
	p.IsInfinite = src.IsInfinite
	p.IsPublished = src.IsPublished
	p.CategoryIDs = src.CategoryIDs
	p.ImageURL = src.ImageURL
	p.RemoteHTMLURL = src.RemoteHTMLURL
	p.Active = true
	p.LastImportAt = time.Now()
	p.UpdatedAt = time.Now()
}

// Deactivate marks the mirror inactive after a remote delete event.
// The row is kept so history and mappings stay resolvable.
func (p *Product) Deactivate() {
	p.Active = false
	p.UpdatedAt = time.Now()
}

// Variant mirrors one sellable variant of a remote product.
type Variant struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	ProductID   uuid.UUID // parent product mirror
	RemoteID    string

	SKU      string
	Barcode  string
	Price    decimal.Decimal
	Quantity decimal.Decimal

	LocalProductID *uuid.UUID
}
