package zid

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/mirror"
)

// Localized is the platform's bilingual field shape.
type Localized struct {
	Ar string `json:"ar"`
	En string `json:"en"`
}

// UnmarshalJSON accepts both the object form and a plain string, which
// older endpoints still return.
func (l *Localized) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		l.Ar = s
		return nil
	}
	type alias Localized
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = Localized(a)
	return nil
}

// Text converts to the domain representation
func (l Localized) Text() mirror.LocalizedText {
	return mirror.LocalizedText{Primary: l.Ar, Secondary: l.En}
}

// StoreProfile is the account profile payload used to validate
// credentials and capture store metadata.
type StoreProfile struct {
	User struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Store struct {
			ID       json.Number `json:"id"`
			Title    string      `json:"title"`
			URL      string      `json:"url"`
			Currency string      `json:"currency"`
		} `json:"store"`
	} `json:"user"`
}

// Product is a product payload.
type Product struct {
	ID          string          `json:"id"`
	Name        Localized       `json:"name"`
	Description Localized       `json:"description"`
	SKU         string          `json:"sku"`
	Barcode     string          `json:"barcode"`
	Price       decimal.Decimal `json:"price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	Currency    string          `json:"currency"`
	Quantity    decimal.Decimal `json:"quantity"`
	IsInfinite  bool            `json:"is_infinite"`
	IsPublished bool            `json:"is_published"`
	HTMLURL     string          `json:"html_url"`
	Categories  []struct {
		ID json.Number `json:"id"`
	} `json:"categories"`
	Images []struct {
		URL string `json:"url"`
	} `json:"images"`
	Variants []ProductVariant `json:"variants"`
}

// ProductVariant is one sellable variant inside a product payload.
type ProductVariant struct {
	ID       string          `json:"id"`
	SKU      string          `json:"sku"`
	Barcode  string          `json:"barcode"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Category is one node of the nested category payload.
type Category struct {
	ID            json.Number `json:"id"`
	Name          Localized   `json:"name"`
	Description   Localized   `json:"description"`
	SubCategories []Category  `json:"sub_categories"`
}

// TreeNode converts the nested payload to the domain tree shape.
func (c Category) TreeNode() mirror.TreeNode {
	node := mirror.TreeNode{
		RemoteID:    c.ID.String(),
		Name:        c.Name.Text(),
		Description: c.Description.Text(),
	}
	for _, sub := range c.SubCategories {
		node.Children = append(node.Children, sub.TreeNode())
	}
	return node
}

// Attribute is a product attribute payload.
type Attribute struct {
	ID    json.Number `json:"id"`
	Name  Localized   `json:"name"`
	Value Localized   `json:"value"`
}

// Location is an inventory location payload.
type Location struct {
	ID        string    `json:"id"`
	Name      Localized `json:"name"`
	City      string    `json:"city"`
	IsDefault bool      `json:"is_default"`
}

// Customer is a store customer payload.
type Customer struct {
	ID     json.Number `json:"id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Mobile string      `json:"mobile"`
	City   string      `json:"city"`
}

// Order is a sales order payload.
type Order struct {
	ID     json.Number `json:"id"`
	Code   string      `json:"code"`
	Status struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"order_status"`
	PaymentStatus string `json:"payment_status"`
	Payment       struct {
		Method struct {
			Code string `json:"code"`
		} `json:"method"`
	} `json:"payment"`
	Customer      Customer        `json:"customer"`
	CustomerNote  string          `json:"customer_note"`
	Products      []OrderProduct  `json:"products"`
	Subtotal      decimal.Decimal `json:"order_subtotal"`
	ShippingTotal decimal.Decimal `json:"shipping_total"`
	Total         decimal.Decimal `json:"order_total"`
	Currency      string          `json:"currency_code"`
	CreatedAt     string          `json:"created_at"`
}

// OrderProduct is one line of an order payload.
type OrderProduct struct {
	ID       string          `json:"id"`
	Name     Localized       `json:"name"`
	SKU      string          `json:"sku"`
	Barcode  string          `json:"barcode"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

// ReverseReason is a return reason payload.
type ReverseReason struct {
	ID   json.Number `json:"id"`
	Name Localized   `json:"name"`
}

// AbandonedCart is an abandoned cart payload.
type AbandonedCart struct {
	ID            json.Number     `json:"id"`
	Customer      Customer        `json:"customer"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency_code"`
	ProductsCount int             `json:"products_count"`
	IsRecoverable bool            `json:"is_recoverable"`
	CreatedAt     string          `json:"created_at"`
}

// Payout is a settlement payload with its breakdown.
type Payout struct {
	ID             json.Number     `json:"id"`
	Reference      string          `json:"reference"`
	SettlementDate string          `json:"settlement_date"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Currency       string          `json:"currency_code"`
	Status         string          `json:"status"`
	Lines          []PayoutLine    `json:"lines"`
}

// PayoutLine is one settlement breakdown entry.
type PayoutLine struct {
	Type        string          `json:"type"`
	OrderRef    string          `json:"order_reference"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Webhook is a webhook registration payload.
type Webhook struct {
	ID        json.Number `json:"id"`
	Event     string      `json:"event"`
	TargetURL string      `json:"target_url"`
}

// ReverseOrderResult is the platform's response to a return submission.
type ReverseOrderResult struct {
	ID     json.Number `json:"id"`
	Status string      `json:"status"`
}

// WaybillResult is the courier paperwork issued for a return.
type WaybillResult struct {
	ID             json.Number     `json:"id"`
	Cost           decimal.Decimal `json:"cost"`
	LabelURL       string          `json:"label"`
	TrackingNumber string          `json:"tracking_number"`
	TrackingURL    string          `json:"tracking_url"`
	Status         string          `json:"status"`
	Courier        string          `json:"courier_name"`
}
