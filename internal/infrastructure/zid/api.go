package zid

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/connector"
)

// GetProfile fetches the account profile. Used to validate credentials
// on connect and capture the store metadata.
func (c *Client) GetProfile(ctx context.Context, conn *connector.Connector) (*StoreProfile, error) {
	data, err := c.Request(ctx, conn, http.MethodGet, "managers/account/profile", nil)
	if err != nil {
		return nil, err
	}
	var profile StoreProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrCommunication, err)
	}
	return &profile, nil
}

// GetOrder fetches one order with its raw payload preserved.
func (c *Client) GetOrder(ctx context.Context, conn *connector.Connector, remoteOrderID string) (*Order, json.RawMessage, error) {
	data, err := c.Request(ctx, conn, http.MethodGet,
		fmt.Sprintf("managers/store/orders/%s/view", remoteOrderID), nil)
	if err != nil {
		return nil, nil, err
	}

	// The order may arrive bare or wrapped in an "order" envelope.
	var wrapped struct {
		Order json.RawMessage `json:"order"`
	}
	raw := data
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.Order) > 0 {
		raw = wrapped.Order
	}

	var order Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, nil, fmt.Errorf("%w: decode order: %v", ErrCommunication, err)
	}
	return &order, raw, nil
}

// ListOrders fetches all orders updated since the given time.
func (c *Client) ListOrders(ctx context.Context, conn *connector.Connector, since *time.Time) ([]Order, error) {
	params := url.Values{}
	if since != nil {
		params.Set("since", since.UTC().Format(time.RFC3339))
	}
	items, err := c.CollectPages(ctx, conn, "managers/store/orders", params)
	if err != nil {
		return nil, err
	}
	orders := make([]Order, 0, len(items))
	for _, item := range items {
		var o Order
		if err := json.Unmarshal(item, &o); err != nil {
			return nil, fmt.Errorf("%w: decode order item: %v", ErrCommunication, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// UpdateOrderStatus pushes a status change for one order.
func (c *Client) UpdateOrderStatus(ctx context.Context, conn *connector.Connector, remoteOrderID, status string) error {
	payload := map[string]string{"order_status": status}
	_, err := c.Request(ctx, conn, http.MethodPost,
		fmt.Sprintf("managers/store/orders/%s/change-order-status", remoteOrderID), payload)
	return err
}

// ListProducts fetches the full product list.
func (c *Client) ListProducts(ctx context.Context, conn *connector.Connector) ([]Product, error) {
	items, err := c.CollectPages(ctx, conn, "products", nil)
	if err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(items))
	for _, item := range items {
		var p Product
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("%w: decode product item: %v", ErrCommunication, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// GetProduct fetches one product.
func (c *Client) GetProduct(ctx context.Context, conn *connector.Connector, remoteProductID string) (*Product, error) {
	data, err := c.Request(ctx, conn, http.MethodGet, "products/"+remoteProductID+"/", nil)
	if err != nil {
		return nil, err
	}
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", ErrCommunication, err)
	}
	return &p, nil
}

// UpdateProductStock pushes one quantity to one remote location.
func (c *Client) UpdateProductStock(ctx context.Context, conn *connector.Connector, remoteProductID, remoteLocationID string, qty decimal.Decimal, isInfinite bool) error {
	payload := map[string]any{
		"stocks": []map[string]any{{
			"location":           remoteLocationID,
			"available_quantity": qty,
			"is_infinite":        isInfinite,
		}},
	}
	_, err := c.Request(ctx, conn, http.MethodPatch, "products/"+remoteProductID+"/", payload)
	return err
}

// ListCategories fetches the nested category tree.
func (c *Client) ListCategories(ctx context.Context, conn *connector.Connector) ([]Category, error) {
	items, err := c.CollectPages(ctx, conn, "managers/store/categories", nil)
	if err != nil {
		return nil, err
	}
	categories := make([]Category, 0, len(items))
	for _, item := range items {
		var cat Category
		if err := json.Unmarshal(item, &cat); err != nil {
			return nil, fmt.Errorf("%w: decode category item: %v", ErrCommunication, err)
		}
		categories = append(categories, cat)
	}
	return categories, nil
}

// ListAttributes fetches product attributes.
func (c *Client) ListAttributes(ctx context.Context, conn *connector.Connector) ([]Attribute, error) {
	items, err := c.CollectPages(ctx, conn, "attributes", nil)
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, 0, len(items))
	for _, item := range items {
		var a Attribute
		if err := json.Unmarshal(item, &a); err != nil {
			return nil, fmt.Errorf("%w: decode attribute item: %v", ErrCommunication, err)
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// ListLocations fetches inventory locations.
func (c *Client) ListLocations(ctx context.Context, conn *connector.Connector) ([]Location, error) {
	items, err := c.CollectPages(ctx, conn, "managers/store/locations", nil)
	if err != nil {
		return nil, err
	}
	locations := make([]Location, 0, len(items))
	for _, item := range items {
		var l Location
		if err := json.Unmarshal(item, &l); err != nil {
			return nil, fmt.Errorf("%w: decode location item: %v", ErrCommunication, err)
		}
		locations = append(locations, l)
	}
	return locations, nil
}

// ListReverseReasons fetches the return reasons offered by the platform.
func (c *Client) ListReverseReasons(ctx context.Context, conn *connector.Connector) ([]ReverseReason, error) {
	items, err := c.CollectPages(ctx, conn, "managers/store/reverse-orders/reasons", nil)
	if err != nil {
		return nil, err
	}
	reasons := make([]ReverseReason, 0, len(items))
	for _, item := range items {
		var r ReverseReason
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("%w: decode reason item: %v", ErrCommunication, err)
		}
		reasons = append(reasons, r)
	}
	return reasons, nil
}

// CreateReverseOrder submits a return request for an order.
func (c *Client) CreateReverseOrder(ctx context.Context, conn *connector.Connector, remoteOrderID, reasonID, comment string, productIDs []string) (*ReverseOrderResult, error) {
	payload := map[string]any{
		"order_id":  remoteOrderID,
		"reason_id": reasonID,
		"comment":   comment,
		"products":  productIDs,
	}
	data, err := c.Request(ctx, conn, http.MethodPost, "managers/store/reverse-orders", payload)
	if err != nil {
		return nil, err
	}
	var result ReverseOrderResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode reverse order result: %v", ErrCommunication, err)
	}
	return &result, nil
}

// CreateReverseWaybill requests courier paperwork for a submitted return.
func (c *Client) CreateReverseWaybill(ctx context.Context, conn *connector.Connector, remoteReverseID string) (*WaybillResult, error) {
	data, err := c.Request(ctx, conn, http.MethodPost,
		fmt.Sprintf("managers/store/reverse-orders/%s/waybill", remoteReverseID), nil)
	if err != nil {
		return nil, err
	}
	var result WaybillResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: decode waybill result: %v", ErrCommunication, err)
	}
	return &result, nil
}

// ListAbandonedCarts fetches recoverable carts.
func (c *Client) ListAbandonedCarts(ctx context.Context, conn *connector.Connector) ([]AbandonedCart, error) {
	items, err := c.CollectPages(ctx, conn, "managers/store/abandoned-carts", nil)
	if err != nil {
		return nil, err
	}
	carts := make([]AbandonedCart, 0, len(items))
	for _, item := range items {
		var cart AbandonedCart
		if err := json.Unmarshal(item, &cart); err != nil {
			return nil, fmt.Errorf("%w: decode cart item: %v", ErrCommunication, err)
		}
		carts = append(carts, cart)
	}
	return carts, nil
}

// ListPayouts fetches settlement statements.
func (c *Client) ListPayouts(ctx context.Context, conn *connector.Connector) ([]Payout, error) {
	items, err := c.CollectPages(ctx, conn, "managers/store/payouts", nil)
	if err != nil {
		return nil, err
	}
	payouts := make([]Payout, 0, len(items))
	for _, item := range items {
		var p Payout
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("%w: decode payout item: %v", ErrCommunication, err)
		}
		payouts = append(payouts, p)
	}
	return payouts, nil
}

// RegisterWebhook subscribes a target URL to an event.
func (c *Client) RegisterWebhook(ctx context.Context, conn *connector.Connector, event, targetURL string) (*Webhook, error) {
	payload := map[string]string{
		"event":      event,
		"target_url": targetURL,
	}
	data, err := c.Request(ctx, conn, http.MethodPost, "managers/webhooks", payload)
	if err != nil {
		return nil, err
	}
	var wh Webhook
	if err := json.Unmarshal(data, &wh); err != nil {
		return nil, fmt.Errorf("%w: decode webhook: %v", ErrCommunication, err)
	}
	return &wh, nil
}

// ListWebhooks fetches the registrations held remotely.
func (c *Client) ListWebhooks(ctx context.Context, conn *connector.Connector) ([]Webhook, error) {
	items, err := c.CollectPages(ctx, conn, "managers/webhooks", nil)
	if err != nil {
		return nil, err
	}
	webhooks := make([]Webhook, 0, len(items))
	for _, item := range items {
		var wh Webhook
		if err := json.Unmarshal(item, &wh); err != nil {
			return nil, fmt.Errorf("%w: decode webhook item: %v", ErrCommunication, err)
		}
		webhooks = append(webhooks, wh)
	}
	return webhooks, nil
}

// DeleteWebhook removes a registration.
func (c *Client) DeleteWebhook(ctx context.Context, conn *connector.Connector, remoteWebhookID string) error {
	_, err := c.Request(ctx, conn, http.MethodDelete, "managers/webhooks/"+remoteWebhookID, nil)
	return err
}
