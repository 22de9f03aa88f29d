package zid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/erp/zidsync/internal/domain/connector"
)

const (
	// maxResponseSize bounds response bodies read into memory.
	maxResponseSize = 10 * 1024 * 1024

	defaultTimeout  = 30 * time.Second
	defaultMaxPages = 200
)

// Config holds HTTP client settings.
type Config struct {
	Timeout  time.Duration
	MaxPages int
}

// DefaultConfig returns production defaults
func DefaultConfig() Config {
	return Config{
		Timeout:  defaultTimeout,
		MaxPages: defaultMaxPages,
	}
}

// Validate checks config values and applies defaults
func (c *Config) Validate() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
}

// Client talks to the Zid Merchant API on behalf of a connector. It is
// stateless; credentials and the base URL come from the connector
// passed to each call, so one client serves every store.
type Client struct {
	httpClient *http.Client
	maxPages   int
	logger     *zap.Logger
}

// NewClient creates an API client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg.Validate()
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxPages:   cfg.MaxPages,
		logger:     logger,
	}
}

// Request performs one authenticated call and returns the raw JSON
// body. endpoint is resolved against the connector's base URL unless it
// is already absolute (as pagination cursors can be).
func (c *Client) Request(ctx context.Context, conn *connector.Connector, method, endpoint string, payload any) (json.RawMessage, error) {
	if err := conn.RequireConnected(); err != nil {
		return nil, err
	}

	fullURL, err := c.resolveURL(conn, endpoint)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	if conn.ManagerToken != "" {
		req.Header.Set("X-Manager-Token", conn.ManagerToken)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "all")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCommunication, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrCommunication, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.logger.Warn("API call rejected as unauthorized",
			zap.String("store_id", conn.StoreID),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnauthorized, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		return nil, c.parseRemoteError(resp.StatusCode, data)
	}

	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrCommunication)
	}
	return data, nil
}

// Get performs an authenticated GET with query parameters.
func (c *Client) Get(ctx context.Context, conn *connector.Connector, endpoint string, params url.Values) (json.RawMessage, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		endpoint = endpoint + sep + params.Encode()
	}
	return c.Request(ctx, conn, http.MethodGet, endpoint, nil)
}

// pageEnvelope is the standard list response shape.
type pageEnvelope struct {
	Results json.RawMessage `json:"results"`
	Count   int             `json:"count"`
	Next    string          `json:"next"`
}

// CollectPages fetches every page of a list endpoint and merges the
// result items. The next cursor may be an absolute URL or a bare token;
// both are followed. maxPages caps runaway pagination.
func (c *Client) CollectPages(ctx context.Context, conn *connector.Connector, endpoint string, params url.Values) ([]json.RawMessage, error) {
	var items []json.RawMessage

	next := endpoint
	nextParams := params
	for page := 0; next != ""; page++ {
		if page >= c.maxPages {
			c.logger.Warn("pagination cap reached",
				zap.String("endpoint", endpoint),
				zap.Int("pages", page),
			)
			break
		}

		data, err := c.Get(ctx, conn, next, nextParams)
		if err != nil {
			return nil, err
		}

		var env pageEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: decode page envelope: %v", ErrCommunication, err)
		}

		var pageItems []json.RawMessage
		if len(env.Results) > 0 {
			if err := json.Unmarshal(env.Results, &pageItems); err != nil {
				return nil, fmt.Errorf("%w: decode page results: %v", ErrCommunication, err)
			}
		}
		items = append(items, pageItems...)

		next, nextParams = c.nextCursor(endpoint, params, env.Next)
	}
	return items, nil
}

// nextCursor normalizes the envelope's next field. An absolute URL is
// followed as-is; a bare token becomes a cursor parameter on the
// original endpoint.
func (c *Client) nextCursor(endpoint string, params url.Values, next string) (string, url.Values) {
	if next == "" {
		return "", nil
	}
	if strings.HasPrefix(next, "http://") || strings.HasPrefix(next, "https://") {
		return next, nil
	}
	cloned := url.Values{}
	for k, v := range params {
		cloned[k] = v
	}
	cloned.Set("cursor", next)
	return endpoint, cloned
}

func (c *Client) resolveURL(conn *connector.Connector, endpoint string) (string, error) {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint, nil
	}
	base := strings.TrimSuffix(conn.APIBaseURL, "/")
	if base == "" {
		return "", fmt.Errorf("connector %s has no API base URL", conn.StoreID)
	}
	return base + "/" + strings.TrimPrefix(endpoint, "/"), nil
}

// remoteErrorBody is the platform's rejection envelope.
type remoteErrorBody struct {
	Message string `json:"message"`
	Errors  []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) parseRemoteError(status int, data []byte) error {
	var body remoteErrorBody
	if err := json.Unmarshal(data, &body); err != nil || (body.Message == "" && len(body.Errors) == 0) {
		// A 4xx/5xx without a parseable envelope is treated as a
		// transport-level failure.
		return fmt.Errorf("%w: HTTP %d", ErrCommunication, status)
	}

	re := &RemoteError{StatusCode: status, Message: body.Message}
	for _, e := range body.Errors {
		if e.Message != "" {
			re.Details = append(re.Details, e.Message)
		}
	}
	if re.Message == "" && len(re.Details) > 0 {
		re.Message = re.Details[0]
	}
	return re
}
