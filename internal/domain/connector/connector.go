package connector

import (
	"strings"
	"time"

	"github.com/erp/zidsync/internal/domain/shared"
)

// DefaultAPIBaseURL is the production Zid Merchant API root.
const DefaultAPIBaseURL = "https://api.zid.sa/v1"

// AuthorizationStatus tracks the credential lifecycle of a store link.
type AuthorizationStatus string

const (
	AuthNotConnected AuthorizationStatus = "not_connected"
	AuthConnected    AuthorizationStatus = "connected"
	AuthError        AuthorizationStatus = "error"
	AuthExpired      AuthorizationStatus = "expired"
)

// IsValid checks if the authorization status is a known value
func (s AuthorizationStatus) IsValid() bool {
	switch s {
	case AuthNotConnected, AuthConnected, AuthError, AuthExpired:
		return true
	}
	return false
}

// MatchPriority controls how remote products are resolved against local ones.
type MatchPriority string

const (
	MatchMappingFirst MatchPriority = "mapping_first" // consult stored links, fall back to field match
	MatchDirectOnly   MatchPriority = "direct_only"   // field match only
	MatchMappingOnly  MatchPriority = "mapping_only"  // stored links only
)

// ProductMatchBy selects the field used for direct product matching.
type ProductMatchBy string

const (
	MatchBySKU     ProductMatchBy = "sku"
	MatchByBarcode ProductMatchBy = "barcode"
	MatchByName    ProductMatchBy = "name"
)

// CustomerMatchBy selects how inbound order customers are resolved.
type CustomerMatchBy string

const (
	CustomerByEmail  CustomerMatchBy = "email"
	CustomerByMobile CustomerMatchBy = "mobile"
	CustomerByBoth   CustomerMatchBy = "both"
	CustomerAlways   CustomerMatchBy = "always_create"
)

// ImportKind identifies a long-running import protected by a connector lock.
type ImportKind string

const (
	ImportOrders   ImportKind = "orders"
	ImportProducts ImportKind = "products"
	ImportStatuses ImportKind = "statuses"
)

// ImportLock guards against overlapping imports of the same kind.
// A stale lock is reset once it exceeds the configured timeout.
type ImportLock struct {
	InProgress bool
	StartedAt  *time.Time
}

// Connector links one Zid store to the local system and carries all
// per-store sync policy. It owns every mirror record, queue and mapping
// created for the store; deleting a connector cascades to all of them.
type Connector struct {
	shared.BaseEntity

	Name       string
	StoreID    string
	APIBaseURL string

	AccessToken  string
	ManagerToken string
	AuthStatus   AuthorizationStatus

	// Store profile as reported by the remote platform.
	StoreName     string
	StoreURL      string
	StoreEmail    string
	StoreCurrency string

	// Remote location used for stock pushes when a mapping does not
	// name one explicitly.
	DefaultLocationID string

	MatchPriority   MatchPriority
	ProductMatchBy  ProductMatchBy
	CustomerMatchBy CustomerMatchBy

	AutoCreateSaleOrder bool
	SyncStatusToZid     bool
	AutoProcessWebhooks bool
	EnableProductSync   bool

	OrderImportSince   *time.Time
	ProductImportSince *time.Time

	Locks map[ImportKind]*ImportLock

	LastSyncAt *time.Time
}

// NewConnector creates a connector in the not_connected state with the
// original module's policy defaults.
func NewConnector(name, storeID string) (*Connector, error) {
	name = strings.TrimSpace(name)
	storeID = strings.TrimSpace(storeID)
	if name == "" {
		return nil, ErrNameRequired
	}
	if storeID == "" {
		return nil, ErrStoreIDRequired
	}

	return &Connector{
		BaseEntity:          shared.NewBaseEntity(),
		Name:                name,
		StoreID:             storeID,
		APIBaseURL:          DefaultAPIBaseURL,
		AuthStatus:          AuthNotConnected,
		MatchPriority:       MatchMappingFirst,
		ProductMatchBy:      MatchBySKU,
		CustomerMatchBy:     CustomerByEmail,
		AutoCreateSaleOrder: true,
		SyncStatusToZid:     true,
		AutoProcessWebhooks: true,
		EnableProductSync:   true,
		Locks:               make(map[ImportKind]*ImportLock),
	}, nil
}

// RequireConnected returns ErrNotConnected unless credentials are live.
// Every outbound API call checks this before building a request.
func (c *Connector) RequireConnected() error {
	if c.AuthStatus != AuthConnected {
		return ErrNotConnected
	}
	return nil
}

// StoreProfile is the subset of store metadata captured on connect.
type StoreProfile struct {
	Name     string
	URL      string
	Email    string
	Currency string
}

// MarkConnected records fresh credentials and the remote store profile.
func (c *Connector) MarkConnected(accessToken, managerToken string, profile StoreProfile) error {
	if accessToken == "" {
		return ErrTokenRequired
	}
	c.AccessToken = accessToken
	c.ManagerToken = managerToken
	c.AuthStatus = AuthConnected
	c.StoreName = profile.Name
	c.StoreURL = profile.URL
	c.StoreEmail = profile.Email
	c.StoreCurrency = profile.Currency
	c.UpdatedAt = time.Now()
	return nil
}

// MarkAuthFailure flags the link as broken. expired distinguishes a
// token the remote reported as stale from a generic auth failure.
func (c *Connector) MarkAuthFailure(expired bool) {
	if expired {
		c.AuthStatus = AuthExpired
	} else {
		c.AuthStatus = AuthError
	}
	c.UpdatedAt = time.Now()
}

// Disconnect clears credentials and returns the link to not_connected.
func (c *Connector) Disconnect() {
	c.AccessToken = ""
	c.ManagerToken = ""
	c.AuthStatus = AuthNotConnected
	c.UpdatedAt = time.Now()
}

// AcquireLock claims the import lock for the given kind.
// Returns ErrImportInProgress if another import of that kind holds it.
func (c *Connector) AcquireLock(kind ImportKind, now time.Time) error {
	if c.Locks == nil {
		c.Locks = make(map[ImportKind]*ImportLock)
	}
	lock, ok := c.Locks[kind]
	if ok && lock.InProgress {
		return ErrImportInProgress
	}
	c.Locks[kind] = &ImportLock{InProgress: true, StartedAt: &now}
	return nil
}

// ReleaseLock frees the import lock for the given kind.
func (c *Connector) ReleaseLock(kind ImportKind) {
	if lock, ok := c.Locks[kind]; ok {
		lock.InProgress = false
		lock.StartedAt = nil
	}
}

// ResetExpiredLocks frees locks whose holder exceeded timeout, which
// happens when an import crashed without releasing. Returns the kinds
// that were reset.
func (c *Connector) ResetExpiredLocks(now time.Time, timeout time.Duration) []ImportKind {
	var reset []ImportKind
	for kind, lock := range c.Locks {
		if !lock.InProgress || lock.StartedAt == nil {
			continue
		}
		if now.Sub(*lock.StartedAt) > timeout {
			lock.InProgress = false
			lock.StartedAt = nil
			reset = append(reset, kind)
		}
	}
	return reset
}

// TestEndpoint returns the endpoint used to validate credentials.
func (c *Connector) TestEndpoint() string {
	return "managers/account/profile"
}
