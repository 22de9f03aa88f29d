package mirror

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/erp/zidsync/internal/domain/shared"
)

// Attribute mirrors one remote product attribute value, e.g. the pair
// ("Color", "Red"). Both halves are bilingual.
type Attribute struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	Name  LocalizedText
	Value LocalizedText

	LastImportAt time.Time
}

// NewAttribute creates an attribute mirror
func NewAttribute(connectorID uuid.UUID, remoteID string) (*Attribute, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &Attribute{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		LastImportAt: time.Now(),
	}, nil
}

// DisplayName renders "name: value" with bilingual fallback on both halves.
func (a *Attribute) DisplayName() string {
	name := a.Name.Resolve(a.RemoteID)
	value := a.Value.Resolve("")
	if value == "" {
		return name
	}
	return name + ": " + value
}

// Overwrite replaces descriptive fields from a fresh payload
func (a *Attribute) Overwrite(src *Attribute) {
	a.Name = src.Name
	a.Value = src.Value
	a.LastImportAt = time.Now()
	a.UpdatedAt = time.Now()
}

// Location mirrors one remote inventory location of the store.
type Location struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	Name      LocalizedText
	City      string
	IsDefault bool

	Active       bool
	LastImportAt time.Time
}

// NewLocation creates a location mirror
func NewLocation(connectorID uuid.UUID, remoteID string) (*Location, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &Location{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		Active:       true,
		LastImportAt: time.Now(),
	}, nil
}

// Overwrite replaces descriptive fields from a fresh payload
func (l *Location) Overwrite(src *Location) {
	l.Name = src.Name
	l.City = src.City
	l.IsDefault = src.IsDefault
	l.Active = true
	l.LastImportAt = time.Now()
	l.UpdatedAt = time.Now()
}
