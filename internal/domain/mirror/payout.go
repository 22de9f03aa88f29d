package mirror

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erp/zidsync/internal/domain/shared"
)

// PayoutLineType classifies one settlement line.
type PayoutLineType string

const (
	PayoutLineOrder      PayoutLineType = "order"
	PayoutLineRefund     PayoutLineType = "refund"
	PayoutLineFee        PayoutLineType = "fee"
	PayoutLineAdjustment PayoutLineType = "adjustment"
)

// Payout mirrors one settlement statement from the platform, with its
// breakdown lines.
type Payout struct {
	shared.BaseEntity

	ConnectorID uuid.UUID
	RemoteID    string

	Reference      string
	SettlementDate *time.Time
	GrossAmount    decimal.Decimal
	FeeAmount      decimal.Decimal
	NetAmount      decimal.Decimal
	Currency       string
	Status         string

	Lines []PayoutLine

	LastImportAt time.Time
}

// PayoutLine is one entry of a payout breakdown.
type PayoutLine struct {
	ID       uuid.UUID
	PayoutID uuid.UUID

	Type           PayoutLineType
	RemoteOrderRef string
	Description    string
	Amount         decimal.Decimal
}

// NewPayout creates a payout mirror
func NewPayout(connectorID uuid.UUID, remoteID string) (*Payout, error) {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil, ErrRemoteIDRequired
	}
	return &Payout{
		BaseEntity:   shared.NewBaseEntity(),
		ConnectorID:  connectorID,
		RemoteID:     remoteID,
		LastImportAt: time.Now(),
	}, nil
}

// Overwrite replaces descriptive fields and the full line set from a
// fresh payload.
func (p *Payout) Overwrite(src *Payout) {
	p.Reference = src.Reference
	p.SettlementDate = src.SettlementDate
	p.GrossAmount = src.GrossAmount
	p.FeeAmount = src.FeeAmount
	p.NetAmount = src.NetAmount
	p.Currency = src.Currency
	p.Status = src.Status
	p.Lines = src.Lines
	p.LastImportAt = time.Now()
	p.UpdatedAt = time.Now()
}

// AddLine appends one breakdown line
func (p *Payout) AddLine(lineType PayoutLineType, orderRef, description string, amount decimal.Decimal) {
	p.Lines = append(p.Lines, PayoutLine{
		ID:             uuid.New(),
		PayoutID:       p.ID,
		Type:           lineType,
		RemoteOrderRef: orderRef,
		Description:    description,
		Amount:         amount,
	})
}
