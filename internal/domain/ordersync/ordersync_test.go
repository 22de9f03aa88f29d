package ordersync

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusNew, StatusPreparing, true},
		{StatusPreparing, StatusReady, true},
		{StatusReady, StatusInDelivery, true},
		{StatusInDelivery, StatusDelivered, true},
		{StatusNew, StatusDelivered, true}, // skipping forward is fine
		{StatusDelivered, StatusPreparing, false},
		{StatusReady, StatusNew, false},
		{StatusPreparing, StatusPreparing, true},
		{StatusInDelivery, StatusCancelled, true},
		{StatusNew, StatusCancelled, true},
		{StatusDelivered, StatusReverseInProgress, true},
		{StatusPreparing, StatusReverseInProgress, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestOutboundStatusMap_Resolve(t *testing.T) {
	m := DefaultOutboundStatusMap()

	s, ok := m.Resolve(EventOrderConfirmed)
	require.True(t, ok)
	assert.Equal(t, StatusPreparing, s)

	s, ok = m.Resolve(EventDeliveryCompleted)
	require.True(t, ok)
	assert.Equal(t, StatusReady, s)

	// Unmapped events are silently ignored, not errors.
	_, ok = m.Resolve(LocalEvent("order_archived"))
	assert.False(t, ok)
}

func TestRemoteOrder_Overwrite(t *testing.T) {
	o, err := NewRemoteOrder(uuid.New(), "987")
	require.NoError(t, err)
	o.LinkLocalOrder("SO-0042")

	fresh, err := NewRemoteOrder(o.ConnectorID, "987")
	require.NoError(t, err)
	fresh.Status = StatusPreparing
	fresh.Total = decimal.NewFromInt(150)

	o.Overwrite(fresh)

	assert.Equal(t, StatusPreparing, o.Status)
	assert.True(t, o.Total.Equal(decimal.NewFromInt(150)))
	// The local link survives a refetch.
	assert.Equal(t, "SO-0042", o.LocalOrderRef)
	assert.True(t, o.IsConverted())
}

func TestNewReverseOrder_RequiresDelivery(t *testing.T) {
	order, err := NewRemoteOrder(uuid.New(), "987")
	require.NoError(t, err)

	_, err = NewReverseOrder(order.ConnectorID, order, "r1", "damaged")
	assert.ErrorIs(t, err, ErrNotDelivered)

	order.Status = StatusDelivered
	r, err := NewReverseOrder(order.ConnectorID, order, "r1", "damaged")
	require.NoError(t, err)
	assert.Equal(t, ReverseDraft, r.Status)
}

func TestReverseOrder_Lifecycle(t *testing.T) {
	now := time.Now()
	r := newTestReverse(t)

	// Sending without items is rejected.
	assert.ErrorIs(t, r.MarkSent("rev-1", now), ErrItemsRequired)

	r.AddItem("9001", "Widget", 1, decimal.NewFromInt(50))
	require.NoError(t, r.MarkSent("rev-1", now))
	assert.Equal(t, ReverseSent, r.Status)

	// A second submit is rejected.
	assert.ErrorIs(t, r.MarkSent("rev-2", now), ErrInvalidTransition)

	wb := Waybill{RemoteID: "wb-1", TrackingNumber: "TRK123", Courier: "smsa"}
	require.NoError(t, r.AttachWaybill(wb, now))
	assert.Equal(t, ReverseWaybillCreated, r.Status)

	// The platform issues exactly one waybill per return.
	assert.ErrorIs(t, r.AttachWaybill(wb, now), ErrWaybillExists)

	require.NoError(t, r.Complete(now))
	assert.Equal(t, ReverseCompleted, r.Status)
	assert.ErrorIs(t, r.Cancel(now), ErrInvalidTransition)
}

func TestReverseOrder_WaybillBeforeSent(t *testing.T) {
	r := newTestReverse(t)
	err := r.AttachWaybill(Waybill{RemoteID: "wb-1"}, time.Now())
	assert.ErrorIs(t, err, ErrWaybillNotRequested)
}

func TestReverseOrder_CancelFromDraft(t *testing.T) {
	r := newTestReverse(t)
	require.NoError(t, r.Cancel(time.Now()))
	assert.Equal(t, ReverseCancelled, r.Status)
	assert.ErrorIs(t, r.MarkSent("rev-1", time.Now()), ErrInvalidTransition)
}

func newTestReverse(t *testing.T) *ReverseOrder {
	t.Helper()
	order, err := NewRemoteOrder(uuid.New(), "987")
	require.NoError(t, err)
	order.Status = StatusDelivered
	r, err := NewReverseOrder(order.ConnectorID, order, "r1", "damaged")
	require.NoError(t, err)
	return r
}
