package ordersync

import "errors"

var (
	ErrOrderNotFound       = errors.New("ordersync: remote order not found")
	ErrRemoteIDRequired    = errors.New("ordersync: remote id is required")
	ErrDuplicateOrder      = errors.New("ordersync: duplicate remote order for connector")
	ErrReverseNotFound     = errors.New("ordersync: reverse order not found")
	ErrInvalidTransition   = errors.New("ordersync: invalid reverse order transition")
	ErrWaybillExists       = errors.New("ordersync: waybill already created")
	ErrWaybillNotRequested = errors.New("ordersync: reverse order not yet sent")
	ErrNotDelivered        = errors.New("ordersync: order is not delivered")
	ErrItemsRequired       = errors.New("ordersync: reverse order needs at least one item")
)
