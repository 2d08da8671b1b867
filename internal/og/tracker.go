// Package og tracks the controller's view of its own orders from
// submission through asynchronous acknowledgments.
package og

import (
	"errors"
	"time"

	"trailstop/internal/model"
	"trailstop/internal/model/enum"
)

var (
	ErrDuplicateOrder = errors.New("order already exists")
	ErrUnknownOrder   = errors.New("order not found")
)

// Tracker updates orders from submit/ack/fill/cancel events. Acknowledgments
// for identities no longer tracked as live report ok=false so callers can
// discard them; acknowledgment order is not assumed to match submission order.
type Tracker struct {
	orders map[model.ClientOrderID]*model.Order
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{orders: make(map[model.ClientOrderID]*model.Order)}
}

// Get returns the tracked order.
func (t *Tracker) Get(id model.ClientOrderID) (*model.Order, bool) {
	o, ok := t.orders[id]
	return o, ok
}

// Track registers a newly created order.
func (t *Tracker) Track(o *model.Order) error {
	if o == nil || o.ClientOrderID == "" {
		return ErrUnknownOrder
	}
	if _, ok := t.orders[o.ClientOrderID]; ok {
		return ErrDuplicateOrder
	}
	t.orders[o.ClientOrderID] = o
	return nil
}

// ApplyAccepted moves a live order to Accepted.
func (t *Tracker) ApplyAccepted(id model.ClientOrderID) (*model.Order, bool) {
	o, ok := t.live(id)
	if !ok {
		return nil, false
	}
	o.Status = enum.OrderStatusAccepted
	o.UpdatedTsNano = nowNano()
	return o, true
}

// ApplyFill records an execution. The order turns Filled once the full
// quantity is done.
func (t *Tracker) ApplyFill(id model.ClientOrderID, qty model.Quantity) (*model.Order, bool) {
	o, ok := t.live(id)
	if !ok || qty <= 0 {
		return nil, false
	}
	o.FilledQty += qty
	if o.FilledQty >= o.Quantity {
		o.FilledQty = o.Quantity
		o.Status = enum.OrderStatusFilled
	}
	o.UpdatedTsNano = nowNano()
	return o, true
}

// ApplyCanceled moves a live order to Canceled.
func (t *Tracker) ApplyCanceled(id model.ClientOrderID) (*model.Order, bool) {
	o, ok := t.live(id)
	if !ok {
		return nil, false
	}
	o.Status = enum.OrderStatusCanceled
	o.UpdatedTsNano = nowNano()
	return o, true
}

// ApplyRejected moves a live order to Rejected.
func (t *Tracker) ApplyRejected(id model.ClientOrderID) (*model.Order, bool) {
	o, ok := t.live(id)
	if !ok {
		return nil, false
	}
	o.Status = enum.OrderStatusRejected
	o.UpdatedTsNano = nowNano()
	return o, true
}

// Release drops the reference to a terminal order.
func (t *Tracker) Release(id model.ClientOrderID) {
	if o, ok := t.orders[id]; ok && o.IsTerminal() {
		delete(t.orders, id)
	}
}

// Live returns all tracked non-terminal orders.
func (t *Tracker) Live() []*model.Order {
	out := make([]*model.Order, 0, len(t.orders))
	for _, o := range t.orders {
		if !o.IsTerminal() {
			out = append(out, o)
		}
	}
	return out
}

// LiveCount returns the number of non-terminal orders.
func (t *Tracker) LiveCount() int {
	n := 0
	for _, o := range t.orders {
		if !o.IsTerminal() {
			n++
		}
	}
	return n
}

func (t *Tracker) live(id model.ClientOrderID) (*model.Order, bool) {
	o, ok := t.orders[id]
	if !ok || o.IsTerminal() {
		return nil, false
	}
	return o, true
}

func nowNano() int64 {
	return time.Now().UTC().UnixNano()
}
