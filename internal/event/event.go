// Package event defines the closed set of inputs a controller consumes.
// Events are delivered one at a time; each handler runs to completion before
// the next event is dispatched.
package event

import (
	"trailstop/internal/model"
	"trailstop/internal/model/enum"
)

// Event is one input to a controller.
type Event interface {
	isEvent()
}

// BarReceived delivers a completed bar.
type BarReceived struct {
	Bar model.Bar
}

// OrderAccepted is the venue acknowledgment for a submitted order.
type OrderAccepted struct {
	ClientOrderID model.ClientOrderID
	TsNano        int64
}

// OrderFilled reports an execution against an order.
type OrderFilled struct {
	ClientOrderID model.ClientOrderID
	Side          enum.OrderSide
	Price         model.Price
	Quantity      model.Quantity
	TsNano        int64
}

// OrderCanceled confirms a cancel request.
type OrderCanceled struct {
	ClientOrderID model.ClientOrderID
	TsNano        int64
}

// Start begins processing: resolve the instrument and register indicators.
type Start struct{}

// Stop cancels all live orders, flattens and disposes the controller.
type Stop struct{}

// Reset returns a stopped controller to its pre-start state.
type Reset struct{}

func (BarReceived) isEvent()   {}
func (OrderAccepted) isEvent() {}
func (OrderFilled) isEvent()   {}
func (OrderCanceled) isEvent() {}
func (Start) isEvent()         {}
func (Stop) isEvent()          {}
func (Reset) isEvent()         {}
