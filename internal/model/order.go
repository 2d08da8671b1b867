package model

import "trailstop/internal/model/enum"

// Order is the controller's record of a single order. It is owned by the
// controller until a terminal status is observed; the record itself outlives
// the reference in the execution store.
type Order struct {
	ClientOrderID ClientOrderID
	InstrumentID  InstrumentID
	Side          enum.OrderSide
	Type          enum.OrderType
	Role          enum.OrderRole
	Status        enum.OrderStatus
	Price         Price
	Quantity      Quantity
	FilledQty     Quantity
	ReduceOnly    bool
	InitTsNano    int64
	UpdatedTsNano int64
}

// IsTerminal reports whether the order reached a final status.
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// LeavesQty returns the unfilled remainder.
func (o *Order) LeavesQty() Quantity {
	left := o.Quantity - o.FilledQty
	if left < 0 {
		return 0
	}
	return left
}
