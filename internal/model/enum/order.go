package enum

// OrderSide describes order direction.
type OrderSide uint16

const (
	OrderSideUnknown OrderSide = iota
	OrderSideBuy
	OrderSideSell
)

// Opposite returns the other tradable side.
func (s OrderSide) Opposite() OrderSide {
	switch s {
	case OrderSideBuy:
		return OrderSideSell
	case OrderSideSell:
		return OrderSideBuy
	default:
		return OrderSideUnknown
	}
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// OrderType describes how an order executes.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeMarket
	OrderTypeStopMarket
)

func (t OrderType) String() string {
	switch t {
	case OrderTypeMarket:
		return "MARKET"
	case OrderTypeStopMarket:
		return "STOP_MARKET"
	default:
		return "UNKNOWN"
	}
}

// OrderRole describes why the controller created an order.
type OrderRole uint16

const (
	OrderRoleUnknown OrderRole = iota
	OrderRoleEntry
	OrderRoleProtectiveStop
	OrderRoleClose
)

func (r OrderRole) String() string {
	switch r {
	case OrderRoleEntry:
		return "ENTRY"
	case OrderRoleProtectiveStop:
		return "PROTECTIVE_STOP"
	case OrderRoleClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// OrderStatus tracks the lifecycle of an order.
type OrderStatus uint16

const (
	OrderStatusUnknown OrderStatus = iota
	OrderStatusCreated
	OrderStatusSubmitted
	OrderStatusAccepted
	OrderStatusFilled
	OrderStatusCanceled
	OrderStatusRejected
)

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusFilled, OrderStatusCanceled, OrderStatusRejected:
		return true
	default:
		return false
	}
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusCreated:
		return "CREATED"
	case OrderStatusSubmitted:
		return "SUBMITTED"
	case OrderStatusAccepted:
		return "ACCEPTED"
	case OrderStatusFilled:
		return "FILLED"
	case OrderStatusCanceled:
		return "CANCELED"
	case OrderStatusRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}
