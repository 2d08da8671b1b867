package model

import (
	"strings"

	"github.com/google/uuid"
)

type (
	// TraderID identifies the owning trader for all persisted records.
	TraderID string

	// StrategyID identifies one strategy instance under a trader.
	StrategyID string

	// InstrumentID identifies a tradable instrument.
	InstrumentID string

	// ClientOrderID is assigned at order creation and never reused.
	ClientOrderID string

	// AccountID identifies an account under a trader.
	AccountID string
)

// NewClientOrderID builds a unique order identity tagged with the strategy.
func NewClientOrderID(tag string) ClientOrderID {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	if tag == "" {
		return ClientOrderID(raw)
	}
	return ClientOrderID(tag + "-" + raw)
}
