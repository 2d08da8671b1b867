package model

// Account is the persisted account snapshot for a trader.
type Account struct {
	ID            AccountID
	Currency      string
	Balance       float64
	UpdatedTsNano int64
}
