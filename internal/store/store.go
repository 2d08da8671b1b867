// Package store defines the execution persistence contract: the durable
// record of accounts, orders, positions and strategy checkpoints a trading
// runtime recovers from after a restart. In-memory controller state stays
// authoritative for decisions; the store is a recovery path only.
package store

import "trailstop/internal/model"

// Store is the execution store contract. Every operation is keyed by the
// owning trader. Singular loads answer exception.ErrStoreNotFound when the
// record does not exist. Writes replace whole snapshots; there is no partial
// update.
type Store interface {
	LoadAccounts(traderID model.TraderID) ([]model.Account, error)
	LoadOrders(traderID model.TraderID) ([]model.Order, error)
	LoadPositions(traderID model.TraderID) ([]model.Position, error)

	LoadAccount(traderID model.TraderID, accountID model.AccountID) (model.Account, error)
	LoadOrder(traderID model.TraderID, clientOrderID model.ClientOrderID) (model.Order, error)
	LoadPosition(traderID model.TraderID, instrumentID model.InstrumentID) (model.Position, error)
	LoadStrategy(traderID model.TraderID, strategyID model.StrategyID) (map[string]string, error)

	AddAccount(traderID model.TraderID, account model.Account) error
	AddOrder(traderID model.TraderID, order model.Order) error
	AddPosition(traderID model.TraderID, position model.Position) error

	UpdateAccount(traderID model.TraderID, account model.Account) error
	UpdateOrder(traderID model.TraderID, order model.Order) error
	UpdatePosition(traderID model.TraderID, position model.Position) error
	UpdateStrategy(traderID model.TraderID, strategyID model.StrategyID, state map[string]string) error

	DeleteStrategy(traderID model.TraderID, strategyID model.StrategyID) error

	// Flush drops transient caches and buffered writes without touching
	// durable state.
	Flush() error
}
