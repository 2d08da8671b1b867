package store

import (
	"trailstop/internal/model"
	"trailstop/pkg/exception"
)

var _ Store = (*Bypass)(nil)

// Bypass persists nothing. Every write is accepted and discarded, every
// singular load answers not-found and every bulk load answers an empty
// collection, regardless of prior writes. It lets the controller run without
// a backing store where crash recovery is not required, e.g. pure simulation.
type Bypass struct {
	Unimplemented
}

// NewBypass creates a bypass store.
func NewBypass() *Bypass {
	return &Bypass{}
}

func (*Bypass) LoadAccounts(model.TraderID) ([]model.Account, error) {
	return []model.Account{}, nil
}

func (*Bypass) LoadOrders(model.TraderID) ([]model.Order, error) {
	return []model.Order{}, nil
}

func (*Bypass) LoadPositions(model.TraderID) ([]model.Position, error) {
	return []model.Position{}, nil
}

func (*Bypass) LoadAccount(model.TraderID, model.AccountID) (model.Account, error) {
	return model.Account{}, exception.ErrStoreNotFound
}

func (*Bypass) LoadOrder(model.TraderID, model.ClientOrderID) (model.Order, error) {
	return model.Order{}, exception.ErrStoreNotFound
}

func (*Bypass) LoadPosition(model.TraderID, model.InstrumentID) (model.Position, error) {
	return model.Position{}, exception.ErrStoreNotFound
}

func (*Bypass) LoadStrategy(model.TraderID, model.StrategyID) (map[string]string, error) {
	return map[string]string{}, nil
}

func (*Bypass) AddAccount(model.TraderID, model.Account) error { return nil }

func (*Bypass) AddOrder(model.TraderID, model.Order) error { return nil }

func (*Bypass) AddPosition(model.TraderID, model.Position) error { return nil }

func (*Bypass) UpdateAccount(model.TraderID, model.Account) error { return nil }

func (*Bypass) UpdateOrder(model.TraderID, model.Order) error { return nil }

func (*Bypass) UpdatePosition(model.TraderID, model.Position) error { return nil }

func (*Bypass) UpdateStrategy(model.TraderID, model.StrategyID, map[string]string) error {
	return nil
}

func (*Bypass) DeleteStrategy(model.TraderID, model.StrategyID) error { return nil }

func (*Bypass) Flush() error { return nil }
