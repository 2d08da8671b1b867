package store

import (
	"trailstop/internal/model"
	"trailstop/pkg/exception"

	"github.com/yanun0323/errors"
)

var _ Store = (*Unimplemented)(nil)

// Unimplemented is the base every concrete store embeds. Each operation fails
// with ErrStoreNotImplemented so a backend that misses an override fails
// loudly the first time the operation is invoked.
type Unimplemented struct{}

func (Unimplemented) LoadAccounts(model.TraderID) ([]model.Account, error) {
	return nil, notImplemented("LoadAccounts")
}

func (Unimplemented) LoadOrders(model.TraderID) ([]model.Order, error) {
	return nil, notImplemented("LoadOrders")
}

func (Unimplemented) LoadPositions(model.TraderID) ([]model.Position, error) {
	return nil, notImplemented("LoadPositions")
}

func (Unimplemented) LoadAccount(model.TraderID, model.AccountID) (model.Account, error) {
	return model.Account{}, notImplemented("LoadAccount")
}

func (Unimplemented) LoadOrder(model.TraderID, model.ClientOrderID) (model.Order, error) {
	return model.Order{}, notImplemented("LoadOrder")
}

func (Unimplemented) LoadPosition(model.TraderID, model.InstrumentID) (model.Position, error) {
	return model.Position{}, notImplemented("LoadPosition")
}

func (Unimplemented) LoadStrategy(model.TraderID, model.StrategyID) (map[string]string, error) {
	return nil, notImplemented("LoadStrategy")
}

func (Unimplemented) AddAccount(model.TraderID, model.Account) error {
	return notImplemented("AddAccount")
}

func (Unimplemented) AddOrder(model.TraderID, model.Order) error {
	return notImplemented("AddOrder")
}

func (Unimplemented) AddPosition(model.TraderID, model.Position) error {
	return notImplemented("AddPosition")
}

func (Unimplemented) UpdateAccount(model.TraderID, model.Account) error {
	return notImplemented("UpdateAccount")
}

func (Unimplemented) UpdateOrder(model.TraderID, model.Order) error {
	return notImplemented("UpdateOrder")
}

func (Unimplemented) UpdatePosition(model.TraderID, model.Position) error {
	return notImplemented("UpdatePosition")
}

func (Unimplemented) UpdateStrategy(model.TraderID, model.StrategyID, map[string]string) error {
	return notImplemented("UpdateStrategy")
}

func (Unimplemented) DeleteStrategy(model.TraderID, model.StrategyID) error {
	return notImplemented("DeleteStrategy")
}

func (Unimplemented) Flush() error {
	return notImplemented("Flush")
}

func notImplemented(op string) error {
	return errors.Wrap(exception.ErrStoreNotImplemented, op)
}
