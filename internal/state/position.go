// Package state holds in-memory position state derived from fills.
package state

import (
	"sort"

	"trailstop/internal/model"
	"trailstop/internal/model/enum"
)

// Positions tracks net exposure per instrument. It is the single source of
// truth for flat checks; only fills (or an explicit snapshot load) mutate it.
type Positions struct {
	net map[model.InstrumentID]int64
}

// NewPositions creates an empty position book.
func NewPositions() *Positions {
	return &Positions{net: make(map[model.InstrumentID]int64)}
}

// ApplyFill updates the net quantity and returns the new position.
func (p *Positions) ApplyFill(instrumentID model.InstrumentID, side enum.OrderSide, qty model.Quantity) model.Position {
	switch side {
	case enum.OrderSideBuy:
		p.net[instrumentID] += int64(qty)
	case enum.OrderSideSell:
		p.net[instrumentID] -= int64(qty)
	}
	return p.position(instrumentID)
}

// Get returns the current position for an instrument.
func (p *Positions) Get(instrumentID model.InstrumentID) (model.Position, bool) {
	_, ok := p.net[instrumentID]
	return p.position(instrumentID), ok
}

// IsFlat reports whether the instrument has no exposure.
func (p *Positions) IsFlat(instrumentID model.InstrumentID) bool {
	return p.net[instrumentID] == 0
}

// Flatten zeroes the instrument's exposure and returns the flat position.
func (p *Positions) Flatten(instrumentID model.InstrumentID) model.Position {
	p.net[instrumentID] = 0
	return p.position(instrumentID)
}

// Snapshot returns all positions ordered by instrument.
func (p *Positions) Snapshot() []model.Position {
	out := make([]model.Position, 0, len(p.net))
	for id := range p.net {
		out = append(out, p.position(id))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InstrumentID < out[j].InstrumentID
	})
	return out
}

// Load replaces the book with recovered positions.
func (p *Positions) Load(positions []model.Position) {
	p.net = make(map[model.InstrumentID]int64, len(positions))
	for _, pos := range positions {
		p.net[pos.InstrumentID] = pos.Signed()
	}
}

func (p *Positions) position(instrumentID model.InstrumentID) model.Position {
	net := p.net[instrumentID]
	pos := model.Position{InstrumentID: instrumentID, Side: enum.PositionSideFlat}
	switch {
	case net > 0:
		pos.Side = enum.PositionSideLong
		pos.Quantity = model.Quantity(net)
	case net < 0:
		pos.Side = enum.PositionSideShort
		pos.Quantity = model.Quantity(-net)
	}
	return pos
}
