package model

import "trailstop/internal/model/enum"

// Position is per-instrument net exposure, derived from fills only.
type Position struct {
	InstrumentID InstrumentID
	Side         enum.PositionSide
	Quantity     Quantity
}

// IsFlat reports whether there is no exposure.
func (p Position) IsFlat() bool {
	return p.Side == enum.PositionSideFlat || p.Quantity == 0
}

// Signed returns the net quantity, negative for shorts.
func (p Position) Signed() int64 {
	if p.Side == enum.PositionSideShort {
		return -int64(p.Quantity)
	}
	return int64(p.Quantity)
}
