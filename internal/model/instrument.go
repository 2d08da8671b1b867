package model

import "math"

// Instrument is the reference data the controller needs: identity, decimal
// scales and the minimum price increment.
type Instrument struct {
	ID         InstrumentID
	PriceScale int
	SizeScale  int
	TickSize   Price
}

// MakePrice converts a raw value into a scaled price, round-half-to-even.
func (i Instrument) MakePrice(v float64) Price {
	return Price(math.RoundToEven(v * pow10(i.PriceScale)))
}

// MakeQty converts a raw value into a scaled quantity, round-half-to-even.
func (i Instrument) MakeQty(v float64) Quantity {
	return Quantity(math.RoundToEven(v * pow10(i.SizeScale)))
}

// PriceFloat converts a scaled price back to a raw value.
func (i Instrument) PriceFloat(p Price) float64 {
	return float64(p) / pow10(i.PriceScale)
}

// QtyFloat converts a scaled quantity back to a raw value.
func (i Instrument) QtyFloat(q Quantity) float64 {
	return float64(q) / pow10(i.SizeScale)
}

// TickFloat returns the price increment as a raw value.
func (i Instrument) TickFloat() float64 {
	return i.PriceFloat(i.TickSize)
}

// FormatPrice renders a scaled price with the instrument's scale.
func (i Instrument) FormatPrice(p Price) string {
	return p.Format(i.PriceScale)
}
