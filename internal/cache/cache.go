// Package cache is the read-side lookup the controller depends on:
// instrument reference data and recent bars.
package cache

import "trailstop/internal/model"

// Cache holds instruments and the latest bar per bar type.
type Cache struct {
	instruments map[model.InstrumentID]model.Instrument
	lastBars    map[model.BarType]model.Bar
	barCounts   map[model.BarType]int
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		instruments: make(map[model.InstrumentID]model.Instrument),
		lastBars:    make(map[model.BarType]model.Bar),
		barCounts:   make(map[model.BarType]int),
	}
}

// AddInstrument registers reference data.
func (c *Cache) AddInstrument(inst model.Instrument) {
	c.instruments[inst.ID] = inst
}

// Instrument looks up reference data by id.
func (c *Cache) Instrument(id model.InstrumentID) (model.Instrument, bool) {
	inst, ok := c.instruments[id]
	return inst, ok
}

// AddBar records a bar as the latest of its type.
func (c *Cache) AddBar(bar model.Bar) {
	c.lastBars[bar.Type] = bar
	c.barCounts[bar.Type]++
}

// Bar returns the latest bar of the given type.
func (c *Cache) Bar(barType model.BarType) (model.Bar, bool) {
	bar, ok := c.lastBars[barType]
	return bar, ok
}

// BarCount returns how many bars of the given type were received.
func (c *Cache) BarCount(barType model.BarType) int {
	return c.barCounts[barType]
}
