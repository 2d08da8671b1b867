// Package obs collects lightweight counters for the controller's event flow.
package obs

import "sync/atomic"

// Metrics counts controller activity.
type Metrics struct {
	bars      uint64
	submits   uint64
	cancels   uint64
	fills     uint64
	staleAcks uint64
	flattens  uint64
}

// Snapshot is a point-in-time view of the counters.
type Snapshot struct {
	Bars      uint64
	Submits   uint64
	Cancels   uint64
	Fills     uint64
	StaleAcks uint64
	Flattens  uint64
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) AddBar()      { atomic.AddUint64(&m.bars, 1) }
func (m *Metrics) AddSubmit()   { atomic.AddUint64(&m.submits, 1) }
func (m *Metrics) AddCancel()   { atomic.AddUint64(&m.cancels, 1) }
func (m *Metrics) AddFill()     { atomic.AddUint64(&m.fills, 1) }
func (m *Metrics) AddStaleAck() { atomic.AddUint64(&m.staleAcks, 1) }
func (m *Metrics) AddFlatten()  { atomic.AddUint64(&m.flattens, 1) }

// Snapshot captures the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Bars:      atomic.LoadUint64(&m.bars),
		Submits:   atomic.LoadUint64(&m.submits),
		Cancels:   atomic.LoadUint64(&m.cancels),
		Fills:     atomic.LoadUint64(&m.fills),
		StaleAcks: atomic.LoadUint64(&m.staleAcks),
		Flattens:  atomic.LoadUint64(&m.flattens),
	}
}
