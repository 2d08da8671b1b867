// Package mdg creates synthetic market data bars for simulation runs.
package mdg

import (
	"fmt"
	"math"
	"time"

	"trailstop/internal/model"
)

// Config shapes the generated price path: a linear drift plus a sine swing,
// fully deterministic for a given configuration.
type Config struct {
	BarType   model.BarType
	BasePrice float64
	Drift     float64
	Amplitude float64
	Cycle     int     // bars per full swing
	Range     float64 // wick size beyond the bar body
	Volume    float64
}

// Generator creates synthetic bars in sequence.
type Generator struct {
	cfg       Config
	index     int
	prevClose float64
}

// NewGenerator validates the config and creates a generator.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.BarType == "" {
		return nil, fmt.Errorf("generator requires a bar type")
	}
	if cfg.BasePrice <= 0 {
		return nil, fmt.Errorf("generator requires a positive base price")
	}
	if cfg.Cycle <= 0 {
		cfg.Cycle = 20
	}
	if cfg.Range < 0 {
		cfg.Range = 0
	}
	if cfg.Volume <= 0 {
		cfg.Volume = 1
	}
	return &Generator{cfg: cfg}, nil
}

// Next creates the next bar in sequence. The open is the previous close, so
// consecutive bars form a continuous path.
func (g *Generator) Next(now time.Time) model.Bar {
	i := g.index
	g.index++

	close := g.cfg.BasePrice +
		g.cfg.Drift*float64(i) +
		g.cfg.Amplitude*math.Sin(2*math.Pi*float64(i)/float64(g.cfg.Cycle))
	open := g.prevClose
	if i == 0 {
		open = close
	}
	g.prevClose = close

	return model.Bar{
		Type:        g.cfg.BarType,
		Open:        open,
		High:        math.Max(open, close) + g.cfg.Range,
		Low:         math.Min(open, close) - g.cfg.Range,
		Close:       close,
		Volume:      g.cfg.Volume,
		EventTsNano: now.UnixNano(),
		RecvTsNano:  now.UnixNano(),
	}
}
