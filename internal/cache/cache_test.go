package cache

import (
	"testing"

	"trailstop/internal/model"
)

func TestInstrumentLookup(t *testing.T) {
	c := New()
	if _, ok := c.Instrument("XBT/USD"); ok {
		t.Fatal("empty cache must miss")
	}
	c.AddInstrument(model.Instrument{ID: "XBT/USD", PriceScale: 1, TickSize: 5})
	inst, ok := c.Instrument("XBT/USD")
	if !ok || inst.TickSize != 5 {
		t.Fatalf("lookup = %+v ok=%v", inst, ok)
	}
}

func TestLastBarAndCount(t *testing.T) {
	c := New()
	bt := model.BarType("XBT/USD-1-MINUTE-LAST")
	if c.BarCount(bt) != 0 {
		t.Fatal("fresh cache bar count must be 0")
	}
	c.AddBar(model.Bar{Type: bt, Close: 100})
	c.AddBar(model.Bar{Type: bt, Close: 101})
	bar, ok := c.Bar(bt)
	if !ok || bar.Close != 101 {
		t.Fatalf("last bar = %+v ok=%v", bar, ok)
	}
	if c.BarCount(bt) != 2 {
		t.Fatalf("bar count = %d, want 2", c.BarCount(bt))
	}
	if _, ok := c.Bar("ETH/USD-1-MINUTE-LAST"); ok {
		t.Fatal("unknown bar type must miss")
	}
}
