package model

import "testing"

func TestRoundToIncrementHalfToEven(t *testing.T) {
	cases := []struct {
		value     float64
		increment float64
		want      float64
	}{
		{108.0, 0.5, 108.0},
		{108.2, 0.5, 108.0},
		{108.3, 0.5, 108.5},
		{2.25, 0.5, 2.0},  // 4.5 increments rounds to even 4
		{2.75, 0.5, 3.0},  // 5.5 increments rounds to even 6
		{111.3333333, 0.5, 111.5},
		{100.0, 0, 100.0},
	}
	for _, c := range cases {
		got := RoundToIncrement(c.value, c.increment)
		if got != c.want {
			t.Fatalf("RoundToIncrement(%v, %v) = %v, want %v", c.value, c.increment, got, c.want)
		}
	}
}

func TestScaledString(t *testing.T) {
	cases := []struct {
		value int64
		scale int
		want  string
	}{
		{1030, 1, "103.0"},
		{-1030, 1, "-103.0"},
		{5, 2, "0.05"},
		{1, 0, "1"},
		{12345, 3, "12.345"},
	}
	for _, c := range cases {
		if got := Price(c.value).Format(c.scale); got != c.want {
			t.Fatalf("Format(%d, %d) = %q, want %q", c.value, c.scale, got, c.want)
		}
	}
}

func TestInstrumentMakePrice(t *testing.T) {
	inst := Instrument{ID: "XBT/USD", PriceScale: 1, SizeScale: 0, TickSize: 5}
	if got := inst.MakePrice(103.0); got != 1030 {
		t.Fatalf("MakePrice = %d, want 1030", got)
	}
	if got := inst.MakePrice(103.0) + 2*inst.TickSize; got != 1040 {
		t.Fatalf("two ticks above = %d, want 1040", got)
	}
	if got := inst.PriceFloat(1080); got != 108.0 {
		t.Fatalf("PriceFloat = %v, want 108.0", got)
	}
	if got := inst.MakeQty(1.0); got != 1 {
		t.Fatalf("MakeQty = %d, want 1", got)
	}
	if got := inst.TickFloat(); got != 0.5 {
		t.Fatalf("TickFloat = %v, want 0.5", got)
	}
}

func TestNewClientOrderIDUnique(t *testing.T) {
	a := NewClientOrderID("S-001")
	b := NewClientOrderID("S-001")
	if a == b {
		t.Fatalf("client order ids must be unique, got %s twice", a)
	}
}
