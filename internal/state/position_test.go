package state

import (
	"testing"

	"trailstop/internal/model/enum"
)

func TestApplyFillNetting(t *testing.T) {
	p := NewPositions()
	if !p.IsFlat("XBT/USD") {
		t.Fatal("fresh book must be flat")
	}

	pos := p.ApplyFill("XBT/USD", enum.OrderSideBuy, 2)
	if pos.Side != enum.PositionSideLong || pos.Quantity != 2 {
		t.Fatalf("after buy: %+v", pos)
	}

	pos = p.ApplyFill("XBT/USD", enum.OrderSideSell, 3)
	if pos.Side != enum.PositionSideShort || pos.Quantity != 1 {
		t.Fatalf("after cross: %+v", pos)
	}

	pos = p.ApplyFill("XBT/USD", enum.OrderSideBuy, 1)
	if !pos.IsFlat() || !p.IsFlat("XBT/USD") {
		t.Fatalf("after netting out: %+v", pos)
	}
}

func TestFlatten(t *testing.T) {
	p := NewPositions()
	p.ApplyFill("XBT/USD", enum.OrderSideBuy, 5)
	pos := p.Flatten("XBT/USD")
	if !pos.IsFlat() || !p.IsFlat("XBT/USD") {
		t.Fatalf("flatten left exposure: %+v", pos)
	}
}

func TestSnapshotAndLoadRoundTrip(t *testing.T) {
	p := NewPositions()
	p.ApplyFill("ETH/USD", enum.OrderSideSell, 3)
	p.ApplyFill("XBT/USD", enum.OrderSideBuy, 1)

	snap := p.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot len = %d, want 2", len(snap))
	}
	if snap[0].InstrumentID != "ETH/USD" || snap[0].Side != enum.PositionSideShort {
		t.Fatalf("snapshot[0] = %+v", snap[0])
	}

	restored := NewPositions()
	restored.Load(snap)
	pos, ok := restored.Get("ETH/USD")
	if !ok || pos.Side != enum.PositionSideShort || pos.Quantity != 3 {
		t.Fatalf("restored ETH/USD = %+v ok=%v", pos, ok)
	}
	if restored.IsFlat("XBT/USD") {
		t.Fatal("restored XBT/USD must not be flat")
	}
}

func TestGetUnknownInstrument(t *testing.T) {
	p := NewPositions()
	pos, ok := p.Get("XBT/USD")
	if ok {
		t.Fatal("unknown instrument must report ok=false")
	}
	if !pos.IsFlat() {
		t.Fatalf("unknown instrument position = %+v, want flat", pos)
	}
}
