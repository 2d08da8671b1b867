package mdg

import (
	"testing"
	"time"

	"trailstop/internal/model"
)

func TestGeneratorRequiresConfig(t *testing.T) {
	if _, err := NewGenerator(Config{BasePrice: 100}); err == nil {
		t.Fatalf("expected error for missing bar type")
	}
	if _, err := NewGenerator(Config{BarType: "XBT/USD-1-MINUTE-LAST"}); err == nil {
		t.Fatalf("expected error for missing base price")
	}
}

func TestGeneratorBarsAreContinuous(t *testing.T) {
	gen, err := NewGenerator(Config{
		BarType:   "XBT/USD-1-MINUTE-LAST",
		BasePrice: 100,
		Drift:     0.5,
		Amplitude: 2,
		Cycle:     8,
		Range:     0.25,
	})
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	now := time.Unix(1700000000, 0)
	var prev model.Bar
	for i := 0; i < 32; i++ {
		bar := gen.Next(now)
		if i == 0 {
			if bar.Open != bar.Close {
				t.Fatalf("first bar open %v != close %v", bar.Open, bar.Close)
			}
		} else if bar.Open != prev.Close {
			t.Fatalf("bar %d open %v != previous close %v", i, bar.Open, prev.Close)
		}
		if bar.High < bar.Open || bar.High < bar.Close {
			t.Fatalf("bar %d high %v below body", i, bar.High)
		}
		if bar.Low > bar.Open || bar.Low > bar.Close {
			t.Fatalf("bar %d low %v above body", i, bar.Low)
		}
		prev = bar
	}
}

func TestGeneratorIsDeterministic(t *testing.T) {
	cfg := Config{
		BarType:   "XBT/USD-1-MINUTE-LAST",
		BasePrice: 100,
		Drift:     0.1,
		Amplitude: 1.5,
		Cycle:     12,
		Range:     0.5,
	}
	a, _ := NewGenerator(cfg)
	b, _ := NewGenerator(cfg)

	now := time.Unix(1700000000, 0)
	for i := 0; i < 24; i++ {
		if ba, bb := a.Next(now), b.Next(now); ba != bb {
			t.Fatalf("bar %d diverged: %+v vs %+v", i, ba, bb)
		}
	}
}

func TestGeneratorDriftRaisesCloses(t *testing.T) {
	gen, _ := NewGenerator(Config{
		BarType:   "XBT/USD-1-MINUTE-LAST",
		BasePrice: 100,
		Drift:     1,
	})

	now := time.Unix(1700000000, 0)
	first := gen.Next(now)
	var last model.Bar
	for i := 0; i < 9; i++ {
		last = gen.Next(now)
	}
	if last.Close <= first.Close {
		t.Fatalf("drift should raise closes: first %v last %v", first.Close, last.Close)
	}
}
