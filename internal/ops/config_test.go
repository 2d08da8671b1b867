package ops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailstop/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWhenPathEmpty(t *testing.T) {
	loaded, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, model.TraderID("TRADER-001"), loaded.TraderID)
	assert.Equal(t, StoreBypass, loaded.Backend)
	assert.Equal(t, model.InstrumentID("XBT/USD"), loaded.Instrument.ID)
	assert.Equal(t, model.Price(5), loaded.Instrument.TickSize)
	assert.Equal(t, loaded.Instrument.ID, loaded.Strategy.InstrumentID)
	assert.Equal(t, loaded.Strategy.BarType, loaded.Feed.BarType)
	assert.Greater(t, loaded.Strategy.SlowPeriod, loaded.Strategy.FastPeriod)
}

func TestLoadResolvesFile(t *testing.T) {
	path := writeConfig(t, `{
		"trader": {"id": "TRADER-042"},
		"instrument": {
			"id": "ETH/USD",
			"priceScale": 2,
			"sizeScale": 1,
			"tickSize": "0.05"
		},
		"strategy": {
			"id": "S-ETH-1",
			"barType": "ETH/USD-1-MINUTE-LAST",
			"fastPeriod": 5,
			"slowPeriod": 15,
			"atrPeriod": 10,
			"trailAtrMultiple": "2.5",
			"tradeSize": "0.5",
			"stopIncrement": "0.05"
		},
		"store": {
			"backend": "postgres",
			"postgres": {"host": "db.internal", "port": 5433, "database": "execution"}
		},
		"feed": {"basePrice": "2000", "drift": "0.2", "amplitude": "15", "cycle": 30}
	}`)

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.TraderID("TRADER-042"), loaded.TraderID)
	assert.Equal(t, model.InstrumentID("ETH/USD"), loaded.Instrument.ID)
	assert.Equal(t, model.Price(5), loaded.Instrument.TickSize) // 0.05 at scale 2

	assert.Equal(t, model.StrategyID("S-ETH-1"), loaded.Strategy.StrategyID)
	assert.Equal(t, model.BarType("ETH/USD-1-MINUTE-LAST"), loaded.Strategy.BarType)
	assert.Equal(t, 5, loaded.Strategy.FastPeriod)
	assert.Equal(t, 15, loaded.Strategy.SlowPeriod)
	assert.Equal(t, 10, loaded.Strategy.ATRPeriod)
	assert.InDelta(t, 2.5, loaded.Strategy.TrailATRMultiple, 1e-9)
	assert.InDelta(t, 0.5, loaded.Strategy.TradeSize, 1e-9)
	assert.InDelta(t, 0.05, loaded.Strategy.StopIncrement, 1e-9)

	assert.Equal(t, StorePostgres, loaded.Backend)
	assert.Equal(t, "db.internal", loaded.Postgres.Host)
	assert.Equal(t, 5433, loaded.Postgres.Port)

	assert.InDelta(t, 2000, loaded.Feed.BasePrice, 1e-9)
	assert.InDelta(t, 0.2, loaded.Feed.Drift, 1e-9)
	assert.Equal(t, 30, loaded.Feed.Cycle)
}

func TestLoadDefaultsAbsentFields(t *testing.T) {
	path := writeConfig(t, `{
		"instrument": {"id": "XBT/USD", "priceScale": 1, "tickSize": "0.5"},
		"strategy": {
			"barType": "XBT/USD-1-MINUTE-LAST",
			"fastPeriod": 10,
			"slowPeriod": 20,
			"atrPeriod": 20,
			"tradeSize": "1"
		}
	}`)

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, model.TraderID("TRADER-001"), loaded.TraderID)
	assert.Equal(t, model.StrategyID("S-TRAIL-001"), loaded.Strategy.StrategyID)
	assert.Equal(t, StoreBypass, loaded.Backend)
	assert.InDelta(t, 3.0, loaded.Strategy.TrailATRMultiple, 1e-9)
	assert.InDelta(t, 0.5, loaded.Strategy.StopIncrement, 1e-9)
	assert.InDelta(t, 100, loaded.Feed.BasePrice, 1e-9)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"missing instrument": `{
			"strategy": {"barType": "B", "fastPeriod": 2, "slowPeriod": 4, "atrPeriod": 3, "tradeSize": "1"}
		}`,
		"zero tick": `{
			"instrument": {"id": "XBT/USD"},
			"strategy": {"barType": "B", "fastPeriod": 2, "slowPeriod": 4, "atrPeriod": 3, "tradeSize": "1"}
		}`,
		"fast not shorter": `{
			"instrument": {"id": "XBT/USD", "tickSize": "0.5"},
			"strategy": {"barType": "B", "fastPeriod": 4, "slowPeriod": 4, "atrPeriod": 3, "tradeSize": "1"}
		}`,
		"missing bar type": `{
			"instrument": {"id": "XBT/USD", "tickSize": "0.5"},
			"strategy": {"fastPeriod": 2, "slowPeriod": 4, "atrPeriod": 3, "tradeSize": "1"}
		}`,
		"unknown backend": `{
			"instrument": {"id": "XBT/USD", "tickSize": "0.5"},
			"strategy": {"barType": "B", "fastPeriod": 2, "slowPeriod": 4, "atrPeriod": 3, "tradeSize": "1"},
			"store": {"backend": "redis"}
		}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}
