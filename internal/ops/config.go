// Package ops loads and resolves the runtime configuration.
package ops

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"trailstop/internal/mdg"
	"trailstop/internal/model"
	"trailstop/internal/store"
	"trailstop/internal/strategy"

	"github.com/yanun0323/decimal"
)

// Store backends.
const (
	StoreBypass   = "bypass"
	StorePostgres = "postgres"
)

// FileConfig mirrors the JSON config layout. Fractional values are decimal
// strings so price-like numbers survive the file round trip exactly.
type FileConfig struct {
	Trader     TraderConfig     `json:"trader"`
	Instrument InstrumentConfig `json:"instrument"`
	Strategy   StrategyConfig   `json:"strategy"`
	Store      StoreConfig      `json:"store"`
	Feed       FeedConfig       `json:"feed"`
}

// TraderConfig identifies the trading node.
type TraderConfig struct {
	ID string `json:"id"`
}

// InstrumentConfig describes the traded instrument.
type InstrumentConfig struct {
	ID         string          `json:"id"`
	PriceScale int             `json:"priceScale"`
	SizeScale  int             `json:"sizeScale"`
	TickSize   decimal.Decimal `json:"tickSize"`
}

// StrategyConfig parameterizes the controller.
type StrategyConfig struct {
	ID               string          `json:"id"`
	BarType          string          `json:"barType"`
	FastPeriod       int             `json:"fastPeriod"`
	SlowPeriod       int             `json:"slowPeriod"`
	ATRPeriod        int             `json:"atrPeriod"`
	TrailATRMultiple decimal.Decimal `json:"trailAtrMultiple"`
	TradeSize        decimal.Decimal `json:"tradeSize"`
	StopIncrement    decimal.Decimal `json:"stopIncrement"`
}

// StoreConfig selects and parameterizes the execution store backend.
type StoreConfig struct {
	Backend  string         `json:"backend"`
	Postgres PostgresConfig `json:"postgres"`
}

// PostgresConfig holds connection settings for the postgres backend.
type PostgresConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	User       string `json:"user"`
	Password   string `json:"password"`
	Database   string `json:"database"`
	ConnString string `json:"connString"`
}

// FeedConfig shapes the synthetic bar feed.
type FeedConfig struct {
	BasePrice decimal.Decimal `json:"basePrice"`
	Drift     decimal.Decimal `json:"drift"`
	Amplitude decimal.Decimal `json:"amplitude"`
	Cycle     int             `json:"cycle"`
	Range     decimal.Decimal `json:"range"`
	Volume    decimal.Decimal `json:"volume"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	TraderID   model.TraderID
	Instrument model.Instrument
	Strategy   strategy.Config
	Backend    string
	Postgres   store.Option
	Feed       mdg.Config
}

// Load reads a JSON config file and resolves it. An empty path yields the
// built-in paper-trading defaults.
func Load(path string) (Loaded, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, err
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, err
	}
	return resolve(cfg)
}

// Default is the zero-setup configuration: bypass store, synthetic feed.
func Default() Loaded {
	inst := model.Instrument{
		ID:         "XBT/USD",
		PriceScale: 1,
		SizeScale:  0,
	}
	inst.TickSize = inst.MakePrice(0.5)
	barType := model.BarType("XBT/USD-1-MINUTE-LAST")
	return Loaded{
		TraderID:   "TRADER-001",
		Instrument: inst,
		Strategy: strategy.Config{
			TraderID:         "TRADER-001",
			StrategyID:       "S-TRAIL-001",
			InstrumentID:     inst.ID,
			BarType:          barType,
			FastPeriod:       10,
			SlowPeriod:       20,
			ATRPeriod:        20,
			TrailATRMultiple: 3.0,
			TradeSize:        1,
			StopIncrement:    0.5,
		},
		Backend: StoreBypass,
		Feed: mdg.Config{
			BarType:   barType,
			BasePrice: 100,
			Drift:     0.05,
			Amplitude: 3,
			Cycle:     40,
			Range:     0.5,
			Volume:    10,
		},
	}
}

func resolve(cfg FileConfig) (Loaded, error) {
	if cfg.Instrument.ID == "" {
		return Loaded{}, fmt.Errorf("instrument id is empty")
	}
	if cfg.Instrument.PriceScale < 0 || cfg.Instrument.SizeScale < 0 {
		return Loaded{}, fmt.Errorf("instrument scales must be >= 0")
	}
	tick := decimalFloat(cfg.Instrument.TickSize, 0)
	if tick <= 0 {
		return Loaded{}, fmt.Errorf("instrument tick size must be > 0")
	}
	inst := model.Instrument{
		ID:         model.InstrumentID(cfg.Instrument.ID),
		PriceScale: cfg.Instrument.PriceScale,
		SizeScale:  cfg.Instrument.SizeScale,
	}
	inst.TickSize = inst.MakePrice(tick)

	if cfg.Strategy.FastPeriod <= 0 || cfg.Strategy.SlowPeriod <= 0 || cfg.Strategy.ATRPeriod <= 0 {
		return Loaded{}, fmt.Errorf("strategy periods must be > 0")
	}
	if cfg.Strategy.FastPeriod >= cfg.Strategy.SlowPeriod {
		return Loaded{}, fmt.Errorf("fast period must be shorter than slow period")
	}
	tradeSize := decimalFloat(cfg.Strategy.TradeSize, 0)
	if tradeSize <= 0 {
		return Loaded{}, fmt.Errorf("strategy trade size must be > 0")
	}
	barType := cfg.Strategy.BarType
	if barType == "" {
		return Loaded{}, fmt.Errorf("strategy bar type is empty")
	}

	traderID := cfg.Trader.ID
	if traderID == "" {
		traderID = "TRADER-001"
	}
	strategyID := cfg.Strategy.ID
	if strategyID == "" {
		strategyID = "S-TRAIL-001"
	}

	backend := cfg.Store.Backend
	switch backend {
	case "":
		backend = StoreBypass
	case StoreBypass, StorePostgres:
	default:
		return Loaded{}, fmt.Errorf("unknown store backend: %s", backend)
	}

	basePrice := decimalFloat(cfg.Feed.BasePrice, 100)

	return Loaded{
		TraderID:   model.TraderID(traderID),
		Instrument: inst,
		Strategy: strategy.Config{
			TraderID:         model.TraderID(traderID),
			StrategyID:       model.StrategyID(strategyID),
			InstrumentID:     inst.ID,
			BarType:          model.BarType(barType),
			FastPeriod:       cfg.Strategy.FastPeriod,
			SlowPeriod:       cfg.Strategy.SlowPeriod,
			ATRPeriod:        cfg.Strategy.ATRPeriod,
			TrailATRMultiple: decimalFloat(cfg.Strategy.TrailATRMultiple, 3.0),
			TradeSize:        tradeSize,
			StopIncrement:    decimalFloat(cfg.Strategy.StopIncrement, 0.5),
		},
		Backend: backend,
		Postgres: store.Option{
			Host:       cfg.Store.Postgres.Host,
			Port:       cfg.Store.Postgres.Port,
			User:       cfg.Store.Postgres.User,
			Password:   cfg.Store.Postgres.Password,
			Database:   cfg.Store.Postgres.Database,
			ConnString: cfg.Store.Postgres.ConnString,
		},
		Feed: mdg.Config{
			BarType:   model.BarType(barType),
			BasePrice: basePrice,
			Drift:     decimalFloat(cfg.Feed.Drift, 0),
			Amplitude: decimalFloat(cfg.Feed.Amplitude, 0),
			Cycle:     cfg.Feed.Cycle,
			Range:     decimalFloat(cfg.Feed.Range, 0),
			Volume:    decimalFloat(cfg.Feed.Volume, 0),
		},
	}, nil
}

// decimalFloat converts a decimal config value, falling back to the default
// when the field is absent or zero.
func decimalFloat(d decimal.Decimal, def float64) float64 {
	f, err := strconv.ParseFloat(d.String(), 64)
	if err != nil || f == 0 {
		return def
	}
	return f
}
