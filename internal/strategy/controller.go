// Package strategy implements the order/risk controller: an EMA-cross entry
// with a volatility-scaled trailing stop, driven one event at a time.
package strategy

import (
	"errors"
	"time"

	"trailstop/internal/cache"
	"trailstop/internal/event"
	"trailstop/internal/indicator"
	"trailstop/internal/model"
	"trailstop/internal/model/enum"
	"trailstop/internal/obs"
	"trailstop/internal/og"
	"trailstop/internal/state"
	"trailstop/internal/store"
	"trailstop/pkg/exception"

	"github.com/yanun0323/logs"
)

const (
	checkpointEntryKey = "entry"
	checkpointStopKey  = "trailing_stop"
	checkpointCloseKey = "closing"

	defaultStopIncrement = 0.5
)

// Gateway receives the controller's outbound commands. Both are
// fire-and-forget; acknowledgments come back later as events.
type Gateway interface {
	SubmitOrder(order *model.Order)
	CancelOrder(clientOrderID model.ClientOrderID)
}

// Config parameterizes one controller instance.
type Config struct {
	TraderID     model.TraderID
	StrategyID   model.StrategyID
	InstrumentID model.InstrumentID
	BarType      model.BarType

	FastPeriod int
	SlowPeriod int
	ATRPeriod  int

	// TrailATRMultiple scales the volatility distance of the protective stop.
	TrailATRMultiple float64

	// TradeSize is the position size per entry, in instrument units.
	TradeSize float64

	// StopIncrement is the price granularity the trailing stop is rounded to.
	StopIncrement float64
}

// State is the controller's externally visible phase.
type State uint16

const (
	StateFlat State = iota
	StateEntryPending
	StateProtected
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateEntryPending:
		return "ENTRY_PENDING"
	case StateProtected:
		return "PROTECTED"
	case StateDisposed:
		return "DISPOSED"
	default:
		return "FLAT"
	}
}

// Controller owns the entry and protective-stop order references for a single
// instrument. It is single-threaded by construction: events are delivered one
// at a time and each handler runs to completion.
type Controller struct {
	cfg       Config
	gateway   Gateway
	cache     *cache.Cache
	positions *state.Positions
	store     store.Store
	metrics   *obs.Metrics

	instrument model.Instrument

	fastEMA    *indicator.EMA
	slowEMA    *indicator.EMA
	atr        *indicator.ATR
	indicators []indicator.Indicator

	tracker      *og.Tracker
	entry        *model.Order
	trailingStop *model.Order
	closing      *model.Order

	started  bool
	disposed bool
}

// NewController wires a controller. A nil store falls back to the bypass
// store; a nil metrics container is allocated.
func NewController(cfg Config, gateway Gateway, ca *cache.Cache, positions *state.Positions, st store.Store, metrics *obs.Metrics) *Controller {
	if cfg.StopIncrement <= 0 {
		cfg.StopIncrement = defaultStopIncrement
	}
	if st == nil {
		st = store.NewBypass()
	}
	if metrics == nil {
		metrics = obs.NewMetrics()
	}
	return &Controller{
		cfg:       cfg,
		gateway:   gateway,
		cache:     ca,
		positions: positions,
		store:     st,
		metrics:   metrics,
		fastEMA:   indicator.NewEMA(cfg.FastPeriod),
		slowEMA:   indicator.NewEMA(cfg.SlowPeriod),
		atr:       indicator.NewATR(cfg.ATRPeriod),
		tracker:   og.NewTracker(),
	}
}

// State derives the current phase from the tracked references.
func (c *Controller) State() State {
	switch {
	case c.disposed:
		return StateDisposed
	case !c.positions.IsFlat(c.cfg.InstrumentID):
		return StateProtected
	case c.entry != nil && !c.entry.IsTerminal():
		return StateEntryPending
	default:
		return StateFlat
	}
}

// Metrics returns the controller's counters.
func (c *Controller) Metrics() *obs.Metrics {
	return c.metrics
}

// Handle dispatches one event. Handlers run to completion before the next
// event is delivered.
func (c *Controller) Handle(e event.Event) {
	switch ev := e.(type) {
	case event.Start:
		c.onStart()
	case event.Stop:
		c.onStop()
	case event.Reset:
		c.onReset()
	case event.BarReceived:
		c.onBar(ev.Bar)
	case event.OrderAccepted:
		c.onOrderAccepted(ev)
	case event.OrderFilled:
		c.onOrderFilled(ev)
	case event.OrderCanceled:
		c.onOrderCanceled(ev)
	}
}

func (c *Controller) onStart() {
	if c.started || c.disposed {
		return
	}

	inst, ok := c.cache.Instrument(c.cfg.InstrumentID)
	if !ok {
		logs.Errorf("could not find instrument for %s, stopping strategy", c.cfg.InstrumentID)
		c.disposed = true
		return
	}
	c.instrument = inst

	c.indicators = []indicator.Indicator{c.fastEMA, c.slowEMA, c.atr}
	c.started = true
	c.persistCheckpoint()
	logs.Infof("strategy %s started: instrument=%s tick=%s",
		c.cfg.StrategyID, inst.ID, inst.FormatPrice(inst.TickSize))
}

func (c *Controller) onBar(bar model.Bar) {
	if !c.started || c.disposed {
		return
	}
	c.cache.AddBar(bar)
	if bar.Type != c.cfg.BarType {
		return
	}
	c.metrics.AddBar()

	for _, ind := range c.indicators {
		ind.Update(bar)
	}
	if !indicator.Initialized(c.indicators...) {
		logs.Infof("waiting for indicators to warm up [%d]...", c.cache.BarCount(c.cfg.BarType))
		return
	}

	if c.positions.IsFlat(c.cfg.InstrumentID) {
		if c.entry != nil && !c.entry.IsTerminal() {
			c.cancelOrder(c.entry)
		}
		if c.fastEMA.Value() >= c.slowEMA.Value() {
			c.entryBuy(bar)
		} else {
			c.entrySell(bar)
		}
	} else {
		c.manageTrailingStop(bar)
	}
}

func (c *Controller) entryBuy(last model.Bar) {
	price := c.instrument.MakePrice(last.Low) + 2*c.instrument.TickSize
	order := c.newOrder(enum.OrderSideBuy, enum.OrderTypeStopMarket, enum.OrderRoleEntry,
		price, c.instrument.MakeQty(c.cfg.TradeSize), false)
	c.entry = order
	c.submitOrder(order)
}

func (c *Controller) entrySell(last model.Bar) {
	// sell entries anchor off the bar low as well
	price := c.instrument.MakePrice(last.Low) - 2*c.instrument.TickSize
	order := c.newOrder(enum.OrderSideSell, enum.OrderTypeStopMarket, enum.OrderRoleEntry,
		price, c.instrument.MakeQty(c.cfg.TradeSize), false)
	c.entry = order
	c.submitOrder(order)
}

// trailingStopSell protects a long position.
func (c *Controller) trailingStopSell(last model.Bar) {
	price := c.stopPrice(last.High + c.atr.Value()*c.cfg.TrailATRMultiple)
	pos, _ := c.positions.Get(c.cfg.InstrumentID)
	order := c.newOrder(enum.OrderSideSell, enum.OrderTypeStopMarket, enum.OrderRoleProtectiveStop,
		price, pos.Quantity, true)
	c.trailingStop = order
	c.submitOrder(order)
}

// trailingStopBuy protects a short position.
func (c *Controller) trailingStopBuy(last model.Bar) {
	price := c.stopPrice(last.Low - c.atr.Value()*c.cfg.TrailATRMultiple)
	pos, _ := c.positions.Get(c.cfg.InstrumentID)
	order := c.newOrder(enum.OrderSideBuy, enum.OrderTypeStopMarket, enum.OrderRoleProtectiveStop,
		price, pos.Quantity, true)
	c.trailingStop = order
	c.submitOrder(order)
}

func (c *Controller) manageTrailingStop(last model.Bar) {
	if c.trailingStop == nil {
		if c.closing != nil && !c.closing.IsTerminal() {
			return
		}
		logs.Errorf("trailing stop missing while %s position open, flattening", c.cfg.InstrumentID)
		c.flattenPosition()
		return
	}

	switch c.trailingStop.Side {
	case enum.OrderSideSell:
		candidate := c.stopPrice(last.High + c.atr.Value()*c.cfg.TrailATRMultiple)
		// a protective sell stop may only rise
		if candidate > c.trailingStop.Price {
			logs.Infof("moving SELL trailing stop to %s", c.instrument.FormatPrice(candidate))
			c.cancelOrder(c.trailingStop)
			c.trailingStopSell(last)
		}
	case enum.OrderSideBuy:
		candidate := c.stopPrice(last.Low - c.atr.Value()*c.cfg.TrailATRMultiple)
		// a protective buy stop may only fall
		if candidate < c.trailingStop.Price {
			logs.Infof("moving BUY trailing stop to %s", c.instrument.FormatPrice(candidate))
			c.cancelOrder(c.trailingStop)
			c.trailingStopBuy(last)
		}
	}
}

// flattenPosition closes the full position at market. Used when protective
// state is inconsistent and on stop: guaranteed flat exposure wins over
// reconstructing an unknown protective level.
func (c *Controller) flattenPosition() {
	pos, ok := c.positions.Get(c.cfg.InstrumentID)
	if !ok || pos.IsFlat() {
		return
	}
	side := enum.OrderSideSell
	if pos.Side == enum.PositionSideShort {
		side = enum.OrderSideBuy
	}
	order := c.newOrder(side, enum.OrderTypeMarket, enum.OrderRoleClose, 0, pos.Quantity, true)
	c.closing = order
	c.metrics.AddFlatten()
	c.submitOrder(order)
}

func (c *Controller) onOrderAccepted(ev event.OrderAccepted) {
	if c.disposed {
		return
	}
	order, ok := c.tracker.ApplyAccepted(ev.ClientOrderID)
	if !ok {
		c.metrics.AddStaleAck()
		return
	}
	c.persistOrder(order, false)
}

func (c *Controller) onOrderFilled(ev event.OrderFilled) {
	if c.disposed {
		return
	}
	order, ok := c.tracker.ApplyFill(ev.ClientOrderID, ev.Quantity)
	if !ok {
		c.metrics.AddStaleAck()
		return
	}
	c.metrics.AddFill()

	position := c.positions.ApplyFill(c.cfg.InstrumentID, ev.Side, ev.Quantity)
	c.persistPosition(position)
	c.persistOrder(order, false)

	switch {
	case c.entry != nil && ev.ClientOrderID == c.entry.ClientOrderID:
		if last, ok := c.cache.Bar(c.cfg.BarType); ok && c.trailingStop == nil {
			if ev.Side == enum.OrderSideBuy {
				c.trailingStopSell(last)
			} else {
				c.trailingStopBuy(last)
			}
		}
		if order.IsTerminal() {
			c.tracker.Release(order.ClientOrderID)
			c.entry = nil
		}
	case c.trailingStop != nil && ev.ClientOrderID == c.trailingStop.ClientOrderID:
		if order.IsTerminal() {
			c.tracker.Release(order.ClientOrderID)
			c.trailingStop = nil
		}
	case c.closing != nil && ev.ClientOrderID == c.closing.ClientOrderID:
		if order.IsTerminal() {
			c.tracker.Release(order.ClientOrderID)
			c.closing = nil
		}
	}
	c.persistCheckpoint()
}

func (c *Controller) onOrderCanceled(ev event.OrderCanceled) {
	if c.disposed {
		return
	}
	order, ok := c.tracker.ApplyCanceled(ev.ClientOrderID)
	if !ok {
		c.metrics.AddStaleAck()
		return
	}
	c.persistOrder(order, false)
	c.tracker.Release(order.ClientOrderID)

	if c.entry != nil && ev.ClientOrderID == c.entry.ClientOrderID {
		c.entry = nil
	}
	if c.trailingStop != nil && ev.ClientOrderID == c.trailingStop.ClientOrderID {
		c.trailingStop = nil
	}
	if c.closing != nil && ev.ClientOrderID == c.closing.ClientOrderID {
		c.closing = nil
	}
	c.persistCheckpoint()
}

// onStop cancels every live order, flattens and disposes. Safe to call from
// any state, any number of times.
func (c *Controller) onStop() {
	if c.disposed {
		return
	}

	for _, order := range c.tracker.Live() {
		c.cancelOrder(order)
		if o, ok := c.tracker.ApplyCanceled(order.ClientOrderID); ok {
			c.persistOrder(o, false)
			c.tracker.Release(o.ClientOrderID)
		}
	}
	c.entry = nil
	c.trailingStop = nil

	if pos, ok := c.positions.Get(c.cfg.InstrumentID); ok && !pos.IsFlat() {
		c.flattenPosition()
		flat := c.positions.Flatten(c.cfg.InstrumentID)
		c.persistPosition(flat)
	}
	// the close order executes at market; settle it locally since no more
	// events will be processed
	if c.closing != nil {
		if o, ok := c.tracker.ApplyFill(c.closing.ClientOrderID, c.closing.Quantity); ok {
			c.persistOrder(o, false)
			c.tracker.Release(o.ClientOrderID)
		}
	}
	c.closing = nil

	c.persistCheckpoint()
	c.indicators = nil
	c.disposed = true
	logs.Infof("strategy %s stopped", c.cfg.StrategyID)
}

// onReset returns a stopped controller to its pre-start state. Running
// controllers ignore it.
func (c *Controller) onReset() {
	if c.started && !c.disposed {
		return
	}
	c.fastEMA.Reset()
	c.slowEMA.Reset()
	c.atr.Reset()
	c.tracker = og.NewTracker()
	c.entry = nil
	c.trailingStop = nil
	c.closing = nil
	c.indicators = nil
	c.started = false
	c.disposed = false
	if err := c.store.DeleteStrategy(c.cfg.TraderID, c.cfg.StrategyID); err != nil {
		c.storeError("delete strategy checkpoint", err)
	}
}

// Recover restores order references and positions from the execution store.
// Call it after a successful start, before live events flow.
func (c *Controller) Recover() error {
	if !c.started || c.disposed {
		return exception.ErrInvalidArgument
	}

	positions, err := c.store.LoadPositions(c.cfg.TraderID)
	if err != nil {
		return err
	}
	c.positions.Load(positions)

	checkpoint, err := c.store.LoadStrategy(c.cfg.TraderID, c.cfg.StrategyID)
	if err != nil {
		return err
	}

	restore := func(key string) (*model.Order, error) {
		id := checkpoint[key]
		if id == "" {
			return nil, nil
		}
		order, err := c.store.LoadOrder(c.cfg.TraderID, model.ClientOrderID(id))
		if errors.Is(err, exception.ErrStoreNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if order.IsTerminal() {
			return nil, nil
		}
		if err := c.tracker.Track(&order); err != nil {
			return nil, err
		}
		return &order, nil
	}

	if c.entry, err = restore(checkpointEntryKey); err != nil {
		return err
	}
	if c.trailingStop, err = restore(checkpointStopKey); err != nil {
		return err
	}
	if c.closing, err = restore(checkpointCloseKey); err != nil {
		return err
	}

	logs.Infof("strategy %s recovered: state=%s live_orders=%d",
		c.cfg.StrategyID, c.State(), c.tracker.LiveCount())
	return nil
}

func (c *Controller) newOrder(side enum.OrderSide, orderType enum.OrderType, role enum.OrderRole,
	price model.Price, qty model.Quantity, reduceOnly bool) *model.Order {
	return &model.Order{
		ClientOrderID: model.NewClientOrderID(string(c.cfg.StrategyID)),
		InstrumentID:  c.cfg.InstrumentID,
		Side:          side,
		Type:          orderType,
		Role:          role,
		Status:        enum.OrderStatusCreated,
		Price:         price,
		Quantity:      qty,
		ReduceOnly:    reduceOnly,
		InitTsNano:    time.Now().UTC().UnixNano(),
	}
}

func (c *Controller) submitOrder(order *model.Order) {
	if err := c.tracker.Track(order); err != nil {
		logs.Errorf("track order %s: %+v", order.ClientOrderID, err)
		return
	}
	order.Status = enum.OrderStatusSubmitted
	c.metrics.AddSubmit()
	c.gateway.SubmitOrder(order)
	c.persistOrder(order, true)
	c.persistCheckpoint()
}

func (c *Controller) cancelOrder(order *model.Order) {
	c.metrics.AddCancel()
	c.gateway.CancelOrder(order.ClientOrderID)
}

// stopPrice rounds a raw stop level to the configured increment and scales it.
func (c *Controller) stopPrice(raw float64) model.Price {
	return c.instrument.MakePrice(model.RoundToIncrement(raw, c.cfg.StopIncrement))
}

func (c *Controller) persistOrder(order *model.Order, added bool) {
	var err error
	if added {
		err = c.store.AddOrder(c.cfg.TraderID, *order)
	} else {
		err = c.store.UpdateOrder(c.cfg.TraderID, *order)
	}
	if err != nil {
		c.storeError("persist order "+string(order.ClientOrderID), err)
	}
}

func (c *Controller) persistPosition(position model.Position) {
	if err := c.store.UpdatePosition(c.cfg.TraderID, position); err != nil {
		c.storeError("persist position "+string(position.InstrumentID), err)
	}
}

func (c *Controller) persistCheckpoint() {
	checkpoint := map[string]string{}
	if c.entry != nil {
		checkpoint[checkpointEntryKey] = string(c.entry.ClientOrderID)
	}
	if c.trailingStop != nil {
		checkpoint[checkpointStopKey] = string(c.trailingStop.ClientOrderID)
	}
	if c.closing != nil {
		checkpoint[checkpointCloseKey] = string(c.closing.ClientOrderID)
	}
	if err := c.store.UpdateStrategy(c.cfg.TraderID, c.cfg.StrategyID, checkpoint); err != nil {
		c.storeError("persist strategy checkpoint", err)
	}
}

// storeError logs persistence failures. A missing override on the store
// contract is a development-time violation and disposes the controller;
// anything else is logged and trading continues on in-memory state.
func (c *Controller) storeError(op string, err error) {
	if errors.Is(err, exception.ErrStoreNotImplemented) {
		logs.Errorf("store contract violation on %s: %+v", op, err)
		for _, order := range c.tracker.Live() {
			c.cancelOrder(order)
		}
		c.entry = nil
		c.trailingStop = nil
		c.closing = nil
		c.indicators = nil
		c.disposed = true
		return
	}
	logs.Errorf("%s: %+v", op, err)
}
