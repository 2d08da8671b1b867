// Package sim provides an in-process execution venue for paper trading: it
// accepts every order and triggers stops off the bars it is shown.
package sim

import (
	"errors"
	"sort"
	"sync"
	"time"

	"trailstop/internal/bus"
	"trailstop/internal/event"
	"trailstop/internal/model"
	"trailstop/internal/model/enum"

	"github.com/yanun0323/logs"
)

// Gateway simulates a venue. Acknowledgments and fills flow back through the
// event queue, so the controller sees the same asynchronous shape as live.
type Gateway struct {
	mu        sync.Mutex
	queue     *bus.Queue
	inst      model.Instrument
	working   map[model.ClientOrderID]model.Order
	lastClose float64
}

// NewGateway creates a gateway for one instrument.
func NewGateway(queue *bus.Queue, inst model.Instrument) *Gateway {
	return &Gateway{
		queue:   queue,
		inst:    inst,
		working: make(map[model.ClientOrderID]model.Order),
	}
}

// SubmitOrder accepts the order. Market orders fill immediately at the last
// seen close; stop orders rest until a bar trades through them.
func (g *Gateway) SubmitOrder(order *model.Order) {
	g.mu.Lock()
	defer g.mu.Unlock()

	o := *order
	now := time.Now().UTC().UnixNano()
	g.publish(event.OrderAccepted{ClientOrderID: o.ClientOrderID, TsNano: now})

	if o.Type == enum.OrderTypeMarket {
		g.publish(event.OrderFilled{
			ClientOrderID: o.ClientOrderID,
			Side:          o.Side,
			Price:         g.inst.MakePrice(g.lastClose),
			Quantity:      o.LeavesQty(),
			TsNano:        now,
		})
		return
	}
	g.working[o.ClientOrderID] = o
}

// CancelOrder removes a resting order. Unknown identifiers are ignored; the
// order may have just filled.
func (g *Gateway) CancelOrder(clientOrderID model.ClientOrderID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.working[clientOrderID]; !ok {
		return
	}
	delete(g.working, clientOrderID)
	g.publish(event.OrderCanceled{
		ClientOrderID: clientOrderID,
		TsNano:        time.Now().UTC().UnixNano(),
	})
}

// OnBar triggers resting stops against the bar's range. A buy stop trades
// when the high reaches it, a sell stop when the low reaches it; fills are
// at the stop price.
func (g *Gateway) OnBar(bar model.Bar) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.lastClose = bar.Close

	ids := make([]model.ClientOrderID, 0, len(g.working))
	for id := range g.working {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		o := g.working[id]
		level := g.inst.PriceFloat(o.Price)
		triggered := (o.Side == enum.OrderSideBuy && bar.High >= level) ||
			(o.Side == enum.OrderSideSell && bar.Low <= level)
		if !triggered {
			continue
		}
		delete(g.working, id)
		g.publish(event.OrderFilled{
			ClientOrderID: id,
			Side:          o.Side,
			Price:         o.Price,
			Quantity:      o.LeavesQty(),
			TsNano:        bar.EventTsNano,
		})
	}
}

// WorkingCount returns the number of resting orders.
func (g *Gateway) WorkingCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.working)
}

func (g *Gateway) publish(e event.Event) {
	err := g.queue.TryPublish(e)
	if err != nil && !errors.Is(err, bus.ErrQueueClosed) {
		logs.Errorf("drop gateway event: %+v", err)
	}
}
