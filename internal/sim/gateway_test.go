package sim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trailstop/internal/bus"
	"trailstop/internal/event"
	"trailstop/internal/model"
	"trailstop/internal/model/enum"
)

var testInstrument = model.Instrument{
	ID:         "XBT/USD",
	PriceScale: 1,
	SizeScale:  0,
	TickSize:   5,
}

func newTestGateway() (*Gateway, *bus.Queue) {
	q := bus.NewQueue(32)
	return NewGateway(q, testInstrument), q
}

func drain(t *testing.T, q *bus.Queue) []event.Event {
	t.Helper()
	q.Close()
	var got []event.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(context.Background(), func(e event.Event) {
			got = append(got, e)
		})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queue did not drain")
	}
	return got
}

func bar(high, low, close float64) model.Bar {
	return model.Bar{
		Type:  "XBT/USD-1-MINUTE-LAST",
		Open:  close,
		High:  high,
		Low:   low,
		Close: close,
	}
}

func TestBuyStopTriggersOnHigh(t *testing.T) {
	gw, q := newTestGateway()

	order := model.Order{
		ClientOrderID: "O-1",
		InstrumentID:  testInstrument.ID,
		Side:          enum.OrderSideBuy,
		Type:          enum.OrderTypeStopMarket,
		Price:         1030, // 103.0
		Quantity:      1,
	}
	gw.SubmitOrder(&order)

	gw.OnBar(bar(102.5, 101, 102)) // high below the stop
	require.Equal(t, 1, gw.WorkingCount())

	gw.OnBar(bar(104, 102, 103))
	require.Equal(t, 0, gw.WorkingCount())
	gw.OnBar(bar(105, 103, 104)) // no duplicate fill

	got := drain(t, q)
	require.Len(t, got, 2)
	assert.IsType(t, event.OrderAccepted{}, got[0])
	fill, ok := got[1].(event.OrderFilled)
	require.True(t, ok)
	assert.Equal(t, model.ClientOrderID("O-1"), fill.ClientOrderID)
	assert.Equal(t, enum.OrderSideBuy, fill.Side)
	assert.Equal(t, model.Price(1030), fill.Price)
	assert.Equal(t, model.Quantity(1), fill.Quantity)
}

func TestSellStopTriggersOnLow(t *testing.T) {
	gw, q := newTestGateway()

	order := model.Order{
		ClientOrderID: "O-1",
		Side:          enum.OrderSideSell,
		Type:          enum.OrderTypeStopMarket,
		Price:         1080, // 108.0
		Quantity:      1,
	}
	gw.SubmitOrder(&order)

	gw.OnBar(bar(110, 108.5, 109))
	require.Equal(t, 1, gw.WorkingCount())

	gw.OnBar(bar(109, 107.5, 108))
	require.Equal(t, 0, gw.WorkingCount())

	got := drain(t, q)
	require.Len(t, got, 2)
	fill, ok := got[1].(event.OrderFilled)
	require.True(t, ok)
	assert.Equal(t, enum.OrderSideSell, fill.Side)
	assert.Equal(t, model.Price(1080), fill.Price)
}

func TestCancelRemovesRestingOrder(t *testing.T) {
	gw, q := newTestGateway()

	order := model.Order{
		ClientOrderID: "O-1",
		Side:          enum.OrderSideBuy,
		Type:          enum.OrderTypeStopMarket,
		Price:         1030,
		Quantity:      1,
	}
	gw.SubmitOrder(&order)
	gw.CancelOrder("O-1")
	gw.CancelOrder("O-2") // unknown, ignored
	gw.OnBar(bar(104, 102, 103))

	got := drain(t, q)
	require.Len(t, got, 2)
	assert.IsType(t, event.OrderAccepted{}, got[0])
	canceled, ok := got[1].(event.OrderCanceled)
	require.True(t, ok)
	assert.Equal(t, model.ClientOrderID("O-1"), canceled.ClientOrderID)
	assert.Equal(t, 0, gw.WorkingCount())
}

func TestMarketOrderFillsAtLastClose(t *testing.T) {
	gw, q := newTestGateway()

	gw.OnBar(bar(104, 102, 103))
	order := model.Order{
		ClientOrderID: "O-1",
		Side:          enum.OrderSideSell,
		Type:          enum.OrderTypeMarket,
		Quantity:      2,
	}
	gw.SubmitOrder(&order)

	got := drain(t, q)
	require.Len(t, got, 2)
	fill, ok := got[1].(event.OrderFilled)
	require.True(t, ok)
	assert.Equal(t, model.Price(1030), fill.Price)
	assert.Equal(t, model.Quantity(2), fill.Quantity)
	assert.Equal(t, 0, gw.WorkingCount())
}

func TestPartialFillQuantityUsesLeaves(t *testing.T) {
	gw, q := newTestGateway()

	order := model.Order{
		ClientOrderID: "O-1",
		Side:          enum.OrderSideBuy,
		Type:          enum.OrderTypeStopMarket,
		Price:         1030,
		Quantity:      3,
		FilledQty:     1,
	}
	gw.SubmitOrder(&order)
	gw.OnBar(bar(104, 102, 103))

	got := drain(t, q)
	require.Len(t, got, 2)
	fill := got[1].(event.OrderFilled)
	assert.Equal(t, model.Quantity(2), fill.Quantity)
}
