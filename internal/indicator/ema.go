package indicator

import "trailstop/internal/model"

// EMA is an exponential moving average over bar closes.
type EMA struct {
	period int
	alpha  float64
	value  float64
	count  int
}

// NewEMA creates an EMA with the standard smoothing factor 2/(period+1).
func NewEMA(period int) *EMA {
	if period < 1 {
		period = 1
	}
	return &EMA{
		period: period,
		alpha:  2.0 / float64(period+1),
	}
}

func (e *EMA) Update(bar model.Bar) {
	e.count++
	if e.count == 1 {
		e.value = bar.Close
		return
	}
	e.value = e.alpha*bar.Close + (1-e.alpha)*e.value
}

func (e *EMA) Value() float64 {
	if !e.Initialized() {
		return 0
	}
	return e.value
}

// Initialized becomes true after period updates and never reverts except on Reset.
func (e *EMA) Initialized() bool {
	return e.count >= e.period
}

func (e *EMA) Reset() {
	e.value = 0
	e.count = 0
}
