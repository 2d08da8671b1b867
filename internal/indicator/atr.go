package indicator

import (
	"math"

	"trailstop/internal/model"
)

// ATR is an average true range with Wilder smoothing. The first period bars
// seed the value with a simple average of true ranges.
type ATR struct {
	period    int
	value     float64
	prevClose float64
	count     int
}

func NewATR(period int) *ATR {
	if period < 1 {
		period = 1
	}
	return &ATR{period: period}
}

func (a *ATR) Update(bar model.Bar) {
	tr := bar.High - bar.Low
	if a.count > 0 {
		tr = math.Max(tr, math.Max(
			math.Abs(bar.High-a.prevClose),
			math.Abs(bar.Low-a.prevClose),
		))
	}
	a.count++
	switch {
	case a.count == 1:
		a.value = tr
	case a.count <= a.period:
		a.value += (tr - a.value) / float64(a.count)
	default:
		a.value = (a.value*float64(a.period-1) + tr) / float64(a.period)
	}
	a.prevClose = bar.Close
}

func (a *ATR) Value() float64 {
	if !a.Initialized() {
		return 0
	}
	return a.value
}

// Initialized becomes true after period updates and never reverts except on Reset.
func (a *ATR) Initialized() bool {
	return a.count >= a.period
}

func (a *ATR) Reset() {
	a.value = 0
	a.prevClose = 0
	a.count = 0
}
