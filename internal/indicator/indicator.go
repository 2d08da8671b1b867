// Package indicator provides streaming estimators fed one bar at a time.
package indicator

import "trailstop/internal/model"

// Indicator consumes bars and exposes a current value plus a readiness flag.
// Value is well-defined only once Initialized reports true; before that it
// returns a neutral zero and callers must gate on readiness.
type Indicator interface {
	Update(bar model.Bar)
	Value() float64
	Initialized() bool
	Reset()
}

// Initialized reports whether every indicator is ready.
func Initialized(indicators ...Indicator) bool {
	for _, ind := range indicators {
		if !ind.Initialized() {
			return false
		}
	}
	return true
}
