package model

import (
	"math"
	"strconv"
)

// Price is a scaled integer. The scale is defined per instrument.
type Price int64

// Format renders the price with the given decimal scale.
func (p Price) Format(scale int) string {
	return scaledString(int64(p), scale)
}

// Quantity is a scaled integer. The scale is defined per instrument.
type Quantity int64

// Format renders the quantity with the given decimal scale.
func (q Quantity) Format(scale int) string {
	return scaledString(int64(q), scale)
}

// RoundToIncrement rounds value to the nearest multiple of increment using
// round-half-to-even.
func RoundToIncrement(value, increment float64) float64 {
	if increment <= 0 {
		return value
	}
	return math.RoundToEven(value/increment) * increment
}

func scaledString(value int64, scale int) string {
	if scale <= 0 {
		return strconv.FormatInt(value, 10)
	}

	neg := value < 0
	u := uint64(value)
	if neg {
		u = uint64(^value) + 1
	}

	var tmp [32]byte
	digits := strconv.AppendUint(tmp[:0], u, 10)

	buf := make([]byte, 0, len(digits)+scale+2)
	if neg {
		buf = append(buf, '-')
	}

	if len(digits) <= scale {
		buf = append(buf, '0', '.')
		for i := 0; i < scale-len(digits); i++ {
			buf = append(buf, '0')
		}
		buf = append(buf, digits...)
		return string(buf)
	}

	idx := len(digits) - scale
	buf = append(buf, digits[:idx]...)
	buf = append(buf, '.')
	buf = append(buf, digits[idx:]...)
	return string(buf)
}

func pow10(scale int) float64 {
	p := 1.0
	for i := 0; i < scale; i++ {
		p *= 10
	}
	return p
}
