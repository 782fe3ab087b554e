package util

import "math"

// EMA is an exponential moving average. The first value passes through.
type EMA struct {
	alpha, prev float64
	ok          bool
}

func NewEMA(alpha float64) *EMA { return &EMA{alpha: Clamp01(alpha)} }
func (e *EMA) Next(v float64) float64 {
	if !e.ok {
		e.prev, e.ok = v, true
		return v
	}
	e.prev = e.alpha*v + (1-e.alpha)*e.prev
	return e.prev
}

// DeltaU32 returns now-prev for counters that wrap at 32 bits.
// Only the low 32 bits of both values are considered, so a wrapped
// reading still yields the small positive distance.
func DeltaU32(now, prev uint64) uint64 {
	return uint64(uint32(now) - uint32(prev))
}

// SafeDiv returns n/d, or 0 when d is zero, negative or NaN.
func SafeDiv(n, d float64) float64 {
	const eps = 1e-12
	if d > eps {
		return n / d
	}
	return 0
}

func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	// guard against NaN
	if math.IsNaN(x) {
		return 0
	}
	return x
}
