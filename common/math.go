package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundTo rounds v to the given number of decimal places. Velocity readbacks
// get rounded before gameplay comparisons so integrator jitter never flips a
// flag.
func RoundTo(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

// NearZero reports whether v is within eps of zero.
func NearZero(v, eps float64) bool {
	return math.Abs(v) < eps
}
