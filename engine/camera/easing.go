package camera

import "math"

// SepticInOut is the seventh-power ease-in-out curve on [0, 1].
func SepticInOut(t float32) float32 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	case t < 0.5:
		return 64 * float32(math.Pow(float64(t), 7))
	default:
		return 1 - float32(math.Pow(float64(-2*t+2), 7))/2
	}
}

// Smoothstep is the cubic Hermite step between edge0 and edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := (x - edge0) / (edge1 - edge0)
	t = min(max(t, 0), 1)
	return t * t * (3 - 2*t)
}
