package dynamo

import "math"

// SinCos fills sin[i], cos[i] for every angle in angles. The destination
// slices must be at least as long as angles.
func SinCos(angles, sin, cos []float64) {
	for i, a := range angles {
		sin[i], cos[i] = math.Sincos(a)
	}
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}
