package optics

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
)

// newtonIters bounds the Newton-Raphson correction applied after the closed
// form solve. A fixed iteration count, not a convergence loop: per-ray cost
// stays constant under heavy fan workloads.
const newtonIters = 3

// solveQuadratic returns the smallest root of a·t² + b·t + c = 0 strictly
// greater than Epsilon. When the leading coefficient vanishes the equation
// degrades to linear. Returns -1 when no admissible root exists.
func solveQuadratic(a, b, c float64) float64 {
	if math.Abs(a) < Epsilon {
		if math.Abs(b) > Epsilon {
			if t := -c / b; t > Epsilon {
				return t
			}
		}
		return -1
	}

	disc := b*b - 4.0*a*c
	if disc < 0 {
		return -1
	}
	sqrtDisc := math.Sqrt(disc)
	t1 := (-b - sqrtDisc) / (2.0 * a)
	t2 := (-b + sqrtDisc) / (2.0 * a)
	if t1 > Epsilon {
		return t1
	}
	if t2 > Epsilon {
		return t2
	}
	return -1
}

// refineRoot runs the fixed Newton-Raphson steps on the polynomial with
// coefficients c (constant term first), starting from t.
func refineRoot(t float64, c ...float64) float64 {
	d := make([]float64, len(c)-1)
	for i := 1; i < len(c); i++ {
		d[i-1] = float64(i) * c[i]
	}
	for i := 0; i < newtonIters; i++ {
		fPrime := base.Horner(t, d...)
		if math.Abs(fPrime) > Epsilon {
			t -= base.Horner(t, c...) / fPrime
		}
	}
	return t
}
