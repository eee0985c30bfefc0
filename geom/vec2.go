package geom

import "math"

// Vec2 is a simple 2D vector with float64 components.
type Vec2 struct {
	X, Y float64
}

func Zero() Vec2 {
	return Vec2{X: 0.0, Y: 0.0}
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product v · o.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Norm returns the Euclidean length ||v||.
func (v Vec2) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Normalize returns the unit vector v / ||v||.
// If ||v|| == 0, it returns the zero vector (0,0).
func (v Vec2) Normalize() Vec2 {
	n := v.Norm()
	if n == 0 {
		return Vec2{}
	}
	inv := 1.0 / n
	return Vec2{v.X * inv, v.Y * inv}
}

// Neg returns -v.
func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

// Reflect returns v mirrored about the unit normal n: v - 2(v·n)n.
func (v Vec2) Reflect(n Vec2) Vec2 {
	return v.Sub(n.Scale(2.0 * v.Dot(n)))
}

func Distance(v1, v2 Vec2) float64 {
	return v1.Sub(v2).Norm()
}
