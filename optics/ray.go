package optics

import (
	"math"

	"github.com/DysonLewis/Telescope/geom"
)

// Epsilon guards denominator and degeneracy checks throughout the solver.
// Parametric distances at or below it count as behind the ray origin.
const Epsilon = 1e-6

// Ray is a directed segment with a growing polyline path. Bounces counts
// reflections; -1 marks a ray obstructed by the secondary before it ever
// reached the primary.
type Ray struct {
	Origin    geom.Vec2
	Direction geom.Vec2
	Path      []geom.Vec2
	Bounces   int
}

// NewRay constructs a ray at origin heading along dir. The direction is
// normalized; the path starts at the origin.
func NewRay(origin, dir geom.Vec2) *Ray {
	r := &Ray{Origin: origin, Direction: dir.Normalize()}
	r.Path = append(r.Path, origin)
	return r
}

// At returns the point origin + t*direction.
func (r *Ray) At(t float64) geom.Vec2 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Blocked reports whether the ray was obstructed on its first bounce.
func (r *Ray) Blocked() bool {
	return r.Bounces < 0
}

// Reflect records the hit point and redirects the ray by the reflection law
// d' = d - 2(d·n)n. The new origin is nudged along the normal, scaled to the
// hit point magnitude, so the ray cannot re-intersect the same surface
// through floating round-off.
func (r *Ray) Reflect(hit, normal geom.Vec2) {
	r.Path = append(r.Path, hit)
	r.Direction = r.Direction.Reflect(normal)

	offset := 1e-5 * (math.Abs(hit.X) + math.Abs(hit.Y) + 1.0)
	r.Origin = hit.Add(normal.Scale(offset))
	r.Bounces++
}

// Extend appends the point at parametric distance length to the path.
// Used to draw rays that leave the system without hitting anything.
func (r *Ray) Extend(length float64) {
	r.Path = append(r.Path, r.At(length))
}
