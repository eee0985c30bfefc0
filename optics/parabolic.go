package optics

import (
	"math"

	"github.com/DysonLewis/Telescope/geom"
)

// Parabolic is a concave mirror with cross-section x = vertexX - y²/(4f).
// A nonzero HoleRadius cuts a central aperture that lets light pass through
// instead of reflecting (Cassegrain exit hole).
type Parabolic struct {
	surface
	FocalLength float64
	YMin, YMax  float64
	VertexX     float64
	HoleRadius  float64
}

func NewParabolic(focalLength, yMin, yMax, vertexX float64, name string, holeRadius float64) *Parabolic {
	return &Parabolic{
		surface:     surface{name: name, active: true},
		FocalLength: focalLength,
		YMin:        yMin,
		YMax:        yMax,
		VertexX:     vertexX,
		HoleRadius:  holeRadius,
	}
}

func (p *Parabolic) Kind() Kind { return KindParabolic }

// XAt returns the surface x coordinate at height y.
func (p *Parabolic) XAt(y float64) float64 {
	return p.VertexX - y*y/(4.0*p.FocalLength)
}

// NormalAt returns the unit surface normal at height y, by implicit
// differentiation: tangent (dx/dy, 1) with dx/dy = -y/(2f).
func (p *Parabolic) NormalAt(y float64) geom.Vec2 {
	return geom.Vec2{X: 1.0, Y: y / (2.0 * p.FocalLength)}.Normalize()
}

func (p *Parabolic) Intersect(ray *Ray) Intersection {
	res := miss(p)

	ox, oy := ray.Origin.X, ray.Origin.Y
	dx, dy := ray.Direction.X, ray.Direction.Y

	// Substituting the parametric ray into x = vertexX - y²/(4f) gives a
	// quadratic a·t² + b·t + c = 0.
	a := dy * dy / (4.0 * p.FocalLength)
	b := dx + oy*dy/(2.0*p.FocalLength)
	c := ox - p.VertexX + oy*oy/(4.0*p.FocalLength)

	t := solveQuadratic(a, b, c)
	if t <= Epsilon {
		return res
	}
	t = refineRoot(t, c, b, a)

	yHit := oy + t*dy
	if yHit < p.YMin-Epsilon || yHit > p.YMax+Epsilon {
		return res
	}
	if p.HoleRadius > 0 && math.Abs(yHit) < p.HoleRadius {
		// Ray passes through the central aperture.
		return res
	}

	res.Hit = true
	res.Point = geom.Vec2{X: ox + t*dx, Y: yHit}
	res.Normal = orientAgainst(p.NormalAt(yHit), ray.Direction)
	res.Distance = t
	return res
}
