package optics

import (
	"math"

	"github.com/DysonLewis/Telescope/geom"
	"github.com/soniakeys/unit"
)

// Flat is a plane mirror segment described by its center, tilt and length.
type Flat struct {
	surface
	Center geom.Vec2
	Tilt   unit.Angle
	Length float64
}

func NewFlat(center geom.Vec2, tilt unit.Angle, length float64, name string) *Flat {
	return &Flat{
		surface: surface{name: name, active: true},
		Center:  center,
		Tilt:    tilt,
		Length:  length,
	}
}

func (f *Flat) Kind() Kind { return KindFlat }

// Start returns the segment endpoint below/left of the center.
func (f *Flat) Start() geom.Vec2 {
	half := f.Length / 2.0
	return geom.Vec2{
		X: f.Center.X - half*f.Tilt.Cos(),
		Y: f.Center.Y - half*f.Tilt.Sin(),
	}
}

// End returns the segment endpoint above/right of the center.
func (f *Flat) End() geom.Vec2 {
	half := f.Length / 2.0
	return geom.Vec2{
		X: f.Center.X + half*f.Tilt.Cos(),
		Y: f.Center.Y + half*f.Tilt.Sin(),
	}
}

// Normal returns the unit normal perpendicular to the segment.
func (f *Flat) Normal() geom.Vec2 {
	return geom.Vec2{X: -f.Tilt.Sin(), Y: f.Tilt.Cos()}
}

func (f *Flat) Intersect(ray *Ray) Intersection {
	res := miss(f)

	start := f.Start()
	seg := f.End().Sub(start)

	dx, dy := ray.Direction.X, ray.Direction.Y
	mx, my := seg.X, seg.Y
	denom := dx*my - dy*mx
	if math.Abs(denom) <= Epsilon {
		return res
	}

	diff := start.Sub(ray.Origin)
	t := (diff.X*my - diff.Y*mx) / denom
	s := (diff.X*dy - diff.Y*dx) / denom

	// A small margin past the literal endpoints models placement slack.
	if t <= Epsilon || s < -0.05 || s > 1.05 {
		return res
	}

	// Fixed refinement against the segment-local parametrization, correcting
	// round-off rather than curvature.
	for i := 0; i < 2; i++ {
		hit := ray.At(t)
		sHit := ((hit.X-start.X)*mx + (hit.Y-start.Y)*my) / (mx*mx + my*my)
		onSeg := geom.Vec2{X: start.X + sHit*mx, Y: start.Y + sHit*my}
		fv := (hit.X-onSeg.X)*(-my) + (hit.Y-onSeg.Y)*mx
		fPrime := -dx*my + dy*mx
		if math.Abs(fPrime) > Epsilon {
			t -= fv / fPrime
		}
	}

	res.Hit = true
	res.Point = ray.At(t)
	res.Normal = orientAgainst(f.Normal(), ray.Direction)
	res.Distance = t
	return res
}
