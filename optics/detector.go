package optics

import (
	"math"

	"github.com/DysonLewis/Telescope/geom"
	"github.com/soniakeys/unit"
)

// Sensor geometry of the reference camera module.
const (
	SensorWidthMM    = 11.2
	SensorHeightMM   = 6.3
	SensorDiagonalMM = 12.85
	PixelSizeMicrons = 2.9
)

// Detector is a non-reflective sensing segment. A hit terminates the ray.
// It accumulates hit points plus trace counters across a fan; ClearHits
// resets all of that state.
type Detector struct {
	surface
	Center geom.Vec2
	Width  float64
	Tilt   unit.Angle

	HitPoints   []geom.Vec2
	TotalRays   int
	BlockedRays int
}

func NewDetector(center geom.Vec2, width float64, tilt unit.Angle, name string) *Detector {
	return &Detector{
		surface: surface{name: name, active: true},
		Center:  center,
		Width:   width,
		Tilt:    tilt,
	}
}

func (d *Detector) Kind() Kind { return KindDetector }

// Clone returns a detector with the same geometry and empty accumulators.
func (d *Detector) Clone() *Detector {
	return NewDetector(d.Center, d.Width, d.Tilt, d.name)
}

// ClearHits discards the accumulated hit points and counters.
func (d *Detector) ClearHits() {
	d.HitPoints = d.HitPoints[:0]
	d.TotalRays = 0
	d.BlockedRays = 0
}

// Record appends a hit point to the accumulated list.
func (d *Detector) Record(p geom.Vec2) {
	d.HitPoints = append(d.HitPoints, p)
}

func (d *Detector) Start() geom.Vec2 {
	half := d.Width / 2.0
	return geom.Vec2{
		X: d.Center.X - half*d.Tilt.Cos(),
		Y: d.Center.Y - half*d.Tilt.Sin(),
	}
}

func (d *Detector) End() geom.Vec2 {
	half := d.Width / 2.0
	return geom.Vec2{
		X: d.Center.X + half*d.Tilt.Cos(),
		Y: d.Center.Y + half*d.Tilt.Sin(),
	}
}

// Intersect solves the plain line-line system. Both curves are linear so no
// refinement is applied, and unlike Flat the segment bounds are strict.
func (d *Detector) Intersect(ray *Ray) Intersection {
	res := miss(d)

	start := d.Start()
	seg := d.End().Sub(start)

	dx, dy := ray.Direction.X, ray.Direction.Y
	sx, sy := seg.X, seg.Y
	denom := dx*sy - dy*sx
	if math.Abs(denom) <= Epsilon {
		return res
	}

	diff := start.Sub(ray.Origin)
	t := (diff.X*sy - diff.Y*sx) / denom
	s := (diff.X*dy - diff.Y*dx) / denom
	if t <= Epsilon || s < 0.0 || s > 1.0 {
		return res
	}

	res.Hit = true
	res.Point = ray.At(t)
	res.Distance = t
	// No reflection happens here, so the normal is left zero.
	return res
}

// Centroid returns the arithmetic mean of the accumulated hit points.
func (d *Detector) Centroid() geom.Vec2 {
	if len(d.HitPoints) == 0 {
		return geom.Vec2{}
	}
	var sum geom.Vec2
	for _, p := range d.HitPoints {
		sum = sum.Add(p)
	}
	return sum.Scale(1.0 / float64(len(d.HitPoints)))
}

// RMSSpotSize returns the root-mean-square distance of hit points from
// their centroid. Zero for fewer than two points.
func (d *Detector) RMSSpotSize() float64 {
	if len(d.HitPoints) < 2 {
		return 0.0
	}
	center := d.Centroid()
	sumSq := 0.0
	for _, p := range d.HitPoints {
		dv := p.Sub(center)
		sumSq += dv.Dot(dv)
	}
	return math.Sqrt(sumSq / float64(len(d.HitPoints)))
}

// FocusSpread returns twice the maximum deviation of hit points from the
// centroid along y. A coarser single-axis alternative to RMSSpotSize.
func (d *Detector) FocusSpread() float64 {
	if len(d.HitPoints) < 2 {
		return 0.0
	}
	centerY := d.Centroid().Y
	maxSpread := 0.0
	for _, p := range d.HitPoints {
		if dev := math.Abs(p.Y - centerY); dev > maxSpread {
			maxSpread = dev
		}
	}
	return maxSpread * 2.0
}

// EffectiveFocalLength of the assembled system. For the present single
// conjugate model it equals the primary's focal length.
func (d *Detector) EffectiveFocalLength(primaryFocalLength float64) float64 {
	return primaryFocalLength
}

// AngularResolution returns the sky angle covered by one pixel at the given
// effective focal length (mm). Callers typically read it in arcseconds via
// Sec.
func (d *Detector) AngularResolution(effectiveFocalLength float64) unit.Angle {
	pixelSizeMM := PixelSizeMicrons / 1000.0
	return unit.Angle(pixelSizeMM / effectiveFocalLength)
}

// FieldOfView returns the sky angle spanned by the sensor width at the given
// effective focal length (mm), usually read in arcminutes via Min.
func (d *Detector) FieldOfView(effectiveFocalLength float64) unit.Angle {
	return unit.Angle(SensorWidthMM / effectiveFocalLength)
}
