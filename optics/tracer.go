package optics

import (
	"math"

	"github.com/DysonLewis/Telescope/geom"
)

// Fan describes an evenly spaced bundle of horizontal rays entering the
// tube, spanning [YMin, YMax] from x = StartX.
type Fan struct {
	StartX     float64
	YMin, YMax float64
	Count      int
}

// Rays generates the fan. A single-ray fan fires at YMin.
func (f Fan) Rays() []*Ray {
	rays := make([]*Ray, 0, f.Count)
	for i := 0; i < f.Count; i++ {
		y := f.YMin
		if f.Count > 1 {
			y += float64(i) * (f.YMax - f.YMin) / float64(f.Count-1)
		}
		rays = append(rays, NewRay(geom.Vec2{X: f.StartX, Y: y}, geom.Vec2{X: 1.0}))
	}
	return rays
}

// Tracer propagates rays through a bench with a bounded bounce budget.
type Tracer struct {
	// MaxBounces caps reflections per ray.
	MaxBounces int
	// ReflectLimit is the bounce index from which only the detector stays
	// eligible; higher-order reflections count as negligible stray light.
	ReflectLimit int
	// ExtendLength is how far escaping rays are drawn past their last hit.
	ExtendLength float64
}

// NewTracer returns a tracer with the reference defaults.
func NewTracer() Tracer {
	return Tracer{MaxBounces: 4, ReflectLimit: 2, ExtendLength: 2000.0}
}

// Trace runs one ray through the bench until it reaches the detector, gets
// obstructed, escapes, or exhausts the bounce budget. Detector book-keeping:
// every non-obstructed ray increments TotalRays, obstructed rays increment
// BlockedRays instead.
func (tr Tracer) Trace(ray *Ray, bench *Bench) {
	defer func() {
		if !ray.Blocked() && bench.Detector != nil {
			bench.Detector.TotalRays++
		}
	}()

	for bounce := 0; bounce < tr.MaxBounces; bounce++ {
		closest := Intersection{Distance: math.MaxFloat64}
		detectorOnly := bounce >= tr.ReflectLimit

		// The detector competes on distance like everything else; it gets
		// no implicit priority.
		for _, s := range bench.Surfaces {
			if !s.IsActive() {
				continue
			}
			if detectorOnly && s.Kind() != KindDetector {
				continue
			}
			if isect := s.Intersect(ray); isect.Hit && isect.Distance < closest.Distance {
				closest = isect
			}
		}

		if !closest.Hit {
			ray.Extend(tr.ExtendLength)
			return
		}

		switch {
		case closest.Surface.Kind() == KindDetector:
			ray.Path = append(ray.Path, closest.Point)
			if det, ok := closest.Surface.(*Detector); ok {
				det.Record(closest.Point)
			}
			return
		case bounce == 0 && closest.Surface.Kind() == KindHyperbolic:
			// The secondary's back obstructs light that never reached the
			// primary first.
			ray.Bounces = -1
			if bench.Detector != nil {
				bench.Detector.BlockedRays++
			}
			return
		default:
			ray.Reflect(closest.Point, closest.Normal)
		}
	}

	// Bounce budget exhausted without reaching the detector.
	ray.Extend(tr.ExtendLength)
}

// TraceFan clears the detector and traces a full fan, returning the rays
// for rendering.
func (tr Tracer) TraceFan(fan Fan, bench *Bench) []*Ray {
	if bench.Detector != nil {
		bench.Detector.ClearHits()
	}
	rays := fan.Rays()
	for _, ray := range rays {
		tr.Trace(ray, bench)
	}
	return rays
}
