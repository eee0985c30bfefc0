package optics

import (
	"math"
	"testing"

	"github.com/DysonLewis/Telescope/geom"
)

// TestParabolicFocusing reflects axis-parallel rays off the primary and
// checks each reflected line passes through the focal point
// (vertexX - f, 0).
func TestParabolicFocusing(t *testing.T) {
	const (
		focal   = 400.0
		vertexX = 500.0
	)
	p := NewParabolic(focal, -150.0, 150.0, vertexX, "Primary", 0.0)
	focusX := vertexX - focal

	for _, y := range []float64{-140, -75, -10, 5, 60, 149} {
		ray := NewRay(geom.Vec2{X: -50.0, Y: y}, geom.Vec2{X: 1.0})
		isect := p.Intersect(ray)
		if !isect.Hit {
			t.Fatalf("y=%v: expected a hit", y)
		}

		ray.Reflect(isect.Point, isect.Normal)
		// Extend the reflected ray to the focal plane.
		tFocus := (focusX - ray.Origin.X) / ray.Direction.X
		yAtFocus := ray.Origin.Y + tFocus*ray.Direction.Y
		if math.Abs(yAtFocus) > 1e-3 {
			t.Errorf("y=%v: reflected ray crosses focal plane at y=%v, want 0", y, yAtFocus)
		}
	}
}

// TestParabolicAperture checks rays landing inside the central hole pass
// through instead of reflecting.
func TestParabolicAperture(t *testing.T) {
	p := NewParabolic(400.0, -150.0, 150.0, 500.0, "Primary", 25.0)

	cases := []struct {
		name string
		y    float64
		hit  bool
	}{
		{"through the hole", 10.0, false},
		{"hole edge inside", 24.9, false},
		{"just outside hole", 25.1, true},
		{"mirror face", 100.0, true},
		{"past the rim", 160.0, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ray := NewRay(geom.Vec2{X: -50.0, Y: c.y}, geom.Vec2{X: 1.0})
			if got := p.Intersect(ray).Hit; got != c.hit {
				t.Errorf("y=%v: hit = %v, want %v", c.y, got, c.hit)
			}
		})
	}
}

// A horizontal ray has a vanishing quadratic term, exercising the linear
// fallback in the solver.
func TestParabolicLinearFallback(t *testing.T) {
	p := NewParabolic(400.0, -150.0, 150.0, 500.0, "Primary", 0.0)
	ray := NewRay(geom.Vec2{X: 0.0, Y: 50.0}, geom.Vec2{X: 1.0})

	isect := p.Intersect(ray)
	if !isect.Hit {
		t.Fatal("expected a hit")
	}
	wantX := p.XAt(50.0)
	if math.Abs(isect.Point.X-wantX) > 1e-6 {
		t.Errorf("hit x = %v, want %v", isect.Point.X, wantX)
	}
	if math.Abs(isect.Point.Y-50.0) > 1e-6 {
		t.Errorf("hit y = %v, want 50", isect.Point.Y)
	}
}

func TestParabolicNormalOpposesRay(t *testing.T) {
	p := NewParabolic(400.0, -150.0, 150.0, 500.0, "Primary", 0.0)
	for _, y := range []float64{-120.0, 0.0, 80.0} {
		ray := NewRay(geom.Vec2{X: -50.0, Y: y}, geom.Vec2{X: 1.0})
		isect := p.Intersect(ray)
		if !isect.Hit {
			t.Fatalf("y=%v: expected a hit", y)
		}
		if isect.Normal.Dot(ray.Direction) >= 0 {
			t.Errorf("y=%v: normal %v does not oppose ray direction", y, isect.Normal)
		}
		if math.Abs(isect.Normal.Norm()-1.0) > 1e-9 {
			t.Errorf("y=%v: |normal| = %v, want 1", y, isect.Normal.Norm())
		}
	}
}
