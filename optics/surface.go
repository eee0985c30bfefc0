package optics

import (
	"math"

	"github.com/DysonLewis/Telescope/geom"
)

// Kind identifies the closed set of surface variants.
type Kind int

const (
	KindParabolic Kind = iota
	KindHyperbolic
	KindFlat
	KindDetector
)

func (k Kind) String() string {
	switch k {
	case KindParabolic:
		return "parabolic"
	case KindHyperbolic:
		return "hyperbolic"
	case KindFlat:
		return "flat"
	case KindDetector:
		return "detector"
	}
	return "unknown"
}

// Surface is one optical element in a bench. Implementations are exactly
// the four kinds above.
type Surface interface {
	Name() string
	Kind() Kind
	IsActive() bool
	Intersect(ray *Ray) Intersection
}

// Intersection is the transient result of one ray-surface query. The normal
// always opposes the incoming direction; Distance holds the smallest
// strictly positive root, or +MaxFloat64 when there is no hit.
type Intersection struct {
	Hit      bool
	Point    geom.Vec2
	Normal   geom.Vec2
	Distance float64
	Surface  Surface
}

func miss(s Surface) Intersection {
	return Intersection{Distance: math.MaxFloat64, Surface: s}
}

// orientAgainst flips n when needed so it points back toward the incoming
// ray.
func orientAgainst(n, dir geom.Vec2) geom.Vec2 {
	if dir.Dot(n) > 0 {
		return n.Neg()
	}
	return n
}

// surface carries the attributes common to every kind.
type surface struct {
	name   string
	active bool
}

func (s *surface) Name() string     { return s.name }
func (s *surface) IsActive() bool   { return s.active }
func (s *surface) SetActive(a bool) { s.active = a }
