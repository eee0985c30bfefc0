package optics

import (
	"math"

	"github.com/DysonLewis/Telescope/geom"
)

// Hyperbolic is a convex mirror with cross-section
// (x-cx)²/a² - (y-cy)²/b² = 1. Only one branch of the hyperbola is
// physically present; LeftBranch selects which.
type Hyperbolic struct {
	surface
	CenterX, CenterY float64
	A, B             float64
	YMin, YMax       float64
	LeftBranch       bool
}

func NewHyperbolic(cx, cy, semiMajor, semiMinor, yMin, yMax float64, leftBranch bool, name string) *Hyperbolic {
	return &Hyperbolic{
		surface:    surface{name: name, active: true},
		CenterX:    cx,
		CenterY:    cy,
		A:          semiMajor,
		B:          semiMinor,
		YMin:       yMin,
		YMax:       yMax,
		LeftBranch: leftBranch,
	}
}

// NewHyperbolicFromConic derives the semi-axes from a radius of curvature R
// and conic constant k: a = |R|/2, b = a·√|k+1|.
func NewHyperbolicFromConic(cx, cy, r, k, yMin, yMax float64, leftBranch bool, name string) *Hyperbolic {
	a := math.Abs(r) / 2.0
	b := a * math.Sqrt(math.Abs(k+1.0))
	return NewHyperbolic(cx, cy, a, b, yMin, yMax, leftBranch, name)
}

func (h *Hyperbolic) Kind() Kind { return KindHyperbolic }

// WithCenter returns a copy of the mirror moved to (x, y). The receiver is
// untouched, which is what lets the optimizer evaluate candidate positions
// without mutating the caller's bench.
func (h *Hyperbolic) WithCenter(x, y float64) *Hyperbolic {
	moved := *h
	moved.CenterX = x
	moved.CenterY = y
	return &moved
}

// XAt returns the surface x coordinate at height y on the configured branch.
func (h *Hyperbolic) XAt(y float64) float64 {
	yRel := y - h.CenterY
	xOffset := h.A * math.Sqrt(1.0+(yRel*yRel)/(h.B*h.B))
	if h.LeftBranch {
		return h.CenterX - xOffset
	}
	return h.CenterX + xOffset
}

// NormalAt returns the unit surface normal at height y. At the vertex the
// normal is horizontal; elsewhere it follows dx/dy = (y-cy)·a² / ((x-cx)·b²),
// with the sign flipped on the left branch.
func (h *Hyperbolic) NormalAt(y float64) geom.Vec2 {
	xRel := h.XAt(y) - h.CenterX
	if math.Abs(xRel) < Epsilon {
		if h.LeftBranch {
			return geom.Vec2{X: -1.0}
		}
		return geom.Vec2{X: 1.0}
	}

	yRel := y - h.CenterY
	dxdy := (yRel * h.A * h.A) / (xRel * h.B * h.B)
	n := geom.Vec2{X: 1.0, Y: -dxdy}.Normalize()
	if h.LeftBranch {
		n = n.Neg()
	}
	return n
}

func (h *Hyperbolic) Intersect(ray *Ray) Intersection {
	res := miss(h)

	// Work in coordinates centered on the hyperbola.
	ox := ray.Origin.X - h.CenterX
	oy := ray.Origin.Y - h.CenterY
	dx, dy := ray.Direction.X, ray.Direction.Y

	qa := (dx*dx)/(h.A*h.A) - (dy*dy)/(h.B*h.B)
	qb := 2.0 * ((ox*dx)/(h.A*h.A) - (oy*dy)/(h.B*h.B))
	qc := (ox*ox)/(h.A*h.A) - (oy*oy)/(h.B*h.B) - 1.0

	t := -1.0
	if math.Abs(qa) < Epsilon {
		if math.Abs(qb) > Epsilon {
			t = -qc / qb
		}
	} else {
		disc := qb*qb - 4.0*qa*qc
		if disc >= 0 {
			sqrtDisc := math.Sqrt(disc)
			t1 := (-qb - sqrtDisc) / (2.0 * qa)
			t2 := (-qb + sqrtDisc) / (2.0 * qa)

			switch {
			case t1 > Epsilon && t2 > Epsilon:
				// Both roots are ahead of the ray; the branch decides.
				// Nearest-root selection would be wrong here because both
				// roots can lie on the absent branch's side.
				x1 := ox + t1*dx
				x2 := ox + t2*dx
				if h.LeftBranch == (x1 < x2) {
					t = t1
				} else {
					t = t2
				}
			case t1 > Epsilon:
				t = t1
			case t2 > Epsilon:
				t = t2
			}
		}
	}

	if t <= Epsilon {
		return res
	}
	t = refineRoot(t, qc, qb, qa)

	yHit := oy + t*dy + h.CenterY
	if yHit < h.YMin-Epsilon || yHit > h.YMax+Epsilon {
		return res
	}

	res.Hit = true
	res.Point = geom.Vec2{X: ox + t*dx + h.CenterX, Y: yHit}
	res.Normal = orientAgainst(h.NormalAt(yHit), ray.Direction)
	res.Distance = t
	return res
}
