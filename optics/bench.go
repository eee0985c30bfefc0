package optics

// Bench is the ordered surface set of one telescope configuration, with
// typed handles to the tunable secondary and the detector so callers never
// have to scan the list and type-assert.
type Bench struct {
	Surfaces  []Surface
	Secondary *Hyperbolic
	Detector  *Detector
}

// NewBench wires the handles to the first hyperbolic and detector surfaces
// in order. Either handle may stay nil; the optimizer treats that as a
// telescope with no focusing stage to tune.
func NewBench(surfaces []Surface) *Bench {
	b := &Bench{Surfaces: surfaces}
	for _, s := range surfaces {
		switch v := s.(type) {
		case *Hyperbolic:
			if b.Secondary == nil {
				b.Secondary = v
			}
		case *Detector:
			if b.Detector == nil {
				b.Detector = v
			}
		}
	}
	return b
}

// WithSecondary returns an evaluation copy of the bench: the secondary sits
// at (x, y) and the detector is a fresh scratch sensor. The receiver and its
// surfaces are left exactly as found, so candidate evaluations never leak
// into a bench the caller is still rendering.
func (b *Bench) WithSecondary(x, y float64) *Bench {
	if b.Secondary == nil || b.Detector == nil {
		return b
	}

	secondary := b.Secondary.WithCenter(x, y)
	detector := b.Detector.Clone()

	surfaces := make([]Surface, len(b.Surfaces))
	for i, s := range b.Surfaces {
		switch s {
		case Surface(b.Secondary):
			surfaces[i] = secondary
		case Surface(b.Detector):
			surfaces[i] = detector
		default:
			surfaces[i] = s
		}
	}
	return &Bench{Surfaces: surfaces, Secondary: secondary, Detector: detector}
}
