// Package batch evaluates catalogs of optical prescriptions: each row is
// assembled into a telescope bench, handed to the positional optimizer, and
// ranked by a combined hit/spot-size score.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/DysonLewis/Telescope/optics"
	"github.com/DysonLewis/Telescope/optimize"
)

// primaryVertexX fixes the primary mirror vertex for every evaluated bench.
const primaryVertexX = 500.0

// Prescription is one optical configuration row from a catalog. Evaluation
// results stay zero until Evaluate has run.
type Prescription struct {
	PrimaryDiameter   float64
	SecondaryDiameter float64
	PrimaryR          float64
	SecondaryR        float64
	PrimaryF          float64
	SecondaryF        float64
	PrimaryK          float64
	SecondaryK        float64
	MirrorSeparation  float64
	SystemFocalLength float64
	RowIndex          int

	BestSecondaryX float64
	BestSecondaryY float64
	CameraHits     int
	HitPercentage  float64
	RMSSpotSize    float64
	Score          float64
}

// DefaultPrescription is the built-in configuration used when no catalog is
// available.
func DefaultPrescription() Prescription {
	return Prescription{
		PrimaryDiameter:   300.0,
		SecondaryDiameter: 100.0,
		PrimaryR:          1600.0,
		SecondaryR:        -600.0,
		PrimaryF:          800.0,
		SecondaryF:        -300.0,
		PrimaryK:          -1.0,
		SecondaryK:        -3.5,
		MirrorSeparation:  450.0,
		SystemFocalLength: 2000.0,
		BestSecondaryX:    250.0,
	}
}

// BuildBench assembles the mirror set for a prescription. The hole in the
// primary clears the secondary by 5 mm; the secondary starts at its nominal
// position unless the prescription already carries an optimized one.
func BuildBench(p Prescription, detector *optics.Detector) *optics.Bench {
	primaryYMax := p.PrimaryDiameter / 2.0
	holeRadius := p.SecondaryDiameter/2.0 + 5.0
	primary := optics.NewParabolic(p.PrimaryF, -primaryYMax, primaryYMax, primaryVertexX, "Primary", holeRadius)

	secondaryX := primaryVertexX - p.PrimaryF + p.MirrorSeparation
	if p.BestSecondaryX > 0 {
		secondaryX = p.BestSecondaryX
	}
	secondaryYMax := p.SecondaryDiameter / 2.0
	secondary := optics.NewHyperbolicFromConic(
		secondaryX, p.BestSecondaryY,
		p.SecondaryR, p.SecondaryK,
		-secondaryYMax, secondaryYMax,
		true, "Secondary",
	)

	return optics.NewBench([]optics.Surface{primary, secondary, detector})
}

// Evaluate scans the secondary along the optical axis around its nominal
// position (±50 mm, step 2) and scores the prescription. The supplied
// detector is only used as a geometry template; its accumulated state is
// never touched.
func Evaluate(p Prescription, detector *optics.Detector, fan optics.Fan, tracer optics.Tracer) Prescription {
	out := p
	bench := BuildBench(p, detector.Clone())
	if bench.Secondary == nil || bench.Detector == nil {
		return out
	}

	nominalX := bench.Secondary.CenterX
	grid := optimize.GridSpec{
		XMin: nominalX - 50.0, XMax: nominalX + 50.0, XStep: 2.0,
		YMin: 0.0, YMax: 0.0, YStep: 1.0,
	}
	res := optimize.CoarseScan(bench, grid, optimize.Params{Fan: fan, Tracer: tracer})

	out.BestSecondaryX = res.BestX
	out.BestSecondaryY = res.BestY
	out.CameraHits = res.Hits
	out.HitPercentage = res.HitPercentage
	out.RMSSpotSize = res.RMSSpotSize
	// Hit percentage dominates; a tight spot breaks ties.
	out.Score = out.HitPercentage*100.0 - out.RMSSpotSize
	return out
}

// EvaluateAll scores every prescription and returns the top n by score.
// Each prescription owns its bench and scratch sensor, so evaluations run
// concurrently, bounded by GOMAXPROCS.
func EvaluateAll(ctx context.Context, prescriptions []Prescription, detector *optics.Detector, fan optics.Fan, tracer optics.Tracer, topN int) ([]Prescription, error) {
	results := make([]Prescription, len(prescriptions))
	var done atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range prescriptions {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = Evaluate(p, detector, fan, tracer)

			if n := done.Add(1); n%100 == 0 || n == int64(len(prescriptions)) {
				slog.Info("batch progress", "done", n, "total", len(prescriptions))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topN > 0 && len(results) > topN {
		results = results[:topN]
	}
	return results, nil
}
