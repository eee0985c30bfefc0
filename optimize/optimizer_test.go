package optimize

import (
	"math"
	"testing"

	"github.com/soniakeys/unit"

	"github.com/DysonLewis/Telescope/geom"
	"github.com/DysonLewis/Telescope/optics"
)

func testBench() *optics.Bench {
	primary := optics.NewParabolic(400.0, -150.0, 150.0, 500.0, "Primary", 25.0)
	b := 15.0 * math.Sqrt(2.5)
	secondary := optics.NewHyperbolic(250.0, 0.0, 15.0, b, -50.0, 50.0, true, "Secondary")
	detector := optics.NewDetector(geom.Vec2{X: 540.0, Y: 0.0}, 40.0, unit.AngleFromDeg(90.0), "Camera")
	return optics.NewBench([]optics.Surface{primary, secondary, detector})
}

func testParams() Params {
	return Params{
		Fan:    optics.Fan{StartX: -50.0, YMin: -120.0, YMax: 120.0, Count: 50},
		Tracer: optics.NewTracer(),
	}
}

func TestCoarseScanDeterministic(t *testing.T) {
	grid := GridSpec{XMin: 200.0, XMax: 300.0, XStep: 5.0, YMin: 0.0, YMax: 0.0, YStep: 1.0}

	bench := testBench()
	a := CoarseScan(bench, grid, testParams())
	b := CoarseScan(bench, grid, testParams())

	if a.BestX != b.BestX || a.BestY != b.BestY || a.Hits != b.Hits || a.RMSSpotSize != b.RMSSpotSize {
		t.Errorf("repeat scans differ: %+v vs %+v", a, b)
	}
	if len(a.ScanCurve) != len(b.ScanCurve) {
		t.Errorf("scan curve lengths differ: %d vs %d", len(a.ScanCurve), len(b.ScanCurve))
	}
	if a.BestX < grid.XMin || a.BestX > grid.XMax {
		t.Errorf("BestX = %v outside the grid [%v, %v]", a.BestX, grid.XMin, grid.XMax)
	}
}

func TestCoarseScanCurveCoversAxis(t *testing.T) {
	grid := GridSpec{XMin: 200.0, XMax: 300.0, XStep: 10.0, YMin: 0.0, YMax: 0.0, YStep: 1.0}
	res := CoarseScan(testBench(), grid, testParams())

	if len(res.ScanCurve) != 11 {
		t.Fatalf("scan curve has %d samples, want 11", len(res.ScanCurve))
	}
	for i, s := range res.ScanCurve {
		want := 200.0 + float64(i)*10.0
		if math.Abs(s.X-want) > 1e-9 {
			t.Errorf("sample %d at x=%v, want %v", i, s.X, want)
		}
	}
}

// The scan must evaluate candidates on bench copies; the caller's surfaces
// and detector stay exactly as found.
func TestCoarseScanLeavesBenchUntouched(t *testing.T) {
	bench := testBench()
	cx, cy := bench.Secondary.CenterX, bench.Secondary.CenterY

	grid := GridSpec{XMin: 200.0, XMax: 300.0, XStep: 10.0, YMin: 0.0, YMax: 0.0, YStep: 1.0}
	CoarseScan(bench, grid, testParams())

	if bench.Secondary.CenterX != cx || bench.Secondary.CenterY != cy {
		t.Errorf("secondary moved to (%v, %v)", bench.Secondary.CenterX, bench.Secondary.CenterY)
	}
	det := bench.Detector
	if len(det.HitPoints) != 0 || det.TotalRays != 0 || det.BlockedRays != 0 {
		t.Errorf("detector accumulated state: hits=%d total=%d blocked=%d",
			len(det.HitPoints), det.TotalRays, det.BlockedRays)
	}
}

func TestCoarseScanWithoutSecondary(t *testing.T) {
	detector := optics.NewDetector(geom.Vec2{X: 540.0, Y: 0.0}, 40.0, unit.AngleFromDeg(90.0), "Camera")
	bench := optics.NewBench([]optics.Surface{detector})

	grid := GridSpec{XMin: 100.0, XMax: 200.0, XStep: 10.0, YMin: 0.0, YMax: 0.0, YStep: 1.0}
	res := CoarseScan(bench, grid, testParams())

	if res.BestX != grid.XMin || res.BestY != grid.YMin {
		t.Errorf("best = (%v, %v), want the grid minimum", res.BestX, res.BestY)
	}
	if res.Hits != 0 || res.RMSSpotSize != 0 {
		t.Errorf("hits=%d rms=%v, want zeros", res.Hits, res.RMSSpotSize)
	}
}

func TestRefineStaysWithinRadius(t *testing.T) {
	spec := ClimbSpec{
		StartX:       250.0,
		StartY:       0.0,
		InitialStep:  0.5,
		SearchRadius: 3.0,
	}
	res := Refine(testBench(), spec, testParams())

	dist := math.Hypot(res.BestX-spec.StartX, res.BestY-spec.StartY)
	if dist > spec.SearchRadius+1e-9 {
		t.Errorf("best (%v, %v) is %v from the start, radius %v",
			res.BestX, res.BestY, dist, spec.SearchRadius)
	}
}

// Refine may only move when a candidate is strictly better, so its result
// never ranks below the starting position.
func TestRefineNeverWorseThanStart(t *testing.T) {
	bench := testBench()
	p := testParams()

	// A degenerate one-cell grid evaluates exactly the start position.
	start := CoarseScan(bench, GridSpec{
		XMin: 250.0, XMax: 250.0, XStep: 1.0,
		YMin: 0.0, YMax: 0.0, YStep: 1.0,
	}, p)

	res := Refine(bench, ClimbSpec{
		StartX:      250.0,
		StartY:      0.0,
		InitialStep: 0.1,
	}, p)

	if res.Hits < start.Hits {
		t.Errorf("refined hits %d below start hits %d", res.Hits, start.Hits)
	}
	if res.Hits == start.Hits && res.RMSSpotSize > start.RMSSpotSize+1e-9 {
		t.Errorf("refined RMS %v above start RMS %v", res.RMSSpotSize, start.RMSSpotSize)
	}
}

func TestBetterThanOrdering(t *testing.T) {
	cases := []struct {
		name string
		a, b evalResult
		want bool
	}{
		{"more hits wins", evalResult{hits: 10, rms: 5.0}, evalResult{hits: 9, rms: 0.1}, true},
		{"fewer hits loses", evalResult{hits: 9, rms: 0.1}, evalResult{hits: 10, rms: 5.0}, false},
		{"equal hits, smaller rms wins", evalResult{hits: 10, rms: 0.1}, evalResult{hits: 10, rms: 0.2}, true},
		{"identical is not better", evalResult{hits: 10, rms: 0.1}, evalResult{hits: 10, rms: 0.1}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := betterThan(c.a, c.b); got != c.want {
				t.Errorf("betterThan(%+v, %+v) = %v, want %v", c.a, c.b, got, c.want)
			}
		})
	}
}
