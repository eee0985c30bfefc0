// Package optimize searches for the secondary-mirror placement that lands
// the most rays on the detector with the tightest spot. Candidate positions
// are evaluated against copies of the caller's bench, so the shared surface
// set is never mutated.
package optimize

import (
	"math"

	lru "github.com/hashicorp/golang-lru"

	"github.com/DysonLewis/Telescope/optics"
)

// Params carries the ray-fan and tracing knobs shared by both search phases.
type Params struct {
	Fan    optics.Fan
	Tracer optics.Tracer
}

// GridSpec is the coarse scan domain: inclusive ranges and step sizes for
// the secondary's x and y.
type GridSpec struct {
	XMin, XMax, XStep float64
	YMin, YMax, YStep float64
}

// ClimbSpec configures the fine hill-climb.
type ClimbSpec struct {
	StartX, StartY float64
	InitialStep    float64
	// MinStep stops the climb once halving drops the step below it.
	// Defaults to 1e-3.
	MinStep float64
	// SearchRadius, when positive, keeps candidates within that distance of
	// the start position.
	SearchRadius  float64
	MaxIterations int
}

// ScanSample is one diagnostic point of the coarse scan curve, taken along
// the y ≈ 0 slice.
type ScanSample struct {
	X    float64
	Hits int
}

// Result reports the outcome of a positional search.
type Result struct {
	BestX, BestY  float64
	Hits          int
	HitPercentage float64
	RMSSpotSize   float64
	ScanCurve     []ScanSample
}

type evalKey struct{ x, y float64 }

type evalResult struct {
	hits int
	rms  float64
}

// evaluator traces the full fan against candidate secondary positions. Each
// evaluation runs on a bench copy with a scratch detector; geometry is
// deterministic, so results can be cached by position.
type evaluator struct {
	bench  *optics.Bench
	params Params
	cache  *lru.Cache
}

func newEvaluator(bench *optics.Bench, p Params, cacheSize int) *evaluator {
	ev := &evaluator{bench: bench, params: p}
	if cacheSize > 0 {
		ev.cache, _ = lru.New(cacheSize)
	}
	return ev
}

func (e *evaluator) at(x, y float64) evalResult {
	key := evalKey{x, y}
	if e.cache != nil {
		if v, ok := e.cache.Get(key); ok {
			return v.(evalResult)
		}
	}

	trial := e.bench.WithSecondary(x, y)
	for _, ray := range e.params.Fan.Rays() {
		e.params.Tracer.Trace(ray, trial)
	}
	res := evalResult{
		hits: len(trial.Detector.HitPoints),
		rms:  trial.Detector.RMSSpotSize(),
	}

	if e.cache != nil {
		e.cache.Add(key, res)
	}
	return res
}

// betterThan ranks candidates by hit count first, then by RMS spot size.
// Both search phases and the batch evaluator share this ordering.
func betterThan(a, b evalResult) bool {
	if a.hits != b.hits {
		return a.hits > b.hits
	}
	return a.rms < b.rms
}

// CoarseScan walks the full Cartesian grid of candidate positions. Among
// candidates whose hit count reaches at least half the fan, the smallest
// RMS wins; if none reaches that threshold, the first candidate achieving
// the observed maximum hit count is reported instead. A bench without a
// secondary or detector yields a zero result anchored at the grid minimum.
func CoarseScan(bench *optics.Bench, grid GridSpec, p Params) Result {
	result := Result{BestX: grid.XMin, BestY: grid.YMin}
	if bench == nil || bench.Secondary == nil || bench.Detector == nil {
		return result
	}

	ev := newEvaluator(bench, p, 0)

	type candidate struct {
		x, y float64
		eval evalResult
	}
	var best, firstMax *candidate
	maxHits := 0
	threshold := p.Fan.Count / 2

	for x := grid.XMin; x <= grid.XMax; x += grid.XStep {
		for y := grid.YMin; y <= grid.YMax; y += grid.YStep {
			r := ev.at(x, y)

			if math.Abs(y) < 0.01 {
				result.ScanCurve = append(result.ScanCurve, ScanSample{X: x, Hits: r.hits})
			}
			if r.hits > maxHits {
				maxHits = r.hits
				firstMax = &candidate{x, y, r}
			}
			if r.hits >= threshold && (best == nil || r.rms < best.eval.rms) {
				best = &candidate{x, y, r}
			}
		}
	}

	pick := best
	if pick == nil {
		pick = firstMax
	}
	if pick == nil {
		return result
	}

	result.BestX = pick.x
	result.BestY = pick.y
	result.Hits = pick.eval.hits
	result.RMSSpotSize = pick.eval.rms
	if p.Fan.Count > 0 {
		result.HitPercentage = 100.0 * float64(pick.eval.hits) / float64(p.Fan.Count)
	}
	return result
}

// Refine hill-climbs from a starting position: the 8 neighbors at the
// current step (diagonals scaled by 1/√2 so all are equidistant) are tested,
// the best accepted, and the step halves whenever no neighbor improves.
// Stops below MinStep or at the iteration cap.
func Refine(bench *optics.Bench, spec ClimbSpec, p Params) Result {
	result := Result{BestX: spec.StartX, BestY: spec.StartY}
	if bench == nil || bench.Secondary == nil || bench.Detector == nil {
		return result
	}

	const diag = 1.0 / math.Sqrt2
	directions := [8][2]float64{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{diag, diag}, {-diag, diag}, {diag, -diag}, {-diag, -diag},
	}

	minStep := spec.MinStep
	if minStep <= 0 {
		minStep = 1e-3
	}
	maxIter := spec.MaxIterations
	if maxIter <= 0 {
		maxIter = 2500
	}

	ev := newEvaluator(bench, p, 512)

	bestX, bestY := spec.StartX, spec.StartY
	best := ev.at(bestX, bestY)
	step := spec.InitialStep

	for iter := 0; iter < maxIter && step >= minStep; iter++ {
		improved := false
		for _, dir := range directions {
			tx := bestX + dir[0]*step
			ty := bestY + dir[1]*step
			if spec.SearchRadius > 0 {
				ddx, ddy := tx-spec.StartX, ty-spec.StartY
				if math.Hypot(ddx, ddy) > spec.SearchRadius {
					continue
				}
			}

			if r := ev.at(tx, ty); betterThan(r, best) {
				best = r
				bestX, bestY = tx, ty
				improved = true
			}
		}
		if !improved {
			step *= 0.5
		}
	}

	result.BestX = bestX
	result.BestY = bestY
	result.Hits = best.hits
	result.RMSSpotSize = best.rms
	if p.Fan.Count > 0 {
		result.HitPercentage = 100.0 * float64(best.hits) / float64(p.Fan.Count)
	}
	return result
}
