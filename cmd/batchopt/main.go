// Batch front-end: evaluates a catalog of optical prescriptions and writes
// the top configurations, ranked by score, to a results CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/DysonLewis/Telescope/batch"
	"github.com/DysonLewis/Telescope/geom"
	"github.com/DysonLewis/Telescope/optics"
	"github.com/soniakeys/unit"
)

func main() {
	in := flag.String("in", "cassegrain_optics_grid.csv", "Input catalog CSV path")
	out := flag.String("out", "optimization_results.csv", "Output results CSV path")
	topN := flag.Int("top", 20, "Number of top configurations to keep")
	rays := flag.Int("rays", 500, "Rays per candidate evaluation")
	flag.Parse()

	prescriptions, err := batch.LoadPrescriptions(*in)
	if err != nil || len(prescriptions) == 0 {
		// A missing or empty catalog falls back to the built-in default
		// rather than failing.
		slog.Warn("no catalog available, using default prescription", "path", *in, "err", err)
		prescriptions = []batch.Prescription{batch.DefaultPrescription()}
	}

	detector := optics.NewDetector(
		geom.Vec2{X: 540.0, Y: 0.0},
		40.0,
		unit.AngleFromDeg(90.0),
		"Camera",
	)
	fan := optics.Fan{StartX: -50.0, YMin: -120.0, YMax: 120.0, Count: *rays}
	tracer := optics.NewTracer()

	fmt.Printf("Evaluating %d configurations...\n", len(prescriptions))
	results, err := batch.EvaluateAll(context.Background(), prescriptions, detector, fan, tracer, *topN)
	if err != nil {
		log.Fatalf("Batch evaluation failed: %v", err)
	}

	for i, r := range results {
		if i >= 10 {
			break
		}
		fmt.Printf("\nRank #%d:\n", i+1)
		fmt.Printf("  Score: %.2f\n", r.Score)
		fmt.Printf("  Camera Hits: %d (%.2f%%)\n", r.CameraHits, r.HitPercentage)
		fmt.Printf("  RMS Spot: %.2f mm\n", r.RMSSpotSize)
		fmt.Printf("  Primary: %.1fmm diam, f=%.1fmm\n", r.PrimaryDiameter, r.PrimaryF)
		fmt.Printf("  Secondary: %.1fmm diam, R=%.1fmm, k=%.2f\n", r.SecondaryDiameter, r.SecondaryR, r.SecondaryK)
		fmt.Printf("  Best Secondary Pos: X=%.2f, Y=%.2f\n", r.BestSecondaryX, r.BestSecondaryY)
	}

	if err := batch.SaveResults(results, *out); err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}
	fmt.Printf("\nResults saved to %s\n", *out)
}
