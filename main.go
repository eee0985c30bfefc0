package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/DysonLewis/Telescope/geom"
	"github.com/DysonLewis/Telescope/optics"
	"github.com/DysonLewis/Telescope/optimize"
	"github.com/DysonLewis/Telescope/plot"
	"github.com/soniakeys/unit"
)

type config struct {
	rays                 *int
	rayStartX            *float64
	rayYMin, rayYMax     *float64
	maxBounces           *int
	scanXMin, scanXMax   *float64
	scanXStep            *float64
	scanYMin, scanYMax   *float64
	scanYStep            *float64
	fineStep, fineRadius *float64
	fineIters            *int
	size                 *int
	out                  *string
	showHelp             *bool
}

func defineFlags() config {
	return config{
		rays:      flag.Int("rays", 50, "Number of rays in the fan"),
		rayStartX: flag.Float64("ray-x", -50.0, "Ray fan start x (mm)"),
		rayYMin:   flag.Float64("ray-ymin", -120.0, "Ray fan lower y (mm)"),
		rayYMax:   flag.Float64("ray-ymax", 120.0, "Ray fan upper y (mm)"),

		maxBounces: flag.Int("bounces", 4, "Maximum reflections per ray"),

		scanXMin:  flag.Float64("scan-xmin", 50.0, "Coarse scan: secondary x lower bound (mm)"),
		scanXMax:  flag.Float64("scan-xmax", 450.0, "Coarse scan: secondary x upper bound (mm)"),
		scanXStep: flag.Float64("scan-xstep", 0.5, "Coarse scan: x step (mm)"),
		scanYMin:  flag.Float64("scan-ymin", 0.0, "Coarse scan: secondary y lower bound (mm)"),
		scanYMax:  flag.Float64("scan-ymax", 0.0, "Coarse scan: secondary y upper bound (mm)"),
		scanYStep: flag.Float64("scan-ystep", 1.0, "Coarse scan: y step (mm)"),

		fineStep:   flag.Float64("fine-step", 0.1, "Fine tune: initial step (mm)"),
		fineRadius: flag.Float64("fine-radius", 3.0, "Fine tune: search radius around the coarse best (mm)"),
		fineIters:  flag.Int("fine-iters", 2500, "Fine tune: iteration cap"),

		size: flag.Int("size", 1200, "Output diagram width in pixels"),
		out:  flag.String("out", "telescope.png", "Output PNG file path"),

		showHelp: flag.Bool("h", false, "Show this help message"),
	}
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `Cassegrain Ray Tracer - Secondary Position Optimizer

Usage:
  %[1]s [options]

`, os.Args[0])

	printGroup("Ray Fan", []string{"rays", "ray-x", "ray-ymin", "ray-ymax", "bounces"})
	printGroup("Coarse Scan", []string{"scan-xmin", "scan-xmax", "scan-xstep", "scan-ymin", "scan-ymax", "scan-ystep"})
	printGroup("Fine Tune", []string{"fine-step", "fine-radius", "fine-iters"})
	printGroup("Output", []string{"size", "out"})
	printGroup("Misc", []string{"h"})
}

func printGroup(title string, keys []string) {
	fmt.Fprintf(os.Stderr, "%s:\n", title)
	for _, name := range keys {
		if f := flag.Lookup(name); f != nil {
			fmt.Fprintf(os.Stderr, "  -%-10s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(os.Stderr)
}

// defaultBench assembles the reference telescope: an f=400 primary with a
// 25 mm exit hole, a convex hyperbolic secondary ahead of the primary
// focus, and a vertical sensor behind the primary.
func defaultBench() *optics.Bench {
	primary := optics.NewParabolic(400.0, -150.0, 150.0, 500.0, "Primary", 25.0)

	// Semi-minor axis from the conic prescription R=-600, k=-3.5.
	b := 15.0 * math.Sqrt(math.Abs(-3.5+1.0))
	secondary := optics.NewHyperbolic(250.0, 0.0, 15.0, b, -50.0, 50.0, true, "Secondary")

	detector := optics.NewDetector(
		geom.Vec2{X: 540.0, Y: 0.0},
		40.0,
		unit.AngleFromDeg(90.0),
		"Camera",
	)

	return optics.NewBench([]optics.Surface{primary, secondary, detector})
}

func main() {
	cfg := defineFlags()
	flag.Usage = printHelp
	flag.Parse()

	if *cfg.showHelp {
		printHelp()
		return
	}

	bench := defaultBench()
	tracer := optics.NewTracer()
	tracer.MaxBounces = *cfg.maxBounces
	params := optimize.Params{
		Fan: optics.Fan{
			StartX: *cfg.rayStartX,
			YMin:   *cfg.rayYMin,
			YMax:   *cfg.rayYMax,
			Count:  *cfg.rays,
		},
		Tracer: tracer,
	}

	fmt.Println("Scanning secondary positions...")
	coarse := optimize.CoarseScan(bench, optimize.GridSpec{
		XMin: *cfg.scanXMin, XMax: *cfg.scanXMax, XStep: *cfg.scanXStep,
		YMin: *cfg.scanYMin, YMax: *cfg.scanYMax, YStep: *cfg.scanYStep,
	}, params)
	reportResult("Coarse scan", coarse, params.Fan.Count)

	fine := optimize.Refine(bench, optimize.ClimbSpec{
		StartX:        coarse.BestX,
		StartY:        coarse.BestY,
		InitialStep:   *cfg.fineStep,
		SearchRadius:  *cfg.fineRadius,
		MaxIterations: *cfg.fineIters,
	}, params)
	reportResult("Fine tune", fine, params.Fan.Count)

	// Re-trace at the optimized position for the report and the diagram.
	tuned := bench.WithSecondary(fine.BestX, fine.BestY)
	rays := tracer.TraceFan(params.Fan, tuned)

	det := tuned.Detector
	efl := det.EffectiveFocalLength(400.0)
	fmt.Printf("Rays traced: %d (blocked: %d)\n", det.TotalRays, det.BlockedRays)
	fmt.Printf("Focus spread: %.3f mm\n", det.FocusSpread())
	fmt.Printf("Angular resolution: %.2f arcsec/pixel\n", det.AngularResolution(efl).Sec())
	fmt.Printf("Field of view: %.1f arcmin\n", det.FieldOfView(efl).Min())

	diagram := plot.New(*cfg.size, *cfg.size*2/3,
		*cfg.rayStartX, 560.0, -160.0, 160.0)
	img := diagram.Render(tuned, rays)
	if err := plot.WritePNG(*cfg.out, img); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}
	fmt.Printf("Diagram written to %s\n", *cfg.out)
}

func reportResult(label string, r optimize.Result, fanSize int) {
	fmt.Printf("%s: best secondary (%.3f, %.3f), hits %d/%d (%.1f%%), RMS spot %.3f mm\n",
		label, r.BestX, r.BestY, r.Hits, fanSize, r.HitPercentage, r.RMSSpotSize)
}
