package batch

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/soniakeys/unit"

	"github.com/DysonLewis/Telescope/geom"
	"github.com/DysonLewis/Telescope/optics"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadPrescriptionsLenient(t *testing.T) {
	path := writeCatalog(t, `PrimaryDiameter,SecondaryDiameter,PrimaryR,SecondaryR,PrimaryF,SecondaryF,PrimaryK,SecondaryK,MirrorSeparation,SystemFocalLength
300,100,1600,-600,800,-300,-1,-3.5,450,2000
1,2,3
250,80,1400,notanumber,700,-250,-1,-3.0,400,1800
`)

	got, err := LoadPrescriptions(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d prescriptions, want 2 (short row skipped)", len(got))
	}

	if got[0].PrimaryDiameter != 300.0 || got[0].SecondaryK != -3.5 || got[0].SystemFocalLength != 2000.0 {
		t.Errorf("first row parsed as %+v", got[0])
	}
	if got[1].SecondaryR != 0.0 {
		t.Errorf("malformed number parsed as %v, want 0", got[1].SecondaryR)
	}
	if got[0].RowIndex != 0 || got[1].RowIndex != 1 {
		t.Errorf("row indices = %d, %d, want 0, 1", got[0].RowIndex, got[1].RowIndex)
	}
}

func TestLoadPrescriptionsMissingFile(t *testing.T) {
	if _, err := LoadPrescriptions(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected an error for a missing catalog")
	}
}

func TestSaveLoadResultsRoundTrip(t *testing.T) {
	results := []Prescription{
		{
			PrimaryDiameter: 300.0, SecondaryDiameter: 100.0,
			PrimaryR: 1600.0, SecondaryR: -600.0,
			PrimaryF: 800.0, SecondaryF: -300.0,
			PrimaryK: -1.0, SecondaryK: -3.5,
			MirrorSeparation: 450.0, SystemFocalLength: 2000.0,
			RowIndex:       3,
			BestSecondaryX: 251.25, BestSecondaryY: -0.5,
			CameraHits: 42, HitPercentage: 84.0, RMSSpotSize: 1.75,
			Score: 8398.25,
		},
		{
			PrimaryDiameter: 250.0, SecondaryDiameter: 80.0,
			PrimaryF: 700.0, SecondaryR: -500.0, SecondaryK: -3.0,
			RowIndex: 7,
			Score:    100.5,
		},
	}

	path := filepath.Join(t.TempDir(), "results.csv")
	if err := SaveResults(results, path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadResults(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded %d results, want 2", len(loaded))
	}

	for i, want := range results {
		got := loaded[i]
		if got.Score != want.Score || got.CameraHits != want.CameraHits {
			t.Errorf("row %d: score/hits = %v/%d, want %v/%d", i, got.Score, got.CameraHits, want.Score, want.CameraHits)
		}
		if got.BestSecondaryX != want.BestSecondaryX || got.BestSecondaryY != want.BestSecondaryY {
			t.Errorf("row %d: best position = (%v, %v), want (%v, %v)",
				i, got.BestSecondaryX, got.BestSecondaryY, want.BestSecondaryX, want.BestSecondaryY)
		}
		if got.PrimaryF != want.PrimaryF || got.SecondaryR != want.SecondaryR || got.SecondaryK != want.SecondaryK {
			t.Errorf("row %d: optics fields differ: %+v", i, got)
		}
		if got.RowIndex != want.RowIndex {
			t.Errorf("row %d: RowIndex = %d, want %d", i, got.RowIndex, want.RowIndex)
		}
	}
}

func testDetector() *optics.Detector {
	return optics.NewDetector(geom.Vec2{X: 540.0, Y: 0.0}, 40.0, unit.AngleFromDeg(90.0), "Camera")
}

func testFan() optics.Fan {
	return optics.Fan{StartX: -50.0, YMin: -120.0, YMax: 120.0, Count: 50}
}

func TestBuildBenchGeometry(t *testing.T) {
	p := DefaultPrescription()
	bench := BuildBench(p, testDetector())

	if bench.Secondary == nil || bench.Detector == nil {
		t.Fatal("bench is missing its typed handles")
	}
	// The prescription carries an optimized position, which takes precedence
	// over the nominal separation-derived one.
	if bench.Secondary.CenterX != 250.0 {
		t.Errorf("secondary at x=%v, want the prescribed 250", bench.Secondary.CenterX)
	}
	if math.Abs(bench.Secondary.A-300.0) > 1e-9 {
		t.Errorf("secondary semi-major = %v, want 300", bench.Secondary.A)
	}

	p.BestSecondaryX = 0.0
	bench = BuildBench(p, testDetector())
	// vertex - primaryF + separation = 500 - 800 + 450.
	if bench.Secondary.CenterX != 150.0 {
		t.Errorf("nominal secondary at x=%v, want 150", bench.Secondary.CenterX)
	}

	primary, ok := bench.Surfaces[0].(*optics.Parabolic)
	if !ok {
		t.Fatal("first surface is not the primary")
	}
	if primary.HoleRadius != 55.0 {
		t.Errorf("hole radius = %v, want secondary radius + 5", primary.HoleRadius)
	}
	if primary.YMin != -150.0 || primary.YMax != 150.0 {
		t.Errorf("primary extent = [%v, %v], want [-150, 150]", primary.YMin, primary.YMax)
	}
}

func TestEvaluateScoreAndPurity(t *testing.T) {
	detector := testDetector()
	p := DefaultPrescription()

	got := Evaluate(p, detector, testFan(), optics.NewTracer())

	wantScore := got.HitPercentage*100.0 - got.RMSSpotSize
	if math.Abs(got.Score-wantScore) > 1e-9 {
		t.Errorf("Score = %v, want hitPct*100 - RMS = %v", got.Score, wantScore)
	}
	if got.BestSecondaryX < 200.0 || got.BestSecondaryX > 300.0 {
		t.Errorf("BestSecondaryX = %v, want within ±50 of the prescribed 250", got.BestSecondaryX)
	}

	// The template detector must come back untouched.
	if len(detector.HitPoints) != 0 || detector.TotalRays != 0 || detector.BlockedRays != 0 {
		t.Error("evaluation leaked state into the template detector")
	}

	// Catalog fields pass through unchanged.
	if got.PrimaryF != p.PrimaryF || got.SecondaryK != p.SecondaryK || got.RowIndex != p.RowIndex {
		t.Errorf("catalog fields changed: %+v", got)
	}

	again := Evaluate(p, detector, testFan(), optics.NewTracer())
	if again.Score != got.Score || again.BestSecondaryX != got.BestSecondaryX {
		t.Errorf("repeat evaluation differs: %v/%v vs %v/%v",
			again.Score, again.BestSecondaryX, got.Score, got.BestSecondaryX)
	}
}

func TestEvaluateAllRanksAndTruncates(t *testing.T) {
	base := DefaultPrescription()
	small := base
	small.PrimaryDiameter = 60.0 // collects far fewer rays
	prescriptions := []Prescription{small, base, base}

	results, err := EvaluateAll(context.Background(), prescriptions, testDetector(), testFan(), optics.NewTracer(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want topN=2", len(results))
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not sorted by score: %v < %v", results[0].Score, results[1].Score)
	}
}

func TestEvaluateAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prescriptions := make([]Prescription, 64)
	for i := range prescriptions {
		prescriptions[i] = DefaultPrescription()
	}
	if _, err := EvaluateAll(ctx, prescriptions, testDetector(), testFan(), optics.NewTracer(), 5); err == nil {
		t.Error("expected a context cancellation error")
	}
}
