package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/exp/mmap"
)

// resultHeader is the persisted tabular schema, one evaluated configuration
// per row.
var resultHeader = []string{
	"Rank", "Score", "CameraHits", "HitPercentage", "RMSSpotSize",
	"BestSecondaryX", "BestSecondaryY",
	"PrimaryDiameter", "SecondaryDiameter", "PrimaryR", "SecondaryR",
	"PrimaryF", "SecondaryF", "PrimaryK", "SecondaryK",
	"MirrorSeparation", "SystemFocalLength", "OriginalRowIndex",
}

// LoadPrescriptions reads a catalog CSV (10 columns, header first). The file
// is memory mapped; catalogs are often large generated grids. Rows with too
// few fields are skipped with a diagnostic rather than failing the load, and
// malformed numbers parse as zero.
func LoadPrescriptions(path string) ([]Prescription, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	var prescriptions []Prescription
	for i, rec := range records {
		if i == 0 {
			continue // header
		}
		if len(rec) < 10 {
			slog.Warn("skipping malformed catalog row", "row", i, "fields", len(rec))
			continue
		}
		prescriptions = append(prescriptions, Prescription{
			PrimaryDiameter:   parseField(rec[0]),
			SecondaryDiameter: parseField(rec[1]),
			PrimaryR:          parseField(rec[2]),
			SecondaryR:        parseField(rec[3]),
			PrimaryF:          parseField(rec[4]),
			SecondaryF:        parseField(rec[5]),
			PrimaryK:          parseField(rec[6]),
			SecondaryK:        parseField(rec[7]),
			MirrorSeparation:  parseField(rec[8]),
			SystemFocalLength: parseField(rec[9]),
			RowIndex:          len(prescriptions),
		})
	}
	slog.Info("loaded catalog", "path", path, "prescriptions", len(prescriptions))
	return prescriptions, nil
}

// LoadResults reads a previously saved results CSV (18-column schema) back
// into prescriptions, with the same lenient row handling.
func LoadResults(path string) ([]Prescription, error) {
	records, err := readRecords(path)
	if err != nil {
		return nil, err
	}

	var prescriptions []Prescription
	for i, rec := range records {
		if i == 0 {
			continue
		}
		if len(rec) < len(resultHeader) {
			slog.Warn("skipping malformed results row", "row", i, "fields", len(rec))
			continue
		}
		// rec[0] is the rank, which is implied by row order.
		prescriptions = append(prescriptions, Prescription{
			Score:             parseField(rec[1]),
			CameraHits:        int(parseField(rec[2])),
			HitPercentage:     parseField(rec[3]),
			RMSSpotSize:       parseField(rec[4]),
			BestSecondaryX:    parseField(rec[5]),
			BestSecondaryY:    parseField(rec[6]),
			PrimaryDiameter:   parseField(rec[7]),
			SecondaryDiameter: parseField(rec[8]),
			PrimaryR:          parseField(rec[9]),
			SecondaryR:        parseField(rec[10]),
			PrimaryF:          parseField(rec[11]),
			SecondaryF:        parseField(rec[12]),
			PrimaryK:          parseField(rec[13]),
			SecondaryK:        parseField(rec[14]),
			MirrorSeparation:  parseField(rec[15]),
			SystemFocalLength: parseField(rec[16]),
			RowIndex:          int(parseField(rec[17])),
		})
	}
	slog.Info("loaded results", "path", path, "prescriptions", len(prescriptions))
	return prescriptions, nil
}

// SaveResults writes ranked prescriptions using the result schema.
func SaveResults(results []Prescription, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(resultHeader); err != nil {
		f.Close()
		return fmt.Errorf("write results header: %w", err)
	}
	for i, r := range results {
		row := []string{
			strconv.Itoa(i + 1),
			formatField(r.Score),
			strconv.Itoa(r.CameraHits),
			formatField(r.HitPercentage),
			formatField(r.RMSSpotSize),
			formatField(r.BestSecondaryX),
			formatField(r.BestSecondaryY),
			formatField(r.PrimaryDiameter),
			formatField(r.SecondaryDiameter),
			formatField(r.PrimaryR),
			formatField(r.SecondaryR),
			formatField(r.PrimaryF),
			formatField(r.SecondaryF),
			formatField(r.PrimaryK),
			formatField(r.SecondaryK),
			formatField(r.MirrorSeparation),
			formatField(r.SystemFocalLength),
			strconv.Itoa(r.RowIndex),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write results row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush results: %w", err)
	}
	return f.Close()
}

func readRecords(path string) ([][]string, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	cr := csv.NewReader(io.NewSectionReader(r, 0, int64(r.Len())))
	cr.FieldsPerRecord = -1 // rows are validated leniently, per row
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

func parseField(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0.0
	}
	return v
}

func formatField(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
