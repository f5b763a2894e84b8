package export

import (
	"strings"
	"testing"

	"github.com/skyfreelabs/skyfree/core"
	"github.com/skyfreelabs/skyfree/model"
)

func TestWriteCSV(t *testing.T) {
	rows := []core.ReportRow{
		{
			RecordID:    "sdss-1",
			Catalog:     "SDSS",
			Kind:        model.KindHubbleDistance,
			Value:       428.27,
			Uncertainty: 0,
			Valid:       true,
			Regime:      "linear",
			Components:  map[string]float64{"velocity_kms": 29979.2, "distance_ly": 1.397e9},
		},
		{
			RecordID: "sdss-2",
			Catalog:  "SDSS",
			Kind:     model.KindPhotoZEstimate,
			Err:      "missing required band: \"r\"",
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines:\n%s", len(lines), sb.String())
	}
	if !strings.HasPrefix(lines[0], "record_id,catalog,quantity") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	// Components flatten in key order.
	if !strings.Contains(lines[1], "distance_ly=1.397e+09; velocity_kms=29979.2") {
		t.Fatalf("unexpected components cell: %s", lines[1])
	}
	if !strings.Contains(lines[2], "missing required band") {
		t.Fatalf("failed row should carry its error: %s", lines[2])
	}
}

func TestWriteCSVStableOutput(t *testing.T) {
	rows := []core.ReportRow{{
		RecordID:   "neo-1",
		Catalog:    "NEO",
		Kind:       model.KindOrbitalParameterSet,
		Value:      1.0,
		Valid:      true,
		Components: map[string]float64{"e": 0.2, "a_km": 1.5e8, "period_days": 365.25},
	}}

	var first, second strings.Builder
	if err := WriteCSV(&first, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if err := WriteCSV(&second, rows); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if first.String() != second.String() {
		t.Fatalf("output not stable:\n%s\nvs\n%s", first.String(), second.String())
	}
}
