package core

import (
	"context"
	"errors"
	"testing"

	"github.com/skyfreelabs/skyfree/model"
)

func TestAssembleReportDeterministicOrder(t *testing.T) {
	recA := &model.MeasurementRecord{ID: "a", Catalog: model.CatalogSDSS}
	recB := &model.MeasurementRecord{ID: "b", Catalog: model.CatalogSDSS}

	// Batches arrive in arbitrary order with interleaved kinds.
	photoZ := []Result{
		{Record: recB, Quantity: &model.DerivedQuantity{RecordID: "b", Kind: model.KindPhotoZEstimate}},
		{Record: recA, Quantity: &model.DerivedQuantity{RecordID: "a", Kind: model.KindPhotoZEstimate}},
	}
	distances := []Result{
		{Record: recB, Quantity: &model.DerivedQuantity{RecordID: "b", Kind: model.KindHubbleDistance}},
		{Record: recA, Quantity: &model.DerivedQuantity{RecordID: "a", Kind: model.KindHubbleDistance}},
	}

	rows := AssembleReport(photoZ, distances)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	wantOrder := []struct {
		id   string
		kind model.QuantityKind
	}{
		{"a", model.KindHubbleDistance},
		{"a", model.KindPhotoZEstimate},
		{"b", model.KindHubbleDistance},
		{"b", model.KindPhotoZEstimate},
	}
	for i, want := range wantOrder {
		if rows[i].RecordID != want.id || rows[i].Kind != want.kind {
			t.Fatalf("row %d: expected (%s, %v), got (%s, %v)",
				i, want.id, want.kind, rows[i].RecordID, rows[i].Kind)
		}
	}

	// Identical input, identical output.
	again := AssembleReport(photoZ, distances)
	for i := range rows {
		if rows[i].RecordID != again[i].RecordID || rows[i].Kind != again[i].Kind {
			t.Fatalf("ordering not reproducible at row %d", i)
		}
	}
}

func TestAssembleReportIncludesFailures(t *testing.T) {
	rec := &model.MeasurementRecord{ID: "x", Catalog: model.CatalogDESI}
	rows := AssembleReport([]Result{
		{Record: rec, Err: errors.New("missing photometric band: \"r\"")},
	})
	if len(rows) != 1 {
		t.Fatalf("failures must become rows, got %d", len(rows))
	}
	if rows[0].Err == "" || rows[0].Valid {
		t.Fatalf("failed row must carry its error and not claim validity: %+v", rows[0])
	}
	if rows[0].RecordID != "x" || rows[0].Catalog != "DESI" {
		t.Fatalf("failed row must keep its record identity: %+v", rows[0])
	}
}

func TestAssembleReportFailedRowsKeepRequestedKind(t *testing.T) {
	// An engine with no predictor fails every photo-z row; the failure rows
	// must still report photo_z, not the zero-value kind.
	engine := NewEngine()
	rec := &model.MeasurementRecord{ID: "d1", Catalog: model.CatalogDESI, RA: 1, Dec: 1}

	results := engine.Compute(context.Background(), []*model.MeasurementRecord{rec}, model.KindPhotoZEstimate)
	rows := AssembleReport(results)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Err == "" {
		t.Fatalf("expected a failure row, got %+v", rows[0])
	}
	if rows[0].Kind != model.KindPhotoZEstimate {
		t.Fatalf("failure row reports kind %v, want %v", rows[0].Kind, model.KindPhotoZEstimate)
	}

	// Same for the batch-level fit.
	fit := engine.Compute(context.Background(), nil, model.KindHubbleConstant)
	fitRows := AssembleReport(fit)
	if fitRows[0].Err == "" || fitRows[0].Kind != model.KindHubbleConstant {
		t.Fatalf("failed fit row must keep its kind: %+v", fitRows[0])
	}
}

func TestAssembleReportBatchQuantitiesSortFirst(t *testing.T) {
	rec := &model.MeasurementRecord{ID: "a", Catalog: model.CatalogSDSS}
	rows := AssembleReport([]Result{
		{Record: rec, Quantity: &model.DerivedQuantity{RecordID: "a", Kind: model.KindHubbleDistance}},
		{Quantity: &model.DerivedQuantity{Kind: model.KindHubbleConstant, Value: 70}},
	})
	if rows[0].RecordID != "" || rows[0].Kind != model.KindHubbleConstant {
		t.Fatalf("the batch-level fit must sort first, got %+v", rows[0])
	}
}
