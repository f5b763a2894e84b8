package predictor

import (
	"math"
	"testing"
)

func TestColorRelationTwoColors(t *testing.T) {
	cr := NewColorRelation()

	// g=18.0, r=17.2, z=16.9: g-r=0.8, r-z=0.3.
	got, conf, err := cr.Predict([]float64{18.0, 17.2, 16.9})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := 0.25*0.8 - 0.1 + 0.15*0.3
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected z=%v, got %v", want, got)
	}
	if conf != confidenceTwoColor {
		t.Fatalf("expected two-color confidence %v, got %v", confidenceTwoColor, conf)
	}
}

func TestColorRelationSingleColorLowersConfidence(t *testing.T) {
	cr := NewColorRelation()

	got, conf, err := cr.Predict([]float64{18.0, 17.2})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	want := 0.25*0.8 - 0.1
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("expected z=%v, got %v", want, got)
	}
	if conf != confidenceOneColor {
		t.Fatalf("expected one-color confidence %v, got %v", confidenceOneColor, conf)
	}
}

func TestColorRelationExtrapolationDropsConfidence(t *testing.T) {
	cr := NewColorRelation()

	// g-r = 4.0 is far outside the calibrated range.
	_, conf, err := cr.Predict([]float64{21.0, 17.0})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if conf != confidenceOutOfBand {
		t.Fatalf("expected extrapolation confidence %v, got %v", confidenceOutOfBand, conf)
	}
}

func TestColorRelationCanGoNegative(t *testing.T) {
	cr := NewColorRelation()

	// Blue objects can push the relation below zero; clamping lives in the
	// engine, not here.
	got, _, err := cr.Predict([]float64{17.0, 17.3})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got >= 0 {
		t.Fatalf("expected a negative raw estimate, got %v", got)
	}
}

func TestColorRelationRejectsBadInput(t *testing.T) {
	cr := NewColorRelation()

	if _, _, err := cr.Predict([]float64{18.0}); err == nil {
		t.Fatalf("expected error for too few features")
	}
	if _, _, err := cr.Predict([]float64{18.0, math.NaN()}); err == nil {
		t.Fatalf("expected error for non-finite magnitude")
	}
}
