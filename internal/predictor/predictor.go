// Package predictor ships the built-in photometric-redshift model: an
// empirical color relation calibrated against spectroscopic galaxy samples.
// It exists so the pipeline works out of the box; a trained model can be
// swapped in through the same Predict signature without touching the engine.
package predictor

import (
	"fmt"
	"math"
)

// Calibrated color range. Outside it the relation extrapolates, so the
// reported confidence drops rather than the estimate being refused.
const (
	minCalibratedColor = -0.5
	maxCalibratedColor = 2.5
)

// Confidence tiers. Two-color estimates (g-r and r-z available) are markedly
// better constrained than single-color ones.
const (
	confidenceTwoColor  = 0.90
	confidenceOneColor  = 0.70
	confidenceOutOfBand = 0.30
)

// ColorRelation estimates redshift from broadband magnitudes:
//
//	z ~= 0.25*(g-r) - 0.1 + 0.15*(r-z)
//
// where the r-z term is used only when a z-band magnitude is available.
type ColorRelation struct{}

// NewColorRelation returns the default empirical estimator.
func NewColorRelation() *ColorRelation { return &ColorRelation{} }

// Predict expects features in fixed order: g magnitude, r magnitude, then an
// optional z magnitude. It never clamps; the engine owns post-processing.
func (cr *ColorRelation) Predict(features []float64) (float64, float64, error) {
	if len(features) != 2 && len(features) != 3 {
		return 0, 0, fmt.Errorf("color relation needs 2 or 3 magnitudes, got %d", len(features))
	}
	for i, f := range features {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, 0, fmt.Errorf("magnitude %d is not finite", i)
		}
	}

	gr := features[0] - features[1]
	estimate := 0.25*gr - 0.1
	confidence := confidenceOneColor

	if len(features) == 3 {
		rz := features[1] - features[2]
		estimate += 0.15 * rz
		confidence = confidenceTwoColor
	}

	if gr < minCalibratedColor || gr > maxCalibratedColor {
		confidence = confidenceOutOfBand
	}
	return estimate, confidence, nil
}
