package core

import (
	"fmt"
	"math"

	"github.com/skyfreelabs/skyfree/model"
)

// Predictor is the single capability the ML collaborator exposes to the
// engine. The engine never depends on any concrete ML runtime; anything able
// to map a feature vector to (value, confidence) satisfies this.
type Predictor interface {
	Predict(features []float64) (value, confidence float64, err error)
}

// RequiredBands returns the minimum photometric band set a catalog must
// supply before a photo-z estimate is attempted. Every supported survey
// publishes g and r; the color relation needs both.
func RequiredBands(cat model.Catalog) []model.Band {
	return []model.Band{model.BandG, model.BandR}
}

// optionalBands lists bands appended to the feature vector when present,
// in fixed order.
var optionalBands = []model.Band{model.BandZ}

// PhotoZEstimate is a post-processed predictor output.
type PhotoZEstimate struct {
	Z          float64
	Confidence float64
	// Clamped reports that the raw prediction was negative and was clamped
	// to zero rather than silently passed through.
	Clamped bool
}

// FeatureVector assembles the fixed-order feature vector for a record's
// photometry: the required bands in declared order, then any optional bands
// that are present. It fails with ErrMissingBand if a required band is
// absent or non-finite; no predictor is consulted in that case.
func FeatureVector(photometry map[model.Band]model.Photometry, required []model.Band) ([]float64, error) {
	features := make([]float64, 0, len(required)+len(optionalBands))
	for _, b := range required {
		m, ok := photometry[b]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingBand, b)
		}
		if math.IsNaN(m.Magnitude) || math.IsInf(m.Magnitude, 0) {
			return nil, fmt.Errorf("%w: %q magnitude is not finite", ErrMissingBand, b)
		}
		features = append(features, m.Magnitude)
	}
	for _, b := range optionalBands {
		if m, ok := photometry[b]; ok && !math.IsNaN(m.Magnitude) && !math.IsInf(m.Magnitude, 0) {
			features = append(features, m.Magnitude)
		}
	}
	return features, nil
}

// EstimatePhotoZ builds the feature vector, delegates inference to the
// supplied predictor, clamps negative redshift estimates to zero and carries
// the predictor's confidence through verbatim.
func EstimatePhotoZ(photometry map[model.Band]model.Photometry, required []model.Band, p Predictor) (PhotoZEstimate, error) {
	if p == nil {
		return PhotoZEstimate{}, fmt.Errorf("%w: no predictor configured", ErrUnsupportedQuantity)
	}

	features, err := FeatureVector(photometry, required)
	if err != nil {
		return PhotoZEstimate{}, err
	}

	value, confidence, err := p.Predict(features)
	if err != nil {
		return PhotoZEstimate{}, fmt.Errorf("predictor: %w", err)
	}

	est := PhotoZEstimate{Z: value, Confidence: confidence}
	if est.Z < 0 {
		est.Z = 0
		est.Clamped = true
	}
	return est, nil
}

// MagnitudeFromFlux converts a linear flux in nanomaggies to an AB
// magnitude: m = 22.5 - 2.5*log10(flux). Non-positive fluxes have no
// magnitude and fail validation.
func MagnitudeFromFlux(fluxNanomaggies float64) (float64, error) {
	if fluxNanomaggies <= 0 || math.IsNaN(fluxNanomaggies) {
		return 0, fmt.Errorf("%w: flux %v must be > 0", ErrValidation, fluxNanomaggies)
	}
	return 22.5 - 2.5*math.Log10(fluxNanomaggies), nil
}
