package core

import (
	"fmt"
	"math"
)

// HubbleDistanceResult carries a linear-law distance in the units callers
// typically want, plus the inputs that produced it.
type HubbleDistanceResult struct {
	DistanceMpc float64
	DistanceLy  float64
	VelocityKms float64
	H0          float64

	// LinearRegime is false when z exceeded the configured validity
	// threshold; the result is still usable but approximate.
	LinearRegime bool
}

// RedshiftToVelocity converts a redshift to a recession velocity in km/s
// using the relativistic Doppler formula. Exact for all z >= 0.
func RedshiftToVelocity(z float64) (float64, error) {
	if z < 0 || math.IsNaN(z) {
		return 0, fmt.Errorf("%w: redshift %v must be >= 0", ErrValidation, z)
	}
	zp := (1 + z) * (1 + z)
	return SpeedOfLightKms * (zp - 1) / (zp + 1), nil
}

// HubbleDistance applies the linear Hubble law d = c*z/H0. maxLinearZ bounds
// the regime where the law holds; beyond it the result is still computed and
// LinearRegime is false so callers can attach an approximation warning.
// Pass maxLinearZ <= 0 to use the default threshold.
func HubbleDistance(z, h0, maxLinearZ float64) (HubbleDistanceResult, error) {
	if z < 0 || math.IsNaN(z) {
		return HubbleDistanceResult{}, fmt.Errorf("%w: redshift %v must be >= 0", ErrValidation, z)
	}
	if h0 <= 0 || math.IsNaN(h0) {
		return HubbleDistanceResult{}, fmt.Errorf("%w: H0 %v must be > 0", ErrValidation, h0)
	}
	if maxLinearZ <= 0 {
		maxLinearZ = DefaultLinearRegimeMaxZ
	}

	v := SpeedOfLightKms * z
	dMpc := v / h0
	return HubbleDistanceResult{
		DistanceMpc:  dMpc,
		DistanceLy:   dMpc * LightYearsPerMpc,
		VelocityKms:  v,
		H0:           h0,
		LinearRegime: z <= maxLinearZ,
	}, nil
}

// HubblePoint is one (distance, velocity) sample for the Hubble fit.
type HubblePoint struct {
	DistanceMpc float64
	VelocityKms float64
}

// HubbleFit is the outcome of EstimateHubbleConstant.
type HubbleFit struct {
	// H0 is the fitted slope in km/s/Mpc.
	H0 float64
	// StdErr is the standard error of the slope.
	StdErr float64
	// N is the number of points used.
	N int
}

// EstimateHubbleConstant fits v = H0 * d by least squares through the
// origin across the provided points and reports the slope with its standard
// error. At least two points with positive distance are required.
func EstimateHubbleConstant(points []HubblePoint) (HubbleFit, error) {
	var sumXX, sumXY float64
	n := 0
	used := make([]HubblePoint, 0, len(points))
	for _, p := range points {
		if p.DistanceMpc <= 0 || math.IsNaN(p.DistanceMpc) || math.IsNaN(p.VelocityKms) {
			continue
		}
		sumXX += p.DistanceMpc * p.DistanceMpc
		sumXY += p.DistanceMpc * p.VelocityKms
		used = append(used, p)
		n++
	}
	if n < 2 {
		return HubbleFit{}, fmt.Errorf("%w: hubble fit needs >= 2 valid (distance, velocity) pairs, got %d", ErrInsufficientData, n)
	}

	slope := sumXY / sumXX

	// Residual variance with n-1 degrees of freedom (one fitted parameter).
	var ss float64
	for _, p := range used {
		r := p.VelocityKms - slope*p.DistanceMpc
		ss += r * r
	}
	se := math.Sqrt(ss / float64(n-1) / sumXX)

	return HubbleFit{H0: slope, StdErr: se, N: n}, nil
}

// WavelengthFromRest shifts a rest-frame wavelength to the observed frame:
// lambda_obs = lambda_rest * (1+z).
func WavelengthFromRest(restWavelength, z float64) (float64, error) {
	if restWavelength <= 0 {
		return 0, fmt.Errorf("%w: rest wavelength %v must be > 0", ErrValidation, restWavelength)
	}
	if z < 0 || math.IsNaN(z) {
		return 0, fmt.Errorf("%w: redshift %v must be >= 0", ErrValidation, z)
	}
	return restWavelength * (1 + z), nil
}

// WavelengthToRest is the exact inverse of WavelengthFromRest.
func WavelengthToRest(observedWavelength, z float64) (float64, error) {
	if observedWavelength <= 0 {
		return 0, fmt.Errorf("%w: observed wavelength %v must be > 0", ErrValidation, observedWavelength)
	}
	if z < 0 || math.IsNaN(z) {
		return 0, fmt.Errorf("%w: redshift %v must be >= 0", ErrValidation, z)
	}
	return observedWavelength / (1 + z), nil
}

// RedshiftFromWavelengths computes z = (observed - emitted) / emitted.
func RedshiftFromWavelengths(observed, emitted float64) (float64, error) {
	if emitted <= 0 {
		return 0, fmt.Errorf("%w: emitted wavelength %v must be > 0", ErrValidation, emitted)
	}
	return (observed - emitted) / emitted, nil
}
