package core

import (
	"fmt"
	"math"

	"github.com/skyfreelabs/skyfree/model"
)

// degenerateHRatio is the relative angular-momentum threshold below which a
// trajectory is treated as radial and orbital elements are undefined.
const degenerateHRatio = 1e-8

// OrbitalElements are the two-body elements recovered from a state vector.
// Units: km, km^2/s, degrees, seconds. Period is zero for unbound orbits.
type OrbitalElements struct {
	SemiMajorAxisKm   float64
	Eccentricity      float64
	InclinationDeg    float64
	AngularMomentum   float64
	SpecificEnergyKm2 float64
	PeriodSeconds     float64
	Bound             bool
}

// ElementsFromStateVector derives two-body orbital elements around a central
// body with gravitational parameter mu (km^3/s^2):
//
//	h = r x v
//	1/a = 2/|r| - |v|^2/mu        (vis-viva)
//	e = (v x h)/mu - r/|r|
//
// A (near) radial trajectory has |h| ~ 0 and no defined elements; the call
// fails with ErrDegenerateOrbit instead of returning NaNs.
func ElementsFromStateVector(sv model.StateVector, mu float64) (OrbitalElements, error) {
	if mu <= 0 {
		return OrbitalElements{}, fmt.Errorf("%w: gravitational parameter %v must be > 0", ErrValidation, mu)
	}
	r := sv.Position.Norm()
	v := sv.Velocity.Norm()
	if r == 0 {
		return OrbitalElements{}, fmt.Errorf("%w: zero position vector", ErrValidation)
	}

	h := sv.Position.Cross(sv.Velocity)
	hNorm := h.Norm()
	if hNorm <= degenerateHRatio*r*v || hNorm == 0 {
		return OrbitalElements{}, fmt.Errorf("%w: |r x v| = %v for |r|=%v |v|=%v", ErrDegenerateOrbit, hNorm, r, v)
	}

	invA := 2/r - v*v/mu
	energy := v*v/2 - mu/r

	eVec := sv.Velocity.Cross(h).Scale(1 / mu).Sub(sv.Position.Scale(1 / r))
	ecc := eVec.Norm()

	incl := math.Acos(h.Z/hNorm) * 180 / math.Pi

	el := OrbitalElements{
		Eccentricity:      ecc,
		InclinationDeg:    incl,
		AngularMomentum:   hNorm,
		SpecificEnergyKm2: energy,
		Bound:             invA > 0,
	}
	if invA != 0 {
		el.SemiMajorAxisKm = 1 / invA
	} else {
		el.SemiMajorAxisKm = math.Inf(1)
	}
	if el.Bound {
		a := el.SemiMajorAxisKm
		el.PeriodSeconds = 2 * math.Pi * math.Sqrt(a*a*a/mu)
	}
	return el, nil
}

// OrbitSummary describes a bound orbit given by its geometry rather than a
// state vector. Distances in km, speeds in km/s.
type OrbitSummary struct {
	SemiMajorAxisKm   float64
	Eccentricity      float64
	PeriodSeconds     float64
	PeriodDays        float64
	PeriodYears       float64
	OrbitalSpeedKms   float64
	SpecificEnergyKm2 float64
	PerihelionKm      float64
	AphelionKm        float64
}

// BoundOrbitFromElements computes period (Kepler III), mean circular speed,
// specific energy and the apsides for a bound orbit with semi-major axis a
// and eccentricity e around a body with gravitational parameter mu.
func BoundOrbitFromElements(mu, semiMajorAxisKm, eccentricity float64) (OrbitSummary, error) {
	if mu <= 0 {
		return OrbitSummary{}, fmt.Errorf("%w: gravitational parameter %v must be > 0", ErrValidation, mu)
	}
	if semiMajorAxisKm <= 0 {
		return OrbitSummary{}, fmt.Errorf("%w: semi-major axis %v must be > 0", ErrValidation, semiMajorAxisKm)
	}
	if eccentricity < 0 || eccentricity >= 1 {
		return OrbitSummary{}, fmt.Errorf("%w: eccentricity %v outside [0,1) for a bound orbit", ErrValidation, eccentricity)
	}

	a := semiMajorAxisKm
	period := 2 * math.Pi * math.Sqrt(a*a*a/mu)
	return OrbitSummary{
		SemiMajorAxisKm:   a,
		Eccentricity:      eccentricity,
		PeriodSeconds:     period,
		PeriodDays:        period / SecondsPerDay,
		PeriodYears:       period / (SecondsPerDay * DaysPerYear),
		OrbitalSpeedKms:   math.Sqrt(mu / a),
		SpecificEnergyKm2: -mu / (2 * a),
		PerihelionKm:      a * (1 - eccentricity),
		AphelionKm:        a * (1 + eccentricity),
	}, nil
}

// BoundOrbitFromPerihelion recovers a = q/(1-e) from a perihelion distance
// and eccentricity, the form small-body catalogs publish, then summarises
// the orbit.
func BoundOrbitFromPerihelion(mu, perihelionKm, eccentricity float64) (OrbitSummary, error) {
	if perihelionKm <= 0 {
		return OrbitSummary{}, fmt.Errorf("%w: perihelion %v must be > 0", ErrValidation, perihelionKm)
	}
	if eccentricity < 0 || eccentricity >= 1 {
		return OrbitSummary{}, fmt.Errorf("%w: eccentricity %v outside [0,1) for a bound orbit", ErrValidation, eccentricity)
	}
	return BoundOrbitFromElements(mu, perihelionKm/(1-eccentricity), eccentricity)
}

// CircularOrbitFromPeriod inverts Kepler's third law for rows that publish
// only an orbital period: a = (mu T^2 / 4 pi^2)^(1/3), v = 2 pi a / T.
// Returns the semi-major axis in km and the circular speed in km/s.
func CircularOrbitFromPeriod(mu, periodSeconds float64) (float64, float64, error) {
	if mu <= 0 {
		return 0, 0, fmt.Errorf("%w: gravitational parameter %v must be > 0", ErrValidation, mu)
	}
	if periodSeconds <= 0 {
		return 0, 0, fmt.Errorf("%w: orbital period %v must be > 0", ErrValidation, periodSeconds)
	}
	a := math.Cbrt(mu * periodSeconds * periodSeconds / (4 * math.Pi * math.Pi))
	v := 2 * math.Pi * a / periodSeconds
	return a, v, nil
}
