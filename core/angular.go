package core

import (
	"fmt"
	"math"
	"time"
)

// masPerYearToRadPerSec converts a proper motion in milliarcseconds per
// year to radians per second.
const masPerYearToRadPerSec = (1e-3 / 3600.0) * (math.Pi / 180.0) / (DaysPerYear * SecondsPerDay)

// TransverseVelocityKms converts a proper motion (mas/yr) at a known
// distance (Mpc) into a transverse velocity in km/s.
func TransverseVelocityKms(properMotionMasYr, distanceMpc float64) (float64, error) {
	if distanceMpc <= 0 || math.IsNaN(distanceMpc) {
		return 0, fmt.Errorf("%w: distance %v Mpc must be > 0", ErrValidation, distanceMpc)
	}
	if math.IsNaN(properMotionMasYr) {
		return 0, fmt.Errorf("%w: proper motion is NaN", ErrValidation)
	}
	omega := properMotionMasYr * masPerYearToRadPerSec
	return omega * distanceMpc * KmPerMpc, nil
}

// AngularObservation is one timed on-sky position in degrees.
type AngularObservation struct {
	RADeg  float64
	DecDeg float64
	Time   time.Time
}

// GreatCircleSeparationRad returns the angular separation between two sky
// positions in radians, via the haversine form, which stays accurate for
// small separations where the plain spherical cosine rule loses precision.
func GreatCircleSeparationRad(ra1, dec1, ra2, dec2 float64) float64 {
	const degToRad = math.Pi / 180.0

	phi1 := dec1 * degToRad
	phi2 := dec2 * degToRad
	dPhi := (dec2 - dec1) * degToRad
	dLam := (ra2 - ra1) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLam := math.Sin(dLam / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLam*sinLam
	if a > 1 {
		a = 1
	}
	return 2 * math.Asin(math.Sqrt(a))
}

// MeanAngularVelocityRadS computes the mean angular rate between two timed
// observations as great-circle separation over elapsed time. The second
// observation must be strictly later than the first.
func MeanAngularVelocityRadS(first, second AngularObservation) (float64, error) {
	dt := second.Time.Sub(first.Time).Seconds()
	if dt <= 0 {
		return 0, fmt.Errorf("%w: observations must be time-ordered, got dt=%vs", ErrValidation, dt)
	}
	sep := GreatCircleSeparationRad(first.RADeg, first.DecDeg, second.RADeg, second.DecDeg)
	return sep / dt, nil
}

// CircularAngularVelocity returns the angular rate (rad/s) and linear speed
// (km/s) of a body on a circular orbit of the given period and radius.
func CircularAngularVelocity(periodSeconds, radiusKm float64) (omega, linearKms float64, err error) {
	if periodSeconds <= 0 {
		return 0, 0, fmt.Errorf("%w: period %v must be > 0", ErrValidation, periodSeconds)
	}
	if radiusKm < 0 {
		return 0, 0, fmt.Errorf("%w: radius %v must be >= 0", ErrValidation, radiusKm)
	}
	omega = 2 * math.Pi / periodSeconds
	return omega, omega * radiusKm, nil
}
