package model

// QuantityKind enumerates the derived quantities the engine can produce.
// The declaration order is the fixed report ordering; new kinds append.
type QuantityKind int

const (
	KindHubbleConstant QuantityKind = iota
	KindHubbleDistance
	KindRedshiftConversion
	KindAngularVelocity
	KindOrbitalParameterSet
	KindPhotoZEstimate
)

// String returns a stable name for the quantity kind.
func (k QuantityKind) String() string {
	switch k {
	case KindHubbleConstant:
		return "hubble_constant"
	case KindHubbleDistance:
		return "hubble_distance"
	case KindRedshiftConversion:
		return "redshift_conversion"
	case KindAngularVelocity:
		return "angular_velocity"
	case KindOrbitalParameterSet:
		return "orbital_parameters"
	case KindPhotoZEstimate:
		return "photo_z"
	default:
		return "unknown"
	}
}

// DerivedQuantity is one computed result attached to the record it was
// derived from. A recomputation always produces a new value; existing
// quantities are never mutated.
type DerivedQuantity struct {
	RecordID string
	Kind     QuantityKind

	// Value is the primary scalar for the kind (km/s/Mpc for the Hubble
	// constant, Mpc for distances, km/s for velocities, rad/s for angular
	// rates, semi-major axis in km for orbital sets, z for photo-z).
	Value       float64
	Uncertainty float64

	// Valid is false when the inputs violated an invariant but the caller
	// asked for a best-effort result anyway.
	Valid bool

	// Regime names the formula regime and assumptions used.
	Regime string

	// Warnings carries non-fatal annotations, e.g. a result computed
	// outside the linear Hubble-law validity domain.
	Warnings []string

	// Components holds the remaining values of multi-valued quantities,
	// keyed by stable names (eccentricity, inclination_deg, period_days, ...).
	Components map[string]float64
}
