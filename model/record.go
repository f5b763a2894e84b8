package model

// Band names a photometric band. Canonical bands follow the DESI Legacy
// Survey naming; additional bands pass through untouched.
type Band string

const (
	BandG  Band = "g"
	BandR  Band = "r"
	BandZ  Band = "z"
	BandW1 Band = "w1"
	BandW2 Band = "w2"
)

// Photometry is a single-band magnitude measurement with its error.
type Photometry struct {
	Magnitude float64
	Err       float64
}

// StateVector is an instantaneous position/velocity pair relative to the
// central body. Position in km, velocity in km/s.
type StateVector struct {
	Position Vec3
	Velocity Vec3

	// Mu is the central body's gravitational parameter in km^3/s^2.
	// Zero means "use the engine's configured default" (the Sun). The
	// connector that produced the vector knows the frame, so it sets this
	// (e.g. Earth's GM for TLE-tracked objects).
	Mu float64
}

// ProperMotion is an on-sky angular rate in milliarcseconds per year.
type ProperMotion struct {
	MasPerYear float64
}

// RawRecord is what a catalog connector hands the validator: native column
// values translated to canonical field names, still as strings. The
// validator owns all parsing and range checking.
type RawRecord struct {
	ID     string
	Fields map[string]string
}

// MeasurementRecord is one validated catalog row. Optional fields are nil
// when absent in the source row; absence is recorded, never defaulted.
// Records are created exactly once by the validator and treated as
// immutable afterwards.
type MeasurementRecord struct {
	ID      string
	Catalog Catalog

	// RA in [0, 360) and Dec in [-90, 90], degrees.
	RA  float64
	Dec float64

	// Redshift is the spectroscopic redshift when the survey supplies one.
	Redshift *float64

	// KnownDistanceMpc is a distance measured independently of redshift
	// (e.g. a standard-candle distance); it anchors the Hubble fit.
	KnownDistanceMpc *float64

	// Photometry holds per-band magnitudes; missing bands are simply absent.
	Photometry map[Band]Photometry

	// State is the heliocentric or geocentric state vector for orbital bodies.
	State *StateVector

	// ProperMotion is the on-sky angular rate where the survey reports one.
	ProperMotion *ProperMotion

	// OrbitalPeriodDays is the published orbital period (exoplanet rows).
	OrbitalPeriodDays *float64

	// PerihelionAU and Eccentricity describe NEO rows that publish orbital
	// elements instead of a state vector.
	PerihelionAU *float64
	Eccentricity *float64

	// Class is the survey's object classification (GALAXY, QSO, STAR, ...).
	Class string
}

// HasBand reports whether the record carries photometry for band b.
func (r *MeasurementRecord) HasBand(b Band) bool {
	_, ok := r.Photometry[b]
	return ok
}
