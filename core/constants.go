package core

// Physical constants shared by the calculators.
const (
	// SpeedOfLightKms is c in km/s.
	SpeedOfLightKms = 299792.458

	// GravitationalConstant is G in m^3 kg^-1 s^-2.
	GravitationalConstant = 6.67430e-11

	// AstronomicalUnitKm is one AU in kilometres.
	AstronomicalUnitKm = 1.496e8

	// SolarMassKg is the mass of the Sun in kg.
	SolarMassKg = 1.989e30

	// SolarMuKm3S2 is the Sun's standard gravitational parameter GM in
	// km^3/s^2, the unit system the orbital calculator works in.
	SolarMuKm3S2 = 1.32712440018e11

	// EarthMuKm3S2 is Earth's GM in km^3/s^2, used for TLE-tracked bodies.
	EarthMuKm3S2 = 3.986004418e5

	// KmPerMpc converts megaparsecs to kilometres.
	KmPerMpc = 3.0857e19

	// LightYearsPerMpc converts megaparsecs to light years.
	LightYearsPerMpc = 3.262e6

	// DefaultHubbleConstant is H0 in km/s/Mpc when the caller supplies none.
	DefaultHubbleConstant = 70.0

	// DefaultLinearRegimeMaxZ bounds the redshift range where the linear
	// Hubble law d = cz/H0 is trusted. Above it results are still returned,
	// tagged with an approximation warning. Configurable via Options.
	DefaultLinearRegimeMaxZ = 0.1

	// SecondsPerDay and DaysPerYear are the usual astronomical conversions.
	SecondsPerDay = 86400.0
	DaysPerYear   = 365.25
)
