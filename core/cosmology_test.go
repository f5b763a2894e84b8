package core

import (
	"errors"
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestRedshiftToVelocity(t *testing.T) {
	// z=0 is at rest.
	v, err := RedshiftToVelocity(0)
	if err != nil {
		t.Fatalf("RedshiftToVelocity(0): %v", err)
	}
	if v != 0 {
		t.Fatalf("expected 0 km/s at z=0, got %v", v)
	}

	// The relativistic form stays below c even for large z, where the
	// naive v = cz would exceed it.
	v, err = RedshiftToVelocity(3)
	if err != nil {
		t.Fatalf("RedshiftToVelocity(3): %v", err)
	}
	if v >= SpeedOfLightKms {
		t.Fatalf("recession velocity %v must stay below c", v)
	}
	// z=3: (1+z)^2 = 16, v = c*15/17.
	want := SpeedOfLightKms * 15.0 / 17.0
	if !approxEqual(v, want, 1e-6) {
		t.Fatalf("expected %v km/s at z=3, got %v", want, v)
	}

	if _, err := RedshiftToVelocity(-0.5); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for negative z, got %v", err)
	}
}

func TestHubbleDistanceLinearLaw(t *testing.T) {
	res, err := HubbleDistance(0.1, 70, DefaultLinearRegimeMaxZ)
	if err != nil {
		t.Fatalf("HubbleDistance: %v", err)
	}

	want := SpeedOfLightKms * 0.1 / 70.0
	if !approxEqual(res.DistanceMpc, want, want*0.01) {
		t.Fatalf("expected ~%v Mpc, got %v", want, res.DistanceMpc)
	}
	if !res.LinearRegime {
		t.Fatalf("z=0.1 should still be inside the linear regime")
	}
	if !approxEqual(res.DistanceLy, res.DistanceMpc*LightYearsPerMpc, 1) {
		t.Fatalf("light-year conversion inconsistent: %v vs %v", res.DistanceLy, res.DistanceMpc*LightYearsPerMpc)
	}
}

func TestHubbleDistanceFlagsNonlinearRegime(t *testing.T) {
	res, err := HubbleDistance(0.5, 70, 0.1)
	if err != nil {
		t.Fatalf("HubbleDistance: %v", err)
	}
	if res.LinearRegime {
		t.Fatalf("z=0.5 must be flagged as outside the linear regime")
	}
	if res.DistanceMpc <= 0 {
		t.Fatalf("distance should still be computed, got %v", res.DistanceMpc)
	}

	// The threshold is configurable: with a higher ceiling the same z is fine.
	res, err = HubbleDistance(0.5, 70, 1.0)
	if err != nil {
		t.Fatalf("HubbleDistance: %v", err)
	}
	if !res.LinearRegime {
		t.Fatalf("z=0.5 inside a raised threshold should be linear")
	}
}

func TestHubbleDistanceRejectsBadInput(t *testing.T) {
	if _, err := HubbleDistance(-0.1, 70, 0.1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for negative z, got %v", err)
	}
	if _, err := HubbleDistance(0.1, 0, 0.1); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for H0=0, got %v", err)
	}
}

func TestEstimateHubbleConstantRecoversSlope(t *testing.T) {
	// Noise-free synthetic sample: v = 70*d exactly, so the fit must
	// recover 70 with zero standard error.
	points := []HubblePoint{
		{DistanceMpc: 10, VelocityKms: 700},
		{DistanceMpc: 50, VelocityKms: 3500},
		{DistanceMpc: 120, VelocityKms: 8400},
		{DistanceMpc: 300, VelocityKms: 21000},
	}

	fit, err := EstimateHubbleConstant(points)
	if err != nil {
		t.Fatalf("EstimateHubbleConstant: %v", err)
	}
	if !approxEqual(fit.H0, 70, 1e-9) {
		t.Fatalf("expected H0=70, got %v", fit.H0)
	}
	if !approxEqual(fit.StdErr, 0, 1e-9) {
		t.Fatalf("expected zero standard error on exact data, got %v", fit.StdErr)
	}
	if fit.N != 4 {
		t.Fatalf("expected 4 points used, got %d", fit.N)
	}
}

func TestEstimateHubbleConstantSkipsBadPoints(t *testing.T) {
	points := []HubblePoint{
		{DistanceMpc: 10, VelocityKms: 700},
		{DistanceMpc: -5, VelocityKms: 100},       // non-physical distance
		{DistanceMpc: math.NaN(), VelocityKms: 1}, // NaN distance
		{DistanceMpc: 50, VelocityKms: 3500},
	}
	fit, err := EstimateHubbleConstant(points)
	if err != nil {
		t.Fatalf("EstimateHubbleConstant: %v", err)
	}
	if fit.N != 2 {
		t.Fatalf("expected 2 points used, got %d", fit.N)
	}
}

func TestEstimateHubbleConstantNeedsTwoPoints(t *testing.T) {
	_, err := EstimateHubbleConstant([]HubblePoint{{DistanceMpc: 10, VelocityKms: 700}})
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected insufficient-data error, got %v", err)
	}
	_, err = EstimateHubbleConstant(nil)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected insufficient-data error for empty input, got %v", err)
	}
}

func TestWavelengthRoundTrip(t *testing.T) {
	cases := []struct {
		rest float64
		z    float64
	}{
		{656.281, 0.0},     // H-alpha at rest
		{656.281, 0.0214},  // nearby galaxy
		{121.567, 2.5},     // Lyman-alpha at high z
		{500.0, 0.0000001}, // numerically tiny shift
	}
	for _, c := range cases {
		obs, err := WavelengthFromRest(c.rest, c.z)
		if err != nil {
			t.Fatalf("WavelengthFromRest(%v, %v): %v", c.rest, c.z, err)
		}
		back, err := WavelengthToRest(obs, c.z)
		if err != nil {
			t.Fatalf("WavelengthToRest(%v, %v): %v", obs, c.z, err)
		}
		if !approxEqual(back, c.rest, 1e-9) {
			t.Fatalf("round trip rest=%v z=%v drifted to %v", c.rest, c.z, back)
		}
	}
}

func TestRedshiftFromWavelengths(t *testing.T) {
	z, err := RedshiftFromWavelengths(670.32, 656.281)
	if err != nil {
		t.Fatalf("RedshiftFromWavelengths: %v", err)
	}
	if !approxEqual(z, (670.32-656.281)/656.281, 1e-12) {
		t.Fatalf("unexpected z %v", z)
	}

	if _, err := RedshiftFromWavelengths(670.32, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero emitted wavelength, got %v", err)
	}
}
