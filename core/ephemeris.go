package core

import (
	"fmt"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/skyfreelabs/skyfree/model"
)

// StateVectorFromTLE propagates a two-line element set to the given epoch
// with SGP4 and returns the geocentric ECI state vector in km and km/s.
// This is the ingest path for NEO rows that arrive as tracked TLEs rather
// than explicit state vectors; the resulting vector is paired with
// EarthMuKm3S2 when deriving elements.
func StateVectorFromTLE(line1, line2 string, epoch time.Time) (model.StateVector, error) {
	if line1 == "" || line2 == "" {
		return model.StateVector{}, fmt.Errorf("%w: both TLE lines are required", ErrValidation)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS72)

	year, month, day := epoch.UTC().Date()
	hour, min, sec := epoch.UTC().Clock()
	pos, vel := satellite.Propagate(sat, year, int(month), day, hour, min, sec)

	sv := model.StateVector{
		Position: model.Vec3{X: pos.X, Y: pos.Y, Z: pos.Z},
		Velocity: model.Vec3{X: vel.X, Y: vel.Y, Z: vel.Z},
	}
	if sv.Position.Norm() == 0 {
		return model.StateVector{}, fmt.Errorf("%w: SGP4 produced a zero position, TLE likely malformed", ErrValidation)
	}
	return sv, nil
}
