package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/skyfreelabs/skyfree/model"
)

// Canonical raw field names produced by the catalog connectors. Connectors
// translate each survey's native schema to these; the validator owns all
// parsing and range checking.
const (
	FieldRA         = "ra"
	FieldDec        = "dec"
	FieldRedshift   = "z"
	FieldDistance   = "dist_mpc"
	FieldClass      = "class"
	FieldProperMot  = "pm_mas_yr"
	FieldPeriodDays = "period_days"
	FieldPerihelion = "q_au"
	FieldEcc        = "ecc"

	FieldMu = "mu_km3_s2"

	FieldPosX = "rx"
	FieldPosY = "ry"
	FieldPosZ = "rz"
	FieldVelX = "vx"
	FieldVelY = "vy"
	FieldVelZ = "vz"
)

// MagnitudeField returns the canonical raw field name for a band magnitude.
func MagnitudeField(b model.Band) string { return "mag_" + string(b) }

// MagnitudeErrField returns the canonical raw field name for a band error.
func MagnitudeErrField(b model.Band) string { return "magerr_" + string(b) }

var knownBands = []model.Band{model.BandG, model.BandR, model.BandZ, model.BandW1, model.BandW2}

// Ingest normalises one raw catalog row into an invariant-checked
// MeasurementRecord. Catalog-specific required fields, numeric ranges, and
// coordinate bounds are enforced here; optional photometric bands may be
// absent and are recorded as absent, never defaulted.
func Ingest(raw model.RawRecord, cat model.Catalog) (*model.MeasurementRecord, error) {
	if cat == model.CatalogUnknown {
		return nil, fmt.Errorf("%w: catalog is required", ErrValidation)
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, fmt.Errorf("%w: record ID is required", ErrValidation)
	}

	ra, err := requiredFloat(raw, FieldRA)
	if err != nil {
		return nil, err
	}
	dec, err := requiredFloat(raw, FieldDec)
	if err != nil {
		return nil, err
	}
	if ra < 0 || ra >= 360 {
		return nil, fmt.Errorf("%w: RA %v outside [0, 360)", ErrValidation, ra)
	}
	if dec < -90 || dec > 90 {
		return nil, fmt.Errorf("%w: Dec %v outside [-90, 90]", ErrValidation, dec)
	}

	rec := &model.MeasurementRecord{
		ID:      raw.ID,
		Catalog: cat,
		RA:      ra,
		Dec:     dec,
		Class:   strings.TrimSpace(raw.Fields[FieldClass]),
	}

	if z, ok, err := optionalFloat(raw, FieldRedshift); err != nil {
		return nil, err
	} else if ok {
		if z < 0 {
			return nil, fmt.Errorf("%w: redshift %v must be >= 0", ErrValidation, z)
		}
		rec.Redshift = &z
	}

	if d, ok, err := optionalFloat(raw, FieldDistance); err != nil {
		return nil, err
	} else if ok {
		if d <= 0 {
			return nil, fmt.Errorf("%w: distance %v Mpc must be > 0", ErrValidation, d)
		}
		rec.KnownDistanceMpc = &d
	}

	if pm, ok, err := optionalFloat(raw, FieldProperMot); err != nil {
		return nil, err
	} else if ok {
		rec.ProperMotion = &model.ProperMotion{MasPerYear: pm}
	}

	if p, ok, err := optionalFloat(raw, FieldPeriodDays); err != nil {
		return nil, err
	} else if ok {
		if p <= 0 {
			return nil, fmt.Errorf("%w: orbital period %v days must be > 0", ErrValidation, p)
		}
		rec.OrbitalPeriodDays = &p
	}

	if q, ok, err := optionalFloat(raw, FieldPerihelion); err != nil {
		return nil, err
	} else if ok {
		if q <= 0 {
			return nil, fmt.Errorf("%w: perihelion %v AU must be > 0", ErrValidation, q)
		}
		rec.PerihelionAU = &q
	}

	if e, ok, err := optionalFloat(raw, FieldEcc); err != nil {
		return nil, err
	} else if ok {
		if e < 0 {
			return nil, fmt.Errorf("%w: eccentricity %v must be >= 0", ErrValidation, e)
		}
		rec.Eccentricity = &e
	}

	if err := ingestPhotometry(raw, rec); err != nil {
		return nil, err
	}
	if err := ingestStateVector(raw, rec); err != nil {
		return nil, err
	}

	switch cat {
	case model.CatalogSDSS:
		if rec.Redshift == nil {
			return nil, fmt.Errorf("%w: SDSS rows require a spectroscopic redshift", ErrValidation)
		}
	case model.CatalogNASAESI:
		if rec.OrbitalPeriodDays == nil {
			return nil, fmt.Errorf("%w: NASA_ESI rows require an orbital period", ErrValidation)
		}
	case model.CatalogNEO:
		if rec.State == nil && (rec.PerihelionAU == nil || rec.Eccentricity == nil) {
			return nil, fmt.Errorf("%w: NEO rows require a state vector or (perihelion, eccentricity)", ErrValidation)
		}
	}

	return rec, nil
}

// RowError ties a per-row ingest failure to its batch position.
type RowError struct {
	Index int
	ID    string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e RowError) Unwrap() error { return e.Err }

// IngestBatch validates every row, collecting failures per row. One invalid
// row never aborts the batch.
func IngestBatch(rows []model.RawRecord, cat model.Catalog) ([]*model.MeasurementRecord, []RowError) {
	records := make([]*model.MeasurementRecord, 0, len(rows))
	var failures []RowError
	for i, raw := range rows {
		rec, err := Ingest(raw, cat)
		if err != nil {
			failures = append(failures, RowError{Index: i, ID: raw.ID, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, failures
}

func ingestPhotometry(raw model.RawRecord, rec *model.MeasurementRecord) error {
	for _, b := range knownBands {
		mag, ok, err := optionalFloat(raw, MagnitudeField(b))
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		p := model.Photometry{Magnitude: mag}
		if magErr, ok, err := optionalFloat(raw, MagnitudeErrField(b)); err != nil {
			return err
		} else if ok {
			if magErr < 0 {
				return fmt.Errorf("%w: %s magnitude error %v must be >= 0", ErrValidation, b, magErr)
			}
			p.Err = magErr
		}
		if rec.Photometry == nil {
			rec.Photometry = make(map[model.Band]model.Photometry)
		}
		rec.Photometry[b] = p
	}
	return nil
}

func ingestStateVector(raw model.RawRecord, rec *model.MeasurementRecord) error {
	keys := []string{FieldPosX, FieldPosY, FieldPosZ, FieldVelX, FieldVelY, FieldVelZ}
	present := 0
	vals := make([]float64, len(keys))
	for i, k := range keys {
		v, ok, err := optionalFloat(raw, k)
		if err != nil {
			return err
		}
		if ok {
			present++
			vals[i] = v
		}
	}
	switch present {
	case 0:
		return nil
	case len(keys):
		rec.State = &model.StateVector{
			Position: model.Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
			Velocity: model.Vec3{X: vals[3], Y: vals[4], Z: vals[5]},
		}
		if mu, ok, err := optionalFloat(raw, FieldMu); err != nil {
			return err
		} else if ok {
			if mu <= 0 {
				return fmt.Errorf("%w: gravitational parameter %v must be > 0", ErrValidation, mu)
			}
			rec.State.Mu = mu
		}
		return nil
	default:
		return fmt.Errorf("%w: partial state vector (%d of %d components)", ErrValidation, present, len(keys))
	}
}

func requiredFloat(raw model.RawRecord, key string) (float64, error) {
	v, ok, err := optionalFloat(raw, key)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: field %q is required for %s", ErrValidation, key, raw.ID)
	}
	return v, nil
}

func optionalFloat(raw model.RawRecord, key string) (float64, bool, error) {
	s, ok := raw.Fields[key]
	if !ok || strings.TrimSpace(s) == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: field %q: %v", ErrValidation, key, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("%w: field %q is not finite", ErrValidation, key)
	}
	return v, true, nil
}
