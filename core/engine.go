package core

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/skyfreelabs/skyfree/internal/logging"
	"github.com/skyfreelabs/skyfree/model"
)

// MetricsRecorder lets the engine report computation outcomes without
// depending on a concrete metrics backend.
type MetricsRecorder interface {
	ObserveComputeDuration(kind model.QuantityKind, seconds float64)
	RecordDerivedQuantity(kind model.QuantityKind, valid bool)
}

// Result pairs a record with either its derived quantity or the typed
// failure that prevented it. Errors are data here: a batch always carries
// on past individual failures. Kind is the quantity that was requested, so
// failed results still report what they were asked for.
type Result struct {
	Record   *model.MeasurementRecord
	Kind     model.QuantityKind
	Quantity *model.DerivedQuantity
	Err      error
}

// Engine orchestrates the calculators over validated records. All
// per-record calculations are pure, so the engine fans them out across a
// bounded worker group and writes results by index; only the Hubble fit is
// a whole-batch reduction.
type Engine struct {
	h0         float64
	maxLinearZ float64
	defaultMu  float64
	workers    int
	predictor  Predictor
	log        logging.Logger
	metrics    MetricsRecorder
	tracer     trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithHubbleConstant overrides the default H0 (km/s/Mpc).
func WithHubbleConstant(h0 float64) Option {
	return func(e *Engine) {
		if h0 > 0 {
			e.h0 = h0
		}
	}
}

// WithLinearRegimeMaxZ overrides the redshift threshold above which linear
// Hubble-law distances carry an approximation warning.
func WithLinearRegimeMaxZ(z float64) Option {
	return func(e *Engine) {
		if z > 0 {
			e.maxLinearZ = z
		}
	}
}

// WithCentralMu overrides the default central-body gravitational parameter
// (km^3/s^2) used when a state vector does not declare its own.
func WithCentralMu(mu float64) Option {
	return func(e *Engine) {
		if mu > 0 {
			e.defaultMu = mu
		}
	}
}

// WithWorkers bounds the per-record fan-out.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithPredictor supplies the photo-z predictor capability.
func WithPredictor(p Predictor) Option {
	return func(e *Engine) { e.predictor = p }
}

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetricsRecorder attaches a metrics sink.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine builds an engine with spec defaults: H0 = 70, linear regime
// z <= 0.1, solar central body, 4 workers.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		h0:         DefaultHubbleConstant,
		maxLinearZ: DefaultLinearRegimeMaxZ,
		defaultMu:  SolarMuKm3S2,
		workers:    4,
		log:        logging.Noop(),
		tracer:     otel.Tracer("skyfree/core"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compute derives the requested quantity kind for every record. Results are
// returned in input order, one per record, each either a quantity or a typed
// failure. KindHubbleConstant is the exception: it is a reduction over the
// whole batch and yields a single result.
func (e *Engine) Compute(ctx context.Context, records []*model.MeasurementRecord, kind model.QuantityKind) []Result {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "engine.Compute",
		trace.WithAttributes(
			attribute.String("quantity.kind", kind.String()),
			attribute.Int("batch.size", len(records)),
		))
	defer span.End()
	defer func() {
		if e.metrics != nil {
			e.metrics.ObserveComputeDuration(kind, time.Since(start).Seconds())
		}
	}()

	if kind == model.KindHubbleConstant {
		return []Result{e.hubbleConstantResult(records)}
	}

	results := make([]Result, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Record: rec, Kind: kind, Err: err}
				return nil
			}
			q, err := e.computeOne(rec, kind)
			results[i] = Result{Record: rec, Kind: kind, Quantity: q, Err: err}
			return nil
		})
	}
	// Workers never return errors; failures live in the results.
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if e.metrics != nil && r.Quantity != nil {
			e.metrics.RecordDerivedQuantity(kind, r.Quantity.Valid)
		}
	}
	e.log.Debug(ctx, "batch computed",
		logging.String("kind", kind.String()),
		logging.Int("records", len(records)),
		logging.Int("failed", failed),
	)
	return results
}

// EstimateHubbleConstant runs the whole-batch OLS fit of recession velocity
// against independently known distance. It must only be called once the
// record set is complete; the engine itself never starts the fit while
// per-record work is still outstanding.
func (e *Engine) EstimateHubbleConstant(records []*model.MeasurementRecord) (*model.DerivedQuantity, error) {
	points := make([]HubblePoint, 0, len(records))
	for _, rec := range records {
		if rec == nil || rec.Redshift == nil || rec.KnownDistanceMpc == nil {
			continue
		}
		v, err := RedshiftToVelocity(*rec.Redshift)
		if err != nil {
			continue
		}
		points = append(points, HubblePoint{DistanceMpc: *rec.KnownDistanceMpc, VelocityKms: v})
	}

	fit, err := EstimateHubbleConstant(points)
	if err != nil {
		return nil, err
	}
	return &model.DerivedQuantity{
		Kind:        model.KindHubbleConstant,
		Value:       fit.H0,
		Uncertainty: fit.StdErr,
		Valid:       true,
		Regime:      fmt.Sprintf("least-squares fit through origin over %d (distance, velocity) pairs", fit.N),
		Components:  map[string]float64{"n_points": float64(fit.N)},
	}, nil
}

func (e *Engine) hubbleConstantResult(records []*model.MeasurementRecord) Result {
	q, err := e.EstimateHubbleConstant(records)
	if err != nil {
		return Result{Kind: model.KindHubbleConstant, Err: err}
	}
	if e.metrics != nil {
		e.metrics.RecordDerivedQuantity(model.KindHubbleConstant, true)
	}
	return Result{Kind: model.KindHubbleConstant, Quantity: q}
}

func (e *Engine) computeOne(rec *model.MeasurementRecord, kind model.QuantityKind) (*model.DerivedQuantity, error) {
	if rec == nil {
		return nil, fmt.Errorf("%w: nil record", ErrValidation)
	}
	switch kind {
	case model.KindHubbleDistance:
		return e.hubbleDistance(rec)
	case model.KindRedshiftConversion:
		return e.redshiftConversion(rec)
	case model.KindAngularVelocity:
		return e.angularVelocity(rec)
	case model.KindOrbitalParameterSet:
		return e.orbitalParameters(rec)
	case model.KindPhotoZEstimate:
		return e.photoZ(rec)
	default:
		return nil, fmt.Errorf("%w: kind %v", ErrUnsupportedQuantity, kind)
	}
}

func (e *Engine) hubbleDistance(rec *model.MeasurementRecord) (*model.DerivedQuantity, error) {
	if rec.Redshift == nil {
		return nil, fmt.Errorf("%w: hubble distance needs a redshift", ErrUnsupportedQuantity)
	}
	res, err := HubbleDistance(*rec.Redshift, e.h0, e.maxLinearZ)
	if err != nil {
		return nil, err
	}
	q := &model.DerivedQuantity{
		RecordID: rec.ID,
		Kind:     model.KindHubbleDistance,
		Value:    res.DistanceMpc,
		Valid:    true,
		Regime:   fmt.Sprintf("linear Hubble law, H0=%g km/s/Mpc", res.H0),
		Components: map[string]float64{
			"distance_ly":  res.DistanceLy,
			"velocity_kms": res.VelocityKms,
			"h0":           res.H0,
		},
	}
	if !res.LinearRegime {
		q.Warnings = append(q.Warnings,
			fmt.Sprintf("z=%g exceeds the linear-regime threshold %g; distance is approximate", *rec.Redshift, e.maxLinearZ))
	}
	return q, nil
}

func (e *Engine) redshiftConversion(rec *model.MeasurementRecord) (*model.DerivedQuantity, error) {
	if rec.Redshift == nil {
		return nil, fmt.Errorf("%w: redshift conversion needs a redshift", ErrUnsupportedQuantity)
	}
	v, err := RedshiftToVelocity(*rec.Redshift)
	if err != nil {
		return nil, err
	}
	return &model.DerivedQuantity{
		RecordID:   rec.ID,
		Kind:       model.KindRedshiftConversion,
		Value:      v,
		Valid:      true,
		Regime:     "relativistic Doppler, exact for z >= 0",
		Components: map[string]float64{"redshift": *rec.Redshift},
	}, nil
}

func (e *Engine) angularVelocity(rec *model.MeasurementRecord) (*model.DerivedQuantity, error) {
	if rec.ProperMotion == nil {
		if rec.OrbitalPeriodDays != nil {
			return e.orbitalAngularVelocity(rec)
		}
		return nil, fmt.Errorf("%w: angular velocity needs a proper motion or an orbital period", ErrUnsupportedQuantity)
	}
	omega := rec.ProperMotion.MasPerYear * masPerYearToRadPerSec

	q := &model.DerivedQuantity{
		RecordID:   rec.ID,
		Kind:       model.KindAngularVelocity,
		Value:      omega,
		Valid:      true,
		Regime:     "proper motion converted to rad/s",
		Components: map[string]float64{"pm_mas_yr": rec.ProperMotion.MasPerYear},
	}

	// Transverse velocity needs a distance: an independent one if known,
	// otherwise the linear Hubble-law distance from the redshift.
	distMpc := 0.0
	switch {
	case rec.KnownDistanceMpc != nil:
		distMpc = *rec.KnownDistanceMpc
	case rec.Redshift != nil:
		res, err := HubbleDistance(*rec.Redshift, e.h0, e.maxLinearZ)
		if err == nil {
			distMpc = res.DistanceMpc
			if !res.LinearRegime {
				q.Warnings = append(q.Warnings, "transverse velocity uses a distance outside the linear Hubble regime")
			}
		}
	}
	if distMpc > 0 {
		vt, err := TransverseVelocityKms(rec.ProperMotion.MasPerYear, distMpc)
		if err == nil {
			q.Components["transverse_velocity_kms"] = vt
			q.Components["distance_mpc"] = distMpc
		}
	}
	return q, nil
}

// orbitalAngularVelocity handles period-bearing rows (exoplanets): a
// circular orbit of radius a from Kepler III, then omega = 2*pi/T.
func (e *Engine) orbitalAngularVelocity(rec *model.MeasurementRecord) (*model.DerivedQuantity, error) {
	periodSeconds := *rec.OrbitalPeriodDays * SecondsPerDay
	aKm, _, err := CircularOrbitFromPeriod(e.defaultMu, periodSeconds)
	if err != nil {
		return nil, err
	}
	omega, linearKms, err := CircularAngularVelocity(periodSeconds, aKm)
	if err != nil {
		return nil, err
	}
	return &model.DerivedQuantity{
		RecordID: rec.ID,
		Kind:     model.KindAngularVelocity,
		Value:    omega,
		Valid:    true,
		Regime:   "mean orbital angular rate 2*pi/T, circular orbit from Kepler III",
		Components: map[string]float64{
			"period_days":        *rec.OrbitalPeriodDays,
			"semi_major_axis_au": aKm / AstronomicalUnitKm,
			"orbital_speed_kms":  linearKms,
		},
	}, nil
}

func (e *Engine) orbitalParameters(rec *model.MeasurementRecord) (*model.DerivedQuantity, error) {
	switch {
	case rec.State != nil:
		mu := rec.State.Mu
		if mu <= 0 {
			mu = e.defaultMu
		}
		el, err := ElementsFromStateVector(*rec.State, mu)
		if err != nil {
			return nil, err
		}
		q := &model.DerivedQuantity{
			RecordID: rec.ID,
			Kind:     model.KindOrbitalParameterSet,
			Value:    el.SemiMajorAxisKm,
			Valid:    true,
			Regime:   fmt.Sprintf("two-body elements from state vector, mu=%g km^3/s^2", mu),
			Components: map[string]float64{
				"eccentricity":       el.Eccentricity,
				"inclination_deg":    el.InclinationDeg,
				"angular_momentum":   el.AngularMomentum,
				"specific_energy":    el.SpecificEnergyKm2,
				"semi_major_axis_au": el.SemiMajorAxisKm / AstronomicalUnitKm,
			},
		}
		if el.Bound {
			q.Components["period_days"] = el.PeriodSeconds / SecondsPerDay
		} else {
			q.Warnings = append(q.Warnings, "orbit is unbound; no period")
		}
		return q, nil

	case rec.PerihelionAU != nil && rec.Eccentricity != nil:
		sum, err := BoundOrbitFromPerihelion(e.defaultMu, *rec.PerihelionAU*AstronomicalUnitKm, *rec.Eccentricity)
		if err != nil {
			return nil, err
		}
		return &model.DerivedQuantity{
			RecordID: rec.ID,
			Kind:     model.KindOrbitalParameterSet,
			Value:    sum.SemiMajorAxisKm,
			Valid:    true,
			Regime:   "bound orbit from perihelion and eccentricity (a = q/(1-e))",
			Components: map[string]float64{
				"eccentricity":       sum.Eccentricity,
				"period_days":        sum.PeriodDays,
				"period_years":       sum.PeriodYears,
				"orbital_speed_kms":  sum.OrbitalSpeedKms,
				"perihelion_au":      sum.PerihelionKm / AstronomicalUnitKm,
				"aphelion_au":        sum.AphelionKm / AstronomicalUnitKm,
				"semi_major_axis_au": sum.SemiMajorAxisKm / AstronomicalUnitKm,
			},
		}, nil

	case rec.OrbitalPeriodDays != nil:
		aKm, vKms, err := CircularOrbitFromPeriod(e.defaultMu, *rec.OrbitalPeriodDays*SecondsPerDay)
		if err != nil {
			return nil, err
		}
		return &model.DerivedQuantity{
			RecordID: rec.ID,
			Kind:     model.KindOrbitalParameterSet,
			Value:    aKm,
			Valid:    true,
			Regime:   "Kepler III from period, circular orbit, solar-mass host assumed",
			Components: map[string]float64{
				"orbital_speed_kms":  vKms,
				"period_days":        *rec.OrbitalPeriodDays,
				"semi_major_axis_au": aKm / AstronomicalUnitKm,
			},
		}, nil

	default:
		return nil, fmt.Errorf("%w: orbital parameters need a state vector, elements, or a period", ErrUnsupportedQuantity)
	}
}

func (e *Engine) photoZ(rec *model.MeasurementRecord) (*model.DerivedQuantity, error) {
	est, err := EstimatePhotoZ(rec.Photometry, RequiredBands(rec.Catalog), e.predictor)
	if err != nil {
		return nil, err
	}
	q := &model.DerivedQuantity{
		RecordID:   rec.ID,
		Kind:       model.KindPhotoZEstimate,
		Value:      est.Z,
		Valid:      true,
		Regime:     "photometric redshift via external predictor",
		Components: map[string]float64{"confidence": est.Confidence},
	}
	if est.Clamped {
		q.Warnings = append(q.Warnings, "negative raw estimate clamped to zero")
	}
	return q, nil
}
