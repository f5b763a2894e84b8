package observability

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyfreelabs/skyfree/model"
)

// PipelineCollector bundles Prometheus metrics for the catalog pipeline:
// ingest counts, validation failures, derived-quantity outcomes and
// compute latency.
type PipelineCollector struct {
	gatherer prometheus.Gatherer

	RecordsIngested    *prometheus.CounterVec
	ValidationFailures *prometheus.CounterVec
	DerivedQuantities  *prometheus.CounterVec
	ComputeDurations   *prometheus.HistogramVec

	StoreRecords prometheus.Gauge
}

// NewPipelineCollector registers pipeline Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewPipelineCollector(reg prometheus.Registerer) (*PipelineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ingested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skyfree_records_ingested_total",
		Help: "Total number of catalog rows accepted by the validator, labeled by catalog.",
	}, []string{"catalog"})
	ingested, err := registerCounterVec(reg, ingested, "skyfree_records_ingested_total")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skyfree_validation_failures_total",
		Help: "Total number of catalog rows rejected by the validator, labeled by catalog.",
	}, []string{"catalog"})
	failures, err = registerCounterVec(reg, failures, "skyfree_validation_failures_total")
	if err != nil {
		return nil, err
	}

	derived := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skyfree_derived_quantities_total",
		Help: "Total number of derived quantities produced, labeled by kind and validity.",
	}, []string{"kind", "valid"})
	derived, err = registerCounterVec(reg, derived, "skyfree_derived_quantities_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skyfree_compute_duration_seconds",
		Help:    "Batch computation latency in seconds, labeled by quantity kind.",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"kind"})
	durations, err = registerHistogramVec(reg, durations, "skyfree_compute_duration_seconds")
	if err != nil {
		return nil, err
	}

	storeRecords, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skyfree_store_records",
		Help: "Current number of measurement records held in the store.",
	}), "skyfree_store_records")
	if err != nil {
		return nil, err
	}

	return &PipelineCollector{
		gatherer:           gatherer,
		RecordsIngested:    ingested,
		ValidationFailures: failures,
		DerivedQuantities:  derived,
		ComputeDurations:   durations,
		StoreRecords:       storeRecords,
	}, nil
}

// RecordIngested counts one accepted row for the catalog.
func (c *PipelineCollector) RecordIngested(cat model.Catalog) {
	if c == nil || c.RecordsIngested == nil {
		return
	}
	c.RecordsIngested.WithLabelValues(cat.String()).Inc()
}

// RecordValidationFailure counts one rejected row for the catalog.
func (c *PipelineCollector) RecordValidationFailure(cat model.Catalog) {
	if c == nil || c.ValidationFailures == nil {
		return
	}
	c.ValidationFailures.WithLabelValues(cat.String()).Inc()
}

// RecordDerivedQuantity satisfies core.MetricsRecorder.
func (c *PipelineCollector) RecordDerivedQuantity(kind model.QuantityKind, valid bool) {
	if c == nil || c.DerivedQuantities == nil {
		return
	}
	c.DerivedQuantities.WithLabelValues(kind.String(), strconv.FormatBool(valid)).Inc()
}

// ObserveComputeDuration satisfies core.MetricsRecorder.
func (c *PipelineCollector) ObserveComputeDuration(kind model.QuantityKind, seconds float64) {
	if c == nil || c.ComputeDurations == nil {
		return
	}
	c.ComputeDurations.WithLabelValues(kind.String()).Observe(seconds)
}

// SetStoreCount drives the store gauge; the record store calls this from
// its mutators via its kb.Gauges hook.
func (c *PipelineCollector) SetStoreCount(records int) {
	if c == nil || c.StoreRecords == nil {
		return
	}
	c.StoreRecords.Set(float64(records))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PipelineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
