package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/skyfreelabs/skyfree/core"
	"github.com/skyfreelabs/skyfree/internal/catalog"
	"github.com/skyfreelabs/skyfree/internal/export"
	"github.com/skyfreelabs/skyfree/internal/logging"
	"github.com/skyfreelabs/skyfree/internal/observability"
	"github.com/skyfreelabs/skyfree/internal/predictor"
	"github.com/skyfreelabs/skyfree/kb"
	"github.com/skyfreelabs/skyfree/model"
)

func main() {
	inputPath := flag.String("input", "", "Path to a native catalog CSV export (default: stdin)")
	catalogName := flag.String("catalog", "SDSS", "Source catalog: SDSS, DESI, NASA_ESI, or NEO")
	quantities := flag.String("quantities", "hubble_distance", "Comma-separated quantities to derive: hubble_constant, hubble_distance, redshift_conversion, angular_velocity, orbital_parameters, photo_z")
	outputPath := flag.String("output", "", "Path for the CSV report (default: stdout)")
	h0 := flag.Float64("h0", core.DefaultHubbleConstant, "Hubble constant in km/s/Mpc")
	maxLinearZ := flag.Float64("max-linear-z", core.DefaultLinearRegimeMaxZ, "Redshift ceiling for the linear Hubble-law regime")
	workers := flag.Int("workers", 4, "Bounded per-record fan-out")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics (disabled when empty)")
	flag.Parse()

	ctx, log := logging.WithBatchLogger(context.Background(), logging.NewFromEnv())

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(ctx, shutdownTracing, log)

	collector, err := observability.NewPipelineCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}
	metricsSrv := serveMetrics(*metricsAddr, collector, log)

	cat, err := model.ParseCatalog(*catalogName)
	if err != nil {
		log.Error(ctx, "unknown catalog", logging.String("catalog", *catalogName))
		os.Exit(2)
	}
	kinds, err := parseQuantities(*quantities)
	if err != nil {
		log.Error(ctx, "bad quantity list", logging.String("error", err.Error()))
		os.Exit(2)
	}

	in := io.Reader(os.Stdin)
	if *inputPath != "" {
		f, err := os.Open(*inputPath)
		if err != nil {
			log.Error(ctx, "failed to open input", logging.String("path", *inputPath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	records, failures, err := catalog.LoadAndIngest(in, cat)
	if err != nil {
		log.Error(ctx, "ingest failed", logging.String("error", err.Error()))
		os.Exit(1)
	}
	for _, f := range failures {
		collector.RecordValidationFailure(cat)
		log.Warn(ctx, "row rejected",
			logging.Int("row", f.Index),
			logging.String("id", f.ID),
			logging.String("error", f.Err.Error()),
		)
	}

	store := kb.NewStore()
	store.SetGauges(collector)
	for _, rec := range records {
		if err := store.AddRecord(rec); err != nil {
			log.Warn(ctx, "duplicate record skipped", logging.String("id", rec.ID))
			continue
		}
		collector.RecordIngested(cat)
	}
	log.Info(ctx, "catalog ingested",
		logging.String("catalog", cat.String()),
		logging.Int("accepted", len(store.ListRecords())),
		logging.Int("rejected", len(failures)),
	)

	engine := core.NewEngine(
		core.WithHubbleConstant(*h0),
		core.WithLinearRegimeMaxZ(*maxLinearZ),
		core.WithWorkers(*workers),
		core.WithPredictor(predictor.NewColorRelation()),
		core.WithLogger(log),
		core.WithMetricsRecorder(collector),
	)

	accepted := store.ListRecords()
	batches := make([][]core.Result, 0, len(kinds))
	for _, kind := range kinds {
		results := engine.Compute(ctx, accepted, kind)
		for _, res := range results {
			if res.Quantity != nil && res.Quantity.RecordID != "" {
				if err := store.AttachDerived(*res.Quantity); err != nil {
					log.Warn(ctx, "failed to attach quantity", logging.String("id", res.Quantity.RecordID), logging.String("error", err.Error()))
				}
			}
		}
		batches = append(batches, results)
	}

	rows := core.AssembleReport(batches...)

	out := io.Writer(os.Stdout)
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Error(ctx, "failed to create output", logging.String("path", *outputPath), logging.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := export.WriteCSV(out, rows); err != nil {
		log.Error(ctx, "failed to write report", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "report written", logging.Int("rows", len(rows)))

	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}
}

func parseQuantities(s string) ([]model.QuantityKind, error) {
	known := map[string]model.QuantityKind{
		model.KindHubbleConstant.String():      model.KindHubbleConstant,
		model.KindHubbleDistance.String():      model.KindHubbleDistance,
		model.KindRedshiftConversion.String():  model.KindRedshiftConversion,
		model.KindAngularVelocity.String():     model.KindAngularVelocity,
		model.KindOrbitalParameterSet.String(): model.KindOrbitalParameterSet,
		model.KindPhotoZEstimate.String():      model.KindPhotoZEstimate,
	}

	var kinds []model.QuantityKind
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		kind, ok := known[name]
		if !ok {
			return nil, fmt.Errorf("unknown quantity %q", name)
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no quantities requested")
	}
	return kinds, nil
}

func serveMetrics(addr string, collector *observability.PipelineCollector, log logging.Logger) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
