package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jt828/functrace/internal/bootstrap"
	"github.com/jt828/functrace/internal/config"
	"github.com/jt828/functrace/internal/service"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/jt828/functrace/pkg/observability/implementation"
	"github.com/jt828/functrace/pkg/tracewrap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	rounds := flag.Int("rounds", 4, "number of concurrent demo rounds")
	fibN := flag.Int("fib", 25, "fibonacci argument")
	linger := flag.Duration("linger", 0, "keep serving metrics this long after the demo")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := implementation.NewZapLogger(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		panic(err)
	}
	meter := implementation.NewPrometheusMeter()

	var (
		store     sdktrace.SpanExporter
		spanStore *bootstrap.SpanStore
	)
	if cfg.Tracing.Enabled() && cfg.Tracing.ExporterType == implementation.ExporterStore {
		spanStore, err = bootstrap.InitializeSpanStore(cfg.Database.DSN, meter, log)
		if err != nil {
			log.Fatal("failed to initialize span store", observability.Err(err))
		}
		store = spanStore.Exporter
	}

	obs, err := bootstrap.InitializeObservability(ctx, cfg, store, log, meter)
	if err != nil {
		log.Fatal("failed to initialize observability", observability.Err(err))
	}
	if err := obs.Start(ctx); err != nil {
		log.Error("failed to start observability", observability.Err(err))
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sig:
			log.Info("interrupted, stopping demo")
			cancel()
		case <-ctx.Done():
		}
	}()

	w := tracewrap.New(obs.Tracer(),
		tracewrap.WithLogger(log),
		tracewrap.WithMetrics(tracewrap.NewMetrics(obs.Meter())),
	)

	d, err := newDemo(w, log)
	if err != nil {
		log.Fatal("failed to wrap workloads", observability.Err(err))
	}

	start := time.Now()
	d.runSequential(ctx, *fibN)
	if err := d.runConcurrent(ctx, *rounds, *fibN); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("concurrent run failed", observability.Err(err))
	}
	d.runInstrumented(ctx)
	log.Info("demo finished", observability.Duration("elapsed", time.Since(start)))

	if *linger > 0 {
		log.Info("serving metrics", observability.Duration("for", *linger))
		select {
		case <-time.After(*linger):
		case <-ctx.Done():
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := obs.Close(shutdownCtx); err != nil {
		log.Error("failed to close observability", observability.Err(err))
	}

	if spanStore != nil {
		reportStoredSpans(shutdownCtx, spanStore.Service, log)
	}
}

func reportStoredSpans(ctx context.Context, svc service.SpanRecordService, log observability.Logger) {
	failed, err := svc.Query(ctx, service.QueryParams{StatusCodeEq: "ERROR", Limit: 100})
	if err != nil {
		log.Error("failed to query span store", observability.Err(err))
		return
	}
	log.Info("span store holds failed spans", observability.Int("count", len(failed)))
}
