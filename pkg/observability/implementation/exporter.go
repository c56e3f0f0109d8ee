package implementation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/jt828/functrace/pkg/apperror"
	"github.com/jt828/functrace/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
)

const (
	ExporterConsole  = "console"
	ExporterOTLP     = "otlp"
	ExporterOTLPHTTP = "otlphttp"
	ExporterStore    = "store"
)

type ExporterConfig struct {
	Type     string
	Endpoint string
	Insecure bool
	// Writer receives console output; stdout when nil.
	Writer io.Writer
	// Store backs the "store" exporter type.
	Store sdktrace.SpanExporter
}

// NewSpanExporter selects the exporter named by cfg.Type. Unknown types fall back
// to the console exporter. When reg is set, gRPC client metrics of the OTLP
// connection are registered on it.
func NewSpanExporter(
	ctx context.Context,
	cfg ExporterConfig,
	log observability.Logger,
	reg prometheus.Registerer,
) (sdktrace.SpanExporter, error) {
	switch cfg.Type {
	case ExporterConsole:
		log.Info("using console span exporter")
		return newConsoleExporter(cfg.Writer)
	case ExporterOTLP:
		log.Info("using otlp grpc span exporter", observability.String("endpoint", cfg.Endpoint))
		return newOTLPGrpcExporter(ctx, cfg, reg)
	case ExporterOTLPHTTP:
		log.Info("using otlp http span exporter", observability.String("endpoint", cfg.Endpoint))
		return newOTLPHTTPExporter(ctx, cfg)
	case ExporterStore:
		if cfg.Store == nil {
			return nil, fmt.Errorf("%w: store exporter requires a span store", apperror.ErrInvalidConfig)
		}
		log.Info("using span store exporter")
		return cfg.Store, nil
	default:
		log.Warn("unknown exporter type, using console", observability.String("type", cfg.Type))
		return newConsoleExporter(cfg.Writer)
	}
}

func newConsoleExporter(w io.Writer) (sdktrace.SpanExporter, error) {
	if w == nil {
		w = os.Stdout
	}
	return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
}

func newOTLPGrpcExporter(
	ctx context.Context,
	cfg ExporterConfig,
	reg prometheus.Registerer,
) (sdktrace.SpanExporter, error) {
	var opts []otlptracegrpc.Option
	if strings.Contains(cfg.Endpoint, "://") {
		opts = append(opts, otlptracegrpc.WithEndpointURL(cfg.Endpoint))
	} else {
		opts = append(opts, otlptracegrpc.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	if reg != nil {
		metrics := grpc_prometheus.NewClientMetrics()
		if err := reg.Register(metrics); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return nil, err
			}
			metrics = are.ExistingCollector.(*grpc_prometheus.ClientMetrics)
		}
		opts = append(opts, otlptracegrpc.WithDialOption(
			grpc.WithChainUnaryInterceptor(metrics.UnaryClientInterceptor()),
		))
	}

	return otlptracegrpc.New(ctx, opts...)
}

func newOTLPHTTPExporter(ctx context.Context, cfg ExporterConfig) (sdktrace.SpanExporter, error) {
	var opts []otlptracehttp.Option
	if strings.Contains(cfg.Endpoint, "://") {
		opts = append(opts, otlptracehttp.WithEndpointURL(cfg.Endpoint))
	} else {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
}
