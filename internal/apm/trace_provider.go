package apm

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

type Provider string

const (
	OTLPGRPCProvider Provider = "otlp-grpc"
	OTLPHTTPProvider Provider = "otlp-http"
	ZipkinProvider   Provider = "zipkin"
	ConsoleProvider  Provider = "stdout"
	EmptyProvider    Provider = "none"
)

type TraceProvider interface {
	Stop() error
}

type traceProvider struct {
	tp *sdktrace.TracerProvider
}

type emptyTraceProvider struct{}

func (emptyTraceProvider) Stop() error { return nil }

type TracerOptions struct {
	exporter           sdktrace.SpanExporter
	tracerProviderName string
	serviceName        string
	useEmpty           bool
	err                error
}

type TracerOption func(*TracerOptions)

// WithProvider selects the span exporter. endpoint is the collector URL for
// the OTLP and zipkin exporters; headers are "k=v,k2=v2".
func WithProvider(provider Provider, endpoint, headers string, log logger.LoggerInterface) TracerOption {
	switch provider {
	case OTLPGRPCProvider:
		return useOTLPGRPC(endpoint, headers)
	case OTLPHTTPProvider:
		return useOTLPHTTP(endpoint, headers)
	case ZipkinProvider:
		return useZipkin(endpoint)
	case ConsoleProvider:
		return useConsole(os.Stdout)
	case EmptyProvider, "":
		return useEmpty()
	}

	log.Warn(context.Background(), "TracerProvider not found, using EmptyProvider", "provider", string(provider))
	return useEmpty()
}

// WithWriter sends spans as JSON to w. Used in tests and for local debugging.
func WithWriter(w io.Writer) TracerOption {
	return useConsole(w)
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) TracerOption {
	return func(option *TracerOptions) {
		option.serviceName = name
	}
}

func useEmpty() TracerOption {
	return func(option *TracerOptions) {
		option.useEmpty = true
		option.tracerProviderName = string(EmptyProvider)
	}
}

func useConsole(w io.Writer) TracerOption {
	return func(option *TracerOptions) {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
		option.exporter = exp
		option.err = err
		option.tracerProviderName = string(ConsoleProvider)
	}
}

func useZipkin(url string) TracerOption {
	return func(option *TracerOptions) {
		exp, err := zipkin.New(url)
		option.exporter = exp
		option.err = err
		option.tracerProviderName = string(ZipkinProvider)
	}
}

func useOTLPGRPC(url, headers string) TracerOption {
	return func(option *TracerOptions) {
		exp, err := otlptracegrpc.New(
			context.Background(),
			otlptracegrpc.WithEndpointURL(url),
			otlptracegrpc.WithHeaders(ParseHeaders(headers)),
		)
		option.exporter = exp
		option.err = err
		option.tracerProviderName = string(OTLPGRPCProvider)
	}
}

func useOTLPHTTP(url, headers string) TracerOption {
	return func(option *TracerOptions) {
		exp, err := otlptracehttp.New(
			context.Background(),
			otlptracehttp.WithEndpointURL(url),
			otlptracehttp.WithHeaders(ParseHeaders(headers)),
		)
		option.exporter = exp
		option.err = err
		option.tracerProviderName = string(OTLPHTTPProvider)
	}
}

// ParseHeaders parses "k=v,k2=v2". Malformed entries are skipped.
func ParseHeaders(s string) map[string]string {
	out := make(map[string]string)
	for _, kv := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(kv), "=")
		if !ok || k == "" {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}

// NewTraceProvider builds the exporter, installs the global tracer provider
// and the W3C propagators.
func NewTraceProvider(log logger.LoggerInterface, options ...TracerOption) (TraceProvider, error) {
	opts := &TracerOptions{serviceName: os.Getenv("OTEL_SERVICE_NAME")}

	for _, opt := range options {
		opt(opts)
	}

	if opts.err != nil {
		return nil, fmt.Errorf("create %s exporter: %w", opts.tracerProviderName, opts.err)
	}

	if opts.useEmpty {
		return emptyTraceProvider{}, nil
	}

	rsrc, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(opts.serviceName),
			attribute.String("otel.provider", opts.tracerProviderName),
		))
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(opts.exporter),
		sdktrace.WithResource(rsrc),
	)

	// Set global trace provider
	otel.SetTracerProvider(tp)

	// Set trace propagator
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))

	log.Info(context.Background(), "tracing initialized", "provider", opts.tracerProviderName)

	return &traceProvider{
		tp,
	}, nil
}

// NewTraceProviderFromConfig maps the telemetry section onto NewTraceProvider.
// Disabled telemetry yields a no-op provider.
func NewTraceProviderFromConfig(cfg config.TelemetryConfig, log logger.LoggerInterface) (TraceProvider, error) {
	if !cfg.Enabled {
		return emptyTraceProvider{}, nil
	}

	endpoint := cfg.OTLPEndpoint
	if Provider(cfg.Exporter) == ZipkinProvider {
		endpoint = cfg.ZipkinURL
	}

	return NewTraceProvider(log,
		WithServiceName(cfg.ServiceName),
		WithProvider(Provider(cfg.Exporter), endpoint, cfg.OTLPHeaders, log),
	)
}

func (o *traceProvider) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := o.tp.Shutdown(ctx); err != nil {
		return err
	}

	return nil
}

// ForceFlush exports all finished spans now.
func (o *traceProvider) ForceFlush(ctx context.Context) error {
	return o.tp.ForceFlush(ctx)
}
