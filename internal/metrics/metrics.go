package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	metric2 "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.10.0"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apm"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

type MetricProvider interface {
	Meter(name string, options ...metric.MeterOption) metric.Meter
	Shutdown(ctx context.Context) error
}

// Provider is the installed meter provider plus the Prometheus registry its
// pull exporter writes to. Registry is nil without a Prometheus reader.
type Provider struct {
	*metric2.MeterProvider
	Registry *prometheus.Registry
}

func getReaders(ctx context.Context, cfg Config) ([]metric2.Reader, *prometheus.Registry, error) {
	var readers []metric2.Reader
	var registry *prometheus.Registry

	for _, provider := range cfg.Provider {
		switch provider.Provider {
		case PrometheusProvider:
			registry = prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
			if err != nil {
				return nil, nil, fmt.Errorf("prometheus exporter: %w", err)
			}

			readers = append(readers, promExporter)
		case OtelCollector:
			opts := []otlpmetricgrpc.Option{
				otlpmetricgrpc.WithEndpointURL(provider.Endpoint),
				otlpmetricgrpc.WithHeaders(provider.Headers),
			}

			if provider.Insecure {
				opts = append(opts, otlpmetricgrpc.WithInsecure())
			}

			exp, err := otlpmetricgrpc.New(ctx, opts...)
			if err != nil {
				return nil, nil, fmt.Errorf("otlp metric exporter: %w", err)
			}

			readers = append(readers, metric2.NewPeriodicReader(exp, metric2.WithInterval(provider.Interval)))
		case ManualProvider:
			readers = append(readers, provider.Reader)
		}
	}

	return readers, registry, nil
}

// NewMetricProvider builds the meter provider and installs it globally.
func NewMetricProvider(options ...OptionFn) (*Provider, error) {
	ctx := context.Background()

	var cfg Config

	for _, opt := range options {
		cfg = opt(cfg)
	}

	readers, registry, err := getReaders(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var metricsOps []metric2.Option

	for _, reader := range readers {
		metricsOps = append(metricsOps, metric2.WithReader(reader))
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = os.Getenv("OTEL_SERVICE_NAME")
	}
	metricsOps = append(metricsOps, metric2.WithResource(
		resource.NewSchemaless(semconv.ServiceNameKey.String(serviceName)),
	))

	meterProvider := metric2.NewMeterProvider(metricsOps...)

	otel.SetMeterProvider(meterProvider)

	return &Provider{MeterProvider: meterProvider, Registry: registry}, nil
}

// NewMetricProviderFromConfig maps the telemetry section: a Prometheus reader
// always, plus an OTLP gRPC push reader when the exporter is otlp-grpc.
// Disabled telemetry returns nil and leaves the global no-op provider.
func NewMetricProviderFromConfig(cfg config.TelemetryConfig) (*Provider, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts := []OptionFn{
		WithServiceName(cfg.ServiceName),
		WithProviderConfig(ProviderCfg{Provider: PrometheusProvider}),
	}
	if cfg.Exporter == "otlp-grpc" && cfg.OTLPEndpoint != "" {
		opts = append(opts, WithProviderConfig(NewOtelCollectorConfig(cfg.OTLPEndpoint, apm.ParseHeaders(cfg.OTLPHeaders), InsecureOtel, 0)))
	}
	return NewMetricProvider(opts...)
}

// Handler serves the registry in the Prometheus text format.
func (p *Provider) Handler() http.Handler {
	if p == nil || p.Registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{Registry: p.Registry})
}

// PrometheusServer serves /metrics on its own port.
type PrometheusServer struct {
	server *http.Server
	logger logger.LoggerInterface
}

// ServePrometheusMetrics binds the port and serves handler at /metrics in the background.
func ServePrometheusMetrics(handler http.Handler, log logger.LoggerInterface, opt ...PromOptionFn) (*PrometheusServer, error) {
	var cfg PromServerConfig
	var port = "2223"

	for _, o := range opt {
		cfg = o(cfg)
	}

	if cfg.port != "" {
		port = cfg.port
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	ln, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return nil, fmt.Errorf("metrics listen: %w", err)
	}

	srv := &PrometheusServer{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: log,
	}

	log.Info(context.Background(), "serving metrics", "addr", ln.Addr().String(), "path", "/metrics")
	go func() {
		if err := srv.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(context.Background(), "metrics server stopped", "error", err)
		}
	}()

	return srv, nil
}

// Stop shuts the metrics server down.
func (s *PrometheusServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
