package metrics

import (
	"time"

	"go.opentelemetry.io/otel/sdk/metric"
)

// ProviderKind selects a metric reader.
type ProviderKind string

const (
	PrometheusProvider ProviderKind = "prometheus"
	OtelCollector      ProviderKind = "customOtelCollector"
	ManualProvider     ProviderKind = "manual"
	InsecureOtel                    = false
	SecureOtel                      = true

	defaultExportInterval = 15 * time.Second
)

// NewOtelCollectorConfig pushes to an OTLP gRPC collector every interval.
// A zero interval uses 15s.
func NewOtelCollectorConfig(url string, headers map[string]string, insecure bool, interval time.Duration) ProviderCfg {
	if interval <= 0 {
		interval = defaultExportInterval
	}
	return ProviderCfg{
		Provider: OtelCollector,
		Endpoint: url,
		Headers:  headers,
		Insecure: insecure,
		Interval: interval,
	}
}

// NewManualReaderConfig attaches a caller-owned reader, typically a
// metric.NewManualReader in tests.
func NewManualReaderConfig(reader metric.Reader) ProviderCfg {
	return ProviderCfg{Provider: ManualProvider, Reader: reader}
}

type Config struct {
	ServiceName string
	Provider    []ProviderCfg
}

type ProviderCfg struct {
	Provider ProviderKind
	Endpoint string
	Headers  map[string]string
	Insecure bool
	Interval time.Duration
	Reader   metric.Reader
}

type OptionFn func(config Config) Config

func WithProviderConfig(provider ProviderCfg) OptionFn {
	return func(config Config) Config {
		config.Provider = append(config.Provider, provider)
		return config
	}
}

func WithServiceName(serviceName string) OptionFn {
	return func(config Config) Config {
		config.ServiceName = serviceName
		return config
	}
}

type PromServerConfig struct {
	port string
}

type PromOptionFn func(config PromServerConfig) PromServerConfig

// WithPort sets the /metrics listen port. Default 2223.
func WithPort(port string) PromOptionFn {
	return func(config PromServerConfig) PromServerConfig {
		config.port = port
		return config
	}
}
