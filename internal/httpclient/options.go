// Package httpclient is the instrumented HTTP client used to reach chain nodes.
// Every request is traced through otelhttp and counted and timed per provider.
package httpclient

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// TraceOption selects which bodies are attached to the request span.
type TraceOption string

const (
	TraceRequest  TraceOption = "request"
	TraceResponse TraceOption = "response"
)

type clientOptions struct {
	meterProvider    metric.MeterProvider
	providerName     string
	roundTripper     http.RoundTripper
	requestTimeout   time.Duration
	headers          map[string]string
	userAgent        string
	baseURL          string
	maxResponseBytes int64
	traceRequest     bool
	traceResponse    bool
	tracer           trace.Tracer
}

// ClientOption configures NewInstrumentedClient.
type ClientOption func(*clientOptions)

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) ClientOption {
	return func(o *clientOptions) {
		o.meterProvider = mp
	}
}

// WithProviderName labels metrics and spans, e.g. "endless".
func WithProviderName(name string) ClientOption {
	return func(o *clientOptions) {
		o.providerName = name
	}
}

// WithRoundTripper replaces the pooled default transport. It is still wrapped by otelhttp.
func WithRoundTripper(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) {
		o.roundTripper = rt
	}
}

func WithRequestTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.requestTimeout = timeout
	}
}

// WithHeaders sets headers sent on every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(o *clientOptions) {
		o.headers = headers
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = ua
	}
}

// WithBaseURL prefixes relative request paths.
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// WithMaxResponseBytes caps how much of a response body is read.
// Larger bodies fail with ErrResponseTooLarge.
func WithMaxResponseBytes(n int64) ClientOption {
	return func(o *clientOptions) {
		o.maxResponseBytes = n
	}
}

// WithTraceOptions sets the tracer and attaches the selected bodies to spans.
func WithTraceOptions(tracer trace.Tracer, opts ...TraceOption) ClientOption {
	return func(o *clientOptions) {
		o.tracer = tracer
		for _, opt := range opts {
			switch opt {
			case TraceRequest:
				o.traceRequest = true
			case TraceResponse:
				o.traceResponse = true
			}
		}
	}
}

type requestOptions struct {
	errorHandler ResponseErrorHandler
	labels       []Label
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// ResponseErrorHandler turns a response into an error. Returning nil accepts it.
type ResponseErrorHandler func(statusCode int, body []byte) error

func WithResponseErrorHandler(handler ResponseErrorHandler) RequestOption {
	return func(o *requestOptions) {
		o.errorHandler = handler
	}
}

// Label is an extra metric attribute, e.g. endpoint=view.
type Label struct {
	Key   string
	Value string
}

// NewLabel creates a new label.
func NewLabel(key, value string) Label {
	return Label{Key: key, Value: value}
}

// WithLabels adds metric attributes to the request.
func WithLabels(labels ...Label) RequestOption {
	return func(o *requestOptions) {
		o.labels = append(o.labels, labels...)
	}
}
