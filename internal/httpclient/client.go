package httpclient

import (
	"context"
	"maps"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/httptrace/otelhttptrace"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "sliswap/httpclient"

	defaultRequestTimeout   = 5 * time.Second
	defaultMaxResponseBytes = 1 << 20
	defaultUserAgent        = "sliswap"

	metricRequests = "http_client_requests_total"
	metricDuration = "http_client_request_duration_ms"
)

// Client builds instrumented requests against one base URL.
type Client interface {
	NewRequest() Request
	NewRequestWithOptions(opts ...RequestOption) Request
	BaseURL() string
}

type instrumentedClient struct {
	http     *http.Client
	requests metric.Int64Counter
	duration metric.Float64Histogram
	tracer   trace.Tracer
	opts     clientOptions
}

// NewInstrumentedClient creates a client whose transport is wrapped by otelhttp.
func NewInstrumentedClient(opts ...ClientOption) (Client, error) {
	o := clientOptions{
		providerName:     "default",
		requestTimeout:   defaultRequestTimeout,
		userAgent:        defaultUserAgent,
		maxResponseBytes: defaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := o.roundTripper
	if transport == nil {
		transport = &http.Transport{
			DialContext: (&net.Dialer{
				KeepAlive: 10 * time.Second,
			}).DialContext,
			MaxConnsPerHost:       8,
			IdleConnTimeout:       2 * time.Minute,
			ExpectContinueTimeout: 100 * time.Millisecond,
		}
	}

	mp := o.meterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName,
		metric.WithInstrumentationAttributes(attribute.String("provider", o.providerName)))

	requests, err := meter.Int64Counter(metricRequests,
		metric.WithDescription("HTTP requests sent, by provider and outcome"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(metricDuration,
		metric.WithDescription("HTTP request duration including body read"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	return &instrumentedClient{
		http: &http.Client{
			Timeout: o.requestTimeout,
			Transport: otelhttp.NewTransport(transport,
				otelhttp.WithClientTrace(func(ctx context.Context) *httptrace.ClientTrace {
					return otelhttptrace.NewClientTrace(ctx)
				}),
			),
		},
		requests: requests,
		duration: duration,
		tracer:   tracer,
		opts:     o,
	}, nil
}

func (c *instrumentedClient) NewRequest() Request {
	return c.NewRequestWithOptions()
}

func (c *instrumentedClient) NewRequestWithOptions(opts ...RequestOption) Request {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	headers := make(map[string]string, len(c.opts.headers)+1)
	maps.Copy(headers, c.opts.headers)
	if _, ok := headers["User-Agent"]; !ok && c.opts.userAgent != "" {
		headers["User-Agent"] = c.opts.userAgent
	}

	return &requestBuilder{
		client:  c,
		headers: headers,
		opts:    ro,
	}
}

func (c *instrumentedClient) BaseURL() string {
	return c.opts.baseURL
}
