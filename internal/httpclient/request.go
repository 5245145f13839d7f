package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrDecodeResult is returned when a 2xx body does not decode into the result.
	ErrDecodeResult = errors.New("httpclient: decode result")
	// ErrResponseTooLarge is returned when a body exceeds WithMaxResponseBytes.
	ErrResponseTooLarge = errors.New("httpclient: response too large")
)

// Request builds and sends one HTTP request.
type Request interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path string) (*Response, error)

	// SetBody sends []byte and string as is and JSON-encodes anything else.
	SetBody(body any) Request
	SetHeader(key, value string) Request
	SetQueryParam(key, value string) Request
	// SetResult decodes a successful JSON body into result.
	SetResult(result any) Request
}

// Response is an http.Response with its body already read.
type Response struct {
	*http.Response
	body []byte
}

func (r *Response) Body() []byte {
	return r.body
}

func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode < 400
}

type requestBuilder struct {
	client  *instrumentedClient
	headers map[string]string
	query   url.Values
	body    any
	result  any
	opts    requestOptions
}

func (r *requestBuilder) Get(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodGet, path)
}

func (r *requestBuilder) Post(ctx context.Context, path string) (*Response, error) {
	return r.execute(ctx, http.MethodPost, path)
}

func (r *requestBuilder) SetBody(body any) Request {
	r.body = body
	return r
}

func (r *requestBuilder) SetHeader(key, value string) Request {
	r.headers[key] = value
	return r
}

func (r *requestBuilder) SetQueryParam(key, value string) Request {
	if r.query == nil {
		r.query = url.Values{}
	}
	r.query.Set(key, value)
	return r
}

func (r *requestBuilder) SetResult(result any) Request {
	r.result = result
	return r
}

func (r *requestBuilder) url(path string) string {
	full := path
	if base := r.client.opts.baseURL; base != "" && !strings.HasPrefix(path, "http") {
		full = strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if len(r.query) > 0 {
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + r.query.Encode()
	}
	return full
}

func (r *requestBuilder) encodeBody() (io.Reader, []byte, error) {
	switch b := r.body.(type) {
	case nil:
		return nil, nil, nil
	case []byte:
		return bytes.NewReader(b), b, nil
	case string:
		return strings.NewReader(b), []byte(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		if _, ok := r.headers["Content-Type"]; !ok {
			r.headers["Content-Type"] = "application/json"
		}
		return bytes.NewReader(data), data, nil
	}
}

func (r *requestBuilder) execute(ctx context.Context, method, path string) (*Response, error) {
	c := r.client
	ctx, span := c.tracer.Start(ctx, "http.request",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.path", path),
			attribute.String("provider", c.opts.providerName),
		),
	)
	defer span.End()

	start := time.Now()
	resp, err := r.do(ctx, span, method, path)
	r.record(ctx, start, err == nil && resp.IsSuccess())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			span.SetAttributes(attribute.Bool("request.timeout", true))
		}
	}
	return resp, err
}

func (r *requestBuilder) do(ctx context.Context, span trace.Span, method, path string) (*Response, error) {
	bodyReader, raw, err := r.encodeBody()
	if err != nil {
		return nil, err
	}
	if r.client.opts.traceRequest && raw != nil {
		span.AddEvent("request.body", trace.WithAttributes(attribute.String("http.request_body", string(raw))))
	}

	req, err := http.NewRequestWithContext(ctx, method, r.url(path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	httpResp, err := r.client.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	limit := r.client.opts.maxResponseBytes
	body, err := io.ReadAll(io.LimitReader(httpResp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}
	if r.client.opts.traceResponse {
		span.AddEvent("response.body", trace.WithAttributes(attribute.String("http.response_body", string(body))))
	}

	resp := &Response{Response: httpResp, body: body}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if h := r.opts.errorHandler; h != nil {
		if err := h(resp.StatusCode, body); err != nil {
			return resp, err
		}
	}

	if r.result != nil && resp.IsSuccess() {
		if err := json.Unmarshal(body, r.result); err != nil {
			return resp, fmt.Errorf("%w: %v", ErrDecodeResult, err)
		}
	}
	return resp, nil
}

func (r *requestBuilder) record(ctx context.Context, start time.Time, success bool) {
	attrs := make([]attribute.KeyValue, 0, len(r.opts.labels)+2)
	attrs = append(attrs,
		attribute.String("provider", r.client.opts.providerName),
		attribute.Bool("success", success),
	)
	for _, l := range r.opts.labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	set := metric.WithAttributes(attrs...)

	r.client.requests.Add(ctx, 1, set)
	r.client.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, set)
}
