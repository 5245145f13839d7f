// Package endless reads pool state from an Endless full node through Move view functions.
package endless

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/cache"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/circuitbreaker"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/httpclient"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/ratelimit"
)

const (
	tracerName = "sliswap/endless"

	viewEndpoint   = "/v1/view"
	ledgerEndpoint = "/v1"

	sourceName = "endless"

	maxViewResponseBytes = 64 << 10
)

// viewRequest is the body of POST /v1/view.
type viewRequest struct {
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

// Client calls view functions on an Endless node. It satisfies the swap
// service's ReserveSource and AmountOutSource ports.
type Client struct {
	cfg     config.EndlessConfig
	client  httpclient.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.CircuitBreaker[[]string]
	cache   *cache.Cache[string, []string]
	logger  logger.LoggerInterface
	tracer  trace.Tracer
}

// NewClient creates a view client for cfg.NodeURL.
func NewClient(cfg config.EndlessConfig, log logger.LoggerInterface) (*Client, error) {
	if cfg.NodeURL == "" {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("endless node url is empty"))
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.InitialBackoff == 0 {
		cfg.InitialBackoff = 200 * time.Millisecond
	}
	if cfg.MaxBackoff == 0 {
		cfg.MaxBackoff = 2 * time.Second
	}

	tracer := otel.Tracer(tracerName)

	client, err := httpclient.NewInstrumentedClient(
		httpclient.WithProviderName(sourceName),
		httpclient.WithBaseURL(cfg.NodeURL),
		httpclient.WithRequestTimeout(cfg.Timeout),
		httpclient.WithTraceOptions(tracer, httpclient.TraceRequest, httpclient.TraceResponse),
		httpclient.WithMaxResponseBytes(maxViewResponseBytes),
		httpclient.WithUserAgent("sliswap-endless"),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	breakerCfg := circuitbreaker.DefaultConfig("endless-view")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn(context.Background(), "circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String())
	}

	return &Client{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.RateLimitPerSec, 1),
		breaker: circuitbreaker.New[[]string](breakerCfg),
		cache:   cache.New[string, []string](cfg.CacheTTL),
		logger:  log,
		tracer:  tracer,
	}, nil
}

// Name identifies this reserve source.
func (c *Client) Name() string {
	return sourceName
}

// Reserves returns the live reserves of pool, oriented TokenIn -> TokenOut.
func (c *Client) Reserves(ctx context.Context, pool domain.PoolDescriptor) (*big.Int, *big.Int, error) {
	if pool.Address == (common.Hash{}) {
		return nil, nil, apperror.New(apperror.CodeInvalidPool,
			apperror.WithContext(fmt.Sprintf("pool %s has no on-chain address", pool.Pair())))
	}

	fn := c.cfg.ViewFunction(c.cfg.ReservesFn)
	values, err := c.View(ctx, fn, pool.Address.Hex(), pool.TokenIn.Metadata().Hex())
	if err != nil {
		return nil, nil, err
	}
	if len(values) < 2 {
		return nil, nil, apperror.New(apperror.CodeInvalidViewPayload,
			apperror.WithContext(fmt.Sprintf("%s returned %d values, want 2", fn, len(values))))
	}

	in, err := parseU128(fn, values[0])
	if err != nil {
		return nil, nil, err
	}
	out, err := parseU128(fn, values[1])
	if err != nil {
		return nil, nil, err
	}
	return in, out, nil
}

// AmountOut asks the pool contract for the output of swapping amountIn.
func (c *Client) AmountOut(ctx context.Context, pool domain.PoolDescriptor, amountIn *big.Int) (*big.Int, error) {
	if pool.Address == (common.Hash{}) {
		return nil, apperror.New(apperror.CodeInvalidPool,
			apperror.WithContext(fmt.Sprintf("pool %s has no on-chain address", pool.Pair())))
	}
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, apperror.Validation(apperror.CodeInvalidRawAmount, "amount in must be positive")
	}

	fn := c.cfg.ViewFunction(c.cfg.AmountOutFn)
	values, err := c.View(ctx, fn, pool.Address.Hex(), pool.TokenIn.Metadata().Hex(), amountIn.String())
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, apperror.New(apperror.CodeInvalidViewPayload,
			apperror.WithContext(fn+" returned no values"))
	}
	return parseU128(fn, values[0])
}

// View calls a view function and returns its results as strings.
// Results are cached for the configured TTL.
func (c *Client) View(ctx context.Context, function string, args ...string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "endless.view",
		trace.WithAttributes(
			attribute.String("function", function),
			attribute.StringSlice("arguments", args),
		),
	)
	defer span.End()

	key := function + "(" + strings.Join(args, ",") + ")"
	if values, ok := c.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return values, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		span.RecordError(err)
		return nil, apperror.New(apperror.CodeServiceTimeout,
			apperror.WithCause(err),
			apperror.WithContext("waiting for endless rate limiter"))
	}

	values, err := c.breaker.Execute(func() ([]string, error) {
		return c.viewWithRetry(ctx, function, args)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "view failed")
		if apperror.IsAppError(err) {
			return nil, err
		}
		return nil, apperror.External(apperror.CodeEndlessViewFailed, function, err)
	}

	c.cache.Set(key, values)
	span.SetAttributes(attribute.Int("results", len(values)))
	return values, nil
}

// viewWithRetry makes one attempt plus up to MaxRetries retries.
func (c *Client) viewWithRetry(ctx context.Context, function string, args []string) ([]string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.MaxInterval = c.cfg.MaxBackoff

	attempt := 0
	op := func() ([]string, error) {
		attempt++
		values, err := c.view(ctx, function, args)
		if err == nil {
			return values, nil
		}
		var se *statusError
		if errors.As(err, &se) && !se.retryable() {
			return nil, backoff.Permanent(err)
		}
		if errors.Is(err, httpclient.ErrDecodeResult) || errors.Is(err, httpclient.ErrResponseTooLarge) ||
			apperror.GetCode(err) == apperror.CodeInvalidViewPayload {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(c.cfg.MaxRetries+1),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn(ctx, "endless view failed, retrying",
				"function", function,
				"attempt", attempt,
				"next_in", next.String(),
				"error", err.Error())
		}),
	)
}

func (c *Client) view(ctx context.Context, function string, args []string) ([]string, error) {
	if args == nil {
		args = []string{}
	}

	var result []viewValue
	_, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "view"),
			httpclient.NewLabel("function", function),
		),
		httpclient.WithResponseErrorHandler(viewErrorHandler),
	).
		SetBody(viewRequest{
			Function:      function,
			TypeArguments: []string{},
			Arguments:     args,
		}).
		SetResult(&result).
		Post(ctx, viewEndpoint)
	if err != nil {
		if errors.Is(err, httpclient.ErrDecodeResult) {
			return nil, apperror.New(apperror.CodeInvalidViewPayload,
				apperror.WithCause(err),
				apperror.WithContext(function))
		}
		return nil, err
	}

	values := make([]string, len(result))
	for i, v := range result {
		values[i] = string(v)
	}

	c.logger.Debug(ctx, "endless view",
		"function", function,
		"results", len(values))

	return values, nil
}

// Ping checks that the node answers the ledger info endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.client.NewRequestWithOptions(
		httpclient.WithLabels(httpclient.NewLabel("endpoint", "ledger")),
	).Get(ctx, ledgerEndpoint)
	if err != nil {
		return apperror.External(apperror.CodeEndlessViewFailed, "ledger info", err)
	}
	if resp.IsError() {
		return apperror.New(apperror.CodeEndlessViewFailed,
			apperror.WithContext(fmt.Sprintf("ledger info: HTTP %d", resp.StatusCode)))
	}
	return nil
}

// statusError is a non-2xx answer from the node.
type statusError struct {
	StatusCode int
	Message    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// 4xx means the call itself is wrong; retrying won't help. 429 is the exception.
func (e *statusError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// nodeError is the node's JSON error body.
type nodeError struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

func viewErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	msg := strings.TrimSpace(string(body))
	var ne nodeError
	if err := json.Unmarshal(body, &ne); err == nil && ne.Message != "" {
		msg = ne.Message
		if ne.ErrorCode != "" {
			msg = ne.ErrorCode + ": " + msg
		}
	}
	return &statusError{StatusCode: statusCode, Message: msg}
}

func parseU128(function, s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, apperror.New(apperror.CodeInvalidViewPayload,
			apperror.WithContext(fmt.Sprintf("%s: %q is not an unsigned integer", function, s)))
	}
	return v, nil
}
