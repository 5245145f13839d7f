package app

import (
	"context"
	"errors"
	"math"
	"math/big"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

const meterName = "swap"

// CalculateRequest is the input of a swap calculation.
type CalculateRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
}

// Leg is one pool traded on a route.
type Leg struct {
	Pair   string            `json:"pair"`
	Amount float64           `json:"amountIn"`
	Result domain.SwapResult `json:"result"`
}

// Quote is a calculation result with its route details.
type Quote struct {
	domain.SwapResult
	Pair      string    `json:"pair"`
	Route     string    `json:"route"`
	Via       string    `json:"via,omitempty"`
	Legs      []Leg     `json:"legs"`
	Source    string    `json:"source"`
	Timestamp time.Time `json:"timestamp"`
}

// Verification compares a computed quote with the chain's own get_amount_out.
type Verification struct {
	*Quote
	OnchainAmount float64 `json:"onchainAmount"`
	Deviation     float64 `json:"deviation"` // percent, positive when the chain delivers less
}

// PairInfo describes a supported ordered pair.
type PairInfo struct {
	Pair      string `json:"pair"`
	From      string `json:"from"`
	To        string `json:"to"`
	Route     string `json:"route"`
	Via       string `json:"via,omitempty"`
	FeeBps    uint32 `json:"feeBps,omitempty"`
	SpotPrice string `json:"spotPrice,omitempty"`
	Address   string `json:"address,omitempty"`
}

type serviceMetrics struct {
	calculations metric.Int64Counter
	failures     metric.Int64Counter
	latency      metric.Float64Histogram
}

// SwapService prices swaps over the pool registry using a ReserveSource.
type SwapService struct {
	registry *domain.Registry
	reserves ReserveSource
	onchain  AmountOutSource
	logger   logger.LoggerInterface
	metrics  *serviceMetrics
	now      func() time.Time
}

// NewSwapService creates the service. onchain may be nil, which disables Verify.
func NewSwapService(registry *domain.Registry, reserves ReserveSource, onchain AmountOutSource, log logger.LoggerInterface) (*SwapService, error) {
	s := &SwapService{
		registry: registry,
		reserves: reserves,
		onchain:  onchain,
		logger:   log,
		now:      time.Now,
	}
	if err := s.initMetrics(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SwapService) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	s.metrics = &serviceMetrics{}

	s.metrics.calculations, err = meter.Int64Counter(
		"swap_calculations_total",
		metric.WithDescription("Total swap calculations"),
	)
	if err != nil {
		return err
	}

	s.metrics.failures, err = meter.Int64Counter(
		"swap_calculation_failures_total",
		metric.WithDescription("Swap calculations that returned an error, by code"),
	)
	if err != nil {
		return err
	}

	s.metrics.latency, err = meter.Float64Histogram(
		"swap_calculation_latency_ms",
		metric.WithDescription("Swap calculation latency in milliseconds, reserve fetch included"),
		metric.WithUnit("ms"),
	)
	return err
}

// Calculate prices req.Amount of req.From into req.To.
func (s *SwapService) Calculate(ctx context.Context, req CalculateRequest) (*Quote, error) {
	start := time.Now()
	pairAttr := attribute.String("pair", pairLabel(req.From, req.To))
	s.metrics.calculations.Add(ctx, 1, metric.WithAttributes(pairAttr))

	q, err := s.calculate(ctx, req)

	s.metrics.latency.Record(ctx, float64(time.Since(start).Microseconds())/1000, metric.WithAttributes(pairAttr))
	if err != nil {
		s.metrics.failures.Add(ctx, 1, metric.WithAttributes(pairAttr,
			attribute.String("code", string(apperror.GetCode(err)))))
		s.logger.Debug(ctx, "swap calculation failed", "pair", pairAttr.Value.AsString(), "amount", req.Amount, "error", err)
		return nil, err
	}

	s.logger.Debug(ctx, "swap calculated",
		"pair", q.Pair,
		"route", q.Route,
		"amount", req.Amount,
		"actual", q.ActualAmount,
		"total_slippage", q.TotalSlippage,
	)
	return q, nil
}

func (s *SwapService) calculate(ctx context.Context, req CalculateRequest) (*Quote, error) {
	if err := domain.ValidateAmount(req.Amount); err != nil {
		return nil, mapDomainError(err, req)
	}

	legs, err := s.registry.Legs(req.From, req.To)
	if err != nil {
		return nil, mapDomainError(err, req)
	}

	priced := make([]domain.PoolDescriptor, len(legs))
	var sources []string
	for i, leg := range legs {
		in, out, servedBy, err := s.fetchReserves(ctx, leg)
		if err != nil {
			return nil, apperror.External(apperror.CodeUpstreamFailure, leg.Pair().String(), err)
		}
		priced[i] = leg.WithReserves(in, out)
		if !slices.Contains(sources, servedBy) {
			sources = append(sources, servedBy)
		}
	}

	result, legResults, err := domain.CalculateLegs(req.Amount, priced)
	if err != nil {
		return nil, mapDomainError(err, req)
	}

	rt, _ := s.registry.Resolve(req.From, req.To)
	q := &Quote{
		SwapResult: result,
		Pair:       priced[0].TokenIn.Symbol() + "/" + priced[len(priced)-1].TokenOut.Symbol(),
		Route:      rt.Kind().String(),
		Legs:       make([]Leg, len(priced)),
		Source:     strings.Join(sources, "+"),
		Timestamp:  s.now(),
	}
	if via, ok := rt.Via(); ok {
		q.Via = via.Symbol()
	}

	amountIn := req.Amount
	for i, p := range priced {
		q.Legs[i] = Leg{Pair: p.Pair().String(), Amount: amountIn, Result: legResults[i]}
		amountIn = legResults[i].ActualAmount
	}
	return q, nil
}

// fetchReserves returns the leg's reserves and the name of the source that served them.
func (s *SwapService) fetchReserves(ctx context.Context, leg domain.PoolDescriptor) (*big.Int, *big.Int, string, error) {
	if served, ok := s.reserves.(ServingReserveSource); ok {
		return served.ReservesServed(ctx, leg)
	}
	in, out, err := s.reserves.Reserves(ctx, leg)
	return in, out, s.reserves.Name(), err
}

// Verify computes the quote and asks the chain for the same swap, chaining
// get_amount_out across the legs of a two-hop route.
func (s *SwapService) Verify(ctx context.Context, req CalculateRequest) (*Verification, error) {
	if s.onchain == nil {
		return nil, apperror.New(apperror.CodeServiceUnavailable,
			apperror.WithMessage("on-chain verification is not configured"))
	}

	q, err := s.Calculate(ctx, req)
	if err != nil {
		return nil, err
	}

	legs, err := s.registry.Legs(req.From, req.To)
	if err != nil {
		return nil, mapDomainError(err, req)
	}

	amt, err := asset.ParseFloat64Truncated(legs[0].TokenIn, req.Amount)
	if err != nil {
		return nil, apperror.Validation(apperror.CodeInvalidAmount, err.Error())
	}

	raw := amt.Raw()
	for _, leg := range legs {
		raw, err = s.onchain.AmountOut(ctx, leg, raw)
		if err != nil {
			return nil, apperror.External(apperror.CodeUpstreamFailure, "get_amount_out "+leg.Pair().String(), err)
		}
	}

	last := legs[len(legs)-1].TokenOut
	onchain := asset.NewAmount(last, raw).ToFloat64()

	v := &Verification{Quote: q, OnchainAmount: onchain}
	if q.ActualAmount > 0 {
		v.Deviation = (q.ActualAmount - onchain) / q.ActualAmount * 100
	}
	return v, nil
}

// Pairs lists every supported pair. Direct pairs carry fee, pool address and
// spot price; spot prices use the reserve source and fall back to the
// configured snapshot when it fails.
func (s *SwapService) Pairs(ctx context.Context) []PairInfo {
	routes := s.registry.Pairs()
	out := make([]PairInfo, 0, len(routes))

	for _, pr := range routes {
		info := PairInfo{
			Pair:  pr.Pair.String(),
			From:  pr.Pair.From.Symbol(),
			To:    pr.Pair.To.Symbol(),
			Route: pr.Route.Kind().String(),
		}

		if via, ok := pr.Route.Via(); ok {
			info.Via = via.Symbol()
		}

		if pool, ok := pr.Route.Pool(); ok {
			info.FeeBps = pool.FeeBps
			if pool.Address != (common.Hash{}) {
				info.Address = pool.Address.Hex()
			}
			info.SpotPrice = s.spotPrice(ctx, pool)
		}

		out = append(out, info)
	}
	return out
}

func (s *SwapService) spotPrice(ctx context.Context, pool domain.PoolDescriptor) string {
	in, out, err := s.reserves.Reserves(ctx, pool)
	if err != nil {
		s.logger.Warn(ctx, "reserve fetch failed, using snapshot", "pair", pool.Pair().String(), "error", err)
		in, out = pool.ReserveIn, pool.ReserveOut
	}

	price, err := asset.NewPriceFromReserves(pool.TokenIn, pool.TokenOut, in, out)
	if err != nil {
		return ""
	}
	return price.Rate().StringFixed(12)
}

// Registry exposes the pool registry.
func (s *SwapService) Registry() *domain.Registry {
	return s.registry
}

func mapDomainError(err error, req CalculateRequest) error {
	ctx := pairLabel(req.From, req.To)

	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		return apperror.New(apperror.CodeInvalidAmount, apperror.WithCause(err), apperror.WithContext(formatAmount(req.Amount)))
	case errors.Is(err, domain.ErrUnsupportedPair):
		return apperror.New(apperror.CodeUnsupportedPair, apperror.WithCause(err), apperror.WithContext(ctx))
	case errors.Is(err, domain.ErrEmptyPool):
		return apperror.New(apperror.CodeEmptyPool, apperror.WithCause(err), apperror.WithContext(ctx))
	case errors.Is(err, domain.ErrDivisionByZero):
		return apperror.New(apperror.CodeDivisionByZero, apperror.WithCause(err), apperror.WithContext(ctx))
	default:
		return apperror.Wrap(err, apperror.CodeInternalError, ctx)
	}
}

func pairLabel(from, to string) string {
	return strings.ToUpper(from) + "/" + strings.ToUpper(to)
}

func formatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "amount=non-finite"
	}
	return "amount=" + strconv.FormatFloat(v, 'g', -1, 64)
}
