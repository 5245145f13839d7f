package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// divPrecision is the number of fractional digits kept by raw divisions.
const divPrecision int32 = 40

// CalculateDirect prices amount (human units of TokenIn) against a single
// constant-product pool with the fee deducted from the input.
//
// Raw reserve arithmetic is arbitrary precision; the five metrics are
// converted to float64 and the percentages computed in float64.
func CalculateDirect(amount float64, pool PoolDescriptor) (SwapResult, error) {
	if err := ValidateAmount(amount); err != nil {
		return SwapResult{}, err
	}

	rIn, rOut := signOf(pool.ReserveIn), signOf(pool.ReserveOut)
	switch {
	case rIn == 0 && rOut == 0:
		return SwapResult{}, fmt.Errorf("%w: %s", ErrEmptyPool, pairName(pool))
	case rIn == 0:
		return SwapResult{}, fmt.Errorf("%w: %s input reserve is zero", ErrDivisionByZero, pairName(pool))
	case rOut == 0:
		return SwapResult{}, fmt.Errorf("%w: %s output reserve is zero", ErrDivisionByZero, pairName(pool))
	}

	dIn, dOut := int32(pool.DecimalsIn), int32(pool.DecimalsOut)
	reserveIn := decimal.NewFromBigInt(pool.ReserveIn, 0)
	reserveOut := decimal.NewFromBigInt(pool.ReserveOut, 0)

	in := decimal.NewFromFloat(amount)
	amountInRaw := in.Shift(dIn)

	priceRatio := reserveOut.Shift(-dOut).DivRound(reserveIn.Shift(-dIn), divPrecision)
	market := in.Mul(priceRatio)

	ideal := amountOut(reserveIn, reserveOut, amountInRaw).Shift(-dOut)

	amountInWithFee := amountInRaw.
		Mul(decimal.NewFromInt(int64(MaxFeeBps) - int64(pool.FeeBps))).
		Shift(-4) // / 10000
	actual := amountOut(reserveIn, reserveOut, amountInWithFee).Shift(-dOut)

	return newResult(market.InexactFloat64(), ideal.InexactFloat64(), actual.InexactFloat64())
}

// amountOut is the constant-product output rOut*a/(rIn+a), in raw units.
func amountOut(reserveIn, reserveOut, amountIn decimal.Decimal) decimal.Decimal {
	return reserveOut.Mul(amountIn).DivRound(reserveIn.Add(amountIn), divPrecision)
}

// ComposeTwoHop combines two chained legs, where leg2 was priced with
// leg1.ActualAmount as its input:
//
//	marketExpected = leg1.marketExpected * (leg2.marketExpected / leg1.actualAmount)
//	ideal, actual  = leg2's
//	slippages      = leg1 + leg2
func ComposeTwoHop(leg1, leg2 SwapResult) (SwapResult, error) {
	if leg1.ActualAmount == 0 {
		return SwapResult{}, fmt.Errorf("%w: first leg delivers nothing", ErrDivisionByZero)
	}

	res := SwapResult{
		MarketExpected: leg1.MarketExpected * (leg2.MarketExpected / leg1.ActualAmount),
		IdealAmount:    leg2.IdealAmount,
		ActualAmount:   leg2.ActualAmount,
		TotalSlippage:  leg1.TotalSlippage + leg2.TotalSlippage,
		FeeSlippage:    leg1.FeeSlippage + leg2.FeeSlippage,
	}
	if err := res.checkFinite(); err != nil {
		return SwapResult{}, err
	}
	return res, nil
}

// CalculateLegs prices amount across one or two chained pools and returns
// the route result together with the per-leg results.
func CalculateLegs(amount float64, legs []PoolDescriptor) (SwapResult, []SwapResult, error) {
	switch len(legs) {
	case 1:
		res, err := CalculateDirect(amount, legs[0])
		if err != nil {
			return SwapResult{}, nil, err
		}
		return res, []SwapResult{res}, nil

	case 2:
		leg1, err := CalculateDirect(amount, legs[0])
		if err != nil {
			return SwapResult{}, nil, fmt.Errorf("leg %s: %w", pairName(legs[0]), err)
		}
		if leg1.ActualAmount == 0 {
			return SwapResult{}, nil, fmt.Errorf("leg %s: %w: first leg delivers nothing", pairName(legs[0]), ErrDivisionByZero)
		}
		leg2, err := CalculateDirect(leg1.ActualAmount, legs[1])
		if err != nil {
			return SwapResult{}, nil, fmt.Errorf("leg %s: %w", pairName(legs[1]), err)
		}
		res, err := ComposeTwoHop(leg1, leg2)
		if err != nil {
			return SwapResult{}, nil, err
		}
		return res, []SwapResult{leg1, leg2}, nil

	default:
		return SwapResult{}, nil, fmt.Errorf("%w: %d legs", ErrUnsupportedPair, len(legs))
	}
}

// Calculator resolves pairs through a Registry and prices them.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	registry *Registry
}

// NewCalculator creates a calculator over the registry.
func NewCalculator(registry *Registry) *Calculator {
	return &Calculator{registry: registry}
}

// Calculate prices amount of from into to. The amount is validated before
// the pair is resolved.
func (c *Calculator) Calculate(from, to string, amount float64) (SwapResult, error) {
	if err := ValidateAmount(amount); err != nil {
		return SwapResult{}, err
	}

	legs, err := c.registry.Legs(from, to)
	if err != nil {
		return SwapResult{}, err
	}

	res, _, err := CalculateLegs(amount, legs)
	return res, err
}

func signOf(v *big.Int) int {
	if v == nil {
		return 0
	}
	return v.Sign()
}

func pairName(p PoolDescriptor) string {
	if p.TokenIn == nil || p.TokenOut == nil {
		return "?/?"
	}
	return p.Pair().String()
}
