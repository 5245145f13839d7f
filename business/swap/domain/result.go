package domain

import (
	"errors"
	"fmt"
	"math"
)

// Calculation errors. Match with errors.Is.
var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrUnsupportedPair = errors.New("unsupported pair")
	ErrEmptyPool       = errors.New("empty pool")
	ErrDivisionByZero  = errors.New("division by zero")

	// ErrOverflow is an amount whose result does not fit a float64. It is
	// also an ErrInvalidAmount.
	ErrOverflow = fmt.Errorf("%w: result overflows float64", ErrInvalidAmount)
)

// SwapResult is the five-metric outcome of one calculation, in human units.
// Slippages are percentages.
type SwapResult struct {
	MarketExpected float64 `json:"marketExpected"`
	IdealAmount    float64 `json:"idealAmount"`
	ActualAmount   float64 `json:"actualAmount"`
	TotalSlippage  float64 `json:"totalSlippage"`
	FeeSlippage    float64 `json:"feeSlippage"`
}

// PriceImpact is the part of total slippage not explained by the fee.
func (r SwapResult) PriceImpact() float64 {
	return r.TotalSlippage - r.FeeSlippage
}

// ValidateAmount rejects NaN, infinities and non-positive inputs.
func ValidateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	return nil
}

func newResult(market, ideal, actual float64) (SwapResult, error) {
	if market == 0 {
		return SwapResult{}, fmt.Errorf("%w: market expected amount is zero", ErrDivisionByZero)
	}
	if ideal == 0 {
		return SwapResult{}, fmt.Errorf("%w: ideal amount is zero", ErrDivisionByZero)
	}

	res := SwapResult{
		MarketExpected: market,
		IdealAmount:    ideal,
		ActualAmount:   actual,
		TotalSlippage:  (market - actual) / market * 100,
		FeeSlippage:    (ideal - actual) / ideal * 100,
	}
	if err := res.checkFinite(); err != nil {
		return SwapResult{}, err
	}
	return res, nil
}

func (r SwapResult) checkFinite() error {
	for _, v := range [...]float64{r.MarketExpected, r.IdealAmount, r.ActualAmount, r.TotalSlippage, r.FeeSlippage} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrOverflow
		}
	}
	return nil
}
