// Package domain contains loss metrics for liquidity providers and traders.
package domain

import (
	"errors"
	"math"
)

var (
	// ErrInvalidPriceRatio is returned for non-positive or non-finite price ratios.
	ErrInvalidPriceRatio = errors.New("price ratio must be greater than zero")
	// ErrInvalidExpectedAmount is returned when the expected amount is not positive.
	ErrInvalidExpectedAmount = errors.New("expected amount must be greater than zero")
)

// ImpermanentLoss returns the LP loss in percent against holding, for a
// price that moved by ratio r = newPrice/oldPrice:
//
//	IL = (2*sqrt(r)/(1+r) - 1) * 100
//
// The result is zero at r = 1 and negative otherwise.
func ImpermanentLoss(ratio float64) (float64, error) {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return 0, ErrInvalidPriceRatio
	}
	sqrtR := math.Sqrt(ratio)
	return (2*sqrtR/(1+ratio) - 1) * 100, nil
}

// SlippageLoss returns (expected-actual)/expected in percent. Negative means
// the trade filled better than expected.
func SlippageLoss(expected, actual float64) (float64, error) {
	if !(expected > 0) || math.IsInf(expected, 0) {
		return 0, ErrInvalidExpectedAmount
	}
	if math.IsNaN(actual) || math.IsInf(actual, 0) {
		return 0, errors.New("actual amount must be finite")
	}
	return (expected - actual) / expected * 100, nil
}
