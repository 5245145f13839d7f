package asset

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// PricePrecision is the number of fixed-point decimals a Price keeps.
const PricePrecision = 18

var pricePrecisionMultiplier = new(big.Int).Exp(big.NewInt(10), big.NewInt(PricePrecision), nil)

// ErrEmptyReserve is returned when a spot price is requested from an empty side of a pool.
var ErrEmptyReserve = errors.New("asset: empty reserve")

// Price is an exchange rate quote-per-base, stored as a fixed-point integer.
// Example: EDS/USDT = 1.2096 stored as 1209600000000000000
type Price struct {
	rate  *big.Int
	base  *Asset
	quote *Asset
}

// NewPriceFromReserves derives the spot price of base in quote from pool reserves
// given in atomic units: (reserveQuote/10^dq) / (reserveBase/10^db).
func NewPriceFromReserves(base, quote *Asset, reserveBase, reserveQuote *big.Int) (Price, error) {
	if base == nil || quote == nil {
		return Price{}, ErrNilAsset
	}
	if reserveBase == nil || reserveQuote == nil || reserveBase.Sign() <= 0 || reserveQuote.Sign() <= 0 {
		return Price{}, fmt.Errorf("%w: %s/%s", ErrEmptyReserve, base.Symbol(), quote.Symbol())
	}

	// rate = reserveQuote * 10^db * 10^18 / (reserveBase * 10^dq)
	num := new(big.Int).Mul(reserveQuote, pow10(base.Decimals()))
	num.Mul(num, pricePrecisionMultiplier)
	den := new(big.Int).Mul(reserveBase, pow10(quote.Decimals()))

	return Price{
		rate:  num.Quo(num, den),
		base:  base,
		quote: quote,
	}, nil
}

// Rate returns the price rate as a decimal.
func (p Price) Rate() decimal.Decimal {
	if p.rate == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(p.rate, -PricePrecision)
}

// Pair returns the trading pair symbol (e.g., "EDS/USDT").
func (p Price) Pair() string {
	if p.base == nil || p.quote == nil {
		return "???/???"
	}
	return fmt.Sprintf("%s/%s", p.base.Symbol(), p.quote.Symbol())
}

func (p Price) String() string {
	return fmt.Sprintf("%s %s", p.Rate().String(), p.Pair())
}

func pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
