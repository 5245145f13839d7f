package asset

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilAsset       = errors.New("asset: nil asset")
	ErrNilRaw         = errors.New("asset: nil raw value")
	ErrNegativeAmount = errors.New("asset: negative amount")
	ErrInvalidRaw     = errors.New("asset: invalid raw amount")
)

// Amount is an immutable quantity of an asset in atomic units.
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount creates a new Amount from a raw big.Int value in atomic units.
func NewAmount(asset *Asset, raw *big.Int) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw),
		asset: asset,
	}
}

// ParseRaw creates an Amount from a base-10 atomic-unit string, as returned by view calls.
func ParseRaw(asset *Asset, s string) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	raw, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: %q", ErrInvalidRaw, s)
	}
	if raw.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return NewAmount(asset, raw), nil
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// -----------------------------------------------------------------------------
// Boundary Functions (decimal conversion)
// -----------------------------------------------------------------------------

// ToDecimal converts the amount to human units.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.asset == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.asset.Decimals()))
}

// ToFloat64 converts the amount to float64 for display.
func (a Amount) ToFloat64() float64 {
	f, _ := a.ToDecimal().Float64()
	return f
}

// ParseFloat64Truncated converts human units to atomic units, dropping digits
// beyond the asset's precision.
func ParseFloat64Truncated(asset *Asset, f float64) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	d := decimal.NewFromFloat(f)
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}
	return NewAmount(asset, d.Shift(int32(asset.Decimals())).Truncate(0).BigInt()), nil
}

// -----------------------------------------------------------------------------
// Display
// -----------------------------------------------------------------------------

// FormatRaw renders atomic units as a human decimal string: the fraction is
// left-padded to decimals digits, trailing zeros are trimmed and the dot is
// dropped when nothing remains.
func FormatRaw(raw *big.Int, decimals uint8) string {
	if raw == nil {
		return "0"
	}
	if decimals == 0 {
		return raw.String()
	}

	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	integer, frac := new(big.Int).QuoRem(raw, divisor, new(big.Int))

	fs := frac.String()
	if frac.Sign() < 0 {
		fs = fs[1:]
	}
	fs = strings.Repeat("0", int(decimals)-len(fs)) + fs
	fs = strings.TrimRight(fs, "0")

	sign := ""
	if raw.Sign() < 0 && integer.Sign() == 0 {
		sign = "-"
	}
	if fs == "" {
		return sign + integer.String()
	}
	return sign + integer.String() + "." + fs
}

// Format renders the amount with FormatRaw.
func (a Amount) Format() string {
	if a.asset == nil {
		return FormatRaw(a.raw, 0)
	}
	return FormatRaw(a.raw, a.asset.Decimals())
}

// String returns a human-readable representation (e.g., "1.5 EDS").
func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.Format(), a.asset.Symbol())
}
