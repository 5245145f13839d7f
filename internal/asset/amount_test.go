package asset_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

func TestAmount_Basic(t *testing.T) {
	// 1 EDS = 1e8 atomic units
	oneEDS := asset.NewAmount(asset.EDS, big.NewInt(1e8))

	if oneEDS.IsZero() {
		t.Error("expected non-zero amount")
	}
	if !oneEDS.ToDecimal().Equal(decimal.NewFromInt(1)) {
		t.Errorf("expected 1, got %s", oneEDS.ToDecimal().String())
	}
	if oneEDS.String() != "1 EDS" {
		t.Errorf("expected '1 EDS', got '%s'", oneEDS.String())
	}
}

func TestParseFloat64Truncated(t *testing.T) {
	amount, err := asset.ParseFloat64Truncated(asset.USDT, 1.1234567)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if amount.Raw().Cmp(big.NewInt(1_123_456)) != 0 {
		t.Errorf("expected 1123456, got %s", amount.Raw().String())
	}

	if _, err := asset.ParseFloat64Truncated(asset.USDT, -1); err == nil {
		t.Error("expected error for negative amount")
	}
}

func TestParseRaw(t *testing.T) {
	amount, err := asset.ParseRaw(asset.EDS, "2492395586673194")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := amount.Format(); got != "24923955.86673194" {
		t.Errorf("Format() = %s", got)
	}

	for _, bad := range []string{"", "abc", "1.5", "-3"} {
		if _, err := asset.ParseRaw(asset.EDS, bad); err == nil {
			t.Errorf("ParseRaw(%q): expected error", bad)
		}
	}
}

func TestFormatRaw(t *testing.T) {
	tests := []struct {
		raw      string
		decimals uint8
		want     string
	}{
		{"0", 8, "0"},
		{"100000000", 8, "1"},
		{"150000000", 8, "1.5"},
		{"1", 6, "0.000001"},
		{"3014932793617", 6, "3014932.793617"},
		{"51767305097704601", 8, "517673050.97704601"},
		{"1234500", 6, "1.2345"},
		{"42", 0, "42"},
		{"-5", 2, "-0.05"},
		{"-105", 2, "-1.05"},
	}

	for _, tt := range tests {
		raw, _ := new(big.Int).SetString(tt.raw, 10)
		if got := asset.FormatRaw(raw, tt.decimals); got != tt.want {
			t.Errorf("FormatRaw(%s, %d) = %s, want %s", tt.raw, tt.decimals, got, tt.want)
		}
	}
}

func TestPrice_FromReserves(t *testing.T) {
	reserveEDS, _ := new(big.Int).SetString("2492395586673194", 10)
	reserveUSDT, _ := new(big.Int).SetString("3014932793617", 10)

	price, err := asset.NewPriceFromReserves(asset.EDS, asset.USDT, reserveEDS, reserveUSDT)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := decimal.RequireFromString("0.12096")
	if price.Rate().Sub(want).Abs().GreaterThan(decimal.RequireFromString("0.00001")) {
		t.Errorf("expected ~0.12096, got %s", price.Rate().String())
	}
	if price.Pair() != "EDS/USDT" {
		t.Errorf("Pair() = %s", price.Pair())
	}

	if _, err := asset.NewPriceFromReserves(asset.EDS, asset.USDT, big.NewInt(0), reserveUSDT); err == nil {
		t.Error("expected error for empty reserve")
	}
}
