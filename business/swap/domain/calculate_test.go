package domain

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

func TestCalculateDirect_EDSUSDTOneUnit(t *testing.T) {
	r := newTestRegistry(t)

	res, err := CalculateDirect(1, directPool(t, r, "EDS", "USDT"))
	require.NoError(t, err)

	assert.Less(t, res.ActualAmount, res.IdealAmount)
	assert.Less(t, res.IdealAmount, res.MarketExpected)
	assert.InDelta(t, 0.12, res.FeeSlippage, 1e-4)

	assert.InDelta(t, 0.12096525967778973, res.MarketExpected, 1e-12)
	assert.InDelta(t, 0.12096525482441672, res.IdealAmount, 1e-12)
	assert.InDelta(t, 0.12082009652444448, res.ActualAmount, 1e-12)
	assert.InDelta(t, 0.12000400258051121, res.TotalSlippage, 1e-9)
}

func TestCalculateDirect_LargerTradeMoreSlippage(t *testing.T) {
	r := newTestRegistry(t)
	pool := directPool(t, r, "USDT", "VDEP")

	small, err := CalculateDirect(100, pool)
	require.NoError(t, err)
	large, err := CalculateDirect(10_000, pool)
	require.NoError(t, err)

	assert.Greater(t, large.TotalSlippage, small.TotalSlippage)
	assert.InDelta(t, 0.22314706381658977, small.TotalSlippage, 1e-9)
	assert.InDelta(t, 9.477964223449154, large.TotalSlippage, 1e-9)
}

func TestCalculateDirect_OrderingProperties(t *testing.T) {
	r := newTestRegistry(t)
	amounts := []float64{1e-6, 0.001, 1, 7.5, 100, 12345.678, 1e6, 1e9}

	for _, pr := range r.Pairs() {
		pool, ok := pr.Route.Pool()
		if !ok {
			continue
		}
		for _, amt := range amounts {
			res, err := CalculateDirect(amt, pool)
			require.NoError(t, err, "%s %v", pr.Pair, amt)

			assert.GreaterOrEqual(t, res.MarketExpected, res.IdealAmount, "%s %v", pr.Pair, amt)
			assert.GreaterOrEqual(t, res.IdealAmount, res.ActualAmount, "%s %v", pr.Pair, amt)
			assert.GreaterOrEqual(t, res.TotalSlippage, res.FeeSlippage, "%s %v", pr.Pair, amt)
			assert.GreaterOrEqual(t, res.FeeSlippage, 0.0, "%s %v", pr.Pair, amt)
			assert.False(t, math.IsNaN(res.TotalSlippage) || math.IsInf(res.TotalSlippage, 0))
			assert.False(t, math.IsNaN(res.FeeSlippage) || math.IsInf(res.FeeSlippage, 0))
		}
	}
}

func TestCalculateDirect_ZeroFee(t *testing.T) {
	pool, err := NewPoolDescriptor(asset.EDS, asset.USDT, big.NewInt(1e12), big.NewInt(1e10), 0, zeroAddr)
	require.NoError(t, err)

	res, err := CalculateDirect(10, pool)
	require.NoError(t, err)
	assert.Equal(t, res.IdealAmount, res.ActualAmount)
	assert.Zero(t, res.FeeSlippage)
	assert.Greater(t, res.TotalSlippage, 0.0)
}

func TestCalculateDirect_InvalidAmount(t *testing.T) {
	pool := directPool(t, newTestRegistry(t), "EDS", "USDT")

	for _, amt := range []float64{0, -1, -0.0001, math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := CalculateDirect(amt, pool)
		assert.ErrorIs(t, err, ErrInvalidAmount, "amount %v", amt)
	}
}

func TestCalculateDirect_Overflow(t *testing.T) {
	// USDT->EDS multiplies by ~8.27, so the market amount leaves float64 range.
	_, err := CalculateDirect(math.MaxFloat64, directPool(t, newTestRegistry(t), "USDT", "EDS"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.NotErrorIs(t, err, ErrDivisionByZero)
}

func TestCalculateDirect_ZeroReserves(t *testing.T) {
	zero, one := big.NewInt(0), big.NewInt(1_000_000)

	tests := []struct {
		name    string
		in, out *big.Int
		wantErr error
	}{
		{"both zero", zero, zero, ErrEmptyPool},
		{"input zero", zero, one, ErrDivisionByZero},
		{"output zero", one, zero, ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewPoolDescriptor(asset.EDS, asset.USDT, tt.in, tt.out, 12, zeroAddr)
			require.NoError(t, err)

			_, err = CalculateDirect(1, pool)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestComposeTwoHop_MatchesLegs(t *testing.T) {
	r := newTestRegistry(t)

	leg1, err := CalculateDirect(1, directPool(t, r, "EDS", "USDT"))
	require.NoError(t, err)
	leg2, err := CalculateDirect(leg1.ActualAmount, directPool(t, r, "USDT", "VDEP"))
	require.NoError(t, err)

	got, err := NewCalculator(r).Calculate("EDS", "VDEP", 1)
	require.NoError(t, err)

	want := SwapResult{
		MarketExpected: leg1.MarketExpected * (leg2.MarketExpected / leg1.ActualAmount),
		IdealAmount:    leg2.IdealAmount,
		ActualAmount:   leg2.ActualAmount,
		TotalSlippage:  leg1.TotalSlippage + leg2.TotalSlippage,
		FeeSlippage:    leg1.FeeSlippage + leg2.FeeSlippage,
	}
	assert.Equal(t, want, got)

	assert.InDelta(t, 648.133924199988, got.MarketExpected, 1e-8)
	assert.InDelta(t, 646.5785026001762, got.ActualAmount, 1e-8)
	assert.InDelta(t, 0.24012875363856973, got.TotalSlippage, 1e-9)
}

func TestComposeTwoHop_ZeroFirstLeg(t *testing.T) {
	_, err := ComposeTwoHop(SwapResult{MarketExpected: 1}, SwapResult{MarketExpected: 1, IdealAmount: 1})
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestCalculateLegs_FirstLegDeliversNothing(t *testing.T) {
	drained, err := NewPoolDescriptor(asset.EDS, asset.USDT, big.NewInt(1e12), big.NewInt(0), 12, zeroAddr)
	require.NoError(t, err)
	second := directPool(t, newTestRegistry(t), "USDT", "VDEP")

	_, _, err = CalculateLegs(1, []PoolDescriptor{drained, second})
	assert.ErrorIs(t, err, ErrDivisionByZero)

	_, _, err = CalculateLegs(1, nil)
	assert.ErrorIs(t, err, ErrUnsupportedPair)
}

func TestCalculator_Calculate(t *testing.T) {
	c := NewCalculator(newTestRegistry(t))

	t.Run("same token is unsupported", func(t *testing.T) {
		for _, sym := range []string{"EDS", "USDT", "VDEP"} {
			_, err := c.Calculate(sym, sym, 1)
			assert.ErrorIs(t, err, ErrUnsupportedPair, sym)
		}
	})

	t.Run("unknown token is unsupported", func(t *testing.T) {
		_, err := c.Calculate("BTC", "USDT", 1)
		assert.ErrorIs(t, err, ErrUnsupportedPair)
		_, err = c.Calculate("EDS", "DOGE", 1)
		assert.ErrorIs(t, err, ErrUnsupportedPair)
	})

	t.Run("invalid amount checked first", func(t *testing.T) {
		_, err := c.Calculate("BTC", "BTC", 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("reverse two-hop", func(t *testing.T) {
		res, err := c.Calculate("VDEP", "EDS", 1000)
		require.NoError(t, err)
		assert.Greater(t, res.ActualAmount, 0.0)
		assert.Greater(t, res.TotalSlippage, res.FeeSlippage)
	})
}
