package app

import (
	"context"
	"errors"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

type mockLogger struct{ warns int }

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               { m.warns++ }
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

// snapshotSource returns the registered reserves, or err when set.
type snapshotSource struct{ err error }

func (s snapshotSource) Reserves(_ context.Context, p domain.PoolDescriptor) (*big.Int, *big.Int, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return p.ReserveIn, p.ReserveOut, nil
}

func (snapshotSource) Name() string { return "snapshot" }

type recordingOnchain struct {
	inputs []string
	out    func(call int, in *big.Int) *big.Int
}

func (r *recordingOnchain) AmountOut(_ context.Context, _ domain.PoolDescriptor, in *big.Int) (*big.Int, error) {
	r.inputs = append(r.inputs, in.String())
	return r.out(len(r.inputs), in), nil
}

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func newRegistry(t *testing.T) *domain.Registry {
	t.Helper()
	r := domain.NewRegistry(asset.DefaultRegistry())
	require.NoError(t, r.AddPool("EDS", "USDT", mustBig(t, "2492395586673194"), mustBig(t, "3014932793617"), 12,
		common.HexToHash("0x52fe2d47e68de101b84826dce2a09d9d37e2fd2256aa8cda13931ba07cf33082")))
	require.NoError(t, r.AddPool("USDT", "VDEP", mustBig(t, "96616536647"), mustBig(t, "51767305097704601"), 12, common.Hash{}))
	require.NoError(t, r.AddTwoHop("EDS", "VDEP", "USDT"))
	require.NoError(t, r.AddTwoHop("VDEP", "EDS", "USDT"))
	return r
}

func newService(t *testing.T, src ReserveSource, onchain AmountOutSource) (*SwapService, *mockLogger) {
	t.Helper()
	log := &mockLogger{}
	svc, err := NewSwapService(newRegistry(t), src, onchain, log)
	require.NoError(t, err)
	return svc, log
}

func TestSwapService_CalculateDirect(t *testing.T) {
	svc, _ := newService(t, snapshotSource{}, nil)

	q, err := svc.Calculate(context.Background(), CalculateRequest{From: "EDS", To: "USDT", Amount: 1})
	require.NoError(t, err)

	assert.Equal(t, "EDS/USDT", q.Pair)
	assert.Equal(t, "direct", q.Route)
	assert.Empty(t, q.Via)
	assert.Equal(t, "snapshot", q.Source)
	assert.InDelta(t, 0.12096525967778973, q.MarketExpected, 1e-12)
	assert.InDelta(t, 0.12082009652444448, q.ActualAmount, 1e-12)
	assert.InDelta(t, 0.12000400258051121, q.TotalSlippage, 1e-9)
	require.Len(t, q.Legs, 1)
	assert.Equal(t, 1.0, q.Legs[0].Amount)
}

func TestSwapService_CalculateTwoHop(t *testing.T) {
	svc, _ := newService(t, snapshotSource{}, nil)

	q, err := svc.Calculate(context.Background(), CalculateRequest{From: "eds", To: "vdep", Amount: 1})
	require.NoError(t, err)

	assert.Equal(t, "two-hop", q.Route)
	assert.Equal(t, "USDT", q.Via)
	require.Len(t, q.Legs, 2)
	assert.Equal(t, "EDS/USDT", q.Legs[0].Pair)
	assert.Equal(t, "USDT/VDEP", q.Legs[1].Pair)
	assert.Equal(t, q.Legs[0].Result.ActualAmount, q.Legs[1].Amount)
	assert.Equal(t, q.Legs[1].Result.ActualAmount, q.ActualAmount)
	assert.InDelta(t, 646.5785026001762, q.ActualAmount, 1e-9)
	assert.InDelta(t, 0.24012875363856973, q.TotalSlippage, 1e-9)
}

// perPoolSource serves EDS/USDT from "endless" and everything else from "static".
type perPoolSource struct{ snapshotSource }

func (perPoolSource) Name() string { return "endless+static" }

func (p perPoolSource) ReservesServed(ctx context.Context, pool domain.PoolDescriptor) (*big.Int, *big.Int, string, error) {
	in, out, err := p.Reserves(ctx, pool)
	if pool.TokenIn.Symbol() == "EDS" || pool.TokenOut.Symbol() == "EDS" {
		return in, out, "endless", err
	}
	return in, out, "static", err
}

func TestSwapService_QuoteSourceIsPerCall(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		want     string
	}{
		{"direct from primary", "EDS", "USDT", "endless"},
		{"direct from snapshot", "USDT", "VDEP", "static"},
		{"two-hop mixed", "EDS", "VDEP", "endless+static"},
	}

	svc, _ := newService(t, perPoolSource{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := svc.Calculate(context.Background(), CalculateRequest{From: tt.from, To: tt.to, Amount: 1})
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Source)
		})
	}
}

func TestSwapService_CalculateErrors(t *testing.T) {
	tests := []struct {
		name string
		src  ReserveSource
		req  CalculateRequest
		want apperror.Code
	}{
		{"unsupported pair", snapshotSource{}, CalculateRequest{From: "EDS", To: "BTC", Amount: 1}, apperror.CodeUnsupportedPair},
		{"same token", snapshotSource{}, CalculateRequest{From: "EDS", To: "EDS", Amount: 1}, apperror.CodeUnsupportedPair},
		{"zero amount", snapshotSource{}, CalculateRequest{From: "EDS", To: "USDT", Amount: 0}, apperror.CodeInvalidAmount},
		{"nan before pair lookup", snapshotSource{}, CalculateRequest{From: "X", To: "Y", Amount: math.NaN()}, apperror.CodeInvalidAmount},
		{"overflowing amount", snapshotSource{}, CalculateRequest{From: "USDT", To: "EDS", Amount: math.MaxFloat64}, apperror.CodeInvalidAmount},
		{"upstream", snapshotSource{err: errors.New("timeout")}, CalculateRequest{From: "EDS", To: "USDT", Amount: 1}, apperror.CodeUpstreamFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newService(t, tt.src, nil)
			_, err := svc.Calculate(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperror.GetCode(err))
		})
	}
}

func TestSwapService_CalculateKeepsDomainCause(t *testing.T) {
	svc, _ := newService(t, snapshotSource{}, nil)

	_, err := svc.Calculate(context.Background(), CalculateRequest{From: "EDS", To: "BTC", Amount: 1})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedPair))
}

func TestSwapService_Verify(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		onchain := &recordingOnchain{out: func(int, *big.Int) *big.Int { return big.NewInt(120820) }}
		svc, _ := newService(t, snapshotSource{}, onchain)

		v, err := svc.Verify(context.Background(), CalculateRequest{From: "EDS", To: "USDT", Amount: 1})
		require.NoError(t, err)

		assert.Equal(t, []string{"100000000"}, onchain.inputs)
		assert.InDelta(t, 0.12082, v.OnchainAmount, 1e-12)
		assert.InDelta(t, 0.0000799, v.Deviation, 1e-6)
	})

	t.Run("two hop chains legs", func(t *testing.T) {
		onchain := &recordingOnchain{out: func(call int, in *big.Int) *big.Int {
			if call == 1 {
				return big.NewInt(120820)
			}
			return big.NewInt(64657850260)
		}}
		svc, _ := newService(t, snapshotSource{}, onchain)

		v, err := svc.Verify(context.Background(), CalculateRequest{From: "EDS", To: "VDEP", Amount: 1})
		require.NoError(t, err)

		assert.Equal(t, []string{"100000000", "120820"}, onchain.inputs)
		assert.InDelta(t, 646.5785026, v.OnchainAmount, 1e-9)
	})

	t.Run("not configured", func(t *testing.T) {
		svc, _ := newService(t, snapshotSource{}, nil)
		_, err := svc.Verify(context.Background(), CalculateRequest{From: "EDS", To: "USDT", Amount: 1})
		assert.Equal(t, apperror.CodeServiceUnavailable, apperror.GetCode(err))
	})
}

func TestSwapService_Pairs(t *testing.T) {
	svc, log := newService(t, snapshotSource{err: errors.New("down")}, nil)

	pairs := svc.Pairs(context.Background())
	require.Len(t, pairs, 6)

	byName := make(map[string]PairInfo, len(pairs))
	for _, p := range pairs {
		byName[p.Pair] = p
	}

	eds := byName["EDS/USDT"]
	assert.Equal(t, "direct", eds.Route)
	assert.Equal(t, uint32(12), eds.FeeBps)
	assert.Equal(t, "0x52fe2d47e68de101b84826dce2a09d9d37e2fd2256aa8cda13931ba07cf33082", eds.Address)
	assert.Contains(t, eds.SpotPrice, "0.1209652596")

	hop := byName["EDS/VDEP"]
	assert.Equal(t, "two-hop", hop.Route)
	assert.Equal(t, "USDT", hop.Via)
	assert.Empty(t, hop.SpotPrice)

	assert.Equal(t, 4, log.warns, "one warning per direct pair when the source is down")
}
