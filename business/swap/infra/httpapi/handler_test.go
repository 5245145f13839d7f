package httpapi

import (
	"bytes"
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

type snapshotSource struct{}

func (snapshotSource) Reserves(_ context.Context, p domain.PoolDescriptor) (*big.Int, *big.Int, error) {
	return p.ReserveIn, p.ReserveOut, nil
}
func (snapshotSource) Name() string { return "static" }

type fixedOnchain struct{ out int64 }

func (f fixedOnchain) AmountOut(context.Context, domain.PoolDescriptor, *big.Int) (*big.Int, error) {
	return big.NewInt(f.out), nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestService(t *testing.T) *app.SwapService {
	t.Helper()
	reg := domain.NewRegistry(asset.DefaultRegistry())
	a, _ := new(big.Int).SetString("2492395586673194", 10)
	b, _ := new(big.Int).SetString("3014932793617", 10)
	require.NoError(t, reg.AddPool("EDS", "USDT", a, b, 12, common.Hash{1}))
	c, _ := new(big.Int).SetString("96616536647", 10)
	d, _ := new(big.Int).SetString("51767305097704601", 10)
	require.NoError(t, reg.AddPool("USDT", "VDEP", c, d, 12, common.Hash{2}))
	require.NoError(t, reg.AddTwoHop("EDS", "VDEP", "USDT"))

	svc, err := app.NewSwapService(reg, snapshotSource{}, fixedOnchain{out: 120820}, &mockLogger{})
	require.NoError(t, err)
	return svc
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	r := gin.New()
	NewHandler(newTestService(t), asset.DefaultRegistry(), &mockLogger{}).Register(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCalculate(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   apperror.Code
	}{
		{"direct", "/calculate", `{"from":"EDS","to":"USDT","amount":1}`, http.StatusOK, ""},
		{"two hop", "/calculate", `{"from":"EDS","to":"VDEP","amount":1}`, http.StatusOK, ""},
		{"unsupported", "/calculate", `{"from":"EDS","to":"BTC","amount":1}`, http.StatusBadRequest, apperror.CodeUnsupportedPair},
		{"same token", "/calculate", `{"from":"USDT","to":"USDT","amount":1}`, http.StatusBadRequest, apperror.CodeUnsupportedPair},
		{"negative amount", "/calculate", `{"from":"EDS","to":"USDT","amount":-1}`, http.StatusBadRequest, apperror.CodeInvalidAmount},
		{"missing amount", "/calculate", `{"from":"EDS","to":"USDT"}`, http.StatusBadRequest, apperror.CodeInvalidFormat},
		{"not json", "/calculate", `amount=1`, http.StatusBadRequest, apperror.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, tt.path, tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			if tt.code != "" {
				var env struct {
					Error apperror.ErrorBody `json:"error"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
				assert.Equal(t, tt.code, env.Error.Code)
				return
			}

			var q app.Quote
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
			assert.Greater(t, q.MarketExpected, 0.0)
			assert.GreaterOrEqual(t, q.IdealAmount, q.ActualAmount)
		})
	}
}

func TestCalculate_ResponseFields(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/calculate", `{"from":"EDS","to":"USDT","amount":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	for _, k := range []string{"marketExpected", "idealAmount", "actualAmount", "totalSlippage", "feeSlippage"} {
		assert.Contains(t, raw, k)
	}
	assert.InDelta(t, 0.12082009652444448, raw["actualAmount"], 1e-12)
}

func TestCalculate_Verify(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/calculate?verify=true", `{"from":"EDS","to":"USDT","amount":1}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var raw map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.InDelta(t, 0.12082, raw["onchainAmount"], 1e-12)
	assert.Contains(t, raw, "deviation")
}

func TestPairs(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/pairs", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Pairs []app.PairInfo `json:"pairs"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Pairs, 5)
}

func TestTokens(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/tokens", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Tokens []tokenView `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Tokens, 3)

	tests := []struct {
		path      string
		status    int
		formatted string
	}{
		{"/tokens/USDT/format?raw=3014932793617", http.StatusOK, "3014932.793617"},
		{"/tokens/eds/format?raw=100000000", http.StatusOK, "1"},
		{"/tokens/VDEP/format?raw=5", http.StatusOK, "0.00000005"},
		{"/tokens/BTC/format?raw=1", http.StatusNotFound, ""},
		{"/tokens/EDS/format?raw=1.5", http.StatusBadRequest, ""},
		{"/tokens/EDS/format?raw=-3", http.StatusBadRequest, ""},
		{"/tokens/EDS/format", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, "")
			require.Equal(t, tt.status, w.Code)
			if tt.formatted == "" {
				return
			}
			var got struct {
				Formatted string `json:"formatted"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
			assert.Equal(t, tt.formatted, got.Formatted)
		})
	}
}
