package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apperror"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

type memStore struct {
	txs []domain.Transaction
	err error
}

func (s memStore) List(context.Context) ([]domain.Transaction, error) {
	return s.txs, s.err
}

type fakeScanner struct {
	last *domain.ScanReport
	runs int
}

func (f *fakeScanner) Last() *domain.ScanReport { return f.last }

func (f *fakeScanner) RunOnce(context.Context) *domain.ScanReport {
	f.runs++
	f.last = &domain.ScanReport{Source: "static", Rows: []domain.ScanRow{{Pair: "EDS/USDT", Size: 1}}}
	return f.last
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(store memStore, scanner ScanSource) *gin.Engine {
	r := gin.New()
	NewHandler(app.NewLossService(store, &mockLogger{}), scanner, &mockLogger{}).Register(r)
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

func errorCode(t *testing.T, w *httptest.ResponseRecorder) apperror.Code {
	t.Helper()
	var env struct {
		Error apperror.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error.Code
}

func TestImpermanentLoss(t *testing.T) {
	r := newRouter(memStore{}, nil)

	tests := []struct {
		name   string
		query  string
		status int
		want   float64
		code   apperror.Code
	}{
		{"doubled", "ratio=2", http.StatusOK, -5.719095841793653, ""},
		{"unchanged", "ratio=1", http.StatusOK, 0, ""},
		{"zero", "ratio=0", http.StatusBadRequest, 0, apperror.CodeInvalidPriceRatio},
		{"not a number", "ratio=abc", http.StatusBadRequest, 0, apperror.CodeInvalidPriceRatio},
		{"missing", "", http.StatusBadRequest, 0, apperror.CodeInvalidPriceRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/loss/impermanent?"+tt.query, "")
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
				return
			}
			var body struct {
				ImpermanentLoss float64 `json:"impermanentLoss"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.InDelta(t, tt.want, body.ImpermanentLoss, 1e-9)
		})
	}
}

func TestSlippageLoss(t *testing.T) {
	r := newRouter(memStore{}, nil)

	tests := []struct {
		name   string
		body   string
		status int
		want   float64
		code   apperror.Code
	}{
		{"loss", `{"expected":100,"actual":98}`, http.StatusOK, 2, ""},
		{"better than quoted", `{"expected":100,"actual":101}`, http.StatusOK, -1, ""},
		{"zero expected", `{"expected":0,"actual":1}`, http.StatusBadRequest, 0, apperror.CodeInvalidExpectedAmount},
		{"missing actual", `{"expected":1}`, http.StatusBadRequest, 0, apperror.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/loss/slippage", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, errorCode(t, w))
				return
			}
			var body struct {
				SlippageLoss float64 `json:"slippageLoss"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.InDelta(t, tt.want, body.SlippageLoss, 1e-9)
		})
	}
}

func TestTransactions(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	store := memStore{txs: []domain.Transaction{
		{ID: "old", TokenPair: "EDS/USDT", ExpectedAmount: 100, ActualAmount: 99, Timestamp: now},
		{ID: "new", TokenPair: "EDS/USDT", ExpectedAmount: 100, ActualAmount: 97, Timestamp: now.Add(time.Hour)},
	}}

	w := do(newRouter(store, nil), http.MethodGet, "/transactions", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Transactions []domain.TransactionReport `json:"transactions"`
		Summary      domain.Summary             `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Transactions, 2)
	assert.Equal(t, "new", body.Transactions[0].ID)
	require.NotNil(t, body.Transactions[0].SlippageLoss)
	assert.InDelta(t, 3, *body.Transactions[0].SlippageLoss, 1e-9)
	assert.Equal(t, "new", body.Summary.WorstID)

	w = do(newRouter(memStore{err: errors.New("disk")}, nil), http.MethodGet, "/transactions", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperror.CodeTransactionsLoadFailed, errorCode(t, w))
}

func TestScan(t *testing.T) {
	scanner := &fakeScanner{}
	r := newRouter(memStore{}, scanner)

	w := do(r, http.MethodGet, "/scan", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, scanner.runs)

	do(r, http.MethodGet, "/scan", "")
	assert.Equal(t, 1, scanner.runs)

	do(r, http.MethodGet, "/scan?fresh=true", "")
	assert.Equal(t, 2, scanner.runs)

	var body struct {
		Report domain.ScanReport `json:"report"`
		Failed int               `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "static", body.Report.Source)

	w = do(newRouter(memStore{}, nil), http.MethodGet, "/scan", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
