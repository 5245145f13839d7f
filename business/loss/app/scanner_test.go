package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	swapApp "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	swapDomain "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
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

// sizeQuoter slips 0.1% per unit of size and rejects the pair X/Y.
type sizeQuoter struct{}

func (sizeQuoter) Calculate(_ context.Context, req swapApp.CalculateRequest) (*swapApp.Quote, error) {
	if req.From == "X" {
		return nil, errors.New("unsupported pair")
	}
	return &swapApp.Quote{
		SwapResult: swapDomain.SwapResult{TotalSlippage: req.Amount * 0.1},
		Pair:       req.From + "/" + req.To,
		Route:      "direct",
	}, nil
}

type recordingReporter struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	reports  []*domain.ScanReport
	statuses []bool
	got      chan struct{}
}

func newRecordingReporter() *recordingReporter {
	return &recordingReporter{got: make(chan struct{}, 16)}
}

func (r *recordingReporter) Start(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
	return nil
}

func (r *recordingReporter) Report(report *domain.ScanReport) {
	r.mu.Lock()
	r.reports = append(r.reports, report)
	r.mu.Unlock()
	select {
	case r.got <- struct{}{}:
	default:
	}
}

func (r *recordingReporter) UpdateStatus(_ string, healthy bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, healthy)
}

func (r *recordingReporter) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	return nil
}

func TestScanner_RunOnce(t *testing.T) {
	s := NewScanner(sizeQuoter{}, newRecordingReporter(), ScannerConfig{
		Pairs:      [][2]string{{"EDS", "USDT"}, {"X", "Y"}},
		TradeSizes: []float64{1, 100, 10000},
		Source:     "static",
	}, &mockLogger{})

	assert.Nil(t, s.Last())

	report := s.RunOnce(context.Background())
	require.Len(t, report.Rows, 6)
	assert.Equal(t, 3, report.Failed())
	assert.Empty(t, report.ImpactViolations())
	assert.Equal(t, "static", report.Source)

	first := report.Rows[0]
	assert.Equal(t, "EDS/USDT", first.Pair)
	assert.Equal(t, "direct", first.Route)
	assert.InDelta(t, 0.1, first.TotalSlippage, 1e-12)

	failed := report.Rows[3]
	assert.Equal(t, "X/Y", failed.Pair)
	assert.Equal(t, "unsupported pair", failed.Error)

	assert.Same(t, report, s.Last())
}

// cancelingQuoter cancels the scan after its first quote.
type cancelingQuoter struct {
	cancel context.CancelFunc
	calls  int
}

func (q *cancelingQuoter) Calculate(ctx context.Context, req swapApp.CalculateRequest) (*swapApp.Quote, error) {
	q.calls++
	q.cancel()
	return sizeQuoter{}.Calculate(ctx, req)
}

func TestScanner_RunOnceStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quoter := &cancelingQuoter{cancel: cancel}
	s := NewScanner(quoter, newRecordingReporter(), ScannerConfig{
		Pairs:      [][2]string{{"EDS", "USDT"}},
		TradeSizes: []float64{1, 100, 10000},
	}, &mockLogger{})

	report := s.RunOnce(ctx)
	require.Len(t, report.Rows, 3)
	assert.Equal(t, 1, quoter.calls)
	assert.Empty(t, report.Rows[0].Error)
	for _, row := range report.Rows[1:] {
		assert.Equal(t, "EDS/USDT", row.Pair)
		assert.Equal(t, context.Canceled.Error(), row.Error)
	}
	assert.Equal(t, []float64{100, 10000}, []float64{report.Rows[1].Size, report.Rows[2].Size})
}

func TestScanner_StartStop(t *testing.T) {
	rep := newRecordingReporter()
	s := NewScanner(sizeQuoter{}, rep, ScannerConfig{
		Pairs:      [][2]string{{"EDS", "USDT"}},
		TradeSizes: []float64{1, 2},
		Interval:   10 * time.Millisecond,
		Source:     "static",
	}, &mockLogger{})

	require.NoError(t, s.Start(context.Background()))

	for i := 0; i < 2; i++ {
		select {
		case <-rep.got:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for scan")
		}
	}

	require.NoError(t, s.Stop())

	rep.mu.Lock()
	defer rep.mu.Unlock()
	assert.True(t, rep.started)
	assert.True(t, rep.stopped)
	assert.GreaterOrEqual(t, len(rep.reports), 2)
	assert.True(t, rep.statuses[0])
}
