package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	swapApp "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/apm"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

// ScannerConfig holds configuration for the slippage scanner.
type ScannerConfig struct {
	Pairs      [][2]string // FROM, TO
	TradeSizes []float64
	Interval   time.Duration
	Source     string
}

// Scanner prices every configured pair at every trade size and reports the table.
type Scanner struct {
	quoter   Quoter
	reporter Reporter
	config   ScannerConfig
	logger   logger.LoggerInterface
	tracer   apm.Tracer

	mu     sync.Mutex
	last   *domain.ScanReport
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScanner creates a new slippage Scanner.
func NewScanner(quoter Quoter, reporter Reporter, config ScannerConfig, log logger.LoggerInterface) *Scanner {
	return &Scanner{
		quoter:   quoter,
		reporter: reporter,
		config:   config,
		logger:   log,
		tracer:   apm.NewTracer("sliswap/scanner"),
	}
}

// Start runs one scan immediately, then rescans every Interval until ctx is
// cancelled or Stop is called. A zero Interval scans once.
func (s *Scanner) Start(ctx context.Context) error {
	s.logger.Info(ctx, "starting slippage scanner",
		"pairs", len(s.config.Pairs),
		"sizes", len(s.config.TradeSizes),
		"interval", s.config.Interval.String())

	if err := s.reporter.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, done)
	return nil
}

func (s *Scanner) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.scanAndReport(ctx)
	if s.config.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "scanner stopping", "reason", ctx.Err())
			return
		case <-ticker.C:
			s.scanAndReport(ctx)
		}
	}
}

func (s *Scanner) scanAndReport(ctx context.Context) {
	report := s.RunOnce(ctx)
	if ctx.Err() != nil {
		return
	}

	healthy := report.Failed() < len(report.Rows) || len(report.Rows) == 0
	s.reporter.UpdateStatus(s.config.Source, healthy, report.Duration)
	s.reporter.Report(report)
}

// RunOnce prices every pair at every size. Row failures are recorded in the
// row, never returned. A cancelled ctx ends the pass early with the remaining
// rows marked by the context error.
func (s *Scanner) RunOnce(ctx context.Context) *domain.ScanReport {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "scanner.run")
	defer span.End()

	start := time.Now()
	sizes := len(s.config.TradeSizes)
	report := &domain.ScanReport{
		Timestamp: start,
		Source:    s.config.Source,
		Rows:      make([]domain.ScanRow, len(s.config.Pairs)*sizes),
	}

	// one goroutine per pair; each writes only its own rows. Cancellation
	// stops every pair and marks its unscanned rows.
	g, gCtx := errgroup.WithContext(ctx)
	for i, pair := range s.config.Pairs {
		g.Go(func() error {
			for j, size := range s.config.TradeSizes {
				if err := gCtx.Err(); err != nil {
					for k := j; k < sizes; k++ {
						report.Rows[i*sizes+k] = domain.ScanRow{
							Pair:  pair[0] + "/" + pair[1],
							Size:  s.config.TradeSizes[k],
							Error: err.Error(),
						}
					}
					return err
				}
				report.Rows[i*sizes+j] = s.scanRow(gCtx, pair, size)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.NoticeError(err)
		s.logger.Debug(ctx, "scan interrupted", "error", err.Error())
	}
	report.Duration = time.Since(start)
	span.SetAttributes(
		attribute.Int("rows", len(report.Rows)),
		attribute.Int("failed", report.Failed()),
	)
	if report.Failed() > 0 {
		span.Degrade(fmt.Sprintf("%d of %d rows failed", report.Failed(), len(report.Rows)))
	}

	if v := report.ImpactViolations(); len(v) > 0 {
		span.AddEvent("impact_violation", trace.WithAttributes(attribute.StringSlice("pairs", v)))
		s.logger.Warn(ctx, "slippage decreased with trade size", "pairs", v)
	}
	s.logger.Debug(ctx, "scan finished",
		"rows", len(report.Rows),
		"failed", report.Failed(),
		"duration", report.Duration.String())

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()

	return report
}

func (s *Scanner) scanRow(ctx context.Context, pair [2]string, size float64) domain.ScanRow {
	row := domain.ScanRow{Pair: pair[0] + "/" + pair[1], Size: size}

	q, err := s.quoter.Calculate(ctx, swapApp.CalculateRequest{From: pair[0], To: pair[1], Amount: size})
	if err != nil {
		row.Error = err.Error()
		return row
	}

	row.Pair = q.Pair
	row.Route = q.Route
	row.SwapResult = q.SwapResult
	return row
}

// Last returns the most recent report, or nil before the first scan.
func (s *Scanner) Last() *domain.ScanReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Stop gracefully shuts down the scanner.
func (s *Scanner) Stop() error {
	s.logger.Info(context.Background(), "stopping slippage scanner")

	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return s.reporter.Stop()
}
