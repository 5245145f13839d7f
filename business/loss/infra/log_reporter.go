package infra

import (
	"context"
	"time"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

// LogReporter implements Reporter for server mode: one structured log line
// per scan and per status change.
type LogReporter struct {
	logger logger.LoggerInterface
}

// NewLogReporter creates a LogReporter.
func NewLogReporter(log logger.LoggerInterface) *LogReporter {
	return &LogReporter{logger: log}
}

// Start initializes the reporter.
func (r *LogReporter) Start(ctx context.Context) error {
	return nil
}

// Report logs a scan summary; failed rows are logged individually.
func (r *LogReporter) Report(report *domain.ScanReport) {
	ctx := context.Background()

	maxSlippage := 0.0
	for _, row := range report.Rows {
		if !row.OK() {
			r.logger.Warn(ctx, "scan row failed", "pair", row.Pair, "size", row.Size, "error", row.Error)
			continue
		}
		if row.TotalSlippage > maxSlippage {
			maxSlippage = row.TotalSlippage
		}
	}

	r.logger.Info(ctx, "slippage scan",
		"source", report.Source,
		"rows", len(report.Rows),
		"failed", report.Failed(),
		"max_total_slippage", maxSlippage,
		"duration", report.Duration.String())
}

// UpdateStatus logs dependency health.
func (r *LogReporter) UpdateStatus(name string, healthy bool, latency time.Duration) {
	if healthy {
		r.logger.Debug(context.Background(), "dependency healthy", "name", name, "latency", latency.String())
		return
	}
	r.logger.Warn(context.Background(), "dependency unhealthy", "name", name)
}

// Stop is a no-op.
func (r *LogReporter) Stop() error {
	return nil
}
