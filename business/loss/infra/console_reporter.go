package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
)

// ConsoleReporter implements Reporter for CLI output.
type ConsoleReporter struct {
	out io.Writer
}

// NewConsoleReporter creates a new ConsoleReporter writing to stdout.
func NewConsoleReporter() *ConsoleReporter {
	return NewConsoleReporterTo(os.Stdout)
}

// NewConsoleReporterTo creates a ConsoleReporter writing to out.
func NewConsoleReporterTo(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Start initializes the console reporter.
func (r *ConsoleReporter) Start(ctx context.Context) error {
	fmt.Fprintln(r.out, "Slippage Scanner Started")
	fmt.Fprintln(r.out, "========================")
	return nil
}

// Report prints a scan as a table.
func (r *ConsoleReporter) Report(report *domain.ScanReport) {
	line := strings.Repeat("=", 96)
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, line)
	fmt.Fprintf(r.out, "SLIPPAGE SCAN  %s  source=%s  took=%s\n",
		report.Timestamp.Format(time.RFC3339), report.Source, report.Duration.Round(time.Microsecond))
	fmt.Fprintln(r.out, line)
	fmt.Fprintf(r.out, "%-11s %-8s %12s %18s %18s %9s %9s %9s\n",
		"PAIR", "ROUTE", "SIZE", "MARKET", "ACTUAL", "TOTAL%", "FEE%", "IMPACT%")
	fmt.Fprintln(r.out, strings.Repeat("-", 96))

	for _, row := range report.Rows {
		if !row.OK() {
			fmt.Fprintf(r.out, "%-11s %-8s %12g  error: %s\n", row.Pair, row.Route, row.Size, row.Error)
			continue
		}
		fmt.Fprintf(r.out, "%-11s %-8s %12g %18.8f %18.8f %9.4f %9.4f %9.4f\n",
			row.Pair, row.Route, row.Size,
			row.MarketExpected, row.ActualAmount,
			row.TotalSlippage, row.FeeSlippage, row.PriceImpact())
	}

	fmt.Fprintln(r.out, line)
	if failed := report.Failed(); failed > 0 {
		fmt.Fprintf(r.out, "%d of %d rows failed\n", failed, len(report.Rows))
	}
	if v := report.ImpactViolations(); len(v) > 0 {
		fmt.Fprintf(r.out, "WARNING: slippage not monotonic in size for %s\n", strings.Join(v, ", "))
	}
}

// UpdateStatus prints dependency health changes.
func (r *ConsoleReporter) UpdateStatus(name string, healthy bool, latency time.Duration) {
	status := "down"
	if healthy {
		status = fmt.Sprintf("healthy (%s)", latency.Round(time.Millisecond))
	}
	fmt.Fprintf(r.out, "[%s] %s: %s\n", time.Now().Format("15:04:05"), name, status)
}

// Stop gracefully shuts down the console reporter.
func (r *ConsoleReporter) Stop() error {
	fmt.Fprintln(r.out, "")
	fmt.Fprintln(r.out, "Slippage Scanner Stopped")
	return nil
}
