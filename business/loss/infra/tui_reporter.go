package infra

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/pkg/ui"
)

// Sender delivers messages to a running Bubble Tea program. *tea.Program satisfies it.
type Sender interface {
	Send(msg tea.Msg)
}

// TUIReporter implements Reporter for the Bubble Tea TUI.
type TUIReporter struct {
	sender Sender
}

// NewTUIReporter creates a reporter that forwards to sender.
func NewTUIReporter(sender Sender) *TUIReporter {
	return &TUIReporter{sender: sender}
}

// Start is a no-op; the program is owned by main.
func (r *TUIReporter) Start(ctx context.Context) error {
	r.sender.Send(ui.LogMsg{Level: "info", Message: "scanner started"})
	return nil
}

// Report sends a finished scan to the TUI.
func (r *TUIReporter) Report(report *domain.ScanReport) {
	r.sender.Send(ui.ScanReportMsg{Report: report})
}

// UpdateStatus sends dependency health to the TUI.
func (r *TUIReporter) UpdateStatus(name string, healthy bool, latency time.Duration) {
	r.sender.Send(ui.StatusMsg{Name: name, Healthy: healthy, Latency: latency})
}

// Stop is a no-op; the program is owned by main.
func (r *TUIReporter) Stop() error {
	return nil
}
