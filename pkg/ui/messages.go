// Package ui provides the Bubble Tea swap simulator.
package ui

import (
	"time"

	lossDomain "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	swapApp "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
)

// Message types for TUI updates

// QuoteMsg carries the answer to a simulator request. Seq drops stale answers
// when the user kept typing.
type QuoteMsg struct {
	Seq   int
	Quote *swapApp.Quote
	Err   error
}

// ScanReportMsg is sent when the slippage scanner finishes a pass.
type ScanReportMsg struct {
	Report *lossDomain.ScanReport
}

// StatusMsg is sent when a dependency's health changes.
type StatusMsg struct {
	Name    string
	Healthy bool
	Latency time.Duration
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// TickMsg is sent periodically for UI updates.
type TickMsg struct{}
