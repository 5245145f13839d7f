// Package app contains the loss services, the slippage scanner and their ports.
package app

import (
	"context"
	"time"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/domain"
	swapApp "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
)

// Reporter displays scanner output.
type Reporter interface {
	// Start initializes the reporter.
	Start(ctx context.Context) error

	// Report hands over a finished scan.
	Report(report *domain.ScanReport)

	// UpdateStatus reports the health of a dependency such as the reserve source.
	UpdateStatus(name string, healthy bool, latency time.Duration)

	// Stop gracefully shuts down the reporter.
	Stop() error
}

// Quoter prices a swap. Implemented by the swap service.
type Quoter interface {
	Calculate(ctx context.Context, req swapApp.CalculateRequest) (*swapApp.Quote, error)
}

// TransactionStore lists recorded transactions.
type TransactionStore interface {
	List(ctx context.Context) ([]domain.Transaction, error)
}
