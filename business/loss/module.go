// Package loss implements the loss bounded context: impermanent and slippage
// loss metrics, the transaction history and the slippage scanner.
package loss

import (
	"context"
	"fmt"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/app"
	lossDI "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/di"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/infra"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/infra/httpapi"
	swapDI "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/di"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/di"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/monolith"
)

// Module implements the loss bounded context. It depends on the swap module.
type Module struct {
	// Reporter receives scanner output. Nil logs each scan.
	Reporter app.Reporter
}

// RegisterServices registers all loss services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, lossDI.TransactionStore, func(sr di.ServiceRegistry) app.TransactionStore {
		cfg := sr.Get("config").(*config.Config)
		return infra.NewFileStore(cfg.Scan.TransactionsFile)
	})

	di.RegisterToken(c, lossDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		if m.Reporter != nil {
			return m.Reporter
		}
		log := sr.Get("logger").(logger.LoggerInterface)
		return infra.NewLogReporter(log)
	})

	// LossService - public
	di.RegisterToken(c, lossDI.LossService, func(sr di.ServiceRegistry) *app.LossService {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewLossService(lossDI.GetTransactionStore(sr), log)
	})

	// Scanner - public, depends on swap
	di.RegisterToken(c, lossDI.Scanner, func(sr di.ServiceRegistry) *app.Scanner {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		pairs, err := cfg.Scan.ParsedPairs()
		if err != nil {
			panic("invalid scan pairs: " + err.Error())
		}

		return app.NewScanner(
			swapDI.GetSwapService(sr),
			lossDI.GetReporter(sr),
			app.ScannerConfig{
				Pairs:      pairs,
				TradeSizes: cfg.Scan.TradeSizes,
				Interval:   cfg.Scan.Interval,
				Source:     swapDI.GetReserveSource(sr).Name(),
			},
			log,
		)
	})

	return nil
}

// Startup mounts the loss API. The scanner is started by the caller.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	svc := lossDI.GetLossService(sr)
	scanner := lossDI.GetScanner(sr)
	httpapi.NewHandler(svc, scanner, log).Register(mono.HTTP().Engine())

	mono.Health().RegisterCheck("transactions", func(ctx context.Context) (bool, string) {
		txs, err := lossDI.GetTransactionStore(sr).List(ctx)
		if err != nil {
			return false, err.Error()
		}
		return true, fmt.Sprintf("%d transactions", len(txs))
	})

	log.Info(ctx, "loss module started", "transactions_file", mono.Config().Scan.TransactionsFile)
	return nil
}
