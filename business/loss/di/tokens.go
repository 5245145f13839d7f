// Package di contains dependency injection tokens for the loss context.
package di

import (
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/loss/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	LossService = di.NewToken[*app.LossService]("loss.LossService")
	Scanner     = di.NewToken[*app.Scanner]("loss.Scanner")
)

// Private dependency tokens - internal to loss module
var (
	TransactionStore = di.NewToken[app.TransactionStore]("loss:transactionStore")
	Reporter         = di.NewToken[app.Reporter]("loss:reporter")
)

// Helper functions for type-safe access
func GetLossService(c di.ServiceRegistry) *app.LossService {
	return di.GetToken(c, LossService)
}

func GetScanner(c di.ServiceRegistry) *app.Scanner {
	return di.GetToken(c, Scanner)
}

func GetTransactionStore(c di.ServiceRegistry) app.TransactionStore {
	return di.GetToken(c, TransactionStore)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
