// Package di contains dependency injection tokens for the swap context.
package di

import (
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/infra/endless"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	SwapService = di.NewToken[*app.SwapService]("swap.SwapService")
	Registry    = di.NewToken[*domain.Registry]("swap.Registry")
)

// Private dependency tokens - internal to swap module
var (
	EndlessClient = di.NewToken[*endless.Client]("swap:endlessClient")
	ReserveSource = di.NewToken[app.ReserveSource]("swap:reserveSource")
	OnchainSource = di.NewToken[app.AmountOutSource]("swap:onchainSource")
)

// Helper functions for type-safe access
func GetSwapService(c di.ServiceRegistry) *app.SwapService {
	return di.GetToken(c, SwapService)
}

func GetRegistry(c di.ServiceRegistry) *domain.Registry {
	return di.GetToken(c, Registry)
}

func GetEndlessClient(c di.ServiceRegistry) *endless.Client {
	return di.GetToken(c, EndlessClient)
}

func GetReserveSource(c di.ServiceRegistry) app.ReserveSource {
	return di.GetToken(c, ReserveSource)
}

func GetOnchainSource(c di.ServiceRegistry) app.AmountOutSource {
	return di.GetToken(c, OnchainSource)
}
