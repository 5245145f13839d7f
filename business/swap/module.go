// Package swap implements the swap bounded context: pool registry, swap math and its API.
package swap

import (
	"context"
	"fmt"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	swapDI "github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/di"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/infra/endless"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/infra/httpapi"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/infra/static"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/config"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/di"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/monolith"
)

// Module implements the swap bounded context.
type Module struct{}

// RegisterServices registers all swap services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Pool registry built from config - public
	di.RegisterToken(c, swapDI.Registry, func(sr di.ServiceRegistry) *domain.Registry {
		cfg := sr.Get("config").(*config.Config)
		assets := sr.Get("assetRegistry").(*asset.Registry)

		reg, err := BuildRegistry(cfg, assets)
		if err != nil {
			panic("failed to build pool registry: " + err.Error())
		}
		return reg
	})

	// Endless view client - nil when no node is configured
	di.RegisterToken(c, swapDI.EndlessClient, func(sr di.ServiceRegistry) *endless.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Endless.NodeURL == "" {
			return nil
		}
		client, err := endless.NewClient(cfg.Endless, log)
		if err != nil {
			panic("failed to create endless client: " + err.Error())
		}
		return client
	})

	di.RegisterToken(c, swapDI.ReserveSource, func(sr di.ServiceRegistry) app.ReserveSource {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if cfg.Endless.Source != config.SourceLive {
			return static.Source{}
		}
		client := swapDI.GetEndlessClient(sr)
		if client == nil {
			panic("live reserve source requires endless.node_url")
		}
		if cfg.Endless.SnapshotFallback {
			log.Warn(context.Background(), "live reserve failures will be served from the snapshot")
			return static.NewFallback(client, log)
		}
		return client
	})

	di.RegisterToken(c, swapDI.OnchainSource, func(sr di.ServiceRegistry) app.AmountOutSource {
		if client := swapDI.GetEndlessClient(sr); client != nil {
			return client
		}
		return nil
	})

	// SwapService - public
	di.RegisterToken(c, swapDI.SwapService, func(sr di.ServiceRegistry) *app.SwapService {
		log := sr.Get("logger").(logger.LoggerInterface)

		svc, err := app.NewSwapService(
			swapDI.GetRegistry(sr),
			swapDI.GetReserveSource(sr),
			swapDI.GetOnchainSource(sr),
			log,
		)
		if err != nil {
			panic("failed to create swap service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup mounts the swap API and registers the node health check.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	sr := mono.Services()

	svc := swapDI.GetSwapService(sr)
	httpapi.NewHandler(svc, mono.AssetRegistry(), log).
		WithAllowedOrigins(mono.Config().Server.AllowedOrigins).
		Register(mono.HTTP().Engine())

	if client := swapDI.GetEndlessClient(sr); client != nil && mono.Config().Endless.Source == config.SourceLive {
		mono.Health().RegisterCheck("endless", func(ctx context.Context) (bool, string) {
			if err := client.Ping(ctx); err != nil {
				return false, err.Error()
			}
			return true, "node reachable"
		})
	}

	log.Info(ctx, "swap module started",
		"pairs", len(svc.Registry().Pairs()),
		"source", swapDI.GetReserveSource(sr).Name())
	return nil
}

// BuildRegistry registers the configured pools and two-hop routes.
func BuildRegistry(cfg *config.Config, assets *asset.Registry) (*domain.Registry, error) {
	reg := domain.NewRegistry(assets)

	for _, p := range cfg.Pools {
		a, b, err := p.Reserves()
		if err != nil {
			return nil, err
		}
		if err := reg.AddPool(p.TokenA, p.TokenB, a, b, p.FeeBps, p.AddressHash()); err != nil {
			return nil, fmt.Errorf("pool %s/%s: %w", p.TokenA, p.TokenB, err)
		}
	}

	for _, r := range cfg.Routes {
		if err := reg.AddTwoHop(r.From, r.To, r.Via); err != nil {
			return nil, fmt.Errorf("route %s->%s via %s: %w", r.From, r.To, r.Via, err)
		}
	}

	return reg, nil
}
