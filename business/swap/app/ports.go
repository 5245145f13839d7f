// Package app contains the swap service and its ports.
package app

import (
	"context"
	"math/big"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
)

// ReserveSource supplies the reserves a pool is priced with.
// Implementations return atomic units oriented to pool.TokenIn -> pool.TokenOut.
type ReserveSource interface {
	Reserves(ctx context.Context, pool domain.PoolDescriptor) (reserveIn, reserveOut *big.Int, err error)
	Name() string
}

// ServingReserveSource is a ReserveSource backed by more than one source.
// ReservesServed also names the source that answered this call.
type ServingReserveSource interface {
	ReserveSource
	ReservesServed(ctx context.Context, pool domain.PoolDescriptor) (reserveIn, reserveOut *big.Int, servedBy string, err error)
}

// AmountOutSource asks the chain how much a swap of amountIn (atomic units of
// pool.TokenIn) would deliver right now.
type AmountOutSource interface {
	AmountOut(ctx context.Context, pool domain.PoolDescriptor, amountIn *big.Int) (*big.Int, error)
}
