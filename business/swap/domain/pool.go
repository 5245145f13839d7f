// Package domain contains the pool registry and constant-product swap math.
package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

// MaxFeeBps is 100%.
const MaxFeeBps = 10000

// PoolDescriptor is one direction of liquidity for an ordered token pair.
// Reserves are atomic units. Treat as immutable; use WithReserves for a fresh snapshot.
type PoolDescriptor struct {
	TokenIn     *asset.Asset
	TokenOut    *asset.Asset
	ReserveIn   *big.Int
	ReserveOut  *big.Int
	FeeBps      uint32
	DecimalsIn  uint8
	DecimalsOut uint8
	Address     common.Hash // pool object on chain, zero when unknown
}

// NewPoolDescriptor builds the tokenIn -> tokenOut direction of a pool.
func NewPoolDescriptor(tokenIn, tokenOut *asset.Asset, reserveIn, reserveOut *big.Int, feeBps uint32, addr common.Hash) (PoolDescriptor, error) {
	if tokenIn == nil || tokenOut == nil {
		return PoolDescriptor{}, fmt.Errorf("pool: nil token")
	}
	if tokenIn.Equals(tokenOut) {
		return PoolDescriptor{}, fmt.Errorf("pool: %s paired with itself", tokenIn.Symbol())
	}
	if reserveIn == nil || reserveOut == nil || reserveIn.Sign() < 0 || reserveOut.Sign() < 0 {
		return PoolDescriptor{}, fmt.Errorf("pool %s/%s: reserves must be non-negative", tokenIn.Symbol(), tokenOut.Symbol())
	}
	if feeBps >= MaxFeeBps {
		return PoolDescriptor{}, fmt.Errorf("pool %s/%s: fee %d bps out of range", tokenIn.Symbol(), tokenOut.Symbol(), feeBps)
	}

	return PoolDescriptor{
		TokenIn:     tokenIn,
		TokenOut:    tokenOut,
		ReserveIn:   new(big.Int).Set(reserveIn),
		ReserveOut:  new(big.Int).Set(reserveOut),
		FeeBps:      feeBps,
		DecimalsIn:  tokenIn.Decimals(),
		DecimalsOut: tokenOut.Decimals(),
		Address:     addr,
	}, nil
}

// Reverse returns the opposite direction of the same pool.
func (p PoolDescriptor) Reverse() PoolDescriptor {
	return PoolDescriptor{
		TokenIn:     p.TokenOut,
		TokenOut:    p.TokenIn,
		ReserveIn:   p.ReserveOut,
		ReserveOut:  p.ReserveIn,
		FeeBps:      p.FeeBps,
		DecimalsIn:  p.DecimalsOut,
		DecimalsOut: p.DecimalsIn,
		Address:     p.Address,
	}
}

// WithReserves returns a copy with the given reserves, keeping fee and decimals.
func (p PoolDescriptor) WithReserves(reserveIn, reserveOut *big.Int) PoolDescriptor {
	p.ReserveIn = new(big.Int).Set(reserveIn)
	p.ReserveOut = new(big.Int).Set(reserveOut)
	return p
}

// Pair returns the ordered pair this descriptor trades.
func (p PoolDescriptor) Pair() Pair {
	return Pair{From: p.TokenIn, To: p.TokenOut}
}

// Pair is an ordered token pair. (A,B) and (B,A) are distinct.
type Pair struct {
	From *asset.Asset
	To   *asset.Asset
}

// String returns the pair symbol (e.g., "EDS/USDT").
func (p Pair) String() string {
	return p.From.Symbol() + "/" + p.To.Symbol()
}

type pairKey struct {
	from, to asset.AssetID
}

func keyOf(from, to *asset.Asset) pairKey {
	return pairKey{from: from.ID(), to: to.ID()}
}
