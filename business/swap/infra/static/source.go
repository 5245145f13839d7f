// Package static serves pool reserves from the configured snapshot.
package static

import (
	"context"
	"math/big"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/app"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/business/swap/domain"
	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/logger"
)

// Source returns the reserves the pool was registered with.
type Source struct{}

var _ app.ReserveSource = Source{}

// Reserves returns copies of the snapshot reserves.
func (Source) Reserves(_ context.Context, pool domain.PoolDescriptor) (*big.Int, *big.Int, error) {
	return copyInt(pool.ReserveIn), copyInt(pool.ReserveOut), nil
}

// Name identifies this reserve source.
func (Source) Name() string { return "static" }

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

// Fallback reads from a primary source and falls back to the snapshot
// when the primary fails. It is only wired when endless.snapshot_fallback is set.
type Fallback struct {
	primary app.ReserveSource
	logger  logger.LoggerInterface
}

var _ app.ServingReserveSource = (*Fallback)(nil)

// NewFallback wraps primary with snapshot fallback.
func NewFallback(primary app.ReserveSource, log logger.LoggerInterface) *Fallback {
	return &Fallback{primary: primary, logger: log}
}

// Reserves tries the primary first.
func (f *Fallback) Reserves(ctx context.Context, pool domain.PoolDescriptor) (*big.Int, *big.Int, error) {
	in, out, _, err := f.ReservesServed(ctx, pool)
	return in, out, err
}

// ReservesServed is Reserves plus the name of the source that answered:
// the primary's name, or "static" after a fallback.
func (f *Fallback) ReservesServed(ctx context.Context, pool domain.PoolDescriptor) (*big.Int, *big.Int, string, error) {
	in, out, err := f.primary.Reserves(ctx, pool)
	if err == nil {
		return in, out, f.primary.Name(), nil
	}

	span := trace.SpanFromContext(ctx)
	span.AddEvent("reserves.fallback", trace.WithAttributes(
		attribute.String("pool", pool.Pair().String()),
		attribute.String("primary", f.primary.Name()),
	))

	f.logger.Warn(ctx, "reserve source failed, using snapshot",
		"source", f.primary.Name(),
		"pool", pool.Pair().String(),
		"error", err.Error())

	in, out, err = Source{}.Reserves(ctx, pool)
	return in, out, Source{}.Name(), err
}

// Name reports both sources, e.g. "endless+static".
func (f *Fallback) Name() string {
	return f.primary.Name() + "+static"
}
