package domain

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

// Registry maps ordered token pairs to routes.
// It is populated once at startup and only read afterwards.
type Registry struct {
	assets *asset.Registry
	routes map[pairKey]Route
}

// NewRegistry creates an empty registry over the token catalog.
func NewRegistry(assets *asset.Registry) *Registry {
	return &Registry{
		assets: assets,
		routes: make(map[pairKey]Route),
	}
}

// AddPool registers both directions of an a/b pool. reserveA is the a-side balance.
func (r *Registry) AddPool(a, b string, reserveA, reserveB *big.Int, feeBps uint32, addr common.Hash) error {
	ta, ok := r.assets.GetBySymbol(a)
	if !ok {
		return fmt.Errorf("registry: unknown token %q", a)
	}
	tb, ok := r.assets.GetBySymbol(b)
	if !ok {
		return fmt.Errorf("registry: unknown token %q", b)
	}

	ab, err := NewPoolDescriptor(ta, tb, reserveA, reserveB, feeBps, addr)
	if err != nil {
		return err
	}
	if _, exists := r.routes[keyOf(ta, tb)]; exists {
		return fmt.Errorf("registry: pair %s already registered", ab.Pair())
	}

	r.routes[keyOf(ta, tb)] = Direct(ab)
	r.routes[keyOf(tb, ta)] = Direct(ab.Reverse())
	return nil
}

// AddTwoHop registers from -> via -> to. Both legs must already have direct pools.
func (r *Registry) AddTwoHop(from, to, via string) error {
	tf, okF := r.assets.GetBySymbol(from)
	tt, okT := r.assets.GetBySymbol(to)
	tv, okV := r.assets.GetBySymbol(via)
	if !okF || !okT || !okV {
		return fmt.Errorf("registry: unknown token in route %s->%s->%s", from, via, to)
	}
	if tf.Equals(tt) || tf.Equals(tv) || tt.Equals(tv) {
		return fmt.Errorf("registry: route %s->%s->%s repeats a token", from, via, to)
	}

	for _, leg := range [][2]*asset.Asset{{tf, tv}, {tv, tt}} {
		rt, ok := r.routes[keyOf(leg[0], leg[1])]
		if !ok || rt.Kind() != RouteDirect {
			return fmt.Errorf("registry: route %s->%s needs a direct pool %s/%s",
				from, to, leg[0].Symbol(), leg[1].Symbol())
		}
	}
	if _, exists := r.routes[keyOf(tf, tt)]; exists {
		return fmt.Errorf("registry: pair %s/%s already registered", from, to)
	}

	r.routes[keyOf(tf, tt)] = TwoHop(tv)
	return nil
}

// Resolve maps (from, to) to a route. It reports false when from == to,
// when either token is unknown, or when nothing is configured for the pair.
func (r *Registry) Resolve(from, to string) (Route, bool) {
	tf, ok := r.assets.GetBySymbol(from)
	if !ok {
		return Route{}, false
	}
	tt, ok := r.assets.GetBySymbol(to)
	if !ok || tf.Equals(tt) {
		return Route{}, false
	}

	rt, ok := r.routes[keyOf(tf, tt)]
	return rt, ok
}

// Legs expands the route for (from, to) into the pools traded in order.
func (r *Registry) Legs(from, to string) ([]PoolDescriptor, error) {
	rt, ok := r.Resolve(from, to)
	if !ok {
		return nil, fmt.Errorf("%w: %s->%s", ErrUnsupportedPair, from, to)
	}

	if pool, ok := rt.Pool(); ok {
		return []PoolDescriptor{pool}, nil
	}

	via, _ := rt.Via()
	first, ok1 := r.Resolve(from, via.Symbol())
	second, ok2 := r.Resolve(via.Symbol(), to)
	p1, d1 := first.Pool()
	p2, d2 := second.Pool()
	if !ok1 || !ok2 || !d1 || !d2 {
		return nil, fmt.Errorf("%w: %s->%s via %s", ErrUnsupportedPair, from, to, via.Symbol())
	}
	return []PoolDescriptor{p1, p2}, nil
}

// PairRoute is a registered pair with its route.
type PairRoute struct {
	Pair  Pair
	Route Route
}

// Pairs lists every registered ordered pair, sorted by symbol.
func (r *Registry) Pairs() []PairRoute {
	out := make([]PairRoute, 0, len(r.routes))
	for k, rt := range r.routes {
		from, _ := r.assets.Get(k.from)
		to, _ := r.assets.Get(k.to)
		out = append(out, PairRoute{Pair: Pair{From: from, To: to}, Route: rt})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Pair.String() < out[j].Pair.String()
	})
	return out
}
