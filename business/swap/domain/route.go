package domain

import "github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"

// RouteKind tags a Route.
type RouteKind int

const (
	RouteDirect RouteKind = iota + 1
	RouteTwoHop
)

func (k RouteKind) String() string {
	switch k {
	case RouteDirect:
		return "direct"
	case RouteTwoHop:
		return "two-hop"
	default:
		return "unknown"
	}
}

// Route is either Direct(pool) or TwoHop(intermediate). The zero value is invalid.
type Route struct {
	kind RouteKind
	pool PoolDescriptor
	via  *asset.Asset
}

// Direct creates a single-pool route.
func Direct(pool PoolDescriptor) Route {
	return Route{kind: RouteDirect, pool: pool}
}

// TwoHop creates a route through an intermediate token.
func TwoHop(via *asset.Asset) Route {
	return Route{kind: RouteTwoHop, via: via}
}

// Kind returns the route variant.
func (r Route) Kind() RouteKind {
	return r.kind
}

// Pool returns the pool of a direct route.
func (r Route) Pool() (PoolDescriptor, bool) {
	return r.pool, r.kind == RouteDirect
}

// Via returns the intermediate token of a two-hop route.
func (r Route) Via() (*asset.Asset, bool) {
	return r.via, r.kind == RouteTwoHop
}
