package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

func mustBig(t testing.TB, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		t.Fatalf("bad big int %q", s)
	}
	return v
}

// newTestRegistry mirrors the default mainnet snapshot.
func newTestRegistry(t testing.TB) *Registry {
	t.Helper()
	r := NewRegistry(asset.DefaultRegistry())

	if err := r.AddPool("EDS", "USDT", mustBig(t, "2492395586673194"), mustBig(t, "3014932793617"), 12, common.Hash{}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddPool("USDT", "VDEP", mustBig(t, "96616536647"), mustBig(t, "51767305097704601"), 12, common.Hash{}); err != nil {
		t.Fatal(err)
	}
	if err := r.AddTwoHop("EDS", "VDEP", "USDT"); err != nil {
		t.Fatal(err)
	}
	if err := r.AddTwoHop("VDEP", "EDS", "USDT"); err != nil {
		t.Fatal(err)
	}
	return r
}

func directPool(t testing.TB, r *Registry, from, to string) PoolDescriptor {
	t.Helper()
	rt, ok := r.Resolve(from, to)
	if !ok {
		t.Fatalf("no route %s->%s", from, to)
	}
	pool, ok := rt.Pool()
	if !ok {
		t.Fatalf("%s->%s is not direct", from, to)
	}
	return pool
}

var zeroAddr common.Hash
