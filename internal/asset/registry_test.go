package asset_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/shahrookhpiray1/sliswap-loss-visualizer/internal/asset"
)

func TestRegistry_Default(t *testing.T) {
	r := asset.DefaultRegistry()

	if r.Count() != 3 {
		t.Fatalf("expected 3 assets, got %d", r.Count())
	}

	eds, ok := r.GetBySymbol("eds")
	if !ok {
		t.Fatal("EDS not found by lowercase symbol")
	}
	if eds.Decimals() != 8 {
		t.Errorf("EDS decimals = %d, want 8", eds.Decimals())
	}

	usdt, ok := r.Get(asset.IDUSDT)
	if !ok || usdt.Decimals() != 6 {
		t.Errorf("USDT lookup by id failed: %v %v", usdt, ok)
	}

	if r.Has("BTC") {
		t.Error("BTC should not be registered")
	}

	all := r.All()
	if all[0].Symbol() != "EDS" || all[1].Symbol() != "USDT" || all[2].Symbol() != "VDEP" {
		t.Errorf("All() not sorted: %v", all)
	}
}

func TestRegistry_DuplicatePanics(t *testing.T) {
	r := asset.DefaultRegistry()

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate symbol")
		}
	}()
	id := asset.NewAssetID(asset.ChainIDEndless, common.HexToHash("0x01"))
	r.Register(asset.NewAsset(id, "eds", 8))
}

func TestAssetID_Parse(t *testing.T) {
	id, err := asset.ParseAssetID(asset.ChainIDEndless, "0xc69712057e634bebc9ab02745d2d69ee738e3eb4f5d30189a9acbf8e08fb823e")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !id.Equals(asset.IDEDS) {
		t.Errorf("parsed id %s != %s", id, asset.IDEDS)
	}

	short, err := asset.ParseAddress("0x1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if short != common.HexToHash("0x01") {
		t.Errorf("short address = %s", short.Hex())
	}

	for _, bad := range []string{"c697", "0x", "0xzz", "0x0"} {
		if _, err := asset.ParseAssetID(asset.ChainIDEndless, bad); err == nil {
			t.Errorf("ParseAssetID(%q): expected error", bad)
		}
	}
}
