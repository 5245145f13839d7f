package asset

import "github.com/ethereum/go-ethereum/common"

// ChainIDEndless is the Endless mainnet chain id.
const ChainIDEndless = 220

// Fungible asset metadata addresses on Endless mainnet.
var (
	AddrEDS  = common.HexToHash("0xc69712057e634bebc9ab02745d2d69ee738e3eb4f5d30189a9acbf8e08fb823e")
	AddrUSDT = common.HexToHash("0x0707313fc6e87b5bad0bb90b65dbfe13522fde9e71261e91ab76e93fff707934")
	AddrVDEP = common.HexToHash("0x073a178b234acfa232c3c44fd94a32076d4f8a53dba143d99f3bafc84a05620d")
)

var (
	IDEDS  = NewAssetID(ChainIDEndless, AddrEDS)
	IDUSDT = NewAssetID(ChainIDEndless, AddrUSDT)
	IDVDEP = NewAssetID(ChainIDEndless, AddrVDEP)
)

// Catalog assets.
var (
	EDS  = NewAssetWithName(IDEDS, "EDS", "Endless", 8)
	USDT = NewAssetWithName(IDUSDT, "USDT", "Tether USD", 6)
	VDEP = NewAssetWithName(IDVDEP, "VDEP", "VDEP", 8)
)

// DefaultRegistry returns a registry holding the EDS, USDT and VDEP catalog.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(EDS)
	r.Register(USDT)
	r.Register(VDEP)
	return r
}
