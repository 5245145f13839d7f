// Package asset provides a type-safe model for Endless fungible assets.
// The core uses big.Int for exact on-chain representation.
// decimal.Decimal is only used at boundaries (UI, parsing, display).
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// AssetID identifies a fungible asset by chain and its 32-byte metadata object address.
// This is the identity; the symbol is display metadata.
type AssetID struct {
	chainID  uint64
	metadata common.Hash
}

// NewAssetID creates an AssetID. Panics on a zero metadata address.
func NewAssetID(chainID uint64, metadata common.Hash) AssetID {
	if metadata == (common.Hash{}) {
		panic("asset: metadata address cannot be zero")
	}
	return AssetID{chainID: chainID, metadata: metadata}
}

// ParseAssetID parses a 0x-prefixed 32-byte metadata address.
func ParseAssetID(chainID uint64, hex string) (AssetID, error) {
	b, err := decodeAddress(hex)
	if err != nil {
		return AssetID{}, err
	}
	if b == (common.Hash{}) {
		return AssetID{}, fmt.Errorf("asset: zero metadata address")
	}
	return AssetID{chainID: chainID, metadata: b}, nil
}

// ChainID returns the chain ID.
func (id AssetID) ChainID() uint64 {
	return id.chainID
}

// Metadata returns the metadata object address.
func (id AssetID) Metadata() common.Hash {
	return id.metadata
}

// String returns a human-readable representation.
func (id AssetID) String() string {
	return fmt.Sprintf("chain:%d/%s", id.chainID, id.metadata.Hex())
}

// Equals compares two AssetIDs for equality.
func (id AssetID) Equals(other AssetID) bool {
	return id == other
}
