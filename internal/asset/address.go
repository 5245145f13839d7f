package asset

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// decodeAddress decodes a 0x-prefixed Move address of up to 32 bytes.
// Short forms like 0x1 are left-padded.
func decodeAddress(s string) (common.Hash, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Hash{}, fmt.Errorf("asset: address %q missing 0x prefix", s)
	}
	digits := s[2:]
	if len(digits) == 0 || len(digits) > 64 {
		return common.Hash{}, fmt.Errorf("asset: address %q has invalid length", s)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	b, err := hexutil.Decode("0x" + digits)
	if err != nil {
		return common.Hash{}, fmt.Errorf("asset: invalid address %q: %w", s, err)
	}
	return common.BytesToHash(b), nil
}

// ParseAddress parses an Endless account or object address.
func ParseAddress(s string) (common.Hash, error) {
	return decodeAddress(s)
}
