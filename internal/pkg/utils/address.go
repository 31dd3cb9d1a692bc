package utils

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// NormalizeAddress lowercases an address so it can be used as a cache key.
func NormalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// IsEVMAddress reports whether addr is a 0x-prefixed 20 byte hex address.
func IsEVMAddress(addr string) bool {
	return strings.HasPrefix(addr, "0x") && common.IsHexAddress(addr)
}

// ChecksumAddress returns the EIP-55 form of addr.
func ChecksumAddress(addr string) string {
	return common.HexToAddress(addr).Hex()
}
