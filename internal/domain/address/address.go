// Package address normalizes Ethereum addresses to their EIP-55 checksummed form.
package address

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsHex reports whether s is a 20-byte hex address, with or without 0x prefix.
func IsHex(s string) bool {
	return common.IsHexAddress(s)
}

// Checksum returns the EIP-55 form of s. Input that mixes upper and lower
// case must already be correctly checksummed; all-lower and all-upper input
// is accepted as is.
func Checksum(s string) (string, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	sum := common.HexToAddress(s).Hex()
	if mixedCase(s) && strip0x(s) != sum[2:] {
		return "", fmt.Errorf("%w: %q", ErrBadChecksum, s)
	}
	return sum, nil
}

// Lower returns the lowercase 0x-prefixed form used in subgraph filters.
// Values that are not hex addresses are only lowercased.
func Lower(s string) string {
	if !common.IsHexAddress(s) {
		return strings.ToLower(s)
	}
	return strings.ToLower(common.HexToAddress(s).Hex())
}

// LowerAll maps Lower over addrs.
func LowerAll(addrs []string) []string {
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = Lower(a)
	}
	return out
}

// Equal reports whether a and b are the same hex address, ignoring case.
// Anything that is not a hex address equals nothing.
func Equal(a, b string) bool {
	if !common.IsHexAddress(a) || !common.IsHexAddress(b) {
		return false
	}
	return common.HexToAddress(a) == common.HexToAddress(b)
}

func strip0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func mixedCase(s string) bool {
	var upper, lower bool
	for _, r := range strip0x(s) {
		switch {
		case r >= 'a' && r <= 'f':
			lower = true
		case r >= 'A' && r <= 'F':
			upper = true
		}
	}
	return upper && lower
}
