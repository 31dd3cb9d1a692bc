package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned when an amount cannot be parsed as a non-negative decimal.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseUnits converts a human-readable amount into the token's smallest unit.
// Example: amount="1.5", decimals=6 => 1500000. Digits beyond the token's
// precision are truncated.
func ParseUnits(amount string, decimals uint8) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, amount, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, amount)
	}
	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}

// FormatUnits converts an amount in the smallest unit into a human-readable string
// without trailing zeros.
// Example: amount=1234500000000000000, decimals=18 => "1.2345"
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -int32(decimals)).String()
}

// FormatUnitsString is FormatUnits for integer strings as returned by JSON APIs.
// Malformed input yields "0".
func FormatUnitsString(amount string, decimals uint8) string {
	v, ok := new(big.Int).SetString(strings.TrimSpace(amount), 10)
	if !ok {
		return "0"
	}
	return FormatUnits(v, decimals)
}

// CoerceFloat mirrors loose numeric input handling: anything that does not parse is zero.
func CoerceFloat(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// IsPositiveAmount reports whether s parses to a decimal strictly greater than zero.
func IsPositiveAmount(s string) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	return d.IsPositive()
}
