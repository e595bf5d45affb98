package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount constants. One ZEC is 10^8 zatoshis.
const (
	Decimals = 8
	Coin     = 100_000_000
)

// FormatAmount renders zatoshis as a decimal ZEC string ("1.50000000").
func FormatAmount(zats uint64) string {
	whole := zats / Coin
	frac := zats % Coin
	return fmt.Sprintf("%d.%08d", whole, frac)
}

// ParseAmount converts a decimal ZEC string to zatoshis.
func ParseAmount(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("negative amount")
	}

	parts := strings.SplitN(s, ".", 2)

	whole, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid whole part: %w", err)
	}

	var frac uint64
	if len(parts) == 2 {
		fracStr := parts[1]
		if len(fracStr) > Decimals {
			return 0, fmt.Errorf("too many decimal places (max %d)", Decimals)
		}
		fracStr = fracStr + strings.Repeat("0", Decimals-len(fracStr))
		frac, err = strconv.ParseUint(fracStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid fractional part: %w", err)
		}
	}

	if whole > math.MaxUint64/Coin {
		return 0, fmt.Errorf("amount too large")
	}
	result := whole * Coin
	if result > math.MaxUint64-frac {
		return 0, fmt.Errorf("amount too large")
	}

	return result + frac, nil
}
