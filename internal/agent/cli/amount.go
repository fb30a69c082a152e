package cli

import (
	"fmt"
	"math/big"
	"strings"
)

// tokenDecimals is the ledger token's precision. All amounts cross the wire
// in base units; decimal form exists only for display and input.
const tokenDecimals = 18

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(tokenDecimals), nil)

// FormatAmount renders a base-unit amount as a decimal token string with
// trailing zeros trimmed, e.g. 1500000000000000000 -> "1.5".
func FormatAmount(amount *big.Int) string {
	if amount == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Abs(amount)
	if amount.Sign() < 0 {
		sign = "-"
	}

	whole, frac := new(big.Int).QuoRem(abs, unit, new(big.Int))
	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := frac.String()
	fracStr = strings.Repeat("0", tokenDecimals-len(fracStr)) + fracStr
	fracStr = strings.TrimRight(fracStr, "0")
	return fmt.Sprintf("%s%s.%s", sign, whole.String(), fracStr)
}

// ParseAmount converts a decimal token string ("1.5", "0.25") to base units.
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}

	wholePart, fracPart, _ := strings.Cut(s, ".")
	if wholePart == "" {
		wholePart = "0"
	}
	if len(fracPart) > tokenDecimals {
		return nil, fmt.Errorf("amount %q exceeds %d decimal places", s, tokenDecimals)
	}

	whole, ok := new(big.Int).SetString(wholePart, 10)
	if !ok || whole.Sign() < 0 {
		return nil, fmt.Errorf("malformed amount %q", s)
	}

	result := new(big.Int).Mul(whole, unit)
	if fracPart != "" {
		// right-pad to full precision: "5" -> 5 * 10^17
		padded := fracPart + strings.Repeat("0", tokenDecimals-len(fracPart))
		frac, ok := new(big.Int).SetString(padded, 10)
		if !ok {
			return nil, fmt.Errorf("malformed amount %q", s)
		}
		result.Add(result, frac)
	}
	return result, nil
}
