package utils

import (
	"fmt"
	"math/big"

	"github.com/gaugesuite/emission-gauge-server/constdef"
)

var fixedPointOne = func() *big.Int {
	ten := big.NewInt(10)
	return ten.Exp(ten, big.NewInt(constdef.FixedPointDecimals), nil)
}()

// FixedPointOne returns 10^18 as a fresh big integer.
func FixedPointOne() *big.Int {
	return new(big.Int).Set(fixedPointOne)
}

// ParseAmount parses a non-negative fixed-point amount from its decimal
// string form. Only plain digit strings are accepted; the empty string and
// anything longer than the database column are rejected.
func ParseAmount(s string) (*big.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if len(s) > constdef.MaxDecimalDigits {
		return nil, fmt.Errorf("amount %v... exceeds %v digits", s[:16], constdef.MaxDecimalDigits)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil, fmt.Errorf("invalid amount %q: not a non-negative decimal integer", s)
		}
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// FormatAmount renders a fixed-point amount as a decimal string. A nil value
// renders as "0" so uninitialized database columns read back cleanly.
func FormatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// MulDiv returns a*b/c truncated toward zero. c must be nonzero.
func MulDiv(a, b, c *big.Int) *big.Int {
	res := new(big.Int).Mul(a, b)
	return res.Div(res, c)
}
