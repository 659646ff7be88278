package utils

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("0")
	require.NoError(t, err)
	require.Equal(t, "0", v.String())

	v, err = ParseAmount("123456789012345678901234567890")
	require.NoError(t, err)
	require.Equal(t, "123456789012345678901234567890", v.String())

	for _, bad := range []string{"", "-1", "1.5", "1e18", " 1", "0x10"} {
		_, err := ParseAmount(bad)
		require.Error(t, err, "input %q", bad)
	}

	_, err = ParseAmount(strings.Repeat("9", 66))
	require.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "0", FormatAmount(nil))
	require.Equal(t, "42", FormatAmount(big.NewInt(42)))
}

func TestMulDiv(t *testing.T) {
	// Truncates toward zero, like integer division on chain.
	res := MulDiv(big.NewInt(10), big.NewInt(10), big.NewInt(3))
	require.Equal(t, "33", res.String())

	one := FixedPointOne()
	res = MulDiv(one, one, one)
	require.Equal(t, one.String(), res.String())
}
