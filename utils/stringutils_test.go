package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckGaugeIDValidity(t *testing.T) {
	for _, ok := range []string{"g1", "pool.usdc-weth", "Gauge_7", "a:b@c"} {
		require.NoError(t, CheckGaugeIDValidity(ok), "id %q", ok)
	}
	for _, bad := range []string{"", "  ", "has space", "semi;colon", strings.Repeat("a", 101)} {
		require.Error(t, CheckGaugeIDValidity(bad), "id %q", bad)
	}
}

func TestCheckStakerIDValidity(t *testing.T) {
	require.NoError(t, CheckStakerIDValidity("alice"))
	require.NoError(t, CheckStakerIDValidity("0x00a329c0648769a73afac7f9381e08fb43dbea72"))
	require.Error(t, CheckStakerIDValidity(""))
	require.Error(t, CheckStakerIDValidity("bad!char"))
}

func TestCheckTypeNameValidity(t *testing.T) {
	require.NoError(t, CheckTypeNameValidity("stable pools"))
	require.Error(t, CheckTypeNameValidity("   "))
	require.Error(t, CheckTypeNameValidity(strings.Repeat("x", 65)))
}
