package epochclock

import (
	"math/big"
	"testing"
	"time"

	"github.com/gaugesuite/emission-gauge-server/chaincfg"

	"github.com/stretchr/testify/require"
)

var clockTestParams = &chaincfg.Params{
	Name:                     "unittest",
	EpochLength:              100,
	InflationDelay:           0,
	InitialRate:              big.NewInt(8_000_000_000_000_000_000),
	RateReductionTime:        1000,
	RateReductionCoefficient: big.NewInt(2_000_000_000_000_000_000),
}

func TestClock_Epochs(t *testing.T) {
	c := New(clockTestParams, 0, nil)

	require.Equal(t, int64(0), c.EpochOf(99))
	require.Equal(t, int64(1), c.EpochOf(100))
	require.Equal(t, int64(1), c.EpochOf(199))

	require.Equal(t, int64(100), c.EpochStart(100))
	require.Equal(t, int64(100), c.EpochStart(177))

	// NextEpoch is strictly after t, even on a boundary.
	require.Equal(t, int64(200), c.NextEpoch(100))
	require.Equal(t, int64(200), c.NextEpoch(199))

	require.Equal(t, int64(100), c.EpochLength())
}

func TestClock_RateSchedule(t *testing.T) {
	c := New(clockTestParams, 5000, nil)

	require.Equal(t, "0", c.RateAt(4999).String())
	require.Equal(t, "8000000000000000000", c.RateAt(5000).String())
	require.Equal(t, "8000000000000000000", c.RateAt(5999).String())

	// Each reduction divides by the coefficient, here a clean halving.
	require.Equal(t, "4000000000000000000", c.RateAt(6000).String())
	require.Equal(t, "2000000000000000000", c.RateAt(7000).String())
	require.Equal(t, "1000000000000000000", c.RateAt(8000).String())
}

func TestClock_NextRateChange(t *testing.T) {
	c := New(clockTestParams, 5000, nil)

	require.Equal(t, int64(5000), c.NextRateChange(0))
	require.Equal(t, int64(5000), c.NextRateChange(4999))
	require.Equal(t, int64(6000), c.NextRateChange(5000))
	require.Equal(t, int64(7000), c.NextRateChange(6500))
}

func TestClock_Now(t *testing.T) {
	at := time.Unix(123456, 0)
	c := New(clockTestParams, 0, func() time.Time { return at })

	require.Equal(t, int64(123456), c.Now())
	require.Equal(t, int64(0), c.StartTime())
}
