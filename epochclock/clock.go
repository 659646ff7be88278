package epochclock

import (
	"math/big"
	"time"

	"github.com/gaugesuite/emission-gauge-server/chaincfg"
	"github.com/gaugesuite/emission-gauge-server/constdef"
)

// Clock maps wall-clock time to discrete epochs and evaluates the global
// emission rate schedule. It holds no mutable state beyond the injected
// now-func, so all methods are pure functions of time.
type Clock struct {
	params    *chaincfg.Params
	startTime int64
	nowFn     func() time.Time
}

// New returns a clock for the given network parameters. startTime is the
// unix time emission begins; before it the rate is zero. A nil nowFn
// defaults to time.Now (tests inject a fake).
func New(params *chaincfg.Params, startTime int64, nowFn func() time.Time) *Clock {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Clock{
		params:    params,
		startTime: startTime,
		nowFn:     nowFn,
	}
}

func (c *Clock) Now() int64 {
	return c.nowFn().Unix()
}

// StartTime returns the unix time emission begins.
func (c *Clock) StartTime() int64 {
	return c.startTime
}

// EpochLength returns the epoch length in seconds.
func (c *Clock) EpochLength() int64 {
	return c.params.EpochLength
}

// EpochOf returns the epoch index containing t.
func (c *Clock) EpochOf(t int64) int64 {
	return t / c.params.EpochLength
}

// EpochStart returns the unix time of the epoch boundary at or before t.
func (c *Clock) EpochStart(t int64) int64 {
	return t / c.params.EpochLength * c.params.EpochLength
}

// NextEpoch returns the unix time of the first epoch boundary strictly
// after t.
func (c *Clock) NextEpoch(t int64) int64 {
	return c.EpochStart(t) + c.params.EpochLength
}

// RateAt returns the global emission rate (token units per second,
// 1e18-scaled) effective at time t. Zero before the start of emission.
func (c *Clock) RateAt(t int64) *big.Int {
	if t < c.startTime {
		return new(big.Int)
	}
	reductions := (t - c.startTime) / c.params.RateReductionTime
	if reductions > constdef.MaxCheckpointEpochs {
		// Far beyond any plausible schedule; the rate has decayed to dust.
		reductions = constdef.MaxCheckpointEpochs
	}
	rate := new(big.Int).Set(c.params.InitialRate)
	for i := int64(0); i < reductions; i++ {
		rate.Mul(rate, fixedPointOne)
		rate.Div(rate, c.params.RateReductionCoefficient)
	}
	return rate
}

// NextRateChange returns the unix time of the first point strictly after t
// at which RateAt changes value: the start of emission if t is before it,
// otherwise the next rate reduction boundary.
func (c *Clock) NextRateChange(t int64) int64 {
	if t < c.startTime {
		return c.startTime
	}
	reductions := (t-c.startTime)/c.params.RateReductionTime + 1
	return c.startTime + reductions*c.params.RateReductionTime
}

var fixedPointOne = func() *big.Int {
	one := big.NewInt(10)
	return one.Exp(one, big.NewInt(constdef.FixedPointDecimals), nil)
}()
