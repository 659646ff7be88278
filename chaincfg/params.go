package chaincfg

import "math/big"

// Params is used to group emission schedule parameters for various networks
// such as the main network and test networks. All rates and coefficients are
// fixed-point integers scaled by 1e18.
type Params struct {
	Name        string
	DefaultPort string

	// EpochLength is the number of seconds in one scheduling epoch. Weights
	// and rates are piecewise-constant between epoch boundaries.
	EpochLength int64

	// InflationDelay is the number of seconds between server genesis and the
	// start of emission when no explicit start time is configured.
	InflationDelay int64

	// InitialRate is the global emission rate (token units per second,
	// 1e18-scaled) effective at the start of emission.
	InitialRate *big.Int

	// RateReductionTime is the number of seconds between reductions of the
	// global emission rate.
	RateReductionTime int64

	// RateReductionCoefficient divides the rate at every reduction boundary
	// (1e18-scaled, so 1189207115002721024 is a reduction by 2^(1/4)).
	RateReductionCoefficient *big.Int
}

func mustBig(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("chaincfg: invalid big integer literal " + s)
	}
	return v
}

const (
	secondsPerWeek = 7 * 24 * 3600
	secondsPerYear = 365 * 24 * 3600
)

// MainNetParams contains parameters for the production deployment.
var MainNetParams = Params{
	Name:                     "mainnet",
	DefaultPort:              "28777",
	EpochLength:              secondsPerWeek,
	InflationDelay:           24 * 3600,
	InitialRate:              mustBig("8714335457889396736"),
	RateReductionTime:        secondsPerYear,
	RateReductionCoefficient: mustBig("1189207115002721024"),
}

// TestNetParams contains parameters for the test deployment.
var TestNetParams = Params{
	Name:                     "testnet",
	DefaultPort:              "38777",
	EpochLength:              secondsPerWeek,
	InflationDelay:           3600,
	InitialRate:              mustBig("8714335457889396736"),
	RateReductionTime:        secondsPerYear,
	RateReductionCoefficient: mustBig("1189207115002721024"),
}

// SimNetParams contains parameters for simulation runs: short epochs and an
// aggressive reduction schedule so multi-epoch behavior shows up quickly.
var SimNetParams = Params{
	Name:                     "simnet",
	DefaultPort:              "48777",
	EpochLength:              3600,
	InflationDelay:           0,
	InitialRate:              mustBig("1000000000000000000"),
	RateReductionTime:        24 * 3600,
	RateReductionCoefficient: mustBig("2000000000000000000"),
}

// ActiveNetParams points to the parameter set the server runs with.
var ActiveNetParams = &MainNetParams

// ServerVersion is set by the build.
var ServerVersion = "unknown"
