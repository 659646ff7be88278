package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/gaugesuite/emission-gauge-server/chaincfg"
	"github.com/gaugesuite/emission-gauge-server/constdef"
	"github.com/gaugesuite/emission-gauge-server/dal"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/tokenledger"
	"github.com/gaugesuite/emission-gauge-server/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testEpochLen = 3600
	testStart    = int64(1_000_000) * testEpochLen
)

// testParams keeps the rate flat across every window the tests walk: the
// first reduction sits thirty days past the start of emission.
var testParams = &chaincfg.Params{
	Name:                     "unittest",
	DefaultPort:              "0",
	EpochLength:              testEpochLen,
	InflationDelay:           0,
	InitialRate:              tokens(1),
	RateReductionTime:        30 * 24 * 3600,
	RateReductionCoefficient: tokens(2),
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), utils.FixedPointOne())
}

type testEnv struct {
	db     *gorm.DB
	clock  *epochclock.Clock
	ledger *tokenledger.DBLedger
	ctrl   *ControllerServiceImpl
	gauges *GaugeServiceImpl
	minter *MintServiceImpl

	// now backs the clock's now-func so tests can move wall-clock time.
	now int64
}

func newTestEnv(t *testing.T, startTime int64) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dal.Migrate(db))

	env := &testEnv{db: db, now: startTime}
	env.clock = epochclock.New(testParams, startTime, func() time.Time {
		return time.Unix(env.now, 0)
	})
	env.ledger = tokenledger.NewDBLedger()
	staking := tokenledger.NewStakingLedger(env.ledger, "lptoken")
	emission := tokenledger.NewEmissionLedger(env.clock, env.ledger, "emission", "minter")
	env.ctrl = NewControllerService(env.clock)
	env.gauges = NewGaugeService(env.clock, env.ctrl, staking)
	env.minter = NewMintService(env.gauges, emission, staking, env.ledger)
	return env
}

func (e *testEnv) fund(t *testing.T, token string, addr string, amount *big.Int) {
	require.NoError(t, e.ledger.Credit(context.Background(), e.db, token, addr, amount))
}

func (e *testEnv) balance(t *testing.T, token string, addr string) string {
	b, err := e.ledger.BalanceOf(context.Background(), e.db, token, addr)
	require.NoError(t, err)
	return b.String()
}

func (e *testEnv) seedConfig(t *testing.T, admin string) {
	_, err := e.minter.EnsureConfig(context.Background(), e.db, &do.MinterConfigInfo{
		Admin:           admin,
		EmergencyReturn: "treasury",
		RateCeiling:     utils.FormatAmount(tokens(constdef.DefaultRateCeiling)),
		StartTime:       e.clock.StartTime(),
	})
	require.NoError(t, err)
}
