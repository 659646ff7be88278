package mintmgr

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
	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/service"
	"github.com/gaugesuite/emission-gauge-server/tokenledger"
	"github.com/gaugesuite/emission-gauge-server/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	mgrEpochLen = 3600
	mgrStart    = int64(1_000_000) * mgrEpochLen
)

var mgrTestParams = &chaincfg.Params{
	Name:                     "unittest",
	EpochLength:              mgrEpochLen,
	InflationDelay:           0,
	InitialRate:              utils.FixedPointOne(),
	RateReductionTime:        30 * 24 * 3600,
	RateReductionCoefficient: new(big.Int).Mul(big.NewInt(2), utils.FixedPointOne()),
}

type mgrEnv struct {
	db     *gorm.DB
	ledger *tokenledger.DBLedger
	ctrl   *service.ControllerServiceImpl
	gauges *service.GaugeServiceImpl
	mgr    *MintManager
	now    int64
}

func newMgrEnv(t *testing.T) *mgrEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dal.Migrate(db))

	env := &mgrEnv{db: db, now: mgrStart}
	clock := epochclock.New(mgrTestParams, mgrStart, func() time.Time {
		return time.Unix(env.now, 0)
	})
	env.ledger = tokenledger.NewDBLedger()
	staking := tokenledger.NewStakingLedger(env.ledger, "lptoken")
	emission := tokenledger.NewEmissionLedger(clock, env.ledger, "emission", "minter")
	env.ctrl = service.NewControllerService(clock)
	env.gauges = service.NewGaugeService(clock, env.ctrl, staking)
	env.mgr = NewMintManager(clock, service.NewMintService(env.gauges, emission, staking, env.ledger), db)
	return env
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), utils.FixedPointOne())
}

func TestMintManager_EnsureConfig(t *testing.T) {
	env := newMgrEnv(t)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		cfg, err := env.mgr.EnsureConfig(ctx, &do.MinterConfigInfo{
			Admin:           "admin",
			EmergencyReturn: "treasury",
			RateCeiling:     utils.FormatAmount(tokens(constdef.DefaultRateCeiling)),
			StartTime:       mgrStart,
		})
		require.NoError(t, err)
		require.Equal(t, "admin", cfg.Admin)

		// A second boot with different defaults keeps the stored row.
		cfg, err = env.mgr.EnsureConfig(ctx, &do.MinterConfigInfo{
			Admin:           "other",
			EmergencyReturn: "elsewhere",
		})
		require.NoError(t, err)
		require.Equal(t, "admin", cfg.Admin)
		require.Equal(t, "treasury", cfg.EmergencyReturn)
		require.Equal(t, mgrStart, cfg.StartTime)
	})
}

func TestMintManager_MintMany(t *testing.T) {
	env := newMgrEnv(t)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.mgr.EnsureConfig(ctx, &do.MinterConfigInfo{
			Admin:           "admin",
			EmergencyReturn: "treasury",
			StartTime:       mgrStart,
		})
		require.NoError(t, err)

		_, err = env.ctrl.AddType(ctx, env.db, "stable", tokens(1), mgrStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(3), mgrStart))
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g2", 0, tokens(1), mgrStart))
		require.NoError(t, env.ledger.Credit(ctx, env.db, "lptoken", "alice", tokens(150)))
		require.NoError(t, env.ledger.Credit(ctx, env.db, "emission", "minter", tokens(1_000_000)))

		t1 := mgrStart + mgrEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g2", "alice", tokens(50), t1))

		env.now = t1 + mgrEpochLen
		paid, err := env.mgr.MintMany(ctx, []string{"g1", "g2"}, "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(3600).String(), paid.String())

		minted, err := env.mgr.Minted(ctx, "alice", "g1")
		require.NoError(t, err)
		require.Equal(t, tokens(2700).String(), minted.String())

		events, total, err := env.mgr.MintEvents(ctx, "alice", 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(2), total)
		require.Len(t, events, 2)

		// One unknown gauge fails the whole batch, leaving totals as is.
		_, err = env.mgr.MintMany(ctx, []string{"g1", "nope"}, "alice")
		require.ErrorIs(t, err, errcode.ErrNotAGauge)

		_, total, err = env.mgr.MintEvents(ctx, "alice", 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(2), total)
	})
}
