package gaugemgr

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/gaugesuite/emission-gauge-server/chaincfg"
	"github.com/gaugesuite/emission-gauge-server/dal"
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
	mgr    *GaugeManager
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
	env.ctrl = service.NewControllerService(clock)
	env.mgr = NewGaugeManager(clock, service.NewGaugeService(clock, env.ctrl, staking), db)
	return env
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), utils.FixedPointOne())
}

func TestGaugeManager_DepositWithdraw(t *testing.T) {
	env := newMgrEnv(t)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), mgrStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), mgrStart))
		require.NoError(t, env.ledger.Credit(ctx, env.db, "lptoken", "alice", tokens(100)))

		require.NoError(t, env.mgr.Deposit(ctx, "g1", "alice", tokens(80)))

		total, err := env.mgr.TotalStaked(ctx, "g1")
		require.NoError(t, err)
		require.Equal(t, tokens(80).String(), total.String())

		pos, err := env.mgr.GetPosition(ctx, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(80).String(), pos.Balance)

		err = env.mgr.Withdraw(ctx, "g1", "alice", tokens(81))
		require.ErrorIs(t, err, errcode.ErrInsufficientBalance)

		require.NoError(t, env.mgr.Withdraw(ctx, "g1", "alice", tokens(80)))
		total, err = env.mgr.TotalStaked(ctx, "g1")
		require.NoError(t, err)
		require.Equal(t, "0", total.String())

		_, err = env.mgr.TotalStaked(ctx, "nope")
		require.ErrorIs(t, err, errcode.ErrNotAGauge)
	})
}

func TestGaugeManager_CheckpointAccrual(t *testing.T) {
	env := newMgrEnv(t)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), mgrStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), mgrStart))
		require.NoError(t, env.ledger.Credit(ctx, env.db, "lptoken", "alice", tokens(100)))

		env.now = mgrStart + mgrEpochLen
		require.NoError(t, env.mgr.Deposit(ctx, "g1", "alice", tokens(100)))

		env.now += mgrEpochLen
		require.NoError(t, env.mgr.CheckpointGauge(ctx, "g1"))

		// The gauge integral moved but the staker has not settled yet.
		fraction, err := env.mgr.IntegrateFraction(ctx, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, "0", fraction.String())

		// A balance-touching operation settles the entitlement.
		require.NoError(t, env.mgr.Withdraw(ctx, "g1", "alice", tokens(100)))

		fraction, err = env.mgr.IntegrateFraction(ctx, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(3600).String(), fraction.String())
	})
}
