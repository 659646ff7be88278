package weightmgr

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/gaugesuite/emission-gauge-server/chaincfg"
	"github.com/gaugesuite/emission-gauge-server/dal"
	"github.com/gaugesuite/emission-gauge-server/dal/dao"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/service"
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
	db  *gorm.DB
	mgr *WeightManager
	now int64
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
	env.mgr = NewWeightManager(clock, service.NewControllerService(clock), db, 16)
	return env
}

func (e *mgrEnv) seedConfig(t *testing.T, admin string) {
	require.NoError(t, dao.GetMinterConfigInfoDAOImpl().Create(context.Background(), e.db,
		&do.MinterConfigInfo{Admin: admin, EmergencyReturn: "treasury"}))
}

func TestWeightManager_AdminGate(t *testing.T) {
	env := newMgrEnv(t)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		// Without a config row there is no admin, so nobody passes.
		_, err := env.mgr.AddType(ctx, "admin", "stable", utils.FixedPointOne())
		require.ErrorIs(t, err, errcode.ErrAdminOnly)

		env.seedConfig(t, "admin")

		_, err = env.mgr.AddType(ctx, "mallory", "stable", utils.FixedPointOne())
		require.ErrorIs(t, err, errcode.ErrAdminOnly)

		err = env.mgr.AddGauge(ctx, "mallory", "g1", 0, utils.FixedPointOne())
		require.ErrorIs(t, err, errcode.ErrAdminOnly)

		typeID, err := env.mgr.AddType(ctx, "admin", "stable", utils.FixedPointOne())
		require.NoError(t, err)
		require.NoError(t, env.mgr.AddGauge(ctx, "admin", "g1", typeID, utils.FixedPointOne()))

		err = env.mgr.ChangeGaugeWeight(ctx, "mallory", "g1", utils.FixedPointOne())
		require.ErrorIs(t, err, errcode.ErrAdminOnly)
		err = env.mgr.ChangeTypeWeight(ctx, "mallory", typeID, utils.FixedPointOne())
		require.ErrorIs(t, err, errcode.ErrAdminOnly)
	})
}

func TestWeightManager_Weights(t *testing.T) {
	env := newMgrEnv(t)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")

		typeID, err := env.mgr.AddType(ctx, "admin", "stable", utils.FixedPointOne())
		require.NoError(t, err)
		require.NoError(t, env.mgr.AddGauge(ctx, "admin", "g1", typeID, utils.FixedPointOne()))

		types, err := env.mgr.GetTypes(ctx)
		require.NoError(t, err)
		require.Len(t, types, 1)
		gauges, err := env.mgr.GetGauges(ctx)
		require.NoError(t, err)
		require.Len(t, gauges, 1)

		// Move into the epoch where the new points are in force.
		e1 := mgrStart + mgrEpochLen
		env.now = e1 + 10

		w, err := env.mgr.GetGaugeWeight(ctx, "g1")
		require.NoError(t, err)
		require.Equal(t, utils.FixedPointOne().String(), w.String())

		w, err = env.mgr.GetTypeWeight(ctx, typeID)
		require.NoError(t, err)
		require.Equal(t, utils.FixedPointOne().String(), w.String())

		total, err := env.mgr.GetTotalWeight(ctx)
		require.NoError(t, err)
		require.Equal(t, "1000000000000000000000000000000000000", total.String())

		// The second read of a begun epoch is served from the cache and
		// must agree with the first.
		rel, err := env.mgr.GaugeRelativeWeight(ctx, "g1", e1)
		require.NoError(t, err)
		require.Equal(t, utils.FixedPointOne().String(), rel.String())

		cached, err := env.mgr.GaugeRelativeWeight(ctx, "g1", e1)
		require.NoError(t, err)
		require.Equal(t, rel.String(), cached.String())
	})
}
