package dao

import (
	"context"
	"testing"

	"github.com/gaugesuite/emission-gauge-server/constdef"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDAOTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&do.WeightPointInfo{}, &do.MinterConfigInfo{}))
	return db
}

func TestWeightPointInfoDAOImpl_Upsert(t *testing.T) {
	db := newDAOTestDB(t)
	ctx := context.Background()
	d := &WeightPointInfoDAOImpl{}

	t.Run("test_1", func(t *testing.T) {
		err := d.Upsert(ctx, nil, &do.WeightPointInfo{})
		require.ErrorIs(t, err, errcode.ErrNilGormDB)

		require.NoError(t, d.Upsert(ctx, db, &do.WeightPointInfo{
			Kind:   constdef.WeightKindGauge,
			Ref:    "g1",
			Epoch:  100,
			Weight: "5",
		}))

		info, err := d.Get(ctx, db, constdef.WeightKindGauge, "g1", 100)
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Equal(t, "5", info.Weight)

		// Writing the same key again replaces the weight in place.
		require.NoError(t, d.Upsert(ctx, db, &do.WeightPointInfo{
			Kind:   constdef.WeightKindGauge,
			Ref:    "g1",
			Epoch:  100,
			Weight: "7",
		}))

		info, err = d.Get(ctx, db, constdef.WeightKindGauge, "g1", 100)
		require.NoError(t, err)
		require.Equal(t, "7", info.Weight)
	})
}

func TestWeightPointInfoDAOImpl_GetLatestAtOrBefore(t *testing.T) {
	db := newDAOTestDB(t)
	ctx := context.Background()
	d := &WeightPointInfoDAOImpl{}

	t.Run("test_1", func(t *testing.T) {
		for epoch, weight := range map[int64]string{100: "5", 300: "9"} {
			require.NoError(t, d.Upsert(ctx, db, &do.WeightPointInfo{
				Kind:   constdef.WeightKindGauge,
				Ref:    "g1",
				Epoch:  epoch,
				Weight: weight,
			}))
		}

		info, err := d.GetLatestAtOrBefore(ctx, db, constdef.WeightKindGauge, "g1", 99)
		require.NoError(t, err)
		require.Nil(t, info)

		info, err = d.GetLatestAtOrBefore(ctx, db, constdef.WeightKindGauge, "g1", 200)
		require.NoError(t, err)
		require.NotNil(t, info)
		require.Equal(t, "5", info.Weight)

		info, err = d.GetLatestAtOrBefore(ctx, db, constdef.WeightKindGauge, "g1", 900)
		require.NoError(t, err)
		require.Equal(t, "9", info.Weight)

		// A different series never bleeds through.
		info, err = d.GetLatestAtOrBefore(ctx, db, constdef.WeightKindTotal, "", 900)
		require.NoError(t, err)
		require.Nil(t, info)
	})
}

func TestMinterConfigInfoDAOImpl(t *testing.T) {
	db := newDAOTestDB(t)
	ctx := context.Background()
	d := &MinterConfigInfoDAOImpl{}

	t.Run("test_1", func(t *testing.T) {
		cfg, err := d.Get(ctx, db)
		require.NoError(t, err)
		require.Nil(t, cfg)

		require.NoError(t, d.Create(ctx, db, &do.MinterConfigInfo{
			Admin:           "admin",
			EmergencyReturn: "treasury",
		}))

		cfg, err = d.Get(ctx, db, true)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		require.Equal(t, "admin", cfg.Admin)

		cfg.FutureAdmin = "bob"
		require.NoError(t, d.Update(ctx, db, cfg))

		cfg, err = d.Get(ctx, db)
		require.NoError(t, err)
		require.Equal(t, "bob", cfg.FutureAdmin)
	})
}
