package service

import (
	"context"
	"math/big"
	"testing"

	"github.com/gaugesuite/emission-gauge-server/errcode"

	"github.com/stretchr/testify/require"
)

func TestControllerServiceImpl_AddType(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		typeID, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.Equal(t, int64(0), typeID)

		// Mid-epoch the new weight is not in force yet.
		w, err := env.ctrl.GetTypeWeight(ctx, env.db, typeID, testStart)
		require.NoError(t, err)
		require.Equal(t, "0", w.String())

		w, err = env.ctrl.GetTypeWeight(ctx, env.db, typeID, testStart+testEpochLen)
		require.NoError(t, err)
		require.Equal(t, tokens(1).String(), w.String())

		typeID, err = env.ctrl.AddType(ctx, env.db, "volatile", tokens(2), testStart)
		require.NoError(t, err)
		require.Equal(t, int64(1), typeID)

		_, err = env.ctrl.GetTypeWeight(ctx, env.db, 99, testStart)
		require.ErrorIs(t, err, errcode.ErrUnknownType)
	})
}

func TestControllerServiceImpl_AddGauge(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		err := env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart)
		require.ErrorIs(t, err, errcode.ErrUnknownType)

		_, err = env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))

		err = env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart)
		require.ErrorIs(t, err, errcode.ErrAlreadyExists)

		w, err := env.ctrl.GetGaugeWeight(ctx, env.db, "g1", testStart)
		require.NoError(t, err)
		require.Equal(t, "0", w.String())

		e1 := testStart + testEpochLen
		w, err = env.ctrl.GetGaugeWeight(ctx, env.db, "g1", e1)
		require.NoError(t, err)
		require.Equal(t, tokens(1).String(), w.String())

		// The only gauge of the only type carries the full weight.
		rel, err := env.ctrl.GaugeRelativeWeight(ctx, env.db, "g1", e1)
		require.NoError(t, err)
		require.Equal(t, tokens(1).String(), rel.String())

		_, err = env.ctrl.GaugeRelativeWeight(ctx, env.db, "nope", e1)
		require.ErrorIs(t, err, errcode.ErrNotAGauge)
	})
}

func TestControllerServiceImpl_RelativeWeights(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		half := new(big.Int).Div(tokens(1), big.NewInt(2))

		stable, err := env.ctrl.AddType(ctx, env.db, "stable", half, testStart)
		require.NoError(t, err)
		volatile, err := env.ctrl.AddType(ctx, env.db, "volatile", tokens(10), testStart)
		require.NoError(t, err)

		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", stable, tokens(2), testStart))
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g2", volatile, tokens(1), testStart))

		// total = 2e18*5e17 + 1e18*1e19 = 1.1e37
		e1 := testStart + testEpochLen
		total, err := env.ctrl.GetTotalWeight(ctx, env.db, e1)
		require.NoError(t, err)
		require.Equal(t, "11000000000000000000000000000000000000", total.String())

		rel, err := env.ctrl.GaugeRelativeWeight(ctx, env.db, "g1", e1)
		require.NoError(t, err)
		require.Equal(t, "90909090909090909", rel.String())

		rel, err = env.ctrl.GaugeRelativeWeight(ctx, env.db, "g2", e1)
		require.NoError(t, err)
		require.Equal(t, "909090909090909090", rel.String())
	})
}

func TestControllerServiceImpl_ChangeGaugeWeight(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		err := env.ctrl.ChangeGaugeWeight(ctx, env.db, "g1", tokens(3), testStart)
		require.ErrorIs(t, err, errcode.ErrNotAGauge)

		_, err = env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))

		e1 := testStart + testEpochLen
		e2 := e1 + testEpochLen

		// A change submitted inside epoch e1 lands at e2; e1 keeps the
		// old point.
		require.NoError(t, env.ctrl.ChangeGaugeWeight(ctx, env.db, "g1", tokens(3), e1+10))

		w, err := env.ctrl.GetGaugeWeight(ctx, env.db, "g1", e1)
		require.NoError(t, err)
		require.Equal(t, tokens(1).String(), w.String())

		w, err = env.ctrl.GetGaugeWeight(ctx, env.db, "g1", e2)
		require.NoError(t, err)
		require.Equal(t, tokens(3).String(), w.String())

		require.NoError(t, env.ctrl.ChangeTypeWeight(ctx, env.db, 0, tokens(2), e1+10))

		total, err := env.ctrl.GetTotalWeight(ctx, env.db, e2)
		require.NoError(t, err)
		require.Equal(t, "6000000000000000000000000000000000000", total.String())

		// Still the only gauge, so its share stays at one.
		rel, err := env.ctrl.GaugeRelativeWeight(ctx, env.db, "g1", e2)
		require.NoError(t, err)
		require.Equal(t, tokens(1).String(), rel.String())
	})
}

func TestControllerServiceImpl_CheckpointGauge(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))

		// Filling five epochs ahead carries the last written points
		// forward unchanged.
		e5 := testStart + 5*testEpochLen
		rel, err := env.ctrl.CheckpointGauge(ctx, env.db, "g1", e5+10)
		require.NoError(t, err)
		require.Equal(t, tokens(1).String(), rel.String())

		total, err := env.ctrl.GetTotalWeight(ctx, env.db, e5)
		require.NoError(t, err)
		require.Equal(t, "1000000000000000000000000000000000000", total.String())
	})
}
