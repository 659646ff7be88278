package service

import (
	"context"
	"testing"

	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/tokenledger"

	"github.com/stretchr/testify/require"
)

func TestGaugeServiceImpl_StakeValidation(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		err := env.gauges.Stake(ctx, env.db, "nope", "alice", tokens(1), testStart)
		require.ErrorIs(t, err, errcode.ErrNotAGauge)

		_, err = env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))

		err = env.gauges.Stake(ctx, env.db, "g1", "not a staker", tokens(1), testStart)
		require.Error(t, err)

		err = env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(0), testStart)
		require.ErrorIs(t, err, errcode.ErrInvalidAmount)

		// Nothing funded yet, so the custody transfer is refused.
		err = env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(1), testStart)
		require.ErrorIs(t, err, errcode.ErrTransferFailed)
	})
}

func TestGaugeServiceImpl_StakeUnstake(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))

		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(60), testStart))
		require.Equal(t, tokens(40).String(), env.balance(t, "lptoken", "alice"))
		require.Equal(t, tokens(60).String(), env.balance(t, "lptoken", tokenledger.EscrowAddr("g1")))

		total, err := env.gauges.TotalStaked(ctx, env.db, "g1")
		require.NoError(t, err)
		require.Equal(t, tokens(60).String(), total.String())

		pos, err := env.gauges.GetPosition(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(60).String(), pos.Balance)

		err = env.gauges.Unstake(ctx, env.db, "g1", "alice", tokens(70), testStart)
		require.ErrorIs(t, err, errcode.ErrInsufficientBalance)

		require.NoError(t, env.gauges.Unstake(ctx, env.db, "g1", "alice", tokens(60), testStart))
		require.Equal(t, tokens(100).String(), env.balance(t, "lptoken", "alice"))
		require.Equal(t, "0", env.balance(t, "lptoken", tokenledger.EscrowAddr("g1")))

		total, err = env.gauges.TotalStaked(ctx, env.db, "g1")
		require.NoError(t, err)
		require.Equal(t, "0", total.String())
	})
}

// A sole staker in a gauge carrying the full relative weight earns exactly
// rate * elapsed.
func TestGaugeServiceImpl_Accrual(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))

		fraction, err := env.gauges.IntegrateFraction(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, "0", fraction.String())

		t2 := t1 + 2*testEpochLen
		_, err = env.gauges.CheckpointStaker(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)

		fraction, err = env.gauges.IntegrateFraction(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(7200).String(), fraction.String())
	})
}

func TestGaugeServiceImpl_UnstakeFreezesAccrual(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))

		t2 := t1 + testEpochLen
		require.NoError(t, env.gauges.Unstake(ctx, env.db, "g1", "alice", tokens(100), t2))

		fraction, err := env.gauges.IntegrateFraction(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(3600).String(), fraction.String())

		// With the balance gone the entitlement stops growing.
		t3 := t2 + testEpochLen
		_, err = env.gauges.CheckpointStaker(ctx, env.db, "g1", "alice", t3)
		require.NoError(t, err)

		fraction, err = env.gauges.IntegrateFraction(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(3600).String(), fraction.String())
	})
}

func TestGaugeServiceImpl_PreStartNoAccrual(t *testing.T) {
	emissionStart := testStart + 10*testEpochLen
	env := newTestEnv(t, emissionStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))

		// The rate is zero until emission starts.
		_, err = env.gauges.CheckpointStaker(ctx, env.db, "g1", "alice", testStart+3*testEpochLen)
		require.NoError(t, err)

		fraction, err := env.gauges.IntegrateFraction(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, "0", fraction.String())

		_, err = env.gauges.CheckpointStaker(ctx, env.db, "g1", "alice", emissionStart+testEpochLen)
		require.NoError(t, err)

		fraction, err = env.gauges.IntegrateFraction(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, tokens(3600).String(), fraction.String())
	})
}
