package service

import (
	"context"
	"math/big"
	"testing"

	"github.com/gaugesuite/emission-gauge-server/errcode"

	"github.com/stretchr/testify/require"
)

func TestMintServiceImpl_Mint(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))
		env.fund(t, "emission", "minter", tokens(1_000_000))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))

		t2 := t1 + 2*testEpochLen
		owed, err := env.minter.Mint(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)
		require.Equal(t, tokens(7200).String(), owed.String())
		require.Equal(t, tokens(7200).String(), env.balance(t, "emission", "alice"))
		require.Equal(t, tokens(1_000_000-7200).String(), env.balance(t, "emission", "minter"))

		minted, err := env.minter.Minted(ctx, env.db, "alice", "g1")
		require.NoError(t, err)
		require.Equal(t, tokens(7200).String(), minted.String())

		events, total, err := env.minter.MintEvents(ctx, env.db, "alice", 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		require.Len(t, events, 1)
		require.Equal(t, tokens(7200).String(), events[0].Amount)
		require.Equal(t, tokens(7200).String(), events[0].MintedTotal)
		require.NotEmpty(t, events[0].EventHash)

		// Claiming again at the same instant pays nothing and records
		// nothing.
		owed, err = env.minter.Mint(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)
		require.Equal(t, "0", owed.String())

		_, total, err = env.minter.MintEvents(ctx, env.db, "alice", 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
	})
}

func TestMintServiceImpl_MintUnknownGauge(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		_, err := env.minter.Mint(ctx, env.db, "nope", "alice", testStart)
		require.ErrorIs(t, err, errcode.ErrNotAGauge)
	})
}

// Two gauges splitting the weight 3:1 pay out exactly the emission of the
// window between them.
func TestMintServiceImpl_Conservation(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(3), testStart))
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g2", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))
		env.fund(t, "lptoken", "bob", tokens(50))
		env.fund(t, "emission", "minter", tokens(1_000_000))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g2", "bob", tokens(50), t1))

		t2 := t1 + testEpochLen
		owedAlice, err := env.minter.Mint(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)
		owedBob, err := env.minter.Mint(ctx, env.db, "g2", "bob", t2)
		require.NoError(t, err)

		require.Equal(t, tokens(2700).String(), owedAlice.String())
		require.Equal(t, tokens(900).String(), owedBob.String())

		window := new(big.Int).Mul(testParams.InitialRate, big.NewInt(testEpochLen))
		require.Equal(t, window.String(), new(big.Int).Add(owedAlice, owedBob).String())
	})
}

// Staking into one gauge and then into all three. With weights 1:1:2 the
// three claims of the shared epoch sum to exactly one epoch of emission.
func TestMintServiceImpl_ThreeGaugeConservation(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g2", 0, tokens(1), testStart))
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g3", 0, tokens(2), testStart))
		env.fund(t, "lptoken", "alice", tokens(300))
		env.fund(t, "emission", "minter", tokens(1_000_000))

		// One epoch staked into g1 alone pays its quarter share.
		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))

		t2 := t1 + testEpochLen
		owed, err := env.minter.Mint(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)
		require.Equal(t, tokens(900).String(), owed.String())

		require.NoError(t, env.gauges.Stake(ctx, env.db, "g2", "alice", tokens(100), t2))
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g3", "alice", tokens(100), t2))

		t3 := t2 + testEpochLen
		sum := new(big.Int)
		for gaugeID, want := range map[string]*big.Int{
			"g1": tokens(900), "g2": tokens(900), "g3": tokens(1800),
		} {
			owed, err := env.minter.Mint(ctx, env.db, gaugeID, "alice", t3)
			require.NoError(t, err)
			require.Equal(t, want.String(), owed.String())
			sum.Add(sum, owed)
		}
		window := new(big.Int).Mul(testParams.InitialRate, big.NewInt(testEpochLen))
		require.Equal(t, window.String(), sum.String())

		// The paid total always matches the accrued entitlement.
		minted, err := env.minter.Minted(ctx, env.db, "alice", "g1")
		require.NoError(t, err)
		fraction, err := env.gauges.IntegrateFraction(ctx, env.db, "g1", "alice")
		require.NoError(t, err)
		require.Equal(t, fraction.String(), minted.String())
	})
}

// Two stakers in one gauge split its emission pro rata to their balances.
func TestMintServiceImpl_SharedGaugeSplit(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))
		env.fund(t, "lptoken", "bob", tokens(50))
		env.fund(t, "emission", "minter", tokens(1_000_000))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "bob", tokens(50), t1))

		t2 := t1 + testEpochLen
		owedAlice, err := env.minter.Mint(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)
		owedBob, err := env.minter.Mint(ctx, env.db, "g1", "bob", t2)
		require.NoError(t, err)

		require.Equal(t, tokens(2400).String(), owedAlice.String())
		require.Equal(t, tokens(1200).String(), owedBob.String())

		window := new(big.Int).Mul(testParams.InitialRate, big.NewInt(testEpochLen))
		require.Equal(t, window.String(), new(big.Int).Add(owedAlice, owedBob).String())
	})
}

// Claiming before emission begins pays nothing and records nothing.
func TestMintServiceImpl_PreStartMint(t *testing.T) {
	emissionStart := testStart + 10*testEpochLen
	env := newTestEnv(t, emissionStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))
		env.fund(t, "emission", "minter", tokens(1_000_000))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))

		owed, err := env.minter.Mint(ctx, env.db, "g1", "alice", testStart+3*testEpochLen)
		require.NoError(t, err)
		require.Equal(t, "0", owed.String())

		_, total, err := env.minter.MintEvents(ctx, env.db, "alice", 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(0), total)

		owed, err = env.minter.Mint(ctx, env.db, "g1", "alice", emissionStart+testEpochLen)
		require.NoError(t, err)
		require.Equal(t, tokens(3600).String(), owed.String())
		require.Equal(t, tokens(3600).String(), env.balance(t, "emission", "alice"))
	})
}

// Three gauges over two types with lopsided weights. The sole staker of the
// heaviest gauge earns its exact relative share of two epochs of emission.
func TestMintServiceImpl_MultiGaugeShares(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")

		half := new(big.Int).Div(tokens(1), big.NewInt(2))
		_, err := env.ctrl.AddType(ctx, env.db, "stable", half, testStart)
		require.NoError(t, err)
		_, err = env.ctrl.AddType(ctx, env.db, "volatile", tokens(10), testStart)
		require.NoError(t, err)

		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(10), testStart))
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g2", 0, tokens(1), testStart))
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g3", 1, half, testStart))

		env.fund(t, "lptoken", "alice", tokens(1))
		env.fund(t, "emission", "minter", tokens(1_000_000))

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(1), t1))

		// total = 1.1e19*5e17 + 5e17*1e19 = 1.05e37, so g1 gets 10/21
		// of the emission, floored at 18 decimals per epoch slice.
		t2 := t1 + 2*testEpochLen
		rel, err := env.ctrl.GaugeRelativeWeight(ctx, env.db, "g1", t2)
		require.NoError(t, err)
		require.Equal(t, "476190476190476190", rel.String())

		owed, err := env.minter.Mint(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)
		require.Equal(t, "3428571428571428568000", owed.String())
		require.Equal(t, owed.String(), env.balance(t, "emission", "alice"))

		minted, err := env.minter.Minted(ctx, env.db, "alice", "g1")
		require.NoError(t, err)
		require.Equal(t, owed.String(), minted.String())
	})
}

func TestMintServiceImpl_CommitNewRate(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")
		_, err := env.ctrl.AddType(ctx, env.db, "stable", tokens(1), testStart)
		require.NoError(t, err)
		require.NoError(t, env.ctrl.AddGauge(ctx, env.db, "g1", 0, tokens(1), testStart))
		env.fund(t, "lptoken", "alice", tokens(100))
		env.fund(t, "emission", "minter", tokens(1_000_000))

		err = env.minter.CommitNewRate(ctx, env.db, "mallory", tokens(2), testStart)
		require.ErrorIs(t, err, errcode.ErrAdminOnly)

		err = env.minter.CommitNewRate(ctx, env.db, "admin", nil, testStart)
		require.ErrorIs(t, err, errcode.ErrInvalidAmount)

		// A zero rate would silently fall back to the schedule, so it is
		// refused outright.
		err = env.minter.CommitNewRate(ctx, env.db, "admin", new(big.Int), testStart)
		require.ErrorIs(t, err, errcode.ErrInvalidAmount)

		err = env.minter.CommitNewRate(ctx, env.db, "admin", tokens(10_000_001), testStart)
		require.ErrorIs(t, err, errcode.ErrRateTooHigh)

		t1 := testStart + testEpochLen
		require.NoError(t, env.gauges.Stake(ctx, env.db, "g1", "alice", tokens(100), t1))

		require.NoError(t, env.minter.CommitNewRate(ctx, env.db, "admin", tokens(2), t1))

		cfg, err := env.minter.GetConfig(ctx, env.db)
		require.NoError(t, err)
		require.Equal(t, tokens(2).String(), cfg.Rate)

		// One epoch at the doubled rate.
		t2 := t1 + testEpochLen
		owed, err := env.minter.Mint(ctx, env.db, "g1", "alice", t2)
		require.NoError(t, err)
		require.Equal(t, tokens(7200).String(), owed.String())
	})
}

func TestMintServiceImpl_AdminHandover(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")

		err := env.minter.ChangeAdmin(ctx, env.db, "mallory", "bob")
		require.ErrorIs(t, err, errcode.ErrAdminOnly)
		require.NoError(t, env.minter.ChangeAdmin(ctx, env.db, "admin", "bob"))

		err = env.minter.AcceptAdmin(ctx, env.db, "carol")
		require.ErrorIs(t, err, errcode.ErrNotFutureAdmin)
		require.NoError(t, env.minter.AcceptAdmin(ctx, env.db, "bob"))

		cfg, err := env.minter.GetConfig(ctx, env.db)
		require.NoError(t, err)
		require.Equal(t, "bob", cfg.Admin)
		require.Equal(t, "", cfg.FutureAdmin)

		// The old admin lost its rights with the handover.
		err = env.minter.ChangeEmergencyReturn(ctx, env.db, "admin", "vault")
		require.ErrorIs(t, err, errcode.ErrAdminOnly)
		require.NoError(t, env.minter.ChangeEmergencyReturn(ctx, env.db, "bob", "vault"))

		cfg, err = env.minter.GetConfig(ctx, env.db)
		require.NoError(t, err)
		require.Equal(t, "vault", cfg.EmergencyReturn)
	})
}

func TestMintServiceImpl_RecoverBalance(t *testing.T) {
	env := newTestEnv(t, testStart)
	ctx := context.Background()

	t.Run("test_1", func(t *testing.T) {
		env.seedConfig(t, "admin")

		_, err := env.minter.RecoverBalance(ctx, env.db, "mallory", "weth")
		require.ErrorIs(t, err, errcode.ErrAdminOnly)

		// The staking token can never be swept.
		_, err = env.minter.RecoverBalance(ctx, env.db, "admin", "lptoken")
		require.ErrorIs(t, err, errcode.ErrProtectedToken)

		env.fund(t, "weth", "minter", tokens(5))
		recovered, err := env.minter.RecoverBalance(ctx, env.db, "admin", "weth")
		require.NoError(t, err)
		require.Equal(t, tokens(5).String(), recovered.String())
		require.Equal(t, tokens(5).String(), env.balance(t, "weth", "treasury"))

		recovered, err = env.minter.RecoverBalance(ctx, env.db, "admin", "weth")
		require.NoError(t, err)
		require.Equal(t, "0", recovered.String())
	})
}
