package tokenledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/gaugesuite/emission-gauge-server/dal"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLedgerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, dal.Migrate(db))
	return db
}

func TestDBLedger_Credit(t *testing.T) {
	db := newLedgerTestDB(t)
	ctx := context.Background()
	l := NewDBLedger()

	t.Run("test_1", func(t *testing.T) {
		b, err := l.BalanceOf(ctx, db, "gold", "alice")
		require.NoError(t, err)
		require.Equal(t, "0", b.String())

		require.NoError(t, l.Credit(ctx, db, "gold", "alice", big.NewInt(10)))
		require.NoError(t, l.Credit(ctx, db, "gold", "alice", big.NewInt(5)))

		b, err = l.BalanceOf(ctx, db, "gold", "alice")
		require.NoError(t, err)
		require.Equal(t, "15", b.String())

		err = l.Credit(ctx, db, "gold", "alice", big.NewInt(-1))
		require.ErrorIs(t, err, errcode.ErrInvalidAmount)
	})
}

func TestDBLedger_Transfer(t *testing.T) {
	db := newLedgerTestDB(t)
	ctx := context.Background()
	l := NewDBLedger()

	t.Run("test_1", func(t *testing.T) {
		err := l.Transfer(ctx, db, "gold", "alice", "bob", big.NewInt(-1))
		require.ErrorIs(t, err, errcode.ErrInvalidAmount)

		// A zero transfer is a no-op, even between unknown accounts.
		require.NoError(t, l.Transfer(ctx, db, "gold", "alice", "bob", big.NewInt(0)))

		err = l.Transfer(ctx, db, "gold", "alice", "bob", big.NewInt(1))
		require.ErrorIs(t, err, errcode.ErrTransferFailed)

		require.NoError(t, l.Credit(ctx, db, "gold", "alice", big.NewInt(10)))

		err = l.Transfer(ctx, db, "gold", "alice", "bob", big.NewInt(11))
		require.ErrorIs(t, err, errcode.ErrTransferFailed)

		require.NoError(t, l.Transfer(ctx, db, "gold", "alice", "bob", big.NewInt(4)))

		b, err := l.BalanceOf(ctx, db, "gold", "alice")
		require.NoError(t, err)
		require.Equal(t, "6", b.String())
		b, err = l.BalanceOf(ctx, db, "gold", "bob")
		require.NoError(t, err)
		require.Equal(t, "4", b.String())
	})
}

func TestEscrowAddr(t *testing.T) {
	require.Equal(t, "gauge:g1", EscrowAddr("g1"))
}
