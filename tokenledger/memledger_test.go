package tokenledger

import (
	"context"
	"math/big"
	"testing"

	"github.com/gaugesuite/emission-gauge-server/errcode"

	"github.com/stretchr/testify/require"
)

func TestMemLedger(t *testing.T) {
	ctx := context.Background()
	l := NewMemLedger()

	b, err := l.BalanceOf(ctx, nil, "gold", "alice")
	require.NoError(t, err)
	require.Equal(t, "0", b.String())

	require.NoError(t, l.Credit(ctx, nil, "gold", "alice", big.NewInt(10)))

	err = l.Transfer(ctx, nil, "gold", "alice", "bob", big.NewInt(11))
	require.ErrorIs(t, err, errcode.ErrTransferFailed)

	require.NoError(t, l.Transfer(ctx, nil, "gold", "alice", "bob", big.NewInt(4)))

	b, err = l.BalanceOf(ctx, nil, "gold", "bob")
	require.NoError(t, err)
	require.Equal(t, "4", b.String())

	// Reads hand out copies, not the stored value.
	b.SetInt64(999)
	b, err = l.BalanceOf(ctx, nil, "gold", "bob")
	require.NoError(t, err)
	require.Equal(t, "4", b.String())
}
