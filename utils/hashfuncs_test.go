package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashB(t *testing.T) {
	h := HashB([]byte("x"))
	require.Len(t, h, 32)
	require.Equal(t, h, HashB([]byte("x")))
}

func TestEventHash(t *testing.T) {
	h := EventHash("alice", "g1", "100")
	require.Len(t, h, 64)
	require.Equal(t, h, EventHash("alice", "g1", "100"))

	// The separator keeps shifted part boundaries distinct.
	require.NotEqual(t, EventHash("ab", "c"), EventHash("a", "bc"))
}
