package gaugejson

import (
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMustRegisterCmd(t *testing.T) {
	require.Panics(t, func() {
		MustRegisterCmd("mint", (*MintCmd)(nil))
	})
	require.Panics(t, func() {
		MustRegisterCmd("notastruct", "nope")
	})
}

func TestRegisteredCmdMethods(t *testing.T) {
	methods := RegisteredCmdMethods()
	require.True(t, sort.StringsAreSorted(methods))
	require.Contains(t, methods, "mint")
	require.Contains(t, methods, "addgauge")
	require.Contains(t, methods, "commitnewrate")
}

func TestUnmarshalCmd(t *testing.T) {
	cmd, err := UnmarshalCmd(&Request{
		Jsonrpc: "2.0",
		Method:  "mint",
		Params:  json.RawMessage(`{"gauge_id":"g1","staker":"alice"}`),
		ID:      1,
	})
	require.NoError(t, err)
	mint, ok := cmd.(*MintCmd)
	require.True(t, ok)
	require.Equal(t, "g1", mint.GaugeID)
	require.Equal(t, "alice", mint.Staker)

	_, err = UnmarshalCmd(&Request{Method: "nosuchmethod"})
	require.Equal(t, ErrRPCMethodNotFound, err)

	_, err = UnmarshalCmd(&Request{
		Method: "mint",
		Params: json.RawMessage(`notjson`),
	})
	require.Equal(t, ErrRPCInvalidParams, err)
}

func TestMarshalCmd(t *testing.T) {
	raw, err := MarshalCmd(7, NewDepositCmd("g1", "alice", "1000"))
	require.NoError(t, err)

	var req Request
	require.NoError(t, json.Unmarshal(raw, &req))
	require.Equal(t, "2.0", req.Jsonrpc)
	require.Equal(t, "deposit", req.Method)

	cmd, err := UnmarshalCmd(&req)
	require.NoError(t, err)
	require.Equal(t, NewDepositCmd("g1", "alice", "1000"), cmd)

	_, err = MarshalCmd(1, struct{ X int }{1})
	require.Error(t, err)
}

func TestMarshalResponse(t *testing.T) {
	raw, err := MarshalResponse(3, "ok", nil)
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.Nil(t, resp.Error)
	require.Equal(t, json.RawMessage(`"ok"`), resp.Result)

	raw, err = MarshalResponse(3, nil, ErrRPCMethodNotFound)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &resp))
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrRPCMethodNotFound.Code, resp.Error.Code)
}
