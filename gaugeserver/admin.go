package gaugeserver

import (
	"context"

	"github.com/gaugesuite/emission-gauge-server/gaugejson"
	"github.com/gaugesuite/emission-gauge-server/utils"
)

type successResult struct {
	Success bool `json:"success"`
}

// handleCommitNewRate implements the commitnewrate command.
func handleCommitNewRate(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.CommitNewRateCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	rate, err := utils.ParseAmount(cmd.Rate)
	if err != nil {
		return nil, gaugejson.ErrInvalidAmount
	}

	if err := svr.mintMgr.CommitNewRate(context.Background(), cmd.Caller, rate); err != nil {
		return nil, rpcError(err)
	}
	return &successResult{Success: true}, nil
}

// handleChangeAdmin implements the changeadmin command, proposing a new
// admin. The transfer only completes when the proposed admin accepts.
func handleChangeAdmin(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.ChangeAdminCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.NewAdmin) {
		return nil, gaugejson.ErrRPCInvalidParams
	}

	if err := svr.mintMgr.ChangeAdmin(context.Background(), cmd.Caller, cmd.NewAdmin); err != nil {
		return nil, rpcError(err)
	}
	return &successResult{Success: true}, nil
}

// handleAcceptAdmin implements the acceptadmin command.
func handleAcceptAdmin(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.AcceptAdminCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if err := svr.mintMgr.AcceptAdmin(context.Background(), cmd.Caller); err != nil {
		return nil, rpcError(err)
	}
	return &successResult{Success: true}, nil
}

// handleChangeEmergencyReturn implements the changeemergencyreturn command.
func handleChangeEmergencyReturn(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.ChangeEmergencyReturnCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.Addr) {
		return nil, gaugejson.ErrRPCInvalidParams
	}

	if err := svr.mintMgr.ChangeEmergencyReturn(context.Background(), cmd.Caller, cmd.Addr); err != nil {
		return nil, rpcError(err)
	}
	return &successResult{Success: true}, nil
}

// handleRecoverBalance implements the recoverbalance command.
func handleRecoverBalance(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.RecoverBalanceCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.Token) {
		return nil, gaugejson.ErrRPCInvalidParams
	}

	recovered, err := svr.mintMgr.RecoverBalance(context.Background(), cmd.Caller, cmd.Token)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.RecoverBalanceResult{
		Token:     cmd.Token,
		Recovered: utils.FormatAmount(recovered),
	}, nil
}
