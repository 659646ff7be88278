package gaugeserver

import (
	"context"

	"github.com/gaugesuite/emission-gauge-server/gaugejson"
	"github.com/gaugesuite/emission-gauge-server/model"
	"github.com/gaugesuite/emission-gauge-server/utils"
)

// handleDeposit implements the deposit command.
func handleDeposit(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.DepositCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.GaugeID) || utils.IsBlank(cmd.Staker) {
		return nil, gaugejson.ErrRPCInvalidParams
	}
	amount, err := utils.ParseAmount(cmd.Amount)
	if err != nil {
		return nil, gaugejson.ErrInvalidAmount
	}

	ctx := context.Background()
	if err := svr.gaugeMgr.Deposit(ctx, cmd.GaugeID, cmd.Staker, amount); err != nil {
		return nil, rpcError(err)
	}

	return svr.positionResult(ctx, cmd.GaugeID, cmd.Staker)
}

// handleWithdraw implements the withdraw command.
func handleWithdraw(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.WithdrawCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.GaugeID) || utils.IsBlank(cmd.Staker) {
		return nil, gaugejson.ErrRPCInvalidParams
	}
	amount, err := utils.ParseAmount(cmd.Amount)
	if err != nil {
		return nil, gaugejson.ErrInvalidAmount
	}

	ctx := context.Background()
	if err := svr.gaugeMgr.Withdraw(ctx, cmd.GaugeID, cmd.Staker, amount); err != nil {
		return nil, rpcError(err)
	}

	return svr.positionResult(ctx, cmd.GaugeID, cmd.Staker)
}

// handleGetPosition implements the getposition command.
func handleGetPosition(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.GetPositionCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	return svr.positionResult(context.Background(), cmd.GaugeID, cmd.Staker)
}

func (svr *GaugeServer) positionResult(ctx context.Context, gaugeID string, staker string) (*gaugejson.PositionResult, error) {
	pos, err := svr.gaugeMgr.GetPosition(ctx, gaugeID, staker)
	if err != nil {
		return nil, rpcError(err)
	}
	return model.ConvertPositionToResult(gaugeID, staker, pos), nil
}
