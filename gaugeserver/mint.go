package gaugeserver

import (
	"context"

	"github.com/gaugesuite/emission-gauge-server/gaugejson"
	"github.com/gaugesuite/emission-gauge-server/metrics"
	"github.com/gaugesuite/emission-gauge-server/model"
	"github.com/gaugesuite/emission-gauge-server/utils"
)

// handleMint implements the mint command. A zero payout is a successful
// no-op, not an error.
func handleMint(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.MintCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.GaugeID) || utils.IsBlank(cmd.Staker) {
		return nil, gaugejson.ErrRPCInvalidParams
	}

	paid, err := svr.mintMgr.Mint(context.Background(), cmd.GaugeID, cmd.Staker)
	if err != nil {
		metrics.IncMint("error")
		return nil, rpcError(err)
	}
	if paid.Sign() > 0 {
		metrics.IncMint("paid")
	} else {
		metrics.IncMint("noop")
	}

	return &gaugejson.MintResult{
		Paid: utils.FormatAmount(paid),
	}, nil
}

// handleMintMany implements the mintmany command.
func handleMintMany(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.MintManyCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if len(cmd.GaugeIDs) == 0 || utils.IsBlank(cmd.Staker) {
		return nil, gaugejson.ErrRPCInvalidParams
	}

	paid, err := svr.mintMgr.MintMany(context.Background(), cmd.GaugeIDs, cmd.Staker)
	if err != nil {
		metrics.IncMint("error")
		return nil, rpcError(err)
	}
	if paid.Sign() > 0 {
		metrics.IncMint("paid")
	} else {
		metrics.IncMint("noop")
	}

	return &gaugejson.MintResult{
		Paid: utils.FormatAmount(paid),
	}, nil
}

// handleMinted implements the minted command.
func handleMinted(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.MintedCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	minted, err := svr.mintMgr.Minted(context.Background(), cmd.Staker, cmd.GaugeID)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.MintedResult{
		Minted: utils.FormatAmount(minted),
	}, nil
}

// handleIntegrateFraction implements the integratefraction command.
func handleIntegrateFraction(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.IntegrateFractionCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	fraction, err := svr.gaugeMgr.IntegrateFraction(context.Background(), cmd.GaugeID, cmd.Staker)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.IntegrateFractionResult{
		IntegrateFraction: utils.FormatAmount(fraction),
	}, nil
}

// handleGetMintEvents implements the getmintevents command.
func handleGetMintEvents(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.GetMintEventsCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.Staker) {
		return nil, gaugejson.ErrRPCInvalidParams
	}

	events, total, err := svr.mintMgr.MintEvents(context.Background(), cmd.Staker, cmd.Page, cmd.Num)
	if err != nil {
		return nil, rpcError(err)
	}

	res := make([]gaugejson.MintEventResult, 0, len(events))
	for _, e := range events {
		res = append(res, model.ConvertMintEventToResult(e))
	}

	return &gaugejson.GetMintEventsResult{
		Events:   res,
		TotalNum: total,
	}, nil
}
