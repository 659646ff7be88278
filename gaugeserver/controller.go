package gaugeserver

import (
	"context"

	"github.com/gaugesuite/emission-gauge-server/gaugejson"
	"github.com/gaugesuite/emission-gauge-server/model"
	"github.com/gaugesuite/emission-gauge-server/utils"
)

// handleAddType implements the addtype command.
func handleAddType(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.AddTypeCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.Name) {
		return nil, gaugejson.ErrRPCInvalidParams
	}
	weight, err := utils.ParseAmount(cmd.Weight)
	if err != nil {
		return nil, gaugejson.ErrInvalidAmount
	}

	typeID, err := svr.weightMgr.AddType(context.Background(), cmd.Caller, cmd.Name, weight)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.AddTypeResult{
		TypeID: typeID,
	}, nil
}

// handleAddGauge implements the addgauge command.
func handleAddGauge(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.AddGaugeCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.GaugeID) {
		return nil, gaugejson.ErrRPCInvalidParams
	}
	weight, err := utils.ParseAmount(cmd.Weight)
	if err != nil {
		return nil, gaugejson.ErrInvalidAmount
	}

	err = svr.weightMgr.AddGauge(context.Background(), cmd.Caller, cmd.GaugeID, cmd.TypeID, weight)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.GaugeResult{
		GaugeID: cmd.GaugeID,
		TypeID:  cmd.TypeID,
		Weight:  cmd.Weight,
	}, nil
}

// handleChangeTypeWeight implements the changetypeweight command.
func handleChangeTypeWeight(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.ChangeTypeWeightCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	weight, err := utils.ParseAmount(cmd.Weight)
	if err != nil {
		return nil, gaugejson.ErrInvalidAmount
	}

	err = svr.weightMgr.ChangeTypeWeight(context.Background(), cmd.Caller, cmd.TypeID, weight)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.TypeResult{
		TypeID: cmd.TypeID,
		Weight: cmd.Weight,
	}, nil
}

// handleChangeGaugeWeight implements the changegaugeweight command.
func handleChangeGaugeWeight(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.ChangeGaugeWeightCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.GaugeID) {
		return nil, gaugejson.ErrRPCInvalidParams
	}
	weight, err := utils.ParseAmount(cmd.Weight)
	if err != nil {
		return nil, gaugejson.ErrInvalidAmount
	}

	err = svr.weightMgr.ChangeGaugeWeight(context.Background(), cmd.Caller, cmd.GaugeID, weight)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.GaugeResult{
		GaugeID: cmd.GaugeID,
		Weight:  cmd.Weight,
	}, nil
}

// handleGaugeRelativeWeight implements the gaugerelativeweight command.
func handleGaugeRelativeWeight(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.GaugeRelativeWeightCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.GaugeID) {
		return nil, gaugejson.ErrRPCInvalidParams
	}
	t := svr.clock.Now()
	if cmd.Time != nil {
		t = *cmd.Time
	}

	weight, err := svr.weightMgr.GaugeRelativeWeight(context.Background(), cmd.GaugeID, t)
	if err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.GaugeRelativeWeightResult{
		GaugeID:        cmd.GaugeID,
		RelativeWeight: utils.FormatAmount(weight),
		Time:           svr.clock.EpochStart(t),
	}, nil
}

// handleCheckpointGauge implements the checkpointgauge command. It advances
// both the weight series and the reward integral of the gauge.
func handleCheckpointGauge(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	cmd, ok := icmd.(*gaugejson.CheckpointGaugeCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	if utils.IsBlank(cmd.GaugeID) {
		return nil, gaugejson.ErrRPCInvalidParams
	}

	ctx := context.Background()
	weight, err := svr.weightMgr.CheckpointGauge(ctx, cmd.GaugeID)
	if err != nil {
		return nil, rpcError(err)
	}
	if err := svr.gaugeMgr.CheckpointGauge(ctx, cmd.GaugeID); err != nil {
		return nil, rpcError(err)
	}

	return &gaugejson.GaugeRelativeWeightResult{
		GaugeID:        cmd.GaugeID,
		RelativeWeight: utils.FormatAmount(weight),
		Time:           svr.clock.EpochStart(svr.clock.Now()),
	}, nil
}

// handleGetGauges implements the getgauges command.
func handleGetGauges(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	ctx := context.Background()
	gauges, err := svr.weightMgr.GetGauges(ctx)
	if err != nil {
		return nil, rpcError(err)
	}

	res := make([]*gaugejson.GaugeResult, 0, len(gauges))
	for _, g := range gauges {
		weight, err := svr.weightMgr.GetGaugeWeight(ctx, g.GaugeID)
		if err != nil {
			return nil, rpcError(err)
		}
		total, err := svr.gaugeMgr.TotalStaked(ctx, g.GaugeID)
		if err != nil {
			return nil, rpcError(err)
		}
		res = append(res, model.ConvertGaugeToResult(g,
			utils.FormatAmount(weight), utils.FormatAmount(total)))
	}
	return res, nil
}

// handleGetTypes implements the gettypes command.
func handleGetTypes(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	ctx := context.Background()
	types, err := svr.weightMgr.GetTypes(ctx)
	if err != nil {
		return nil, rpcError(err)
	}

	res := make([]*gaugejson.TypeResult, 0, len(types))
	for _, t := range types {
		weight, err := svr.weightMgr.GetTypeWeight(ctx, t.TypeID)
		if err != nil {
			return nil, rpcError(err)
		}
		res = append(res, model.ConvertTypeToResult(t, utils.FormatAmount(weight)))
	}
	return res, nil
}
