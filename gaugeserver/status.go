package gaugeserver

import (
	"context"

	"github.com/gaugesuite/emission-gauge-server/chaincfg"
	"github.com/gaugesuite/emission-gauge-server/gaugejson"
	"github.com/gaugesuite/emission-gauge-server/utils"
)

// handleVersion implements the version command.
func handleVersion(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	result := map[string]gaugejson.VersionResult{
		"server": {
			Version: chaincfg.ServerVersion,
		},
	}
	return result, nil
}

// handleGetStatus implements the getstatus command.
func handleGetStatus(svr *GaugeServer, icmd interface{}, closeChan <-chan struct{}) (interface{}, error) {
	_, ok := icmd.(*gaugejson.GetStatusCmd)
	if !ok {
		return nil, gaugejson.ErrRPCInternal
	}

	ctx := context.Background()
	now := svr.clock.Now()

	result := gaugejson.GetStatusResult{
		Net:          chaincfg.ActiveNetParams.Name,
		StartTime:    svr.clock.StartTime(),
		EpochLength:  svr.clock.EpochLength(),
		CurrentEpoch: svr.clock.EpochOf(now),
		Rate:         utils.FormatAmount(svr.clock.RateAt(now)),
	}

	cfg, err := svr.mintMgr.GetConfig(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	if cfg != nil {
		result.Admin = cfg.Admin
		result.FutureAdmin = cfg.FutureAdmin
		result.EmergencyReturn = cfg.EmergencyReturn
		result.RateCeiling = cfg.RateCeiling
		if cfg.Rate != "" && cfg.Rate != "0" {
			result.Rate = cfg.Rate
		}
	}

	gauges, err := svr.weightMgr.GetGauges(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	result.GaugeNum = len(gauges)

	types, err := svr.weightMgr.GetTypes(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	result.TypeNum = len(types)

	return &result, nil
}
