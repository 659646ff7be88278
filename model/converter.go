package model

import (
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/gaugejson"
)

// ConvertPositionToResult maps a staker position row to its RPC form. A nil
// row renders as an empty position, so callers never see a null for a staker
// that has not touched the gauge yet.
func ConvertPositionToResult(gaugeID string, staker string, pos *do.StakerPositionInfo) *gaugejson.PositionResult {
	if pos == nil {
		return &gaugejson.PositionResult{
			GaugeID:           gaugeID,
			Staker:            staker,
			Balance:           "0",
			IntegrateFraction: "0",
		}
	}
	return &gaugejson.PositionResult{
		GaugeID:           pos.GaugeID,
		Staker:            pos.Staker,
		Balance:           pos.Balance,
		IntegrateFraction: pos.IntegrateFraction,
	}
}

// ConvertMintEventToResult maps a mint event row to its RPC form.
func ConvertMintEventToResult(e *do.MintEventInfo) gaugejson.MintEventResult {
	return gaugejson.MintEventResult{
		Staker:      e.Staker,
		GaugeID:     e.GaugeID,
		Amount:      e.Amount,
		MintedTotal: e.MintedTotal,
		EventHash:   e.EventHash,
		Time:        e.CreatedAt.Unix(),
	}
}

// ConvertGaugeToResult maps a gauge row plus its freshly read weight and
// stake totals to its RPC form.
func ConvertGaugeToResult(g *do.GaugeInfo, weight string, totalStaked string) *gaugejson.GaugeResult {
	return &gaugejson.GaugeResult{
		GaugeID:     g.GaugeID,
		TypeID:      g.TypeID,
		Weight:      weight,
		TotalStaked: totalStaked,
	}
}

// ConvertTypeToResult maps a gauge type row plus its freshly read weight to
// its RPC form.
func ConvertTypeToResult(t *do.GaugeTypeInfo, weight string) *gaugejson.TypeResult {
	return &gaugejson.TypeResult{
		TypeID: t.TypeID,
		Name:   t.Name,
		Weight: weight,
	}
}
