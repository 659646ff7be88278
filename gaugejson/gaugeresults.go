package gaugejson

// VersionResult models the data returned by the version command.
type VersionResult struct {
	Version string `json:"version"`
}

// GetStatusResult models the data returned by the getstatus command.
type GetStatusResult struct {
	Net             string `json:"net"`
	StartTime       int64  `json:"start_time"`
	EpochLength     int64  `json:"epoch_length"`
	CurrentEpoch    int64  `json:"current_epoch"`
	Rate            string `json:"rate"`
	Admin           string `json:"admin"`
	FutureAdmin     string `json:"future_admin"`
	EmergencyReturn string `json:"emergency_return"`
	RateCeiling     string `json:"rate_ceiling"`
	GaugeNum        int    `json:"gauge_num"`
	TypeNum         int    `json:"type_num"`
}

// MintResult models the data returned by the mint and mintmany commands.
// Paid is zero when nothing was owed; that is a successful no-op, not an
// error.
type MintResult struct {
	Paid string `json:"paid"`
}

// MintedResult models the data returned by the minted command.
type MintedResult struct {
	Minted string `json:"minted"`
}

// IntegrateFractionResult models the data returned by the
// integratefraction command.
type IntegrateFractionResult struct {
	IntegrateFraction string `json:"integrate_fraction"`
}

// PositionResult models one staker position, returned by the deposit,
// withdraw and getposition commands.
type PositionResult struct {
	GaugeID           string `json:"gauge_id"`
	Staker            string `json:"staker"`
	Balance           string `json:"balance"`
	IntegrateFraction string `json:"integrate_fraction"`
}

// AddTypeResult models the data returned by the addtype command.
type AddTypeResult struct {
	TypeID int64 `json:"type_id"`
}

// GaugeResult models one registered gauge, returned by the getgauges
// command.
type GaugeResult struct {
	GaugeID     string `json:"gauge_id"`
	TypeID      int64  `json:"type_id"`
	Weight      string `json:"weight"`
	TotalStaked string `json:"total_staked"`
}

// TypeResult models one gauge type, returned by the gettypes command.
type TypeResult struct {
	TypeID int64  `json:"type_id"`
	Name   string `json:"name"`
	Weight string `json:"weight"`
}

// GaugeRelativeWeightResult models the data returned by the
// gaugerelativeweight and checkpointgauge commands. The weight is the
// 1e18-scaled share of global emission during the epoch containing Time.
type GaugeRelativeWeightResult struct {
	GaugeID        string `json:"gauge_id"`
	RelativeWeight string `json:"relative_weight"`
	Time           int64  `json:"time"`
}

// MintEventResult models one historical payment, returned by the
// getmintevents command.
type MintEventResult struct {
	Staker      string `json:"staker"`
	GaugeID     string `json:"gauge_id"`
	Amount      string `json:"amount"`
	MintedTotal string `json:"minted_total"`
	EventHash   string `json:"event_hash"`
	Time        int64  `json:"time"`
}

// GetMintEventsResult models the data returned by the getmintevents
// command.
type GetMintEventsResult struct {
	Events   []MintEventResult `json:"events"`
	TotalNum int64             `json:"total_num"`
}

// RecoverBalanceResult models the data returned by the recoverbalance
// command.
type RecoverBalanceResult struct {
	Token     string `json:"token"`
	Recovered string `json:"recovered"`
}
