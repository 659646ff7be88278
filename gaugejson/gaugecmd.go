package gaugejson

// Amount-valued fields are decimal strings of 1e18-scaled integers; numbers
// this size do not survive a round trip through JSON floats.

// VersionCmd defines the version JSON-RPC command.
type VersionCmd struct{}

// NewVersionCmd returns a new instance which can be used to issue a JSON-RPC
// version command.
func NewVersionCmd() *VersionCmd { return new(VersionCmd) }

// GetStatusCmd defines the getstatus JSON-RPC command.
type GetStatusCmd struct{}

func NewGetStatusCmd() *GetStatusCmd {
	return &GetStatusCmd{}
}

// MintCmd defines the mint JSON-RPC command. Staker is the claiming account;
// everything the gauge owes it and has not yet paid is transferred.
type MintCmd struct {
	GaugeID string `json:"gauge_id"`
	Staker  string `json:"staker"`
}

func NewMintCmd(gaugeID string, staker string) *MintCmd {
	return &MintCmd{
		GaugeID: gaugeID,
		Staker:  staker,
	}
}

// MintManyCmd defines the mintmany JSON-RPC command, claiming from several
// gauges in one call.
type MintManyCmd struct {
	GaugeIDs []string `json:"gauge_ids"`
	Staker   string   `json:"staker"`
}

func NewMintManyCmd(gaugeIDs []string, staker string) *MintManyCmd {
	return &MintManyCmd{
		GaugeIDs: gaugeIDs,
		Staker:   staker,
	}
}

// MintedCmd defines the minted JSON-RPC command.
type MintedCmd struct {
	Staker  string `json:"staker"`
	GaugeID string `json:"gauge_id"`
}

func NewMintedCmd(staker string, gaugeID string) *MintedCmd {
	return &MintedCmd{
		Staker:  staker,
		GaugeID: gaugeID,
	}
}

// IntegrateFractionCmd defines the integratefraction JSON-RPC command.
type IntegrateFractionCmd struct {
	GaugeID string `json:"gauge_id"`
	Staker  string `json:"staker"`
}

func NewIntegrateFractionCmd(gaugeID string, staker string) *IntegrateFractionCmd {
	return &IntegrateFractionCmd{
		GaugeID: gaugeID,
		Staker:  staker,
	}
}

// DepositCmd defines the deposit JSON-RPC command.
type DepositCmd struct {
	GaugeID string `json:"gauge_id"`
	Staker  string `json:"staker"`
	Amount  string `json:"amount"`
}

func NewDepositCmd(gaugeID string, staker string, amount string) *DepositCmd {
	return &DepositCmd{
		GaugeID: gaugeID,
		Staker:  staker,
		Amount:  amount,
	}
}

// WithdrawCmd defines the withdraw JSON-RPC command.
type WithdrawCmd struct {
	GaugeID string `json:"gauge_id"`
	Staker  string `json:"staker"`
	Amount  string `json:"amount"`
}

func NewWithdrawCmd(gaugeID string, staker string, amount string) *WithdrawCmd {
	return &WithdrawCmd{
		GaugeID: gaugeID,
		Staker:  staker,
		Amount:  amount,
	}
}

// AddTypeCmd defines the addtype JSON-RPC command.
type AddTypeCmd struct {
	Caller string `json:"caller"`
	Name   string `json:"name"`
	Weight string `json:"weight"`
}

func NewAddTypeCmd(caller string, name string, weight string) *AddTypeCmd {
	return &AddTypeCmd{
		Caller: caller,
		Name:   name,
		Weight: weight,
	}
}

// AddGaugeCmd defines the addgauge JSON-RPC command.
type AddGaugeCmd struct {
	Caller  string `json:"caller"`
	GaugeID string `json:"gauge_id"`
	TypeID  int64  `json:"type_id"`
	Weight  string `json:"weight"`
}

func NewAddGaugeCmd(caller string, gaugeID string, typeID int64, weight string) *AddGaugeCmd {
	return &AddGaugeCmd{
		Caller:  caller,
		GaugeID: gaugeID,
		TypeID:  typeID,
		Weight:  weight,
	}
}

// ChangeTypeWeightCmd defines the changetypeweight JSON-RPC command.
type ChangeTypeWeightCmd struct {
	Caller string `json:"caller"`
	TypeID int64  `json:"type_id"`
	Weight string `json:"weight"`
}

func NewChangeTypeWeightCmd(caller string, typeID int64, weight string) *ChangeTypeWeightCmd {
	return &ChangeTypeWeightCmd{
		Caller: caller,
		TypeID: typeID,
		Weight: weight,
	}
}

// ChangeGaugeWeightCmd defines the changegaugeweight JSON-RPC command.
type ChangeGaugeWeightCmd struct {
	Caller  string `json:"caller"`
	GaugeID string `json:"gauge_id"`
	Weight  string `json:"weight"`
}

func NewChangeGaugeWeightCmd(caller string, gaugeID string, weight string) *ChangeGaugeWeightCmd {
	return &ChangeGaugeWeightCmd{
		Caller:  caller,
		GaugeID: gaugeID,
		Weight:  weight,
	}
}

// GaugeRelativeWeightCmd defines the gaugerelativeweight JSON-RPC command.
// Time defaults to the current time when omitted.
type GaugeRelativeWeightCmd struct {
	GaugeID string `json:"gauge_id"`
	Time    *int64 `json:"time,omitempty"`
}

func NewGaugeRelativeWeightCmd(gaugeID string, t *int64) *GaugeRelativeWeightCmd {
	return &GaugeRelativeWeightCmd{
		GaugeID: gaugeID,
		Time:    t,
	}
}

// CheckpointGaugeCmd defines the checkpointgauge JSON-RPC command.
type CheckpointGaugeCmd struct {
	GaugeID string `json:"gauge_id"`
}

func NewCheckpointGaugeCmd(gaugeID string) *CheckpointGaugeCmd {
	return &CheckpointGaugeCmd{
		GaugeID: gaugeID,
	}
}

// GetGaugesCmd defines the getgauges JSON-RPC command.
type GetGaugesCmd struct{}

func NewGetGaugesCmd() *GetGaugesCmd {
	return &GetGaugesCmd{}
}

// GetTypesCmd defines the gettypes JSON-RPC command.
type GetTypesCmd struct{}

func NewGetTypesCmd() *GetTypesCmd {
	return &GetTypesCmd{}
}

// GetPositionCmd defines the getposition JSON-RPC command.
type GetPositionCmd struct {
	GaugeID string `json:"gauge_id"`
	Staker  string `json:"staker"`
}

func NewGetPositionCmd(gaugeID string, staker string) *GetPositionCmd {
	return &GetPositionCmd{
		GaugeID: gaugeID,
		Staker:  staker,
	}
}

// GetMintEventsCmd defines the getmintevents JSON-RPC command.
type GetMintEventsCmd struct {
	Staker string `json:"staker"`
	Page   int    `json:"page"`
	Num    int    `json:"num"`
}

func NewGetMintEventsCmd(staker string, page int, num int) *GetMintEventsCmd {
	return &GetMintEventsCmd{
		Staker: staker,
		Page:   page,
		Num:    num,
	}
}

// CommitNewRateCmd defines the commitnewrate JSON-RPC command.
type CommitNewRateCmd struct {
	Caller string `json:"caller"`
	Rate   string `json:"rate"`
}

func NewCommitNewRateCmd(caller string, rate string) *CommitNewRateCmd {
	return &CommitNewRateCmd{
		Caller: caller,
		Rate:   rate,
	}
}

// ChangeAdminCmd defines the changeadmin JSON-RPC command, the proposing
// half of the two-step admin transfer.
type ChangeAdminCmd struct {
	Caller   string `json:"caller"`
	NewAdmin string `json:"new_admin"`
}

func NewChangeAdminCmd(caller string, newAdmin string) *ChangeAdminCmd {
	return &ChangeAdminCmd{
		Caller:   caller,
		NewAdmin: newAdmin,
	}
}

// AcceptAdminCmd defines the acceptadmin JSON-RPC command, the accepting
// half of the two-step admin transfer.
type AcceptAdminCmd struct {
	Caller string `json:"caller"`
}

func NewAcceptAdminCmd(caller string) *AcceptAdminCmd {
	return &AcceptAdminCmd{
		Caller: caller,
	}
}

// ChangeEmergencyReturnCmd defines the changeemergencyreturn JSON-RPC
// command.
type ChangeEmergencyReturnCmd struct {
	Caller string `json:"caller"`
	Addr   string `json:"addr"`
}

func NewChangeEmergencyReturnCmd(caller string, addr string) *ChangeEmergencyReturnCmd {
	return &ChangeEmergencyReturnCmd{
		Caller: caller,
		Addr:   addr,
	}
}

// RecoverBalanceCmd defines the recoverbalance JSON-RPC command.
type RecoverBalanceCmd struct {
	Caller string `json:"caller"`
	Token  string `json:"token"`
}

func NewRecoverBalanceCmd(caller string, token string) *RecoverBalanceCmd {
	return &RecoverBalanceCmd{
		Caller: caller,
		Token:  token,
	}
}

func init() {
	// Common commands
	MustRegisterCmd("version", (*VersionCmd)(nil))
	MustRegisterCmd("getstatus", (*GetStatusCmd)(nil))

	// Staker commands
	MustRegisterCmd("mint", (*MintCmd)(nil))
	MustRegisterCmd("mintmany", (*MintManyCmd)(nil))
	MustRegisterCmd("minted", (*MintedCmd)(nil))
	MustRegisterCmd("integratefraction", (*IntegrateFractionCmd)(nil))
	MustRegisterCmd("deposit", (*DepositCmd)(nil))
	MustRegisterCmd("withdraw", (*WithdrawCmd)(nil))
	MustRegisterCmd("getposition", (*GetPositionCmd)(nil))
	MustRegisterCmd("getmintevents", (*GetMintEventsCmd)(nil))

	// Controller commands
	MustRegisterCmd("addtype", (*AddTypeCmd)(nil))
	MustRegisterCmd("addgauge", (*AddGaugeCmd)(nil))
	MustRegisterCmd("changetypeweight", (*ChangeTypeWeightCmd)(nil))
	MustRegisterCmd("changegaugeweight", (*ChangeGaugeWeightCmd)(nil))
	MustRegisterCmd("gaugerelativeweight", (*GaugeRelativeWeightCmd)(nil))
	MustRegisterCmd("checkpointgauge", (*CheckpointGaugeCmd)(nil))
	MustRegisterCmd("getgauges", (*GetGaugesCmd)(nil))
	MustRegisterCmd("gettypes", (*GetTypesCmd)(nil))

	// Minter admin commands
	MustRegisterCmd("commitnewrate", (*CommitNewRateCmd)(nil))
	MustRegisterCmd("changeadmin", (*ChangeAdminCmd)(nil))
	MustRegisterCmd("acceptadmin", (*AcceptAdminCmd)(nil))
	MustRegisterCmd("changeemergencyreturn", (*ChangeEmergencyReturnCmd)(nil))
	MustRegisterCmd("recoverbalance", (*RecoverBalanceCmd)(nil))
}
