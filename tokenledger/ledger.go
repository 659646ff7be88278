package tokenledger

import (
	"context"
	"math/big"

	"github.com/gaugesuite/emission-gauge-server/epochclock"

	"gorm.io/gorm"
)

// Ledger moves custodial token balances. Implementations must honor the
// enclosing gorm transaction when one is passed, so a failed transfer aborts
// the caller's whole operation.
type Ledger interface {
	BalanceOf(ctx context.Context, tx *gorm.DB, token string, addr string) (*big.Int, error)
	Transfer(ctx context.Context, tx *gorm.DB, token string, from string, to string, amount *big.Int) error
	Credit(ctx context.Context, tx *gorm.DB, token string, addr string, amount *big.Int) error
}

// EscrowAddr returns the custody address holding a gauge's staked funds.
func EscrowAddr(gaugeID string) string {
	return "gauge:" + gaugeID
}

// EmissionLedger is the emission token as seen by the minter: the global
// rate schedule plus transfers out of the minter's custody account. The
// minter never creates supply, it moves what is already custodied.
type EmissionLedger struct {
	clock      *epochclock.Clock
	ledger     Ledger
	token      string
	minterAddr string
}

func NewEmissionLedger(clock *epochclock.Clock, ledger Ledger, token string, minterAddr string) *EmissionLedger {
	return &EmissionLedger{
		clock:      clock,
		ledger:     ledger,
		token:      token,
		minterAddr: minterAddr,
	}
}

// RateAt returns the global emission rate effective at time t.
func (e *EmissionLedger) RateAt(t int64) *big.Int {
	return e.clock.RateAt(t)
}

// StartEpochTime returns the unix time emission begins.
func (e *EmissionLedger) StartEpochTime() int64 {
	return e.clock.StartTime()
}

// Token returns the emission token identifier.
func (e *EmissionLedger) Token() string {
	return e.token
}

// MinterAddr returns the custody account emission is paid from.
func (e *EmissionLedger) MinterAddr() string {
	return e.minterAddr
}

// Transfer pays amount from the minter custody account to the given address.
func (e *EmissionLedger) Transfer(ctx context.Context, tx *gorm.DB, to string, amount *big.Int) error {
	return e.ledger.Transfer(ctx, tx, e.token, e.minterAddr, to, amount)
}

func (e *EmissionLedger) BalanceOf(ctx context.Context, tx *gorm.DB, addr string) (*big.Int, error) {
	return e.ledger.BalanceOf(ctx, tx, e.token, addr)
}

// StakingLedger is the staking token as seen by the gauges: stake moves
// funds from the staker into the gauge escrow account and unstake moves them
// back.
type StakingLedger struct {
	ledger Ledger
	token  string
}

func NewStakingLedger(ledger Ledger, token string) *StakingLedger {
	return &StakingLedger{ledger: ledger, token: token}
}

// Token returns the staking token identifier.
func (s *StakingLedger) Token() string {
	return s.token
}

func (s *StakingLedger) TransferFrom(ctx context.Context, tx *gorm.DB, from string, to string, amount *big.Int) error {
	return s.ledger.Transfer(ctx, tx, s.token, from, to, amount)
}

func (s *StakingLedger) BalanceOf(ctx context.Context, tx *gorm.DB, addr string) (*big.Int, error) {
	return s.ledger.BalanceOf(ctx, tx, s.token, addr)
}
