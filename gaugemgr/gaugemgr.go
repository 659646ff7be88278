package gaugemgr

import (
	"context"
	"math/big"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/service"

	"gorm.io/gorm"
)

// GaugeManager is the transactional entry point for staking operations and
// accumulator reads.
type GaugeManager struct {
	clock    *epochclock.Clock
	gaugeSvc *service.GaugeServiceImpl
	db       *gorm.DB
}

func NewGaugeManager(clock *epochclock.Clock, gaugeSvc *service.GaugeServiceImpl, db *gorm.DB) *GaugeManager {
	return &GaugeManager{
		clock:    clock,
		gaugeSvc: gaugeSvc,
		db:       db,
	}
}

// Deposit moves staking tokens from the staker into the gauge's escrow and
// grows their position. The position is checkpointed first so the new
// balance only earns from now on.
func (m *GaugeManager) Deposit(ctx context.Context, gaugeID string, staker string, amount *big.Int) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.gaugeSvc.Stake(ctx, tx, gaugeID, staker, amount, m.clock.Now())
	})
}

// Withdraw returns staked tokens to the staker. The accrued entitlement
// survives the withdrawal; only future accrual stops.
func (m *GaugeManager) Withdraw(ctx context.Context, gaugeID string, staker string, amount *big.Int) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.gaugeSvc.Unstake(ctx, tx, gaugeID, staker, amount, m.clock.Now())
	})
}

// CheckpointGauge advances the gauge integral to now.
func (m *GaugeManager) CheckpointGauge(ctx context.Context, gaugeID string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.gaugeSvc.CheckpointGauge(ctx, tx, gaugeID, m.clock.Now())
	})
}

// IntegrateFraction reads the staker's cumulative entitlement as of their
// last checkpoint, without advancing anything.
func (m *GaugeManager) IntegrateFraction(ctx context.Context, gaugeID string, staker string) (*big.Int, error) {
	var fraction *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		fraction, err = m.gaugeSvc.IntegrateFraction(ctx, tx, gaugeID, staker)
		return err
	})
	return fraction, err
}

func (m *GaugeManager) GetPosition(ctx context.Context, gaugeID string, staker string) (*do.StakerPositionInfo, error) {
	var pos *do.StakerPositionInfo
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		pos, err = m.gaugeSvc.GetPosition(ctx, tx, gaugeID, staker)
		return err
	})
	return pos, err
}

func (m *GaugeManager) TotalStaked(ctx context.Context, gaugeID string) (*big.Int, error) {
	var total *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		total, err = m.gaugeSvc.TotalStaked(ctx, tx, gaugeID)
		return err
	})
	return total, err
}
