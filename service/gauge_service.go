package service

import (
	"context"
	"math/big"

	"github.com/gaugesuite/emission-gauge-server/constdef"
	"github.com/gaugesuite/emission-gauge-server/dal/dao"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/tokenledger"
	"github.com/gaugesuite/emission-gauge-server/utils"

	"gorm.io/gorm"
)

// GaugeService advances the per-gauge reward integral and the per-staker
// positions hanging off it. The gauge accrues rate * relative_weight per
// second, spread over the total staked amount; a staker's entitlement is
// their balance times the growth of that integral since their last touch.
type GaugeService interface {
	// CheckpointStaker advances the gauge integral to now and settles the
	// staker's accrued entitlement against it. Creates the position row on
	// first touch.
	CheckpointStaker(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, now int64) (*do.StakerPositionInfo, error)

	// CheckpointGauge advances the gauge integral only. Periodic jobs call
	// this so no single later call has to walk an unbounded history.
	CheckpointGauge(ctx context.Context, tx *gorm.DB, gaugeID string, now int64) error

	Stake(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, amount *big.Int, now int64) error
	Unstake(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, amount *big.Int, now int64) error

	IntegrateFraction(ctx context.Context, tx *gorm.DB, gaugeID string, staker string) (*big.Int, error)
	GetPosition(ctx context.Context, tx *gorm.DB, gaugeID string, staker string) (*do.StakerPositionInfo, error)
	TotalStaked(ctx context.Context, tx *gorm.DB, gaugeID string) (*big.Int, error)
}

type GaugeServiceImpl struct {
	clock   *epochclock.Clock
	ctrl    *ControllerServiceImpl
	staking *tokenledger.StakingLedger

	gaugeDAO    dao.GaugeInfoDAO
	checkpntDAO dao.GaugeCheckpointInfoDAO
	positionDAO dao.StakerPositionInfoDAO
	configDAO   dao.MinterConfigInfoDAO
}

func NewGaugeService(clock *epochclock.Clock, ctrl *ControllerServiceImpl, staking *tokenledger.StakingLedger) *GaugeServiceImpl {
	return &GaugeServiceImpl{
		clock:       clock,
		ctrl:        ctrl,
		staking:     staking,
		gaugeDAO:    dao.GetGaugeInfoDAOImpl(),
		checkpntDAO: dao.GetGaugeCheckpointInfoDAOImpl(),
		positionDAO: dao.GetStakerPositionInfoDAOImpl(),
		configDAO:   dao.GetMinterConfigInfoDAOImpl(),
	}
}

// advance walks the gauge integral from its last checkpoint to now. Each
// step covers at most one epoch and never crosses a rate reduction, so the
// rate and the relative weight are both constant within a step:
//
//	integral += rate * relative_weight * dt / total_staked
//
// With rate and relative weight both 1e18-scaled the two scale factors
// cancel against the later division by 1e18 in settle. Periods with nothing
// staked advance the clock without accruing. An admin-committed rate
// overrides the schedule; committing one checkpoints every gauge first, so
// no walk ever spans the switchover.
func (s *GaugeServiceImpl) advance(ctx context.Context, tx *gorm.DB, gauge *do.GaugeInfo, ckpt *do.GaugeCheckpointInfo, now int64) error {
	if now <= ckpt.CheckpointTime {
		return nil
	}

	total, err := utils.ParseAmount(ckpt.TotalStaked)
	if err != nil {
		return err
	}
	integral, err := utils.ParseAmount(ckpt.IntegrateInvSupply)
	if err != nil {
		return err
	}

	var override *big.Int
	cfg, err := s.configDAO.Get(ctx, tx)
	if err != nil {
		return err
	}
	if cfg != nil && cfg.Rate != "" && cfg.Rate != "0" {
		override, err = utils.ParseAmount(cfg.Rate)
		if err != nil {
			return err
		}
	}

	t := ckpt.CheckpointTime
	for i := 0; i < constdef.MaxCheckpointEpochs && t < now; i++ {
		sliceEnd := s.clock.NextEpoch(t)
		if sliceEnd > now {
			sliceEnd = now
		}

		if total.Sign() > 0 {
			w, err := s.ctrl.relativeWeightAt(ctx, tx, gauge, s.clock.EpochStart(t))
			if err != nil {
				return err
			}
			if w.Sign() > 0 {
				a := t
				for a < sliceEnd {
					b := s.clock.NextRateChange(a)
					if b > sliceEnd {
						b = sliceEnd
					}
					rate := override
					if rate == nil || a < s.clock.StartTime() {
						rate = s.clock.RateAt(a)
					}
					if rate.Sign() > 0 {
						d := new(big.Int).Mul(rate, w)
						d.Mul(d, big.NewInt(b-a))
						d.Div(d, total)
						integral.Add(integral, d)
					}
					a = b
				}
			}
		}
		t = sliceEnd
	}

	ckpt.CheckpointTime = t
	ckpt.IntegrateInvSupply = utils.FormatAmount(integral)
	return s.checkpntDAO.Update(ctx, tx, ckpt)
}

// settle folds the integral growth since the staker's last touch into their
// entitlement: fraction += balance * (integral - seen) / 1e18.
func settle(pos *do.StakerPositionInfo, integral *big.Int) error {
	seen, err := utils.ParseAmount(pos.IntegrateInvSupplyOf)
	if err != nil {
		return err
	}
	if integral.Cmp(seen) <= 0 {
		return nil
	}
	balance, err := utils.ParseAmount(pos.Balance)
	if err != nil {
		return err
	}
	fraction, err := utils.ParseAmount(pos.IntegrateFraction)
	if err != nil {
		return err
	}

	growth := new(big.Int).Sub(integral, seen)
	fraction.Add(fraction, utils.MulDiv(balance, growth, utils.FixedPointOne()))

	pos.IntegrateFraction = utils.FormatAmount(fraction)
	pos.IntegrateInvSupplyOf = utils.FormatAmount(integral)
	return nil
}

func (s *GaugeServiceImpl) getGaugeState(ctx context.Context, tx *gorm.DB, gaugeID string) (*do.GaugeInfo, *do.GaugeCheckpointInfo, error) {
	gauge, err := s.gaugeDAO.GetByGaugeID(ctx, tx, gaugeID)
	if err != nil {
		return nil, nil, err
	}
	if gauge == nil {
		return nil, nil, errcode.ErrNotAGauge
	}
	ckpt, err := s.checkpntDAO.GetByGaugeID(ctx, tx, gaugeID, true)
	if err != nil {
		return nil, nil, err
	}
	if ckpt == nil {
		return nil, nil, errcode.ErrNotAGauge
	}
	return gauge, ckpt, nil
}

func (s *GaugeServiceImpl) CheckpointGauge(ctx context.Context, tx *gorm.DB, gaugeID string, now int64) error {
	if _, err := s.ctrl.CheckpointGauge(ctx, tx, gaugeID, now); err != nil {
		return err
	}
	gauge, ckpt, err := s.getGaugeState(ctx, tx, gaugeID)
	if err != nil {
		return err
	}
	return s.advance(ctx, tx, gauge, ckpt, now)
}

func (s *GaugeServiceImpl) CheckpointStaker(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, now int64) (*do.StakerPositionInfo, error) {
	gauge, ckpt, err := s.getGaugeState(ctx, tx, gaugeID)
	if err != nil {
		return nil, err
	}
	if err := s.advance(ctx, tx, gauge, ckpt, now); err != nil {
		return nil, err
	}

	pos, err := s.positionDAO.GetByGaugeAndStaker(ctx, tx, gaugeID, staker, true)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		pos = &do.StakerPositionInfo{
			GaugeID:              gaugeID,
			Staker:               staker,
			Balance:              "0",
			IntegrateInvSupplyOf: ckpt.IntegrateInvSupply,
			IntegrateFraction:    "0",
		}
		if err := s.positionDAO.Create(ctx, tx, pos); err != nil {
			return nil, err
		}
		return pos, nil
	}

	integral, err := utils.ParseAmount(ckpt.IntegrateInvSupply)
	if err != nil {
		return nil, err
	}
	if err := settle(pos, integral); err != nil {
		return nil, err
	}
	if err := s.positionDAO.Update(ctx, tx, pos); err != nil {
		return nil, err
	}
	return pos, nil
}

func (s *GaugeServiceImpl) Stake(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, amount *big.Int, now int64) error {
	if err := utils.CheckStakerIDValidity(staker); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return errcode.ErrInvalidAmount
	}

	pos, err := s.CheckpointStaker(ctx, tx, gaugeID, staker, now)
	if err != nil {
		return err
	}

	if err := s.staking.TransferFrom(ctx, tx, staker, tokenledger.EscrowAddr(gaugeID), amount); err != nil {
		return err
	}

	balance, err := utils.ParseAmount(pos.Balance)
	if err != nil {
		return err
	}
	pos.Balance = utils.FormatAmount(balance.Add(balance, amount))
	if err := s.positionDAO.Update(ctx, tx, pos); err != nil {
		return err
	}

	ckpt, err := s.checkpntDAO.GetByGaugeID(ctx, tx, gaugeID, true)
	if err != nil {
		return err
	}
	total, err := utils.ParseAmount(ckpt.TotalStaked)
	if err != nil {
		return err
	}
	ckpt.TotalStaked = utils.FormatAmount(total.Add(total, amount))
	if err := s.checkpntDAO.Update(ctx, tx, ckpt); err != nil {
		return err
	}

	log.Debugf("staker %v deposited %v into gauge %v", staker, utils.FormatAmount(amount), gaugeID)
	return nil
}

func (s *GaugeServiceImpl) Unstake(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, amount *big.Int, now int64) error {
	if amount == nil || amount.Sign() <= 0 {
		return errcode.ErrInvalidAmount
	}

	pos, err := s.CheckpointStaker(ctx, tx, gaugeID, staker, now)
	if err != nil {
		return err
	}

	balance, err := utils.ParseAmount(pos.Balance)
	if err != nil {
		return err
	}
	if balance.Cmp(amount) < 0 {
		return errcode.ErrInsufficientBalance
	}

	if err := s.staking.TransferFrom(ctx, tx, tokenledger.EscrowAddr(gaugeID), staker, amount); err != nil {
		return err
	}

	pos.Balance = utils.FormatAmount(balance.Sub(balance, amount))
	if err := s.positionDAO.Update(ctx, tx, pos); err != nil {
		return err
	}

	ckpt, err := s.checkpntDAO.GetByGaugeID(ctx, tx, gaugeID, true)
	if err != nil {
		return err
	}
	total, err := utils.ParseAmount(ckpt.TotalStaked)
	if err != nil {
		return err
	}
	total.Sub(total, amount)
	if total.Sign() < 0 {
		total.SetInt64(0)
	}
	ckpt.TotalStaked = utils.FormatAmount(total)
	if err := s.checkpntDAO.Update(ctx, tx, ckpt); err != nil {
		return err
	}

	log.Debugf("staker %v withdrew %v from gauge %v", staker, utils.FormatAmount(amount), gaugeID)
	return nil
}

func (s *GaugeServiceImpl) IntegrateFraction(ctx context.Context, tx *gorm.DB, gaugeID string, staker string) (*big.Int, error) {
	pos, err := s.positionDAO.GetByGaugeAndStaker(ctx, tx, gaugeID, staker)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return new(big.Int), nil
	}
	return utils.ParseAmount(pos.IntegrateFraction)
}

func (s *GaugeServiceImpl) GetPosition(ctx context.Context, tx *gorm.DB, gaugeID string, staker string) (*do.StakerPositionInfo, error) {
	return s.positionDAO.GetByGaugeAndStaker(ctx, tx, gaugeID, staker)
}

func (s *GaugeServiceImpl) TotalStaked(ctx context.Context, tx *gorm.DB, gaugeID string) (*big.Int, error) {
	ckpt, err := s.checkpntDAO.GetByGaugeID(ctx, tx, gaugeID)
	if err != nil {
		return nil, err
	}
	if ckpt == nil {
		return nil, errcode.ErrNotAGauge
	}
	return utils.ParseAmount(ckpt.TotalStaked)
}