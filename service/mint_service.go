package service

import (
	"context"
	"math/big"
	"strconv"

	"github.com/gaugesuite/emission-gauge-server/dal/dao"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/tokenledger"
	"github.com/gaugesuite/emission-gauge-server/utils"

	"gorm.io/gorm"
)

// MintService pays out accrued entitlements exactly once. The amount owed is
// always integrate_fraction minus what was already minted, so replays and
// crashes between checkpoint and payment can never double-pay.
type MintService interface {
	// EnsureConfig creates the single config row if missing and returns it.
	EnsureConfig(ctx context.Context, tx *gorm.DB, defaults *do.MinterConfigInfo) (*do.MinterConfigInfo, error)
	GetConfig(ctx context.Context, tx *gorm.DB) (*do.MinterConfigInfo, error)

	// Mint checkpoints the staker on the gauge and pays the entitlement not
	// yet paid. Returns the amount paid, zero when nothing is owed.
	Mint(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, now int64) (*big.Int, error)

	Minted(ctx context.Context, tx *gorm.DB, staker string, gaugeID string) (*big.Int, error)
	MintEvents(ctx context.Context, tx *gorm.DB, staker string, page int, num int) ([]*do.MintEventInfo, int64, error)

	// CommitNewRate replaces the scheduled emission rate from now on. A
	// zero rate is rejected, the override cannot halt emission.
	CommitNewRate(ctx context.Context, tx *gorm.DB, caller string, rate *big.Int, now int64) error
	ChangeAdmin(ctx context.Context, tx *gorm.DB, caller string, newAdmin string) error
	AcceptAdmin(ctx context.Context, tx *gorm.DB, caller string) error
	ChangeEmergencyReturn(ctx context.Context, tx *gorm.DB, caller string, addr string) error

	// RecoverBalance sweeps the minter's full balance of an arbitrary token
	// to the emergency return address. The staking token is protected since
	// staked deposits sit in gauge escrow under the same ledger.
	RecoverBalance(ctx context.Context, tx *gorm.DB, caller string, token string) (*big.Int, error)
}

type MintServiceImpl struct {
	gaugeSvc *GaugeServiceImpl
	emission *tokenledger.EmissionLedger
	staking  *tokenledger.StakingLedger
	ledger   tokenledger.Ledger

	gaugeDAO  dao.GaugeInfoDAO
	recordDAO dao.MintRecordInfoDAO
	eventDAO  dao.MintEventInfoDAO
	configDAO dao.MinterConfigInfoDAO
}

func NewMintService(gaugeSvc *GaugeServiceImpl, emission *tokenledger.EmissionLedger, staking *tokenledger.StakingLedger, ledger tokenledger.Ledger) *MintServiceImpl {
	return &MintServiceImpl{
		gaugeSvc:  gaugeSvc,
		emission:  emission,
		staking:   staking,
		ledger:    ledger,
		gaugeDAO:  dao.GetGaugeInfoDAOImpl(),
		recordDAO: dao.GetMintRecordInfoDAOImpl(),
		eventDAO:  dao.GetMintEventInfoDAOImpl(),
		configDAO: dao.GetMinterConfigInfoDAOImpl(),
	}
}

func (s *MintServiceImpl) EnsureConfig(ctx context.Context, tx *gorm.DB, defaults *do.MinterConfigInfo) (*do.MinterConfigInfo, error) {
	cfg, err := s.configDAO.Get(ctx, tx, true)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		return cfg, nil
	}
	if err := s.configDAO.Create(ctx, tx, defaults); err != nil {
		return nil, err
	}
	log.Infof("initialized minter config, admin %v", defaults.Admin)
	return defaults, nil
}

func (s *MintServiceImpl) GetConfig(ctx context.Context, tx *gorm.DB) (*do.MinterConfigInfo, error) {
	return s.configDAO.Get(ctx, tx)
}

func (s *MintServiceImpl) Mint(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, now int64) (*big.Int, error) {
	gauge, err := s.gaugeDAO.GetByGaugeID(ctx, tx, gaugeID)
	if err != nil {
		return nil, err
	}
	if gauge == nil {
		return nil, errcode.ErrNotAGauge
	}

	if _, err := s.gaugeSvc.ctrl.CheckpointGauge(ctx, tx, gaugeID, now); err != nil {
		return nil, err
	}
	pos, err := s.gaugeSvc.CheckpointStaker(ctx, tx, gaugeID, staker, now)
	if err != nil {
		return nil, err
	}
	fraction, err := utils.ParseAmount(pos.IntegrateFraction)
	if err != nil {
		return nil, err
	}

	record, err := s.recordDAO.GetByStakerAndGauge(ctx, tx, staker, gaugeID, true)
	if err != nil {
		return nil, err
	}
	minted := new(big.Int)
	if record != nil {
		minted, err = utils.ParseAmount(record.Minted)
		if err != nil {
			return nil, err
		}
	}

	owed := new(big.Int).Sub(fraction, minted)
	if owed.Sign() <= 0 {
		return new(big.Int), nil
	}

	if err := s.emission.Transfer(ctx, tx, staker, owed); err != nil {
		return nil, err
	}

	if record == nil {
		record = &do.MintRecordInfo{
			Staker:  staker,
			GaugeID: gaugeID,
			Minted:  utils.FormatAmount(fraction),
		}
		if err := s.recordDAO.Create(ctx, tx, record); err != nil {
			return nil, err
		}
	} else {
		record.Minted = utils.FormatAmount(fraction)
		if err := s.recordDAO.Update(ctx, tx, record); err != nil {
			return nil, err
		}
	}

	event := &do.MintEventInfo{
		Staker:      staker,
		GaugeID:     gaugeID,
		Amount:      utils.FormatAmount(owed),
		MintedTotal: utils.FormatAmount(fraction),
		EventHash: utils.EventHash(staker, gaugeID,
			utils.FormatAmount(owed), utils.FormatAmount(fraction),
			strconv.FormatInt(now, 10)),
	}
	if err := s.eventDAO.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	log.Infof("minted %v to %v from gauge %v", utils.FormatAmount(owed), staker, gaugeID)
	return owed, nil
}

func (s *MintServiceImpl) Minted(ctx context.Context, tx *gorm.DB, staker string, gaugeID string) (*big.Int, error) {
	record, err := s.recordDAO.GetByStakerAndGauge(ctx, tx, staker, gaugeID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return new(big.Int), nil
	}
	return utils.ParseAmount(record.Minted)
}

func (s *MintServiceImpl) MintEvents(ctx context.Context, tx *gorm.DB, staker string, page int, num int) ([]*do.MintEventInfo, int64, error) {
	events, err := s.eventDAO.GetByStaker(ctx, tx, staker, page, num)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.eventDAO.GetNumByStaker(ctx, tx, staker)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *MintServiceImpl) requireAdmin(ctx context.Context, tx *gorm.DB, caller string) (*do.MinterConfigInfo, error) {
	cfg, err := s.configDAO.Get(ctx, tx, true)
	if err != nil {
		return nil, err
	}
	if cfg == nil || caller == "" || caller != cfg.Admin {
		return nil, errcode.ErrAdminOnly
	}
	return cfg, nil
}

func (s *MintServiceImpl) CommitNewRate(ctx context.Context, tx *gorm.DB, caller string, rate *big.Int, now int64) error {
	cfg, err := s.requireAdmin(ctx, tx, caller)
	if err != nil {
		return err
	}
	if rate == nil || rate.Sign() <= 0 {
		return errcode.ErrInvalidAmount
	}
	ceiling, err := utils.ParseAmount(cfg.RateCeiling)
	if err != nil {
		return err
	}
	if ceiling.Sign() > 0 && rate.Cmp(ceiling) > 0 {
		return errcode.ErrRateTooHigh
	}

	// Settle every gauge at the old rate before the new one takes effect.
	gauges, err := s.gaugeDAO.GetAll(ctx, tx)
	if err != nil {
		return err
	}
	for _, g := range gauges {
		if err := s.gaugeSvc.CheckpointGauge(ctx, tx, g.GaugeID, now); err != nil {
			return err
		}
	}

	cfg.Rate = utils.FormatAmount(rate)
	if err := s.configDAO.Update(ctx, tx, cfg); err != nil {
		return err
	}
	log.Infof("emission rate committed to %v by %v", utils.FormatAmount(rate), caller)
	return nil
}

func (s *MintServiceImpl) ChangeAdmin(ctx context.Context, tx *gorm.DB, caller string, newAdmin string) error {
	cfg, err := s.requireAdmin(ctx, tx, caller)
	if err != nil {
		return err
	}
	cfg.FutureAdmin = newAdmin
	if err := s.configDAO.Update(ctx, tx, cfg); err != nil {
		return err
	}
	log.Infof("admin transfer to %v proposed by %v", newAdmin, caller)
	return nil
}

func (s *MintServiceImpl) AcceptAdmin(ctx context.Context, tx *gorm.DB, caller string) error {
	cfg, err := s.configDAO.Get(ctx, tx, true)
	if err != nil {
		return err
	}
	if cfg == nil || cfg.FutureAdmin == "" || caller != cfg.FutureAdmin {
		return errcode.ErrNotFutureAdmin
	}
	cfg.Admin = caller
	cfg.FutureAdmin = ""
	if err := s.configDAO.Update(ctx, tx, cfg); err != nil {
		return err
	}
	log.Infof("admin transfer accepted by %v", caller)
	return nil
}

func (s *MintServiceImpl) ChangeEmergencyReturn(ctx context.Context, tx *gorm.DB, caller string, addr string) error {
	cfg, err := s.requireAdmin(ctx, tx, caller)
	if err != nil {
		return err
	}
	cfg.EmergencyReturn = addr
	if err := s.configDAO.Update(ctx, tx, cfg); err != nil {
		return err
	}
	log.Infof("emergency return set to %v by %v", addr, caller)
	return nil
}

func (s *MintServiceImpl) RecoverBalance(ctx context.Context, tx *gorm.DB, caller string, token string) (*big.Int, error) {
	cfg, err := s.requireAdmin(ctx, tx, caller)
	if err != nil {
		return nil, err
	}
	if token == s.staking.Token() {
		return nil, errcode.ErrProtectedToken
	}

	balance, err := s.ledger.BalanceOf(ctx, tx, token, s.emission.MinterAddr())
	if err != nil {
		return nil, err
	}
	if balance.Sign() == 0 {
		return new(big.Int), nil
	}
	if err := s.ledger.Transfer(ctx, tx, token, s.emission.MinterAddr(), cfg.EmergencyReturn, balance); err != nil {
		return nil, err
	}

	log.Infof("recovered %v of %v to %v", utils.FormatAmount(balance), token, cfg.EmergencyReturn)
	return balance, nil
}