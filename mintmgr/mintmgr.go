package mintmgr

import (
	"context"
	"math/big"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/service"

	"gorm.io/gorm"
)

// MintManager is the transactional entry point for claims and the
// admin-gated minter configuration.
type MintManager struct {
	clock   *epochclock.Clock
	mintSvc *service.MintServiceImpl
	db      *gorm.DB
}

func NewMintManager(clock *epochclock.Clock, mintSvc *service.MintServiceImpl, db *gorm.DB) *MintManager {
	return &MintManager{
		clock:   clock,
		mintSvc: mintSvc,
		db:      db,
	}
}

// EnsureConfig installs the config row on first boot. Later boots keep the
// stored row, so runtime admin changes survive restarts.
func (m *MintManager) EnsureConfig(ctx context.Context, defaults *do.MinterConfigInfo) (*do.MinterConfigInfo, error) {
	var cfg *do.MinterConfigInfo
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cfg, err = m.mintSvc.EnsureConfig(ctx, tx, defaults)
		return err
	})
	return cfg, err
}

func (m *MintManager) GetConfig(ctx context.Context) (*do.MinterConfigInfo, error) {
	var cfg *do.MinterConfigInfo
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		cfg, err = m.mintSvc.GetConfig(ctx, tx)
		return err
	})
	return cfg, err
}

// Mint settles and pays everything owed to the staker from one gauge. The
// checkpoint, the payment and the mint record move in one transaction, so a
// crash can lose the whole claim but never pay it twice.
func (m *MintManager) Mint(ctx context.Context, gaugeID string, staker string) (*big.Int, error) {
	var paid *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		paid, err = m.mintSvc.Mint(ctx, tx, gaugeID, staker, m.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// MintMany claims from several gauges in one transaction. Unknown gauges
// fail the whole batch.
func (m *MintManager) MintMany(ctx context.Context, gaugeIDs []string, staker string) (*big.Int, error) {
	total := new(big.Int)
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, gaugeID := range gaugeIDs {
			paid, err := m.mintSvc.Mint(ctx, tx, gaugeID, staker, m.clock.Now())
			if err != nil {
				return err
			}
			total.Add(total, paid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return total, nil
}

func (m *MintManager) Minted(ctx context.Context, staker string, gaugeID string) (*big.Int, error) {
	var minted *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		minted, err = m.mintSvc.Minted(ctx, tx, staker, gaugeID)
		return err
	})
	return minted, err
}

func (m *MintManager) MintEvents(ctx context.Context, staker string, page int, num int) ([]*do.MintEventInfo, int64, error) {
	var events []*do.MintEventInfo
	var total int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		events, total, err = m.mintSvc.MintEvents(ctx, tx, staker, page, num)
		return err
	})
	return events, total, err
}

func (m *MintManager) CommitNewRate(ctx context.Context, caller string, rate *big.Int) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.mintSvc.CommitNewRate(ctx, tx, caller, rate, m.clock.Now())
	})
}

func (m *MintManager) ChangeAdmin(ctx context.Context, caller string, newAdmin string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.mintSvc.ChangeAdmin(ctx, tx, caller, newAdmin)
	})
}

func (m *MintManager) AcceptAdmin(ctx context.Context, caller string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.mintSvc.AcceptAdmin(ctx, tx, caller)
	})
}

func (m *MintManager) ChangeEmergencyReturn(ctx context.Context, caller string, addr string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return m.mintSvc.ChangeEmergencyReturn(ctx, tx, caller, addr)
	})
}

func (m *MintManager) RecoverBalance(ctx context.Context, caller string, token string) (*big.Int, error) {
	var recovered *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		recovered, err = m.mintSvc.RecoverBalance(ctx, tx, caller, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return recovered, nil
}
