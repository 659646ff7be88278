package weightmgr

import (
	"context"
	"math/big"

	"github.com/gaugesuite/emission-gauge-server/dal/dao"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/epochclock"
	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/service"
	"github.com/gaugesuite/emission-gauge-server/utils"

	"gorm.io/gorm"
)

// WeightManager is the transactional entry point for the weight controller:
// type and gauge registration plus weight changes, each wrapped in a single
// database transaction. Historical relative weights are immutable once their
// epoch begins, so reads for past epochs go through an LRU cache.
type WeightManager struct {
	clock *epochclock.Clock
	ctrl  *service.ControllerServiceImpl
	db    *gorm.DB
	cache *utils.RelativeWeightCache

	configDAO dao.MinterConfigInfoDAO
}

func NewWeightManager(clock *epochclock.Clock, ctrl *service.ControllerServiceImpl, db *gorm.DB, cacheSize int) *WeightManager {
	return &WeightManager{
		clock:     clock,
		ctrl:      ctrl,
		db:        db,
		cache:     utils.NewRelativeWeightCache(cacheSize),
		configDAO: dao.GetMinterConfigInfoDAOImpl(),
	}
}

func (m *WeightManager) requireAdmin(ctx context.Context, tx *gorm.DB, caller string) error {
	cfg, err := m.configDAO.Get(ctx, tx)
	if err != nil {
		return err
	}
	if cfg == nil || caller == "" || caller != cfg.Admin {
		return errcode.ErrAdminOnly
	}
	return nil
}

func (m *WeightManager) AddType(ctx context.Context, caller string, name string, weight *big.Int) (int64, error) {
	var typeID int64
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.requireAdmin(ctx, tx, caller); err != nil {
			return err
		}
		var err error
		typeID, err = m.ctrl.AddType(ctx, tx, name, weight, m.clock.Now())
		return err
	})
	if err != nil {
		return 0, err
	}
	return typeID, nil
}

func (m *WeightManager) ChangeTypeWeight(ctx context.Context, caller string, typeID int64, weight *big.Int) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.requireAdmin(ctx, tx, caller); err != nil {
			return err
		}
		return m.ctrl.ChangeTypeWeight(ctx, tx, typeID, weight, m.clock.Now())
	})
}

func (m *WeightManager) AddGauge(ctx context.Context, caller string, gaugeID string, typeID int64, weight *big.Int) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.requireAdmin(ctx, tx, caller); err != nil {
			return err
		}
		return m.ctrl.AddGauge(ctx, tx, gaugeID, typeID, weight, m.clock.Now())
	})
}

func (m *WeightManager) ChangeGaugeWeight(ctx context.Context, caller string, gaugeID string, weight *big.Int) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := m.requireAdmin(ctx, tx, caller); err != nil {
			return err
		}
		return m.ctrl.ChangeGaugeWeight(ctx, tx, gaugeID, weight, m.clock.Now())
	})
}

// GaugeRelativeWeight reads the 1e18-scaled relative weight of a gauge
// during the epoch containing t.
func (m *WeightManager) GaugeRelativeWeight(ctx context.Context, gaugeID string, t int64) (*big.Int, error) {
	epoch := m.clock.EpochStart(t)
	desc := utils.WeightDesc{GaugeID: gaugeID, Epoch: epoch}
	if epoch <= m.clock.EpochStart(m.clock.Now()) {
		if cached, ok := m.cache.Get(desc); ok {
			return utils.ParseAmount(cached)
		}
	}

	var weight *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		weight, err = m.ctrl.GaugeRelativeWeight(ctx, tx, gaugeID, t)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Only epochs that have begun are final; future points may still change.
	if epoch <= m.clock.EpochStart(m.clock.Now()) {
		m.cache.Set(desc, utils.FormatAmount(weight))
	}
	return weight, nil
}

// CheckpointGauge fills the weight series feeding a gauge up to the current
// epoch. Anyone may call it; it only materializes values already determined.
func (m *WeightManager) CheckpointGauge(ctx context.Context, gaugeID string) (*big.Int, error) {
	var weight *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		weight, err = m.ctrl.CheckpointGauge(ctx, tx, gaugeID, m.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return weight, nil
}

func (m *WeightManager) GetGauges(ctx context.Context) ([]*do.GaugeInfo, error) {
	var gauges []*do.GaugeInfo
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		gauges, err = m.ctrl.GetGauges(ctx, tx)
		return err
	})
	return gauges, err
}

func (m *WeightManager) GetTypes(ctx context.Context) ([]*do.GaugeTypeInfo, error) {
	var types []*do.GaugeTypeInfo
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		types, err = m.ctrl.GetTypes(ctx, tx)
		return err
	})
	return types, err
}

func (m *WeightManager) GetGaugeWeight(ctx context.Context, gaugeID string) (*big.Int, error) {
	var weight *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		weight, err = m.ctrl.GetGaugeWeight(ctx, tx, gaugeID, m.clock.Now())
		return err
	})
	return weight, err
}

func (m *WeightManager) GetTypeWeight(ctx context.Context, typeID int64) (*big.Int, error) {
	var weight *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		weight, err = m.ctrl.GetTypeWeight(ctx, tx, typeID, m.clock.Now())
		return err
	})
	return weight, err
}

func (m *WeightManager) GetTotalWeight(ctx context.Context) (*big.Int, error) {
	var weight *big.Int
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		weight, err = m.ctrl.GetTotalWeight(ctx, tx, m.clock.Now())
		return err
	})
	return weight, err
}
