package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type GaugeCheckpointInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.GaugeCheckpointInfo) error
	GetByGaugeID(ctx context.Context, tx *gorm.DB, gaugeID string, exclusive ...bool) (*do.GaugeCheckpointInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.GaugeCheckpointInfo) error
}

type GaugeCheckpointInfoDAOImpl struct{}

var gaugeCheckpointInfoDAO GaugeCheckpointInfoDAO = &GaugeCheckpointInfoDAOImpl{}

func GetGaugeCheckpointInfoDAOImpl() GaugeCheckpointInfoDAO {
	return gaugeCheckpointInfoDAO
}

func (d *GaugeCheckpointInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.GaugeCheckpointInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil gauge checkpoint info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *GaugeCheckpointInfoDAOImpl) GetByGaugeID(ctx context.Context, tx *gorm.DB, gaugeID string, exclusive ...bool) (*do.GaugeCheckpointInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.GaugeCheckpointInfo{}
	query := tx.Model(&do.GaugeCheckpointInfo{}).Where("gauge_id = ?", gaugeID).Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *GaugeCheckpointInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.GaugeCheckpointInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil gauge checkpoint info when updating")
	}

	query := tx.Save(info)
	return query.Error
}
