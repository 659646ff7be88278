package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type GaugeInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.GaugeInfo) error
	GetByGaugeID(ctx context.Context, tx *gorm.DB, gaugeID string, exclusive ...bool) (*do.GaugeInfo, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*do.GaugeInfo, error)
	GetByTypeID(ctx context.Context, tx *gorm.DB, typeID int64) ([]*do.GaugeInfo, error)
	GetNum(ctx context.Context, tx *gorm.DB) (int64, error)
	ExistGaugeID(ctx context.Context, tx *gorm.DB, gaugeID string) (bool, error)
	UpdateLastEpoch(ctx context.Context, tx *gorm.DB, gaugeID string, epoch int64) error
}

type GaugeInfoDAOImpl struct{}

var gaugeInfoDAO GaugeInfoDAO = &GaugeInfoDAOImpl{}

func GetGaugeInfoDAOImpl() GaugeInfoDAO {
	return gaugeInfoDAO
}

func (d *GaugeInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.GaugeInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil gauge info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *GaugeInfoDAOImpl) GetByGaugeID(ctx context.Context, tx *gorm.DB, gaugeID string, exclusive ...bool) (*do.GaugeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.GaugeInfo{}
	query := tx.Model(&do.GaugeInfo{}).Where("gauge_id = ?", gaugeID).Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *GaugeInfoDAOImpl) GetAll(ctx context.Context, tx *gorm.DB) ([]*do.GaugeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.GaugeInfo, 0)
	query := tx.Model(&do.GaugeInfo{}).Order("id").Find(&res)
	return res, query.Error
}

func (d *GaugeInfoDAOImpl) GetByTypeID(ctx context.Context, tx *gorm.DB, typeID int64) ([]*do.GaugeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.GaugeInfo, 0)
	query := tx.Model(&do.GaugeInfo{}).Where("type_id = ?", typeID).Order("id").Find(&res)
	return res, query.Error
}

func (d *GaugeInfoDAOImpl) GetNum(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.GaugeInfo{}).Count(&res)
	return res, query.Error
}

func (d *GaugeInfoDAOImpl) ExistGaugeID(ctx context.Context, tx *gorm.DB, gaugeID string) (bool, error) {
	if tx == nil {
		return false, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.GaugeInfo{}).Where("gauge_id = ?", gaugeID).Count(&res)
	if query.Error != nil {
		return false, query.Error
	}
	return res > 0, nil
}

func (d *GaugeInfoDAOImpl) UpdateLastEpoch(ctx context.Context, tx *gorm.DB, gaugeID string, epoch int64) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	query := tx.Model(&do.GaugeInfo{}).Where("gauge_id = ?", gaugeID).Update("last_epoch", epoch)
	return query.Error
}
