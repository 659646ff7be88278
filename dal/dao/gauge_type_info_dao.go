package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type GaugeTypeInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.GaugeTypeInfo) error
	GetByTypeID(ctx context.Context, tx *gorm.DB, typeID int64, exclusive ...bool) (*do.GaugeTypeInfo, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*do.GaugeTypeInfo, error)
	GetNum(ctx context.Context, tx *gorm.DB) (int64, error)
	UpdateLastEpoch(ctx context.Context, tx *gorm.DB, typeID int64, epoch int64) error
	UpdateSumLastEpoch(ctx context.Context, tx *gorm.DB, typeID int64, epoch int64) error
}

type GaugeTypeInfoDAOImpl struct{}

var gaugeTypeInfoDAO GaugeTypeInfoDAO = &GaugeTypeInfoDAOImpl{}

func GetGaugeTypeInfoDAOImpl() GaugeTypeInfoDAO {
	return gaugeTypeInfoDAO
}

func (d *GaugeTypeInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.GaugeTypeInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil gauge type info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *GaugeTypeInfoDAOImpl) GetByTypeID(ctx context.Context, tx *gorm.DB, typeID int64, exclusive ...bool) (*do.GaugeTypeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.GaugeTypeInfo{}
	query := tx.Model(&do.GaugeTypeInfo{}).Where("type_id = ?", typeID).Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *GaugeTypeInfoDAOImpl) GetAll(ctx context.Context, tx *gorm.DB) ([]*do.GaugeTypeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.GaugeTypeInfo, 0)
	query := tx.Model(&do.GaugeTypeInfo{}).Order("type_id").Find(&res)
	return res, query.Error
}

func (d *GaugeTypeInfoDAOImpl) GetNum(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.GaugeTypeInfo{}).Count(&res)
	return res, query.Error
}

func (d *GaugeTypeInfoDAOImpl) UpdateLastEpoch(ctx context.Context, tx *gorm.DB, typeID int64, epoch int64) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	query := tx.Model(&do.GaugeTypeInfo{}).Where("type_id = ?", typeID).Update("last_epoch", epoch)
	return query.Error
}

func (d *GaugeTypeInfoDAOImpl) UpdateSumLastEpoch(ctx context.Context, tx *gorm.DB, typeID int64, epoch int64) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	query := tx.Model(&do.GaugeTypeInfo{}).Where("type_id = ?", typeID).Update("sum_last_epoch", epoch)
	return query.Error
}
