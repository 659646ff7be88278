package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type StakerPositionInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.StakerPositionInfo) error
	GetByGaugeAndStaker(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, exclusive ...bool) (*do.StakerPositionInfo, error)
	GetByGauge(ctx context.Context, tx *gorm.DB, gaugeID string, page int, num int) ([]*do.StakerPositionInfo, error)
	GetByStaker(ctx context.Context, tx *gorm.DB, staker string) ([]*do.StakerPositionInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.StakerPositionInfo) error
}

type StakerPositionInfoDAOImpl struct{}

var stakerPositionInfoDAO StakerPositionInfoDAO = &StakerPositionInfoDAOImpl{}

func GetStakerPositionInfoDAOImpl() StakerPositionInfoDAO {
	return stakerPositionInfoDAO
}

func (d *StakerPositionInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.StakerPositionInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil staker position info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *StakerPositionInfoDAOImpl) GetByGaugeAndStaker(ctx context.Context, tx *gorm.DB, gaugeID string, staker string, exclusive ...bool) (*do.StakerPositionInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.StakerPositionInfo{}
	query := tx.Model(&do.StakerPositionInfo{}).
		Where("gauge_id = ?", gaugeID).
		Where("staker = ?", staker).
		Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *StakerPositionInfoDAOImpl) GetByGauge(ctx context.Context, tx *gorm.DB, gaugeID string, page int, num int) ([]*do.StakerPositionInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.StakerPositionInfo, 0)
	if page < 1 || num < 1 {
		return res, nil
	}
	query := tx.Model(&do.StakerPositionInfo{}).
		Where("gauge_id = ?", gaugeID).
		Order("id").
		Offset((page - 1) * num).Limit(num).
		Find(&res)
	return res, query.Error
}

func (d *StakerPositionInfoDAOImpl) GetByStaker(ctx context.Context, tx *gorm.DB, staker string) ([]*do.StakerPositionInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.StakerPositionInfo, 0)
	query := tx.Model(&do.StakerPositionInfo{}).Where("staker = ?", staker).Order("id").Find(&res)
	return res, query.Error
}

func (d *StakerPositionInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.StakerPositionInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil staker position info when updating")
	}

	query := tx.Save(info)
	return query.Error
}
