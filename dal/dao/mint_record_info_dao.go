package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type MintRecordInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.MintRecordInfo) error
	GetByStakerAndGauge(ctx context.Context, tx *gorm.DB, staker string, gaugeID string, exclusive ...bool) (*do.MintRecordInfo, error)
	GetByStaker(ctx context.Context, tx *gorm.DB, staker string) ([]*do.MintRecordInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.MintRecordInfo) error
}

type MintRecordInfoDAOImpl struct{}

var mintRecordInfoDAO MintRecordInfoDAO = &MintRecordInfoDAOImpl{}

func GetMintRecordInfoDAOImpl() MintRecordInfoDAO {
	return mintRecordInfoDAO
}

func (d *MintRecordInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.MintRecordInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil mint record info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *MintRecordInfoDAOImpl) GetByStakerAndGauge(ctx context.Context, tx *gorm.DB, staker string, gaugeID string, exclusive ...bool) (*do.MintRecordInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.MintRecordInfo{}
	query := tx.Model(&do.MintRecordInfo{}).
		Where("staker = ?", staker).
		Where("gauge_id = ?", gaugeID).
		Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *MintRecordInfoDAOImpl) GetByStaker(ctx context.Context, tx *gorm.DB, staker string) ([]*do.MintRecordInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.MintRecordInfo, 0)
	query := tx.Model(&do.MintRecordInfo{}).Where("staker = ?", staker).Order("id").Find(&res)
	return res, query.Error
}

func (d *MintRecordInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.MintRecordInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil mint record info when updating")
	}

	query := tx.Save(info)
	return query.Error
}
