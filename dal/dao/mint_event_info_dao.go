package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type MintEventInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.MintEventInfo) error
	GetByStaker(ctx context.Context, tx *gorm.DB, staker string, page int, num int) ([]*do.MintEventInfo, error)
	GetNumByStaker(ctx context.Context, tx *gorm.DB, staker string) (int64, error)
}

type MintEventInfoDAOImpl struct{}

var mintEventInfoDAO MintEventInfoDAO = &MintEventInfoDAOImpl{}

func GetMintEventInfoDAOImpl() MintEventInfoDAO {
	return mintEventInfoDAO
}

func (d *MintEventInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.MintEventInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil mint event info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *MintEventInfoDAOImpl) GetByStaker(ctx context.Context, tx *gorm.DB, staker string, page int, num int) ([]*do.MintEventInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.MintEventInfo, 0)
	if page < 1 || num < 1 {
		return res, nil
	}
	query := tx.Model(&do.MintEventInfo{}).
		Where("staker = ?", staker).
		Order("id desc").
		Offset((page - 1) * num).Limit(num).
		Find(&res)
	return res, query.Error
}

func (d *MintEventInfoDAOImpl) GetNumByStaker(ctx context.Context, tx *gorm.DB, staker string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.MintEventInfo{}).Where("staker = ?", staker).Count(&res)
	return res, query.Error
}
