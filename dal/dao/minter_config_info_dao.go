package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type MinterConfigInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.MinterConfigInfo) error
	Get(ctx context.Context, tx *gorm.DB, exclusive ...bool) (*do.MinterConfigInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.MinterConfigInfo) error
}

type MinterConfigInfoDAOImpl struct{}

var minterConfigInfoDAO MinterConfigInfoDAO = &MinterConfigInfoDAOImpl{}

func GetMinterConfigInfoDAOImpl() MinterConfigInfoDAO {
	return minterConfigInfoDAO
}

func (d *MinterConfigInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.MinterConfigInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil minter config info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *MinterConfigInfoDAOImpl) Get(ctx context.Context, tx *gorm.DB, exclusive ...bool) (*do.MinterConfigInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.MinterConfigInfo{}
	query := tx.Model(&do.MinterConfigInfo{}).Order("id").Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *MinterConfigInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.MinterConfigInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil minter config info when updating")
	}

	query := tx.Save(info)
	return query.Error
}
