package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type ControllerMetaInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.ControllerMetaInfo) error
	Get(ctx context.Context, tx *gorm.DB, exclusive ...bool) (*do.ControllerMetaInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.ControllerMetaInfo) error
}

type ControllerMetaInfoDAOImpl struct{}

var controllerMetaInfoDAO ControllerMetaInfoDAO = &ControllerMetaInfoDAOImpl{}

func GetControllerMetaInfoDAOImpl() ControllerMetaInfoDAO {
	return controllerMetaInfoDAO
}

func (d *ControllerMetaInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.ControllerMetaInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil controller meta info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *ControllerMetaInfoDAOImpl) Get(ctx context.Context, tx *gorm.DB, exclusive ...bool) (*do.ControllerMetaInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.ControllerMetaInfo{}
	query := tx.Model(&do.ControllerMetaInfo{}).Order("id").Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *ControllerMetaInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.ControllerMetaInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil controller meta info when updating")
	}

	query := tx.Save(info)
	return query.Error
}
