package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeightPointInfoDAO interface {
	Upsert(ctx context.Context, tx *gorm.DB, info *do.WeightPointInfo) error
	Get(ctx context.Context, tx *gorm.DB, kind int, ref string, epoch int64) (*do.WeightPointInfo, error)
	GetLatestAtOrBefore(ctx context.Context, tx *gorm.DB, kind int, ref string, epoch int64) (*do.WeightPointInfo, error)
}

type WeightPointInfoDAOImpl struct{}

var weightPointInfoDAO WeightPointInfoDAO = &WeightPointInfoDAOImpl{}

func GetWeightPointInfoDAOImpl() WeightPointInfoDAO {
	return weightPointInfoDAO
}

func (d *WeightPointInfoDAOImpl) Upsert(ctx context.Context, tx *gorm.DB, info *do.WeightPointInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil weight point info when upserting")
	}

	query := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "kind"}, {Name: "ref"}, {Name: "epoch"}},
		DoUpdates: clause.AssignmentColumns([]string{"weight", "updated_at"}),
	}).Create(info)
	return query.Error
}

func (d *WeightPointInfoDAOImpl) Get(ctx context.Context, tx *gorm.DB, kind int, ref string, epoch int64) (*do.WeightPointInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.WeightPointInfo{}
	query := tx.Model(&do.WeightPointInfo{}).
		Where("kind = ?", kind).
		Where("ref = ?", ref).
		Where("epoch = ?", epoch).
		Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *WeightPointInfoDAOImpl) GetLatestAtOrBefore(ctx context.Context, tx *gorm.DB, kind int, ref string, epoch int64) (*do.WeightPointInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.WeightPointInfo{}
	query := tx.Model(&do.WeightPointInfo{}).
		Where("kind = ?", kind).
		Where("ref = ?", ref).
		Where("epoch <= ?", epoch).
		Order("epoch desc").
		Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}
