package dao

import (
	"context"
	"errors"

	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

type LedgerBalanceInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.LedgerBalanceInfo) error
	GetByTokenAndAddr(ctx context.Context, tx *gorm.DB, token string, addr string, exclusive ...bool) (*do.LedgerBalanceInfo, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string, page int, num int) ([]*do.LedgerBalanceInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.LedgerBalanceInfo) error
}

type LedgerBalanceInfoDAOImpl struct{}

var ledgerBalanceInfoDAO LedgerBalanceInfoDAO = &LedgerBalanceInfoDAOImpl{}

func GetLedgerBalanceInfoDAOImpl() LedgerBalanceInfoDAO {
	return ledgerBalanceInfoDAO
}

func (d *LedgerBalanceInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.LedgerBalanceInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil ledger balance info when creating")
	}

	query := tx.Create(info)
	return query.Error
}

func (d *LedgerBalanceInfoDAOImpl) GetByTokenAndAddr(ctx context.Context, tx *gorm.DB, token string, addr string, exclusive ...bool) (*do.LedgerBalanceInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if len(exclusive) > 0 && exclusive[0] {
		tx = withLock(tx)
	}

	res := do.LedgerBalanceInfo{}
	query := tx.Model(&do.LedgerBalanceInfo{}).
		Where("token = ?", token).
		Where("addr = ?", addr).
		Take(&res)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &res, nil
}

func (d *LedgerBalanceInfoDAOImpl) GetByToken(ctx context.Context, tx *gorm.DB, token string, page int, num int) ([]*do.LedgerBalanceInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.LedgerBalanceInfo, 0)
	if page < 1 || num < 1 {
		return res, nil
	}
	query := tx.Model(&do.LedgerBalanceInfo{}).
		Where("token = ?", token).
		Order("id").
		Offset((page - 1) * num).Limit(num).
		Find(&res)
	return res, query.Error
}

func (d *LedgerBalanceInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.LedgerBalanceInfo) error {
	if tx == nil {
		return errcode.ErrNilGormDB
	}

	if info == nil {
		return errors.New("nil ledger balance info when updating")
	}

	query := tx.Save(info)
	return query.Error
}
