package tokenledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gaugesuite/emission-gauge-server/dal/dao"
	"github.com/gaugesuite/emission-gauge-server/dal/do"
	"github.com/gaugesuite/emission-gauge-server/errcode"
	"github.com/gaugesuite/emission-gauge-server/utils"

	"gorm.io/gorm"
)

// DBLedger keeps custodial balances in ledger_balance_info rows, moved inside
// the caller's transaction so a rejected transfer aborts the whole operation.
type DBLedger struct {
	balanceDao dao.LedgerBalanceInfoDAO
}

func NewDBLedger() *DBLedger {
	return &DBLedger{balanceDao: dao.GetLedgerBalanceInfoDAOImpl()}
}

func (l *DBLedger) BalanceOf(ctx context.Context, tx *gorm.DB, token string, addr string) (*big.Int, error) {
	info, err := l.balanceDao.GetByTokenAndAddr(ctx, tx, token, addr)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return new(big.Int), nil
	}
	return utils.ParseAmount(info.Balance)
}

func (l *DBLedger) Transfer(ctx context.Context, tx *gorm.DB, token string, from string, to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errcode.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	fromInfo, err := l.balanceDao.GetByTokenAndAddr(ctx, tx, token, from, true)
	if err != nil {
		return err
	}
	if fromInfo == nil {
		return fmt.Errorf("%w: %v has no %v balance", errcode.ErrTransferFailed, from, token)
	}
	fromBalance, err := utils.ParseAmount(fromInfo.Balance)
	if err != nil {
		return err
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %v holds %v %v, needs %v",
			errcode.ErrTransferFailed, from, fromBalance, token, amount)
	}

	fromInfo.Balance = utils.FormatAmount(new(big.Int).Sub(fromBalance, amount))
	if err := l.balanceDao.Update(ctx, tx, fromInfo); err != nil {
		return err
	}

	return l.Credit(ctx, tx, token, to, amount)
}

// Credit adds amount to an address, creating the balance row on first use.
func (l *DBLedger) Credit(ctx context.Context, tx *gorm.DB, token string, addr string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errcode.ErrInvalidAmount
	}

	info, err := l.balanceDao.GetByTokenAndAddr(ctx, tx, token, addr, true)
	if err != nil {
		return err
	}
	if info == nil {
		info = &do.LedgerBalanceInfo{
			Token:   token,
			Addr:    addr,
			Balance: utils.FormatAmount(amount),
		}
		return l.balanceDao.Create(ctx, tx, info)
	}

	balance, err := utils.ParseAmount(info.Balance)
	if err != nil {
		return err
	}
	info.Balance = utils.FormatAmount(new(big.Int).Add(balance, amount))
	return l.balanceDao.Update(ctx, tx, info)
}
