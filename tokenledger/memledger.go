package tokenledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/gaugesuite/emission-gauge-server/errcode"

	"gorm.io/gorm"
)

// MemLedger is an in-memory Ledger for unit tests and simulation runs. It
// ignores the transaction handle, so it must not be mixed with code that
// relies on rollback of ledger effects.
type MemLedger struct {
	mtx      sync.Mutex
	balances map[string]map[string]*big.Int
}

func NewMemLedger() *MemLedger {
	return &MemLedger{balances: make(map[string]map[string]*big.Int)}
}

func (l *MemLedger) BalanceOf(ctx context.Context, tx *gorm.DB, token string, addr string) (*big.Int, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if m, ok := l.balances[token]; ok {
		if v, ok := m[addr]; ok {
			return new(big.Int).Set(v), nil
		}
	}
	return new(big.Int), nil
}

func (l *MemLedger) Transfer(ctx context.Context, tx *gorm.DB, token string, from string, to string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errcode.ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	m := l.balances[token]
	if m == nil || m[from] == nil || m[from].Cmp(amount) < 0 {
		return fmt.Errorf("%w: %v short of %v %v", errcode.ErrTransferFailed, from, amount, token)
	}
	m[from].Sub(m[from], amount)
	l.creditLocked(token, to, amount)
	return nil
}

func (l *MemLedger) Credit(ctx context.Context, tx *gorm.DB, token string, addr string, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errcode.ErrInvalidAmount
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.creditLocked(token, addr, amount)
	return nil
}

func (l *MemLedger) creditLocked(token string, addr string, amount *big.Int) {
	m := l.balances[token]
	if m == nil {
		m = make(map[string]*big.Int)
		l.balances[token] = m
	}
	if m[addr] == nil {
		m[addr] = new(big.Int)
	}
	m[addr].Add(m[addr], amount)
}
