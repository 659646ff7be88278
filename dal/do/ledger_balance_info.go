package do

import "time"

// LedgerBalanceInfo is one custodial token balance: the amount of Token held
// for Addr. The emission and staking ledgers both persist through this table.
type LedgerBalanceInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	Token     string `gorm:"uniqueIndex:idx_ledger_token_addr;type:varchar(64);not null"`
	Addr      string `gorm:"uniqueIndex:idx_ledger_token_addr;type:varchar(100);not null"`
	Balance   string `gorm:"type:varchar(80);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
