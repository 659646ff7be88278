package do

import "time"

// MintRecordInfo records the cumulative amount already paid to a staker for
// one gauge. Minted only ever increases and never exceeds the staker's
// integrate fraction.
type MintRecordInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	Staker    string `gorm:"uniqueIndex:idx_mint_staker_gauge;type:varchar(100);not null"`
	GaugeID   string `gorm:"uniqueIndex:idx_mint_staker_gauge;type:varchar(100);not null"`
	Minted    string `gorm:"type:varchar(80);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
