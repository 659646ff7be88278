package do

import "time"

// MintEventInfo is an append-only audit row for a successful payment. The
// event hash keys the row so a replayed write of the same event is rejected
// by the unique index instead of double-recorded.
type MintEventInfo struct {
	ID          uint64 `gorm:"primaryKey"`
	Staker      string `gorm:"index;type:varchar(100);not null"`
	GaugeID     string `gorm:"index;type:varchar(100);not null"`
	Amount      string `gorm:"type:varchar(80);not null;default:0"`
	MintedTotal string `gorm:"type:varchar(80);not null;default:0"`
	EventHash   string `gorm:"uniqueIndex:idx_mint_event_hash;type:varchar(64);not null"`
	CreatedAt   time.Time
}
