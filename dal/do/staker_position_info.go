package do

import "time"

// StakerPositionInfo is one staker's durable position in one gauge. The
// integrate fraction is the staker's cumulative entitlement in emission token
// units and never decreases, even across full withdrawals.
type StakerPositionInfo struct {
	ID                   uint64 `gorm:"primaryKey"`
	GaugeID              string `gorm:"uniqueIndex:idx_pos_gauge_staker;type:varchar(100);not null"`
	Staker               string `gorm:"uniqueIndex:idx_pos_gauge_staker;type:varchar(100);not null"`
	Balance              string `gorm:"type:varchar(80);not null;default:0"`
	IntegrateInvSupplyOf string `gorm:"type:varchar(80);not null;default:0"`
	IntegrateFraction    string `gorm:"type:varchar(80);not null;default:0"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
