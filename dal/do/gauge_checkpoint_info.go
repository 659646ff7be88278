package do

import "time"

// GaugeCheckpointInfo is the durable accrual state of one gauge: the unix
// time of the last checkpoint, the cumulative reward-per-staked-unit integral
// (1e18-scaled decimal string) and the total staked amount.
type GaugeCheckpointInfo struct {
	ID                 uint64 `gorm:"primaryKey"`
	GaugeID            string `gorm:"uniqueIndex:idx_ckpt_gauge_id;type:varchar(100);not null"`
	CheckpointTime     int64  `gorm:"not null;default:0"`
	IntegrateInvSupply string `gorm:"type:varchar(80);not null;default:0"`
	TotalStaked        string `gorm:"type:varchar(80);not null;default:0"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
