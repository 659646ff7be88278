package do

import "time"

type GaugeInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	GaugeID   string `gorm:"uniqueIndex:idx_gauge_id;type:varchar(100);not null"`
	TypeID    int64  `gorm:"index;not null"`
	LastEpoch int64  `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
