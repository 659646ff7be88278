package do

import "time"

type GaugeTypeInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	TypeID    int64  `gorm:"uniqueIndex:idx_type_id;not null"`
	Name      string `gorm:"type:varchar(64);not null"`
	// LastEpoch tracks the type weight series, SumLastEpoch the series of
	// summed gauge weights within the type.
	LastEpoch    int64 `gorm:"not null;default:0"`
	SumLastEpoch int64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
