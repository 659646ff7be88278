package do

import "time"

// ControllerMetaInfo is the single-row bookkeeping state of the weight
// controller: how many gauge types exist and how far the global total weight
// series has been filled.
type ControllerMetaInfo struct {
	ID             uint64 `gorm:"primaryKey"`
	TypeCount      int64  `gorm:"not null;default:0"`
	TotalLastEpoch int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
