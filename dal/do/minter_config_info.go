package do

import "time"

// MinterConfigInfo is the single-row privileged configuration of the minter:
// admin identity with a pending two-step transfer slot, the emergency return
// address for recovered funds, and the committed emission rate with its
// fat-finger ceiling.
type MinterConfigInfo struct {
	ID              uint64 `gorm:"primaryKey"`
	Admin           string `gorm:"type:varchar(100);not null"`
	FutureAdmin     string `gorm:"type:varchar(100);not null;default:''"`
	EmergencyReturn string `gorm:"type:varchar(100);not null"`
	Rate            string `gorm:"type:varchar(80);not null;default:0"`
	RateCeiling     string `gorm:"type:varchar(80);not null;default:0"`
	StartTime       int64  `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
