package do

import "time"

// WeightPointInfo is one point of a piecewise-constant weight series. A row
// at epoch E holds the value effective from E until the next stored point.
// Kind distinguishes gauge weights, per-type weight sums, type weights and
// the global total (constdef.WeightKind*); Ref is the gauge id, the decimal
// type id, or empty for the global total.
type WeightPointInfo struct {
	ID        uint64 `gorm:"primaryKey"`
	Kind      int    `gorm:"uniqueIndex:idx_kind_ref_epoch;not null"`
	Ref       string `gorm:"uniqueIndex:idx_kind_ref_epoch;type:varchar(100);not null"`
	Epoch     int64  `gorm:"uniqueIndex:idx_kind_ref_epoch;not null"`
	Weight    string `gorm:"type:varchar(80);not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
