package dao

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withLock applies SELECT ... FOR UPDATE when the dialect supports row
// locking. SQLite serializes writers on its own and rejects the clause, so
// it is skipped there.
func withLock(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
