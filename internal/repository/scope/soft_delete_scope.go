package scope

import "gorm.io/gorm"

// WithSoftDelete includes soft deleted rows, so a Delete through it is permanent.
func WithSoftDelete(db *gorm.DB) *gorm.DB {
	return db.Unscoped()
}
