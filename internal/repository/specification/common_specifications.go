package specification

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByID filters by ID
type ByID struct {
	ID uuid.UUID
}

func (s ByID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

// OrderBy applies ordering. Field must be a trusted column name.
type OrderBy struct {
	Field string
	Desc  bool
}

func (s OrderBy) Apply(db *gorm.DB) *gorm.DB {
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}
	return db.Order(fmt.Sprintf("%s %s", s.Field, direction))
}

// Pagination
type Pagination struct {
	Limit  int
	Offset int
}

func (s Pagination) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.Limit).Offset(s.Offset)
}

// MaxOffset bounds the row offset a Pagination may produce.
const MaxOffset = math.MaxInt32

// Page converts a 1-based page number into a Pagination. Pages beyond
// MaxOffset are clamped so the offset never overflows.
func Page(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit > 0 && page-1 > MaxOffset/limit {
		page = MaxOffset/limit + 1
	}
	return Pagination{Limit: limit, Offset: (page - 1) * limit}
}
