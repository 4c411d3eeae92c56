package specification

import (
	"strings"

	"gorm.io/gorm"
)

// OwnedBy restricts a query to rows belonging to one identity-provider user.
type OwnedBy struct {
	UserID string
}

func (s OwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

// Only these client-facing sort keys map onto columns; anything else is ignored.
var sortableConversationFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
}

// DefaultConversationSort is most recently updated first.
var DefaultConversationSort = OrderBy{Field: "updated_at", Desc: true}

// SortFromQuery parses "field" or "-field" (descending) into an OrderBy,
// falling back to DefaultConversationSort for unknown or empty input.
func SortFromQuery(sort string) OrderBy {
	sort = strings.TrimSpace(sort)
	desc := strings.HasPrefix(sort, "-")
	column, ok := sortableConversationFields[strings.TrimPrefix(sort, "-")]
	if !ok {
		return DefaultConversationSort
	}
	return OrderBy{Field: column, Desc: desc}
}
