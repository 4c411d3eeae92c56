package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ConversationMessage is one element of the messages JSON array.
type ConversationMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type Conversation struct {
	Id        uuid.UUID                                `gorm:"type:uuid;primaryKey"`
	UserId    string                                   `gorm:"type:varchar(255);not null;index"` // Owner, every query filters on it
	Name      string                                   `gorm:"type:text;not null"`
	Messages  datatypes.JSONSlice[ConversationMessage] `gorm:"not null"`
	CreatedAt time.Time                                `gorm:"autoCreateTime"`
	UpdatedAt time.Time                                `gorm:"autoUpdateTime;index"`
	DeletedAt gorm.DeletedAt                           `gorm:"index"`
}

func (Conversation) TableName() string {
	return "conversations"
}
