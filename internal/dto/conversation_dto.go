package dto

import (
	"time"

	"github.com/google/uuid"
)

type MessageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

type ConversationResponse struct {
	Id        uuid.UUID         `json:"id"`
	UserId    string            `json:"userId"`
	Name      string            `json:"name"`
	Messages  []MessageResponse `json:"messages"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

type CreateConversationResponse struct {
	Id uuid.UUID `json:"id"`
}

type ListConversationsRequest struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Sort  string `query:"sort"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListConversationsResponse struct {
	Conversations []*ConversationResponse
	Pagination    Pagination
}

type RenameConversationRequest struct {
	ChatId uuid.UUID `json:"chatId" validate:"required"`
	Name   string    `json:"name" validate:"required,notblank"`
}

type DeleteConversationRequest struct {
	ChatId uuid.UUID `json:"chatId" validate:"required"`
}

type CompletionRequest struct {
	ChatId uuid.UUID `json:"chatId" validate:"required"`
	Prompt string    `json:"prompt" validate:"required,notblank"`
}

type CompletionResponse struct {
	Message      MessageResponse
	ApiUsed      string
	MessageCount int
}

// MessageIndex is a pointer so that a missing index is distinguishable from 0.
type EditMessageRequest struct {
	ChatId       uuid.UUID `json:"chatId" validate:"required"`
	MessageIndex *int      `json:"messageIndex" validate:"required"`
	NewContent   string    `json:"newContent" validate:"required,notblank"`
}

type DeleteMessageRequest struct {
	ChatId       uuid.UUID `json:"chatId" validate:"required"`
	MessageIndex *int      `json:"messageIndex" validate:"required"`
}

type DeleteMessageResponse struct {
	RemainingMessages int `json:"remainingMessages"`
}
