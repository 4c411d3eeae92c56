package entity

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
	MessageRoleSystem    = "system"

	DefaultConversationName = "New Chat"
)

var (
	ErrMessageIndexOutOfRange = errors.New("invalid message index")
	ErrEmptyContent           = errors.New("message content must not be empty")
)

// Message has no identity of its own: it is addressed by its position in
// Conversation.Messages, and deleting one shifts every later index down.
type Message struct {
	Role      string
	Content   string
	Timestamp int64 // milliseconds since epoch
}

type Conversation struct {
	Id        uuid.UUID
	UserId    string
	Name      string
	Messages  []Message
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

func NewConversation(userId string, now time.Time) *Conversation {
	return &Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Name:      DefaultConversationName,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// AppendMessage adds a message at the end of the thread and returns a copy of it.
func (c *Conversation) AppendMessage(role, content string, at time.Time) (Message, error) {
	if strings.TrimSpace(content) == "" {
		return Message{}, ErrEmptyContent
	}
	msg := Message{Role: role, Content: content, Timestamp: at.UnixMilli()}
	c.Messages = append(c.Messages, msg)
	return msg, nil
}

// EditMessage replaces the (trimmed) content at idx and refreshes its timestamp.
func (c *Conversation) EditMessage(idx int, content string, at time.Time) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, ErrEmptyContent
	}
	if !c.validIndex(idx) {
		return Message{}, ErrMessageIndexOutOfRange
	}
	c.Messages[idx].Content = content
	c.Messages[idx].Timestamp = at.UnixMilli()
	return c.Messages[idx], nil
}

// DeleteMessage removes the message at idx.
func (c *Conversation) DeleteMessage(idx int) error {
	if !c.validIndex(idx) {
		return ErrMessageIndexOutOfRange
	}
	c.Messages = append(c.Messages[:idx:idx], c.Messages[idx+1:]...)
	return nil
}

func (c *Conversation) validIndex(idx int) bool {
	return idx >= 0 && idx < len(c.Messages)
}
