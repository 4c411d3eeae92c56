package contract

import (
	"context"
	"errors"

	"deepseek-chat-be/internal/entity"
	"deepseek-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrConversationNotFound is returned by Save when the owned row vanished
// between load and write.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepository is owner-scoped: every accessor takes the caller's
// user id, so there is no code path that reads or writes another user's row.
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	// FindOwned returns (nil, nil) when no row matches id and owner.
	FindOwned(ctx context.Context, id uuid.UUID, ownerId string) (*entity.Conversation, error)
	ListOwned(ctx context.Context, ownerId string, specs ...specification.Specification) ([]*entity.Conversation, error)
	CountOwned(ctx context.Context, ownerId string) (int64, error)
	Rename(ctx context.Context, id uuid.UUID, ownerId string, name string) (bool, error)
	DeleteOwned(ctx context.Context, id uuid.UUID, ownerId string) (bool, error)
	DeleteAllByOwnerUnscoped(ctx context.Context, ownerId string) error // Hard delete all
	// Save writes the full messages array of an owned conversation. The name is
	// left alone; Rename owns it.
	Save(ctx context.Context, conversation *entity.Conversation) error
}
