package contract

import (
	"context"

	"deepseek-chat-be/internal/entity"
)

type UserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id string) error
}
