package unitofwork

import (
	"context"

	"deepseek-chat-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	UserRepository() contract.UserRepository
}
