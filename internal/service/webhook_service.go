package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"deepseek-chat-be/internal/dto"
	"deepseek-chat-be/internal/entity"
	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/internal/pkg/serverutils"
	"deepseek-chat-be/internal/repository/unitofwork"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	IdentityUserCreated = "user.created"
	IdentityUserUpdated = "user.updated"
	IdentityUserDeleted = "user.deleted"
)

// PayloadVerifier checks the svix-id / svix-timestamp / svix-signature headers.
type PayloadVerifier interface {
	Verify(payload []byte, headers http.Header) error
}

type IWebhookService interface {
	HandleIdentityEvent(ctx context.Context, payload []byte, headers http.Header) (*dto.WebhookResult, error)
}

type webhookService struct {
	uowFactory unitofwork.RepositoryFactory
	verifier   PayloadVerifier
	logger     logger.ILogger
}

// NewSvixVerifier builds the verifier for a "whsec_..." signing secret.
func NewSvixVerifier(secret string) (PayloadVerifier, error) {
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, err
	}
	return wh, nil
}

func NewWebhookService(uowFactory unitofwork.RepositoryFactory, verifier PayloadVerifier, log logger.ILogger) IWebhookService {
	return &webhookService{
		uowFactory: uowFactory,
		verifier:   verifier,
		logger:     log,
	}
}

func (s *webhookService) HandleIdentityEvent(ctx context.Context, payload []byte, headers http.Header) (*dto.WebhookResult, error) {
	if s.verifier == nil {
		return nil, serverutils.Unavailable("Webhook secret not configured", nil)
	}
	if err := s.verifier.Verify(payload, headers); err != nil {
		s.logger.Warn("WebhookService", "Rejected webhook signature", map[string]interface{}{"error": err.Error()})
		return nil, serverutils.Validation("Invalid webhook signature")
	}

	var event dto.IdentityEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, serverutils.Validation("Invalid webhook payload")
	}

	switch event.Type {
	case IdentityUserCreated, IdentityUserUpdated:
		var data dto.IdentityUserData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.Id == "" {
			return nil, serverutils.Validation("Invalid user payload")
		}
		if err := s.upsertUser(ctx, &data); err != nil {
			return nil, err
		}
	case IdentityUserDeleted:
		var data dto.IdentityDeletedData
		if err := json.Unmarshal(event.Data, &data); err != nil || data.Id == "" {
			return nil, serverutils.Validation("Invalid user payload")
		}
		if err := s.deleteUser(ctx, data.Id); err != nil {
			return nil, err
		}
	default:
		return &dto.WebhookResult{Type: event.Type, Handled: false}, nil
	}

	s.logger.Info("WebhookService", "Identity event applied", map[string]interface{}{"type": event.Type})
	return &dto.WebhookResult{Type: event.Type, Handled: true}, nil
}

func (s *webhookService) upsertUser(ctx context.Context, data *dto.IdentityUserData) error {
	now := time.Now()
	user := &entity.User{
		Id:        data.Id,
		Email:     data.PrimaryEmail(),
		Name:      strings.TrimSpace(data.FirstName + " " + data.LastName),
		ImageURL:  data.ImageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Deliveries can repeat, so user.created upserts too.
	if err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().Upsert(ctx, user); err != nil {
		return serverutils.Persistence("Failed to store user", err)
	}
	return nil
}

// deleteUser removes the user and every conversation they own in one transaction.
func (s *webhookService) deleteUser(ctx context.Context, userId string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return serverutils.Persistence("Failed to delete user", err)
	}
	defer uow.Rollback()

	if err := uow.ConversationRepository().DeleteAllByOwnerUnscoped(ctx, userId); err != nil {
		return serverutils.Persistence("Failed to delete user chats", err)
	}
	if err := uow.UserRepository().Delete(ctx, userId); err != nil {
		return serverutils.Persistence("Failed to delete user", err)
	}
	if err := uow.Commit(); err != nil {
		return serverutils.Persistence("Failed to delete user", err)
	}
	return nil
}
