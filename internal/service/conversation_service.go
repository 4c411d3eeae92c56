package service

import (
	"context"
	"errors"
	"time"

	"deepseek-chat-be/internal/dto"
	"deepseek-chat-be/internal/entity"
	"deepseek-chat-be/internal/pkg/logger"
	"deepseek-chat-be/internal/pkg/serverutils"
	"deepseek-chat-be/internal/repository/contract"
	"deepseek-chat-be/internal/repository/specification"
	"deepseek-chat-be/internal/repository/unitofwork"
	"deepseek-chat-be/pkg/events"
	"deepseek-chat-be/pkg/llm"
	"deepseek-chat-be/pkg/llm/gateway"

	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Completer produces the assistant reply for a history. Implemented by gateway.Gateway.
type Completer interface {
	Configured() bool
	Generate(ctx context.Context, history []llm.Message) (*gateway.Result, error)
}

type IConversationService interface {
	Create(ctx context.Context, userId string) (*dto.CreateConversationResponse, error)
	List(ctx context.Context, userId string, req *dto.ListConversationsRequest) (*dto.ListConversationsResponse, error)
	GetById(ctx context.Context, userId string, id uuid.UUID) (*dto.ConversationResponse, error)
	Rename(ctx context.Context, userId string, req *dto.RenameConversationRequest) error
	Delete(ctx context.Context, userId string, req *dto.DeleteConversationRequest) error
	AppendAndGenerate(ctx context.Context, userId string, req *dto.CompletionRequest) (*dto.CompletionResponse, error)
	EditMessage(ctx context.Context, userId string, req *dto.EditMessageRequest) (*dto.MessageResponse, error)
	DeleteMessage(ctx context.Context, userId string, req *dto.DeleteMessageRequest) (*dto.DeleteMessageResponse, error)
}

type conversationService struct {
	uowFactory       unitofwork.RepositoryFactory
	completer        Completer
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	completer Completer,
	publisherService IPublisherService,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		uowFactory:       uowFactory,
		completer:        completer,
		publisherService: publisherService,
		logger:           log,
	}
}

func requireUser(userId string) error {
	if userId == "" {
		return serverutils.Unauthenticated("User not authenticated")
	}
	return nil
}

func (s *conversationService) Create(ctx context.Context, userId string) (*dto.CreateConversationResponse, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}

	conversation := entity.NewConversation(userId, time.Now())

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ConversationRepository().Create(ctx, conversation); err != nil {
		return nil, serverutils.Persistence("Failed to create chat", err)
	}

	s.publish(ctx, events.ConversationCreated, conversation, map[string]interface{}{"name": conversation.Name})

	return &dto.CreateConversationResponse{Id: conversation.Id}, nil
}

func (s *conversationService) List(ctx context.Context, userId string, req *dto.ListConversationsRequest) (*dto.ListConversationsResponse, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}

	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository()

	total, err := repo.CountOwned(ctx, userId)
	if err != nil {
		return nil, serverutils.Persistence("Failed to fetch chats", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	result := make([]*dto.ConversationResponse, 0, limit)

	// Past the last page there is nothing to fetch.
	if page <= totalPages {
		conversations, err := repo.ListOwned(ctx, userId,
			specification.SortFromQuery(req.Sort),
			specification.Page(page, limit),
		)
		if err != nil {
			return nil, serverutils.Persistence("Failed to fetch chats", err)
		}
		for _, c := range conversations {
			result = append(result, toConversationResponse(c))
		}
	}

	return &dto.ListConversationsResponse{
		Conversations: result,
		Pagination: dto.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *conversationService) GetById(ctx context.Context, userId string, id uuid.UUID) (*dto.ConversationResponse, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}

	conversation, err := s.findOwned(ctx, s.uowFactory.NewUnitOfWork(ctx), id, userId)
	if err != nil {
		return nil, err
	}
	return toConversationResponse(conversation), nil
}

// Rename succeeds even when nothing matched: update-if-exists.
func (s *conversationService) Rename(ctx context.Context, userId string, req *dto.RenameConversationRequest) error {
	if err := requireUser(userId); err != nil {
		return err
	}

	found, err := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository().Rename(ctx, req.ChatId, userId, req.Name)
	if err != nil {
		return serverutils.Persistence("Failed to rename chat", err)
	}
	if found {
		s.publishFor(ctx, events.ConversationRenamed, userId, req.ChatId, map[string]interface{}{"name": req.Name})
	}
	return nil
}

func (s *conversationService) Delete(ctx context.Context, userId string, req *dto.DeleteConversationRequest) error {
	if err := requireUser(userId); err != nil {
		return err
	}

	found, err := s.uowFactory.NewUnitOfWork(ctx).ConversationRepository().DeleteOwned(ctx, req.ChatId, userId)
	if err != nil {
		return serverutils.Persistence("Failed to delete chat", err)
	}
	if found {
		s.publishFor(ctx, events.ConversationDeleted, userId, req.ChatId, nil)
	}
	return nil
}

// AppendAndGenerate persists the user turn before calling the model, so a
// model failure leaves an unanswered user message behind.
func (s *conversationService) AppendAndGenerate(ctx context.Context, userId string, req *dto.CompletionRequest) (*dto.CompletionResponse, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}
	if !s.completer.Configured() {
		return nil, serverutils.Unavailable("No API configured", gateway.ErrNotConfigured)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ConversationRepository()

	conversation, err := s.findOwned(ctx, uow, req.ChatId, userId)
	if err != nil {
		return nil, err
	}

	userMessage, err := conversation.AppendMessage(entity.MessageRoleUser, req.Prompt, time.Now())
	if err != nil {
		return nil, serverutils.Validation(err.Error())
	}
	if err := s.save(ctx, repo, conversation); err != nil {
		return nil, err
	}
	s.publish(ctx, events.MessageAppended, conversation, messagePayload(conversation.MessageCount()-1, userMessage))

	history := make([]llm.Message, len(conversation.Messages))
	for i, m := range conversation.Messages {
		history[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	result, err := s.completer.Generate(ctx, history)
	if err != nil {
		s.logger.Error("ConversationService", "Completion failed", map[string]interface{}{
			"chat_id": conversation.Id.String(),
			"error":   err,
		})
		return nil, completionError(err)
	}

	assistantMessage, err := conversation.AppendMessage(entity.MessageRoleAssistant, result.Content, time.Now())
	if err != nil {
		return nil, serverutils.Upstream("Empty response from model", err)
	}
	if err := s.save(ctx, repo, conversation); err != nil {
		return nil, serverutils.Persistence("Failed to save chat history", err)
	}

	s.logger.Info("ConversationService", "Chat updated", map[string]interface{}{
		"chat_id":       conversation.Id.String(),
		"message_count": conversation.MessageCount(),
		"api_used":      result.Backend,
	})
	payload := messagePayload(conversation.MessageCount()-1, assistantMessage)
	payload["api_used"] = result.Backend
	s.publish(ctx, events.MessageGenerated, conversation, payload)

	return &dto.CompletionResponse{
		Message:      toMessageResponse(assistantMessage),
		ApiUsed:      result.Backend,
		MessageCount: conversation.MessageCount(),
	}, nil
}

func (s *conversationService) EditMessage(ctx context.Context, userId string, req *dto.EditMessageRequest) (*dto.MessageResponse, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := s.findOwned(ctx, uow, req.ChatId, userId)
	if err != nil {
		return nil, err
	}

	idx := *req.MessageIndex
	edited, err := conversation.EditMessage(idx, req.NewContent, time.Now())
	if err != nil {
		return nil, serverutils.Validation(err.Error())
	}
	if err := s.save(ctx, uow.ConversationRepository(), conversation); err != nil {
		return nil, err
	}

	s.publish(ctx, events.MessageEdited, conversation, messagePayload(idx, edited))

	res := toMessageResponse(edited)
	return &res, nil
}

func (s *conversationService) DeleteMessage(ctx context.Context, userId string, req *dto.DeleteMessageRequest) (*dto.DeleteMessageResponse, error) {
	if err := requireUser(userId); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := s.findOwned(ctx, uow, req.ChatId, userId)
	if err != nil {
		return nil, err
	}

	idx := *req.MessageIndex
	if err := conversation.DeleteMessage(idx); err != nil {
		return nil, serverutils.Validation(err.Error())
	}
	if err := s.save(ctx, uow.ConversationRepository(), conversation); err != nil {
		return nil, err
	}

	s.publish(ctx, events.MessageDeleted, conversation, map[string]interface{}{
		"message_index":      idx,
		"remaining_messages": conversation.MessageCount(),
	})

	return &dto.DeleteMessageResponse{RemainingMessages: conversation.MessageCount()}, nil
}

func (s *conversationService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, id uuid.UUID, userId string) (*entity.Conversation, error) {
	conversation, err := uow.ConversationRepository().FindOwned(ctx, id, userId)
	if err != nil {
		return nil, serverutils.Persistence("Failed to fetch chat", err)
	}
	if conversation == nil {
		return nil, serverutils.NotFound("Chat not found")
	}
	return conversation, nil
}

func (s *conversationService) save(ctx context.Context, repo contract.ConversationRepository, conversation *entity.Conversation) error {
	err := repo.Save(ctx, conversation)
	if errors.Is(err, contract.ErrConversationNotFound) {
		return serverutils.NotFound("Chat not found")
	}
	if err != nil {
		return serverutils.Persistence("Failed to save chat", err)
	}
	return nil
}

// publish is best-effort: a lost live update never fails the request.
func (s *conversationService) publish(ctx context.Context, eventType string, c *entity.Conversation, data map[string]interface{}) {
	s.publishFor(ctx, eventType, c.UserId, c.Id, data)
}

func (s *conversationService) publishFor(ctx context.Context, eventType, userId string, chatId uuid.UUID, data map[string]interface{}) {
	if s.publisherService == nil {
		return
	}
	evt := events.NewConversationEvent(eventType, userId, chatId.String(), data)
	if err := s.publisherService.Publish(ctx, evt); err != nil {
		s.logger.Warn("ConversationService", "Failed to publish event", map[string]interface{}{
			"type":  eventType,
			"error": err.Error(),
		})
	}
}

// completionError keeps the upstream status visible: rate limits stay 429.
func completionError(err error) error {
	message := gateway.Describe(err)
	var both *gateway.BothFailedError
	switch {
	case errors.Is(err, gateway.ErrNotConfigured):
		return serverutils.Unavailable("No API configured", err)
	case errors.As(err, &both):
		return serverutils.Upstream(message, err)
	case llm.IsRateLimited(err):
		return serverutils.TooManyRequests(message, err)
	}
	return serverutils.Upstream(message, err)
}

func messagePayload(idx int, m entity.Message) map[string]interface{} {
	return map[string]interface{}{
		"message_index": idx,
		"role":          m.Role,
		"content":       m.Content,
		"timestamp":     m.Timestamp,
	}
}

func toMessageResponse(m entity.Message) dto.MessageResponse {
	return dto.MessageResponse{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
}

func toConversationResponse(c *entity.Conversation) *dto.ConversationResponse {
	messages := make([]dto.MessageResponse, len(c.Messages))
	for i, m := range c.Messages {
		messages[i] = toMessageResponse(m)
	}
	return &dto.ConversationResponse{
		Id:        c.Id,
		UserId:    c.UserId,
		Name:      c.Name,
		Messages:  messages,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
