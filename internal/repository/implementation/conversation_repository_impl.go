package implementation

import (
	"context"
	"errors"
	"time"

	"deepseek-chat-be/internal/entity"
	"deepseek-chat-be/internal/mapper"
	"deepseek-chat-be/internal/model"
	"deepseek-chat-be/internal/repository/contract"
	"deepseek-chat-be/internal/repository/scope"
	"deepseek-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConversationMapper
}

func NewConversationRepository(db *gorm.DB) contract.ConversationRepository {
	return &ConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewConversationMapper(),
	}
}

func (r *ConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationRepositoryImpl) owned(ctx context.Context, id uuid.UUID, ownerId string) *gorm.DB {
	return r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}),
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: ownerId},
	)
}

func (r *ConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.Conversation) error {
	m := r.mapper.ToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ToEntity(m)
	return nil
}

func (r *ConversationRepositoryImpl) FindOwned(ctx context.Context, id uuid.UUID, ownerId string) (*entity.Conversation, error) {
	var m model.Conversation
	if err := r.owned(ctx, id, ownerId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ConversationRepositoryImpl) ListOwned(ctx context.Context, ownerId string, specs ...specification.Specification) ([]*entity.Conversation, error) {
	var models []*model.Conversation
	specs = append([]specification.Specification{specification.OwnedBy{UserID: ownerId}}, specs...)
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ConversationRepositoryImpl) CountOwned(ctx context.Context, ownerId string) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Conversation{}), specification.OwnedBy{UserID: ownerId})
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ConversationRepositoryImpl) Rename(ctx context.Context, id uuid.UUID, ownerId string, name string) (bool, error) {
	res := r.owned(ctx, id, ownerId).Updates(map[string]interface{}{
		"name":       name,
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ConversationRepositoryImpl) DeleteOwned(ctx context.Context, id uuid.UUID, ownerId string) (bool, error) {
	res := r.owned(ctx, id, ownerId).Delete(&model.Conversation{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ConversationRepositoryImpl) DeleteAllByOwnerUnscoped(ctx context.Context, ownerId string) error {
	return r.db.WithContext(ctx).
		Scopes(scope.WithSoftDelete, specification.OwnedBy{UserID: ownerId}.Apply).
		Delete(&model.Conversation{}).Error
}

func (r *ConversationRepositoryImpl) Save(ctx context.Context, conversation *entity.Conversation) error {
	now := time.Now()
	messages := r.mapper.MessagesToModel(conversation.Messages)
	res := r.owned(ctx, conversation.Id, conversation.UserId).Updates(map[string]interface{}{
		"messages":   datatypes.JSONSlice[model.ConversationMessage](messages),
		"updated_at": now,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrConversationNotFound
	}
	conversation.UpdatedAt = now
	return nil
}
