package implementation

import (
	"context"
	"testing"
	"time"

	"deepseek-chat-be/internal/entity"
	"deepseek-chat-be/internal/pkg/testutil"
	"deepseek-chat-be/internal/repository/contract"
	"deepseek-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConversation(t *testing.T, repo contract.ConversationRepository, owner string) *entity.Conversation {
	t.Helper()
	c := entity.NewConversation(owner, time.Now())
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestConversationRepository_OwnerScoping(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testutil.NewTestDB(t))

	mine := newConversation(t, repo, "user_a")

	found, err := repo.FindOwned(ctx, mine.Id, "user_a")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "user_a", found.UserId)
	assert.Equal(t, entity.DefaultConversationName, found.Name)
	assert.Empty(t, found.Messages)

	other, err := repo.FindOwned(ctx, mine.Id, "user_b")
	require.NoError(t, err)
	assert.Nil(t, other)

	missing, err := repo.FindOwned(ctx, uuid.New(), "user_a")
	require.NoError(t, err)
	assert.Nil(t, missing)

	renamed, err := repo.Rename(ctx, mine.Id, "user_b", "hijack")
	require.NoError(t, err)
	assert.False(t, renamed)

	deleted, err := repo.DeleteOwned(ctx, mine.Id, "user_b")
	require.NoError(t, err)
	assert.False(t, deleted)

	stolen := *found
	stolen.UserId = "user_b"
	stolen.Name = "stolen"
	assert.ErrorIs(t, repo.Save(ctx, &stolen), contract.ErrConversationNotFound)

	found, err = repo.FindOwned(ctx, mine.Id, "user_a")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultConversationName, found.Name)
}

func TestConversationRepository_SaveMessages(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testutil.NewTestDB(t))
	c := newConversation(t, repo, "user_a")
	before := c.UpdatedAt

	time.Sleep(5 * time.Millisecond)
	_, err := c.AppendMessage(entity.MessageRoleUser, "Hello", time.UnixMilli(1))
	require.NoError(t, err)
	_, err = c.AppendMessage(entity.MessageRoleAssistant, "Hi there", time.UnixMilli(2))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindOwned(ctx, c.Id, "user_a")
	require.NoError(t, err)
	require.Len(t, loaded.Messages, 2)
	assert.Equal(t, entity.Message{Role: "user", Content: "Hello", Timestamp: 1}, loaded.Messages[0])
	assert.Equal(t, entity.Message{Role: "assistant", Content: "Hi there", Timestamp: 2}, loaded.Messages[1])
	assert.True(t, loaded.UpdatedAt.After(before))
}

func TestConversationRepository_SaveKeepsName(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testutil.NewTestDB(t))
	c := newConversation(t, repo, "user_a")

	renamed, err := repo.Rename(ctx, c.Id, "user_a", "Trip")
	require.NoError(t, err)
	require.True(t, renamed)

	// c still carries the name it was loaded with
	_, err = c.AppendMessage(entity.MessageRoleUser, "Hello", time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, c))

	loaded, err := repo.FindOwned(ctx, c.Id, "user_a")
	require.NoError(t, err)
	assert.Equal(t, "Trip", loaded.Name)
	assert.Len(t, loaded.Messages, 1)
}

func TestConversationRepository_ListOwned(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testutil.NewTestDB(t))

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		c := newConversation(t, repo, "user_a")
		ids = append(ids, c.Id)
		time.Sleep(2 * time.Millisecond)
	}
	newConversation(t, repo, "user_b")

	// touch the oldest so it becomes the most recently updated
	renamed, err := repo.Rename(ctx, ids[0], "user_a", "bumped")
	require.NoError(t, err)
	assert.True(t, renamed)

	total, err := repo.CountOwned(ctx, "user_a")
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	page, err := repo.ListOwned(ctx, "user_a", specification.DefaultConversationSort, specification.Page(1, 2))
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[0], page[0].Id)
	assert.Equal(t, "bumped", page[0].Name)
	assert.Equal(t, ids[4], page[1].Id)

	last, err := repo.ListOwned(ctx, "user_a", specification.OrderBy{Field: "created_at"}, specification.Page(3, 2))
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, ids[4], last[0].Id)

	for _, c := range page {
		assert.Equal(t, "user_a", c.UserId)
	}
}

func TestConversationRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository(testutil.NewTestDB(t))
	c := newConversation(t, repo, "user_a")
	newConversation(t, repo, "user_a")

	deleted, err := repo.DeleteOwned(ctx, c.Id, "user_a")
	require.NoError(t, err)
	assert.True(t, deleted)

	found, err := repo.FindOwned(ctx, c.Id, "user_a")
	require.NoError(t, err)
	assert.Nil(t, found)
	assert.ErrorIs(t, repo.Save(ctx, c), contract.ErrConversationNotFound)

	require.NoError(t, repo.DeleteAllByOwnerUnscoped(ctx, "user_a"))
	total, err := repo.CountOwned(ctx, "user_a")
	require.NoError(t, err)
	assert.Zero(t, total)
}
