package implementation

import (
	"context"
	"testing"

	"deepseek-chat-be/internal/entity"
	"deepseek-chat-be/internal/model"
	"deepseek-chat-be/internal/pkg/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_UpsertAndDelete(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Upsert(ctx, &entity.User{Id: "user_1", Email: "a@example.com", Name: "Ada Lovelace"}))
	require.NoError(t, repo.Upsert(ctx, &entity.User{Id: "user_1", Email: "ada@example.com", Name: "Ada King"}))

	var users []model.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "ada@example.com", users[0].Email)
	assert.Equal(t, "Ada King", users[0].Name)

	require.NoError(t, repo.Delete(ctx, "user_1"))
	var count int64
	require.NoError(t, db.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
