package memory

import (
	"testing"
	"time"

	"deepseek-chat-be/internal/dto"

	"github.com/stretchr/testify/assert"
)

func TestStatusRepository(t *testing.T) {
	repo := NewStatusRepository(time.Minute)

	_, found := repo.Get()
	assert.False(t, found)

	repo.Save(&dto.StatusResponse{Success: true, PrimaryAPI: "DeepSeek"})
	got, found := repo.Get()
	assert.True(t, found)
	assert.Equal(t, "DeepSeek", got.PrimaryAPI)
}

func TestStatusRepositoryExpires(t *testing.T) {
	repo := NewStatusRepository(10 * time.Millisecond)
	repo.Save(&dto.StatusResponse{})

	assert.Eventually(t, func() bool {
		_, found := repo.Get()
		return !found
	}, time.Second, 5*time.Millisecond)
}
