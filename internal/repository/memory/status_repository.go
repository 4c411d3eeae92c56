package memory

import (
	"time"

	"deepseek-chat-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

const statusKey = "backends"

// StatusRepository remembers the last backend probe for a short TTL.
type StatusRepository struct {
	cache *cache.Cache
}

func NewStatusRepository(ttl time.Duration) *StatusRepository {
	return &StatusRepository{
		cache: cache.New(ttl, 2*ttl),
	}
}

func (r *StatusRepository) Save(status *dto.StatusResponse) {
	r.cache.Set(statusKey, status, cache.DefaultExpiration)
}

func (r *StatusRepository) Get() (*dto.StatusResponse, bool) {
	if x, found := r.cache.Get(statusKey); found {
		return x.(*dto.StatusResponse), true
	}
	return nil, false
}
