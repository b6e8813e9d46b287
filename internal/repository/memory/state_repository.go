package memory

import (
	"time"

	"github.com/yuw136/paper-helper/internal/entity"

	"github.com/patrickmn/go-cache"
)

// StateRepository keeps recently used thread checkpoints in process memory
// so that an active conversation does not hit the database on every turn.
// The database row is still the source of truth; this is a write-through
// cache in front of it.
type StateRepository struct {
	cache *cache.Cache
}

func NewStateRepository() *StateRepository {
	// Default expiration of 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &StateRepository{
		cache: c,
	}
}

func (r *StateRepository) Save(checkpoint *entity.Checkpoint) {
	r.cache.Set(checkpoint.ThreadId, checkpoint, cache.DefaultExpiration)
}

func (r *StateRepository) Get(threadId string) (*entity.Checkpoint, bool) {
	if x, found := r.cache.Get(threadId); found {
		return x.(*entity.Checkpoint), true
	}
	return nil, false
}

func (r *StateRepository) Delete(threadId string) {
	r.cache.Delete(threadId)
}
