package memory

import (
	"time"

	"hr-assistant-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps live sessions in a TTL cache. Expired sessions
// are purged by the cache janitor and by explicit DeleteExpired sweeps.
type SessionRepository struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	c := cache.New(ttl, ttl/6)
	return &SessionRepository{
		cache: c,
		ttl:   ttl,
	}
}

// Save stores the session and refreshes its TTL.
func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*store.Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

// DeleteExpired removes every session past its TTL.
func (r *SessionRepository) DeleteExpired() {
	r.cache.DeleteExpired()
}

// Count reports the number of live sessions.
func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
