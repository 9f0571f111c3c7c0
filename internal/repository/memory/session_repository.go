package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"medivault-be/internal/repository/contract"
	"medivault-be/pkg/store"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// SessionRepository is the in-memory SessionStore backing. The cache
// handles expiry; per-session mutexes serialize appends so concurrent
// turns land in arrival order.
type SessionRepository struct {
	cache *cache.Cache

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ contract.SessionStore = &SessionRepository{}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	// Purge expired sessions every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
		locks: make(map[string]*sync.Mutex),
	}
}

func (r *SessionRepository) lockFor(sessionId string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[sessionId]
	if !ok {
		l = &sync.Mutex{}
		r.locks[sessionId] = l
	}
	return l
}

func (r *SessionRepository) GetOrCreate(ctx context.Context, userId uuid.UUID, sessionId string) (*store.Session, error) {
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	l := r.lockFor(sessionId)
	l.Lock()
	defer l.Unlock()

	if x, found := r.cache.Get(sessionId); found {
		return x.(*store.Session).Clone(), nil
	}

	now := time.Now()
	sess := &store.Session{
		ID:        sessionId,
		UserID:    userId.String(),
		Turns:     []store.Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.cache.Set(sessionId, sess, cache.DefaultExpiration)
	return sess.Clone(), nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*store.Session, bool, error) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*store.Session).Clone(), true, nil
	}
	return nil, false, nil
}

func (r *SessionRepository) Append(ctx context.Context, sessionId, role, text string) (*store.Session, error) {
	l := r.lockFor(sessionId)
	l.Lock()
	defer l.Unlock()

	x, found := r.cache.Get(sessionId)
	if !found {
		return nil, fmt.Errorf("session %s not found", sessionId)
	}

	// Mutate a copy and swap it in, so values handed out earlier stay stable
	sess := x.(*store.Session).Clone()
	sess.Turns = append(sess.Turns, store.Turn{
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	})
	sess.UpdatedAt = time.Now()
	r.cache.Set(sessionId, sess, cache.DefaultExpiration)

	return sess.Clone(), nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userId uuid.UUID) ([]*store.Session, error) {
	uid := userId.String()
	sessions := make([]*store.Session, 0)
	for _, item := range r.cache.Items() {
		sess, ok := item.Object.(*store.Session)
		if !ok || sess.UserID != uid {
			continue
		}
		sessions = append(sessions, sess.Clone())
	}
	return sessions, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionId string) error {
	l := r.lockFor(sessionId)
	l.Lock()
	defer l.Unlock()

	// The lock entry stays in the map: an Append racing this delete (or a
	// recreate under the same id) must serialize on the same mutex, not a
	// fresh one. Entries are bounded by distinct session ids seen.
	r.cache.Delete(sessionId)
	return nil
}
