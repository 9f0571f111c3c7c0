package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"medivault-be/internal/repository/contract"
	"medivault-be/pkg/store"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "medivault:session:"
	userSetKeyPrefix = "medivault:user_sessions:"
)

// SessionRepository is the Redis SessionStore backing, for deployments
// where sessions must survive a process restart. Appends are serialized
// with in-process per-session mutexes; a single API instance owns its
// sessions, matching the in-memory backing's guarantees.
type SessionRepository struct {
	client *goredis.Client
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

var _ contract.SessionStore = &SessionRepository{}

func NewSessionRepository(client *goredis.Client, ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	return &SessionRepository{
		client: client,
		ttl:    ttl,
		locks:  make(map[string]*sync.Mutex),
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

func (r *SessionRepository) load(ctx context.Context, sessionId string) (*store.Session, bool, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+sessionId).Bytes()
	if err == goredis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get session: %w", err)
	}

	var sess store.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("decode session %s: %w", sessionId, err)
	}
	return &sess, true, nil
}

func (r *SessionRepository) save(ctx context.Context, sess *store.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", sess.ID, err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, sessionKeyPrefix+sess.ID, raw, r.ttl)
	pipe.SAdd(ctx, userSetKeyPrefix+sess.UserID, sess.ID)
	pipe.Expire(ctx, userSetKeyPrefix+sess.UserID, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetOrCreate(ctx context.Context, userId uuid.UUID, sessionId string) (*store.Session, error) {
	if sessionId == "" {
		sessionId = uuid.NewString()
	}

	l := r.lockFor(sessionId)
	l.Lock()
	defer l.Unlock()

	sess, found, err := r.load(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if found {
		return sess, nil
	}

	now := time.Now()
	sess = &store.Session{
		ID:        sessionId,
		UserID:    userId.String(),
		Turns:     []store.Turn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

func (r *SessionRepository) Get(ctx context.Context, sessionId string) (*store.Session, bool, error) {
	return r.load(ctx, sessionId)
}

func (r *SessionRepository) Append(ctx context.Context, sessionId, role, text string) (*store.Session, error) {
	l := r.lockFor(sessionId)
	l.Lock()
	defer l.Unlock()

	sess, found, err := r.load(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("session %s not found", sessionId)
	}

	sess.Turns = append(sess.Turns, store.Turn{
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	})
	sess.UpdatedAt = time.Now()

	if err := r.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userId uuid.UUID) ([]*store.Session, error) {
	ids, err := r.client.SMembers(ctx, userSetKeyPrefix+userId.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list sessions: %w", err)
	}

	sessions := make([]*store.Session, 0, len(ids))
	for _, id := range ids {
		sess, found, err := r.load(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found {
			// Expired session still referenced by the user set
			r.client.SRem(ctx, userSetKeyPrefix+userId.String(), id)
			continue
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (r *SessionRepository) Delete(ctx context.Context, sessionId string) error {
	l := r.lockFor(sessionId)
	l.Lock()
	defer l.Unlock()

	sess, found, err := r.load(ctx, sessionId)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, sessionKeyPrefix+sessionId)
	if found {
		pipe.SRem(ctx, userSetKeyPrefix+sess.UserID, sessionId)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}

	// The lock entry stays in the map so a racing Append or recreate under
	// the same id keeps serializing on the same mutex.
	return nil
}
