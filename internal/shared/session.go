package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Session is a role-scoped credential issued after a successful login.
// It is either a full grant for its role or rejected outright; expiry is
// enforced by the Redis key TTL and double-checked against the wall clock
// on load.
type Session struct {
	Token       string    `json:"-"`
	PrincipalID int64     `json:"principal_id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	EmployeeID  *int64    `json:"employee_id,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Expired reports whether the session's lifetime has passed at the given instant.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionStore keeps opaque bearer tokens mapped to session payloads in Redis.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

// Issue mints a fresh opaque token for the session and persists it with the
// configured TTL. The token is set on the returned session.
func (ss *SessionStore) Issue(ctx context.Context, sess Session) (*Session, error) {
	now := time.Now().UTC()
	sess.Token = generateToken()
	sess.IssuedAt = now
	sess.ExpiresAt = now.Add(ss.ttl)

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := ss.client.Set(ctx, ss.redisKey(sess.Token), payload, ss.ttl).Err(); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Load resolves a token to its session. Unknown or timed-out tokens fail with
// ErrSessionExpired; a Redis TTL race is covered by the wall-clock check.
func (ss *SessionStore) Load(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}
	payload, err := ss.client.Get(ctx, ss.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	sess.Token = token
	if sess.Expired(time.Now().UTC()) {
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

// Revoke deletes the token. Revoking an absent token is a no-op, so logout
// stays idempotent.
func (ss *SessionStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := ss.client.Del(ctx, ss.redisKey(token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}

// TTL exposes the configured session lifetime.
func (ss *SessionStore) TTL() time.Duration {
	return ss.ttl
}

func (ss *SessionStore) redisKey(token string) string {
	return "session:" + token
}

func generateToken() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
