package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/domain"
)

// SessionStore keeps one bearer token per browsing context. Every tab of a
// context shares the key; Set and Clear publish a TokenChange so the other
// tabs learn about logins and logouts.
type SessionStore struct {
	c       *redis.Client
	key     string
	channel string
	origin  string
	ttl     time.Duration
	now     func() time.Time
}

// Sessions hands out per-context stores over one client. A zero ttl keeps
// tokens until they are cleared.
type Sessions struct {
	c      *redis.Client
	prefix string
	ttl    time.Duration
}

func NewSessions(c *redis.Client, prefix string, ttl time.Duration) *Sessions {
	if prefix == "" {
		prefix = "hotelapp"
	}
	return &Sessions{c: c, prefix: prefix, ttl: ttl}
}

// For returns the store of browsing context ctxID. origin tags the changes
// this handle publishes so a tab can ignore its own echoes.
func (s *Sessions) For(ctxID, origin string) *SessionStore {
	base := s.prefix + ":" + ctxID + ":token"
	return &SessionStore{
		c:       s.c,
		key:     base,
		channel: base + ":events",
		origin:  origin,
		ttl:     s.ttl,
		now:     time.Now,
	}
}

func (st *SessionStore) Key() string     { return st.key }
func (st *SessionStore) Channel() string { return st.channel }

func (st *SessionStore) Get(ctx context.Context) (string, bool, error) {
	v, err := st.c.Get(ctx, st.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, v != "", nil
}

func (st *SessionStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return st.Clear(ctx)
	}
	if err := st.c.Set(ctx, st.key, token, st.ttl).Err(); err != nil {
		return err
	}
	observability.ObserveSession("set")
	return st.publish(ctx, domain.TokenChange{Token: token})
}

func (st *SessionStore) Clear(ctx context.Context) error {
	if err := st.c.Del(ctx, st.key).Err(); err != nil {
		return err
	}
	observability.ObserveSession("clear")
	return st.publish(ctx, domain.TokenChange{Cleared: true})
}

func (st *SessionStore) publish(ctx context.Context, ch domain.TokenChange) error {
	ch.Origin = st.origin
	ch.At = st.now().UTC()
	b, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return st.c.Publish(ctx, st.channel, b).Err()
}

// Watch subscribes to token changes of this context. The channel closes when
// ctx is done. The subscription is confirmed before Watch returns, so a
// change published afterwards is never missed.
func (st *SessionStore) Watch(ctx context.Context) (<-chan domain.TokenChange, error) {
	sub := st.c.Subscribe(ctx, st.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan domain.TokenChange, 8)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				var ch domain.TokenChange
				if err := json.Unmarshal([]byte(m.Payload), &ch); err != nil {
					log.Warn().Err(err).Str("channel", st.channel).Msg("session: bad token event")
					continue
				}
				select {
				case out <- ch:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

var _ domain.TokenStore = (*SessionStore)(nil)
var _ domain.Cache = (*Cache)(nil)
