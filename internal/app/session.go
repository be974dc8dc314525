package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"hotelapp_web/internal/adapters/observability"
	"hotelapp_web/internal/domain"
)

// Session is the single owner of the bearer token of one browsing context.
// Controllers receive it explicitly and the backend clients read it through
// Token. Changes made by other tabs arrive through Follow.
type Session struct {
	store domain.TokenStore

	mu        sync.RWMutex
	token     string
	listeners []func(token string)

	followOnce sync.Once
	followErr  error
}

func NewSession(store domain.TokenStore) *Session {
	return &Session{store: store}
}

// Load copies the persisted token into memory.
func (s *Session) Load(ctx context.Context) error {
	tok, _, err := s.store.Get(ctx)
	if err != nil {
		return err
	}
	s.apply(tok)
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) LoggedIn() bool { return s.Token() != "" }

func (s *Session) Role() domain.Role {
	if tok := s.Token(); tok != "" {
		return RoleFromToken(tok)
	}
	return ""
}

func (s *Session) Subject() string {
	if tok := s.Token(); tok != "" {
		return SubjectFromToken(tok)
	}
	return ""
}

// SetToken persists token and then updates memory. Listeners run once
// per actual change.
func (s *Session) SetToken(ctx context.Context, token string) error {
	if err := s.store.Set(ctx, token); err != nil {
		return err
	}
	s.apply(token)
	return nil
}

func (s *Session) ClearToken(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.apply("")
	return nil
}

// OnChange registers fn to run after every token change, local or remote.
func (s *Session) OnChange(fn func(token string)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Follow subscribes once to the store and applies changes published by
// other handles until ctx is done. Later calls return the first result.
func (s *Session) Follow(ctx context.Context) error {
	s.followOnce.Do(func() {
		events, err := s.store.Watch(ctx)
		if err != nil {
			s.followErr = err
			return
		}
		go func() {
			for ev := range events {
				tok := ev.Token
				if ev.Cleared {
					tok = ""
				}
				if s.apply(tok) {
					observability.ObserveSession("remote_change")
					log.Debug().Str("origin", ev.Origin).Bool("cleared", ev.Cleared).Msg("session: token changed elsewhere")
				}
			}
		}()
	})
	return s.followErr
}

func (s *Session) apply(token string) bool {
	s.mu.Lock()
	if s.token == token {
		s.mu.Unlock()
		return false
	}
	s.token = token
	ls := append([]func(string){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range ls {
		fn(token)
	}
	return true
}
