// Package session holds the process-wide authentication state: the bearer
// token and, when login returned one, the signed-in user.
//
// Presence of a token is the only authentication signal. The token is never
// validated or checked for expiry here; the API decides, and a 401 from it
// makes callers Clear the store.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"fintrack/internal/core"
)

const (
	tokenKey = "token"
	userKey  = "user"
)

// Slot is the durable key-value storage behind the store.
type Slot interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	slot Slot

	mu    sync.RWMutex
	token string
	user  core.User
}

// Open builds a store and restores any token and user persisted by an
// earlier run. An unreadable user record is dropped, not fatal.
func Open(ctx context.Context, slot Slot) (*Store, error) {
	if slot == nil {
		slot = NewMemorySlot()
	}
	s := &Store{slot: slot}

	tok, ok, err := slot.Get(ctx, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if ok {
		s.token = tok
	}

	raw, ok, err := slot.Get(ctx, userKey)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if ok && raw != "" {
		var u core.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			s.user = u
		}
	}
	return s, nil
}

// Token returns the current bearer token, if any.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

func (s *Store) Authenticated() bool {
	_, ok := s.Token()
	return ok
}

// SetToken stores tok in memory and in the slot. An empty token clears the
// session. The in-memory value is updated even when persisting fails.
func (s *Store) SetToken(ctx context.Context, tok string) error {
	if tok == "" {
		return s.Clear(ctx)
	}
	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()

	if err := s.slot.Put(ctx, tokenKey, tok); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

func (s *Store) SetUser(ctx context.Context, u core.User) error {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()

	if u.IsZero() {
		if err := s.slot.Delete(ctx, userKey); err != nil {
			return fmt.Errorf("remove user: %w", err)
		}
		return nil
	}
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.slot.Put(ctx, userKey, string(b)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

func (s *Store) User() core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Clear removes token and user. Memory is always cleared; slot errors are
// joined and returned.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.user = core.User{}
	s.mu.Unlock()

	return errors.Join(
		s.slot.Delete(ctx, tokenKey),
		s.slot.Delete(ctx, userKey),
	)
}

// DisplayName returns a label for the signed-in user: the stored name or
// email, else a claim from the token payload. The token signature is not
// checked; the value is only shown in the page header.
func (s *Store) DisplayName() string {
	s.mu.RLock()
	u, tok := s.user, s.token
	s.mu.RUnlock()

	if name := u.DisplayName(); name != "" {
		return name
	}
	if tok == "" {
		return ""
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return ""
	}
	for _, k := range []string{"name", "email", "sub"} {
		if v, ok := claims[k].(string); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
