// Package session holds the signed-in operator's token and profile and
// persists them across restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/naveenspark/vendora/pkg/domain"
)

// DefaultMaxIdle is how long a stored session survives without activity.
const DefaultMaxIdle = 7 * 24 * time.Hour

// Session is a snapshot of the current authentication state.
type Session struct {
	Token          string
	User           *domain.UserProfile
	LastActivityAt time.Time
}

// Authenticated reports whether the snapshot carries a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Store owns the process-wide session. Only its methods write to it; each
// write replaces the whole in-memory value under the lock.
type Store struct {
	mu      sync.RWMutex
	cur     Session
	storage Storage
	maxIdle time.Duration
	now     func() time.Time
	log     logrus.FieldLogger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxIdle sets the idle window after which a stored session is discarded
// on hydration. Zero disables the idle check.
func WithMaxIdle(d time.Duration) Option {
	return func(s *Store) {
		s.maxIdle = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for storage diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a store and hydrates it from storage. Unreadable, corrupt or
// expired data yields an empty session; New never fails.
func New(storage Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		maxIdle: DefaultMaxIdle,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	s.cur = s.hydrate()
	return s
}

// Session returns a copy of the current session.
func (s *Store) Session() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.clone()
}

// Token returns the current token or "".
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur.Token
}

// IsAuthenticated is true iff a non-empty token is present.
func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login replaces the session and persists it.
func (s *Store) Login(token string, user *domain.UserProfile) error {
	if token == "" {
		return fmt.Errorf("session.Login: empty token")
	}
	if user == nil {
		return fmt.Errorf("session.Login: missing user profile")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session.Login: marshal user: %w", err)
	}

	next := Session{Token: token, User: cloneUser(user), LastActivityAt: s.now()}
	// The session only changes once it is durable.
	err = s.storage.Set(map[string]string{
		KeyToken:        token,
		KeyUser:         string(data),
		KeyLastActivity: next.LastActivityAt.Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("session.Login: persist: %w", err)
	}

	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return nil
}

// Logout clears the session in memory and storage. Calling it again is a no-op.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.cur = Session{}
	s.mu.Unlock()
	if err := s.clearStorage(); err != nil {
		return fmt.Errorf("session.Logout: %w", err)
	}
	return nil
}

// Expire logs out only if token is still the current token. It reports
// whether this call performed the transition, so concurrent failures of
// requests that carried the same token invalidate the session once.
func (s *Store) Expire(token string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	if s.cur.Token != token {
		s.mu.Unlock()
		return false
	}
	s.cur = Session{}
	s.mu.Unlock()

	if err := s.clearStorage(); err != nil {
		s.log.WithError(err).Warn("session: clear storage after expiry")
	}
	return true
}

// UpdateActivity stamps the session with the current time.
func (s *Store) UpdateActivity() {
	now := s.now()
	s.mu.Lock()
	if s.cur.Token == "" {
		s.mu.Unlock()
		return
	}
	next := s.cur.clone()
	next.LastActivityAt = now
	s.cur = next
	s.mu.Unlock()

	if err := s.storage.Set(map[string]string{KeyLastActivity: now.Format(time.RFC3339Nano)}); err != nil {
		s.log.WithError(err).Warn("session: persist activity")
	}
}

// Reload re-reads storage, for example after another process logged out.
func (s *Store) Reload() Session {
	next := s.hydrate()
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return next.clone()
}

// ExpiresAt returns the token's own expiry when it is a JWT carrying exp.
func (s *Store) ExpiresAt() (time.Time, bool) {
	return tokenExpiry(s.Token())
}

// Watch reloads the session whenever the underlying storage changes and
// emits the new snapshot. It requires a storage that implements Watcher.
func (s *Store) Watch(ctx context.Context) (<-chan Session, error) {
	w, ok := s.storage.(Watcher)
	if !ok {
		return nil, fmt.Errorf("session.Watch: storage %T cannot be watched", s.storage)
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("session.Watch: %w", err)
	}
	out := make(chan Session, 1)
	go func() {
		defer close(out)
		for range changes {
			sess := s.Reload()
			select {
			case out <- sess:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *Store) hydrate() Session {
	log := s.log.WithField("component", "session")

	token, ok, err := s.storage.Get(KeyToken)
	if err != nil {
		log.WithError(err).Warn("session: unreadable storage, starting signed out")
		return Session{}
	}
	if !ok || token == "" {
		return Session{}
	}

	rawUser, ok, err := s.storage.Get(KeyUser)
	if err != nil || !ok || rawUser == "" {
		log.Warn("session: stored token without profile, discarding")
		s.discard()
		return Session{}
	}
	var user domain.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user.ID == "" {
		log.Warn("session: corrupt stored profile, discarding")
		s.discard()
		return Session{}
	}

	now := s.now()
	last := now
	if rawLast, ok, err := s.storage.Get(KeyLastActivity); err == nil && ok {
		if t, err := time.Parse(time.RFC3339Nano, rawLast); err == nil {
			last = t
		}
	}

	if exp, ok := tokenExpiry(token); ok && !now.Before(exp) {
		log.WithField("expired_at", exp).Info("session: stored token expired")
		s.discard()
		return Session{}
	}
	if s.maxIdle > 0 && now.Sub(last) > s.maxIdle {
		log.WithField("last_activity_at", last).Info("session: stored session idle too long")
		s.discard()
		return Session{}
	}

	return Session{Token: token, User: &user, LastActivityAt: last}
}

func (s *Store) discard() {
	if err := s.clearStorage(); err != nil {
		s.log.WithError(err).Warn("session: clear storage")
	}
}

func (s *Store) clearStorage() error {
	return s.storage.Delete(KeyToken, KeyUser, KeyLastActivity)
}

// tokenExpiry reads exp from a JWT without verifying its signature.
func tokenExpiry(token string) (time.Time, bool) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func (s Session) clone() Session {
	s.User = cloneUser(s.User)
	return s
}

func cloneUser(u *domain.UserProfile) *domain.UserProfile {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
