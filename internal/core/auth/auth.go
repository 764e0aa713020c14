// Package auth tracks the signed-in user. Meal commands refuse to run
// without a session.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/calcam/internal/core/kv"
	"github.com/hay-kot/calcam/internal/core/validate"
	"github.com/hay-kot/calcam/pkg/randid"
)

// SessionKey is the storage key holding the current session.
const SessionKey = "calcam.session"

// ErrUnauthenticated is returned when an operation needs a signed-in user.
var ErrUnauthenticated = errors.New("not signed in: run 'calcam login'")

// Session identifies the signed-in user.
type Session struct {
	UserID     string    `json:"userId"`
	Email      string    `json:"email"`
	SignedInAt time.Time `json:"signedInAt"`
}

// Provider reads and writes the session in a kv.Store.
type Provider struct {
	storage kv.Store
	log     zerolog.Logger
	now     func() time.Time

	mu          sync.Mutex
	subscribers map[int]func(*Session)
	nextID      int
}

// NewProvider creates a Provider backed by storage.
func NewProvider(storage kv.Store, log zerolog.Logger) *Provider {
	return &Provider{
		storage:     storage,
		log:         log.With().Str("component", "auth").Logger(),
		now:         time.Now,
		subscribers: make(map[int]func(*Session)),
	}
}

// Current returns the signed-in session, or nil when signed out. A session
// blob that cannot be decoded is treated as signed out.
func (p *Provider) Current(ctx context.Context) (*Session, error) {
	entry, err := p.storage.Get(ctx, SessionKey)
	if err != nil {
		if errors.Is(err, kv.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(entry.Value), &s); err != nil || s.Email == "" {
		p.log.Warn().Err(err).Msg("discarding unreadable session")
		return nil, nil
	}
	return &s, nil
}

// SignIn stores a new session for email and notifies subscribers.
func (p *Provider) SignIn(ctx context.Context, email string) (*Session, error) {
	if err := validate.Email(email); err != nil {
		return nil, err
	}

	s := &Session{
		UserID:     randid.Generate(12),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		SignedInAt: p.now().UTC(),
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := p.storage.Set(ctx, SessionKey, string(data)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	p.log.Info().Str("email", s.Email).Msg("signed in")
	p.notify(s)
	return s, nil
}

// SignOut removes the session. Signing out while signed out is not an error.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := p.storage.Delete(ctx, SessionKey); err != nil && !errors.Is(err, kv.ErrKeyNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}

	p.log.Info().Msg("signed out")
	p.notify(nil)
	return nil
}

// Subscribe registers fn to be called with the new session after every
// sign in and sign out (nil when signed out). The returned func unsubscribes.
func (p *Provider) Subscribe(fn func(*Session)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subscribers[id] = fn

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subscribers, id)
	}
}

// RequireSession returns the current session or ErrUnauthenticated.
func (p *Provider) RequireSession(ctx context.Context) (*Session, error) {
	s, err := p.Current(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, ErrUnauthenticated
	}
	return s, nil
}

func (p *Provider) notify(s *Session) {
	p.mu.Lock()
	subs := make([]func(*Session), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(s)
	}
}
