package session

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-errors"
)

// Manager owns the derived Identity and keeps it consistent with the stored
// bearer token. It is the store's single writer; everything else only reads.
//
// The invariant enforced here: an identity is present iff the store holds a
// structurally valid, unexpired token. Decode failures and expiry silently
// degrade to "logged out"; they are never surfaced as user-visible errors.
type Manager struct {
	mu       sync.RWMutex
	store    TokenStore
	codec    Codec
	logger   Logger
	sink     ActivitySink
	now      func() time.Time
	identity *Identity
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithCodec replaces the default parse-only codec.
func WithCodec(codec Codec) ManagerOption {
	return func(m *Manager) {
		if codec != nil {
			m.codec = codec
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(logger Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.now = clock
		}
	}
}

// WithActivitySink sets the ActivitySink session notifications go to.
func WithActivitySink(sink ActivitySink) ManagerOption {
	return func(m *Manager) {
		m.sink = normalizeActivitySink(sink)
	}
}

// NewManager returns a Manager reading and writing tokens through store.
func NewManager(store TokenStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:  store,
		codec:  ParseCodec{},
		logger: defLogger{},
		sink:   noopActivitySink{},
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m
}

// Start runs the initial recomputation from whatever token survived in the
// store. Call it once at startup, before any authorization decision.
func (m *Manager) Start(ctx context.Context) error {
	return m.Recompute(ctx)
}

// Recompute re-derives the identity from the stored token. It is idempotent:
// running it twice over an unchanged valid token yields the same identity
// and no duplicate notifications.
func (m *Manager) Recompute(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recomputeLocked(ctx)
}

// Login persists the token handed back by the issuing flow and derives the
// identity from it. The flow only ever hands back well-formed tokens; if
// that assumption is violated the session self-heals to logged out instead
// of crashing, and the decode failure is returned to the caller.
func (m *Manager) Login(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	claims, err := m.codec.Decode(token)
	if err != nil {
		m.logger.Info("login received an undecodable token, clearing session: %v", err)
		m.logoutLocked(ctx, "decode_failure")
		return err
	}

	if m.expired(claims) {
		m.logger.Info("login received an already expired token, clearing session")
		m.logoutLocked(ctx, "expired")
		return ErrTokenExpired
	}

	if err := m.store.Set(ctx, token); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist session token")
	}

	m.setIdentityLocked(ctx, claims.Identity())
	return nil
}

// Logout clears the persisted token and drops the identity.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutLocked(ctx, "logout")
}

// CurrentIdentity returns the derived identity, if a session is present.
func (m *Manager) CurrentIdentity() (Identity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.identity == nil {
		return Identity{}, false
	}
	return *m.identity, true
}

// Token returns the stored bearer token, if present.
func (m *Manager) Token(ctx context.Context) (string, bool, error) {
	return m.store.Get(ctx)
}

func (m *Manager) recomputeLocked(ctx context.Context) error {
	token, present, err := m.store.Get(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to read session token")
	}

	if !present {
		m.dropIdentityLocked(ctx)
		return nil
	}

	claims, err := m.codec.Decode(token)
	if err != nil {
		// Corrupted session: self-heal to logged out, never bubble the
		// decode error to the caller.
		m.logger.Info("stored token failed to decode, clearing session: %v", err)
		m.logoutLocked(ctx, "decode_failure")
		return nil
	}

	if m.expired(claims) {
		m.logger.Debug("stored token for %s is expired, clearing session", claims.Email())
		m.logoutLocked(ctx, "expired")
		return nil
	}

	m.setIdentityLocked(ctx, claims.Identity())
	return nil
}

// expired applies the documented comparison: only strictly-past instants
// expire a token, with the clock compared in milliseconds.
func (m *Manager) expired(claims *TokenClaims) bool {
	return claims.Expires().UnixMilli() < m.now().UnixMilli()
}

func (m *Manager) setIdentityLocked(ctx context.Context, identity Identity) {
	changed := m.identity == nil || *m.identity != identity
	m.identity = &identity

	if changed {
		m.emitLocked(ctx, ActivityEventSessionEstablished, identity.Email, map[string]any{
			"role": string(identity.Role),
		})
	}
}

func (m *Manager) logoutLocked(ctx context.Context, reason string) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Warn("failed to clear stored token: %v", err)
	}

	email := ""
	if m.identity != nil {
		email = m.identity.Email
	}
	m.identity = nil

	m.emitLocked(ctx, ActivityEventSessionEnded, email, map[string]any{
		"reason": reason,
	})
}

func (m *Manager) dropIdentityLocked(ctx context.Context) {
	if m.identity == nil {
		return
	}

	email := m.identity.Email
	m.identity = nil

	m.emitLocked(ctx, ActivityEventSessionEnded, email, map[string]any{
		"reason": "token_absent",
	})
}

func (m *Manager) emitLocked(ctx context.Context, eventType ActivityEventType, email string, metadata map[string]any) {
	sink := normalizeActivitySink(m.sink)
	event := newActivityEvent(eventType, email, metadata, m.now())

	if err := sink.Record(ctx, event); err != nil {
		m.logger.Warn("session activity sink error: %v", err)
	}
}
