package session

import (
	"context"
	"sync"

	"electra/internal/auth"
	"electra/internal/domain"

	"go.uber.org/zap"
)

// Source is the slice of the auth provider the manager consumes: the
// initial session check, explicit sign-out, and change notifications.
type Source interface {
	auth.Notifier
	CurrentSession(ctx context.Context) (*auth.Identity, error)
	SignOut(ctx context.Context) error
}

// Manager is the single source of truth for who is using this application
// instance. It starts Unresolved, transitions to Anonymous or Authenticated
// after the initial session check, and afterwards changes state only in
// response to session-change notifications. Notifications may interleave
// with in-flight resolutions; the most recently received one wins.
type Manager struct {
	source   Source
	resolver *Resolver
	logger   *zap.Logger

	mu          sync.RWMutex
	current     domain.Session
	generation  uint64
	applied     uint64
	unsubscribe func()
}

// NewManager creates a Manager. Call Start to run the initial session check
// and begin receiving notifications, and Close to unsubscribe.
func NewManager(source Source, resolver *Resolver, logger *zap.Logger) *Manager {
	return &Manager{
		source:   source,
		resolver: resolver,
		logger:   logger,
		current:  domain.Session{State: domain.SessionUnresolved},
	}
}

// Start subscribes to session changes and performs the initial session
// check. Subscription happens first so a change racing the initial check is
// not lost; the generation counter keeps the newer of the two.
func (m *Manager) Start(ctx context.Context) error {
	m.unsubscribe = m.source.OnSessionChange(func(identity *auth.Identity) {
		m.apply(ctx, identity)
	})

	identity, err := m.source.CurrentSession(ctx)
	if err != nil {
		m.logger.Warn("Initial session check failed, treating as anonymous", zap.Error(err))
		identity = nil
	}
	m.apply(ctx, identity)
	return nil
}

// Current returns the session as currently resolved.
func (m *Manager) Current() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Logout requests session termination from the provider and transitions to
// Anonymous. The provider's own notification normally lands first; applying
// anonymous here as well keeps the transition guaranteed regardless of
// notifier behavior.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.source.SignOut(ctx); err != nil {
		return err
	}
	m.apply(ctx, nil)
	return nil
}

// Close unsubscribes from session-change notifications.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// apply resolves identity and installs the result unless a newer
// notification was received while resolution was in flight.
func (m *Manager) apply(ctx context.Context, identity *auth.Identity) {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	// Profile resolution may hit the network; done outside the lock.
	sess := m.resolver.Resolve(ctx, identity)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen < m.applied {
		// A newer notification already resolved; last one wins.
		return
	}
	m.applied = gen
	m.current = sess

	m.logger.Debug("Session state changed",
		zap.String("state", string(sess.State)),
		zap.String("user_id", sess.UserID),
	)
}
