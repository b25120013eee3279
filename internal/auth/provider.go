package auth

import (
	"context"
	"fmt"
	"sync"

	"electra/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Identity is the raw authenticated identity issued by the auth sub-service,
// before profile resolution.
type Identity struct {
	ID    uuid.UUID
	Email string
}

// Notifier pushes session-change notifications. The returned function
// unsubscribes; callers subscribe on startup and must unsubscribe on
// shutdown. A nil identity means the session ended.
type Notifier interface {
	OnSessionChange(fn func(identity *Identity)) (unsubscribe func())
}

// Provider is the authentication sub-service for one application instance.
// It holds the instance's current token pair and emits a session-change
// notification on every sign-in, sign-up, sign-out and token refresh, which
// is the only trigger the session manager reacts to.
type Provider struct {
	users  service.UserService
	logger *zap.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	subscribers  map[int]func(*Identity)
	nextSubID    int
}

// NewProvider creates a Provider over the user service.
func NewProvider(users service.UserService, logger *zap.Logger) *Provider {
	return &Provider{
		users:       users,
		logger:      logger,
		subscribers: make(map[int]func(*Identity)),
	}
}

// OnSessionChange registers fn for session-change notifications.
func (p *Provider) OnSessionChange(fn func(identity *Identity)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextSubID
	p.nextSubID++
	p.subscribers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subscribers, id)
		p.mu.Unlock()
	}
}

// CurrentSession returns the identity of the instance's existing session, or
// nil when there is none. An expired access token is refreshed transparently
// when a refresh token is held; a refresh emits a session-change
// notification like any other token event.
func (p *Provider) CurrentSession(ctx context.Context) (*Identity, error) {
	p.mu.Lock()
	access, refresh := p.accessToken, p.refreshToken
	p.mu.Unlock()

	if access == "" {
		return nil, nil
	}

	claims, err := p.users.ValidateToken(access)
	if err == nil {
		return &Identity{ID: claims.UserID, Email: claims.Email}, nil
	}

	if refresh == "" {
		return nil, nil
	}

	newAccess, err := p.users.RefreshToken(ctx, refresh)
	if err != nil {
		p.logger.Debug("Session refresh failed", zap.Error(err))
		return nil, nil
	}

	claims, err = p.users.ValidateToken(newAccess)
	if err != nil {
		return nil, fmt.Errorf("refreshed token did not validate: %w", err)
	}

	identity := &Identity{ID: claims.UserID, Email: claims.Email}

	p.mu.Lock()
	p.accessToken = newAccess
	p.mu.Unlock()
	p.notify(identity)

	return identity, nil
}

// SignInWithPassword authenticates with email and password and emits a
// session-change notification on success.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	access, refresh, user, err := p.users.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.accessToken = access
	p.refreshToken = refresh
	p.mu.Unlock()

	identity := &Identity{ID: user.ID, Email: user.Email}
	p.notify(identity)
	return identity, nil
}

// SignUp registers a new account and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password, name string) (*Identity, error) {
	if _, _, err := p.users.Register(ctx, email, password, name); err != nil {
		return nil, err
	}
	return p.SignInWithPassword(ctx, email, password)
}

// SignOut terminates the instance's session and notifies subscribers with a
// nil identity. Revocation failures for unknown tokens are treated as
// already signed out.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	refresh := p.refreshToken
	p.accessToken = ""
	p.refreshToken = ""
	p.mu.Unlock()

	if refresh != "" {
		if err := p.users.Logout(ctx, refresh); err != nil {
			p.logger.Warn("Refresh token revocation failed during sign-out", zap.Error(err))
		}
	}

	p.notify(nil)
	return nil
}

func (p *Provider) notify(identity *Identity) {
	p.mu.Lock()
	fns := make([]func(*Identity), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(identity)
	}
}
