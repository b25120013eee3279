package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"electra/internal/domain"
	"electra/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[string]*domain.User)}
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.Email]; exists {
		return repository.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, exists := m.users[email]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type mockProfileRepository struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*domain.Profile
}

func newMockProfileRepository() *mockProfileRepository {
	return &mockProfileRepository{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (m *mockProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.ID] = profile
	return nil
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	profile, exists := m.profiles[id]
	if !exists {
		return nil, repository.ErrProfileNotFound
	}
	return profile, nil
}

type mockRefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]*domain.RefreshToken
}

func newMockRefreshTokenRepository() *mockRefreshTokenRepository {
	return &mockRefreshTokenRepository{tokens: make(map[string]*domain.RefreshToken)}
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.Token] = token
	return nil
}

func (m *mockRefreshTokenRepository) FindByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	refreshToken, exists := m.tokens[token]
	if !exists {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if refreshToken.Revoked {
		return nil, repository.ErrRefreshTokenRevoked
	}
	return refreshToken, nil
}

func (m *mockRefreshTokenRepository) Revoke(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	refreshToken, exists := m.tokens[token]
	if !exists {
		return repository.ErrRefreshTokenNotFound
	}
	refreshToken.Revoked = true
	return nil
}

func newTestService() UserService {
	return NewUserService(newMockUserRepository(), newMockProfileRepository(), newMockRefreshTokenRepository(), "test-secret")
}

func TestRegisterCreatesUserAndCustomerProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, profile, err := svc.Register(ctx, "Jane@Example.COM", "SuperSecret1", "Jane")
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.NotEqual(t, "SuperSecret1", user.PasswordHash)

	require.NotNil(t, profile)
	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, "Jane", profile.Name)
	assert.Equal(t, domain.RoleCustomer, profile.Role)
}

func TestRegisterDerivesNameFromEmailWhenOmitted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, profile, err := svc.Register(ctx, "jane.doe@example.com", "SuperSecret1", "")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe", profile.Name)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _, err := svc.Register(ctx, "jane@example.com", "SuperSecret1", "Jane")
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "JANE@example.com", "OtherSecret2", "Janet")
	assert.ErrorIs(t, err, repository.ErrUserAlreadyExists)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _, err := svc.Register(ctx, "jane@example.com", "SuperSecret1", "Jane")
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "jane@example.com", "WrongSecret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, _, err = svc.Login(ctx, "nobody@example.com", "SuperSecret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginIssuesValidatableTokens(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, _, err := svc.Register(ctx, "jane@example.com", "SuperSecret1", "Jane")
	require.NoError(t, err)

	accessToken, refreshToken, loggedIn, err := svc.Login(ctx, "jane@example.com", "SuperSecret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, refreshToken)

	claims, err := svc.ValidateToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, domain.RoleCustomer, claims.Role)
}

func TestRefreshTokenRotation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, _, err := svc.Register(ctx, "jane@example.com", "SuperSecret1", "Jane")
	require.NoError(t, err)

	_, refreshToken, _, err := svc.Login(ctx, "jane@example.com", "SuperSecret1")
	require.NoError(t, err)

	newAccess, err := svc.RefreshToken(ctx, refreshToken)
	require.NoError(t, err)
	_, err = svc.ValidateToken(newAccess)
	assert.NoError(t, err)

	// A revoked refresh token no longer refreshes.
	require.NoError(t, svc.Logout(ctx, refreshToken))
	_, err = svc.RefreshToken(ctx, refreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutUnknownTokenIsIdempotent(t *testing.T) {
	svc := newTestService()
	assert.NoError(t, svc.Logout(context.Background(), "never-issued"))
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()
	other := NewUserService(newMockUserRepository(), newMockProfileRepository(), newMockRefreshTokenRepository(), "other-secret")

	_, _, err := svc.Register(ctx, "jane@example.com", "SuperSecret1", "Jane")
	require.NoError(t, err)
	accessToken, _, _, err := svc.Login(ctx, "jane@example.com", "SuperSecret1")
	require.NoError(t, err)

	_, err = other.ValidateToken(accessToken)
	assert.Error(t, err)
}

func TestProperty_RegisterLoginRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("any registered credentials can log in", prop.ForAll(
		func(local string, password string) bool {
			ctx := context.Background()
			svc := newTestService()
			email := local + "@example.com"

			user, _, err := svc.Register(ctx, email, password, "")
			if err != nil {
				return false
			}

			_, _, loggedIn, err := svc.Login(ctx, strings.ToUpper(email), password)
			return err == nil && loggedIn.ID == user.ID
		},
		gen.RegexMatch("[a-z][a-z0-9.]{2,12}"),
		gen.RegexMatch("[a-zA-Z0-9]{8,20}"),
	))

	properties.Property("password hashes never echo the password", prop.ForAll(
		func(password string) bool {
			ctx := context.Background()
			svc := newTestService()

			user, _, err := svc.Register(ctx, "p@example.com", password, "")
			if err != nil {
				return false
			}
			return !strings.Contains(user.PasswordHash, password)
		},
		gen.RegexMatch("[a-zA-Z0-9]{8,20}"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
