package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Verti90/commun-api/internal/models"
	appErrors "github.com/Verti90/commun-api/pkg/errors"
)

type mockAuthUserRepo struct {
	usersByName   map[string]*models.User
	usersByID     map[string]*models.User
	refreshTokens map[string]*models.RefreshToken
	revoked       []string
}

func newMockAuthUserRepo() *mockAuthUserRepo {
	return &mockAuthUserRepo{
		usersByName:   make(map[string]*models.User),
		usersByID:     make(map[string]*models.User),
		refreshTokens: make(map[string]*models.RefreshToken),
	}
}

func (m *mockAuthUserRepo) add(user *models.User) {
	m.usersByName[user.Username] = user
	m.usersByID[user.ID] = user
}

func (m *mockAuthUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if user, ok := m.usersByName[username]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = "user-" + user.Username
	}
	m.add(user)
	return nil
}

func (m *mockAuthUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockAuthUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	m.refreshTokens[token.Token] = token
	return nil
}

func (m *mockAuthUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if stored, ok := m.refreshTokens[token]; ok {
		return stored, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, stored := range m.refreshTokens {
		if stored.ID == id {
			stored.Revoked = true
		}
	}
	return nil
}

type mockAuthProfileRepo struct {
	profiles map[string]*models.UserProfile
}

func (m *mockAuthProfileRepo) GetOrCreate(ctx context.Context, userID string) (*models.UserProfile, error) {
	if m.profiles == nil {
		m.profiles = make(map[string]*models.UserProfile)
	}
	if profile, ok := m.profiles[userID]; ok {
		return profile, nil
	}
	profile := &models.UserProfile{ID: "profile-" + userID, UserID: userID}
	m.profiles[userID] = profile
	return profile, nil
}

func (m *mockAuthProfileRepo) Update(ctx context.Context, profile *models.UserProfile) error {
	m.profiles[profile.UserID] = profile
	return nil
}

func newAuthService(users *mockAuthUserRepo) *AuthService {
	return NewAuthService(users, &mockAuthProfileRepo{}, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "commun-api",
	})
}

func seedUser(t *testing.T, users *mockAuthUserRepo, username, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-" + username,
		Username:     username,
		PasswordHash: string(hash),
		Role:         models.RoleResident,
		Active:       true,
	}
	users.add(user)
	return user
}

func TestAuthServiceLoginIssuesValidTokens(t *testing.T) {
	users := newMockAuthUserRepo()
	seedUser(t, users, "mabel", "hunter2pass")
	svc := newAuthService(users)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "mabel", Password: "hunter2pass"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-mabel", claims.UserID)
	assert.Equal(t, models.RoleResident, claims.Role)
}

func TestAuthServiceLoginRejectsWrongPassword(t *testing.T) {
	users := newMockAuthUserRepo()
	seedUser(t, users, "mabel", "hunter2pass")
	svc := newAuthService(users)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mabel", Password: "wrongwrong"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginRejectsInactiveAccount(t *testing.T) {
	users := newMockAuthUserRepo()
	user := seedUser(t, users, "mabel", "hunter2pass")
	user.Active = false
	svc := newAuthService(users)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mabel", Password: "hunter2pass"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}

func TestAuthServiceRegisterRejectsTakenUsername(t *testing.T) {
	users := newMockAuthUserRepo()
	seedUser(t, users, "mabel", "hunter2pass")
	svc := newAuthService(users)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username:  "mabel",
		Email:     "mabel@example.com",
		FirstName: "Mabel",
		LastName:  "Lee",
		Password:  "anotherpass",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestAuthServiceRefreshTokenIsSingleUse(t *testing.T) {
	users := newMockAuthUserRepo()
	seedUser(t, users, "mabel", "hunter2pass")
	svc := newAuthService(users)

	login, err := svc.Login(context.Background(), models.LoginRequest{Username: "mabel", Password: "hunter2pass"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.NotEmpty(t, users.revoked)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
}
