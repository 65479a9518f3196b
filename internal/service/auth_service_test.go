package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cse-aiml/timetable-api/internal/models"
	appErrors "github.com/cse-aiml/timetable-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]*models.User
	lastLogins map[string]time.Time
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	if m.lastLogins == nil {
		m.lastLogins = make(map[string]time.Time)
	}
	m.lastLogins[id] = at
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{users: map[string]*models.User{
		"u1": {
			ID:           "u1",
			Email:        "admin@example.com",
			PasswordHash: string(hash),
			FullName:     "Admin",
			Role:         models.RoleAdmin,
			Active:       true,
		},
		"u2": {
			ID:           "u2",
			Email:        "gone@example.com",
			PasswordHash: string(hash),
			FullName:     "Former Staff",
			Role:         models.RoleFaculty,
			Active:       false,
		},
	}}
	return NewAuthService(repo, "test-secret", time.Hour, validator.New(), zap.NewNop()), repo
}

func TestAuthLoginAndValidate(t *testing.T) {
	service, repo := newAuthFixture(t)

	res, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "u1", res.User.ID)
	assert.Contains(t, repo.lastLogins, "u1")

	claims, err := service.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "Admin", claims.FullName)
}

func TestAuthLoginWrongPassword(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginUnknownEmail(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthLoginInactiveAccount(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.Login(context.Background(), models.LoginRequest{
		Email:    "gone@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthValidateTokenGarbage(t *testing.T) {
	service, _ := newAuthFixture(t)

	_, err := service.ValidateToken("not-a-token")
	require.Error(t, err)
}

func TestAuthValidateTokenWrongSecret(t *testing.T) {
	service, _ := newAuthFixture(t)
	other, _ := newAuthFixture(t)
	other.secret = []byte("different-secret")

	res, err := other.Login(context.Background(), models.LoginRequest{
		Email:    "admin@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	_, err = service.ValidateToken(res.AccessToken)
	require.Error(t, err)
}
