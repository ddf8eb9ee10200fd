package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orderdesk/session-gateway/models"
	"github.com/orderdesk/session-gateway/repositories"
	"github.com/orderdesk/session-gateway/token"
	"github.com/orderdesk/session-gateway/utils"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByCPF(ctx context.Context, cpf string) (*models.User, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByCredentials(ctx context.Context, email, passwordHash string) (*models.User, error) {
	args := m.Called(ctx, email, passwordHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTokenCodec is a mock implementation of TokenCodec
type MockTokenCodec struct {
	mock.Mock
}

func (m *MockTokenCodec) Issue(identity token.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenCodec) Verify(tokenString string) (*token.Principal, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*token.Principal), args.Error(1)
}

func (m *MockTokenCodec) Invalidate(tokenString string) {
	m.Called(tokenString)
}

func testUser() *models.User {
	return models.NewUser(
		"Alice Smith",
		"alice@example.com",
		"52998224725",
		utils.HashPassword("correct-password"),
		time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC),
		models.RoleManager,
	)
}

func TestLogin(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid credentials yield a token", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		user := testUser()
		repo.On("GetByCredentials", mock.Anything, "alice@example.com", utils.HashPassword("correct-password")).
			Return(user, nil)
		codec.On("Issue", token.Identity{
			Subject: user.ID.String(),
			Name:    user.Name,
			Email:   user.Email,
			Role:    user.Role,
		}).Return("signed-token", nil)

		result, err := svc.Login(context.Background(), LoginRequest{
			Email:    "alice@example.com",
			Password: "correct-password",
		})

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "signed-token", result.Token)
		repo.AssertExpectations(t)
		codec.AssertExpectations(t)
	})

	t.Run("unknown email and wrong password fail identically", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		repo.On("GetByCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, repositories.ErrNotFound)

		unknownEmail, err := svc.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "whatever",
		})
		require.NoError(t, err)

		wrongPassword, err := svc.Login(context.Background(), LoginRequest{
			Email:    "alice@example.com",
			Password: "not-her-password",
		})
		require.NoError(t, err)

		assert.False(t, unknownEmail.Success)
		assert.False(t, wrongPassword.Success)
		assert.Equal(t, unknownEmail.Message, wrongPassword.Message)
		assert.Equal(t, MsgInvalidCredentials, unknownEmail.Message)
		codec.AssertNotCalled(t, "Issue")
	})

	t.Run("missing email or password fails without touching the store", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		result, err := svc.Login(context.Background(), LoginRequest{Password: "secret"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, MsgCredentialsRequired, result.Message)

		result, err = svc.Login(context.Background(), LoginRequest{Email: "alice@example.com"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, MsgCredentialsRequired, result.Message)

		repo.AssertNotCalled(t, "GetByCredentials")
	})

	t.Run("cancelled context propagates without issuing", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		repo.On("GetByCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, context.Canceled)

		_, err := svc.Login(ctx, LoginRequest{
			Email:    "alice@example.com",
			Password: "correct-password",
		})

		assert.ErrorIs(t, err, context.Canceled)
		codec.AssertNotCalled(t, "Issue")
	})

	t.Run("store failure surfaces as an error", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		repo.On("GetByCredentials", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("connection refused"))

		_, err := svc.Login(context.Background(), LoginRequest{
			Email:    "alice@example.com",
			Password: "correct-password",
		})

		assert.Error(t, err)
		codec.AssertNotCalled(t, "Issue")
	})
}

func TestLogout(t *testing.T) {
	logger := zap.NewNop()

	t.Run("revokes the presented token", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		codec.On("Invalidate", "some-token").Return()

		result := svc.Logout("some-token")
		assert.True(t, result.Success)
		assert.Equal(t, MsgLogoutOK, result.Message)
		codec.AssertExpectations(t)
	})

	t.Run("empty token is rejected", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		result := svc.Logout("")
		assert.False(t, result.Success)
		assert.Equal(t, MsgTokenRequired, result.Message)
		codec.AssertNotCalled(t, "Invalidate")
	})
}

func TestWhoAmI(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid token projects the principal", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		codec.On("Verify", "valid-token").Return(&token.Principal{
			Subject: "user-1",
			Name:    "Alice Smith",
			Email:   "alice@example.com",
			Role:    models.RoleManager,
		}, nil)

		result := svc.WhoAmI("valid-token")
		assert.True(t, result.Success)
		assert.Equal(t, "alice@example.com", result.Email)
		assert.Equal(t, "Alice Smith", result.Name)
		assert.Equal(t, string(models.RoleManager), result.Role)
		assert.Empty(t, result.Token)
	})

	t.Run("verification failure maps to one generic message", func(t *testing.T) {
		repo := new(MockUserRepository)
		codec := new(MockTokenCodec)
		svc := NewSessionService(repo, codec, logger)

		codec.On("Verify", "bad-token").Return(nil, token.ErrInvalidToken)

		result := svc.WhoAmI("bad-token")
		assert.False(t, result.Success)
		assert.Equal(t, MsgInvalidToken, result.Message)
		assert.Empty(t, result.Email)
	})
}
