package services_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"etalase/internal/models"
	"etalase/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockAdminRepository is a mock implementation of repositories.AdminRepository
type MockAdminRepository struct {
	mock.Mock
}

func (m *MockAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockAdminRepository) GetByUsername(ctx context.Context, username string) (*models.Admin, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

func (m *MockAdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Admin), args.Error(1)
}

// TestMain silences service logging during tests.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

const testJWTSecret = "test_jwt_secret"

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAdminRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	admin := &models.Admin{ID: "admin-123", Username: "owner", Password: hashed(t, "password123")}

	mockRepo.On("GetByUsername", ctx, "owner").Return(admin, nil).Once()
	token, err := authService.Login(ctx, "owner", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "admin-123", claims["admin_id"])
	assert.Equal(t, "owner", claims["username"])

	// Wrong password
	mockRepo.On("GetByUsername", ctx, "owner").Return(admin, nil).Once()
	_, err = authService.Login(ctx, "owner", "wrongpassword")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Unknown user gets the same error
	mockRepo.On("GetByUsername", ctx, "ghost").
		Return(nil, fmt.Errorf("admin with username ghost: %w", models.ErrNotFound)).Once()
	_, err = authService.Login(ctx, "ghost", "password123")
	assert.ErrorIs(t, err, models.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid credentials")

	mockRepo.AssertExpectations(t)
}

func TestAuthService_VerifyPropagatesStorageErrors(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAdminRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	mockRepo.On("GetByUsername", ctx, "owner").Return(nil, fmt.Errorf("connection refused")).Once()
	_, err := authService.Verify(ctx, "owner", "password123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUnauthorized)
}

func TestAuthService_Authorize(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAdminRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	sign := func(claims jwt.MapClaims, secret string) string {
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return s
	}

	mockRepo.On("GetByID", ctx, "admin-123").Return(&models.Admin{ID: "admin-123", Username: "owner"}, nil).Once()
	valid := sign(jwt.MapClaims{
		"admin_id": "admin-123",
		"username": "owner",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, testJWTSecret)
	identity, err := authService.Authorize(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, models.Identity{AdminID: "admin-123", Username: "owner"}, identity)

	_, err = authService.Authorize(ctx, "invalid.token.string")
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	expired := sign(jwt.MapClaims{
		"admin_id": "admin-123",
		"exp":      time.Now().Add(-time.Hour).Unix(),
	}, testJWTSecret)
	_, err = authService.Authorize(ctx, expired)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	forged := sign(jwt.MapClaims{
		"admin_id": "admin-123",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}, "other_secret")
	_, err = authService.Authorize(ctx, forged)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	anonymous := sign(jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}, testJWTSecret)
	_, err = authService.Authorize(ctx, anonymous)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Signature checks run before any lookup.
	mockRepo.AssertNumberOfCalls(t, "GetByID", 1)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_AuthorizeRejectsRemovedAdmin(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAdminRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, time.Hour)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"admin_id": "gone",
		"username": "former",
		"exp":      time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)

	mockRepo.On("GetByID", ctx, "gone").Return(nil, fmt.Errorf("admin with ID gone: %w", models.ErrNotFound)).Once()
	_, err = authService.Authorize(ctx, token)
	assert.ErrorIs(t, err, models.ErrUnauthorized)

	// Storage failures are not reported as bad credentials.
	mockRepo.On("GetByID", ctx, "gone").Return(nil, fmt.Errorf("connection refused")).Once()
	_, err = authService.Authorize(ctx, token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrUnauthorized)

	mockRepo.AssertExpectations(t)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAdminRepository)
	authService := services.NewAuthService(mockRepo, testJWTSecret, 0)

	mockRepo.On("GetByUsername", ctx, "owner").
		Return(nil, fmt.Errorf("admin with username owner: %w", models.ErrNotFound)).Once()
	mockRepo.On("Create", ctx, mock.MatchedBy(func(a *models.Admin) bool {
		return a.Username == "owner" &&
			bcrypt.CompareHashAndPassword([]byte(a.Password), []byte("secret1")) == nil
	})).Return(nil).Once()
	require.NoError(t, authService.EnsureAdmin(ctx, "owner", "secret1"))

	// Existing admin is left alone
	mockRepo.On("GetByUsername", ctx, "owner").Return(&models.Admin{ID: "a", Username: "owner"}, nil).Once()
	require.NoError(t, authService.EnsureAdmin(ctx, "owner", "another"))

	mockRepo.AssertExpectations(t)
}
