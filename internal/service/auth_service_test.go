package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finjar/internal/auth"
	apperrors "finjar/internal/errors"
	"finjar/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		email         string
		password      string
		nameField     string
		setupMock     func(*MockUserRepository)
		expectedError error
		expectedEmail string
	}{
		{
			name:      "successful registration normalizes email",
			email:     "Test@Example.com",
			password:  "password123",
			nameField: "Test User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedEmail: "test@example.com",
		},
		{
			name:      "email already registered",
			email:     "existing@example.com",
			password:  "password123",
			nameField: "Existing User",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "existing@example.com").
					Return(&model.User{Email: "existing@example.com"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", 3600000)
			svc := NewAuthService(mockRepo, jwtService, new(MockTokenStore))

			user, token, err := svc.Register(context.Background(), tt.email, tt.nameField, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.expectedEmail, user.Email)
				assert.Equal(t, tt.nameField, user.Name)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), 10)
	userID := uuid.New()

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login",
			email:    "test@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           userID,
					Email:        "test@example.com",
					Name:         "Test User",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "test@example.com",
			password: "nope",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "test@example.com").Return(&model.User{
					ID:           userID,
					Email:        "test@example.com",
					PasswordHash: string(hashedPassword),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", 3600000)
			svc := NewAuthService(mockRepo, jwtService, new(MockTokenStore))

			user, token, err := svc.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.email, user.Email)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret", 3600000)
	userID := uuid.New()
	token, err := jwtService.Generate(userID, "Test User")
	assert.NoError(t, err)

	mockStore := new(MockTokenStore)
	mockStore.On("Revoke", mock.Anything, mock.AnythingOfType("string"), mock.Anything).Return(nil)

	svc := NewAuthService(new(MockUserRepository), jwtService, mockStore)

	assert.NoError(t, svc.Logout(context.Background(), token))
	mockStore.AssertExpectations(t)

	assert.ErrorIs(t, svc.Logout(context.Background(), "garbage"), apperrors.ErrInvalidToken)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	userID := uuid.New()
	otherID := uuid.New()

	t.Run("email collision with another user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:    userID,
			Email: "old@example.com",
			Name:  "Old Name",
		}, nil)
		mockRepo.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{
			ID:    otherID,
			Email: "taken@example.com",
		}, nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret", 3600000), new(MockTokenStore))

		taken := "Taken@Example.com"
		_, err := svc.UpdateProfile(context.Background(), userID, nil, &taken)
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("name change only", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, userID).Return(&model.User{
			ID:    userID,
			Email: "old@example.com",
			Name:  "Old Name",
		}, nil)
		mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		svc := NewAuthService(mockRepo, auth.NewJWTService("test-secret", 3600000), new(MockTokenStore))

		newName := "New Name"
		updated, err := svc.UpdateProfile(context.Background(), userID, &newName, nil)
		assert.NoError(t, err)
		assert.Equal(t, "New Name", updated.Name)
		assert.Equal(t, "old@example.com", updated.Email)
		mockRepo.AssertExpectations(t)
	})
}
