package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"finjar/internal/auth"
	apperrors "finjar/internal/errors"
	"finjar/internal/model"
	"finjar/internal/repository"
)

const bcryptCost = 10

// dummyHash keeps the bcrypt comparison in the login path even when the email
// is unknown, so both failure modes report the same way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("finjar-dummy"), bcryptCost)

// AuthService handles registration, login and profile operations.
type AuthService interface {
	Register(ctx context.Context, email, name, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, rawToken string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, name, email *string) (*model.User, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a new user with a hashed password and returns a fresh token.
func (s *authService) Register(ctx context.Context, email, name, password string) (*model.User, string, error) {
	email = normalizeEmail(email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.Generate(user.ID, user.Name)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// Login authenticates a user and returns a signed token. Unknown email and
// wrong password both come back as ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Burn a comparison anyway so the two failure modes look alike.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	token, err := s.jwtService.Generate(user.ID, user.Name)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// Logout revokes the presented token for the remainder of its lifetime.
func (s *authService) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.jwtService.Validate(rawToken)
	if err != nil {
		return err
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		return apperrors.ErrInvalidToken
	}
	return s.tokenStore.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}

// GetProfile returns the user record for an ID.
func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// UpdateProfile changes name and/or email. A new email colliding with a
// different user fails with ErrEmailTaken.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email *string) (*model.User, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if email != nil {
		newEmail := normalizeEmail(*email)
		if newEmail != user.Email {
			other, err := s.userRepo.FindByEmail(ctx, newEmail)
			if err == nil && other != nil && other.ID != user.ID {
				return nil, apperrors.ErrEmailTaken
			}
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("check email: %w", err)
			}
			user.Email = newEmail
		}
	}
	if name != nil {
		user.Name = *name
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// normalizeEmail lower-cases the login key; email uniqueness is
// case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
