package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/minhnq/go-auth-service/internal/models"
	"github.com/minhnq/go-auth-service/internal/storage"
)

var ErrEmailTaken = errors.New("email already taken")

// UserCredentialService реализует CredentialVerifier и RoleProvider поверх
// таблицы users. Клиент всегда получает одну и ту же ошибку, различие
// "нет пользователя" / "неверный пароль" остается только в логах.
type UserCredentialService struct {
	users storage.UserRepository
	log   *zap.SugaredLogger
}

func NewUserCredentialService(users storage.UserRepository, log *zap.SugaredLogger) *UserCredentialService {
	return &UserCredentialService{users: users, log: log}
}

func (s *UserCredentialService) Verify(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.log.Infow("Login attempt for unknown user", "email", email)
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Infow("Login attempt with wrong password", "userID", user.ID)
		return nil, ErrBadCredentials
	}

	return user, nil
}

func (s *UserCredentialService) RoleOf(ctx context.Context, userID string) (string, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// subject vanished after token issuance
			return "", ErrBadCredentials
		}
		return "", fmt.Errorf("get user by id: %w", err)
	}
	return user.Role, nil
}

func (s *UserCredentialService) Register(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}

	created, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Infow("User registered", "userID", created.ID)

	return created, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
