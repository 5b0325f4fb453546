package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
	"github.com/AnshRaj112/ai-journal-backend/internal/database"
	"github.com/AnshRaj112/ai-journal-backend/internal/models"
	"github.com/AnshRaj112/ai-journal-backend/pkg/utils"
)

// Credentials is the signup and login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,max=256"`
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  database.UserStore
	tokens *TokenService
	logger *zap.Logger
	now    func() time.Time
	verify func(password, hash string) (bool, error)
}

var (
	decoyOnce sync.Once
	decoyHash string
)

// decoy is verified against when the email is unknown so both login failures
// cost one argon2 derivation.
func decoy() string {
	decoyOnce.Do(func() {
		decoyHash, _ = utils.HashPassword("decoy-password-never-matches")
	})
	return decoyHash
}

func NewAuthService(users database.UserStore, tokens *TokenService, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		verify: utils.VerifyPassword,
	}
}

// Signup creates the account and returns a token for it. No token is issued
// when the email is already taken.
func (s *AuthService) Signup(ctx context.Context, creds Credentials) (string, *models.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := utils.ValidateStruct(creds); err != nil {
		return "", nil, apperrors.NewValidationError(err.Error())
	}

	hash, err := utils.HashPassword(creds.Password)
	if err != nil {
		return "", nil, apperrors.NewInternalError("Failed to process password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        creds.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return "", nil, apperrors.NewDuplicateKeyError("Email already in use")
		}
		return "", nil, apperrors.NewPersistenceError("insert user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperrors.NewInternalError("Failed to issue token")
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return token, user, nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, creds Credentials) (string, *models.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		return "", nil, apperrors.NewValidationError("email and password are required")
	}

	user, err := s.users.GetUserByEmail(ctx, creds.Email)
	if errors.Is(err, database.ErrNotFound) {
		s.verify(creds.Password, decoy())
		return "", nil, apperrors.NewInvalidCredentialsError()
	}
	if err != nil {
		return "", nil, apperrors.NewPersistenceError("get user", err)
	}

	ok, err := s.verify(creds.Password, user.PasswordHash)
	if err != nil {
		s.logger.Error("Stored password hash unreadable", zap.String("user_id", user.ID), zap.Error(err))
		return "", nil, apperrors.NewInvalidCredentialsError()
	}
	if !ok {
		return "", nil, apperrors.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", nil, apperrors.NewInternalError("Failed to issue token")
	}
	return token, user, nil
}
