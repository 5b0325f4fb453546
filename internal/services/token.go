package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/AnshRaj112/ai-journal-backend/internal/apperrors"
)

var (
	ErrTokenMissing    = errors.New("token missing")
	ErrTokenExpired    = errors.New("token expired")
	ErrTokenMalformed  = errors.New("token malformed")
	ErrTokenInvalidSig = errors.New("token signature invalid")
)

// Claims carries the user id as the registered subject and as uid.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256 tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for userID that expires after the configured TTL.
func (s *TokenService) Issue(userID string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify returns the user id of a valid token. Every failure is an
// Unauthenticated AppError whose cause names the reason. User ids are UUIDs;
// any other subject is rejected before it can reach a store query.
func (s *TokenService) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", apperrors.NewUnauthenticatedError("").WithCause(ErrTokenMissing)
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", apperrors.NewUnauthenticatedError("").WithCause(mapJWTError(err))
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", apperrors.NewUnauthenticatedError("").WithCause(ErrTokenMalformed)
	}

	userID := claims.Subject
	if userID == "" {
		userID = claims.UserID
	}
	if parsed, err := uuid.Parse(userID); err != nil || parsed.String() != userID {
		return "", apperrors.NewUnauthenticatedError("").WithCause(ErrTokenMalformed)
	}
	return userID, nil
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrTokenInvalidSig
	default:
		return ErrTokenMalformed
	}
}
