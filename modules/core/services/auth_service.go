package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/irrigodev/irrigationdesign/modules/core/domain/aggregates/user"
	"github.com/irrigodev/irrigationdesign/pkg/serrors"
)

type Claims struct {
	UserID uuid.UUID `json:"uid"`
	jwt.RegisteredClaims
}

type AuthService struct {
	repo      user.Repository
	secret    []byte
	accessTTL time.Duration
}

func NewAuthService(repo user.Repository, secret string, accessTTL time.Duration) *AuthService {
	return &AuthService{
		repo:      repo,
		secret:    []byte(secret),
		accessTTL: accessTTL,
	}
}

// Login verifies credentials and returns a signed access token with the
// authenticated user. Bad username and bad password are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, user.User, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, user.ErrNotFound) {
		return "", user.User{}, serrors.NewUnauthorizedError("invalid credentials")
	}
	if err != nil {
		return "", user.User{}, err
	}
	if !verifyPassword(u.PasswordHash(), password) {
		return "", user.User{}, serrors.NewUnauthorizedError("invalid credentials")
	}
	token, err := s.GenerateToken(u)
	if err != nil {
		return "", user.User{}, err
	}
	return token, u, nil
}

func (s *AuthService) GenerateToken(u user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (user.User, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		},
	)
	if err != nil || !token.Valid {
		return user.User{}, serrors.NewUnauthorizedError("invalid or expired token")
	}
	u, err := s.repo.GetByID(ctx, claims.UserID)
	if errors.Is(err, user.ErrNotFound) {
		return user.User{}, serrors.NewUnauthorizedError("invalid or expired token")
	}
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func verifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
