package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tech-arch1tect/berth-api/internal/user"
)

var (
	ErrInvalidToken        = errors.New("invalid token")
	ErrSecretNotConfigured = errors.New("token secret not configured")
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (s *TokenService) IssueAccess(u *user.User) (string, error) {
	return s.issue(u, s.accessSecret, s.accessTTL)
}

func (s *TokenService) IssueRefresh(u *user.User) (string, error) {
	return s.issue(u, s.refreshSecret, s.refreshTTL)
}

func (s *TokenService) ParseAccess(token string) (*Claims, error) {
	return s.parse(token, s.accessSecret)
}

func (s *TokenService) ParseRefresh(token string) (*Claims, error) {
	return s.parse(token, s.refreshSecret)
}

func (s *TokenService) issue(u *user.User, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", ErrSecretNotConfigured
	}

	now := s.now()
	claims := Claims{
		ID:    u.ID,
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *TokenService) parse(token string, secret []byte) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrSecretNotConfigured
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}
