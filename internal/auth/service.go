package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/user"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnregisteredUser = errors.New("unregistered user")
	ErrWrongPassword    = errors.New("password does not match")
	ErrRefreshNotFound  = errors.New("refresh token not found")
	ErrRefreshMismatch  = errors.New("refresh token does not match")
)

const refreshTokenColumn = "refresh_token"

type Service struct {
	users  user.Repository
	tokens *TokenService
	logger *logging.Logger
}

func NewService(users user.Repository, tokens *TokenService, logger *logging.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Login checks the credentials, issues a token pair and stores a hash of
// the refresh token on the user.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrUnregisteredUser
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Warn("login failed - wrong password", zap.Uint("user_id", u.ID))
		return nil, ErrWrongPassword
	}

	access, err := s.tokens.IssueAccess(u)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(u)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(HashToken(refresh)), user.HashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}
	if err := s.users.Update(ctx, u.ID, map[string]any{refreshTokenColumn: string(hash)}); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.Uint("user_id", u.ID), zap.String("token_hash", getTokenHash(access)))
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh validates a refresh token against the stored hash and issues a
// new access token.
func (s *Service) Refresh(ctx context.Context, claims *Claims, refreshToken string) (string, error) {
	u, err := s.users.FindByID(ctx, claims.ID)
	if errors.Is(err, user.ErrUserNotFound) {
		return "", ErrUnregisteredUser
	}
	if err != nil {
		return "", err
	}

	if u.RefreshToken == "" {
		return "", ErrRefreshNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.RefreshToken), []byte(HashToken(refreshToken))); err != nil {
		return "", ErrRefreshMismatch
	}

	return s.tokens.IssueAccess(u)
}
