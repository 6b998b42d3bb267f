package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/tech-arch1tect/berth-api/internal/logging"
	"github.com/tech-arch1tect/berth-api/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const HashCost = 10

var ErrEmailTaken = errors.New("email already registered")

type Service struct {
	repo   Repository
	logger *logging.Logger
}

func NewService(repo Repository, logger *logging.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	if req.Role == "" {
		req.Role = RoleUser
	}
	if err := errors.Join(
		validation.ValidateEmail(req.Email),
		validation.ValidatePassword(req.Password),
		validation.ValidateName(req.Name),
		validation.ValidateRole(req.Role),
	); err != nil {
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:    req.Email,
		Password: hash,
		Name:     req.Name,
		Role:     req.Role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Uint("user_id", u.ID), zap.String("role", u.Role))
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id uint, req UpdateUserRequest) (*User, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Email != nil && *req.Email != existing.Email {
		if err := validation.ValidateEmail(*req.Email); err != nil {
			return nil, err
		}
		if err := s.ensureEmailFree(ctx, *req.Email); err != nil {
			return nil, err
		}
		fields["email"] = *req.Email
	}
	if req.Name != nil {
		if err := validation.ValidateName(*req.Name); err != nil {
			return nil, err
		}
		fields["name"] = *req.Name
	}
	if req.Role != nil {
		if err := validation.ValidateRole(*req.Role); err != nil {
			return nil, err
		}
		fields["role"] = *req.Role
	}
	if req.Password != nil {
		if err := validation.ValidatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		fields["password"] = hash
	}

	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uint) error {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, u); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.Uint("user_id", id))
	return nil
}

func (s *Service) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailTaken
	case errors.Is(err, ErrUserNotFound):
		return nil
	default:
		return err
	}
}
