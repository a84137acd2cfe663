package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storyhub/internal/auth"
	"storyhub/internal/domain"
	"storyhub/internal/repository"
)

// AuthService handles registration, login and per-request identity resolution.
type AuthService interface {
	Register(ctx context.Context, email, password, name, username string) (string, *domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ResolveToken(ctx context.Context, token string) (*domain.User, error)
	// EnsureAdmin seeds an admin account from configuration when none with
	// the given email exists. A blank email disables seeding.
	EnsureAdmin(ctx context.Context, email, password, name string) error
}

type authService struct {
	users repository.UserRepository
	codec *auth.Codec
}

func NewAuthService(users repository.UserRepository, codec *auth.Codec) AuthService {
	return &authService{users: users, codec: codec}
}

func (s *authService) Register(ctx context.Context, email, password, name, username string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)

	if email == "" {
		return "", nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if password == "" {
		return "", nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}

	// uniqueness of email/username is enforced by the store, not a prior read
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.codec.IssueToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, sanitizeUser(user), nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// same error as a wrong password, nothing leaks
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.codec.IssueToken(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, sanitizeUser(user), nil
}

func (s *authService) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}

	userID, _, err := s.codec.VerifyToken(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *authService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if password == "" {
		return fmt.Errorf("%w: admin password is required", domain.ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
	})
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}
