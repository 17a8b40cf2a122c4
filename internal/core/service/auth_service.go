package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deckshop/storefront/internal/core/domain"
	"github.com/deckshop/storefront/internal/core/ports"
)

const minPasswordLen = 6

// AuthService implements signup, login and profile management.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.TokenIssuer
	hasher ports.PasswordHasher
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, tokens ports.TokenIssuer, hasher ports.PasswordHasher, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, logger: logger}
}

// Signup registers a regular user and returns a session token for it. The
// email keeps the casing it was typed with; uniqueness ignores case.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	verr := domain.NewValidationError()
	if name == "" {
		verr.Add("name is required")
	}
	if email == "" {
		verr.Add("email is required")
	} else if !strings.Contains(email, "@") {
		verr.Add("email must be a valid email address")
	}
	if len(in.Password) < minPasswordLen {
		verr.Add(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Msg("user signed up")
	return s.session(created)
}

// Login checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, in.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *AuthService) Me(ctx context.Context, actor *domain.Identity) (*domain.User, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	return s.users.FindByID(ctx, actor.ID)
}

// UpdateProfile applies name, email and password changes and returns a token
// carrying the updated claims. The role cannot be changed here.
func (s *AuthService) UpdateProfile(ctx context.Context, actor *domain.Identity, in ports.ProfileUpdate) (*ports.AuthResult, error) {
	if actor == nil {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	verr := domain.NewValidationError()
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name == "" {
			verr.Add("name must not be empty")
		} else {
			user.Name = name
		}
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		switch {
		case email == "":
			verr.Add("email must not be empty")
		case !strings.Contains(email, "@"):
			verr.Add("email must be a valid email address")
		case domain.NormalizeEmail(email) == domain.NormalizeEmail(user.Email):
			user.Email = email
		default:
			existing, err := s.users.FindByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, domain.ErrEmailTaken
			}
			if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if in.Password != nil {
		if len(*in.Password) < minPasswordLen {
			verr.Add(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
		} else {
			hash, err := s.hasher.Hash(*in.Password)
			if err != nil {
				return nil, fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = hash
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()
	updated, err := s.users.Update(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", updated.ID).Msg("profile updated")
	return s.session(updated)
}

func (s *AuthService) ListUsers(ctx context.Context, actor *domain.Identity) ([]*domain.User, error) {
	if err := domain.RequireRole(actor, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// EnsureAdmin makes sure an admin account exists for email, creating it or
// promoting the existing account. An empty email is a no-op.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Role == domain.RoleAdmin {
			return user, nil
		}
		user.Role = domain.RoleAdmin
		user.UpdatedAt = time.Now().UTC()
		s.logger.Warn().Str("user_id", user.ID).Msg("promoting existing account to admin")
		return s.users.Update(ctx, user)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("bootstrap admin: password must be at least %d characters", minPasswordLen)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", created.ID).Msg("admin account created")
	return created, nil
}

func (s *AuthService) session(user *domain.User) (*ports.AuthResult, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}
