package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kristinefung/personal-website-server/internal/core/domain"
	"github.com/kristinefung/personal-website-server/internal/core/port"
	"github.com/kristinefung/personal-website-server/internal/infra/security"
	"github.com/kristinefung/personal-website-server/internal/repository"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("user existed")
	// ErrUserNotFound indicates the requested user does not exist or is deleted.
	ErrUserNotFound = errors.New("user not existed")
	// ErrInvalidRole indicates the supplied role is outside the closed enumeration.
	ErrInvalidRole = errors.New("invalid role")
)

// CreateUserInput carries the fields accepted at account creation.
type CreateUserInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
}

// UpdateUserInput carries optional profile mutations. Nil fields are left
// unchanged; a non-nil Password triggers credential rotation with a fresh salt.
type UpdateUserInput struct {
	Email    *string
	Name     *string
	Password *string
	Role     *domain.Role
}

// UserService manages the user directory.
type UserService struct {
	users  port.UserRepository
	hasher *security.PasswordHasher
	policy *security.PasswordPolicy
	events port.EventPublisher
	logger *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(
	users port.UserRepository,
	hasher *security.PasswordHasher,
	policy *security.PasswordPolicy,
	events port.EventPublisher,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:  users,
		hasher: hasher,
		policy: policy,
		events: events,
		logger: logger,
	}
}

// CreateUser registers a new account with a fresh salt and hashed password.
// actingUserID attributes the audit fields.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput, actingUserID string) (domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" {
		return domain.User{}, errors.New("email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return domain.User{}, errors.New("name is required")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}

	if err := s.policy.Validate(input.Password, email, input.Name); err != nil {
		return domain.User{}, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	salt, err := security.GenerateSalt()
	if err != nil {
		return domain.User{}, fmt.Errorf("generate salt: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password, salt)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         role,
		Status:       domain.UserStatusActive,
		CreatedAt:    now,
		CreatedBy:    actingUserID,
		UpdatedAt:    now,
		UpdatedBy:    actingUserID,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		event := domain.UserCreatedEvent{
			EventID:   uuid.NewString(),
			UserID:    user.ID,
			Email:     user.Email,
			Role:      user.Role,
			CreatedBy: actingUserID,
			CreatedAt: now,
		}
		if err := s.events.PublishUserCreated(ctx, event); err != nil {
			s.logger.Warn("publish user created event", zap.Error(err))
		}
	}

	return user.Sanitized(), nil
}

// GetUser returns a single user with credential material cleared.
func (s *UserService) GetUser(ctx context.Context, id string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	return user.Sanitized(), nil
}

// ListUsers returns all non-deleted users with credential material cleared.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]domain.User, 0, len(users))
	for _, user := range users {
		out = append(out, user.Sanitized())
	}
	return out, nil
}

// UpdateUser applies the supplied mutations. A password change rotates the
// salt and re-hashes; the audit fields record the acting user.
func (s *UserService) UpdateUser(ctx context.Context, id string, input UpdateUserInput, actingUserID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email == "" {
			return domain.User{}, errors.New("email must not be empty")
		}
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return domain.User{}, ErrEmailTaken
			} else if !errors.Is(err, repository.ErrNotFound) {
				return domain.User{}, fmt.Errorf("lookup user: %w", err)
			}
		}
		user.Email = email
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.User{}, errors.New("name must not be empty")
		}
		user.Name = name
	}
	if input.Role != nil {
		if !input.Role.Valid() {
			return domain.User{}, ErrInvalidRole
		}
		user.Role = *input.Role
	}
	if input.Password != nil {
		if err := s.policy.Validate(*input.Password, user.Email, user.Name); err != nil {
			return domain.User{}, err
		}

		salt, err := security.GenerateSalt()
		if err != nil {
			return domain.User{}, fmt.Errorf("generate salt: %w", err)
		}
		hash, err := s.hasher.Hash(*input.Password, salt)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}

		user.PasswordSalt = salt
		user.PasswordHash = hash
	}

	user.UpdatedAt = time.Now().UTC()
	user.UpdatedBy = actingUserID

	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}

	return user.Sanitized(), nil
}

// DeleteUser soft-deletes the account; the row is retained for audit.
func (s *UserService) DeleteUser(ctx context.Context, id string, actingUserID string) error {
	if err := s.users.SoftDelete(ctx, id, actingUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
