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

const (
	// maxFailedAttempts is the consecutive-failure count that locks an account.
	maxFailedAttempts = 5
	// lockoutWindow is how long a lock holds, measured from the most recent
	// ledger record.
	lockoutWindow = 12 * time.Hour
)

var (
	// ErrInvalidCredentials indicates the email or password is incorrect.
	// The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = errors.New("email or password incorrect")
	// ErrAccountLocked indicates too many recent failed attempts.
	ErrAccountLocked = errors.New("account locked for 12 hours")
	// ErrUnauthorized indicates a missing, invalid, expired, or revoked token,
	// or insufficient role. All authorization failures collapse to this value.
	ErrUnauthorized = errors.New("unauthorized")
)

// LoginMetadata carries requester context recorded in the ledger.
type LoginMetadata struct {
	IPAddress string
	UserAgent string
}

// AuthService orchestrates login and request authorization: credential
// verification, lockout policy, token issuance, and ledger recording.
type AuthService struct {
	users     port.UserRepository
	loginLogs port.LoginLogRepository
	hasher    *security.PasswordHasher
	issuer    *security.TokenIssuer
	events    port.EventPublisher
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	loginLogs port.LoginLogRepository,
	hasher *security.PasswordHasher,
	issuer *security.TokenIssuer,
	events port.EventPublisher,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		loginLogs: loginLogs,
		hasher:    hasher,
		issuer:    issuer,
		events:    events,
		logger:    logger,
	}
}

// Login verifies credentials against the user directory, enforces the lockout
// policy derived from the login attempt ledger, and on success issues a
// session token and records it.
//
// The failure count carried in the ledger does not decay with time: an attempt
// after the lockout window has lapsed proceeds to password verification, and a
// fresh failure keeps incrementing from the last recorded count. Counts pushed
// past maxFailedAttempts this way never re-lock the account; the lock matches
// the threshold exactly. Only a successful login resets the count to zero.
func (s *AuthService) Login(ctx context.Context, email, password string, meta LoginMetadata) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	last, err := s.loginLogs.MostRecentByUser(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("fetch latest login record: %w", err)
	}

	now := time.Now().UTC()

	if last != nil && last.LocksAccountAt(now, maxFailedAttempts, lockoutWindow) {
		// Reaffirm the lock with a fresh record carrying the same count, so
		// the derived lock state keeps matching and the window extends.
		if err := s.appendAttempt(ctx, user.ID, meta, last.FailAttempts, nil, now); err != nil {
			return "", fmt.Errorf("record locked attempt: %w", err)
		}
		return "", ErrAccountLocked
	}

	if !s.hasher.Verify(password, user.PasswordSalt, user.PasswordHash) {
		failures := 1
		if last != nil {
			failures = last.FailAttempts + 1
		}
		if err := s.appendAttempt(ctx, user.ID, meta, failures, nil, now); err != nil {
			return "", fmt.Errorf("record failed attempt: %w", err)
		}
		return "", ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}

	if err := s.appendAttempt(ctx, user.ID, meta, 0, &token, now); err != nil {
		return "", fmt.Errorf("record successful attempt: %w", err)
	}

	s.publishLogin(ctx, user.ID, meta, now)

	return token, nil
}

// Authorize validates the bearer token in authHeader and, when requiredRoles
// is non-empty, checks role membership. It returns the acting user id. Every
// failure branch collapses to ErrUnauthorized so callers cannot distinguish a
// bad signature from a revoked session or an insufficient role.
func (s *AuthService) Authorize(ctx context.Context, requiredRoles []domain.Role, authHeader string) (string, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return "", ErrUnauthorized
	}

	record, err := s.loginLogs.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("lookup session record: %w", err)
	}

	userID, err := s.issuer.Verify(token)
	if err != nil {
		s.logger.Debug("session token rejected", zap.Error(err))
		return "", ErrUnauthorized
	}

	if record.UserID != userID {
		return "", ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnauthorized
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}

	// Closed enumeration: anything outside the known role set is rejected.
	switch user.Role {
	case domain.RoleAdmin, domain.RoleUser:
	default:
		return "", ErrUnauthorized
	}

	if len(requiredRoles) > 0 && !roleMember(user.Role, requiredRoles) {
		return "", ErrUnauthorized
	}

	return user.ID, nil
}

// Logout revokes the session bound to the presented bearer token. The token's
// ledger row is soft-deleted so later Authorize calls fail even though the
// signature still verifies.
func (s *AuthService) Logout(ctx context.Context, authHeader string) error {
	token, ok := bearerToken(authHeader)
	if !ok {
		return ErrUnauthorized
	}

	record, err := s.loginLogs.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("lookup session record: %w", err)
	}

	if err := s.loginLogs.RevokeByToken(ctx, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("revoke session: %w", err)
	}

	if s.events != nil {
		event := domain.SessionRevokedEvent{
			EventID:   uuid.NewString(),
			UserID:    record.UserID,
			Reason:    "logout",
			RevokedAt: time.Now().UTC(),
		}
		if err := s.events.PublishSessionRevoked(ctx, event); err != nil {
			s.logger.Warn("publish session revoked event", zap.Error(err))
		}
	}

	return nil
}

func (s *AuthService) appendAttempt(ctx context.Context, userID string, meta LoginMetadata, failures int, token *string, at time.Time) error {
	record := domain.LoginRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		FailAttempts: failures,
		SessionToken: token,
		CreatedAt:    at,
	}
	if meta.IPAddress != "" {
		ip := meta.IPAddress
		record.IPAddress = &ip
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		record.UserAgent = &ua
	}

	return s.loginLogs.Append(ctx, record)
}

func (s *AuthService) publishLogin(ctx context.Context, userID string, meta LoginMetadata, at time.Time) {
	if s.events == nil {
		return
	}

	event := domain.UserLoggedInEvent{
		EventID:  uuid.NewString(),
		UserID:   userID,
		LoggedAt: at,
	}
	if meta.IPAddress != "" {
		ip := meta.IPAddress
		event.IPAddress = &ip
	}
	if meta.UserAgent != "" {
		ua := meta.UserAgent
		event.UserAgent = &ua
	}

	if err := s.events.PublishUserLoggedIn(ctx, event); err != nil {
		s.logger.Warn("publish login event", zap.Error(err))
	}
}

func bearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}

	return token, true
}

func roleMember(role domain.Role, allowed []domain.Role) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}
